// Command cli runs maintenance tasks against the ledger database:
//
//	cli migrate up|down|version
//	cli create-operator -email ... -name ... -surname ... -private-number ... -dob YYYY-MM-DD
//	cli clear-rate-cache
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/zezva802/Banking-system/infra/initializer"
	"github.com/zezva802/Banking-system/pkg/config"
	operatorsvc "github.com/zezva802/Banking-system/pkg/service/operator"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  migrate up|down|version
  create-operator -email <email> -name <name> -surname <surname> -private-number <11 digits> -dob <YYYY-MM-DD>
  clear-rate-cache`

var (
	errUsage = errors.New("invalid usage")

	success = color.New(color.FgGreen, color.Bold)
	failure = color.New(color.FgRed, color.Bold)
	notice  = color.New(color.FgCyan)
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	stop()
	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		_, _ = failure.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin *os.File, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate", "create-operator", "clear-rate-cache":
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	// Parse before connecting so bad input fails fast.
	var (
		direction string
		input     *operatorInput
		err       error
	)
	switch cmd {
	case "migrate":
		if len(rest) != 1 {
			return errUsage
		}
		direction = rest[0]
		if direction != "up" && direction != "down" && direction != "version" {
			return fmt.Errorf("%w: migrate direction %q", errUsage, direction)
		}
	case "create-operator":
		input, err = parseOperatorFlags(rest, io.Discard)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
	}

	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close() //nolint: errcheck

	switch cmd {
	case "migrate":
		sqlDB, err := deps.DB.DB()
		if err != nil {
			return err
		}
		return migrate(ctx, sqlDB, direction, stdout)
	case "create-operator":
		password, err := readPassword(stdin, stdout)
		if err != nil {
			return err
		}
		svc := operatorsvc.New(deps.Uow, cfg.Provisioning, deps.Logger)
		return createOperator(ctx, svc, input, password, stdout)
	default:
		if err := deps.Exchange.ClearCache(ctx); err != nil {
			return err
		}
		_, err := success.Fprintln(stdout, "Exchange rate cache cleared")
		return err
	}
}
