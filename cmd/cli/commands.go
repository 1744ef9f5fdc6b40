package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/zezva802/Banking-system/infra/migrations"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/dto"
	operatorsvc "github.com/zezva802/Banking-system/pkg/service/operator"
	"golang.org/x/term"
)

const dateLayout = "2006-01-02"

type operatorInput struct {
	Name          string
	Surname       string
	Email         string
	PrivateNumber string
	DateOfBirth   time.Time
}

func parseOperatorFlags(args []string, output io.Writer) (*operatorInput, error) {
	fs := flag.NewFlagSet("create-operator", flag.ContinueOnError)
	fs.SetOutput(output)
	in := &operatorInput{}
	var dob string
	fs.StringVar(&in.Email, "email", "", "operator email")
	fs.StringVar(&in.Name, "name", "", "first name")
	fs.StringVar(&in.Surname, "surname", "", "last name")
	fs.StringVar(&in.PrivateNumber, "private-number", "", "11-digit private number")
	fs.StringVar(&dob, "dob", "", "date of birth, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var missing []string
	for name, v := range map[string]string{
		"email": in.Email, "name": in.Name, "surname": in.Surname,
		"private-number": in.PrivateNumber, "dob": dob,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, "-"+name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}

	t, err := time.Parse(dateLayout, dob)
	if err != nil {
		return nil, fmt.Errorf("invalid -dob %q: expected YYYY-MM-DD", dob)
	}
	in.DateOfBirth = t
	return in, nil
}

// readPassword prompts twice without echo on a terminal. Piped input is read
// as a single line.
func readPassword(stdin *os.File, stdout io.Writer) (string, error) {
	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(stdin)
	}

	_, _ = notice.Fprint(stdout, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(stdout)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	_, _ = notice.Fprint(stdout, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(stdout)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}

func createOperator(
	ctx context.Context,
	svc *operatorsvc.Service,
	in *operatorInput,
	password string,
	stdout io.Writer,
) error {
	u, err := svc.CreateUser(ctx, dto.UserCreate{
		Name:          in.Name,
		Surname:       in.Surname,
		PrivateNumber: in.PrivateNumber,
		DateOfBirth:   in.DateOfBirth,
		Email:         in.Email,
		Password:      password,
		Role:          string(domain.RoleOperator),
	})
	if err != nil {
		return err
	}
	_, err = success.Fprintf(stdout, "Operator %s created (id %s)\n", u.Email, u.ID)
	return err
}

func migrate(ctx context.Context, db *sql.DB, direction string, stdout io.Writer) error {
	switch direction {
	case "up":
		if err := migrations.Up(ctx, db); err != nil {
			return err
		}
	case "down":
		if err := migrations.Down(ctx, db); err != nil {
			return err
		}
	}
	version, dirty, err := migrations.Version(ctx, db)
	if err != nil {
		return err
	}
	_, err = success.Fprintf(stdout, "Schema version %d (dirty: %t)\n", version, dirty)
	return err
}
