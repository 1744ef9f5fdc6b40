// Package app assembles the ledger services from their infrastructure
// dependencies.
package app

import (
	"errors"
	"io"
	"log/slog"

	"github.com/zezva802/Banking-system/pkg/config"
	"github.com/zezva802/Banking-system/pkg/currency"
	"github.com/zezva802/Banking-system/pkg/eventbus"
	"github.com/zezva802/Banking-system/pkg/repository"
	"github.com/zezva802/Banking-system/pkg/service/atm"
	"github.com/zezva802/Banking-system/pkg/service/auth"
	"github.com/zezva802/Banking-system/pkg/service/commission"
	"github.com/zezva802/Banking-system/pkg/service/limit"
	"github.com/zezva802/Banking-system/pkg/service/operator"
	"github.com/zezva802/Banking-system/pkg/service/report"
	"github.com/zezva802/Banking-system/pkg/service/transfer"
	"github.com/zezva802/Banking-system/pkg/service/user"
)

// Deps contains the infrastructure the services are built on.
type Deps struct {
	Uow       repository.UnitOfWork
	Converter currency.Converter
	EventBus  eventbus.Bus
	Logger    *slog.Logger

	// Closers are released by Close in reverse order.
	Closers []io.Closer
}

// Close releases every resource in Closers.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.Closers) - 1; i >= 0; i-- {
		if err := d.Closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type App struct {
	Deps            *Deps
	Config          *config.App
	AuthService     *auth.Service
	UserService     *user.Service
	TransferService *transfer.Service
	AtmService      *atm.Service
	OperatorService *operator.Service
	ReportService   *report.Service
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	a := &App{
		Deps:   deps,
		Config: cfg,
	}
	a.setupEventBus()

	var jwtCfg *config.Jwt
	if cfg.Auth != nil {
		jwtCfg = cfg.Auth.Jwt
	}
	calc := commission.New(cfg.Ledger)

	a.AuthService = auth.New(deps.Uow, jwtCfg, deps.Logger)
	a.UserService = user.New(deps.Uow, deps.Logger)
	a.TransferService = transfer.New(deps.Uow, deps.Converter, calc, deps.EventBus, deps.Logger)
	a.AtmService = atm.New(atm.Deps{
		Uow:          deps.Uow,
		Converter:    deps.Converter,
		Commission:   calc,
		Limits:       limit.New(deps.Converter, cfg.Ledger, deps.Logger),
		Sessions:     a.AuthService,
		EventBus:     deps.EventBus,
		Provisioning: cfg.Provisioning,
		Logger:       deps.Logger,
	})
	a.OperatorService = operator.New(deps.Uow, cfg.Provisioning, deps.Logger)
	a.ReportService = report.New(deps.Uow, deps.Converter, deps.Logger)
	return a
}
