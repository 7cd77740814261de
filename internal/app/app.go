package app

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/quota-settlement/internal/config"
	"github.com/anyulbade/quota-settlement/internal/database"
	"github.com/anyulbade/quota-settlement/internal/fx"
	"github.com/anyulbade/quota-settlement/internal/layout"
	"github.com/anyulbade/quota-settlement/internal/render"
	"github.com/anyulbade/quota-settlement/internal/render/pdf"
	"github.com/anyulbade/quota-settlement/internal/render/xlsx"
	"github.com/anyulbade/quota-settlement/internal/repository"
	"github.com/anyulbade/quota-settlement/internal/service"
)

// SetupLogger installs the global zerolog logger used by every package.
func SetupLogger(level zerolog.Level) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()
}

type App struct {
	Pool    *pgxpool.Pool
	Reports *service.ReportService
	Periods *service.PeriodService
}

// New connects to the database, optionally migrates and seeds it, and wires
// the report pipeline. Callers own the returned pool.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	pool, err := database.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
			pool.Close()
			return nil, err
		}
		if err := database.SeedData(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	engine, err := layout.NewEngine(layout.A4(), pdf.NewMetrics())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create layout engine: %w", err)
	}

	backends := render.NewRegistry()
	backends.Register(render.FormatPDF, pdf.New(pdf.WithCreator(cfg.ReportCreator)))
	backends.Register(render.FormatXLSX, xlsx.New(xlsx.WithSheetName(cfg.ReportSheetName)))

	settlements := repository.NewSettlementRepository(pool)
	logos := repository.NewLogoRepository(pool)
	provider := fx.NewHTTPProvider(cfg.FXBaseURL, cfg.FXToken, cfg.FXTimeout)

	return &App{
		Pool: pool,
		Reports: service.NewReportService(settlements, logos, provider, engine, backends,
			service.WithResolverOptions(fx.WithConcurrency(cfg.FXConcurrency)),
			service.WithLocation(cfg.Location)),
		Periods: service.NewPeriodService(settlements),
	}, nil
}

func (a *App) Close() {
	a.Pool.Close()
}
