package commands

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"nhtk-schedule/internal/components/chrono"
	"nhtk-schedule/internal/components/telemetry"
	"nhtk-schedule/internal/config"
	"nhtk-schedule/internal/runner"
	"nhtk-schedule/internal/scrapers/nhtk"
	"nhtk-schedule/internal/sink/sqlstore"
	"nhtk-schedule/internal/sink/supabase"
	"nhtk-schedule/internal/syncer"
)

// app holds everything a run needs, close releases the archive database.
type app struct {
	runner runner.Runner
	close  func() error
}

func newApp(ctx context.Context, cfg config.Config) (app, error) {
	tel := telemetry.SlogAPI{}
	clock := chrono.NewStandardTime()

	parser := nhtk.NewParser(cfg.ParserOptions(), clock, tel)
	client := nhtk.NewClient(cfg.ClientOptions(), tel)

	var syncers []syncer.Syncer
	closeFn := func() error { return nil }

	if cfg.SyncEnabled() {
		remote, err := supabase.New(supabase.Options{
			Url:   cfg.Supabase.Url,
			Key:   cfg.Supabase.Key,
			Table: cfg.Supabase.Table,
		}, tel)
		if err != nil {
			return app{}, err
		}
		syncers = append(syncers, syncer.New(remote, clock, tel))
	}

	if cfg.ArchiveEnabled() {
		database, err := openArchive(ctx, cfg.Archive)
		if err != nil {
			return app{}, err
		}
		syncers = append(syncers, syncer.New(sqlstore.NewStore(database, tel), clock, tel))
		closeFn = database.Close
	}

	return app{
		runner: runner.New(client, parser, syncers, tel),
		close:  closeFn,
	}, nil
}

func openArchive(ctx context.Context, cfg config.ArchiveConfig) (*sql.DB, error) {
	database, err := sqlstore.OpenDB(cfg.Driver, cfg.Dsn)
	if err != nil {
		return nil, err
	}
	err = sqlstore.NewStore(database, telemetry.SlogAPI{}).Migrate(ctx)
	if err != nil {
		return nil, errors.Join(err, database.Close())
	}
	return database, nil
}

func logTrigger(cfg config.Config) {
	credentials := "not found"
	if cfg.SyncEnabled() {
		credentials = "found"
	}
	trigger := "manual"
	if cfg.Scheduled {
		trigger = "scheduled"
	}
	slog.Info(
		"starting nhtk-schedule",
		"supabase_credentials", credentials,
		"trigger", trigger,
		"archive", cfg.ArchiveEnabled(),
		"force", cfg.Force,
	)
}
