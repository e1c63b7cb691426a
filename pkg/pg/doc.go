// Package pg bootstraps the PostgreSQL layer: a pgxpool connection with
// startup retry, goose schema migrations routed through slog, a healthcheck
// closure, and error classification helpers shared by the storage packages.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		return err
//	}
//
// The migrations under migrations/ create the sessions, activities,
// preferences, and consent tables the storage packages expect.
package pg
