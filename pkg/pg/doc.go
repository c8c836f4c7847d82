// Package pg bootstraps the PostgreSQL layer for the second-factor store:
// an env-driven Config, a Connect helper that retries until the database is
// reachable, a goose-based Migrate runner, and a Healthcheck probe.
//
//	cfg, _ := env.ParseAs[pg.Config]()
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    return err
//	}
//	store := pgstore.New(pool)
//
// The helpers are deliberately decoupled so callers can plug them into any
// lifecycle or dependency-injection setup.
package pg
