// Package pg bootstraps the PostgreSQL layer behind the OAuth2 stores:
// a pgx/v5 connection pool with startup retry, goose schema migrations,
// a health check closure, and error classifiers shared by query code.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    log.Fatal(err)
//	}
//
//	store := oauth.NewPGStore(pool)
package pg
