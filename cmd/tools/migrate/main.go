package main

import (
	"errors"
	"flag"
	"os"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"

	"github.com/noah-isme/backend-importa/db"
	"github.com/noah-isme/backend-importa/internal/obs"
)

func main() {
	direction := flag.String("direction", "up", "up or down")
	steps := flag.Int("steps", 0, "number of migrations to apply; 0 applies all")
	flag.Parse()

	_ = godotenv.Load()
	logger := obs.NewLogger(os.Getenv("OBS_LOG_FORMAT"), os.Getenv("OBS_LOG_LEVEL")).With().Str("component", "migrate").Logger()

	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	src, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		logger.Fatal().Err(err).Msg("open embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, driverURL(dsn))
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise migrate")
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Error().AnErr("source", srcErr).AnErr("database", dbErr).Msg("close migrate")
		}
	}()

	switch {
	case *steps != 0 && *direction == "down":
		err = m.Steps(-*steps)
	case *steps != 0:
		err = m.Steps(*steps)
	case *direction == "down":
		err = m.Down()
	case *direction == "up":
		err = m.Up()
	default:
		logger.Fatal().Str("direction", *direction).Msg("unknown direction")
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		logger.Fatal().Err(verr).Msg("read schema version")
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Str("direction", *direction).Msg("migrations applied")
}

// driverURL rewrites postgres:// DSNs to the pgx5 scheme the driver registers.
func driverURL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}
