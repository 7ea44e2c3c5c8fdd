package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Uptivity/justsell-pos-sub002/pkg/config"
	"github.com/Uptivity/justsell-pos-sub002/pkg/db"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
	"github.com/Uptivity/justsell-pos-sub002/pkg/migrate"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

const usage = `usage: migrate [-dir path] <command> [arg]

commands:
  up                 apply every pending migration
  down               roll back the latest migration
  status             print applied and pending migrations
  to VERSION         move the schema to VERSION (YYYYMMDDHHMMSS)
  create NAME        write a new empty SQL migration into -dir
  validate           check filenames and Up/Down markers in -dir

Without -dir, up/down/status/to use the migrations compiled into this binary.`

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", "", "migrations directory on disk")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if err := run(context.Background(), *dir, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dir string, args []string) (err error) {
	if len(args) == 0 {
		flag.Usage()
		return errors.New("missing command")
	}
	command, arg := args[0], ""
	if len(args) > 1 {
		arg = args[1]
	}

	// Offline commands need neither config nor a database.
	switch command {
	case "create":
		if arg == "" {
			return errors.New("create needs a NAME")
		}
		path, err := migrate.CreateSQLMigration(orDefault(dir), arg, time.Now().UTC())
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(orDefault(dir)); err != nil {
			return err
		}
		fmt.Println("migrations ok")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "justsell-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "command": command})

	client, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { err = multierr.Append(err, client.Close()) }()

	conn := client.DB()
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("extract sql.DB: %w", err)
	}
	dialect := migrate.GooseDialect(conn.Dialector.Name())

	switch command {
	case "up", "down", "status":
		err = migrate.Run(ctx, sqlDB, dialect, dir, command)
	case "to":
		if arg == "" {
			return errors.New("to needs a VERSION")
		}
		err = migrate.MigrateToVersion(ctx, sqlDB, dialect, dir, arg)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return err
	}
	logg.Info(ctx, "migrate finished")
	return nil
}

func orDefault(dir string) string {
	if dir == "" {
		return migrate.DefaultDir
	}
	return dir
}
