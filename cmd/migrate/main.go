package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/hijabina/hijabina-backend/internal/auth"
	"github.com/hijabina/hijabina-backend/internal/users"
	"github.com/hijabina/hijabina-backend/pkg/config"
	"github.com/hijabina/hijabina-backend/pkg/db"
	"github.com/hijabina/hijabina-backend/pkg/env"
	"github.com/hijabina/hijabina-backend/pkg/logger"
	"github.com/hijabina/hijabina-backend/pkg/migrate"
	"github.com/hijabina/hijabina-backend/pkg/security"
)

type options struct {
	cmd        string
	dir        string
	name       string
	version    string
	adminName  string
	adminEmail string
	adminPhone string
}

func main() {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate|seed-admin")
	flag.StringVar(&opts.dir, "dir", "", "migrations directory; empty uses the embedded set")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.StringVar(&opts.adminName, "admin-name", "Admin Toko Hijabina", "display name for -cmd=seed-admin")
	flag.StringVar(&opts.adminEmail, "admin-email", "", "login email for -cmd=seed-admin")
	flag.StringVar(&opts.adminPhone, "admin-phone", "", "optional phone for -cmd=seed-admin")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	// create and validate never touch the database
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("-name is required for create")
		}
		dir := opts.dir
		if dir == "" {
			dir = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		validate := migrate.ValidateEmbedded
		if opts.dir != "" {
			validate = func() error { return migrate.ValidateDir(opts.dir) }
		}
		if err := validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("migrations valid")
		return nil
	case "up", "down", "status":
	case "seed-admin":
		// the password stays out of argv and shell history
		if opts.adminEmail == "" || env.Get("ADMIN_PASSWORD", "") == "" {
			return errors.New("-admin-email and HIJABINA_ADMIN_PASSWORD are required for seed-admin")
		}
	case "version":
		if opts.version == "" {
			return errors.New("-version is required for version")
		}
	default:
		return fmt.Errorf("unknown -cmd %q", opts.cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": opts.cmd, "dir": opts.dir})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer client.Close()

	if opts.cmd == "seed-admin" {
		seed := auth.AdminSeed{
			Name:     opts.adminName,
			Email:    opts.adminEmail,
			Password: env.Get("ADMIN_PASSWORD", ""),
			Phone:    opts.adminPhone,
		}
		admin, err := auth.SeedAdmin(ctx, users.NewRepository(client.DB()), security.NewHasher(cfg.Password), seed)
		if err != nil {
			logg.Error(ctx, "migrate.seed_admin_failed", err)
			return err
		}
		logg.Info(logg.WithUserID(ctx, admin.ID.String()), "migrate.seed_admin_done")
		fmt.Println("admin created:", admin.Email)
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}

	if opts.cmd == "version" {
		err = migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	} else {
		err = migrate.Run(ctx, sqlDB, opts.dir, opts.cmd)
	}
	if err != nil {
		logg.Error(ctx, "migrate.failed", err)
		return err
	}
	logg.Info(ctx, "migrate.done")
	return nil
}
