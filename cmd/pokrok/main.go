package main

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/pokrok-app/pokrok/internal/cli"
	"github.com/pokrok-app/pokrok/internal/cli/habits"
	"github.com/pokrok-app/pokrok/internal/cli/snapshot"
	"github.com/pokrok-app/pokrok/internal/cli/stats"
	"github.com/pokrok-app/pokrok/internal/cli/steps"
	"github.com/pokrok-app/pokrok/internal/cli/system"
	"github.com/pokrok-app/pokrok/internal/config"
	"github.com/pokrok-app/pokrok/internal/constants"
	apperrors "github.com/pokrok-app/pokrok/internal/errors"
	"github.com/pokrok-app/pokrok/internal/logger"
	"github.com/pokrok-app/pokrok/internal/recurrence"
	"github.com/pokrok-app/pokrok/internal/utils"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"path" default:"~/.config/pokrok/config.toml"`
	DB       string `name:"db" help:"SQLite path or PostgreSQL connection string. PostgreSQL passwords belong in POKROK_DB_CONNECTION, the OS keyring or .pgpass."`
	Timezone string `help:"IANA timezone used to decide calendar days (default: from config)."`
	Debug    bool   `help:"Enable debug logging to stderr."`

	Init     system.InitCmd       `cmd:"" help:"Initialize pokrok storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd   `cmd:"" help:"Check habits and steps for schedules that can never match."`
	Backup   system.BackupCmd     `cmd:"" help:"Manage SQLite database backups."`
	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits and habit tracking."`
	Step     steps.StepCmd        `cmd:"" help:"Manage steps."`
	Stats    stats.StatsCmd       `cmd:"" help:"Show completion statistics."`
	Streak   stats.StreakCmd      `cmd:"" help:"Show the current and longest activity streak."`
	Snapshot snapshot.SnapshotCmd `cmd:"" help:"Export or import JSON snapshots."`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage the database connection string in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit and step tracking with recurring schedules"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.LoadOrCreate(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.DB != "" {
		cfg.DB = config.ExpandHome(CLI.DB)
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, LogDir: cfg.LogDir}); err != nil {
		apperrors.Fatal(err)
	}

	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		apperrors.Fatal(err)
	}
	engine := recurrence.New(
		recurrence.WithLocation(loc),
		recurrence.WithOrdinalMatching(cfg.OrdinalMatching),
	)

	// Keyring commands must work even when the configured database cannot be resolved
	store, err := cli.OpenStore(cfg.DB)
	if err != nil && !strings.HasPrefix(ctx.Command(), "keyring") {
		apperrors.Fatal(apperrors.WithHint(err, "store PostgreSQL credentials with 'pokrok keyring set' or "+constants.EnvDBConnection))
	}

	appCtx := &cli.Context{
		Store:  store,
		Engine: engine,
		Config: cfg,
	}

	err = ctx.Run(appCtx)
	if store != nil {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("Failed to close storage", "error", cerr)
		}
	}
	apperrors.Fatal(err)
}
