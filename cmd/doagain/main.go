package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/chadspratt/do-again-list/internal/cli"
	"github.com/chadspratt/do-again-list/internal/cli/backups"
	"github.com/chadspratt/do-again-list/internal/cli/events"
	"github.com/chadspratt/do-again-list/internal/cli/habits"
	"github.com/chadspratt/do-again-list/internal/cli/hero"
	"github.com/chadspratt/do-again-list/internal/cli/settings"
	"github.com/chadspratt/do-again-list/internal/cli/system"
	"github.com/chadspratt/do-again-list/internal/constants"
	"github.com/chadspratt/do-again-list/internal/errors"
	"github.com/chadspratt/do-again-list/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite database path or PostgreSQL connection string. Passwords belong in the OS keyring or DOAGAIN_DB_CONNECTION, not here." type:"string" default:"${default_config}" env:"DOAGAIN_CONFIG"`
	Debug   bool   `help:"Log debug output to stderr." env:"DOAGAIN_DEBUG"`
	Owner   string `help:"Whose habits and hero to use." default:"${default_owner}" env:"DOAGAIN_OWNER"`

	Init     system.InitCmd       `cmd:"" help:"Initialize doagain storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Serve    system.ServeCmd      `cmd:"" help:"Serve the JSON API."`
	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits."`
	Start    events.StartCmd      `cmd:"" help:"Start a habit now or at a given time."`
	End      events.EndCmd        `cmd:"" help:"End a habit and collect the reward."`
	Next     events.NextCmd       `cmd:"" help:"Schedule when a habit should next happen."`
	Hero     hero.HeroCmd         `cmd:"" help:"Show or sync the hero."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage game settings."`
	Backup   backups.BackupCmd    `cmd:"" help:"Manage database backups."`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage the database connection string in the OS keyring."`
}

// noLoad lists commands that open the store themselves, or not at all.
var noLoad = map[string]bool{
	"init":    true,
	"doctor":  true,
	"keyring": true,
	"migrate": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker that turns doing things again into a hero's progress"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
			"default_owner":  constants.DefaultOwner,
			"listen_addr":    constants.DefaultListenAddr,
		},
	)

	command := strings.Fields(ctx.Command())[0]
	loc, err := cli.ResolveLocation(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: configDir(loc),
		Stderr:    command == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	store, err := cli.OpenStore(loc)
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	appCtx := cli.NewContext(store, CLI.Owner)
	if !noLoad[command] {
		if err := store.Load(appCtx.Background()); err != nil {
			errors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}

// configDir is where logs go: beside a SQLite database, otherwise the
// default config directory.
func configDir(loc cli.Location) string {
	if !loc.Postgres {
		return filepath.Dir(loc.Value)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", constants.AppName)
	}
	return os.TempDir()
}
