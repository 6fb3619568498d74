package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chadspratt/do-again-list/internal/cli"
	apperrors "github.com/chadspratt/do-again-list/internal/errors"
	"github.com/chadspratt/do-again-list/internal/keyring"
	"github.com/chadspratt/do-again-list/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting an existing SQLite database before initialization."`
	Source string `help:"Database path or connection string to copy the current owner's data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(ctx.Background()); err != nil {
		return err
	}
	fmt.Printf("Initialized doagain storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Println("Copy completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if ctx.Store.Dialect() != "sqlite" {
		return errors.New("--force only resets SQLite databases; drop the PostgreSQL schema by hand")
	}
	dbPath := ctx.Store.GetConfigPath()
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	if c.Source != "" {
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// copyData moves settings and everything the current owner has (habits,
// their history and the character) from the source store into the new one.
func (c *InitCmd) copyData(ctx *cli.Context) error {
	loc := cli.Location{Value: c.Source, Postgres: storage.IsPostgres(c.Source), Source: keyring.SourceNone}
	source, err := cli.OpenStore(loc)
	if err != nil {
		return err
	}
	bg := ctx.Background()
	if err := source.Load(bg); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	fmt.Println("  Copying settings...")
	settings, err := source.GetSettings(bg)
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(bg, settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	return ctx.Store.WithTx(bg, func(dst storage.Repository) error {
		fmt.Println("  Copying habits...")
		habits, err := source.GetHabits(bg, ctx.Owner, true)
		if err != nil {
			return fmt.Errorf("failed to get habits from source: %w", err)
		}
		occurrences := 0
		for _, h := range habits {
			if err := dst.AddHabit(bg, h); err != nil {
				return fmt.Errorf("failed to add habit %s: %w", h.ID, err)
			}
			occs, err := source.GetOccurrences(bg, h.ID, 0)
			if err != nil {
				return fmt.Errorf("failed to get occurrences for habit %s: %w", h.ID, err)
			}
			for _, o := range occs {
				if err := dst.AddOccurrence(bg, o); err != nil {
					return fmt.Errorf("failed to add occurrence %s: %w", o.ID, err)
				}
			}
			occurrences += len(occs)
		}
		fmt.Printf("    Copied %d habits and %d occurrences\n", len(habits), occurrences)

		fmt.Println("  Copying hero...")
		char, err := source.GetCharacter(bg, ctx.Owner)
		if errors.Is(err, apperrors.ErrNotFound) {
			fmt.Println("    No hero in source")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get hero from source: %w", err)
		}
		if err := dst.AddCharacter(bg, char); err != nil {
			return fmt.Errorf("failed to add hero: %w", err)
		}
		return nil
	})
}
