package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/chadspratt/do-again-list/internal/backup"
	"github.com/chadspratt/do-again-list/internal/cli"
	"github.com/chadspratt/do-again-list/internal/validation"
)

var errSkipped = errors.New("skipped")

type DoctorCmd struct{}

type check struct {
	name    string
	needsDB bool
	warning bool
	run     func(*cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Backups present", warning: true, run: checkBackupsPresent},
	{name: "Game settings", needsDB: true, run: checkSettings},
	{name: "Habit validation", needsDB: true, run: checkHabits},
	{name: "Occurrence integrity", needsDB: true, run: checkOccurrences},
	{name: "Clock/timezone", run: func(*cli.Context) error { return checkClockTimezone() }},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			fmt.Printf("⊘ %s: SKIPPED (%v)\n", c.name, err)
		case c.warning:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Background()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.GetSettings(ctx.Background()); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func schemaVersion(ctx *cli.Context) (int, int, error) {
	store, ok := ctx.Store.(schemaStore)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s storage has no schema version", errSkipped, ctx.Store.Dialect())
	}
	current, latest, err := store.SchemaVersion(ctx.Background())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return current, latest, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := schemaVersion(ctx)
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, err := schemaVersion(ctx)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'doagain migrate')", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.Store.Dialect() != "sqlite" {
		return fmt.Errorf("%w: PostgreSQL backups are not managed by doagain", errSkipped)
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'doagain backup create'")
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings(ctx.Background())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.Validate()
}

func checkHabits(ctx *cli.Context) error {
	habits, err := ctx.Store.GetHabits(ctx.Background(), ctx.Owner, false)
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	result := validation.New().ValidateHabits(habits)
	if result.HasConflicts() {
		return errors.New(result.FormatReport())
	}
	return nil
}

// checkOccurrences verifies every occurrence is anchored, at most one per
// habit is open, and the habit's in-progress flag agrees with its history.
func checkOccurrences(ctx *cli.Context) error {
	bg := ctx.Background()
	habits, err := ctx.Store.GetHabits(bg, ctx.Owner, false)
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	for _, h := range habits {
		occs, err := ctx.Store.GetOccurrences(bg, h.ID, 0)
		if err != nil {
			return fmt.Errorf("failed to get occurrences for %q: %w", h.Title, err)
		}
		open, running := 0, false
		for _, o := range occs {
			if err := o.Validate(); err != nil {
				return fmt.Errorf("habit %q occurrence %s: %w", h.Title, o.ID, err)
			}
			if o.IsOpen() {
				open++
				running = running || o.Started()
			}
		}
		if open > 1 {
			return fmt.Errorf("habit %q has %d open occurrences", h.Title, open)
		}
		if h.InProgress() != running {
			return fmt.Errorf("habit %q in-progress state disagrees with its occurrences", h.Title)
		}
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
