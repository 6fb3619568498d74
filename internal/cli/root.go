package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/chadspratt/do-again-list/internal/activity"
	"github.com/chadspratt/do-again-list/internal/backup"
	"github.com/chadspratt/do-again-list/internal/constants"
	apperrors "github.com/chadspratt/do-again-list/internal/errors"
	"github.com/chadspratt/do-again-list/internal/keyring"
	"github.com/chadspratt/do-again-list/internal/logger"
	"github.com/chadspratt/do-again-list/internal/offset"
	"github.com/chadspratt/do-again-list/internal/storage"
	"github.com/chadspratt/do-again-list/internal/storage/postgres"
	"github.com/chadspratt/do-again-list/internal/storage/sqlite"
)

type Context struct {
	Store   storage.Provider
	Service *activity.Service
	Owner   string
	Now     func() time.Time
}

// NewContext wires a service around store.
func NewContext(store storage.Provider, owner string) *Context {
	return &Context{
		Store:   store,
		Service: activity.New(store),
		Owner:   owner,
		Now:     time.Now,
	}
}

// Background is the context commands run their storage calls under.
func (c *Context) Background() context.Context {
	return context.Background()
}

// PerformAutomaticBackup snapshots a SQLite store. Failures are only logged.
func (c *Context) PerformAutomaticBackup() {
	if c.Store.Dialect() != "sqlite" {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(c.Background()); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Location is where the store lives.
type Location struct {
	Value    string
	Postgres bool
	Source   keyring.Source
}

// ResolveLocation picks the storage location: an explicit Postgres URL in
// config wins, then DOAGAIN_DB_CONNECTION or the keyring, then config as a
// SQLite path.
func ResolveLocation(config string) (Location, error) {
	if storage.IsPostgres(config) {
		return Location{Value: config, Postgres: true}, nil
	}
	connStr, src, err := keyring.ResolveConnectionString()
	if err != nil {
		return Location{}, err
	}
	if src != keyring.SourceNone {
		logger.Debug("Using connection string", "source", src)
		return Location{Value: connStr, Postgres: true, Source: src}, nil
	}
	path, err := expandHome(config)
	if err != nil {
		return Location{}, err
	}
	return Location{Value: path}, nil
}

// OpenStore builds the provider for a location without connecting. A
// password is only tolerated when the string came from a secret source.
func OpenStore(loc Location) (storage.Provider, error) {
	if !loc.Postgres {
		return sqlite.NewStore(loc.Value), nil
	}
	err := postgres.ValidateConnString(loc.Value)
	switch {
	case err == nil:
	case errors.Is(err, postgres.ErrEmbeddedCredentials) && loc.Source != keyring.SourceNone:
		logger.Debug("Connection string carries a password", "source", loc.Source)
	case errors.Is(err, postgres.ErrEmbeddedCredentials):
		return nil, fmt.Errorf("%w: store it with 'doagain keyring set' or set %s instead", err, constants.EnvDBConnection)
	default:
		return nil, err
	}
	return postgres.New(loc.Value), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ParseAt reads a --at value: empty for now, a compact offset such as "15m"
// meaning that long ago, RFC 3339, or "YYYY-MM-DD HH:MM" in local time.
func ParseAt(s string, now time.Time) (time.Time, error) {
	if t, err := offset.Ago(s, now); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(constants.DateTimeFormat, strings.TrimSpace(s), time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, apperrors.Validation("at", "unparsable timestamp %q", s)
}

// ParseAhead reads a future time: a compact offset from now, RFC 3339, or
// "YYYY-MM-DD HH:MM" in local time.
func ParseAhead(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if err := offset.Validate(s); err == nil && s != "" {
		d, _ := offset.Parse(s)
		return now.Add(d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(constants.DateTimeFormat, s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, apperrors.Validation("at", "unparsable timestamp %q", s)
}

// TimeZone is the display zone from the timezone setting.
func (c *Context) TimeZone() *time.Location {
	settings, err := c.Store.GetSettings(c.Background())
	if err != nil || settings.Timezone == "" || settings.Timezone == constants.DefaultTimezone {
		return time.Local
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		logger.Warn("Unknown timezone setting, using local time", "timezone", settings.Timezone)
		return time.Local
	}
	return loc
}

// FormatTime renders a timestamp in loc with a relative hint, or "-" when unset.
func FormatTime(t *time.Time, now time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	local := t.In(loc)
	return fmt.Sprintf("%s (%s)", local.Format(constants.DateTimeFormat), humanize.RelTime(*t, now, "ago", "from now"))
}

// FindHabit resolves a habit by ID or, failing that, by case-insensitive title.
func (c *Context) FindHabit(ref string) (string, error) {
	ctx := c.Background()
	if h, err := c.Service.GetHabit(ctx, ref); err == nil {
		return h.ID, nil
	}
	habits, err := c.Service.ListHabits(ctx, c.Owner)
	if err != nil {
		return "", err
	}
	var match string
	for _, h := range habits {
		if strings.EqualFold(strings.TrimSpace(h.Title), strings.TrimSpace(ref)) {
			if match != "" {
				return "", apperrors.Validation("habit", "more than one habit is titled %q, use its id", ref)
			}
			match = h.ID
		}
	}
	if match == "" {
		return "", apperrors.NotFound("habit", ref)
	}
	return match, nil
}
