// Package offset parses and renders compact duration strings such as
// "1d5h30m". These strings are how timing bounds are stored, so they stay
// editable by hand.
package offset

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/chadspratt/do-again-list/internal/errors"
)

const (
	Day = 24 * time.Hour

	secondsPerDay = 86400
)

// ErrOutOfRange is returned by HumanizeSeconds for values outside [0, 86400).
var ErrOutOfRange = errors.New("offset: seconds must be less than one day")

var (
	dayPattern    = regexp.MustCompile(`(\d+)d`)
	hourPattern   = regexp.MustCompile(`(\d+)h`)
	minutePattern = regexp.MustCompile(`(\d+)m`)
	secondPattern = regexp.MustCompile(`(\d+)s`)

	strictPattern = regexp.MustCompile(`^(\d+[dhms])+$`)
)

var units = []struct {
	pattern *regexp.Regexp
	ms      int64
}{
	{dayPattern, int64(Day / time.Millisecond)},
	{hourPattern, int64(time.Hour / time.Millisecond)},
	{minutePattern, int64(time.Minute / time.Millisecond)},
	{secondPattern, int64(time.Second / time.Millisecond)},
}

// ParseMillis sums the first day, hour, minute and second component found in
// s. Blank input or input without a recognised component yields 0.
func ParseMillis(s string) int64 {
	total, _ := parse(s)
	return total
}

// Parse returns the duration described by s. The boolean is false when s is
// blank or has no recognised component, which is different from an explicit
// zero such as "0m".
func Parse(s string) (time.Duration, bool) {
	total, found := parse(s)
	if !found {
		return 0, false
	}
	return time.Duration(total) * time.Millisecond, true
}

func parse(s string) (int64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}
	var total int64
	found := false
	for _, u := range units {
		m := u.pattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		total += n * u.ms
		found = true
	}
	return total, found
}

// Validate is the strict form used when a user edits a bound: blank is
// allowed, anything else must be digit-unit pairs with each unit used once.
func Validate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	compact := strings.ReplaceAll(s, " ", "")
	if !strictPattern.MatchString(compact) {
		return &apperrors.ValidationError{Msg: fmt.Sprintf("invalid offset %q (expected e.g. 1d5h30m)", s)}
	}
	seen := map[byte]bool{}
	for i := 0; i < len(compact); i++ {
		c := compact[i]
		if c >= '0' && c <= '9' {
			continue
		}
		if seen[c] {
			return &apperrors.ValidationError{Msg: fmt.Sprintf("invalid offset %q (unit %q repeated)", s, string(c))}
		}
		seen[c] = true
	}
	return nil
}

// HumanizeSeconds renders a sub-day number of seconds as "23h59m59s",
// omitting zero components. Callers peel whole days off first.
func HumanizeSeconds(seconds int) (string, error) {
	if seconds < 0 || seconds >= secondsPerDay {
		return "", fmt.Errorf("%w: got %d", ErrOutOfRange, seconds)
	}
	var b strings.Builder
	hours := seconds / 3600
	seconds -= hours * 3600
	minutes := seconds / 60
	seconds -= minutes * 60
	if hours > 0 {
		fmt.Fprintf(&b, "%dh", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dm", minutes)
	}
	if seconds > 0 {
		fmt.Fprintf(&b, "%ds", seconds)
	}
	return b.String(), nil
}

// Humanize renders d in the compact form, prefixing whole days as "<n>d".
// Sub-second precision is dropped; zero renders as "".
func Humanize(d time.Duration) string {
	if d < 0 {
		return "-" + Humanize(-d)
	}
	var b strings.Builder
	days := int64(d / Day)
	if days > 0 {
		fmt.Fprintf(&b, "%dd", days)
	}
	rest := int((d % Day) / time.Second)
	// rest is always within range after peeling whole days
	s, _ := HumanizeSeconds(rest)
	b.WriteString(s)
	return b.String()
}

// Ago resolves s against now. An RFC 3339 timestamp is returned as is, a
// compact offset means "that long before now", and blank means now.
func Ago(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "now") {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if err := Validate(s); err != nil {
		return time.Time{}, &apperrors.ValidationError{Msg: fmt.Sprintf("unparsable time %q (use RFC 3339 or an offset like 5m)", s)}
	}
	d, _ := Parse(s)
	return now.Add(-d), nil
}
