// Package retention decides whether a file is old enough to delete.
package retention

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

// Policy is a single optional max age. The zero value is unset and never
// deletes anything.
type Policy struct {
	maxAge time.Duration
	set    bool
}

// MaxAge returns a policy deleting files strictly older than d.
func MaxAge(d time.Duration) Policy {
	return Policy{maxAge: d, set: true}
}

// Unset is the "never delete" policy.
func Unset() Policy {
	return Policy{}
}

func (p Policy) IsSet() bool { return p.set }

// MaxAge returns the configured duration and whether one is set.
func (p Policy) MaxAge() (time.Duration, bool) {
	return p.maxAge, p.set
}

// Expired reports now - modTime > max age. An unset policy is never expired.
func (p Policy) Expired(modTime, now time.Time) bool {
	if !p.set {
		return false
	}
	return now.Sub(modTime) > p.maxAge
}

func (p Policy) String() string {
	if !p.set {
		return "unset"
	}
	return p.maxAge.String()
}

// Judge evaluates p for a file modified at modTime, sampling the clock once.
func Judge(modTime time.Time, p Policy) bool {
	return p.Expired(modTime, time.Now())
}

var (
	unitWords = []struct {
		re   *regexp.Regexp
		unit string
	}{
		{regexp.MustCompile(`^(milliseconds?|msecs?)$`), "ms"},
		{regexp.MustCompile(`^(seconds?|secs?)$`), "s"},
		{regexp.MustCompile(`^(minutes?|mins?)$`), "m"},
		{regexp.MustCompile(`^(hours?|hrs?)$`), "h"},
		{regexp.MustCompile(`^days?$`), "d"},
		{regexp.MustCompile(`^(weeks?|wks?)$`), "w"},
		{regexp.MustCompile(`^(y|years?|yrs?)$`), "y"},
	}

	// number followed by an optional unit, e.g. "3 days", "1.5h", "500"
	tokenPattern = regexp.MustCompile(`(-?[0-9]*\.?[0-9]+)\s*([a-zA-Z]*)`)
)

const year = 365*24*time.Hour + 6*time.Hour

// ErrOutOfRange reports an age that is not finite or does not fit a time.Duration.
var ErrOutOfRange = errors.New("max age out of range")

// ParseMaxAge parses human readable ages: "500ms", "3d", "3 days",
// "1 week 2 days", "2h30m". A bare number is milliseconds. Empty is unset.
func ParseMaxAge(s string) (Policy, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unset(), nil
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if !math.IsNaN(n) && n < 0 {
			return Policy{}, fmt.Errorf("negative max age %q", s)
		}
		d, err := scale(n, time.Millisecond)
		if err != nil {
			return Policy{}, fmt.Errorf("parsing max age %q: %w", s, err)
		}
		return MaxAge(d), nil
	}

	d, err := parseHuman(s)
	if err != nil {
		return Policy{}, fmt.Errorf("parsing max age %q: %w", s, err)
	}
	if d < 0 {
		return Policy{}, fmt.Errorf("negative max age %q", s)
	}
	return MaxAge(d), nil
}

func parseHuman(s string) (time.Duration, error) {
	matches := tokenPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("no duration found")
	}

	var (
		total time.Duration
		last  int
	)
	for _, m := range matches {
		if strings.TrimSpace(s[last:m[0]]) != "" {
			return 0, fmt.Errorf("unexpected %q", strings.TrimSpace(s[last:m[0]]))
		}
		last = m[1]

		num := s[m[2]:m[3]]
		unit := strings.ToLower(s[m[4]:m[5]])
		if unit == "" {
			unit = "ms"
		}

		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, err
		}
		per, err := unitDuration(unit)
		if err != nil {
			return 0, err
		}
		d, err := scale(n, per)
		if err != nil {
			return 0, err
		}
		if (d > 0 && total > math.MaxInt64-d) || (d < 0 && total < math.MinInt64-d) {
			return 0, ErrOutOfRange
		}
		total += d
	}

	if strings.TrimSpace(s[last:]) != "" {
		return 0, fmt.Errorf("unexpected %q", strings.TrimSpace(s[last:]))
	}
	return total, nil
}

// unitDuration returns the length of one unit, e.g. 24h for "days".
func unitDuration(unit string) (time.Duration, error) {
	if canonical, ok := canonicalUnit(unit); ok {
		if canonical == "y" {
			return year, nil
		}
		unit = canonical
	}
	return str2duration.ParseDuration("1" + unit)
}

// scale multiplies n units without wrapping around int64.
func scale(n float64, unit time.Duration) (time.Duration, error) {
	f := n * float64(unit)
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, ErrOutOfRange
	}
	return time.Duration(f), nil
}

func canonicalUnit(unit string) (string, bool) {
	for _, w := range unitWords {
		if w.re.MatchString(unit) {
			return w.unit, true
		}
	}
	return "", false
}
