// Package releasedate normalizes free-form store release dates into calendar years.
package releasedate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// datePattern matches "<Mon> <Day>, <Year>", e.g. "Mar 3, 2014", with
// flexible spacing around the tokens and the comma.
var datePattern = regexp.MustCompile(`^([A-Za-z]{3})\s+(\d{1,2})\s*,\s*(\d{4})$`)

var months = func() map[string]time.Month {
	out := make(map[string]time.Month, 12)
	for m := time.January; m <= time.December; m++ {
		out[strings.ToLower(m.String()[:3])] = m
	}

	return out
}()

// Year parses raw in the "<Mon> <Day>, <Year>" format and returns its year.
// The boolean is false for blank or unparsable input; callers skip such records.
func Year(raw string) (int, bool) {
	parsed, ok := Parse(raw)
	if !ok {
		return 0, false
	}

	return parsed.Year(), true
}

// Parse parses raw into a date. Month names match case-insensitively and
// whitespace around tokens is not significant. Out-of-range days roll over
// into the following month ("Feb 30, 2014" is Mar 2, 2014), so only input
// that does not match the format is rejected.
func Parse(raw string) (time.Time, bool) {
	match := datePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return time.Time{}, false
	}

	month, ok := months[strings.ToLower(match[1])]
	if !ok {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(match[2])
	if err != nil {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(match[3])
	if err != nil {
		return time.Time{}, false
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}
