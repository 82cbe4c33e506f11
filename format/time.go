package format

import (
	"regexp"
	"strings"
	"time"
)

func isDateTime(s string) bool {
	_, err := parseRFC3339(s)
	return err == nil
}

func isDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// isTime accepts an RFC 3339 full-time, which always carries an offset.
func isTime(s string) bool {
	return isDateTime("1970-01-01T" + s)
}

var durationRE = regexp.MustCompile(`^P(?:\d+W|(?:\d+Y)?(?:\d+M)?(?:\d+D)?(?:T(?:\d+H)?(?:\d+M)?(?:\d+S)?)?)$`)

func isDuration(s string) bool {
	if !durationRE.MatchString(s) || s == "P" || strings.HasSuffix(s, "T") {
		return false
	}
	return true
}

func parseRFC3339(s string) (time.Time, error) {
	// RFC 3339 allows lower-case separators, Go's layouts do not.
	s = strings.ToUpper(s)
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
		return t2, nil
	}
	// a leap second is only valid as the last second of a minute
	if i := strings.Index(s, ":60"); i >= 0 && len(s) > i+3 {
		if t3, err3 := time.Parse(time.RFC3339Nano, s[:i]+":59"+s[i+3:]); err3 == nil {
			return t3, nil
		}
	}
	return time.Time{}, err
}
