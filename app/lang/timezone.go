package lang

import (
	"strconv"
	"strings"
	"time"
)

// zoneOffsets maps a timezone abbreviation to its UTC offset in seconds.
var zoneOffsets = map[string]int{
	"UTC":  0,
	"GMT":  0,
	"EST":  -5 * 3600,
	"EDT":  -4 * 3600,
	"CST":  -6 * 3600,
	"CDT":  -5 * 3600,
	"MST":  -7 * 3600,
	"MDT":  -6 * 3600,
	"PST":  -8 * 3600,
	"PDT":  -7 * 3600,
	"WET":  0,
	"WEST": 1 * 3600,
	"CET":  1 * 3600,
	"CEST": 2 * 3600,
	"EET":  2 * 3600,
	"EEST": 3 * 3600,
	"MSK":  3 * 3600,
	"IST":  5*3600 + 1800,
	"JST":  9 * 3600,
	"AEST": 10 * 3600,
	"AEDT": 11 * 3600,
	"NZST": 12 * 3600,
	"NZDT": 13 * 3600,
}

// LookupTimezone returns a fixed location for an abbreviation such as
// "CET" or an explicit offset such as "UTC+2", "GMT-05:30" or "UTC+0530".
func LookupTimezone(name string) (*time.Location, bool) {
	if off, ok := zoneOffsets[name]; ok {
		return time.FixedZone(name, off), true
	}
	for _, base := range []string{"UTC", "GMT"} {
		rest, ok := strings.CutPrefix(name, base)
		if !ok || rest == "" {
			continue
		}
		off, ok := parseZoneOffset(rest)
		if !ok {
			return nil, false
		}
		return time.FixedZone(name, off), true
	}
	return nil, false
}

// parseZoneOffset parses "+h", "+hh", "+hh:mm" or "+hhmm" into seconds.
func parseZoneOffset(s string) (int, bool) {
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return 0, false
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	hh, mm := s[1:], "0"
	switch {
	case strings.Contains(hh, ":"):
		hh, mm, _ = strings.Cut(hh, ":")
		if len(mm) != 2 {
			return 0, false
		}
	case len(hh) == 4:
		hh, mm = hh[:2], hh[2:]
	case len(hh) > 2:
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h > 14 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m > 59 {
		return 0, false
	}
	return sign * (h*3600 + m*60), true
}
