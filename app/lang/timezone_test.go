package lang

import "testing"

func TestLookupTimezone(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		ok     bool
	}{
		{"UTC", 0, true},
		{"CET", 3600, true},
		{"IST", 5*3600 + 1800, true},
		{"UTC+2", 2 * 3600, true},
		{"GMT-05:30", -(5*3600 + 1800), true},
		{"UTC+0545", 5*3600 + 45*60, true},
		{"UTC-12", -12 * 3600, true},
		{"UTC+15", 0, false},
		{"UTC+5:3", 0, false},
		{"UTC+530", 0, false},
		{"XYZ", 0, false},
		{"cet", 0, false},
	}
	for _, tt := range tests {
		loc, ok := LookupTimezone(tt.name)
		if ok != tt.ok {
			t.Errorf("LookupTimezone(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if _, off := testNow.In(loc).Zone(); off != tt.offset {
			t.Errorf("LookupTimezone(%q) offset = %d, want %d", tt.name, off, tt.offset)
		}
	}
}
