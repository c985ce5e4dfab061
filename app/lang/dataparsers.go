package lang

import (
	"context"
	"math/big"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// numberMatch is a number found in a line.
type numberMatch struct {
	value      Number
	start, end int
}

var vulgarFractions = map[rune]Number{
	'½': NumberFromFrac(1, 2),
	'¼': NumberFromFrac(1, 4),
	'¾': NumberFromFrac(3, 4),
	'⅓': NumberFromFrac(1, 3),
	'⅔': NumberFromFrac(2, 3),
	'⅕': NumberFromFrac(1, 5),
	'⅛': NumberFromFrac(1, 8),
}

var piNumber = func() Number {
	n, _ := ParseNumber("3.14159265358979323846264338327950288")
	return n
}()

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

func runeBefore(text string, pos int) (rune, int) {
	if pos <= 0 {
		return utf8.RuneError, 0
	}
	return utf8.DecodeLastRuneInString(text[:pos])
}

// numberStartAllowed reports whether a number may start at pos, that is pos
// is not inside another number such as the "5" of "1.5" or "1,500".
func numberStartAllowed(text string, pos int, ci cultureInfo) bool {
	r, size := runeBefore(text, pos)
	if size == 0 {
		return true
	}
	if classifyRune(r) == TokenDigit {
		return false
	}
	if r == ci.decimalSeparator || r == ci.groupSeparator || r == '.' || r == ',' {
		r2, s2 := runeBefore(text, pos-size)
		if s2 > 0 && classifyRune(r2) == TokenDigit {
			return false
		}
	}
	return true
}

func groupSeparators(ci cultureInfo) []rune {
	if ci.groupSeparator == ' ' {
		return []rune{'\u00a0', '\u202f'}
	}
	return []rune{ci.groupSeparator}
}

// scanNumberAt reads a number starting at pos: a prefixed hexadecimal, binary
// or octal integer, or a decimal with optional digit grouping, fractional
// part and trailing vulgar fraction.
func scanNumberAt(text string, pos int, ci cultureInfo) (Number, int, bool) {
	if pos >= len(text) {
		return Number{}, 0, false
	}
	if r, size := utf8.DecodeRuneInString(text[pos:]); !isASCIIDigit(text[pos]) {
		if v, ok := vulgarFractions[r]; ok {
			return v, pos + size, true
		}
		return Number{}, 0, false
	}
	if n, end, ok := scanPrefixedInteger(text, pos); ok {
		return n, end, true
	}

	var digits strings.Builder
	i := pos
	for i < len(text) {
		if isASCIIDigit(text[i]) {
			digits.WriteByte(text[i])
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		grouped := false
		for _, sep := range groupSeparators(ci) {
			if r == sep && threeDigitsAt(text, i+size) {
				grouped = true
			}
		}
		if !grouped {
			break
		}
		i += size
	}
	end := i
	if end < len(text) {
		r, size := utf8.DecodeRuneInString(text[end:])
		if r == ci.decimalSeparator && end+size < len(text) && isASCIIDigit(text[end+size]) {
			digits.WriteByte('.')
			i = end + size
			for i < len(text) && isASCIIDigit(text[i]) {
				digits.WriteByte(text[i])
				i++
			}
			end = i
		}
	}
	n, ok := ParseNumber(digits.String())
	if !ok {
		return Number{}, 0, false
	}
	if end < len(text) {
		r, size := utf8.DecodeRuneInString(text[end:])
		if v, ok := vulgarFractions[r]; ok {
			n = n.Add(v)
			end += size
		}
	}
	return n, end, true
}

// threeDigitsAt reports whether exactly three digits start at i.
func threeDigitsAt(text string, i int) bool {
	if i+3 > len(text) {
		return false
	}
	for k := i; k < i+3; k++ {
		if !isASCIIDigit(text[k]) {
			return false
		}
	}
	return i+3 == len(text) || !isASCIIDigit(text[i+3])
}

func scanPrefixedInteger(text string, pos int) (Number, int, bool) {
	if text[pos] != '0' || pos+2 >= len(text) {
		return Number{}, 0, false
	}
	var base int
	var valid func(byte) bool
	switch text[pos+1] {
	case 'x', 'X':
		base = 16
		valid = func(b byte) bool {
			return isASCIIDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
		}
	case 'b', 'B':
		base = 2
		valid = func(b byte) bool { return b == '0' || b == '1' }
	case 'o', 'O':
		base = 8
		valid = func(b byte) bool { return b >= '0' && b <= '7' }
	default:
		return Number{}, 0, false
	}
	i := pos + 2
	for i < len(text) && valid(text[i]) {
		i++
	}
	if i == pos+2 || !endsOnWordBoundary(text, i) {
		return Number{}, 0, false
	}
	v, ok := new(big.Int).SetString(text[pos+2:i], base)
	if !ok {
		return Number{}, 0, false
	}
	return NewNumber(new(big.Rat).SetInt(v)), i, true
}

// scanNumbers returns every number of the line.
func scanNumbers(line TokenizedTextLine, culture string) []numberMatch {
	ci := cultureInfoFor(culture)
	text := line.LineTextIncludingLineBreak
	var out []numberMatch
	for _, t := range line.Tokens {
		if t.Type != TokenDigit && t.Type != TokenSymbolOrPunctuation {
			continue
		}
		if !numberStartAllowed(text, t.StartInLine, ci) {
			continue
		}
		n, end, ok := scanNumberAt(text, t.StartInLine, ci)
		if !ok {
			continue
		}
		out = append(out, numberMatch{value: n, start: t.StartInLine, end: end})
	}
	return out
}

// skipSpaces skips spaces and tabs.
func skipSpaces(text string, pos int) int {
	for pos < len(text) && (text[pos] == ' ' || text[pos] == '\t') {
		pos++
	}
	return pos
}

func location(line TokenizedTextLine, start, end int) DataLocation {
	return DataLocation{LineText: line.LineTextIncludingLineBreak, Start: start, End: end}
}

// matchWords matches one of phrases, sorted longest first, at text[pos:]
// ignoring case and not stopping inside a word.
func matchWords(text string, pos int, phrases []string) (string, int, bool) {
	for _, p := range phrases {
		end := pos + len(p)
		if end > len(text) || !strings.EqualFold(text[pos:end], p) {
			continue
		}
		if !endsOnWordBoundary(text, end) {
			continue
		}
		return p, end, true
	}
	return "", 0, false
}

func sortLongestFirst(s []string) []string {
	sort.Slice(s, func(i, j int) bool {
		if len(s[i]) != len(s[j]) {
			return len(s[i]) > len(s[j])
		}
		return s[i] < s[j]
	})
	return s
}

type decimalParser struct{}

func (decimalParser) Name() string { return "data.decimal" }

func (decimalParser) Parse(ctx context.Context, culture string, line TokenizedTextLine) ([]Data, error) {
	var out []Data
	for _, m := range scanNumbers(line, culture) {
		out = append(out, NewDecimal(location(line, m.start, m.end), m.value))
	}
	for _, t := range line.Tokens {
		if t.Is(TokenWord, "pi") || t.IsCaseSensitive(TokenSymbolOrPunctuation, "π") {
			out = append(out, NewDecimal(location(line, t.StartInLine, t.EndInLine), piNumber))
		}
	}
	return out, ctx.Err()
}

type percentageParser struct{}

func (percentageParser) Name() string { return "data.percentage" }

var percentWords = sortLongestFirst([]string{"percent", "percents", "pct", "pourcent", "pour cent"})

func (percentageParser) Parse(ctx context.Context, culture string, line TokenizedTextLine) ([]Data, error) {
	text := line.LineTextIncludingLineBreak
	var out []Data
	for _, m := range scanNumbers(line, culture) {
		pos := skipSpaces(text, m.end)
		end := -1
		if pos < len(text) && text[pos] == '%' {
			end = pos + 1
		} else if _, e, ok := matchWords(text, pos, percentWords); ok {
			end = e
		}
		if end > 0 {
			out = append(out, NewPercentage(location(line, m.start, end), m.value))
		}
	}
	return out, ctx.Err()
}

type currencyParser struct{}

func (currencyParser) Name() string { return "data.currency" }

func (currencyParser) Parse(ctx context.Context, culture string, line TokenizedTextLine) ([]Data, error) {
	text := line.LineTextIncludingLineBreak
	ci := cultureInfoFor(culture)
	var out []Data
	for _, m := range scanNumbers(line, culture) {
		pos := skipSpaces(text, m.end)
		if iso, end, ok := MatchCurrency(text, pos); ok {
			out = append(out, NewCurrency(location(line, m.start, end), m.value, iso))
		}
	}
	for _, t := range line.Tokens {
		if t.Type == TokenDigit || t.Type == TokenWhitespace {
			continue
		}
		iso, end, ok := matchCurrencyPrefix(text, t.StartInLine)
		if !ok {
			continue
		}
		pos := skipSpaces(text, end)
		n, nend, ok := scanNumberAt(text, pos, ci)
		if !ok {
			continue
		}
		out = append(out, NewCurrency(location(line, t.StartInLine, nend), n, iso))
	}
	return out, ctx.Err()
}

// quantityParser recognizes a number followed by a unit of one dimension.
type quantityParser struct {
	dimension string
}

func (p quantityParser) Name() string { return "data." + strings.ToLower(p.dimension) }

func (p quantityParser) Parse(ctx context.Context, culture string, line TokenizedTextLine) ([]Data, error) {
	text := line.LineTextIncludingLineBreak
	ci := cultureInfoFor(culture)
	var out []Data
	for _, m := range scanNumbers(line, culture) {
		pos := skipSpaces(text, m.end)
		u, end, ok := MatchUnit(text, pos, p.dimension)
		if !ok {
			continue
		}
		q := NewQuantity(location(line, m.start, end), m.value, u)
		if p.dimension == TypeDuration {
			q = combineDurations(text, q, ci)
		}
		out = append(out, q)
	}
	return out, ctx.Err()
}

// combineDurations extends a duration over following duration parts such as
// the "30min" of "1h 30min". A bare "m" is not combined.
func combineDurations(text string, q *Quantity, ci cultureInfo) *Quantity {
	for {
		pos := skipSpaces(text, q.End)
		if pos == q.End && pos < len(text) && text[pos] != ' ' {
			return q
		}
		n, nend, ok := scanNumberAt(text, pos, ci)
		if !ok {
			return q
		}
		upos := skipSpaces(text, nend)
		u, end, ok := MatchUnit(text, upos, TypeDuration)
		if !ok || text[upos:end] == "m" {
			return q
		}
		total := q.NumericValueInStandardUnit().Add(u.ToStandard(n))
		loc := q.DataLocation
		loc.End = end
		q = NewQuantity(loc, q.Unit.FromStandard(total), q.Unit)
	}
}

// dateTimeParser recognizes dates, times of day and relative day names.
type dateTimeParser struct {
	now func() time.Time
}

func (dateTimeParser) Name() string { return "data.datetime" }

var (
	isoDateRe   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	slashDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)
	timeRe      = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\s*([aApP])\.?[mM]\.?)?`)
	tzRe        = regexp.MustCompile(`^\s+((?:UTC|GMT)[+-]\d{1,2}(?::?\d{2})?|[A-Z]{3,4})`)
)

var relativeDays = map[string]map[string]int{
	cultureEnUS: {"today": 0, "tomorrow": 1, "yesterday": -1},
	cultureFrFR: {"aujourd'hui": 0, "demain": 1, "hier": -1},
}

var nowWords = map[string][]string{
	cultureEnUS: {"now"},
	cultureFrFR: {"maintenant"},
}

func (p dateTimeParser) Parse(ctx context.Context, culture string, line TokenizedTextLine) ([]Data, error) {
	culture = MatchCulture(culture)
	text := line.LineTextIncludingLineBreak
	ci := cultureInfoFor(culture)
	now := p.now()
	var out []Data
	for _, t := range line.Tokens {
		pos := t.StartInLine
		switch t.Type {
		case TokenDigit:
			if !numberStartAllowed(text, pos, ci) {
				continue
			}
			if d := parseDateTimeAt(text, pos, ci, now); d != nil {
				d.DataLocation = location(line, pos, d.End)
				out = append(out, d)
			}
		case TokenWord:
			if _, end, ok := matchWords(text, pos, nowWords[culture]); ok {
				out = append(out, NewDateTime(location(line, pos, end), now, true, true))
				continue
			}
			for word, offset := range relativeDays[culture] {
				if _, end, ok := matchWords(text, pos, []string{word}); ok {
					y, m, d := now.Date()
					day := time.Date(y, m, d+offset, 0, 0, 0, 0, now.Location())
					out = append(out, NewDateTime(location(line, pos, end), day, true, false))
				}
			}
		}
	}
	return out, ctx.Err()
}

// parseDateTimeAt returns a DateTime whose End is set, or nil.
func parseDateTimeAt(text string, pos int, ci cultureInfo, now time.Time) *DateTime {
	rest := text[pos:]
	loc := now.Location()
	var (
		year, month, day int
		hasDate          bool
		end              = pos
	)
	if m := isoDateRe.FindStringSubmatch(rest); m != nil {
		year, month, day = atoi(m[1]), atoi(m[2]), atoi(m[3])
		hasDate = true
		end = pos + len(m[0])
	} else if m := slashDateRe.FindStringSubmatch(rest); m != nil {
		a, b := atoi(m[1]), atoi(m[2])
		if ci.dayFirst {
			day, month = a, b
		} else {
			month, day = a, b
		}
		year = atoi(m[3])
		hasDate = true
		end = pos + len(m[0])
	}
	if hasDate && (month < 1 || month > 12 || day < 1 || day > daysIn(year, time.Month(month))) {
		return nil
	}

	timePos := end
	if hasDate {
		if timePos < len(text) && (text[timePos] == 'T' || text[timePos] == ' ') {
			timePos++
		} else {
			timePos = -1
		}
	}
	hour, minute, second := 0, 0, 0
	hasTime := false
	if timePos >= 0 {
		if m := timeRe.FindStringSubmatch(text[timePos:]); m != nil {
			hour, minute = atoi(m[1]), atoi(m[2])
			if m[3] != "" {
				second = atoi(m[3])
			}
			if m[4] != "" {
				if hour < 1 || hour > 12 {
					return nil
				}
				pm := m[4] == "p" || m[4] == "P"
				if hour == 12 {
					hour = 0
				}
				if pm {
					hour += 12
				}
			}
			if hour > 23 || minute > 59 || second > 59 {
				return nil
			}
			hasTime = true
			end = timePos + len(m[0])
			if tz := tzRe.FindStringSubmatch(text[end:]); tz != nil {
				if l, ok := LookupTimezone(tz[1]); ok && endsOnWordBoundary(text, end+len(tz[0])) {
					loc = l
					end += len(tz[0])
				}
			}
		}
	}
	if !hasDate && !hasTime {
		return nil
	}
	if !endsOnWordBoundary(text, end) {
		return nil
	}
	if !hasDate {
		n := now.In(loc)
		year, month, day = n.Year(), int(n.Month()), n.Day()
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	d := NewDateTime(DataLocation{End: end}, t, hasDate, hasTime)
	return d
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// fractionParser recognizes fraction words such as "a third" or "la moitié".
type fractionParser struct {
	phrases map[string]map[string]Number // culture -> phrase -> ratio
	sorted  map[string][]string
}

func newFractionParser() *fractionParser {
	p := &fractionParser{phrases: map[string]map[string]Number{}, sorted: map[string][]string{}}
	p.build(cultureEnUS,
		map[string]int64{"a": 1, "an": 1, "one": 1, "the": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9},
		map[string]int64{"half": 2, "halves": 2, "third": 3, "thirds": 3, "quarter": 4, "quarters": 4, "fourth": 4, "fourths": 4,
			"fifth": 5, "fifths": 5, "sixth": 6, "sixths": 6, "seventh": 7, "sevenths": 7, "eighth": 8, "eighths": 8,
			"ninth": 9, "ninths": 9, "tenth": 10, "tenths": 10},
		[]string{"half"})
	p.build(cultureFrFR,
		map[string]int64{"un": 1, "une": 1, "la": 1, "le": 1, "deux": 2, "trois": 3, "quatre": 4, "cinq": 5, "six": 6, "sept": 7, "huit": 8, "neuf": 9},
		map[string]int64{"moitié": 2, "moitiés": 2, "demi": 2, "tiers": 3, "quart": 4, "quarts": 4, "cinquième": 5, "cinquièmes": 5,
			"sixième": 6, "sixièmes": 6, "septième": 7, "septièmes": 7, "huitième": 8, "huitièmes": 8,
			"neuvième": 9, "neuvièmes": 9, "dixième": 10, "dixièmes": 10},
		[]string{"moitié"})
	return p
}

func (p *fractionParser) build(culture string, numerators, denominators map[string]int64, bare []string) {
	m := map[string]Number{}
	for nw, n := range numerators {
		for dw, d := range denominators {
			m[nw+" "+dw] = NumberFromFrac(n, d)
		}
	}
	for _, b := range bare {
		m[b] = NumberFromFrac(1, denominators[b])
	}
	p.phrases[culture] = m
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	p.sorted[culture] = sortLongestFirst(keys)
}

func (*fractionParser) Name() string { return "data.fraction" }

func (p *fractionParser) Parse(ctx context.Context, culture string, line TokenizedTextLine) ([]Data, error) {
	culture = MatchCulture(culture)
	text := line.LineTextIncludingLineBreak
	var out []Data
	for _, t := range line.Tokens {
		if t.Type != TokenWord {
			continue
		}
		phrase, end, ok := matchWords(text, t.StartInLine, p.sorted[culture])
		if !ok {
			continue
		}
		ratio := p.phrases[culture][strings.ToLower(phrase)]
		out = append(out, &Fraction{DataLocation: location(line, t.StartInLine, end), Ratio: ratio})
	}
	return out, ctx.Err()
}

type booleanParser struct{}

func (booleanParser) Name() string { return "data.boolean" }

var booleanWords = map[string]map[string]bool{
	cultureEnUS: {"true": true, "false": false},
	cultureFrFR: {"vrai": true, "faux": false},
}

func (booleanParser) Parse(ctx context.Context, culture string, line TokenizedTextLine) ([]Data, error) {
	culture = MatchCulture(culture)
	var out []Data
	for _, t := range line.Tokens {
		if t.Type != TokenWord {
			continue
		}
		for w, v := range booleanWords[culture] {
			if strings.EqualFold(t.Text(), w) {
				out = append(out, &Boolean{DataLocation: location(line, t.StartInLine, t.EndInLine), Value: v})
			}
		}
	}
	return out, ctx.Err()
}
