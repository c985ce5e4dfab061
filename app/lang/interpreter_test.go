package lang

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"math/big"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestInterpreter(culture string) *ParserAndInterpreter {
	return NewParserAndInterpreter(nil, Config{
		Culture: culture,
		Logger:  log.New(io.Discard, "", 0),
		Rates: StaticRates{
			"USD": big.NewRat(1, 1),
			"CAD": big.NewRat(131, 100),
			"EUR": big.NewRat(1, 2),
		},
		Now: func() time.Time { return testNow },
	})
}

// evalDoc runs one pass over text and returns the display text of each line.
func evalDoc(t *testing.T, p *ParserAndInterpreter, text string) []string {
	t.Helper()
	lines, err := p.Run(context.Background(), p.Culture(), text)
	if err != nil {
		t.Fatalf("Run(%q) error: %v", text, err)
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.DisplayText(p.Culture())
	}
	return out
}

func TestEvaluateLine(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2 + 3", "5"},
		{"10 - 3", "7"},
		{"4 * 5", "20"},
		{"10 / 4", "2.5"},
		{"(2 + 3) * 4", "20"},
		{"2 + 3 * 4", "14"},
		{"-5", "-5"},
		{"1km + 1m", "1.001 km"},
		{"1h + 1m", "30.01:00:00"},
		{"1 + 25%", "1.25"},
		{"1 - 25%", "0.75"},
		{"1 x 25%", "0.25"},
		{"1 / 25%", "4"},
		{"1.50 / 0", "∞"},
		{"20km + 30h", "Incompatible units"},
		{"25 (50)", "1250"},
		{"-25 (-50)", "1250"},
		{"20% off 25 50", "70"},
		{"1 km to m", "1000 m"},
		{"3 > 2", "true"},
		{"3 < 2", "false"},
		{"1km == 1000m", "true"},
		{"2 CAD + 2 USD", "4.62 CAD"},
		{"10 USD to CAD", "13.10 CAD"},
		{"", ""},
		{"hello world", ""},
	}

	for _, tt := range tests {
		p := newTestInterpreter("en-US")
		got := evalDoc(t, p, tt.input)
		if len(got) != 1 {
			t.Errorf("Run(%q) returned %d lines, want 1", tt.input, len(got))
			continue
		}
		if got[0] != tt.want {
			t.Errorf("Run(%q) = %q, want %q", tt.input, got[0], tt.want)
		}
	}
}

func TestFunctions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"20% of 50", "10"},
		{"10% on 50", "55"},
		{"10% off 50", "45"},
		{"50 is what % of 200", "25%"},
		{"20 is 50% of what", "40"},
		{"square root of 16", "4"},
		{"sqrt 2 * sqrt 2", "2"},
		{"midpoint between 10 and 20", "15"},
		{"random between 7 and 7", "7"},
		{"square root of -4", "Unsupported arithmetic operation"},
		{"half of 10", "5"},
		{"three quarters of 20 km", "15 km"},
		{"a third of 9 EUR", "3 EUR"},
	}

	for _, tt := range tests {
		p := newTestInterpreter("en-US")
		got := evalDoc(t, p, tt.input)
		if got[0] != tt.want {
			t.Errorf("Run(%q) = %q, want %q", tt.input, got[0], tt.want)
		}
	}
}

func TestRandomBetweenWideBounds(t *testing.T) {
	huge, _ := ParseNumber("99999999999999999999")
	tests := []struct {
		lo, hi Number
	}{
		{NumberFromInt(1), huge},
		{NumberFromInt(math.MinInt64), NumberFromInt(math.MaxInt64)},
		{huge.Neg(), NumberFromInt(0)},
	}
	for _, tt := range tests {
		for i := 0; i < 20; i++ {
			d, err := randomBetween(context.Background(), nil, []Data{NewDecimal(DataLocation{}, tt.lo), NewDecimal(DataLocation{}, tt.hi)})
			if err != nil {
				t.Fatalf("random between %v and %v: %v", tt.lo, tt.hi, err)
			}
			v := d.(*Decimal).Value
			if !v.IsInt() || v.Cmp(tt.lo) < 0 || v.Cmp(tt.hi) > 0 {
				t.Fatalf("random between %v and %v = %v", tt.lo, tt.hi, v)
			}
		}
	}
}

func TestFractionOfInFrench(t *testing.T) {
	p := newTestInterpreter("fr-FR")
	if got := evalDoc(t, p, "la moitié de 10")[0]; got != "5" {
		t.Errorf("la moitié de 10 = %q, want 5", got)
	}
}

func TestVariablesAcrossLines(t *testing.T) {
	p := newTestInterpreter("en-US")

	got := evalDoc(t, p, "test = 2\ntest + 2")
	want := []string{"2", "4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("first pass = %q, want %q", got, want)
	}

	got = evalDoc(t, p, "test = 5\ntest + 2")
	want = []string{"5", "7"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("after edit = %q, want %q", got, want)
	}

	got = evalDoc(t, p, "my rate = 3\nmy rate * 2\ntest")
	want = []string{"3", "6", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("multi-word name = %q, want %q", got, want)
	}
}

func TestVariableNamesWithDigits(t *testing.T) {
	p := newTestInterpreter("en-US")
	got := evalDoc(t, p, "x1 = 4\nx1 * 2\n2x3\nrate2026 = 10\nrate2026 + x1")
	want := []string{"4", "8", "6", "10", "14"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Run = %q, want %q", got, want)
	}
}

func TestVariableUsedBeforeDeclaration(t *testing.T) {
	p := newTestInterpreter("en-US")
	got := evalDoc(t, p, "a\na = 1\na + 1")
	want := []string{"", "1", "2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Run = %q, want %q", got, want)
	}
}

func TestConditions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"if 123 < 456 then tax = 12 else tax = 13", "12"},
		{"if 123 > 456 then tax = 12 else tax = 13", "13"},
		{"if 123 > 456 then tax = 12", ""},
		{"if 1 < 2 then 3 otherwise 4", "3"},
		{"if 5 then 1", "The condition must be true or false"},
	}

	for _, tt := range tests {
		p := newTestInterpreter("en-US")
		got := evalDoc(t, p, tt.input)
		if got[0] != tt.want {
			t.Errorf("Run(%q) = %q, want %q", tt.input, got[0], tt.want)
		}
	}
}

func TestConditionAssignsVariable(t *testing.T) {
	p := newTestInterpreter("en-US")
	got := evalDoc(t, p, "if 1 < 2 then tax = 12 else tax = 13\ntax * 2")
	if got[1] != "24" {
		t.Errorf("tax * 2 = %q, want 24", got[1])
	}
}

func TestCommentAndHeader(t *testing.T) {
	p := newTestInterpreter("en-US")
	lines, err := p.Run(context.Background(), "en-US", "132 // comment\n# Budget\n// only a comment")
	if err != nil {
		t.Fatal(err)
	}

	first := lines[0]
	if len(first.StatementsAndData) != 2 {
		t.Fatalf("%q parsed into %d statements, want 2", "132 // comment", len(first.StatementsAndData))
	}
	if _, ok := first.StatementsAndData[0].Statement.(*NumericalCalculusStatement); !ok {
		t.Errorf("statement 0 is %T, want *NumericalCalculusStatement", first.StatementsAndData[0].Statement)
	}
	c, ok := first.StatementsAndData[1].Statement.(*CommentStatement)
	if !ok {
		t.Fatalf("statement 1 is %T, want *CommentStatement", first.StatementsAndData[1].Statement)
	}
	if c.StartInLine() != 4 {
		t.Errorf("comment starts at %d, want 4", c.StartInLine())
	}
	if c.Text != "comment" {
		t.Errorf("comment text = %q, want %q", c.Text, "comment")
	}
	if got := first.DisplayText("en-US"); got != "132" {
		t.Errorf("summary = %q, want 132", got)
	}

	h, ok := lines[1].StatementsAndData[0].Statement.(*HeaderStatement)
	if !ok {
		t.Fatalf("line 1 statement is %T, want *HeaderStatement", lines[1].StatementsAndData[0].Statement)
	}
	if h.Title != "Budget" {
		t.Errorf("header title = %q, want Budget", h.Title)
	}
	for i := 1; i < 3; i++ {
		if got := lines[i].DisplayText("en-US"); got != "" {
			t.Errorf("line %d summary = %q, want empty", i, got)
		}
	}
}

func TestErrorStopsLine(t *testing.T) {
	p := newTestInterpreter("en-US")
	lines, err := p.Run(context.Background(), "en-US", "1 + 2 // fine\n20km + 30h // never reached")
	if err != nil {
		t.Fatal(err)
	}
	bad := lines[1]
	e, ok := bad.SummarizedResultData.(*ErrorData)
	if !ok {
		t.Fatalf("summary is %T, want *ErrorData", bad.SummarizedResultData)
	}
	if e.Location().End != len("20km + 30h // never reached") {
		t.Errorf("error ends at %d, want end of line", e.Location().End)
	}
	if len(bad.StatementsAndData) != 0 {
		t.Errorf("failing line kept %d statements, want 0", len(bad.StatementsAndData))
	}
}

func TestFrenchCulture(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1,5 + 1", "2,5"},
		{"1 < 2", "vrai"},
		{"si 1 < 2 alors 3 sinon 4", "3"},
		{"20km + 30h", "Unités incompatibles"},
	}

	for _, tt := range tests {
		p := newTestInterpreter("fr-FR")
		got := evalDoc(t, p, tt.input)
		if got[0] != tt.want {
			t.Errorf("Run(%q) = %q, want %q", tt.input, got[0], tt.want)
		}
	}
}

func TestDetermineLineFromWhichSomethingHasChanged(t *testing.T) {
	tests := []struct {
		before, after []string
		want          int
	}{
		{nil, nil, 0},
		{[]string{"a"}, []string{"a"}, 1},
		{[]string{"a\n", "b"}, []string{"a\n", "c"}, 1},
		{[]string{"a\n", "b"}, []string{"x\n", "b"}, 0},
		{[]string{"a\n", "b"}, []string{"a\n", "b\n", "c"}, 1},
		{[]string{"a\n", "b\n", "c"}, []string{"a\n", "b\n"}, 1},
		{[]string{"a"}, []string{"a\n", "b"}, 0},
		{nil, []string{"a"}, 0},
	}

	for _, tt := range tests {
		got := DetermineLineFromWhichSomethingHasChanged(tt.before, tt.after)
		if got != tt.want {
			t.Errorf("DetermineLineFromWhichSomethingHasChanged(%q, %q) = %d, want %d", tt.before, tt.after, got, tt.want)
		}
	}
}

func TestIncrementalMatchesFullPass(t *testing.T) {
	pool := []string{
		"a = 2",
		"b = a * 3",
		"a + b",
		"c = 10%",
		"b + c",
		"1km + 1m",
		"// note",
		"if a < b then d = 1 else d = 2",
		"d + a",
		"20km + 30h",
		"2 CAD + 2 USD",
	}
	r := rand.New(rand.NewPCG(1, 2))
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		lines := make([]string, 3+r.IntN(6))
		for i := range lines {
			lines[i] = pool[r.IntN(len(pool))]
		}
		p := newTestInterpreter("en-US")
		before, err := p.Run(ctx, "en-US", strings.Join(lines, "\n"))
		if err != nil {
			t.Fatal(err)
		}

		changed := r.IntN(len(lines))
		lines[changed] = pool[r.IntN(len(pool))]
		text := strings.Join(lines, "\n")
		after, err := p.Run(ctx, "en-US", text)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < changed; i++ {
			if !reflect.DeepEqual(before[i], after[i]) {
				t.Errorf("round %d: line %d changed although only line %d was edited", round, i, changed)
			}
		}

		fresh, err := newTestInterpreter("en-US").Run(ctx, "en-US", text)
		if err != nil {
			t.Fatal(err)
		}
		for i := range fresh {
			if got, want := after[i].DisplayText("en-US"), fresh[i].DisplayText("en-US"); got != want {
				t.Errorf("round %d: incremental line %d = %q, full pass = %q\n%s", round, i, got, want, text)
			}
		}
	}
}

func TestLineCountChange(t *testing.T) {
	p := newTestInterpreter("en-US")
	evalDoc(t, p, "1\n2\n3")
	got := evalDoc(t, p, "1\n2")
	want := []string{"1", "2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Run = %q, want %q", got, want)
	}
	got = evalDoc(t, p, "1\n2\n\n4")
	want = []string{"1", "2", "", "4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Run = %q, want %q", got, want)
	}
}

func TestCancelledRunPublishesNothing(t *testing.T) {
	p := newTestInterpreter("en-US")
	calls := 0
	unsubscribe := p.Subscribe(func(context.Context, []ResultLine) { calls++ })
	defer unsubscribe()

	first := evalDoc(t, p, "x = 1\nx + 1")
	if calls != 1 {
		t.Fatalf("subscriber called %d times, want 1", calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := p.Run(ctx, "en-US", "x = 40\nx + 2")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run with cancelled context error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("subscriber called %d times after cancel, want 1", calls)
	}
	if got[1].DisplayText("en-US") != first[1] {
		t.Errorf("cancelled Run returned %q, want previous %q", got[1].DisplayText("en-US"), first[1])
	}

	// The cancelled pass must not leave its variable values behind.
	after := evalDoc(t, p, "x = 1\nx + 1\nx")
	want := []string{"1", "2", "1"}
	if !reflect.DeepEqual(after, want) {
		t.Errorf("Run after cancel = %q, want %q", after, want)
	}
}

func TestDocumentDrivenPasses(t *testing.T) {
	doc := NewTextDocument("price = 10")
	p := NewParserAndInterpreter(doc, Config{
		Culture: "en-US",
		Logger:  log.New(io.Discard, "", 0),
		Now:     func() time.Time { return testNow },
	})
	defer p.Close()

	published := make(chan []ResultLine, 8)
	p.Subscribe(func(_ context.Context, lines []ResultLine) { published <- lines })

	p.Start()
	p.Wait()
	doc.SetText("price = 10\nprice * 3")
	p.Wait()

	got := p.Results()
	if len(got) != 2 || got[1].DisplayText("en-US") != "30" {
		t.Fatalf("Results() after edit = %v, want second line 30", got)
	}
	if len(published) == 0 {
		t.Error("no pass was published")
	}

	p.SetCulture("fr-FR")
	p.Wait()
	if c := p.Culture(); c != "fr-fr" {
		t.Errorf("Culture() = %q, want fr-fr", c)
	}
}

func TestTextDocumentListeners(t *testing.T) {
	doc := NewTextDocument("a")
	var seen []string
	remove := doc.OnTextChanged(func(text string) { seen = append(seen, text) })

	doc.SetText("a")
	doc.SetText("b")
	remove()
	doc.SetText("c")

	if !reflect.DeepEqual(seen, []string{"b"}) {
		t.Errorf("listener saw %q, want [b]", seen)
	}
	if doc.Text() != "c" {
		t.Errorf("Text() = %q, want c", doc.Text())
	}
}
