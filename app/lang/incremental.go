package lang

import (
	"context"
	"errors"
	"log"
	"math"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ResultLine is the outcome of interpreting one document line.
type ResultLine struct {
	TokenizedTextLine    TokenizedTextLine
	StatementsAndData    []StatementResult
	SummarizedResultData Data
}

// DisplayText returns the text shown next to the line, or "" when the line
// produced nothing.
func (r ResultLine) DisplayText(culture string) string {
	if r.SummarizedResultData == nil {
		return ""
	}
	return r.SummarizedResultData.DisplayText(culture)
}

// DetermineLineFromWhichSomethingHasChanged returns the index of the first
// line whose text differs between before and after. When one list is a
// prefix of the other, the last common line is returned so that it is
// interpreted again; identical lists return len(after).
func DetermineLineFromWhichSomethingHasChanged(before, after []string) int {
	n := min(len(before), len(after))
	for i := 0; i < n; i++ {
		if before[i] != after[i] {
			return i
		}
	}
	if len(before) == len(after) {
		return len(after)
	}
	return max(n-1, 0)
}

// Config configures a ParserAndInterpreter. Zero fields get defaults.
type Config struct {
	Culture  string
	Logger   *log.Logger
	Rates    RateProvider
	Registry *Registry
	Now      func() time.Time
}

// passState is the committed outcome of a completed pass.
type passState struct {
	culture string
	texts   []string
	results []ResultLine
}

const noDirtyLine = math.MaxInt

// ParserAndInterpreter interprets a TextDocument line by line and keeps
// the results up to date as the text changes. Only the lines from the first
// changed one onward are interpreted again.
type ParserAndInterpreter struct {
	logger     *log.Logger
	registry   *Registry
	lexer      *Lexer
	variables  *VariableService
	operations *OperationService
	doc        *TextDocument
	stopDoc    func()

	state atomic.Pointer[passState]
	runMu sync.Mutex // one pass at a time

	mu        sync.Mutex
	culture   string
	cancel    context.CancelFunc
	done      chan struct{}
	dirtyFrom int
	subs      map[int]func(context.Context, []ResultLine)
	nextSub   int
}

// NewParserAndInterpreter returns an interpreter for doc. Every change of
// the document cancels the pass in flight and starts a new one in the
// background. doc may be nil when passes are driven with Run.
func NewParserAndInterpreter(doc *TextDocument, cfg Config) *ParserAndInterpreter {
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "smartcalc: ", log.LstdFlags)
	}
	if cfg.Registry == nil {
		cfg.Registry = DefaultRegistry(cfg.Now)
	}
	p := &ParserAndInterpreter{
		logger:     cfg.Logger,
		registry:   cfg.Registry,
		lexer:      NewLexer(cfg.Registry),
		variables:  NewVariableService(),
		operations: NewOperationService(cfg.Rates),
		doc:        doc,
		culture:    MatchCulture(cfg.Culture),
		dirtyFrom:  noDirtyLine,
		subs:       map[int]func(context.Context, []ResultLine){},
	}
	if doc != nil {
		p.stopDoc = doc.OnTextChanged(func(text string) { p.schedule(text) })
	}
	return p
}

// Culture returns the grammar culture in use.
func (p *ParserAndInterpreter) Culture() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.culture
}

// SetCulture switches culture and interprets the document again.
func (p *ParserAndInterpreter) SetCulture(culture string) {
	p.mu.Lock()
	p.culture = MatchCulture(culture)
	p.mu.Unlock()
	p.Invalidate()
}

// Invalidate makes the next pass start from the first line, for example
// after currency rates changed, and schedules it when a document is bound.
func (p *ParserAndInterpreter) Invalidate() {
	p.mu.Lock()
	p.dirtyFrom = 0
	p.mu.Unlock()
	if p.doc != nil {
		p.schedule(p.doc.Text())
	}
}

// Start interprets the current document text in the background.
func (p *ParserAndInterpreter) Start() {
	if p.doc != nil {
		p.schedule(p.doc.Text())
	}
}

// Subscribe registers fn to receive the results of every completed pass.
// fn runs on the pass goroutine; ctx is cancelled once a newer pass starts.
func (p *ParserAndInterpreter) Subscribe(fn func(ctx context.Context, lines []ResultLine)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Results returns the results of the last completed pass.
func (p *ParserAndInterpreter) Results() []ResultLine {
	if s := p.state.Load(); s != nil {
		return s.results
	}
	return nil
}

// Wait blocks until the background pass in flight, if any, has ended.
func (p *ParserAndInterpreter) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close cancels the pass in flight and detaches from the document.
func (p *ParserAndInterpreter) Close() {
	if p.stopDoc != nil {
		p.stopDoc()
	}
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()
	p.Wait()
}

func (p *ParserAndInterpreter) schedule(text string) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	culture := p.culture
	p.mu.Unlock()

	go func() {
		defer close(done)
		if _, err := p.Run(ctx, culture, text); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Printf("interpretation failed: %v", err)
		}
	}()
}

// Run performs one pass over text and returns its results. When ctx is
// cancelled it returns the previously committed results with ctx's error
// and publishes nothing.
func (p *ParserAndInterpreter) Run(ctx context.Context, culture, text string) ([]ResultLine, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	culture = MatchCulture(culture)
	lines := p.lexer.Tokenize(culture, text)
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.LineTextIncludingLineBreak
	}

	prev := p.state.Load()
	from := 0
	if prev != nil && prev.culture == culture {
		from = DetermineLineFromWhichSomethingHasChanged(prev.texts, texts)
	}
	p.mu.Lock()
	from = min(from, p.dirtyFrom)
	p.dirtyFrom = from
	p.mu.Unlock()

	results := make([]ResultLine, len(lines))
	if prev != nil {
		copy(results[:from], prev.results)
	}
	for i := from; i < len(lines); i++ {
		r, err := p.interpretLine(ctx, culture, lines[i])
		if err != nil {
			return p.Results(), err
		}
		results[i] = r
	}
	if err := ctx.Err(); err != nil {
		return p.Results(), err
	}

	p.state.Store(&passState{culture: culture, texts: texts, results: results})
	p.mu.Lock()
	p.dirtyFrom = noDirtyLine
	subs := make([]func(context.Context, []ResultLine), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()
	for _, fn := range subs {
		fn(ctx, results)
	}
	return results, nil
}

func (p *ParserAndInterpreter) interpretLine(ctx context.Context, culture string, line TokenizedTextLine) (ResultLine, error) {
	scope := p.variables.BeginRecordVariableSnapshot(ctx, line.LineNumber)
	defer scope.Close()

	data, err := ParseData(ctx, p.logger, p.registry.DataParsers(culture), culture, line)
	if err != nil {
		return ResultLine{}, err
	}
	line = p.lexer.TokenizeLine(culture, line.LineNumber, line.Start, line.LineTextIncludingLineBreak, p.variables.Names(), data)

	pc := &ParserContext{
		Culture:    culture,
		Variables:  p.variables,
		Operations: p.operations,
		Lexer:      p.lexer,
		Registry:   p.registry,
		Logger:     p.logger,
	}
	result := ResultLine{TokenizedTextLine: line}
	cur := line.Cursor()
	for !cur.Done() {
		at := cur.Peek()
		res, ok, err := pc.ParseStatement(ctx, cur)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return ResultLine{}, cerr
			}
			var doe *DataOperationError
			if !errors.As(err, &doe) {
				return ResultLine{}, err
			}
			end := len(strings.TrimRight(line.LineTextIncludingLineBreak, "\r\n"))
			result.SummarizedResultData = NewErrorData(DataLocation{LineText: at.LineText, Start: at.StartInLine, End: end}, doe)
			return result, nil
		}
		if !ok {
			cur.Next()
			continue
		}
		result.StatementsAndData = append(result.StatementsAndData, res)
	}
	for _, s := range result.StatementsAndData {
		if s.Data != nil {
			result.SummarizedResultData = s.Data
			break
		}
	}
	return result, nil
}
