package main

import (
	"context"
	"flag"
	"image"
	"image/color"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"smartcalc/app/lang"
	"smartcalc/app/lang/rates"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

var (
	editorBg = color.NRGBA{R: 0x1E, G: 0x1E, B: 0x1E, A: 0xFF}
	editorFg = color.NRGBA{R: 0xD4, G: 0xD4, B: 0xD4, A: 0xFF}
)

func main() {
	flag.StringVar(&opts.culture, "culture", "en-US", "grammar and number format culture (en-US or fr-FR)")
	flag.StringVar(&opts.ratesURL, "rates-url", rates.DefaultEndpoint, "currency rate feed; empty to use bundled rates only")
	flag.StringVar(&opts.ratesDB, "rates-db", "", "SQLite file caching the rates (default in the user cache directory)")
	flag.Parse()

	go func() {
		w := new(app.Window)
		w.Option(app.Title("smartcalc"), app.Size(unit.Dp(1024), unit.Dp(768)))
		if err := run(w); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

var opts struct {
	culture  string
	ratesURL string
	ratesDB  string
}

// resultBox holds the latest published pass for the UI goroutine.
type resultBox struct {
	mu    sync.Mutex
	lines []lang.ResultLine
}

func (b *resultBox) set(lines []lang.ResultLine) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = lines
}

func (b *resultBox) get() []lang.ResultLine {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lines
}

func newRateService() (*rates.Service, error) {
	path := opts.ratesDB
	if path == "" {
		p, err := rates.DefaultDatabasePath()
		if err != nil {
			log.Printf("No rate cache: %v", err)
		}
		path = p
	}
	svc, err := rates.New(rates.Config{Endpoint: opts.ratesURL, DatabasePath: path})
	if err != nil && path != "" {
		log.Printf("Rate cache %s unavailable: %v", path, err)
		svc, err = rates.New(rates.Config{Endpoint: opts.ratesURL})
	}
	return svc, err
}

func run(w *app.Window) error {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	th.Face = "Go Mono"
	th.TextSize = unit.Sp(14)

	es := NewEditorState()
	expl := explorer.NewExplorer(w)
	var divider ResultsDivider

	// Load file from command line if provided
	if flag.NArg() > 0 {
		if err := es.LoadFile(flag.Arg(0)); err != nil {
			log.Printf("Failed to open %s: %v", flag.Arg(0), err)
		}
	}

	rateSvc, err := newRateService()
	if err != nil {
		return err
	}
	defer rateSvc.Close()

	reg := lang.DefaultRegistry(nil)
	lx := lang.NewLexer(reg)
	doc := lang.NewTextDocument("")
	interp := lang.NewParserAndInterpreter(doc, lang.Config{
		Culture:  opts.culture,
		Rates:    rateSvc,
		Registry: reg,
	})
	defer interp.Close()
	registerWebCallbacks(es, w, interp)

	var box resultBox
	interp.Subscribe(func(ctx context.Context, lines []lang.ResultLine) {
		if ctx.Err() != nil {
			return
		}
		box.set(lines)
		w.Invalidate()
	})
	doc.SetText(es.Editor.Text())
	interp.Start()

	var shortcutTag = new(bool)
	var openCh <-chan FileResult
	var saveCh <-chan SaveResult
	var exportCh <-chan SaveResult

	// Relative dates, "now" and expired currency rates are refreshed by
	// interpreting the whole document again from time to time.
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	// Channel-forward pattern for explorer compatibility
	events := make(chan event.Event)
	acks := make(chan struct{})
	go func() {
		for {
			ev := w.Event()
			events <- ev
			<-acks
			if _, ok := ev.(app.DestroyEvent); ok {
				return
			}
		}
	}()

	w.Option(app.Title(es.Title()))

	var ops op.Ops
	for {
		select {
		case <-ticker.C:
			interp.Invalidate()

		case result := <-openCh:
			openCh = nil
			if result.Err == nil {
				es.SetDocument(result.Text, "")
				w.Option(app.Title(es.Title()))
			} else {
				log.Printf("Open: %v", result.Err)
			}
			w.Invalidate()

		case result := <-saveCh:
			saveCh = nil
			if result.Err == nil {
				es.Dirty = false
				w.Option(app.Title(es.Title()))
			} else {
				log.Printf("Save: %v", result.Err)
			}
			w.Invalidate()

		case result := <-exportCh:
			exportCh = nil
			if result.Err != nil {
				log.Printf("Export: %v", result.Err)
			}

		case e := <-events:
			expl.ListenEvents(e)
			switch e := e.(type) {
			case app.DestroyEvent:
				acks <- struct{}{}
				return e.Err
			case app.FrameEvent:
				gtx := app.NewContext(&ops, e)

				windowW := gtx.Constraints.Max.X
				rightGutterWidth := divider.Width(windowW)

				// Handle keyboard shortcuts
				event.Op(gtx.Ops, shortcutTag)
				for {
					ev, ok := gtx.Event(
						key.Filter{Required: key.ModShortcut, Name: "O"},
						key.Filter{Required: key.ModShortcut, Name: "S"},
						key.Filter{Required: key.ModShortcut, Name: "="},
						key.Filter{Required: key.ModShortcut, Name: "-"},
						key.Filter{Required: key.ModShortcut, Name: "A"},
						key.Filter{Required: key.ModShortcut, Name: "L"},
						key.Filter{Required: key.ModShortcut, Name: "E"},
					)
					if !ok {
						break
					}
					if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
						switch ke.Name {
						case "O":
							if openCh == nil {
								openCh = OpenDocumentAsync(expl)
							}
						case "S":
							if saveCh == nil {
								if es.FilePath != "" {
									// Save directly
									go func() {
										err := es.SaveFile(es.FilePath)
										if err != nil {
											log.Printf("Save error: %v", err)
										}
										w.Invalidate()
									}()
								} else {
									// Save As
									saveCh = SaveFileAsync(expl, []byte(es.Editor.Text()), es.SaveName())
								}
							}
						case "=": // Cmd+= (Cmd+Plus)
							if th.TextSize < unit.Sp(48) {
								th.TextSize += unit.Sp(2)
							}
						case "-": // Cmd+-
							if th.TextSize > unit.Sp(8) {
								th.TextSize -= unit.Sp(2)
							}
						case "A": // Cmd+A / Ctrl+A: select all
							es.Editor.SetCaret(es.Editor.Len(), 0)
						case "L": // switch culture
							interp.SetCulture(nextCulture(interp.Culture()))
						case "E": // export the document with its results
							if exportCh == nil {
								out := FormatExport(es.Lines(), LineResults(box.get(), interp.Culture()))
								exportCh = SaveFileAsync(expl, []byte(out), strings.TrimSuffix(es.SaveName(), ".calc")+".results.txt")
							}
						}
					}
				}

				// Process editor events
				for {
					ev, ok := es.Editor.Update(gtx)
					if !ok {
						break
					}
					if _, ok := ev.(widget.ChangeEvent); ok && !es.Dirty {
						es.Dirty = true
						w.Option(app.Title(es.Title()))
					}
				}

				// Starts a background pass when the text changed.
				doc.SetText(es.Editor.Text())

				published := box.get()
				culture := interp.Culture()
				results := LineResults(published, culture)

				// Fill background
				paint.FillShape(gtx.Ops, editorBg, clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Op())

				// Measure actual line height and editor padding
				lineHeight := MeasureLineHeight(gtx, th)
				topPad := gtx.Dp(unit.Dp(4)) // must match editor inset
				lineCount := es.LineCount()
				scrollY := 0

				// Current line highlight (caret line)
				caretLine, _ := es.Editor.CaretPos()
				topSpacerPx := gtx.Dp(unit.Dp(6))
				highlightY := topSpacerPx + topPad + caretLine*lineHeight
				highlightColor := color.NRGBA{R: 0x2A, G: 0x2D, B: 0x32, A: 0xFF}
				paint.FillShape(gtx.Ops, highlightColor,
					clip.Rect(image.Rect(0, highlightY, gtx.Constraints.Max.X, highlightY+lineHeight)).Op())

				hl := highlighter{lexer: lx, culture: culture, results: published}

				// Layout: top padding, then left gutter | editor | right gutter
				layout.Flex{Axis: layout.Vertical}.Layout(gtx,
					layout.Rigid(func(gtx C) D {
						return layout.Spacer{Height: unit.Dp(6)}.Layout(gtx)
					}),
					layout.Flexed(1, func(gtx C) D {
						return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
							layout.Rigid(func(gtx C) D {
								return LayoutLeftGutter(gtx, th, lineCount, scrollY, lineHeight, topPad)
							}),
							layout.Flexed(1, func(gtx C) D {
								return layoutEditor(gtx, th, es, hl)
							}),
							layout.Rigid(func(gtx C) D {
								return divider.Layout(gtx, windowW)
							}),
							layout.Rigid(func(gtx C) D {
								return LayoutRightGutter(gtx, th, results, scrollY, lineHeight, topPad, rightGutterWidth)
							}),
						)
					}),
				)

				e.Frame(gtx.Ops)
			}
			acks <- struct{}{}
		}
	}
}

func nextCulture(current string) string {
	if current == "fr-fr" {
		return "en-US"
	}
	return "fr-FR"
}

// highlighter colors editor lines, preferring the data-aware tokens of the
// last pass when the line text has not changed since.
type highlighter struct {
	lexer   *lang.Lexer
	culture string
	results []lang.ResultLine
}

func (h highlighter) line(i int, text string) []Token {
	if i < len(h.results) {
		tl := h.results[i].TokenizedTextLine
		if tl.Text() == text {
			return Highlight(text, tl.Tokens)
		}
	}
	return Tokenize(h.lexer, h.culture, text)
}

func layoutEditor(gtx C, th *material.Theme, es *EditorState, hl highlighter) D {
	ed := material.Editor(th, &es.Editor, "")
	ed.Font = font.Font{Typeface: "Go Mono"}
	ed.Color = color.NRGBA{A: 0x00} // transparent text + caret (overlay draws colored text)
	ed.HintColor = color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xFF}
	ed.TextSize = th.TextSize
	ed.SelectionColor = color.NRGBA{R: 0x26, G: 0x4F, B: 0x78, A: 0xFF}

	return layout.UniformInset(unit.Dp(4)).Layout(gtx, func(gtx C) D {
		// 1. Editor layout (transparent text, handles input + selection)
		dims := ed.Layout(gtx)

		// 2. Colored text overlay clipped to editor bounds
		cl := clip.Rect(image.Rect(0, 0, dims.Size.X, dims.Size.Y)).Push(gtx.Ops)
		drawHighlightedText(gtx, th, es, hl, dims)
		cl.Pop()

		return dims
	})
}

func drawHighlightedText(gtx C, th *material.Theme, es *EditorState, hl highlighter, edDims D) {
	lines := es.Lines()

	// Measure line height and baseline using a sample label
	lineHeight, baseline := measureLineMetrics(gtx, th)
	if lineHeight <= 0 {
		return
	}
	ascent := lineHeight - baseline // distance from top of label to text baseline

	// CaretCoords().Y returns the text baseline position (adjusted for scroll).
	// Compute baseY = top of line 0 in viewport coordinates.
	caretLine, _ := es.Editor.CaretPos()
	caretPt := es.Editor.CaretCoords()
	baseY := caretPt.Y - float32(ascent) - float32(caretLine*lineHeight)

	// Draw each visible line's tokens
	for i, line := range lines {
		y := int(baseY + float32(i*lineHeight))
		if y+lineHeight < 0 || y > edDims.Size.Y {
			continue
		}
		tokens := hl.line(i, line)
		x := 0
		for _, tok := range tokens {
			lbl := material.Label(th, th.TextSize, tok.Text)
			lbl.Color = TokenColor(tok.Kind)
			lbl.Font = font.Font{Typeface: "Go Mono"}
			lbl.MaxLines = 1

			off := op.Offset(image.Pt(x, y)).Push(gtx.Ops)
			tgtx := gtx
			tgtx.Constraints.Min = image.Point{}
			tgtx.Constraints.Max = image.Pt(edDims.Size.X-x, lineHeight)
			dims := lbl.Layout(tgtx)
			off.Pop()

			x += dims.Size.X
		}
	}

	// Draw custom caret (since editor caret is also transparent)
	if gtx.Focused(&es.Editor) {
		cx := int(caretPt.X)
		cy := int(caretPt.Y)
		paint.FillShape(gtx.Ops, editorFg,
			clip.Rect(image.Rect(cx, cy-ascent, cx+2, cy+baseline)).Op())
		// Request redraw for caret visibility
		gtx.Execute(op.InvalidateCmd{})
	}
}

// measureLineMetrics returns the line height and baseline (distance from bottom
// to text baseline) for a single line of text at the theme's text size.
func measureLineMetrics(gtx C, th *material.Theme) (height, baseline int) {
	macro := op.Record(gtx.Ops)
	lbl := material.Label(th, th.TextSize, "0")
	lbl.MaxLines = 1
	sampleGtx := gtx
	sampleGtx.Constraints.Min = image.Point{}
	dims := lbl.Layout(sampleGtx)
	macro.Stop()
	return dims.Size.Y, dims.Baseline
}
