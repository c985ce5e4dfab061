package main

import (
	"image"
	"image/color"
	"strconv"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"smartcalc/app/lang"
)

var (
	gutterBg       = color.NRGBA{R: 0x1E, G: 0x1E, B: 0x1E, A: 0xFF}
	gutterFg       = color.NRGBA{R: 0x85, G: 0x85, B: 0x85, A: 0xFF}
	gutterDivider  = color.NRGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xFF}
	gutterWidth    = unit.Dp(50)
	resultColor    = color.NRGBA{R: 0x4E, G: 0xC9, B: 0xB0, A: 0xFF} // teal
	resultVarColor = color.NRGBA{R: 0x9C, G: 0xDB, B: 0xFE, A: 0xFF} // light blue
	resultErrColor = color.NRGBA{R: 0xF4, G: 0x47, B: 0x47, A: 0xFF} // red
)

// ResultKind tells the results column how to color a line.
type ResultKind int

const (
	ResultValue ResultKind = iota
	ResultVariable
	ResultError
)

// LineResult is what the results column shows for one line.
type LineResult struct {
	Text string
	Kind ResultKind
}

// LineResults converts a published pass into the results column. Lines
// that assign a variable are told apart from plain calculations.
func LineResults(lines []lang.ResultLine, culture string) []LineResult {
	out := make([]LineResult, len(lines))
	for i, rl := range lines {
		r := LineResult{Text: rl.DisplayText(culture)}
		switch {
		case isError(rl.SummarizedResultData):
			r.Kind = ResultError
		case declaresVariable(rl.StatementsAndData):
			r.Kind = ResultVariable
		}
		out[i] = r
	}
	return out
}

func isError(d lang.Data) bool {
	_, ok := d.(*lang.ErrorData)
	return ok
}

func declaresVariable(stmts []lang.StatementResult) bool {
	for _, s := range stmts {
		if _, ok := s.Statement.(*lang.VariableDeclarationStatement); ok {
			return true
		}
	}
	return false
}

func (k ResultKind) color() color.NRGBA {
	switch k {
	case ResultVariable:
		return resultVarColor
	case ResultError:
		return resultErrColor
	default:
		return resultColor
	}
}

// visibleLines returns the half-open range of lines intersecting a
// viewport height pixels tall scrolled by scrollY.
func visibleLines(scrollY, height, lineHeight, count int) (first, last int) {
	if lineHeight <= 0 {
		lineHeight = 16
	}
	first = max(scrollY/lineHeight, 0)
	last = min(first+height/lineHeight+2, count)
	return first, max(first, last)
}

// MeasureLineHeight measures the rendered line height for the given theme.
func MeasureLineHeight(gtx layout.Context, th *material.Theme) int {
	if h, _ := measureLineMetrics(gtx, th); h > 0 {
		return h
	}
	return gtx.Sp(th.TextSize)
}

// gutterLabel draws one single-line label in a lineHeight-tall slot.
func gutterLabel(gtx layout.Context, lbl material.LabelStyle, x, y, w, lineHeight int) {
	lbl.MaxLines = 1
	off := op.Offset(image.Pt(x, y)).Push(gtx.Ops)
	cl := clip.Rect(image.Rect(0, 0, w, lineHeight)).Push(gtx.Ops)
	labelGtx := gtx
	labelGtx.Constraints = layout.Exact(image.Pt(w, lineHeight))
	lbl.Layout(labelGtx)
	cl.Pop()
	off.Pop()
}

// LayoutLeftGutter renders line numbers in a fixed-width column. scrollY is
// the vertical scroll offset and topPad the editor's top inset, in pixels.
func LayoutLeftGutter(gtx layout.Context, th *material.Theme, lineCount, scrollY, lineHeight, topPad int) layout.Dimensions {
	width := gtx.Dp(gutterWidth)
	height := gtx.Constraints.Max.Y
	paint.FillShape(gtx.Ops, gutterBg, clip.Rect(image.Rect(0, 0, width, height)).Op())

	if lineHeight <= 0 {
		lineHeight = 16
	}
	first, last := visibleLines(scrollY, height, lineHeight, lineCount)
	for i := first; i < last; i++ {
		y := topPad + i*lineHeight - scrollY
		lbl := material.Label(th, th.TextSize, strconv.Itoa(i+1))
		lbl.Color = gutterFg
		lbl.Alignment = text.End
		gutterLabel(gtx, lbl, 0, y, width-gtx.Dp(4), lineHeight)
	}

	x := width - 1
	paint.FillShape(gtx.Ops, gutterDivider, clip.Rect(image.Rect(x, 0, x+1, height)).Op())
	return layout.Dimensions{Size: image.Pt(width, height)}
}

// LayoutRightGutter renders the results column, widthPx pixels wide.
// Results are right-aligned so units line up.
func LayoutRightGutter(gtx layout.Context, th *material.Theme, results []LineResult, scrollY, lineHeight, topPad, widthPx int) layout.Dimensions {
	height := gtx.Constraints.Max.Y
	if lineHeight <= 0 {
		lineHeight = 16
	}
	pad := gtx.Dp(8)
	first, last := visibleLines(scrollY, height, lineHeight, len(results))
	for i := first; i < last; i++ {
		r := results[i]
		if r.Text == "" {
			continue
		}
		lbl := material.Label(th, th.TextSize, r.Text)
		lbl.Color = r.Kind.color()
		lbl.Alignment = text.End
		gutterLabel(gtx, lbl, pad, topPad+i*lineHeight-scrollY, widthPx-2*pad, lineHeight)
	}
	return layout.Dimensions{Size: image.Pt(widthPx, height)}
}
