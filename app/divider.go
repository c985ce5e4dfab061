package main

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
)

// ResultsDivider is the draggable handle between the editor and the results
// column. The column width is kept as a fraction of the window so it
// survives window resizes.
type ResultsDivider struct {
	Ratio float32

	dragging   bool
	startX     float32
	startRatio float32
	tag        bool
}

var (
	dividerColor      = color.NRGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xFF}
	dividerHoverColor = color.NRGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xFF}
)

const (
	dividerWidthPx     = 6
	defaultResultRatio = float32(1.0 / 3.0)
	minResultsWidthPx  = 80
	maxResultRatio     = 0.7
)

// clampRatio keeps the results column at least minResultsWidthPx wide and
// at most maxResultRatio of the window.
func clampRatio(ratio float32, windowW int) float32 {
	if windowW <= 0 {
		return ratio
	}
	if lo := float32(minResultsWidthPx) / float32(windowW); ratio < lo {
		ratio = lo
	}
	if ratio > maxResultRatio {
		ratio = maxResultRatio
	}
	return ratio
}

// Width returns the results column width in pixels for a window windowW
// pixels wide.
func (d *ResultsDivider) Width(windowW int) int {
	if d.Ratio == 0 {
		d.Ratio = defaultResultRatio
	}
	d.Ratio = clampRatio(d.Ratio, windowW)
	return int(d.Ratio * float32(windowW))
}

// Layout draws the handle and applies drags to Ratio. A double click
// restores the default width.
func (d *ResultsDivider) Layout(gtx layout.Context, windowW int) layout.Dimensions {
	height := gtx.Constraints.Max.Y

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: &d.tag,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			if pe.NumClicks == 2 {
				d.Ratio = defaultResultRatio
				d.dragging = false
				continue
			}
			d.dragging = true
			d.startX = pe.Position.X
			d.startRatio = d.Ratio
		case pointer.Drag:
			if d.dragging && windowW > 0 {
				delta := (pe.Position.X - d.startX) / float32(windowW)
				d.Ratio = clampRatio(d.startRatio-delta, windowW)
			}
		case pointer.Release, pointer.Cancel:
			d.dragging = false
		}
	}

	c := dividerColor
	if d.dragging {
		c = dividerHoverColor
	}
	rect := image.Rect(0, 0, dividerWidthPx, height)
	paint.FillShape(gtx.Ops, c, clip.Rect(rect).Op())

	area := clip.Rect(rect).Push(gtx.Ops)
	event.Op(gtx.Ops, &d.tag)
	pointer.CursorColResize.Add(gtx.Ops)
	area.Pop()

	return layout.Dimensions{Size: image.Pt(dividerWidthPx, height)}
}
