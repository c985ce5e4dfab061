//go:build js && wasm

package main

import (
	"syscall/js"

	"gioui.org/app"

	"smartcalc/app/lang"
)

// registerWebCallbacks exposes the document and its culture to the page
// hosting the wasm build, for share links and the language picker.
func registerWebCallbacks(es *EditorState, w *app.Window, interp *lang.ParserAndInterpreter) {
	js.Global().Set("getEditorText", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return es.Editor.Text()
	}))
	js.Global().Set("setEditorText", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) > 0 {
			es.SetDocument(args[0].String(), "")
			w.Invalidate()
		}
		return nil
	}))
	js.Global().Set("getCulture", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return interp.Culture()
	}))
	js.Global().Set("setCulture", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) > 0 && args[0].Type() == js.TypeString {
			interp.SetCulture(args[0].String())
			w.Invalidate()
		}
		return nil
	}))

	// Decoded from the URL by the page before the module started.
	if t := js.Global().Get("_initialText"); t.Type() == js.TypeString && t.String() != "" {
		es.SetDocument(t.String(), "")
	}
	if c := js.Global().Get("navigator").Get("language"); c.Type() == js.TypeString {
		interp.SetCulture(c.String())
	}
}
