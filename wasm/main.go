//go:build js && wasm

package main

import (
	"context"
	"log"
	"syscall/js"

	"smartcalc/app/lang"
	"smartcalc/app/lang/rates"
)

var editorText string

// Blocking HTTP is not allowed inside a js callback, so the page evaluates
// with the bundled rate table.
func newInterpreter() *lang.ParserAndInterpreter {
	table, err := rates.Defaults()
	if err != nil {
		log.Printf("bundled rates: %v", err)
	}
	return lang.NewParserAndInterpreter(nil, lang.Config{
		Culture: js.Global().Get("navigator").Get("language").String(),
		Rates:   lang.StaticRates(table),
	})
}

func main() {
	interp := newInterpreter()

	// evaluate(text[, culture]) returns one {text, isErr} per line.
	js.Global().Set("evaluate", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) < 1 {
			return nil
		}
		text := args[0].String()
		culture := interp.Culture()
		if len(args) > 1 && args[1].Type() == js.TypeString {
			culture = args[1].String()
		}
		editorText = text

		results, err := interp.Run(context.Background(), culture, text)
		if err != nil {
			log.Printf("evaluate: %v", err)
		}
		culture = lang.MatchCulture(culture)
		arr := js.Global().Get("Array").New(len(results))
		for i, r := range results {
			_, isErr := r.SummarizedResultData.(*lang.ErrorData)
			obj := js.Global().Get("Object").New()
			obj.Set("text", r.DisplayText(culture))
			obj.Set("isErr", isErr)
			arr.SetIndex(i, obj)
		}
		return arr
	}))

	// Register getEditorText for share link
	js.Global().Set("getEditorText", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return editorText
	}))

	// Register setEditorText for share link restore
	js.Global().Set("setEditorText", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) > 0 {
			editorText = args[0].String()
			// Update textarea via JS callback
			ta := js.Global().Get("document").Call("getElementById", "editor")
			if !ta.IsUndefined() && !ta.IsNull() {
				ta.Set("value", editorText)
				ta.Call("dispatchEvent", js.Global().Get("Event").New("input"))
			}
		}
		return nil
	}))

	// Signal that WASM is ready
	js.Global().Set("_wasmReady", true)
	onReady := js.Global().Get("_onWasmReady")
	if !onReady.IsUndefined() && !onReady.IsNull() {
		onReady.Invoke()
	}

	// Block forever
	select {}
}
