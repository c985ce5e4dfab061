//go:build !(js && wasm)

package main

import (
	"gioui.org/app"

	"smartcalc/app/lang"
)

func registerWebCallbacks(*EditorState, *app.Window, *lang.ParserAndInterpreter) {}
