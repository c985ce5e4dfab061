package main

import (
	"os"
	"path/filepath"
	"strings"

	"gioui.org/widget"
)

const untitledName = "untitled.calc"

// EditorState is the document being edited and where it lives on disk.
type EditorState struct {
	Editor   widget.Editor
	FilePath string
	Dirty    bool
}

// NewEditorState creates a multi-line editor.
func NewEditorState() *EditorState {
	es := &EditorState{}
	es.Editor.SingleLine = false
	es.Editor.Submit = false
	return es
}

// Lines returns the text buffer split the way the interpreter splits it.
func (es *EditorState) Lines() []string {
	return strings.Split(es.Editor.Text(), "\n")
}

// LineCount returns the number of lines in the buffer.
func (es *EditorState) LineCount() int {
	return strings.Count(es.Editor.Text(), "\n") + 1
}

// SetDocument replaces the buffer with a clean document at path. path is
// empty for documents without a file, such as those from the open dialog.
func (es *EditorState) SetDocument(text, path string) {
	es.Editor.SetText(normalizeNewlines(text))
	es.FilePath = path
	es.Dirty = false
}

// LoadFile reads a document from disk.
func (es *EditorState) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	es.SetDocument(string(data), path)
	return nil
}

// SaveFile writes the buffer to path.
func (es *EditorState) SaveFile(path string) error {
	if err := os.WriteFile(path, []byte(es.Editor.Text()), 0o644); err != nil {
		return err
	}
	es.FilePath = path
	es.Dirty = false
	return nil
}

// SaveName is the name suggested by the save dialog.
func (es *EditorState) SaveName() string {
	if es.FilePath == "" {
		return untitledName
	}
	return filepath.Base(es.FilePath)
}

// Title returns the window title showing file name and dirty state.
func (es *EditorState) Title() string {
	name := "untitled"
	if es.FilePath != "" {
		name = filepath.Base(es.FilePath)
	}
	if es.Dirty {
		name = "* " + name
	}
	return name + " — smartcalc"
}
