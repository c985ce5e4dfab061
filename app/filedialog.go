package main

import (
	"io"
	"strings"

	"gioui.org/x/explorer"
)

// documentExtensions are offered by the open dialog.
var documentExtensions = []string{".calc", ".txt"}

// FileResult holds the result of a file open operation.
type FileResult struct {
	Text string
	Err  error
}

// SaveResult holds the result of a file save operation.
type SaveResult struct {
	Err error
}

// normalizeNewlines turns CRLF and CR line breaks into LF.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// OpenDocumentAsync shows a file-open dialog in a goroutine and sends the
// chosen document, with normalized line breaks, on the returned channel.
func OpenDocumentAsync(expl *explorer.Explorer) <-chan FileResult {
	ch := make(chan FileResult, 1)
	go func() {
		file, err := expl.ChooseFile(documentExtensions...)
		if err != nil {
			ch <- FileResult{Err: err}
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		ch <- FileResult{Text: normalizeNewlines(string(data)), Err: err}
	}()
	return ch
}

// SaveFileAsync shows a file-save dialog in a goroutine and writes content
// to the chosen file.
func SaveFileAsync(expl *explorer.Explorer, content []byte, defaultName string) <-chan SaveResult {
	ch := make(chan SaveResult, 1)
	go func() {
		w, err := expl.CreateFile(defaultName)
		if err != nil {
			ch <- SaveResult{Err: err}
			return
		}
		_, err = w.Write(content)
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
		ch <- SaveResult{Err: err}
	}()
	return ch
}

// FormatExport lays out the document with each result appended after an
// equals sign, aligned on the longest line.
func FormatExport(lines []string, results []LineResult) string {
	width := 0
	for i, l := range lines {
		if i < len(results) && results[i].Text != "" {
			width = max(width, len([]rune(l)))
		}
	}
	var b strings.Builder
	for i, l := range lines {
		b.WriteString(l)
		if i < len(results) && results[i].Text != "" {
			b.WriteString(strings.Repeat(" ", width-len([]rune(l))))
			b.WriteString("  = ")
			b.WriteString(results[i].Text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
