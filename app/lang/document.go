package lang

import "sync"

// TextDocument is the text being edited. SetText is the only way to change
// it; listeners run synchronously on the caller's goroutine.
type TextDocument struct {
	mu        sync.Mutex
	text      string
	listeners map[int]func(text string)
	nextID    int
}

// NewTextDocument returns a document holding text.
func NewTextDocument(text string) *TextDocument {
	return &TextDocument{text: text, listeners: map[int]func(string){}}
}

// Text returns the current text.
func (d *TextDocument) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// SetText replaces the text and notifies listeners when it changed.
func (d *TextDocument) SetText(text string) {
	d.mu.Lock()
	if text == d.text {
		d.mu.Unlock()
		return
	}
	d.text = text
	fns := make([]func(string), 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn(text)
	}
}

// OnTextChanged registers fn and returns a function removing it.
func (d *TextDocument) OnTextChanged(fn func(text string)) (remove func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.listeners, id)
	}
}
