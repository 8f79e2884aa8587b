package execx

import "sync"

// maxLine caps a single delivered line; progress output without line breaks
// is handed over in chunks of this size.
const maxLine = 64 << 10

// lineWriter splits written bytes into lines the way terminal progress
// output needs: \n, \r and \r\n all end a line.
type lineWriter struct {
	mu     sync.Mutex
	buf    []byte
	max    int
	lastCR bool
	split  bool // the last flush was a size cut, not a terminator
	emit   func(string)
}

func newLineWriter(max int, emit func(string)) *lineWriter {
	return &lineWriter{max: max, emit: emit}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range p {
		switch b {
		case '\n':
			if !w.lastCR {
				w.end()
			}
			w.lastCR = false
		case '\r':
			w.end()
			w.lastCR = true
		default:
			w.lastCR = false
			w.buf = append(w.buf, b)
			if len(w.buf) >= w.max {
				w.flush()
				w.split = true
			}
		}
	}
	return len(p), nil
}

// Flush delivers a trailing line that had no terminator.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.flush()
	}
}

// end terminates the current line. A terminator right after a size cut does
// not produce an extra empty line.
func (w *lineWriter) end() {
	if w.split && len(w.buf) == 0 {
		w.split = false
		return
	}
	w.flush()
}

func (w *lineWriter) flush() {
	w.split = false
	w.emit(string(w.buf))
	w.buf = w.buf[:0]
}
