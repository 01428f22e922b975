package xcodebuild

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// lineWriter prefixes every line written through it. Writes are
// serialized so stdout and stderr copiers can share one sink.
type lineWriter struct {
	mu     sync.Mutex
	w      io.Writer
	prefix []byte
	midLn  bool // last write ended without a newline
}

func newLineWriter(w io.Writer, prefix string) *lineWriter {
	return &lineWriter{w: w, prefix: []byte(prefix)}
}

func (lw *lineWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	var buf bytes.Buffer
	rest := p
	for len(rest) > 0 {
		if !lw.midLn {
			buf.Write(lw.prefix)
		}
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			buf.Write(rest)
			lw.midLn = true
			break
		}
		buf.Write(rest[:i+1])
		rest = rest[i+1:]
		lw.midLn = false
	}
	if _, err := lw.w.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

// String returns everything kept, with CRLF normalized to LF.
func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.ReplaceAll(string(t.buf), "\r\n", "\n")
}

// LastLines returns at most n trailing non-empty lines.
func LastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, "\n")
}
