package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerWritesAndClears(t *testing.T) {
	var out syncBuffer
	s := NewSpinner("Resolving deployment")
	s.SetWriter(&out)
	s.interval = time.Millisecond

	s.Start()
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Resolving deployment") {
		t.Errorf("spinner output missing message: %q", got)
	}
	if !strings.HasSuffix(got, "\r\033[K") {
		t.Errorf("spinner did not clear the line: %q", got)
	}
}

func TestWithSpinnerReturnsError(t *testing.T) {
	want := "boom"
	err := WithSpinner("working", func() error { return errString(want) })
	if err == nil || err.Error() != want {
		t.Errorf("WithSpinner() error = %v, want %q", err, want)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
