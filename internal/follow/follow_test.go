package follow

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bimmerbailey/shpdiag/internal/capture"
	"github.com/bimmerbailey/shpdiag/internal/config"
)

func hexLines(lines ...string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(hex.EncodeToString([]byte(line)))
		b.WriteString("\n")
	}
	return b.String()
}

// Helper function to create a temporary capture file
func createTempCapture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.hex")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return path
}

func appendTo(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("Failed to open file for append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
}

// Helper function to collect output entries (thread-safe)
func collectingOutputFunc() (func(config.Entry) error, func() []config.Entry) {
	var mu sync.Mutex
	var entries []config.Entry

	outputFunc := func(e config.Entry) error {
		mu.Lock()
		defer mu.Unlock()
		entries = append(entries, e)
		return nil
	}
	getEntries := func() []config.Entry {
		mu.Lock()
		defer mu.Unlock()
		result := make([]config.Entry, len(entries))
		copy(result, entries)
		return result
	}
	return outputFunc, getEntries
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestFollower(path string, out func(config.Entry) error, mutate func(*Options)) *Follower {
	log := quietLogger()
	opts := Options{
		FilePath:   path,
		Decoder:    capture.New(capture.Options{Logger: log}),
		OutputFunc: out,
		Logger:     log,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestFollower_NoFollowDecodesWholeFile(t *testing.T) {
	path := createTempCapture(t, hexLines("Input A", "more", "Macro - Start", "42", "Driver e vent: go"))
	out, entries := collectingOutputFunc()

	if err := newTestFollower(path, out, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := entries()
	want := []string{"Input A more", "Macro - Start", "Driver event: go"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].Text != want[i] || got[i].Line != i+1 {
			t.Errorf("entry %d = %+v, want %q", i, got[i], want[i])
		}
	}
}

func TestFollower_LinesLimit(t *testing.T) {
	tests := []struct {
		name          string
		lines         int
		expectedCount int
	}{
		{"all entries", 0, 4},
		{"last two", 2, 3}, // two complete entries plus the flushed open one
		{"more than exist", 10, 4},
	}

	content := hexLines("Input 1", "Input 2", "Input 3", "Input 4")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTempCapture(t, content)
			out, entries := collectingOutputFunc()

			f := newTestFollower(path, out, func(o *Options) { o.Lines = tt.lines })
			if err := f.Run(context.Background()); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(entries()) != tt.expectedCount {
				t.Errorf("Expected %d entries, got %d", tt.expectedCount, len(entries()))
			}
		})
	}
}

func TestFollower_PartialTrailingLine(t *testing.T) {
	content := hexLines("Input A") + hex.EncodeToString([]byte("Input B"))
	path := createTempCapture(t, content)
	out, entries := collectingOutputFunc()

	if err := newTestFollower(path, out, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := entries()
	if len(got) != 2 || got[1].Text != "Input B" {
		t.Fatalf("expected partial line to be flushed, got %+v", got)
	}
}

func TestFollower_MissingFile(t *testing.T) {
	out, _ := collectingOutputFunc()
	f := newTestFollower(filepath.Join(t.TempDir(), "missing.hex"), out, nil)

	err := f.Run(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestFollower_FollowsAppends(t *testing.T) {
	path := createTempCapture(t, hexLines("Input A"))
	out, entries := collectingOutputFunc()
	f := newTestFollower(path, out, func(o *Options) { o.Follow = true })

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- f.Run(ctx) }()

	// Give the watcher time to start.
	time.Sleep(200 * time.Millisecond)
	appendTo(t, path, hexLines("continued", "Driver - Command: Foo", "01/02/2024 Macro"))

	waitFor(t, func() bool { return len(entries()) >= 1 })
	if got := entries()[0].Text; got != "Input A continued Driver - Command: Foo" {
		t.Errorf("first entry = %q", got)
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := entries()
	if len(got) != 2 || got[1].Text != "Macro" {
		t.Fatalf("expected open entry to be flushed on stop, got %+v", got)
	}
	if f.Stats().Fragments != 4 {
		t.Errorf("expected 4 fragments, got %d", f.Stats().Fragments)
	}
}

func TestFollower_RotationWithoutFollowRotate(t *testing.T) {
	path := createTempCapture(t, hexLines("Input A"))
	out, entries := collectingOutputFunc()
	f := newTestFollower(path, out, func(o *Options) { o.Follow = true })

	errCh := make(chan error, 1)
	go func() { errCh <- f.Run(context.Background()) }()

	time.Sleep(200 * time.Millisecond)
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrRotated) {
			t.Fatalf("expected ErrRotated, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run() did not return after rotation")
	}

	if got := entries(); len(got) != 1 || got[0].Text != "Input A" {
		t.Errorf("expected open entry flushed, got %+v", got)
	}
}

func TestFollower_RotationReopensAndContinuesNumbering(t *testing.T) {
	path := createTempCapture(t, hexLines("Input A", "Input B"))
	out, entries := collectingOutputFunc()
	f := newTestFollower(path, out, func(o *Options) {
		o.Follow = true
		o.FollowRotate = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- f.Run(ctx) }()

	time.Sleep(200 * time.Millisecond)
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(hexLines("Input C", "Input D")), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	waitFor(t, func() bool { return len(entries()) >= 3 })
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := entries()
	want := []string{"Input A", "Input B", "Input C", "Input D"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), got)
	}
	for i, e := range got {
		if e.Line != i+1 || e.Text != want[i] {
			t.Errorf("entry %d = %d %q, want %d %q", i, e.Line, e.Text, i+1, want[i])
		}
	}
}

func TestFollower_RotationKeepsPartialLine(t *testing.T) {
	// The old file ends without a newline.
	content := hexLines("Input A") + strings.TrimSuffix(hexLines("Input B"), "\n")
	path := createTempCapture(t, content)
	out, entries := collectingOutputFunc()
	f := newTestFollower(path, out, func(o *Options) {
		o.Follow = true
		o.FollowRotate = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- f.Run(ctx) }()

	time.Sleep(200 * time.Millisecond)
	if err := os.Rename(path, path+".1"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(hexLines("Input C")), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	waitFor(t, func() bool { return len(entries()) >= 2 })
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var texts []string
	for _, e := range entries() {
		texts = append(texts, e.Text)
	}
	if strings.Join(texts, "|") != "Input A|Input B|Input C" {
		t.Errorf("unexpected entries: %q", texts)
	}
}

func TestFollower_RotationTimeout(t *testing.T) {
	saved := rotationTimeout
	rotationTimeout = 300 * time.Millisecond
	t.Cleanup(func() { rotationTimeout = saved })

	path := createTempCapture(t, hexLines("Input A"))
	out, entries := collectingOutputFunc()
	f := newTestFollower(path, out, func(o *Options) {
		o.Follow = true
		o.FollowRotate = true
	})

	errCh := make(chan error, 1)
	go func() { errCh <- f.Run(context.Background()) }()

	time.Sleep(200 * time.Millisecond)
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	select {
	case err := <-errCh:
		if err == nil || !strings.Contains(err.Error(), "timeout") {
			t.Fatalf("expected timeout error, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run() did not return after rotation timeout")
	}

	if got := entries(); len(got) != 1 || got[0].Text != "Input A" {
		t.Errorf("expected open entry flushed, got %+v", got)
	}
}

func TestFollower_ChmodIsNotRotation(t *testing.T) {
	path := createTempCapture(t, hexLines("Input A"))
	out, entries := collectingOutputFunc()
	f := newTestFollower(path, out, func(o *Options) { o.Follow = true })

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- f.Run(ctx) }()

	time.Sleep(200 * time.Millisecond)
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatalf("Chmod() error = %v", err)
	}
	appendTo(t, path, hexLines("Input B"))

	waitFor(t, func() bool { return len(entries()) >= 1 })
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := entries(); len(got) != 2 {
		t.Errorf("expected 2 entries, got %+v", got)
	}
}
