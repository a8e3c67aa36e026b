// Package follow decodes a capture file while it is still being written.
//
// It implements "tail -f" like behavior on top of capture.Stream: raw lines
// appended to the file are decoded as they arrive and an entry is emitted as
// soon as a later line proves it complete.
package follow

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/bimmerbailey/shpdiag/internal/capture"
	"github.com/bimmerbailey/shpdiag/internal/config"
)

// ErrRotated is returned when the capture file is removed or renamed and
// FollowRotate is off.
var ErrRotated = errors.New("capture file rotated")

// rotationTimeout bounds the wait for a rotated file to reappear.
var rotationTimeout = 10 * time.Second

// Options configures the follower.
type Options struct {
	FilePath     string                   // Path to the capture file
	Lines        int                      // Entries to show from existing content, 0 for all
	Follow       bool                     // Keep watching after the existing content
	FollowRotate bool                     // Reopen the path after rotation
	Decoder      *capture.Decoder         // Decoder whose options apply to every entry
	OutputFunc   func(config.Entry) error // Called for each released entry
	Logger       logrus.FieldLogger
}

// Follower decodes a growing capture file.
type Follower struct {
	opts    Options
	log     logrus.FieldLogger
	stream  *capture.Stream
	file    *os.File
	offset  int64
	pending string
	watcher *fsnotify.Watcher
}

// New creates a Follower with the given options.
func New(opts Options) *Follower {
	if opts.Decoder == nil {
		opts.Decoder = capture.New(capture.Options{Logger: opts.Logger})
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Follower{
		opts:   opts,
		log:    log,
		stream: opts.Decoder.NewStream(),
	}
}

// Run decodes the existing content, then watches for appends until ctx is
// cancelled or an error occurs. The open last entry is flushed on return.
func (f *Follower) Run(ctx context.Context) (err error) {
	if err := f.openFile(); err != nil {
		return fmt.Errorf("failed to read %s: %w", f.opts.FilePath, err)
	}
	defer f.close()

	defer func() {
		if flushErr := f.flush(); err == nil {
			err = flushErr
		}
	}()

	if err := f.readExisting(); err != nil {
		return fmt.Errorf("failed to read existing content: %w", err)
	}

	if !f.opts.Follow {
		return nil
	}

	if err := f.setupWatcher(); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}

	return f.watch(ctx)
}

// Stats returns the decode counters accumulated so far.
func (f *Follower) Stats() capture.Stats {
	return f.stream.Stats()
}

func (f *Follower) openFile() error {
	file, err := os.Open(f.opts.FilePath)
	if err != nil {
		return err
	}
	f.file = file
	f.offset = 0
	f.pending = ""
	return nil
}

// readExisting decodes everything currently in the file and emits the last
// Lines entries that are already complete.
func (f *Follower) readExisting() error {
	var entries []config.Entry
	err := f.readAvailable(func(e config.Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return err
	}

	if f.opts.Lines > 0 && len(entries) > f.opts.Lines {
		entries = entries[len(entries)-f.opts.Lines:]
	}
	for _, e := range entries {
		if err := f.opts.OutputFunc(e); err != nil {
			return err
		}
	}
	return nil
}

// readAvailable feeds every complete raw line between the saved offset and
// EOF to the stream. A trailing partial line is kept until its newline
// arrives.
func (f *Follower) readAvailable(emit func(config.Entry) error) error {
	if _, err := f.file.Seek(f.offset, io.SeekStart); err != nil {
		return err
	}

	reader := bufio.NewReader(f.file)
	for {
		chunk, err := reader.ReadString('\n')
		f.offset += int64(len(chunk))

		if strings.HasSuffix(chunk, "\n") {
			line := f.pending + chunk
			f.pending = ""
			for _, e := range f.stream.Feed(strings.TrimRight(line, "\r\n")) {
				if err := emit(e); err != nil {
					return err
				}
			}
		} else {
			f.pending += chunk
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// feedPending treats a trailing partial line as complete.
func (f *Follower) feedPending() error {
	if f.pending == "" {
		return nil
	}
	entries := f.stream.Feed(f.pending)
	f.pending = ""
	for _, e := range entries {
		if err := f.opts.OutputFunc(e); err != nil {
			return err
		}
	}
	return nil
}

// flush feeds any partial line and releases the open entry.
func (f *Follower) flush() error {
	if err := f.feedPending(); err != nil {
		return err
	}
	for _, e := range f.stream.Flush() {
		if err := f.opts.OutputFunc(e); err != nil {
			return err
		}
	}
	return nil
}

func (f *Follower) setupWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	f.watcher = watcher

	return watcher.Add(f.opts.FilePath)
}

func (f *Follower) watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-f.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if err := f.handleEvent(ctx, event); err != nil {
				return err
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (f *Follower) handleEvent(ctx context.Context, event fsnotify.Event) error {
	switch {
	case event.Has(fsnotify.Write):
		return f.readAvailable(f.opts.OutputFunc)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename), event.Has(fsnotify.Chmod):
		// Unlinking a file we hold open only changes its link count, which
		// inotify reports as an attribute change.
		if f.rotated() {
			return f.handleRotation(ctx)
		}
	}
	return nil
}

// rotated reports whether the capture path no longer names the open file.
func (f *Follower) rotated() bool {
	if f.file == nil {
		return true
	}
	open, err := f.file.Stat()
	if err != nil {
		return true
	}
	current, err := os.Stat(f.opts.FilePath)
	if err != nil {
		return true
	}
	return !os.SameFile(open, current)
}

// handleRotation waits for the capture path to reappear and continues
// decoding it from the start. Entries keep their numbering across files.
func (f *Follower) handleRotation(ctx context.Context) error {
	if !f.opts.FollowRotate {
		return ErrRotated
	}

	if f.file != nil {
		if err := f.readAvailable(f.opts.OutputFunc); err != nil {
			return err
		}
	}
	if err := f.feedPending(); err != nil {
		return err
	}
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}

	timeout := time.After(rotationTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timeout:
			return fmt.Errorf("timeout waiting for rotated capture to reappear")
		case <-ticker.C:
			if err := f.openFile(); err != nil {
				continue
			}
			if err := f.watcher.Add(f.opts.FilePath); err != nil {
				return fmt.Errorf("failed to watch rotated capture: %w", err)
			}
			f.log.WithField("path", f.opts.FilePath).Info("capture rotated, following new file")
			return f.readAvailable(f.opts.OutputFunc)
		}
	}
}

func (f *Follower) close() {
	if f.file != nil {
		f.file.Close()
	}
	if f.watcher != nil {
		f.watcher.Close()
	}
}
