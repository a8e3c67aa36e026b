// Package record captures the live diagnostics feed of a processor.
//
// The processor serves its diagnostics over a websocket. After subscribing,
// every frame it sends is written as one hex line, the same capture format
// the decode pipeline reads.
package record

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPort = 1234
	DefaultPath = "/diagnosticswss"
)

// DefaultSubscriptions are the feeds requested after connecting.
var DefaultSubscriptions = []string{"MessageLog", "Sysvar"}

// Options configures a Recorder.
type Options struct {
	Host          string
	Port          int      // defaults to DefaultPort
	Path          string   // defaults to DefaultPath
	Subscriptions []string // defaults to DefaultSubscriptions
	Dialer        *websocket.Dialer
	Logger        logrus.FieldLogger
}

// subscribe is the request that enables one diagnostics feed.
type subscribe struct {
	Type     string `json:"type"`
	Resource string `json:"resource"`
	Value    string `json:"value"`
}

// Recorder writes a processor's diagnostics frames to a capture.
type Recorder struct {
	opts    Options
	session uuid.UUID
	log     logrus.FieldLogger
}

// New creates a Recorder with a fresh session id.
func New(opts Options) *Recorder {
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if len(opts.Subscriptions) == 0 {
		opts.Subscriptions = DefaultSubscriptions
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	session := uuid.New()
	return &Recorder{
		opts:    opts,
		session: session,
		log:     log.WithField("session", session.String()),
	}
}

// Session returns the id of this recording.
func (r *Recorder) Session() uuid.UUID {
	return r.session
}

// URL returns the websocket endpoint the Recorder connects to.
func (r *Recorder) URL() string {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(r.opts.Host, strconv.Itoa(r.opts.Port)),
		Path:   r.opts.Path,
	}
	return u.String()
}

// FileName returns a default capture file name for this session.
func (r *Recorder) FileName(now time.Time) string {
	return fmt.Sprintf("capture-%s-%s.hex", now.Format("20060102-150405"), r.session.String()[:8])
}

// Record connects, subscribes and writes frames to w until ctx is cancelled
// or the processor closes the connection. It returns the number of frames
// written.
func (r *Recorder) Record(ctx context.Context, w io.Writer) (int, error) {
	header := http.Header{}
	header.Set("Origin", "http://"+r.opts.Host)

	conn, _, err := r.opts.Dialer.DialContext(ctx, r.URL(), header)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to %s: %w", r.URL(), err)
	}
	defer conn.Close()
	r.log.WithField("url", r.URL()).Info("connected to diagnostics feed")

	for _, resource := range r.opts.Subscriptions {
		msg := subscribe{Type: "Subscribe", Resource: resource, Value: "true"}
		if err := conn.WriteJSON(msg); err != nil {
			return 0, fmt.Errorf("failed to subscribe to %s: %w", resource, err)
		}
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Closing"), deadline)
			conn.Close()
		case <-done:
		}
	}()

	frames := 0
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.log.WithField("frames", frames).Info("diagnostics feed closed")
				return frames, nil
			}
			return frames, fmt.Errorf("failed to read frame: %w", err)
		}

		if _, err := fmt.Fprintln(w, hex.EncodeToString(data)); err != nil {
			return frames, fmt.Errorf("failed to write capture: %w", err)
		}
		frames++
		r.log.WithField("bytes", len(data)).Debug("frame recorded")
	}
}
