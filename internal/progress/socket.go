package progress

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/nwpack/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names emitted to the progress view.
const (
	EventProgress = "progress"
	EventShow     = "show"
)

// DefaultDialTimeout bounds how long Dial waits for the connection.
const DefaultDialTimeout = 15 * time.Second

// Event is the payload of a progress event.
type Event struct {
	Kind string `json:"kind"` // "stage" or "log"
	Text string `json:"text"`
}

// emitter is the part of a socket.io client the reporter needs.
type emitter interface {
	Emit(ev string, args ...any) error
}

// SocketReporter forwards progress to a socket.io progress view.
type SocketReporter struct {
	ctx    context.Context
	client emitter
	close  func()
}

// DialOptions configures Dial.
type DialOptions struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Dial connects to the progress view at opts.URL and returns a reporter
// emitting to it. It fails if the connection is not established within
// opts.Timeout (DefaultDialTimeout when zero).
func Dial(ctx context.Context, opts DialOptions) (*SocketReporter, error) {
	logger := ctxlog.FromContext(ctx).With("progress_url", opts.URL)

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse progress URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("progress URL '%s' must be absolute", opts.URL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	sopts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		sopts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sopts)
	io := manager.Socket(opts.Namespace, sopts)

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		connected <- connectError(errs)
	})

	logger.Debug("Connecting to progress view...")
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("progress view connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while connecting to progress view: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for progress view connection", timeout)
	}

	logger.Info("📡 Connected to progress view.", "sid", io.Id())
	return &SocketReporter{
		ctx:    ctx,
		client: io,
		close:  func() { io.Disconnect() },
	}, nil
}

func (r *SocketReporter) Stage(name string) {
	r.emit(EventProgress, Event{Kind: "stage", Text: name})
}

func (r *SocketReporter) Log(line string) {
	r.emit(EventProgress, Event{Kind: "log", Text: line})
}

func (r *SocketReporter) Show() {
	r.emit(EventShow)
}

// Close disconnects from the progress view.
func (r *SocketReporter) Close() error {
	if r.close != nil {
		r.close()
	}
	return nil
}

// emit never fails the command: a lost progress view only costs output.
func (r *SocketReporter) emit(event string, args ...any) {
	if err := r.client.Emit(event, args...); err != nil {
		ctxlog.FromContext(r.ctx).Debug("Failed to emit progress event.", "event", event, "error", err)
	}
}

// connectError converts the arguments of a connect_error event.
func connectError(args []any) error {
	if len(args) == 0 {
		return errors.New("connection refused")
	}
	if err, ok := args[0].(error); ok && err != nil {
		return err
	}
	return fmt.Errorf("%v", args[0])
}
