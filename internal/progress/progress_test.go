package progress

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/nwpack/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

func (r *recorder) Stage(name string) { r.calls = append(r.calls, "stage:"+name) }
func (r *recorder) Log(line string)   { r.calls = append(r.calls, "log:"+line) }
func (r *recorder) Show()             { r.calls = append(r.calls, "show") }

func TestMulti_FansOutInOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, b := &recorder{}, &recorder{}
	m := Multi{a, b}

	// --- Act ---
	m.Stage("compile")
	m.Log("ok")
	m.Show()

	// --- Assert ---
	want := []string{"stage:compile", "log:ok", "show"}
	if diff := cmp.Diff(want, a.calls); diff != "" {
		t.Errorf("first reporter mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, b.calls); diff != "" {
		t.Errorf("second reporter mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() {
		Discard.Stage("x")
		Discard.Log("y")
		Discard.Show()
	})
}

func TestLogReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := NewLogReporter(ctxlog.WithLogger(context.Background(), logger))

	r.Stage("archive")
	r.Log("compiled main.js")
	r.Show()

	out := buf.String()
	assert.Contains(t, out, "stage=archive")
	assert.Contains(t, out, "compiled main.js")
	assert.Contains(t, out, "level=WARN")
}

type fakeEmitter struct {
	events []string
	args   [][]any
	err    error
}

func (f *fakeEmitter) Emit(ev string, args ...any) error {
	f.events = append(f.events, ev)
	f.args = append(f.args, args)
	return f.err
}

func TestSocketReporter_Events(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	fake := &fakeEmitter{}
	r := &SocketReporter{ctx: context.Background(), client: fake}

	// --- Act ---
	r.Stage("assemble")
	r.Log("line")
	r.Show()

	// --- Assert ---
	assert.Equal(t, []string{EventProgress, EventProgress, EventShow}, fake.events)
	assert.Equal(t, []any{Event{Kind: "stage", Text: "assemble"}}, fake.args[0])
	assert.Equal(t, []any{Event{Kind: "log", Text: "line"}}, fake.args[1])
	assert.Empty(t, fake.args[2])
	assert.NoError(t, r.Close())
}

func TestSocketReporter_EmitErrorIsNotFatal(t *testing.T) {
	t.Parallel()

	fake := &fakeEmitter{err: errors.New("socket closed")}
	r := &SocketReporter{ctx: context.Background(), client: fake}

	assert.NotPanics(t, func() { r.Log("line") })
	assert.Len(t, fake.events, 1)
}

func TestDial_RejectsRelativeURL(t *testing.T) {
	t.Parallel()

	_, err := Dial(context.Background(), DialOptions{URL: "/progress", Timeout: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be absolute")
}

func TestConnectError(t *testing.T) {
	t.Parallel()

	refused := errors.New("dial refused")
	assert.Equal(t, refused, connectError([]any{refused}))
	assert.EqualError(t, connectError([]any{"timeout"}), "timeout")
	assert.EqualError(t, connectError(nil), "connection refused")
}
