package channel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipe_RoundTrip(t *testing.T) {
	a, b := NewPipe()
	ctx := context.Background()

	frame := []byte(`{"id":0}`)
	require.NoError(t, a.Send(ctx, frame))
	frame[2] = 'X' // 发送后修改不影响对端

	got, err := b.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"id":0}`, string(got))

	require.NoError(t, b.Send(ctx, []byte("pong")))
	got, err = a.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(got))
}

func TestPipe_PreservesOrder(t *testing.T) {
	a, b := NewPipe()
	ctx := context.Background()
	for _, s := range []string{"1", "2", "3"} {
		require.NoError(t, a.Send(ctx, []byte(s)))
	}
	for _, want := range []string{"1", "2", "3"} {
		got, err := b.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestPipe_Close(t *testing.T) {
	a, b := NewPipe()
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := b.Receive(ctx)
		done <- err
	}()

	require.NoError(t, a.Close())
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Receive 未在关闭后返回")
	}
	assert.ErrorIs(t, b.Send(ctx, []byte("x")), ErrClosed)
	assert.NoError(t, b.Close(), "重复关闭")
}

func TestPipe_ContextCancel(t *testing.T) {
	_, b := NewPipe()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := b.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func newEchoServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrade(w, r)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			frame, err := conn.Receive(r.Context())
			if err != nil {
				return
			}
			if err := conn.Send(r.Context(), frame); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSConn_Echo(t *testing.T) {
	endpoint := newEchoServer(t)
	ctx := context.Background()

	conn, err := Dial(ctx, endpoint)
	require.NoError(t, err)
	defer conn.Close()

	for _, msg := range []string{`{"id":0}`, `{"id":1}`} {
		require.NoError(t, conn.Send(ctx, []byte(msg)))
		got, err := conn.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, msg, string(got))
	}
}

func TestWSConn_CloseAndCancel(t *testing.T) {
	endpoint := newEchoServer(t)

	conn, err := Dial(context.Background(), endpoint)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = conn.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, conn.Close())
	assert.ErrorIs(t, conn.Send(context.Background(), []byte("x")), ErrClosed)
}

func TestDial_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := Dial(ctx, "ws://127.0.0.1:1/worker")
	assert.Error(t, err)
}
