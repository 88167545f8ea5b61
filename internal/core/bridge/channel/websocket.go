package channel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSConn 基于 WebSocket 的通道，每帧对应一条文本消息
type WSConn struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

var _ Conn = (*WSConn)(nil)

// NewWSConn 包装已建立的 WebSocket 连接
func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn, closed: make(chan struct{})}
}

// Dial 连接 worker 端点
func Dial(ctx context.Context, endpoint string) (*WSConn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	return NewWSConn(conn), nil
}

// Upgrader 服务端升级器
var Upgrader = websocket.Upgrader{
	// worker 只监听本机地址
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Upgrade 将 HTTP 请求升级为通道
func Upgrade(w http.ResponseWriter, r *http.Request) (*WSConn, error) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade websocket: %w", err)
	}
	return NewWSConn(conn), nil
}

// RemoteAddr 对端地址
func (c *WSConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Send 实现 Conn
func (c *WSConn) Send(ctx context.Context, frame []byte) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return c.mapErr(err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return c.mapErr(err)
	}
	return nil
}

// Receive 实现 Conn
//
// ctx 取消会打断阻塞中的读取，此后连接不可再读。
func (c *WSConn) Receive(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, c.mapErr(err)
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		return data, nil
	}
}

// Close 实现 Conn
func (c *WSConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

func (c *WSConn) mapErr(err error) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) || errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return err
}
