package ipc

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Client is one connection to a running instance.
type Client struct {
	conn net.Conn
}

// Dial connects to the server at path and requests topic.
func Dial(ctx context.Context, path, topic string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: dial %s: %w", path, err)
	}
	c := &Client{conn: conn}
	ok, err := c.roundTrip(ctx, FrameConnect, []byte(topic))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %q", ErrTopic, topic)
	}
	return c, nil
}

// Execute sends msg and reports whether the server acted on it.
func (c *Client) Execute(ctx context.Context, msg Message) (bool, error) {
	return c.roundTrip(ctx, FrameExecute, []byte(msg.Encode()))
}

// Disconnect ends the conversation and closes the connection.
func (c *Client) Disconnect(ctx context.Context) error {
	c.applyDeadline(ctx)
	err := writeFrame(c.conn, FrameDisconnect, nil)
	if cerr := c.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, t FrameType, payload []byte) (bool, error) {
	c.applyDeadline(ctx)
	if err := writeFrame(c.conn, t, payload); err != nil {
		return false, fmt.Errorf("ipc: send %s: %w", t, err)
	}
	rt, reply, err := readFrame(c.conn)
	if err != nil {
		return false, fmt.Errorf("ipc: await ack for %s: %w", t, err)
	}
	if rt != FrameAck {
		return false, fmt.Errorf("ipc: expected ack, got %s", rt)
	}
	return len(reply) == 1 && reply[0] == '1', nil
}

func (c *Client) applyDeadline(ctx context.Context) {
	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(dl)
		return
	}
	_ = c.conn.SetDeadline(time.Time{})
}
