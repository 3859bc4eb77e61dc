package relay

import (
	"context"
	"fmt"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Conn is a peer connection to a Hub.
type Conn struct {
	ws *websocket.Conn
}

// Dial connects to a hub at a ws:// or wss:// URL.
func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	return &Conn{ws: ws}, nil
}

func (c *Conn) Send(ctx context.Context, msg Message) error {
	return wsjson.Write(ctx, c.ws, msg)
}

// Receive blocks for the next message.
func (c *Conn) Receive(ctx context.Context) (Message, error) {
	var msg Message
	err := wsjson.Read(ctx, c.ws, &msg)
	return msg, err
}

func (c *Conn) Close() error {
	return c.ws.Close(websocket.StatusNormalClosure, "bye")
}
