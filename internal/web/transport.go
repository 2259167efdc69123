package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/coder/websocket"

	pairsnet "github.com/peterkuimelis/pairs/internal/net"
)

// WSTransport speaks the game protocol over a WebSocket, one JSON message
// per text frame.
type WSTransport struct {
	conn *websocket.Conn
}

// NewWSTransport wraps an accepted WebSocket.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn}
}

func (t *WSTransport) Send(ctx context.Context, msg pairsnet.ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.Type, err)
	}
	return t.conn.Write(ctx, websocket.MessageText, data)
}

// Recv reads the next client message. A normal close from the browser is
// reported as io.EOF. A frame that is not a valid message wraps
// pairsnet.ErrBadMessage; the connection stays usable.
func (t *WSTransport) Recv(ctx context.Context) (pairsnet.ClientMessage, error) {
	var msg pairsnet.ClientMessage
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return msg, io.EOF
		}
		return msg, err
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", pairsnet.ErrBadMessage, err)
	}
	return msg, nil
}

func (t *WSTransport) Close() error {
	return t.conn.Close(websocket.StatusNormalClosure, "game ended")
}
