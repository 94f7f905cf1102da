package realtime

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/timmy/memebazaar/internal/domain"
	"github.com/timmy/memebazaar/internal/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Client messages.
const (
	MessageJoinRoom  = "join_meme_room"
	MessageLeaveRoom = "leave_meme_room"
)

// clientMessage is what browsers send: {"event":"join_meme_room","data":7}.
type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client bridges one websocket connection and its hub subscription.
type Client struct {
	sub  *Subscription
	conn *websocket.Conn
	ctx  context.Context
}

// Serve subscribes conn to the hub and starts its pumps. It returns immediately;
// the pumps close the connection and the subscription when either side ends.
func Serve(ctx context.Context, hub *Hub, conn *websocket.Conn) *Client {
	sub := hub.Subscribe()
	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldComponent: "websocket",
		logger.FieldClientID:  sub.ID(),
	})
	c := &Client{sub: sub, conn: conn, ctx: ctx}

	logger.CtxInfo(ctx, "Websocket client connected: remote=%s", conn.RemoteAddr())

	go c.writePump()
	go c.readPump()
	return c
}

// readPump handles room membership messages and detects disconnects.
func (c *Client) readPump() {
	defer func() {
		c.sub.Close()
		c.conn.Close()
		logger.CtxInfo(c.ctx, "Websocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.CtxWarn(c.ctx, "Websocket read error: %v", err)
			}
			return
		}
		c.handle(data)
	}
}

func (c *Client) handle(data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.CtxDebug(c.ctx, "Ignoring malformed client message: %v", err)
		return
	}

	switch msg.Event {
	case MessageJoinRoom, MessageLeaveRoom:
		memeID, ok := parseMemeID(msg.Data)
		if !ok {
			logger.CtxDebug(c.ctx, "Ignoring %s with bad meme id: %s", msg.Event, string(msg.Data))
			return
		}
		topic := domain.MemeTopic(memeID)
		if msg.Event == MessageJoinRoom {
			c.sub.Join(topic)
		} else {
			c.sub.Leave(topic)
		}
		logger.CtxDebug(c.ctx, "Room membership changed: event=%s, topic=%s", msg.Event, topic)
	default:
		logger.CtxDebug(c.ctx, "Ignoring unknown client event: %s", msg.Event)
	}
}

// writePump writes hub events to the connection, one JSON object per frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.sub.C():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// parseMemeID accepts 7, "7" or " 7 ".
func parseMemeID(raw json.RawMessage) (int64, bool) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
