package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"github.com/oplab/lab400/internal/server"
)

// frameMsg carries one server frame into the Bubble Tea update loop.
type frameMsg server.Frame

// connErrMsg reports the connection failing; the session is over.
type connErrMsg struct{ err error }

// Client is the WebSocket connection to the console server.
type Client struct {
	conn   *websocket.Conn
	frames chan tea.Msg
}

// Dial connects to the server's /ws endpoint.
func Dial(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{conn: conn, frames: make(chan tea.Msg, 4)}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	for {
		var frame server.Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			c.frames <- connErrMsg{err: err}
			return
		}
		c.frames <- frameMsg(frame)
	}
}

// Send writes one action frame. Safe from the update loop only; the
// model serializes all sends.
func (c *Client) Send(action server.Action) error {
	return c.conn.WriteJSON(action)
}

// WaitFrame blocks for the next inbound frame as a Bubble Tea command.
func (c *Client) WaitFrame() tea.Cmd {
	return func() tea.Msg {
		return <-c.frames
	}
}

func (c *Client) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
