// Package presence shows resuma activity in a local Discord client over
// its IPC socket.
package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/errors"
)

// Fixed large-image assets shown with every activity.
const (
	LargeImage = "resuma"
	LargeText  = "https://resuma.download"
)

// DialFunc opens the IPC connection.
type DialFunc func(ctx context.Context) (net.Conn, error)

// Activity is the user-facing part of a presence update.
type Activity struct {
	Details    string `json:"details,omitempty"`
	State      string `json:"state,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

type activityPayload struct {
	Details string         `json:"details,omitempty"`
	State   string         `json:"state,omitempty"`
	Type    int            `json:"type"`
	Assets  map[string]any `json:"assets"`
}

type command struct {
	Cmd   string `json:"cmd"`
	Args  any    `json:"args,omitempty"`
	Nonce string `json:"nonce"`
}

type response struct {
	Cmd   string `json:"cmd"`
	Evt   string `json:"evt"`
	Nonce string `json:"nonce"`
	Data  struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"data"`
}

// Client is a Discord rich presence connection. It is safe for concurrent use.
type Client struct {
	clientID string
	dial     DialFunc
	timeout  time.Duration

	mu   sync.Mutex
	conn net.Conn
}

// NewClient creates a client for the given Discord application ID.
// A nil dial uses DialLocal.
func NewClient(clientID string, dial DialFunc) *Client {
	if dial == nil {
		dial = DialLocal
	}
	return &Client{clientID: clientID, dial: dial, timeout: 5 * time.Second}
}

// Connected reports whether a handshake has completed.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Connect dials Discord and performs the handshake. Connecting an already
// connected client replaces the old connection.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to connect to discord")
	}
	c.setDeadline(ctx, conn)

	handshake := map[string]any{"v": 1, "client_id": c.clientID}
	if err := writeFrame(conn, OpHandshake, handshake); err != nil {
		_ = conn.Close()
		return err
	}

	op, body, err := readFrame(conn)
	if err != nil {
		_ = conn.Close()
		return err
	}
	var ready response
	if err := json.Unmarshal(body, &ready); err != nil || op != OpFrame || ready.Evt != "READY" {
		_ = conn.Close()
		return fmt.Errorf("discord handshake rejected: %s", string(body))
	}

	c.conn = conn
	logger.Debug("Connected to discord", logger.Fields{"client_id": c.clientID})
	return nil
}

// SetActivity replaces the displayed activity.
func (c *Client) SetActivity(ctx context.Context, a Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return errors.ErrNotConnected
	}
	c.setDeadline(ctx, c.conn)

	assets := map[string]any{
		"large_image": LargeImage,
		"large_text":  LargeText,
	}
	if a.SmallImage != "" {
		assets["small_image"] = a.SmallImage
	}
	if a.SmallText != "" {
		assets["small_text"] = a.SmallText
	}

	cmd := command{
		Cmd: "SET_ACTIVITY",
		Args: map[string]any{
			"pid": os.Getpid(),
			"activity": activityPayload{
				Details: a.Details,
				State:   a.State,
				Assets:  assets,
			},
		},
		Nonce: uuid.NewString(),
	}

	if err := writeFrame(c.conn, OpFrame, cmd); err != nil {
		c.dropLocked()
		return err
	}

	_, body, err := readFrame(c.conn)
	if err != nil {
		c.dropLocked()
		return err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("invalid discord response: %w", err)
	}
	if resp.Evt == "ERROR" {
		return fmt.Errorf("discord rejected activity: %s (code %d)", resp.Data.Message, resp.Data.Code)
	}
	return nil
}

// Disconnect closes the connection. It is a no-op when not connected.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = writeFrame(c.conn, OpClose, map[string]any{})
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) dropLocked() {
	_ = c.conn.Close()
	c.conn = nil
}

func (c *Client) setDeadline(ctx context.Context, conn net.Conn) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	_ = conn.SetDeadline(deadline)
}
