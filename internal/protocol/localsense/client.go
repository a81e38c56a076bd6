package localsense

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/net/websocket"

	"tagsense/internal/core/model"
)

const (
	dialAttempts   = 3
	retryDelay     = 5 * time.Second
	authTimeout    = 5 * time.Second
	receiveTimeout = 1 * time.Second
)

var ErrNotConnected = errors.New("localsense: not connected")

// BatchFunc receives each decoded batch of tag positions. It is called
// synchronously from the receive loop, so the next frame is not read until
// the batch has been fully processed.
type BatchFunc func(positions []model.TagPosition)

// Client maintains the push-protocol connection to the LocalSense engine
// and feeds decoded position batches into the pipeline. Connect,
// Authenticate and Run belong to the single ingestion goroutine; Disconnect
// and the counter accessors may be called from anywhere.
type Client struct {
	host        string
	port        int
	username    string
	password    string
	targetTagID uint32 // 0 matches every tag

	conn      *websocket.Conn
	connected atomic.Bool
	stopped   atomic.Bool

	framesReceived atomic.Uint64
	tagsReceived   atomic.Uint64
}

func NewClient(host string, port int, username, password string, targetTagID uint32) *Client {
	return &Client{
		host:        host,
		port:        port,
		username:    username,
		password:    password,
		targetTagID: targetTagID,
	}
}

// Connect dials the push endpoint. Failure is recoverable; the caller
// decides whether to retry.
func (c *Client) Connect() error {
	url := fmt.Sprintf("ws://%s:%d/", c.host, c.port)
	cfg, err := websocket.NewConfig(url, "http://"+c.host+"/")
	if err != nil {
		return fmt.Errorf("localsense: bad endpoint %s: %w", url, err)
	}
	cfg.Protocol = []string{PushProtocol}

	conn, err := websocket.DialConfig(cfg)
	if err != nil {
		return fmt.Errorf("localsense: connect %s: %w", url, err)
	}
	c.conn = conn
	c.connected.Store(true)
	log.Printf("Connected to LocalSense push endpoint %s", url)
	return nil
}

// ConnectWithRetry makes a bounded number of connection attempts with a
// fixed delay between them. When every attempt fails the server keeps
// running without live data, so the returned error is for logging, not for
// aborting the process.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		if err = c.Connect(); err == nil {
			return nil
		}
		log.Printf("Connection attempt %d/%d failed: %v", attempt, dialAttempts, err)
		if attempt == dialAttempts {
			break
		}
		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// Authenticate sends the auth frame and waits briefly for any reply. The
// engine does not reliably answer the handshake, so a timeout counts as
// success; a wrong password therefore surfaces only as a silent stream,
// which is why the missing reply is logged rather than swallowed.
func (c *Client) Authenticate() error {
	if c.conn == nil {
		return ErrNotConnected
	}

	packet := BuildAuthPacket(c.username, c.password)
	if err := websocket.Message.Send(c.conn, packet); err != nil {
		return fmt.Errorf("localsense: send auth: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(authTimeout))
	var reply []byte
	if err := websocket.Message.Receive(c.conn, &reply); err != nil {
		log.Printf("No auth reply (%v); proceeding per protocol policy", err)
	} else {
		log.Printf("Authenticated as %s", c.username)
	}
	return nil
}

// Run receives frames until ctx is cancelled or Disconnect is called. Each
// decoded batch is passed to onBatch before the next read. A read deadline
// expiring means no data yet and is not an error; any other single bad read
// is logged and the loop continues.
func (c *Client) Run(ctx context.Context, onBatch BatchFunc) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	log.Printf("Receiving positions (target tag: %s)", c.targetDescription())

	for !c.stopped.Load() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		c.conn.SetReadDeadline(time.Now().Add(receiveTimeout))
		var frame []byte
		if err := websocket.Message.Receive(c.conn, &frame); err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue // no data yet
			}
			if c.stopped.Load() || ctx.Err() != nil {
				return nil
			}
			log.Printf("Receive error: %v", err)
			continue
		}

		positions := DecodeLocationFrame(frame)
		if len(positions) == 0 {
			continue
		}
		c.framesReceived.Add(1)
		c.tagsReceived.Add(uint64(len(positions)))

		if filtered := c.filterTargets(positions); len(filtered) > 0 {
			onBatch(filtered)
		}
	}
	return nil
}

// filterTargets drops records whose tag id does not match the configured
// target. The zero target is the wildcard.
func (c *Client) filterTargets(positions []model.TagPosition) []model.TagPosition {
	if c.targetTagID == 0 {
		return positions
	}
	var filtered []model.TagPosition
	for _, p := range positions {
		if p.TagID == c.targetTagID {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func (c *Client) targetDescription() string {
	if c.targetTagID == 0 {
		return "all"
	}
	return fmt.Sprintf("%d", c.targetTagID)
}

// Disconnect stops the receive loop and closes the connection. Idempotent
// and safe to call from any goroutine; the socket is closed on every exit
// path through this method.
func (c *Client) Disconnect() {
	if c.stopped.Swap(true) {
		return
	}
	c.connected.Store(false)
	if c.conn != nil {
		c.conn.Close()
	}
	log.Printf("LocalSense connection closed (frames=%d tags=%d)",
		c.framesReceived.Load(), c.tagsReceived.Load())
}

// Connected reports whether the push connection is live.
func (c *Client) Connected() bool {
	return c.connected.Load() && !c.stopped.Load()
}

// TagsReceived returns the total number of tag records decoded so far.
func (c *Client) TagsReceived() uint64 { return c.tagsReceived.Load() }

// FramesReceived returns the total number of non-empty frames decoded.
func (c *Client) FramesReceived() uint64 { return c.framesReceived.Load() }
