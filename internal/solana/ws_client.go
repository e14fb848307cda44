package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// HandshakeTimeout bounds the initial dial.
	HandshakeTimeout time.Duration
	// SubscribeTimeout bounds the wait for a subscription id.
	SubscribeTimeout time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		HandshakeTimeout: 10 * time.Second,
		SubscribeTimeout: 30 * time.Second,
		PingInterval:     20 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}

// SignatureNotification is delivered once a subscribed signature reaches the
// requested commitment. Err is the transaction error, nil on success.
type SignatureNotification struct {
	Slot uint64
	Err  interface{}
}

// WSClient subscribes to signature notifications over a node's websocket.
type WSClient struct {
	config WSClientConfig

	conn      *websocket.Conn
	writeMu   sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps subscription ID to channel
	subs   map[int64]chan SignatureNotification
	subsMu sync.Mutex

	// pendingSubs maps request ID to channel waiting for subscription ID
	pendingSubs   map[uint64]chan int64
	pendingSubsMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup
}

// DialWS connects to endpoint and starts the reader.
func DialWS(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClient, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	c := &WSClient{
		config:      cfg,
		conn:        conn,
		subs:        make(map[int64]chan SignatureNotification),
		pendingSubs: make(map[uint64]chan int64),
		done:        make(chan struct{}),
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

// SubscribeSignature subscribes to the status of signature at commitment.
// The returned channel receives at most one notification.
func (c *WSClient) SubscribeSignature(ctx context.Context, signature, commitment string) (<-chan SignatureNotification, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}

	reqID := c.requestID.Add(1)
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			signature,
			map[string]string{"commitment": commitment},
		},
	}

	confirmCh := make(chan int64, 1)
	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = confirmCh
	c.pendingSubsMu.Unlock()

	dropPending := func() {
		c.pendingSubsMu.Lock()
		delete(c.pendingSubs, reqID)
		c.pendingSubsMu.Unlock()
	}

	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		dropPending()
		return nil, fmt.Errorf("write subscribe: %w", err)
	}

	// Register the channel before the id is released so an immediate
	// notification is not lost.
	ch := make(chan SignatureNotification, 1)
	var subID int64
	select {
	case id, ok := <-confirmCh:
		if !ok {
			return nil, fmt.Errorf("client closed")
		}
		subID = id
	case <-time.After(c.config.SubscribeTimeout):
		dropPending()
		return nil, fmt.Errorf("subscription timeout after %s", c.config.SubscribeTimeout)
	case <-c.done:
		return nil, fmt.Errorf("client closed")
	case <-ctx.Done():
		dropPending()
		return nil, ctx.Err()
	}

	c.subsMu.Lock()
	c.subs[subID] = ch
	c.subsMu.Unlock()

	return ch, nil
}

// Close closes the WebSocket connection.
func (c *WSClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	close(c.done)

	c.writeMu.Lock()
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	c.conn.Close()

	c.wg.Wait()

	c.subsMu.Lock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.subsMu.Unlock()

	c.pendingSubsMu.Lock()
	for id, ch := range c.pendingSubs {
		close(ch)
		delete(c.pendingSubs, id)
	}
	c.pendingSubsMu.Unlock()

	return nil
}

// readLoop reads messages until the connection fails or the client closes.
// A one-shot CLI has nothing to resubscribe, so there is no reconnect.
func (c *WSClient) readLoop() {
	defer c.wg.Done()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleMessage(message)
	}
}

// handleMessage processes incoming WebSocket message.
func (c *WSClient) handleMessage(message []byte) {
	var resp wsSubscribeResponse
	if err := json.Unmarshal(message, &resp); err == nil && resp.ID != 0 && resp.Result != nil {
		c.handleSubscribeResponse(resp.ID, *resp.Result)
		return
	}

	var notif wsNotification
	if err := json.Unmarshal(message, &notif); err == nil && notif.Method == "signatureNotification" {
		c.handleSignatureNotification(&notif)
	}
}

// handleSubscribeResponse handles subscription confirmation.
func (c *WSClient) handleSubscribeResponse(reqID uint64, subID int64) {
	c.pendingSubsMu.Lock()
	ch, ok := c.pendingSubs[reqID]
	if ok {
		delete(c.pendingSubs, reqID)
	}
	c.pendingSubsMu.Unlock()

	if ok {
		select {
		case ch <- subID:
		default:
		}
	}
}

// handleSignatureNotification delivers the notification and drops the
// subscription; the node auto-unsubscribes after the first one.
func (c *WSClient) handleSignatureNotification(notif *wsNotification) {
	if notif.Params == nil {
		return
	}

	// The subscription id may race ahead of the map insert; wait briefly.
	var ch chan SignatureNotification
	for i := 0; i < 50 && ch == nil; i++ {
		c.subsMu.Lock()
		ch = c.subs[notif.Params.Subscription]
		if ch != nil {
			delete(c.subs, notif.Params.Subscription)
		}
		c.subsMu.Unlock()
		if ch == nil {
			select {
			case <-c.done:
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
	if ch == nil {
		return
	}

	n := SignatureNotification{Err: notif.Params.Result.Value.Err}
	if notif.Params.Result.Context != nil {
		n.Slot = notif.Params.Result.Context.Slot
	}
	ch <- n
	close(ch)
}

// pingLoop sends periodic ping frames to keep connection alive.
func (c *WSClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
		}
	}
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsSubscribeResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Result  *int64 `json:"result"` // subscription ID
}

type wsNotification struct {
	JSONRPC string                `json:"jsonrpc"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription int64                `json:"subscription"`
	Result       wsNotificationResult `json:"result"`
}

type wsNotificationResult struct {
	Context *wsContext       `json:"context"`
	Value   wsSignatureValue `json:"value"`
}

type wsContext struct {
	Slot uint64 `json:"slot"`
}

type wsSignatureValue struct {
	Err interface{} `json:"err"`
}
