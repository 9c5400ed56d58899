// Package stream maintains the server-to-client event socket.
//
// The client is a small state machine:
//
//	Disconnected -> Connecting    a dial starts
//	Connecting   -> Connected     the socket opened
//	Connecting   -> Disconnected  the dial failed
//	Connected    -> Disconnected  a read failed or the server closed
//	any          -> Closed        Close was called
//
// Every transition into Disconnected, including a failed dial, is reported
// through OnDisconnect. With auto-reconnect enabled it also schedules exactly
// one reconnect timer. Closed is terminal.
package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/taskweave/weave/internal/events"
	"github.com/taskweave/weave/internal/logging"
)

// ErrClosed is returned by Connect after Close.
var ErrClosed = errors.New("stream client closed")

// State is the connection state of a Client.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options configures a Client. Only URL is required.
type Options struct {
	URL           string
	Dialer        Dialer
	Backoff       Backoff
	Clock         Clock
	AutoReconnect bool
	Logger        *logging.Logger

	// Callbacks run on the client's goroutines and must not block.
	OnEvent      func(events.Event)
	OnConnect    func()
	// OnDisconnect fires on every move into Disconnected: a failed dial
	// or a dropped socket.
	OnDisconnect func(err error)
	OnReject     func(frame []byte, err error)
	OnState      func(State)
}

// Client owns at most one socket and at most one pending reconnect timer.
type Client struct {
	opts   Options
	logger *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	conn    Conn
	timer   Timer
	// timerGen changes whenever the timer is armed or stopped. A callback
	// carrying an older value lost a race and does nothing.
	timerGen uint64
	attempt  int

	closeOnce sync.Once
}

// New returns a disconnected client. Call Connect to start.
func New(opts Options) *Client {
	if opts.Dialer == nil {
		opts.Dialer = WebSocketDialer{}
	}
	if opts.Backoff == nil {
		opts.Backoff = ConstantBackoff{Delay: DefaultReconnectDelay}
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		opts:   opts,
		logger: opts.Logger.With("stream"),
		ctx:    ctx,
		cancel: cancel,
		state:  StateDisconnected,
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts a dial if the client is disconnected. A pending reconnect
// timer is cancelled in favour of the immediate attempt. Calling Connect
// while connecting or connected is a no-op.
func (c *Client) Connect() error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	case StateConnecting, StateConnected:
		c.mu.Unlock()
		return nil
	}
	c.stopTimerLocked()
	c.state = StateConnecting
	c.mu.Unlock()

	c.notifyState(StateConnecting)
	go c.dial()
	return nil
}

// Close tears down the socket and the pending timer. No dial happens after
// Close returns. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = StateClosed
		c.stopTimerLocked()
		conn := c.conn
		c.conn = nil
		c.mu.Unlock()

		c.cancel()
		if conn != nil {
			err = conn.Close()
		}
		c.logger.Log("closed")
		c.notifyState(StateClosed)
	})
	return err
}

func (c *Client) dial() {
	c.logger.Log("dial %s", c.opts.URL)
	conn, err := c.opts.Dialer.Dial(c.ctx, c.opts.URL)

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		c.state = StateDisconnected
		c.scheduleLocked()
		c.mu.Unlock()

		c.logger.Log("dial failed: %v", err)
		c.notifyState(StateDisconnected)
		if c.opts.OnDisconnect != nil {
			c.opts.OnDisconnect(err)
		}
		return
	}
	c.conn = conn
	c.state = StateConnected
	c.attempt = 0
	c.mu.Unlock()

	c.logger.Log("connected")
	c.notifyState(StateConnected)
	if c.opts.OnConnect != nil {
		c.opts.OnConnect()
	}

	c.readLoop(conn)
}

func (c *Client) readLoop(conn Conn) {
	var readErr error
	for {
		frame, err := conn.ReadMessage()
		if err != nil {
			readErr = err
			break
		}

		ev, err := events.Decode(frame)
		if err != nil {
			c.logger.Log("drop frame: %v", err)
			if c.opts.OnReject != nil {
				c.opts.OnReject(frame, err)
			}
			continue
		}
		if c.opts.OnEvent != nil {
			c.opts.OnEvent(ev)
		}
	}

	c.mu.Lock()
	if c.state == StateClosed || c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = StateDisconnected
	c.scheduleLocked()
	c.mu.Unlock()

	_ = conn.Close()
	c.logger.Log("disconnected: %v", readErr)
	c.notifyState(StateDisconnected)
	if c.opts.OnDisconnect != nil {
		c.opts.OnDisconnect(readErr)
	}
}

// scheduleLocked arms the single reconnect timer. Caller holds c.mu.
func (c *Client) scheduleLocked() {
	if !c.opts.AutoReconnect {
		return
	}
	c.stopTimerLocked()

	delay := c.opts.Backoff.Next(c.attempt)
	c.attempt++
	c.logger.Log("reconnect in %s (attempt %d)", delay, c.attempt)
	gen := c.timerGen
	c.timer = c.opts.Clock.AfterFunc(delay, func() { c.reconnect(gen) })
}

func (c *Client) stopTimerLocked() {
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Client) reconnect(gen uint64) {
	c.mu.Lock()
	if c.state != StateDisconnected || gen != c.timerGen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.state = StateConnecting
	c.mu.Unlock()

	c.notifyState(StateConnecting)
	go c.dial()
}

func (c *Client) notifyState(s State) {
	if c.opts.OnState != nil {
		c.opts.OnState(s)
	}
}
