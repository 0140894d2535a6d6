// Package transport maintains the WebSocket connection to the Figma relay:
// channel join handshake, command send/receive with id correlation, and
// automatic reconnection.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/figrelay/figma-relay/internal/correlate"
	"github.com/figrelay/figma-relay/internal/wire"
)

const (
	handshakeTimeout = 10 * time.Second
	joinTimeout      = 10 * time.Second
	writeTimeout     = 10 * time.Second
	maxMessageSize   = 16 * 1024 * 1024
)

// ErrNotConnected rejects sends attempted while no channel is joined.
var ErrNotConnected = errors.New("not connected to relay")

// State is the connection lifecycle of a Client.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateJoining
	StateConnected
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateJoining:
		return "joining"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// CommandHandler executes an inbound invocation sent by the plugin toward
// this process. The returned result travels back on the same correlation id.
type CommandHandler func(ctx context.Context, command string, params json.RawMessage) (json.RawMessage, error)

// ProgressUpdate is a plugin-side progress report for a long-running command.
type ProgressUpdate struct {
	RequestID string
	Data      json.RawMessage
}

// Config tunes a Client.
type Config struct {
	// URL is the relay WebSocket endpoint, e.g. ws://localhost:3055.
	URL string
	// Channel pins the channel name. Empty generates a fresh one per
	// connection.
	Channel string
	// CommandTimeout bounds each sent command. Zero uses
	// correlate.DefaultTimeout.
	CommandTimeout time.Duration
	// AutoReconnect re-dials after unexpected closes.
	AutoReconnect bool
	// Reconnect tunes the retry schedule.
	Reconnect ReconnectPolicy
}

// Client owns one logical relay connection. It is safe for concurrent use;
// writes to the socket are serialized and correlation is id-keyed, so
// responses may arrive in any order.
type Client struct {
	cfg    Config
	logger zerolog.Logger

	table   *correlate.Table
	history *correlate.History
	recon   *Reconnector

	handler    CommandHandler
	onProgress func(ProgressUpdate)
	onState    func(State)

	mu      sync.Mutex
	conn    *websocket.Conn
	state   State
	channel string
	joinCh  chan error

	writeMu sync.Mutex
}

// NewClient creates a disconnected client. Dependencies are explicit rather
// than ambient so independent clients can coexist and be tested in isolation.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Reconnect == (ReconnectPolicy{}) {
		cfg.Reconnect = DefaultReconnectPolicy()
	}
	log := logger.With().Str("component", "transport").Logger()
	c := &Client{
		cfg:     cfg,
		logger:  log,
		table:   correlate.NewTable(cfg.CommandTimeout, logger),
		history: correlate.NewHistory(correlate.DefaultHistoryCap),
		state:   StateDisconnected,
	}
	c.recon = NewReconnector(cfg.Reconnect, logger, func() { go c.redial() })
	return c
}

// SetCommandHandler installs the executor for inbound plugin invocations.
func (c *Client) SetCommandHandler(h CommandHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

// SetProgressObserver installs a callback for progress updates.
func (c *Client) SetProgressObserver(fn func(ProgressUpdate)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onProgress = fn
}

// SetStateObserver installs a callback for connection-state transitions.
func (c *Client) SetStateObserver(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = fn
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Channel returns the channel name confirmed by the relay, or empty while
// not connected.
func (c *Client) Channel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// Reconnector exposes retry state for status reporting.
func (c *Client) Reconnector() *Reconnector {
	return c.recon
}

// SetChannel pins the channel name used by subsequent connections. It does
// not affect an already-joined channel.
func (c *Client) SetChannel(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Channel = name
}

// Connect dials the relay, joins a channel, and waits for the relay's join
// acknowledgment. Connecting while connected is a no-op. Connected state is
// entered only on the relay's system ack, never on socket open alone.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnected || c.state == StateConnecting || c.state == StateJoining {
		c.mu.Unlock()
		return nil
	}
	if c.state == StateClosed {
		// A manual Connect after Disconnect re-arms auto-reconnect.
		c.recon.Enable()
	}
	c.state = StateConnecting
	joinCh := make(chan error, 1)
	c.joinCh = joinCh
	c.mu.Unlock()
	c.notifyState(StateConnecting)

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		c.scheduleRecovery(ctx)
		return fmt.Errorf("dialing relay %s: %w", c.cfg.URL, err)
	}
	conn.SetReadLimit(maxMessageSize)

	c.mu.Lock()
	channel := c.cfg.Channel
	if channel == "" {
		channel = wire.NewChannelName()
	}
	c.conn = conn
	c.channel = channel
	c.state = StateJoining
	c.mu.Unlock()
	c.notifyState(StateJoining)

	go c.readLoop(conn)

	if err := c.writeEnvelope(wire.NewJoin(channel)); err != nil {
		if c.teardown(conn) {
			c.scheduleRecovery(ctx)
		}
		return fmt.Errorf("sending join: %w", err)
	}

	select {
	case err := <-joinCh:
		if err != nil {
			// When readLoop delivered the error it already owns recovery;
			// teardown reports whether this conn was still ours to clean up.
			if c.teardown(conn) {
				c.scheduleRecovery(ctx)
			}
			return fmt.Errorf("joining channel %s: %w", channel, err)
		}
	case <-time.After(joinTimeout):
		if c.teardown(conn) {
			c.scheduleRecovery(ctx)
		}
		return fmt.Errorf("joining channel %s: no ack within %s", channel, joinTimeout)
	case <-ctx.Done():
		if c.teardown(conn) {
			c.setState(StateDisconnected)
		}
		return ctx.Err()
	}

	c.setState(StateConnected)
	c.recon.Reset()
	c.logger.Info().Str("channel", channel).Str("url", c.cfg.URL).Msg("joined relay channel")
	return nil
}

// Disconnect closes the connection with a normal close code and suppresses
// auto-reconnect. Pending requests reject immediately.
func (c *Client) Disconnect() error {
	c.recon.Disable()

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.channel = ""
	c.state = StateClosed
	joinCh := c.joinCh
	c.joinCh = nil
	c.mu.Unlock()
	c.notifyState(StateClosed)
	if joinCh != nil {
		joinCh <- errors.New("client disconnected")
	}

	c.table.FailAll(&correlate.ConnectionLostError{Reason: "client disconnected"})

	if conn == nil {
		return nil
	}
	deadline := time.Now().Add(writeTimeout)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
	return conn.Close()
}

// SendCommand issues a named command on the joined channel and waits for the
// correlated response, the command timeout, a context cancellation, or
// connection loss, whichever comes first.
func (c *Client) SendCommand(ctx context.Context, command string, params any) (json.RawMessage, error) {
	c.mu.Lock()
	if c.state != StateConnected || c.conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	channel := c.channel
	c.mu.Unlock()

	var rawParams json.RawMessage
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encoding params for %s: %w", command, err)
		}
		rawParams = encoded
	}

	id := wire.NewRequestID()
	env, err := wire.NewCommand(id, channel, command, rawParams)
	if err != nil {
		return nil, err
	}

	outcome := c.table.Register(id)
	c.history.Record(command, id, rawParams)

	if err := c.writeEnvelope(env); err != nil {
		c.table.Reject(id, err)
		<-outcome
		return nil, fmt.Errorf("sending %s: %w", command, err)
	}

	c.logger.Debug().Str("command", command).Str("id", id).Msg("command sent")

	select {
	case out := <-outcome:
		if out.Err != nil {
			return nil, out.Err
		}
		return out.Result, nil
	case <-ctx.Done():
		c.table.Reject(id, ctx.Err())
		return nil, ctx.Err()
	}
}

// SendEnvelope writes a raw envelope. Used for system traffic that bypasses
// correlation.
func (c *Client) SendEnvelope(env *wire.Envelope) error {
	return c.writeEnvelope(env)
}

// writeEnvelope serializes one envelope to the socket. gorilla/websocket
// forbids concurrent writers, so all writes funnel through writeMu.
func (c *Client) writeEnvelope(env *wire.Envelope) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop drains the socket until it closes, dispatching each envelope by
// type. On exit every pending request rejects and, unless the close was
// deliberate, a reconnect attempt is scheduled.
func (c *Client) readLoop(conn *websocket.Conn) {
	var closeErr error
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeErr = err
			break
		}

		var env wire.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Warn().Err(err).Msg("dropping unparseable envelope")
			continue
		}
		c.handleInbound(&env)
	}

	c.mu.Lock()
	current := c.conn == conn
	var joinCh chan error
	if current {
		c.conn = nil
		c.channel = ""
		joinCh = c.joinCh
		c.joinCh = nil
	}
	closed := c.state == StateClosed
	c.mu.Unlock()
	if !current {
		return
	}
	if joinCh != nil {
		// A Connect is still waiting for the join ack; unblock it now
		// instead of letting it sit out the full join timeout.
		joinCh <- fmt.Errorf("connection closed before join ack: %w", closeErr)
	}

	c.table.FailAll(&correlate.ConnectionLostError{Reason: closeErr.Error()})

	if closed || websocket.IsCloseError(closeErr, websocket.CloseNormalClosure) {
		c.setState(StateDisconnected)
		c.logger.Info().Msg("connection closed")
		return
	}

	c.logger.Warn().Err(closeErr).Msg("connection lost")
	if c.cfg.AutoReconnect {
		c.setState(StateReconnecting)
		c.recon.ScheduleRetry()
	} else {
		c.setState(StateDisconnected)
	}
}

// handleInbound routes one envelope. Exactly one branch per envelope type;
// anything unrecognized is logged and dropped rather than crashing the loop.
func (c *Client) handleInbound(env *wire.Envelope) {
	switch env.Type {
	case wire.TypeSystem:
		c.handleSystem(env)
	case wire.TypeMessage:
		c.handleMessage(env)
	case wire.TypeProgress:
		c.handleProgress(env)
	case wire.TypeError:
		c.handleRelayError(env)
	default:
		c.logger.Warn().Str("type", string(env.Type)).Msg("dropping envelope of unknown type")
	}
}

// handleSystem processes relay control traffic, currently only the join ack.
func (c *Client) handleSystem(env *wire.Envelope) {
	m, err := env.DecodeMessage()
	if err != nil {
		c.logger.Warn().Err(err).Msg("malformed system envelope")
		return
	}

	c.mu.Lock()
	joinCh := c.joinCh
	c.joinCh = nil
	if env.Channel != "" {
		// Record the channel the relay actually confirmed.
		c.channel = env.Channel
	}
	c.mu.Unlock()

	if joinCh == nil {
		c.logger.Debug().Msg("unsolicited system envelope")
		return
	}
	if m.Error != "" {
		joinCh <- errors.New(m.Error)
		return
	}
	joinCh <- nil
}

// handleMessage settles a pending request or executes an inbound invocation.
func (c *Client) handleMessage(env *wire.Envelope) {
	m, err := env.DecodeMessage()
	if err != nil {
		c.logger.Warn().Err(err).Msg("malformed message envelope")
		return
	}

	if m.Command != "" {
		go c.executeInbound(env, m)
		return
	}

	id, ok := correlate.RecoverID(c.history, m)
	if !ok {
		c.logger.Warn().Msg("response without usable id, recovery failed, dropping")
		return
	}
	if id != m.ID {
		c.logger.Warn().Str("recovered_id", id).Msg("response id recovered heuristically")
	}

	if m.Error != "" {
		c.table.Reject(id, &correlate.CommandError{Message: m.Error})
		return
	}
	c.table.Resolve(id, m.Result)
}

// executeInbound runs a plugin-originated command through the installed
// handler and answers on the same id.
func (c *Client) executeInbound(env *wire.Envelope, m *wire.Message) {
	c.mu.Lock()
	handler := c.handler
	channel := c.channel
	c.mu.Unlock()

	id := m.ID
	if id == "" {
		id = env.ID
	}

	var result json.RawMessage
	var cmdErr string
	if handler == nil {
		cmdErr = fmt.Sprintf("no handler for inbound command %s", m.Command)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), correlate.DefaultTimeout)
		defer cancel()
		res, err := handler(ctx, m.Command, m.Params)
		if err != nil {
			cmdErr = err.Error()
		} else {
			result = res
		}
	}

	reply, err := wire.NewResult(id, channel, result, cmdErr)
	if err != nil {
		c.logger.Error().Err(err).Str("command", m.Command).Msg("encoding inbound command reply")
		return
	}
	// Fresh envelope id; the plugin correlates on the inner message id.
	reply.ID = uuid.NewString()
	if err := c.writeEnvelope(reply); err != nil {
		c.logger.Error().Err(err).Str("command", m.Command).Msg("sending inbound command reply")
	}
}

// handleProgress forwards a progress report and extends the originating
// request's timeout so long scans survive as long as they keep reporting.
func (c *Client) handleProgress(env *wire.Envelope) {
	m, err := env.DecodeMessage()
	if err != nil {
		c.logger.Warn().Err(err).Msg("malformed progress envelope")
		return
	}

	id := m.ID
	if id == "" {
		id = env.ID
	}
	if id != "" {
		c.table.Extend(id)
	}

	c.mu.Lock()
	observer := c.onProgress
	c.mu.Unlock()
	if observer != nil {
		observer(ProgressUpdate{RequestID: id, Data: m.Data})
	}
}

// handleRelayError routes a relay-level error. These carry no correlation id
// at all, so the recovery fallback (globally most-recent request) is the only
// available attribution.
func (c *Client) handleRelayError(env *wire.Envelope) {
	text := env.ErrorText()
	entry, ok := c.history.LatestAny()
	if !ok {
		c.logger.Error().Str("error", text).Msg("relay error with no attributable request, dropping")
		return
	}
	if !c.table.Reject(entry.ID, &correlate.CommandError{Command: entry.Command, Message: text}) {
		c.logger.Error().Str("error", text).Msg("relay error for already-settled request, dropping")
	}
}

// redial is the reconnect timer callback. Connect is internally bounded by
// the handshake and join timeouts and schedules the next retry itself on
// failure.
func (c *Client) redial() {
	if err := c.Connect(context.Background()); err != nil {
		c.logger.Warn().Err(err).Int("attempts", c.recon.Attempts()).Msg("reconnect attempt failed")
	}
}

// scheduleRecovery arms the next retry after a failed connect attempt. A
// cancelled caller context means the caller gave up deliberately, so no
// retry is scheduled then.
func (c *Client) scheduleRecovery(ctx context.Context) {
	if !c.cfg.AutoReconnect || ctx.Err() != nil {
		c.setState(StateDisconnected)
		return
	}
	c.setState(StateReconnecting)
	c.recon.ScheduleRetry()
}

// teardown closes a half-open connection after a failed handshake. It reports
// whether conn was still the client's current connection; when it was not,
// readLoop already owns cleanup and state, and the caller must not touch
// either.
func (c *Client) teardown(conn *websocket.Conn) bool {
	c.mu.Lock()
	current := c.conn == conn
	if current {
		c.conn = nil
		c.channel = ""
		c.joinCh = nil
	}
	c.mu.Unlock()
	_ = conn.Close()
	return current
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	if c.state == StateClosed && s != StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()
	c.notifyState(s)
}

func (c *Client) notifyState(s State) {
	c.mu.Lock()
	fn := c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
