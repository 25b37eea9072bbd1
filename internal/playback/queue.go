// Package playback serializes play requests into a single voice connection
// per guild.
//
// The queue keeps a registry keyed by guild ID. Presence of a registry entry
// is the sole "this guild is busy" flag: an entry exists exactly while a
// drain goroutine is running (or about to start) for that guild. The drain
// goroutine pops pending requests in FIFO order, joins or relocates the voice
// connection as needed, plays each sound to completion, and on empty queue
// deletes the registry entry before releasing the connection after a short
// grace delay.
package playback

import (
	"sync"
	"time"

	"github.com/TobiTenno/hekbot/pkg/logger"
	"github.com/TobiTenno/hekbot/pkg/metrics"
)

// Queue owns all per-guild playback state.
type Queue struct {
	driver          Driver
	log             *logger.Logger
	metrics         *metrics.Metrics
	maxPending      int
	disconnectDelay time.Duration

	mu     sync.Mutex
	guilds map[string]*guildState
	timers map[string]*disconnectTimer
	closed bool
}

// guildState exists iff a drain loop is active for the guild.
type guildState struct {
	pending []Request
	conn    Conn
}

// disconnectTimer is a grace-period teardown waiting to fire for an idle
// guild.
type disconnectTimer struct {
	timer *time.Timer
	conn  Conn
}

// Options configures a Queue. Logger and Metrics may be nil.
type Options struct {
	MaxPending      int
	DisconnectDelay time.Duration
	Logger          *logger.Logger
	Metrics         *metrics.Metrics
}

// NewQueue creates a queue backed by the given driver.
func NewQueue(driver Driver, opts Options) *Queue {
	if opts.MaxPending <= 0 {
		opts.MaxPending = 10
	}
	return &Queue{
		driver:          driver,
		log:             opts.Logger,
		metrics:         opts.Metrics,
		maxPending:      opts.MaxPending,
		disconnectDelay: opts.DisconnectDelay,
		guilds:          make(map[string]*guildState),
		timers:          make(map[string]*disconnectTimer),
	}
}

// Enqueue appends a request to the guild's queue, starting a drain loop when
// the guild was idle. It never blocks on playback and is safe to call from
// any goroutine.
//
// The return value reports whether the request was accepted. A full queue
// drops the request and returns false; overflow is backpressure, not an
// error.
func (q *Queue) Enqueue(req Request) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}

	if st, ok := q.guilds[req.GuildID]; ok {
		if len(st.pending) >= q.maxPending {
			q.mu.Unlock()
			q.count("playback_dropped")
			q.warn("queue full, dropping request", logger.Fields{
				"guild_id": req.GuildID,
				"sound":    req.Sound.Name,
			})
			return false
		}
		st.pending = append(st.pending, req)
		q.mu.Unlock()
		q.count("playback_enqueued")
		return true
	}

	// A request landing inside the grace period cancels the pending
	// teardown. The fresh loop's join relocates the guild's underlying
	// connection and owns its disconnect from here on, so the cancelled
	// timer's handle needs no release of its own.
	if t, ok := q.timers[req.GuildID]; ok && t.timer.Stop() {
		delete(q.timers, req.GuildID)
	}

	q.guilds[req.GuildID] = &guildState{pending: []Request{req}}
	q.gaugeActive(len(q.guilds))
	q.mu.Unlock()
	q.count("playback_enqueued")

	go q.drain(req.GuildID)
	return true
}

// Busy reports whether a drain loop is currently active for the guild.
func (q *Queue) Busy(guildID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.guilds[guildID]
	return ok
}

// ActiveGuilds returns the number of guilds with a running drain loop.
func (q *Queue) ActiveGuilds() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.guilds)
}

// drain serves one guild's queue until it is empty. At most one drain
// goroutine runs per guild: it is started only when the registry entry is
// created, and the entry is removed only here (or by Shutdown).
func (q *Queue) drain(guildID string) {
	var conn Conn

	for {
		q.mu.Lock()
		st := q.guilds[guildID]
		if st == nil {
			// Shutdown removed the entry and released any
			// connection recorded on it.
			q.mu.Unlock()
			return
		}
		if len(st.pending) == 0 {
			// Logically idle from here on. The physical disconnect
			// happens after a grace delay; a request arriving in
			// the meantime starts a fresh loop with a fresh
			// connection rather than racing this one.
			delete(q.guilds, guildID)
			q.gaugeActive(len(q.guilds))
			q.mu.Unlock()
			break
		}
		req := st.pending[0]
		st.pending = st.pending[1:]
		q.mu.Unlock()

		conn = q.serve(req, conn)
	}

	if conn != nil {
		q.scheduleDisconnect(guildID, conn)
	}
}

// serve plays a single request, joining or relocating the connection as
// needed. A failed join or stream discards the request and returns the
// connection in its current state; the loop moves on to the next request.
func (q *Queue) serve(req Request, conn Conn) Conn {
	if conn != nil && conn.ChannelID() != req.ChannelID {
		// The newer request's channel wins. The driver relocates the
		// existing connection.
		conn = nil
	}
	if conn == nil {
		c, err := q.driver.Join(req.GuildID, req.ChannelID)
		if err != nil {
			q.count("join_failed")
			q.error("failed to join voice channel", err, logger.Fields{
				"guild_id":   req.GuildID,
				"channel_id": req.ChannelID,
			})
			return nil
		}
		conn = c
		// Record the connection on the registry entry so Shutdown can
		// release it even while a stream is in flight. If Shutdown
		// raced the join and already removed the entry, nobody else
		// holds this connection; release it here.
		q.mu.Lock()
		st := q.guilds[req.GuildID]
		if st == nil {
			q.mu.Unlock()
			q.driver.Disconnect(conn)
			return nil
		}
		st.conn = conn
		q.mu.Unlock()
	}

	if err := q.driver.Play(conn, req.Sound.Path); err != nil {
		q.count("playback_failed")
		q.error("failed to play sound", err, logger.Fields{
			"guild_id": req.GuildID,
			"sound":    req.Sound.Name,
		})
		return conn
	}

	q.count("playback_completed")
	return conn
}

// scheduleDisconnect releases a connection after the grace delay, tolerating
// a near-immediate follow-up request that would otherwise reconnect
// instantly. The timer is tracked per guild so Enqueue can cancel it when
// such a request arrives.
func (q *Queue) scheduleDisconnect(guildID string, conn Conn) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.driver.Disconnect(conn)
		return
	}
	if q.guilds[guildID] != nil {
		// A follow-up request arrived before the timer was
		// registered; its loop owns the underlying connection now.
		q.mu.Unlock()
		return
	}
	t := &disconnectTimer{conn: conn}
	t.timer = time.AfterFunc(q.disconnectDelay, func() {
		q.mu.Lock()
		if q.timers[guildID] == t {
			delete(q.timers, guildID)
		}
		q.mu.Unlock()
		q.driver.Disconnect(conn)
	})
	q.timers[guildID] = t
	q.mu.Unlock()
}

// Shutdown rejects further requests and releases every live connection,
// including ones waiting out a grace period. In-flight playback is
// abandoned and queued requests are dropped.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	q.closed = true
	conns := make([]Conn, 0, len(q.guilds)+len(q.timers))
	for guildID, st := range q.guilds {
		delete(q.guilds, guildID)
		if st.conn != nil {
			conns = append(conns, st.conn)
		}
	}
	for guildID, t := range q.timers {
		delete(q.timers, guildID)
		if t.timer.Stop() {
			conns = append(conns, t.conn)
		}
	}
	q.gaugeActive(0)
	q.mu.Unlock()

	for _, conn := range conns {
		q.driver.Disconnect(conn)
	}
}

func (q *Queue) count(name string) {
	if q.metrics != nil {
		q.metrics.IncCounter(name)
	}
}

func (q *Queue) gaugeActive(n int) {
	if q.metrics != nil {
		q.metrics.SetGauge("playback_active_guilds", float64(n))
	}
}

func (q *Queue) warn(msg string, fields logger.Fields) {
	if q.log != nil {
		q.log.Warn(msg, fields)
	}
}

func (q *Queue) error(msg string, err error, fields logger.Fields) {
	if q.log != nil {
		q.log.Error(msg, err, fields)
	}
}
