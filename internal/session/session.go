// Package session implements the Session Pump: the per-browser-session
// state machine that bridges a browser WebSocket and a cluster exec
// WebSocket, per spec.md §3-§5. Grounded on original_source's
// crates/pod_exec/src/msg_handle.rs select loop for the event-driven shape,
// and on the teacher's internal/tunnel for the lifecycle/ownership split
// between a driving loop and an independent sender.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kube-exec/bridge/internal/applog"
	"github.com/kube-exec/bridge/internal/codec"
	"github.com/kube-exec/bridge/internal/execurl"
)

// QueueCapacity bounds the browser-inbound and browser-outbound queues.
// spec.md §9 calls this value an empirically-chosen tunable, not an
// implicit constant, so it is exported rather than buried in a literal.
const QueueCapacity = 100

const (
	writeTimeout   = 10 * time.Second
	shutdownDrain  = 2 * time.Second
)

// State is one of the one-way Session lifecycle states from spec.md §3.
type State int

const (
	StateConnecting State = iota
	StateStreaming
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stats summarizes a finished session for the Handler Adapter's log line,
// per spec.md §4.6.
type Stats struct {
	Coords     execurl.ContainerCoords
	Started    time.Time
	Ended      time.Time
	ExchangeSeq int
	Dropped    int
	Reason     string
}

func (s Stats) Duration() time.Duration { return s.Ended.Sub(s.Started) }

// Session is one live bridge between a browser peer and a cluster exec
// peer. It is created already in StateStreaming (dialing happens before a
// Session exists; spec.md's "connecting" state belongs to the Handler
// Adapter, which owns the dial call) and runs until either peer closes.
type Session struct {
	ID     string
	Coords execurl.ContainerCoords

	browser *websocket.Conn
	cluster *websocket.Conn
	filter  *codec.PreambleFilter

	outbound chan string
	shutdown chan struct{}

	stateMu sync.Mutex
	state   State

	log *applog.Logger

	exchangeSeq int
	dropped     int
}

// New builds a Session over an already-upgraded browser connection and an
// already-dialed cluster connection. debug enables the terminal-preamble
// filter per spec.md §4.4.
func New(id string, coords execurl.ContainerCoords, browser, cluster *websocket.Conn, debug bool) *Session {
	return &Session{
		ID:       id,
		Coords:   coords,
		browser:  browser,
		cluster:  cluster,
		filter:   codec.NewPreambleFilter(debug),
		outbound: make(chan string, QueueCapacity),
		shutdown: make(chan struct{}),
		state:    StateStreaming,
		log:      applog.New(fmt.Sprintf("Session %s", id)),
	}
}

func (s *Session) setState(st State) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = st
}

// State reports the session's current lifecycle state.
func (s *Session) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// Shutdown signals the session to tear down cooperatively, per spec.md
// §4.5/§5's cancellation model. Safe to call more than once.
func (s *Session) Shutdown() {
	select {
	case <-s.shutdown:
	default:
		close(s.shutdown)
	}
}

type browserEvent struct {
	text string
	err  error
	done bool
}

type clusterEvent struct {
	messageType int
	data        []byte
	err         error
	done        bool
}

// Run drives the session to completion: it starts the reader goroutines
// and the sender task (P2), then runs the select loop (P1) itself, and
// blocks until the session reaches StateClosed. The returned Stats feed the
// Handler Adapter's session-summary log line.
func (s *Session) Run(ctx context.Context) Stats {
	started := time.Now()

	browserRecv := make(chan browserEvent, QueueCapacity)
	clusterRecv := make(chan clusterEvent, 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go s.readBrowser(browserRecv, &wg)
	go s.readCluster(clusterRecv, &wg)
	go s.sendToBrowser()

	reason := s.pump(ctx, browserRecv, clusterRecv)

	s.setState(StateClosing)
	// pump has stopped draining browserRecv/clusterRecv, so a reader
	// blocked in its "select { case out <- ev: case <-s.shutdown: }" must
	// be released via s.shutdown before wg.Wait() below, or it hangs
	// forever holding clusterRecv's one-deep buffer full.
	s.Shutdown()
	s.drainShutdown()
	wg.Wait()
	close(s.outbound)
	s.setState(StateClosed)

	return Stats{
		Coords:      s.Coords,
		Started:     started,
		Ended:       time.Now(),
		ExchangeSeq: s.exchangeSeq,
		Dropped:     s.dropped,
		Reason:      reason,
	}
}

// pump is the select loop (P1) described in spec.md §4.5/§5: it writes data
// frames to the cluster peer, and consumes from the reader-fed browser-recv
// and cluster-recv channels so it can select over both peers and shutdown
// without blocking on either read directly. The blocking reads themselves,
// and the Pong replies to cluster pings, happen in readBrowser/readCluster.
func (s *Session) pump(ctx context.Context, browserRecv <-chan browserEvent, clusterRecv <-chan clusterEvent) string {
	for {
		select {
		case <-ctx.Done():
			return "context cancelled"

		case <-s.shutdown:
			return "shutdown"

		case ev := <-browserRecv:
			if ev.done {
				return closeReason("browser closed", ev.err)
			}
			s.exchangeSeq++
			frame := codec.EncodeBrowserToCluster(ev.text)
			if len(frame) == 0 {
				continue
			}
			s.cluster.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.cluster.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				s.log.Error("cluster write failed: %v", err)
				return "cluster write error"
			}

		case ev := <-clusterRecv:
			if ev.done {
				return closeReason("cluster closed", ev.err)
			}
			switch ev.messageType {
			case websocket.BinaryMessage:
				if text, ok := codec.DecodeClusterToBrowser(ev.data, s.filter); ok {
					s.enqueueOutbound(text)
				}
			case websocket.TextMessage:
				s.log.Debug("unexpected text message from cluster, ignoring")
			}
		}
	}
}

// enqueueOutbound implements spec.md §4.5/§9's logged-drop backpressure
// policy: a full outbound queue never blocks the pump; the frame being
// enqueued is dropped and counted, and frames already queued are kept.
func (s *Session) enqueueOutbound(text string) {
	select {
	case s.outbound <- text:
	default:
		s.dropped++
		s.log.Info("outbound queue full, dropping frame (dropped=%d)", s.dropped)
	}
}

// readBrowser is the reader half of the browser peer's read ownership: it
// blocks on ReadMessage and republishes results on a channel so pump can
// select over it alongside cluster events and shutdown.
func (s *Session) readBrowser(out chan<- browserEvent, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		msgType, data, err := s.browser.ReadMessage()
		if err != nil {
			select {
			case out <- browserEvent{done: true, err: err}:
			case <-s.shutdown:
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		select {
		case out <- browserEvent{text: string(data)}:
		case <-s.shutdown:
			return
		}
	}
}

// readCluster owns the cluster peer's blocking read; Ping frames are
// answered inline here as spec.md §5 requires ("never queued behind
// data") since gorilla invokes the configured PingHandler synchronously
// from within ReadMessage.
func (s *Session) readCluster(out chan<- clusterEvent, wg *sync.WaitGroup) {
	defer wg.Done()

	s.cluster.SetPingHandler(func(appData string) error {
		s.cluster.SetWriteDeadline(time.Now().Add(writeTimeout))
		return s.cluster.WriteMessage(websocket.PongMessage, []byte(appData))
	})

	for {
		msgType, data, err := s.cluster.ReadMessage()
		if err != nil {
			select {
			case out <- clusterEvent{done: true, err: err}:
			case <-s.shutdown:
			}
			return
		}
		select {
		case out <- clusterEvent{messageType: msgType, data: data}:
		case <-s.shutdown:
			return
		}
	}
}

// sendToBrowser is the sender task (P2) from spec.md §5: it owns the
// browser peer's write half exclusively, draining the outbound queue
// independently of the select loop so a slow browser cannot block cluster
// reads.
func (s *Session) sendToBrowser() {
	for text := range s.outbound {
		s.browser.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := s.browser.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
			s.log.Error("browser write failed: %v", err)
			s.Shutdown()
			return
		}
	}
}

// drainShutdown implements spec.md §4.5's teardown: send Close(1000) to
// both peers, then allow up to shutdownDrain for in-flight sends before
// the caller proceeds to release resources.
func (s *Session) drainShutdown() {
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.cluster.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeTimeout))
	_ = s.browser.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeTimeout))

	time.Sleep(shutdownDrain)

	_ = s.cluster.Close()
	_ = s.browser.Close()
}

func closeReason(base string, err error) string {
	if err == nil {
		return base
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return base
	}
	return fmt.Sprintf("%s: %v", base, err)
}
