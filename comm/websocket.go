// SPDX-License-Identifier: MIT

package comm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	cerrors "cogentcore.org/core/base/errors"
	"github.com/gorilla/websocket"
)

// Path is the HTTP path on which the coordinator accepts rank connections.
const Path = "/scattermul"

const (
	helloTimeout  = 10 * time.Second       // a connecting rank must introduce itself within this
	dialRetry     = 200 * time.Millisecond // pause between dial attempts while the coordinator starts
	closeGrace    = time.Second            // deadline for the close control frame
	maxCloseText  = 123                    // close frame payload limit minus the status code
	readHeaderMax = 10 * time.Second
)

// Listener is the coordinator's endpoint for networked ranks. Ranks 1..Size-1
// connect with Dial; Accept returns the coordinator's Comm once all joined.
type Listener struct {
	size     int
	ln       net.Listener
	srv      *http.Server
	upgrader websocket.Upgrader
	joins    chan join
	o        options
	once     sync.Once

	mu     sync.Mutex // orders queueing in handle against draining in Close
	closed bool
}

// join is a rank that completed the websocket upgrade and said hello.
type join struct {
	hello *frame
	conn  *websocket.Conn
}

// Listen starts accepting rank connections on addr for a group of size ranks.
func Listen(addr string, size int, opts ...Option) (*Listener, error) {
	if size < 1 {
		return nil, fmt.Errorf("Listen(size=%d): %w", size, ErrInvalidTopology)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("Listen(%s): %w", addr, err)
	}

	l := &Listener{
		size:  size,
		ln:    ln,
		joins: make(chan join, size),
		o:     gatherOptions(opts),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(Path, l.handle)
	l.srv = &http.Server{Handler: mux, ReadHeaderTimeout: readHeaderMax}

	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.o.logger.Error("coordinator listener stopped", "addr", ln.Addr().String(), "err", err)
		}
	}()

	return l, nil
}

// Addr returns the bound network address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// URL returns the websocket URL ranks pass to Dial.
func (l *Listener) URL() string { return "ws://" + l.ln.Addr().String() + Path }

// handle upgrades one rank connection and queues its hello for Accept.
func (l *Listener) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if cerrors.Log(err) != nil {
		return
	}
	_ = conn.SetReadDeadline(time.Now().Add(helloTimeout))
	var hello frame
	if err = conn.ReadJSON(&hello); err != nil || hello.Op != opHello {
		rejectConn(conn, "expected hello")
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		rejectConn(conn, "coordinator stopped accepting")
		return
	}
	select {
	case l.joins <- join{hello: &hello, conn: conn}:
	default:
		rejectConn(conn, "group is full")
	}
}

// Accept blocks until every rank 1..Size-1 has joined, then stops listening
// and returns the coordinator's communicator. Connections announcing a wrong
// group size, an out-of-range rank or an already taken rank are rejected
// and Accept keeps waiting.
func (l *Listener) Accept(ctx context.Context) (*Comm, error) {
	topo := Topology{Size: l.size, Rank: Root}
	links := make([]link, l.size)

	for joined := 1; joined < l.size; {
		select {
		case j := <-l.joins:
			rank := j.hello.Rank
			switch {
			case j.hello.Count != l.size:
				rejectConn(j.conn, fmt.Sprintf("group size is %d, not %d", l.size, j.hello.Count))
				continue
			case rank <= Root || rank >= l.size:
				rejectConn(j.conn, fmt.Sprintf("rank %d out of range", rank))
				continue
			case links[rank] != nil:
				rejectConn(j.conn, fmt.Sprintf("rank %d already joined", rank))
				continue
			}
			ack := &frame{Op: opHello, Rank: rank, Count: l.size}
			if err := j.conn.WriteJSON(ack); err != nil {
				cerrors.Log(j.conn.Close())
				continue
			}
			links[rank] = &wsLink{conn: j.conn}
			joined++
			l.o.logger.Info("rank joined", "rank", rank, "remote", j.conn.RemoteAddr().String(), "joined", joined, "size", l.size)

		case <-ctx.Done():
			for _, ln := range links {
				if ln != nil {
					_ = ln.close(ctx.Err())
				}
			}
			cerrors.Log(l.Close())

			return nil, fmt.Errorf("Accept: %d/%d ranks joined: %w", countLinks(links)+1, l.size, ctx.Err())
		}
	}
	if err := l.Close(); err != nil {
		l.o.logger.Warn("closing coordinator listener", "err", err)
	}

	return newHub(topo, links, l.o), nil
}

// Close stops accepting connections and rejects any rank still queued.
// Links already handed to a Comm are not affected.
func (l *Listener) Close() error {
	var err error
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()

		err = l.srv.Close()
		for {
			select {
			case j := <-l.joins:
				rejectConn(j.conn, "coordinator stopped accepting")
			default:
				return
			}
		}
	})

	return err
}

func countLinks(links []link) int {
	n := 0
	for _, ln := range links {
		if ln != nil {
			n++
		}
	}

	return n
}

// Dial connects rank to the coordinator at url and returns its communicator.
// Dial keeps retrying until the coordinator accepts or ctx is done, so ranks
// may be started in any order.
func Dial(ctx context.Context, url string, rank, size int, opts ...Option) (*Comm, error) {
	topo, err := NewTopology(size, rank)
	if err != nil {
		return nil, err
	}
	if topo.Role() == Coordinator {
		return nil, fmt.Errorf("Dial: rank %d is the coordinator and must Listen: %w", rank, ErrInvalidTopology)
	}
	o := gatherOptions(opts)

	var conn *websocket.Conn
	for {
		conn, _, err = websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err == nil {
			break
		}
		o.logger.Debug("coordinator not reachable yet", "url", url, "err", err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("Dial(%s): %w", url, errors.Join(ctx.Err(), err))
		case <-time.After(dialRetry):
		}
	}

	l := &wsLink{conn: conn}
	if err = l.send(ctx, &frame{Op: opHello, Rank: rank, Count: size}); err != nil {
		_ = l.close(err)
		return nil, fmt.Errorf("Dial(%s): hello: %w", url, err)
	}
	ack, err := l.recv(ctx)
	if err != nil {
		_ = l.close(err)
		return nil, fmt.Errorf("Dial(%s): hello: %w", url, err)
	}
	if ack.Op != opHello || ack.Rank != rank || ack.Count != size {
		err = fmt.Errorf("%w: coordinator answered hello with %s", ErrProtocolViolation, ack.describe())
		_ = l.close(err)
		return nil, err
	}

	return newSpoke(topo, l, o), nil
}

// wsLink carries frames as JSON text messages over one websocket connection.
type wsLink struct {
	conn *websocket.Conn
	once sync.Once
}

func (l *wsLink) send(ctx context.Context, f *frame) error {
	// interrupt a blocked write when ctx ends
	stop := context.AfterFunc(ctx, func() { _ = l.conn.SetWriteDeadline(time.Now()) })
	defer stop()
	if err := l.conn.WriteJSON(f); err != nil {
		return l.wrap(ctx, err)
	}

	return nil
}

func (l *wsLink) recv(ctx context.Context) (*frame, error) {
	stop := context.AfterFunc(ctx, func() { _ = l.conn.SetReadDeadline(time.Now()) })
	defer stop()
	var f frame
	if err := l.conn.ReadJSON(&f); err != nil {
		return nil, l.wrap(ctx, err)
	}

	return &f, nil
}

// wrap maps a transport error to the collective error surface.
func (l *wsLink) wrap(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		if ce.Text != "" {
			return abortedf("peer closed the link: %s", ce.Text)
		}
		return abortedf("peer closed the link (%d)", ce.Code)
	}

	return abortedf("%v", err)
}

func (l *wsLink) close(cause error) error {
	var err error
	l.once.Do(func() {
		code, text := websocket.CloseNormalClosure, ""
		if cause != nil {
			code, text = websocket.CloseInternalServerErr, cause.Error()
		}
		writeClose(l.conn, code, text)
		err = l.conn.Close()
	})

	return err
}

// rejectConn closes conn with a policy-violation reason.
func rejectConn(conn *websocket.Conn, reason string) {
	writeClose(conn, websocket.ClosePolicyViolation, reason)
	cerrors.Log(conn.Close())
}

func writeClose(conn *websocket.Conn, code int, text string) {
	if len(text) > maxCloseText {
		text = text[:maxCloseText]
	}
	// best effort: the peer may already be gone
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(closeGrace))
}
