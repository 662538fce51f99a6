package char

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/valkyrja/ro2go/internal/config"
	"github.com/valkyrja/ro2go/internal/mapserver"
	"github.com/valkyrja/ro2go/internal/maps"
	"github.com/valkyrja/ro2go/internal/protocol"
	"github.com/valkyrja/ro2go/internal/store"
)

const (
	// idleTimeout closes connections with no inbound bytes; every decoded
	// frame (KeepAlive included) resets it.
	idleTimeout = 2 * time.Minute

	// janitorInterval paces the expired-ticket sweep.
	janitorInterval = time.Minute
)

// Stores bundles the shared state the character server works on. The ticket
// store must be the same instance the login server writes to.
type Stores struct {
	Accounts    *store.AccountStore
	Characters  *store.CharacterStore
	Inventories *store.InventoryStore
	Tickets     *store.TicketStore
}

// Server is the character server: one session goroutine per TCP connection.
type Server struct {
	cfg         config.CharServer
	accounts    *store.AccountStore
	characters  *store.CharacterStore
	inventories *store.InventoryStore
	tickets     *store.TicketStore
	maps        *maps.Table
	zone        mapserver.MapServer

	sendPool *protocol.BytePool

	// now is swapped in tests to drive deletion deadlines.
	now func() time.Time

	listener net.Listener
	mu       sync.Mutex
}

// NewServer wires the server to its stores, map table and zone link.
func NewServer(cfg config.CharServer, stores Stores, table *maps.Table, zone mapserver.MapServer) *Server {
	return &Server{
		cfg:         cfg,
		accounts:    stores.Accounts,
		characters:  stores.Characters,
		inventories: stores.Inventories,
		tickets:     stores.Tickets,
		maps:        table,
		zone:        zone,
		sendPool:    protocol.NewBytePool(protocol.DefaultSendBufSize),
		now:         time.Now,
	}
}

// Addr returns the bound address, or nil before Run.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops the listener.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// ConnectMapServer verifies the zone link by asking the zone for its maps.
func (s *Server) ConnectMapServer() error {
	if len(s.zone.Maps()) == 0 {
		return errors.New("zone server serves no maps")
	}
	return nil
}

// Ping reports whether the server is accepting connections.
func (s *Server) Ping() error {
	if s.Addr() == nil {
		return errors.New("not listening")
	}
	return nil
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.Serve(ctx, ln)
}

// Serve accepts connections from a ready listener. Exposed for tests that
// bring their own listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	wg.Go(func() {
		slog.Info("character server started", "address", ln.Addr())
		s.acceptLoop(ctx, &wg, ln)
	})
	wg.Go(func() {
		s.janitor(ctx)
	})

	wg.Wait()
	return nil
}

// janitor reaps expired tickets until ctx is done.
func (s *Server) janitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tickets.CleanExpired()
		}
	}
}

func (s *Server) acceptLoop(ctx context.Context, wg *sync.WaitGroup, ln net.Listener) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				slog.Error("failed to accept new connection", "error", err)
				continue
			}
			wg.Go(func() {
				s.handleConnection(ctx, conn)
			})
		}
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	done := make(chan struct{})
	defer close(done)
	defer conn.Close()

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	remote := conn.RemoteAddr().String()
	slog.Info("new connection", "remote", remote)

	sess := &session{srv: s, conn: conn, remote: remote}
	framer := protocol.NewFramer(conn, Decode, protocol.DefaultReadBufSize)

	for {
		conn.SetReadDeadline(time.Now().Add(idleTimeout))
		req, err := framer.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("character connection dropped", "remote", remote, "error", err)
			}
			break
		}

		finished, err := sess.handle(req)
		if err != nil {
			slog.Warn("character session write failed", "remote", remote, "error", err)
			break
		}
		if finished {
			break
		}
	}

	// A session that ended any way short of a zone handoff is gone; one that
	// was handed off lives on the zone now.
	if sess.authenticated && !sess.handedOff {
		s.zone.CharacterOffline(sess.account.ID)
	}
}
