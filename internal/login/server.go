package login

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
	"github.com/valkyrja/ro2go/internal/login/serverpackets"
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

// Server is the login server: one goroutine per TCP connection, two states
// per connection (before login, authenticated).
type Server struct {
	cfg     config.LoginServer
	agent   *Agent
	tickets *store.TicketStore

	servers  []serverpackets.ServerInfo
	sendPool *protocol.BytePool

	listener net.Listener
	mu       sync.Mutex
}

// NewServer wires the server to its stores. The character-server list is
// resolved from config once; connections snapshot it at accept time.
func NewServer(cfg config.LoginServer, accounts *store.AccountStore, tickets *store.TicketStore) *Server {
	servers := make([]serverpackets.ServerInfo, 0, len(cfg.CharServers))
	for _, cs := range cfg.CharServers {
		if len(servers) == serverpackets.MaxCharServers {
			slog.Warn("character server list truncated", "limit", serverpackets.MaxCharServers)
			break
		}
		ip := net.ParseIP(cs.Address)
		if ip == nil {
			ip = net.IPv4(127, 0, 0, 1)
		}
		servers = append(servers, serverpackets.ServerInfo{
			Name: cs.Name,
			IP:   ip,
			Port: cs.Port,
		})
	}

	return &Server{
		cfg:      cfg,
		agent:    NewAgent(accounts, tickets),
		tickets:  tickets,
		servers:  servers,
		sendPool: protocol.NewBytePool(protocol.DefaultSendBufSize),
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
		slog.Info("login server started", "address", ln.Addr())
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

	framer := protocol.NewFramer(conn, Decode, protocol.DefaultReadBufSize)
	var clientHash [16]byte

	for {
		conn.SetReadDeadline(time.Now().Add(idleTimeout))
		req, err := framer.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("login connection dropped", "remote", remote, "error", err)
			}
			return
		}

		switch req := req.(type) {
		case KeepAlive:
			slog.Warn("keep-alive before login", "remote", remote)

		case UpdateClientHash:
			clientHash = req.Hash
			slog.Debug("client hash recorded", "remote", remote, "hash", fmt.Sprintf("%x", clientHash))

		case ClientLogin:
			authenticated, err := s.handleLogin(conn, req.Credentials, remote)
			if err != nil {
				slog.Warn("login write failed", "remote", remote, "error", err)
				return
			}
			if authenticated {
				// This port is done; hold the socket open until the
				// client hangs up.
				conn.SetReadDeadline(time.Time{})
				io.Copy(io.Discard, conn)
				return
			}

		case Unsupported:
			slog.Warn("unsupported login request", "remote", remote, "opcode", fmt.Sprintf("0x%04x", req.Opcode))
			s.sendAborted(conn, AbortServerClosed)
			return
		}
	}
}

// handleLogin runs one authentication attempt. It reports whether the
// attempt succeeded; a refusal keeps the connection for a retry.
func (s *Server) handleLogin(conn net.Conn, creds Credentials, remote string) (bool, error) {
	acc, fail := s.agent.Authenticate(creds)
	if fail != nil {
		slog.Info("login refused", "remote", remote, "user", creds.Username, "code", fail.Code)
		return false, s.sendFailed(conn, fail)
	}

	ticket, err := s.agent.CreateSession(acc)
	if err != nil {
		slog.Error("failed to create session", "account", acc.ID, "error", err)
		return false, s.sendFailed(conn, NewFailure(FailRejectedFromServer))
	}

	buf := s.sendPool.Get(protocol.DefaultSendBufSize)
	defer s.sendPool.Put(buf)
	n, err := serverpackets.LoginSuccessV3(buf, ticket, s.servers)
	if err != nil {
		return false, err
	}
	if _, err := conn.Write(buf[:n]); err != nil {
		return false, err
	}

	slog.Info("login accepted", "remote", remote, "account", acc.ID, "servers", len(s.servers))
	return true, nil
}

func (s *Server) sendFailed(conn net.Conn, fail *Failure) error {
	buf := s.sendPool.Get(protocol.DefaultSendBufSize)
	defer s.sendPool.Put(buf)
	n, err := serverpackets.LoginFailed(buf, uint32(fail.Code), fail.BanUntil)
	if err != nil {
		return err
	}
	_, err = conn.Write(buf[:n])
	return err
}

func (s *Server) sendAborted(conn net.Conn, reason AbortCode) {
	buf := s.sendPool.Get(protocol.DefaultSendBufSize)
	defer s.sendPool.Put(buf)
	n, err := serverpackets.LoginAborted(buf, uint8(reason))
	if err != nil {
		return
	}
	conn.Write(buf[:n])
}
