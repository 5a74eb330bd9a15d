package rest

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/greenshed/plantnode/internal/hardware"
	"github.com/greenshed/plantnode/internal/logging"
	"go.uber.org/zap"
)

const (
	// DefaultPort is the REST API port, default for browser access.
	DefaultPort = 80

	// acceptWait bounds how long one Update tick blocks waiting for a
	// client. Kept short so the station poll loop stays responsive.
	acceptWait = 5 * time.Millisecond

	// clientTimeout bounds reading the request and writing the response
	// for a single serviced client.
	clientTimeout = 2 * time.Second
)

// EventSink receives accepted commands for out-of-band observers (the
// telemetry stream). Implementations must not block.
type EventSink interface {
	PublishCommand(category string, token string, code byte)
}

// Service is the single-client REST router for the LED controller.
//
// One Update call services at most one pending client interaction; a
// second concurrently connecting client waits in the listen backlog, not
// in this code. The state cache is therefore mutated only from the
// caller's poll thread and needs no locking.
type Service struct {
	addr     string
	sink     hardware.IRSink
	moisture hardware.MoistureSensor
	events   EventSink

	ln     *net.TCPListener
	routes map[string]route
	cache  StateCache
}

// NewService creates a REST service bound to addr (e.g. ":80"). The
// moisture sensor and event sink are optional.
func NewService(addr string, sink hardware.IRSink, moisture hardware.MoistureSensor, events EventSink) *Service {
	return &Service{
		addr:     addr,
		sink:     sink,
		moisture: moisture,
		events:   events,
		cache:    newStateCache(),
	}
}

// Start registers all routes, resets every cache field to the unknown
// sentinel and begins listening. The station supervisor owns this call;
// WiFi must be up before it is made.
func (s *Service) Start() error {
	s.cache = newStateCache()
	s.routes = newRoutes()

	tcpAddr, err := net.ResolveTCPAddr("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to resolve listen address %s: %w", s.addr, err)
	}
	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.ln = ln

	logging.Info("REST service started",
		zap.String("addr", ln.Addr().String()),
		zap.Int("routes", len(s.routes)),
	)
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Service) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Cache returns a snapshot of the current state cache.
func (s *Service) Cache() StateCache {
	return s.cache
}

// Update services at most one pending client interaction. When no client
// is waiting it returns within the accept deadline without side effects.
func (s *Service) Update() error {
	if s.ln == nil {
		return nil
	}

	if err := s.ln.SetDeadline(time.Now().Add(acceptWait)); err != nil {
		return fmt.Errorf("failed to arm accept deadline: %w", err)
	}
	conn, err := s.ln.Accept()
	if err != nil {
		if os.IsTimeout(err) || errors.Is(err, net.ErrClosed) {
			return nil
		}
		return fmt.Errorf("accept failed: %w", err)
	}
	defer conn.Close()

	s.serviceClient(conn)
	return nil
}

// Stop closes the listening socket. Typically called when WiFi is down.
// Idempotent.
func (s *Service) Stop() {
	if s.ln == nil {
		return
	}
	if err := s.ln.Close(); err != nil {
		logging.Warn("REST listener close failed", zap.Error(err))
	}
	s.ln = nil
	logging.Info("REST service stopped")
}

// serviceClient reads one HTTP request off the raw connection, dispatches
// it and writes the plain-text response.
func (s *Service) serviceClient(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()
	_ = conn.SetDeadline(time.Now().Add(clientTimeout))

	httpReq, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		logging.Warn("failed to read client request",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}

	req := parseRequest(httpReq)
	logging.LogHTTPRequest(remoteAddr, req.method, req.uri, req.args)

	resp := s.dispatch(req)
	if err := writeResponse(conn, resp); err != nil {
		logging.Warn("failed to write response",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}
	logging.LogHTTPResponse(remoteAddr, resp.status, len(resp.body))
}

// parseRequest flattens query parameters and urlencoded form fields into
// a single argument map, the way the original single-client web server
// exposed them. On duplicates the first value wins.
func parseRequest(httpReq *http.Request) *request {
	args := make(map[string]string)
	if err := httpReq.ParseForm(); err == nil {
		for name, values := range httpReq.Form {
			if len(values) > 0 {
				args[name] = values[0]
			}
		}
	}
	return &request{
		method: httpReq.Method,
		uri:    httpReq.URL.Path,
		args:   args,
	}
}

// writeResponse hand-writes the minimal HTTP response the protocol needs.
// Every body is text/plain and the connection closes after one exchange.
func writeResponse(conn net.Conn, resp response) error {
	statusText := http.StatusText(resp.status)
	header := fmt.Sprintf(
		"HTTP/1.1 %d %s\r\nContent-Type: text/plain\r\nContent-Length: %d\r\nConnection: close\r\n\r\n",
		resp.status, statusText, len(resp.body),
	)
	if _, err := conn.Write([]byte(header + resp.body)); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}
