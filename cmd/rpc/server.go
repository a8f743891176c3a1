package rpc

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/oblivisheee/aum-engine/controller"
	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/monitor"
	"github.com/rs/cors"
	"golang.org/x/net/netutil"
)

const (
	SoftwareVersion = "0.1.0"
	ContentType     = "Content-Type"
	ApplicationJSON = "application/json; charset=utf-8"
)

// Server is the websocket api of the engine
type Server struct {
	controller *controller.Controller
	config     lib.RPCConfig
	upgrader   websocket.Upgrader
	http       *http.Server
	conns      map[uuid.UUID]*Conn // open websocket connections
	mu         sync.Mutex
	metrics    *lib.Metrics
	logger     lib.LoggerI
}

// HealthResponse is the body of GET /v1/health
type HealthResponse struct {
	Healthy bool       `json:"healthy"`
	Running bool       `json:"running"`
	Error   *lib.Error `json:"error,omitempty"`
}

// StatusResponse is the body of GET /v1/status
type StatusResponse struct {
	Version      string `json:"version"`
	Network      string `json:"network"`
	Wallets      int    `json:"wallets"`
	TotalBalance string `json:"totalBalance"`
	Pending      int    `json:"pending"`
	Running      bool   `json:"running"`
	Connections  int    `json:"connections"`
}

// NewServer() constructs the websocket api over a controller
func NewServer(c *controller.Controller, config lib.RPCConfig, metrics *lib.Metrics, logger lib.LoggerI) *Server {
	return &Server{
		controller: c,
		config:     config,
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		conns:      make(map[uuid.UUID]*Conn),
		metrics:    metrics,
		logger:     logger,
	}
}

// Handler() returns the router wrapped in the cors policy
func (s *Server) Handler() http.Handler {
	// Create CORS policy
	cor := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	})
	return cor.Handler(createRouter(s))
}

// Start() serves the api on the configured listen address
func (s *Server) Start() {
	s.mu.Lock()
	s.http = &http.Server{Addr: s.config.ListenAddress, Handler: s.Handler(), ReadHeaderTimeout: s.timeout()}
	srv := s.http
	s.mu.Unlock()
	s.logger.Infof("Starting RPC server at %s", s.config.ListenAddress)
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.logger.Fatal(ErrIO(err).Error())
		return
	}
	// cap simultaneous connections
	if s.config.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.config.MaxConnections)
	}
	lib.SafeGo(s.logger, func() {
		if e := srv.Serve(ln); e != nil && e != http.ErrServerClosed {
			s.logger.Fatal(e.Error())
		}
	})
}

// Stop() stops accepting connections and closes the open ones
func (s *Server) Stop() {
	s.mu.Lock()
	srv := s.http
	conns := make([]*Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout())
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error(err.Error())
		}
	}
	// hijacked connections aren't tracked by the http server
	for _, c := range conns {
		c.Stop(nil)
	}
}

// Health() runs the static health check and reports the monitor state
func (s *Server) Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	resp := HealthResponse{Healthy: true, Running: s.controller.Monitor.IsRunning()}
	if err := monitor.HealthCheck(s.controller.Config.MinFreeMemoryBytes); err != nil {
		resp.Healthy, resp.Error = false, lib.NewError(err.Code(), err.Module(), lib.Message(err))
		write(w, resp, http.StatusServiceUnavailable, s.logger)
		return
	}
	write(w, resp, http.StatusOK, s.logger)
}

// Status() summarizes the fleet
func (s *Server) Status(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	f := s.controller.Fleet
	write(w, StatusResponse{
		Version:      SoftwareVersion,
		Network:      f.HRP(),
		Wallets:      f.Len(),
		TotalBalance: f.TotalBalance().ToBig().String(),
		Pending:      f.PendingCount(),
		Running:      s.controller.Monitor.IsRunning(),
		Connections:  s.connections(),
	}, http.StatusOK, s.logger)
}

func (s *Server) addConn(c *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c.id] = c
	s.metrics.UpdateConnections(1)
}

func (s *Server) removeConn(c *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.conns[c.id]; found {
		delete(s.conns, c.id)
		s.metrics.UpdateConnections(-1)
	}
}

func (s *Server) connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) timeout() time.Duration {
	if s.config.TimeoutS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.config.TimeoutS) * time.Second
}

// write() encodes the payload as indented json
func write(w http.ResponseWriter, payload any, code int, log lib.LoggerI) {
	w.Header().Set(ContentType, ApplicationJSON)
	w.WriteHeader(code)
	bz, _ := json.MarshalIndent(payload, "", "  ")
	if _, err := w.Write(bz); err != nil {
		log.Error(err.Error())
	}
}
