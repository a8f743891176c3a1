package rpc

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/oblivisheee/aum-engine/lib"
	"golang.org/x/time/rate"
)

/* This file implements the server side of the websocket api: one ordered request/response stream per connection */

const (
	defaultReadLimitBytes = int64(64 * 1024)
	defaultWriteTimeout   = 10 * time.Second
	defaultPongWait       = 60 * time.Second
)

// Conn is a single websocket client
type Conn struct {
	id      uuid.UUID          // the connection id used in logs
	conn    *websocket.Conn    // the underlying ws connection
	server  *Server            // a reference to the server that accepted the connection
	limiter *rate.Limiter      // per connection request budget
	ctx     context.Context    // cancelled when the connection closes
	cancel  context.CancelFunc // closes ctx
	once    sync.Once          // stop only once
	writeMu sync.Mutex         // protects concurrent writes
	log     lib.LoggerI        // stdout log
	// limits
	readLimit    int64
	writeTimeout time.Duration
	pongWait     time.Duration
	pingPeriod   time.Duration
}

// WebSocket() upgrades a http request to a websockets connection
func (s *Server) WebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// upgrade the connection to websockets
	conn, err := s.upgrader.Upgrade(w, r, nil)
	// if an error occurred during the upgrade the upgrader already answered the request
	if err != nil {
		s.logger.Errorf("Websocket upgrade failed: %s", err.Error())
		return
	}
	c := s.newConn(conn)
	s.addConn(c)
	c.log.Debugf("Accepted connection from %s", r.RemoteAddr)
	c.Start()
}

// newConn() applies the configured limits to a fresh connection
func (s *Server) newConn(conn *websocket.Conn) *Conn {
	readLimit := s.config.MaxMessageBytes
	if readLimit <= 0 {
		readLimit = defaultReadLimitBytes
	}
	writeTimeout := time.Duration(s.config.WriteTimeoutS) * time.Second
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	pongWait := time.Duration(s.config.PongWaitS) * time.Second
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	pingPeriod := time.Duration(s.config.PingPeriodS) * time.Second
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		pingPeriod = pongWait * 9 / 10
	}
	limit, burst := rate.Inf, s.config.RequestBurst
	if s.config.RequestsPerSecond > 0 {
		limit = rate.Limit(s.config.RequestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		id:           id,
		conn:         conn,
		server:       s,
		limiter:      rate.NewLimiter(limit, burst),
		ctx:          ctx,
		cancel:       cancel,
		log:          s.logger.WithPrefix("conn " + id.String()[:8]),
		readLimit:    readLimit,
		writeTimeout: writeTimeout,
		pongWait:     pongWait,
		pingPeriod:   pingPeriod,
	}
}

// Start() configures the connection and runs its read and ping loops
func (c *Conn) Start() {
	c.conn.SetReadLimit(c.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})
	go c.pingLoop()
	go c.readLoop()
}

// readLoop() answers every frame in arrival order
func (c *Conn) readLoop() {
	defer lib.CatchPanic(c.log)
	for {
		msgType, bz, err := c.conn.ReadMessage()
		if err != nil {
			c.Stop(err)
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		resp := c.handle(msgType, bz)
		if err = c.writeResponse(resp); err != nil {
			c.Stop(err)
			return
		}
		// pongs are only processed inside ReadMessage, restart the wait after a slow request
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	}
}

// handle() turns one inbound frame into exactly one response frame
func (c *Conn) handle(msgType int, bz []byte) *lib.Response {
	if !c.limiter.Allow() {
		return lib.NewErrorResponse(ErrRateLimited())
	}
	if msgType != websocket.TextMessage {
		return lib.NewErrorResponse(lib.ErrWrongRequest("expected a text frame"))
	}
	req, err := lib.DecodeRequest(bz)
	if err != nil {
		c.log.Debugf("Malformed request: %s", lib.Message(err))
		return lib.NewErrorResponse(err)
	}
	resp, err := c.server.controller.Executor.Execute(c.ctx, req)
	if err != nil {
		c.log.Debugf("%s failed: %s", req.Type, lib.Message(err))
		return lib.NewErrorResponse(err)
	}
	return resp
}

func (c *Conn) writeResponse(resp *lib.Response) error {
	bz, err := lib.EncodeResponse(resp)
	if err != nil {
		bz, _ = lib.EncodeResponse(lib.NewErrorResponse(err))
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, bz)
}

func (c *Conn) pingLoop() {
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
				c.Stop(err)
				return
			}
		}
	}
}

// Stop() cancels the in-flight request and closes the connection
func (c *Conn) Stop(err error) {
	c.once.Do(func() {
		c.cancel()
		var closeErr *websocket.CloseError
		switch {
		case err == nil, errors.As(err, &closeErr) && (closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway):
			c.log.Debug("Connection closed")
		default:
			c.log.Warnf("Connection closed with err: %s", err.Error())
		}
		if e := c.conn.Close(); e != nil {
			c.log.Debug(e.Error())
		}
		c.server.removeConn(c)
	})
}
