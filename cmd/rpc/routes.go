package rpc

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Engine RPC Paths
const (
	RootRoutePath      = "/"
	WebSocketRoutePath = "/v1/ws"
	HealthRoutePath    = "/v1/health"
	StatusRoutePath    = "/v1/status"
)

// Engine RPC route names
const (
	RootRouteName      = "root"
	WebSocketRouteName = "ws"
	HealthRouteName    = "health"
	StatusRouteName    = "status"
)

// routes contains the method and path for each route
type routes map[string]struct {
	Method string
	Path   string
}

// routePaths is a map of route names to their corresponding HTTP methods and paths
var routePaths = routes{
	RootRouteName:      {Method: http.MethodGet, Path: RootRoutePath},
	WebSocketRouteName: {Method: http.MethodGet, Path: WebSocketRoutePath},
	HealthRouteName:    {Method: http.MethodGet, Path: HealthRoutePath},
	StatusRouteName:    {Method: http.MethodGet, Path: StatusRoutePath},
}

// createRouter() maps each route to its handler
func createRouter(s *Server) *httprouter.Router {
	var r = map[string]httprouter.Handle{
		RootRouteName:      s.WebSocket,
		WebSocketRouteName: s.WebSocket,
		HealthRouteName:    s.Health,
		StatusRouteName:    s.Status,
	}
	router := httprouter.New()
	for name, route := range routePaths {
		router.Handle(route.Method, route.Path, r[name])
	}
	return router
}
