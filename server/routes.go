package server

import "net/http"

func (s *Server) initRoutes() {
	// Flow endpoints
	s.RegisterRouteFunc("GET "+RouteAuthorizeStart, ChainMiddleware(s.AuthorizeStartHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthorizeCallback, ChainMiddleware(s.AuthorizeCallbackHandler(), s.APIMiddleware()...))

	// Passthrough / operational endpoints
	s.RegisterRouteFunc("GET "+RouteUserinfo, ChainMiddleware(s.UserinfoHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// Permissive preflight for every path; anything else is a 404
	s.RegisterRouteFunc("OPTIONS /", ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("/", ChainMiddleware(s.NotFoundHandler(), s.APIMiddleware()...))
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 - Not Found", http.StatusNotFound)
	}
}

func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
