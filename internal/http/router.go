package httpserver

import (
	"net/http"

	"cartfleet/internal/http/handlers"
	"cartfleet/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Auth      *handlers.AuthHandlers
	Users     *handlers.UserHandlers
	Carts     *handlers.CartHandlers
	Locations *handlers.LocationHandlers
	Alerts    *handlers.AlertHandlers
	Health    http.HandlerFunc
	RelayWS   http.HandlerFunc
	UploadDir string
}

// NewRouter wires all HTTP routes with middleware.
func NewRouter(deps RouterDeps, tokens middleware.TokenValidator) http.Handler {
	mux := http.NewServeMux()

	authed := func(handler http.HandlerFunc) http.Handler {
		return middleware.Chain(handler, middleware.Auth(tokens))
	}
	adminOnly := func(handler http.HandlerFunc) http.Handler {
		return middleware.Chain(handler, middleware.Auth(tokens), middleware.AdminOnly)
	}

	mux.Handle("GET /health", deps.Health)

	// Live relay channel; token is checked at upgrade time.
	mux.Handle("GET /ws", deps.RelayWS)

	mux.Handle("POST /api/users/register", http.HandlerFunc(deps.Auth.Register))
	mux.Handle("POST /api/users/login", http.HandlerFunc(deps.Auth.Login))
	mux.Handle("GET /api/users/profile", authed(deps.Users.Profile))
	mux.Handle("POST /api/users/profile/photo", authed(deps.Users.UploadPhoto))
	mux.Handle("GET /api/users", authed(deps.Users.List))
	mux.Handle("PUT /api/users/{id}", authed(deps.Users.Update))
	mux.Handle("DELETE /api/users/{id}", adminOnly(deps.Users.Delete))

	mux.Handle("POST /api/carts", adminOnly(deps.Carts.Create))
	mux.Handle("GET /api/carts", authed(deps.Carts.List))
	mux.Handle("GET /api/carts/{id}", authed(deps.Carts.Get))
	mux.Handle("PUT /api/carts/{id}", authed(deps.Carts.Update))
	mux.Handle("DELETE /api/carts/{id}", adminOnly(deps.Carts.Delete))
	mux.Handle("PUT /api/carts/{identifier}/position", authed(deps.Carts.SetPosition))
	mux.Handle("GET /api/carts/{identifier}/position", authed(deps.Carts.LastPosition))

	mux.Handle("POST /api/locations", authed(deps.Locations.Create))
	mux.Handle("GET /api/locations", authed(deps.Locations.List))
	mux.Handle("GET /api/locations/{id}", authed(deps.Locations.Get))
	mux.Handle("DELETE /api/locations/{id}", authed(deps.Locations.Delete))

	mux.Handle("POST /api/alerts", authed(deps.Alerts.Create))
	mux.Handle("GET /api/alerts", authed(deps.Alerts.List))
	mux.Handle("GET /api/alerts/{id}", authed(deps.Alerts.Get))
	mux.Handle("PUT /api/alerts/{id}/attend", authed(deps.Alerts.Attend))
	mux.Handle("DELETE /api/alerts/{id}", adminOnly(deps.Alerts.Delete))

	if deps.UploadDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadDir))))
	}

	return mux
}
