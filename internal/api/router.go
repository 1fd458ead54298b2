package api

import (
	"database/sql"
	"net/http"

	"github.com/evanmh/stocktrack/internal/inventory"
	"github.com/evanmh/stocktrack/internal/model"
)

// NewRouter creates the API router with all endpoints registered. Record
// operations go through the inventory service; auth, users, and photos talk
// to their stores directly.
func NewRouter(db *sql.DB, svc *inventory.Service, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	stockHandler := &StockHandler{Service: svc}
	photosHandler := &PhotosHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Stock: read (all roles), write (admin).
	mux.Handle("GET /api/stock", authMW(http.HandlerFunc(stockHandler.List)))
	mux.Handle("POST /api/stock", authMW(requireAdmin(http.HandlerFunc(stockHandler.Create))))
	mux.Handle("POST /api/stock/search", authMW(http.HandlerFunc(stockHandler.Search)))
	mux.Handle("GET /api/stock/{ja_id}", authMW(http.HandlerFunc(stockHandler.Get)))
	mux.Handle("PUT /api/stock/{ja_id}", authMW(requireAdmin(http.HandlerFunc(stockHandler.Update))))
	mux.Handle("DELETE /api/stock/{ja_id}", authMW(requireAdmin(http.HandlerFunc(stockHandler.Deactivate))))
	mux.Handle("POST /api/stock/{ja_id}/activate", authMW(requireAdmin(http.HandlerFunc(stockHandler.Activate))))
	mux.Handle("POST /api/stock/{ja_id}/shorten", authMW(requireAdmin(http.HandlerFunc(stockHandler.Shorten))))
	mux.Handle("GET /api/stock/{ja_id}/history", authMW(http.HandlerFunc(stockHandler.History)))

	// Stats.
	mux.Handle("GET /api/stats", authMW(http.HandlerFunc(stockHandler.Stats)))

	// Photos: read (all roles), write (admin).
	mux.Handle("GET /api/stock/{ja_id}/photos", authMW(http.HandlerFunc(photosHandler.List)))
	mux.Handle("POST /api/stock/{ja_id}/photos", authMW(requireAdmin(http.HandlerFunc(photosHandler.Upload))))
	mux.Handle("GET /api/photos/{id}", authMW(photosHandler.Get(false)))
	mux.Handle("GET /api/photos/{id}/thumb", authMW(photosHandler.Get(true)))
	mux.Handle("DELETE /api/photos/{id}", authMW(requireAdmin(http.HandlerFunc(photosHandler.Delete))))

	return mux
}
