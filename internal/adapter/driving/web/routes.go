package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
// Every POST route is CSRF protected.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /signup", h.SignupPage)
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("GET /text", h.TextPage)
	mux.HandleFunc("GET /image", h.ImagePage)
	mux.HandleFunc("GET /history", h.HistoryPage)

	// Form actions.
	mux.HandleFunc("POST /continue", csrfProtect(maxBodyBytes, h.Continue))
	mux.HandleFunc("POST /signup", csrfProtect(maxBodyBytes, h.Signup))
	mux.HandleFunc("POST /login", csrfProtect(maxBodyBytes, h.Login))
	mux.HandleFunc("POST /logout", csrfProtect(maxBodyBytes, h.Logout))
	mux.HandleFunc("POST /text", csrfProtect(maxBodyBytes, h.AnalyzeText))
	mux.HandleFunc("POST /image", csrfProtect(maxBodyBytes, h.AnalyzeImage))
	mux.HandleFunc("POST /location", csrfProtect(maxBodyBytes, h.Location))
	mux.HandleFunc("POST /location/clear", csrfProtect(maxBodyBytes, h.ClearLocation))
}
