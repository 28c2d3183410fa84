package api

import (
	"net/http"
	"strings"

	"github.com/example/doc-insight/internal/api/middleware"
	"github.com/example/doc-insight/internal/auth"
)

// RouterConfig bundles the dependencies for the HTTP router
type RouterConfig struct {
	Handlers     *Handlers
	AuthHandlers *AuthHandlers
	JWTService   *auth.JWTService
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	authRequired := middleware.AuthMiddleware(cfg.JWTService)

	// Auth
	mux.HandleFunc("/auth/register", methodHandler(http.MethodPost, cfg.AuthHandlers.Register))
	mux.HandleFunc("/auth/login", methodHandler(http.MethodPost, cfg.AuthHandlers.Login))
	mux.HandleFunc("/auth/refresh", methodHandler(http.MethodPost, cfg.AuthHandlers.Refresh))
	mux.HandleFunc("/auth/logout", methodHandler(http.MethodPost, cfg.AuthHandlers.Logout))
	mux.Handle("/auth/me", authRequired(http.HandlerFunc(cfg.AuthHandlers.Me)))

	// Documents
	mux.Handle("/documents", authRequired(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.Handlers.ListDocuments(w, r)
		case http.MethodPost:
			cfg.Handlers.UploadDocument(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/documents/", authRequired(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/convert"):
			cfg.Handlers.ConvertDocument(w, r)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/analyze"):
			cfg.Handlers.AnalyzeDocument(w, r)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/archive"):
			cfg.Handlers.ArchiveDocument(w, r)
		case r.Method == http.MethodGet:
			cfg.Handlers.GetDocument(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Feedback sessions
	mux.Handle("/sessions", authRequired(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.Handlers.ListSessions(w, r)
		case http.MethodPost:
			cfg.Handlers.StartSession(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/sessions/", authRequired(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/comments"):
			cfg.Handlers.AddComment(w, r)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/suggestions"):
			cfg.Handlers.ProposeSuggestion(w, r)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/resolve"):
			cfg.Handlers.ResolveSuggestion(w, r)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/close"):
			cfg.Handlers.CloseSession(w, r)
		case r.Method == http.MethodGet:
			cfg.Handlers.GetSession(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Policies
	mux.Handle("/policies", authRequired(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.Handlers.ListPolicyRepos(w, r)
		case http.MethodPost:
			cfg.Handlers.CreatePolicyRepo(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/policies/", authRequired(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/add"):
			cfg.Handlers.AddPolicy(w, r)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/revise"):
			cfg.Handlers.RevisePolicy(w, r)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/remove"):
			cfg.Handlers.RemovePolicy(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}

func methodHandler(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}
