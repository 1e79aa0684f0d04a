// Package stubapi is an in-memory implementation of the clipmarket wire
// contract, used for local development and integration tests. It speaks
// the exact request and response shapes the real backend uses but keeps
// everything in flat maps: no durability, no real ledger.
package stubapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/clipmarket/client/internal/videos"
)

// Options configures the stub handler.
type Options struct {
	Secret   string
	TokenTTL time.Duration
	Logger   *slog.Logger
}

type handler struct {
	store    *Store
	secret   string
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewHandler builds the stub's HTTP handler around the provided store.
func NewHandler(store *Store, opts Options) http.Handler {
	if opts.Secret == "" {
		opts.Secret = "clipmarket-dev-secret"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	h := &handler{
		store:    store,
		secret:   opts.Secret,
		tokenTTL: opts.TokenTTL,
		logger:   opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(requestLogger(opts.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Post("/auth/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/auth/me", h.me)
		r.Get("/videos/feed", h.feed)
		r.Get("/videos/balance", h.balance)
		r.Get("/videos/{id}", h.video)
		r.Post("/videos/purchase", h.purchase)
		r.Post("/gifts/send", h.gift)
	})

	return r
}

type userEnvelope struct {
	ID        string   `json:"_id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Wallet    int      `json:"wallet"`
	Purchases []string `json:"purchases"`
}

func envelope(u *User) userEnvelope {
	purchases := u.Purchases
	if purchases == nil {
		purchases = []string{}
	}
	return userEnvelope{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Wallet:    u.Wallet,
		Purchases: purchases,
	}
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, ok := h.store.userByEmail(req.Email)
	if !ok || user.Password != req.Password {
		respondMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := mintToken(h.secret, user.ID, h.tokenTTL)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  envelope(user),
	})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.store.userByID(userIDFrom(r))
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unknown user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": envelope(user)})
}

func (h *handler) feed(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.store.feed())
}

func (h *handler) video(w http.ResponseWriter, r *http.Request) {
	video, ok := h.store.videoByID(chi.URLParam(r, "id"))
	if !ok {
		respondMessage(w, http.StatusNotFound, "Video not found")
		return
	}
	// Matches the backend's single-video envelope.
	respondJSON(w, http.StatusOK, map[string]videos.Payload{"videos": video})
}

func (h *handler) balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.store.balance(userIDFrom(r))
	if err != nil {
		respondMessage(w, http.StatusUnauthorized, "Unknown user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"balance": balance})
}

func (h *handler) purchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VideoID string `json:"videoId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	newBalance, err := h.store.purchase(userIDFrom(r), req.VideoID)
	switch err {
	case nil:
		respondJSON(w, http.StatusOK, map[string]int{"newBalance": newBalance})
	case errVideoNotFound:
		respondMessage(w, http.StatusNotFound, "Video not found")
	case errFreeVideo:
		respondMessage(w, http.StatusBadRequest, "Video is free")
	case errAlreadyPurchased:
		respondMessage(w, http.StatusBadRequest, "Video already purchased")
	case errInsufficientWallet:
		respondMessage(w, http.StatusBadRequest, "Insufficient balance")
	default:
		respondMessage(w, http.StatusInternalServerError, "Purchase failed")
	}
}

func (h *handler) gift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CreatorID string `json:"creatorId"`
		VideoID   string `json:"videoId"`
		Amount    int    `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount <= 0 {
		respondMessage(w, http.StatusBadRequest, "Gift amount must be positive")
		return
	}

	newBalance, err := h.store.gift(userIDFrom(r), req.CreatorID, req.Amount)
	switch err {
	case nil:
		respondJSON(w, http.StatusOK, map[string]int{"newBalance": newBalance})
	case errInsufficientWallet:
		respondMessage(w, http.StatusBadRequest, "Insufficient balance")
	default:
		respondMessage(w, http.StatusInternalServerError, "Gift failed")
	}
}

type ctxKey string

const userIDKey ctxKey = "userID"

func contextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func userIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// requireAuth validates the bearer token and stashes the user id.
func (h *handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			respondMessage(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		userID, err := verifyToken(h.secret, token)
		if err != nil {
			respondMessage(w, http.StatusUnauthorized, "Invalid bearer token")
			return
		}

		ctx := r.Context()
		next.ServeHTTP(w, r.WithContext(contextWithUserID(ctx, userID)))
	})
}

// requestLogger emits one structured entry per request.
func requestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			wrapped := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(wrapped, r)

			base.Info("request completed",
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.status()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) status() int {
	if w.code == 0 {
		return http.StatusOK
	}
	return w.code
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
