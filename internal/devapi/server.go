package devapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"catalog-cli/internal/model"
	"catalog-cli/internal/session"

	"github.com/golang-jwt/jwt/v5"
)

type ServerConfig struct {
	// Secret, when set, requires HS256 bearer tokens signed with it.
	// When empty any non-empty bearer token is accepted.
	Secret string
}

type Server struct {
	cfg   ServerConfig
	store *Store
	log   *slog.Logger
}

func NewServer(cfg ServerConfig, store *Store, logger *slog.Logger) *Server {
	return &Server{cfg: cfg, store: store, log: logger.With("component", "devapi")}
}

type actorKey struct{}

func actorFrom(ctx context.Context) string {
	id, _ := ctx.Value(actorKey{}).(string)
	return id
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/knowledge/domains", s.handleDomainsList)
	api.HandleFunc("POST /api/knowledge/domains", s.handleDomainCreate)
	api.HandleFunc("PUT /api/knowledge/domains/{domainId}", s.handleDomainUpdate)
	api.HandleFunc("DELETE /api/knowledge/domains/{domainId}", s.handleDomainDelete)
	api.HandleFunc("GET /api/diagrams", s.handleDiagramsList)
	api.HandleFunc("POST /api/diagrams", s.handleDiagramCreate)
	api.HandleFunc("GET /api/knowledge/catalog-stats", s.handleCatalogStats)
	api.HandleFunc("GET /api/approvals/my-items", s.handleMyItems)
	api.HandleFunc("POST /api/approvals/create", s.handleApprovalCreate)
	api.HandleFunc("POST /api/knowledge-extraction/extract-from-source", s.handleExtract)
	mux.Handle("/api/", s.requireAuth(api))

	return s.logRequests(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", time.Since(started)),
			slog.String("request_id", r.Header.Get("X-Request-ID")),
		)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			writeFailure(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		actor, err := s.authenticate(raw)
		if err != nil {
			writeFailure(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

type stubClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

func (s *Server) authenticate(raw string) (string, error) {
	if s.cfg.Secret == "" {
		sess, err := session.FromToken(raw, "")
		if err != nil {
			return "", err
		}
		return sess.User.ID, nil
	}
	token, err := jwt.ParseWithClaims(raw, &stubClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(*stubClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	if claims.UserID != "" {
		return claims.UserID, nil
	}
	return claims.Subject, nil
}

// IssueToken signs an HS256 token for user, readable by session.FromToken.
func IssueToken(secret string, user session.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := stubClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    "catalog-devapi",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

func (s *Server) writeStoreErr(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		writeFailure(w, http.StatusNotFound, "not found")
		return
	}
	s.log.Error("store error", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	writeFailure(w, http.StatusInternalServerError, "internal error")
}

// decode reads a JSON body into v and runs its validation.
func decode[T interface{ Validate() error }](w http.ResponseWriter, r *http.Request, v *T) bool {
	b, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "read body: "+err.Error())
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	if err := (*v).Validate(); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleDomainsList(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.ListDomains(r.Context())
	if err != nil {
		s.writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "domains": ds})
}

func (s *Server) handleDomainCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDomainRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := s.store.CreateDomain(r.Context(), req)
	if err != nil {
		s.writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": d.ID, "message": "Domain created"})
}

func (s *Server) handleDomainUpdate(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateDomainRequest
	b, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if err := json.Unmarshal(b, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	// The id comes from the path.
	req.ID = r.PathValue("domainId")
	if err := req.Validate(); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := s.store.UpdateDomain(r.Context(), req, actorFrom(r.Context()))
	if err != nil {
		s.writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": d.ID, "message": "Domain updated"})
}

func (s *Server) handleDomainDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("domainId")
	if err := s.store.DeleteDomain(r.Context(), id, actorFrom(r.Context())); err != nil {
		s.writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id, "message": "Domain deleted"})
}

func (s *Server) handleDiagramsList(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.ListDiagrams(r.Context())
	if err != nil {
		s.writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": ds})
}

func (s *Server) handleDiagramCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDiagramRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := s.store.CreateDiagram(r.Context(), req)
	if err != nil {
		s.writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": d.ID})
}

func (s *Server) handleCatalogStats(w http.ResponseWriter, r *http.Request) {
	ov, err := s.store.Overview(r.Context())
	if err != nil {
		s.writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (s *Server) handleMyItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var status model.Status
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		st, err := model.ParseStatus(raw)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		status = st
	}
	owner := strings.TrimSpace(q.Get("owner_id"))
	if owner == "" {
		owner = actorFrom(r.Context())
	}
	items, err := s.store.MyItems(r.Context(), status, owner)
	if err != nil {
		s.writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

func (s *Server) handleApprovalCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateApprovalRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := s.store.CreateApproval(r.Context(), req)
	if err != nil {
		s.writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": p.ID})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req model.ExtractionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.System.OwnerID == "" {
		req.System.OwnerID = actorFrom(r.Context())
	}
	id, err := s.store.RecordExtraction(r.Context(), req)
	if err != nil {
		s.writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"id":      id,
		"message": fmt.Sprintf("Extraction started for %s", req.Source.URL),
	})
}
