package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/safar/furnishop/internal/models"
	log "github.com/sirupsen/logrus"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// CustomerLookup resolves a token subject to a stored customer.
type CustomerLookup func(ctx context.Context, id string) (*models.Customer, error)

type Gate struct {
	tokens *Tokens
	lookup CustomerLookup
}

func NewGate(tokens *Tokens, lookup CustomerLookup) *Gate {
	return &Gate{tokens: tokens, lookup: lookup}
}

// RequireAuth rejects requests without a valid bearer token for an existing
// customer, and otherwise attaches the customer's Identity.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := g.tokens.Verify(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		customer, err := g.lookup(r.Context(), claims.Subject)
		if err != nil {
			log.WithField("customer_id", claims.Subject).WithError(err).Debug("token subject lookup failed")
			writeError(w, http.StatusUnauthorized, "not authorized")
			return
		}

		ctx := WithIdentity(r.Context(), Identity{ID: customer.ID, Role: customer.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authorized")
			return
		}
		if !id.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
