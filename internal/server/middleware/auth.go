package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"fileconsole/internal/model"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// AuthMiddleware checks the bearer token's HS256 signature against the
// shared dev key and extracts the embedded user. It deliberately verifies
// nothing else — the console mints these tokens locally.
type AuthMiddleware struct {
	secret []byte
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret)}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeAuthError(w, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		user, err := m.parseToken(strings.TrimSpace(header[7:]))
		if err != nil {
			writeAuthError(w, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin guards irreversible operations. RequireAuth must run first.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeAuthError(w, "UNAUTHORIZED", "authentication required")
			return
		}
		if !strings.EqualFold(user.Role, model.RoleAdmin) {
			writeAuthError(w, "FORBIDDEN", "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) parseToken(tokenString string) (model.User, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrUnauthorized
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return model.User{}, model.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return model.User{}, model.ErrUnauthorized
	}

	user := model.User{}
	user.Username, _ = claims["sub"].(string)
	user.ID, _ = claims["userId"].(string)
	user.Role, _ = claims["role"].(string)
	if user.Username == "" {
		return model.User{}, model.ErrUnauthorized
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	return user, nil
}

func UserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userContextKey).(model.User)
	return user, ok
}

func writeAuthError(w http.ResponseWriter, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	if code == "FORBIDDEN" {
		w.WriteHeader(http.StatusForbidden)
	} else {
		w.WriteHeader(http.StatusUnauthorized)
	}

	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
