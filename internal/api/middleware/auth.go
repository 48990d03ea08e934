package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quickcdn/qcdn/internal/service"
	"github.com/quickcdn/qcdn/internal/utils"
)

type contextKey string

const callerKey contextKey = "caller"

// SessionClaims is the JWT payload for session-mode logins.
type SessionClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Auth resolves the caller identity once, up front, and stashes it in the
// request context. Handlers never re-derive identity; they authorize against
// the resolved value.
type Auth struct {
	svc       *service.Service
	jwtSecret string
}

func NewAuth(svc *service.Service, jwtSecret string) *Auth {
	return &Auth{svc: svc, jwtSecret: jwtSecret}
}

// Resolve is the identity middleware. A bearer credential (raw token or
// "Bearer <token>") wins over a session cookie; with neither, or with an
// unknown credential, the caller is anonymous. It never rejects a request —
// authorization is each operation's first step, not the transport's.
func (a *Auth) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := remoteHost(r)

		credential := bearerToken(r)
		var (
			caller service.Caller
			err    error
		)
		if credential == "" {
			if userID := a.sessionUserID(r); userID != "" {
				caller, err = a.svc.ResolveSession(r.Context(), userID, origin)
			} else {
				caller = service.Caller{Origin: origin}
			}
		} else {
			caller, err = a.svc.ResolveCaller(r.Context(), credential, origin)
		}
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, "internal_error", "identity resolution failed")
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerFrom returns the identity resolved by Auth.Resolve; anonymous when
// the middleware did not run.
func CallerFrom(ctx context.Context) service.Caller {
	if c, ok := ctx.Value(callerKey).(service.Caller); ok {
		return c
	}
	return service.Caller{}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	// The CLI sends the raw token; browsers and curl examples use "Bearer".
	return strings.TrimPrefix(h, "Bearer ")
}

func (a *Auth) sessionUserID(r *http.Request) string {
	cookie, err := r.Cookie("token")
	if err != nil {
		return ""
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(a.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	return claims.UserID
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// TrustedOrigin reports whether the request came over loopback. Used as the
// bootstrap grant for user creation, independently of admin status.
func TrustedOrigin(r *http.Request) bool {
	ip := net.ParseIP(remoteHost(r))
	return ip != nil && ip.IsLoopback()
}
