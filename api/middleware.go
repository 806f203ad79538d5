package api

import (
	"context"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/garnizeh/devmatch/internal/auth"
	"github.com/garnizeh/devmatch/pkg/models"
	"github.com/garnizeh/devmatch/pkg/repository"
)

type ctxKey string

const (
	ctxCaller    ctxKey = "caller"
	ctxDeveloper ctxKey = "developer"
	ctxEmployer  ctxKey = "employer"
)

// package-level logger used by middleware and helpers; can be set via SetLogger from caller
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

var devMode bool

// SetLogger installs a logger for the api package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// SetDevMode controls whether 500 responses include the error detail.
func SetDevMode(on bool) {
	devMode = on
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
		)
		next.ServeHTTP(w, r)
	})
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic", slog.Any("err", err))
				writeJSON(w, Envelope{Success: false, Message: "internal server error"}, http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// BodyLimitMiddleware caps request bodies; oversized reads fail downstream
// with a decode error.
func BodyLimitMiddleware(maxBytes int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware applies a per-address limiter: requests per window,
// with the whole window available as burst.
func RateLimitMiddleware(requests int, window time.Duration) mux.MiddlewareFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	limit := rate.Limit(float64(requests) / window.Seconds())

	get := func(addr string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[addr]
		if !ok {
			l = rate.NewLimiter(limit, requests)
			limiters[addr] = l
		}
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !get(host).Allow() {
				writeJSON(w, Envelope{Success: false, Message: "too many requests"}, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Caller is the authenticated account attached to the request context.
type Caller struct {
	ID   int64
	Role models.Role
	Kind models.Kind
}

// Authenticator resolves bearer tokens into loaded account records.
type Authenticator struct {
	tokens *auth.Tokens
	devs   repository.DeveloperRepo
	emps   repository.EmployerRepo
}

func NewAuthenticator(tokens *auth.Tokens, devs repository.DeveloperRepo, emps repository.EmployerRepo) *Authenticator {
	return &Authenticator{tokens: tokens, devs: devs, emps: emps}
}

// Require rejects requests without a valid token belonging to a live account.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := a.resolve(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional resolves the caller when a token is present but lets anonymous
// requests through. Used on public read endpoints that reveal more to owners.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if extractToken(r) == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx, err := a.resolve(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) resolve(r *http.Request) (context.Context, error) {
	tokenString := extractToken(r)
	if tokenString == "" {
		return nil, errUnauthorized("missing credentials")
	}

	claims, err := a.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	caller := Caller{ID: claims.SubjectID, Role: claims.Role, Kind: claims.Kind}

	// the account referenced by the token must still exist
	switch claims.Kind {
	case models.KindDeveloper:
		dev, err := a.devs.GetDeveloperByID(ctx, claims.SubjectID)
		if err != nil {
			return nil, err
		}
		if dev == nil {
			return nil, errUnauthorized("account no longer exists")
		}
		ctx = context.WithValue(ctx, ctxDeveloper, dev)
	case models.KindEmployer:
		emp, err := a.emps.GetEmployerByID(ctx, claims.SubjectID)
		if err != nil {
			return nil, err
		}
		if emp == nil {
			return nil, errUnauthorized("account no longer exists")
		}
		ctx = context.WithValue(ctx, ctxEmployer, emp)
	default:
		return nil, errUnauthorized("invalid token")
	}

	return context.WithValue(ctx, ctxCaller, caller), nil
}

// extractToken prefers the Authorization header over the token cookies.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
		return ""
	}
	for _, name := range []string{"token", "access_token"} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

// RequireRole gates a subtree to the listed roles.
func RequireRole(allowed ...models.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFrom(r.Context())
			if !ok {
				respondError(w, r, errUnauthorized("missing credentials"))
				return
			}
			for _, role := range allowed {
				if caller.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondError(w, r, errForbidden("insufficient role"))
		})
	}
}

func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(ctxCaller).(Caller)
	return c, ok
}

func developerFrom(ctx context.Context) (*models.Developer, bool) {
	d, ok := ctx.Value(ctxDeveloper).(*models.Developer)
	return d, ok
}

func employerFrom(ctx context.Context) (*models.Employer, bool) {
	e, ok := ctx.Value(ctxEmployer).(*models.Employer)
	return e, ok
}

// canActFor reports whether the caller may mutate the resource owned by
// (kind, ownerID): the owner itself or an admin.
func canActFor(c Caller, kind models.Kind, ownerID int64) bool {
	if c.Role == models.RoleAdmin {
		return true
	}
	return c.Kind == kind && c.ID == ownerID
}
