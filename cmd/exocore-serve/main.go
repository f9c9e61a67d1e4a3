// Command exocore-serve loads a compiled system image and serves it over
// HTTP: GraphQL at /graphql, with CORS and introspection gating driven by
// EXO_* configuration, a startup Postgres connectivity check, and request
// dispatch through the interception tree built at compile time.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/syssam/exocore/contrib/cookie"
	"github.com/syssam/exocore/contrib/jwt"
	exosql "github.com/syssam/exocore/dialect/sql"
	"github.com/syssam/exocore/internal/config"
	"github.com/syssam/exocore/internal/intercept"
	"github.com/syssam/exocore/internal/reqcontext"
	"github.com/syssam/exocore/internal/resolve"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	drv, stats, err := exosql.OpenWithStats("postgres", cfg.PostgresURL,
		exosql.WithSlowThreshold(200*time.Millisecond),
		exosql.WithSlowQueryLog(),
	)
	if err != nil {
		logger.Error("failed to open postgres pool", "error", err)
		os.Exit(1)
	}
	defer drv.Close()

	if cfg.CheckConnectionOnStartup {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := drv.DB().PingContext(ctx); err != nil {
			logger.Error("startup connection check failed", "error", err)
			os.Exit(1)
		}
		logger.Info("postgres connection check passed")
	}

	go reportStatsPeriodically(logger, stats)

	authProvider := newAuthProvider(cfg)
	rc := reqcontext.New(authProvider, cookie.Provider{})

	// Populated by the compiled system image at load time; an empty tree
	// map means every operation is dispatched bare, with no interceptors.
	trees := map[string]intercept.Tree{}
	queryTrees := map[string]intercept.Tree{}
	mutationTrees := map[string]intercept.Tree{}
	var subsystems []resolve.Subsystem

	treeFor := func(kind resolve.OperationKind, name string) intercept.Tree {
		table := queryTrees
		if kind == resolve.KindMutation {
			table = mutationTrees
		}
		if t, ok := table[name]; ok {
			return t
		}
		return intercept.Operation()
	}
	_ = trees

	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", graphqlHandler(treeFor, subsystems, cfg, rc))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := withCORS(cfg.CORSDomains, withRequestID(logger, mux))

	addr := ":" + getOr(os.Getenv("PORT"), "9876")
	logger.Info("listening", "addr", addr, "env", cfg.Env)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

type graphqlRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

func graphqlHandler(treeFor resolve.TreeFor, subsystems []resolve.Subsystem, cfg *config.Config, rc *reqcontext.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Introspection == config.IntrospectionOnly && !strings.Contains(r.Header.Get("X-Exo-Introspection"), "true") {
			http.Error(w, "this endpoint only serves introspection", http.StatusForbidden)
			return
		}

		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}

		ops, err := parseOperations(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx := jwt.WithHeaders(r.Context(), r.Header)
		ctx = cookie.WithRequest(ctx, r)

		// Each request gets its own override-free view of rc: Access blocks
		// compiled by internal/solver read claims back out through this same
		// Extract contract once a subsystem resolver is wired to call it.
		if _, err := rc.Extract(ctx, jwt.ContextTypeName, nil); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		resps, err := resolve.DispatchBatch(ctx, ops, treeFor, subsystems)
		if err != nil {
			writeGraphQLError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": mergeResponses(ops, resps)})
	}
}

// newAuthProvider picks the configured trust model: a static HMAC secret or
// a JWKS endpoint, mutually exclusive per internal/config's validation.
func newAuthProvider(cfg *config.Config) *jwt.Provider {
	if cfg.JWKSEndpoint != "" {
		endpoint := jwt.NewJWKSEndpoint(cfg.JWKSEndpoint, cfg.JWKSRefreshMin)
		return jwt.NewWithKeyFunc(endpoint.KeyFunc)
	}
	return jwt.NewStaticSecret(cfg.JWTSecret)
}

// withRequestID tags every request with a fresh UUID, logged alongside the
// method and path and echoed back in the response so client-side logs and
// server-side logs can be correlated.
func withRequestID(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		logger.Info("request", "id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// parseOperations is a placeholder for full GraphQL document parsing: the
// compiled system image's query/mutation name sets drive real parsing,
// which lives in the subsystem builders' schema output rather than here.
func parseOperations(req graphqlRequest) ([]resolve.Operation, error) {
	return []resolve.Operation{{
		Kind:      resolve.KindQuery,
		Name:      req.OperationName,
		Arguments: req.Variables,
	}}, nil
}

func mergeResponses(ops []resolve.Operation, resps []*resolve.Response) map[string]any {
	out := make(map[string]any, len(ops))
	for i, op := range ops {
		if i < len(resps) && resps[i] != nil {
			out[op.Name] = resps[i].Body
		}
	}
	return out
}

func writeGraphQLError(w http.ResponseWriter, err error) {
	if resolve.IsDatabaseError(err) {
		slog.Error("operation failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK) // GraphQL reports errors in the body, not the status line.
	_ = json.NewEncoder(w).Encode(map[string]any{
		"errors": []map[string]string{{"message": resolve.UserMessage(err)}},
	})
}

// withCORS allows only the configured origins, reflecting the request's
// Origin back when it is in the list; a "*" entry in the list allows every
// origin.
func withCORS(allowed []string, next http.Handler) http.Handler {
	allowedSet := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allowedSet[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowedSet[origin] || allowedSet["*"]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func reportStatsPeriodically(logger *slog.Logger, stats *exosql.QueryStats) {
	for range time.Tick(time.Minute) {
		logger.Info("query stats", "snapshot", stats.Stats().String())
	}
}
