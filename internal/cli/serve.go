package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/pkg/buildinfo"
	"github.com/matzehuels/modelgraph/pkg/cache"
	mgerrors "github.com/matzehuels/modelgraph/pkg/errors"
	pkgio "github.com/matzehuels/modelgraph/pkg/io"
	"github.com/matzehuels/modelgraph/pkg/observability"
	"github.com/matzehuels/modelgraph/pkg/pipeline"
)

const (
	headerRequestID = "X-Request-ID"
	headerCache     = "X-Cache"

	// maxBodyBytes bounds an uploaded description document.
	maxBodyBytes = 1 << 20

	defaultAddr           = ":8080"
	defaultRequestTimeout = 30 * time.Second
	defaultKeyPrefix      = appName + ":"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string        // listen address
	redisURL  string        // redis:// URL; empty means in-memory LRU
	cacheSize int           // LRU entry limit
	timeout   time.Duration // per-request timeout
}

// serveCommand creates the serve command exposing the conversion over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:      defaultAddr,
		cacheSize: cache.DefaultLRUSize,
		timeout:   defaultRequestTimeout,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve model graph rendering over HTTP",
		Long: `Start an HTTP server that converts model descriptions to diagrams.

Endpoints:
  POST /render?format=svg&channels=3   body: YAML, TOML or JSON description
  POST /inspect?channels=3             returns the interpreted graph as JSON
  GET  /healthz

The document encoding is taken from ?input= or the Content-Type header and
defaults to YAML. Rendered artifacts are cached in memory, or in Redis when
--redis is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for a shared artifact cache (e.g. redis://localhost:6379/0)")
	cmd.Flags().IntVar(&opts.cacheSize, "cache-size", opts.cacheSize, "in-memory cache entries (ignored with --redis)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	store, err := newServeCache(ctx, opts)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, defaultKeyPrefix), logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newServer(runner, logger, opts.timeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	printSuccess("Listening on %s", opts.addr)
	if opts.redisURL != "" {
		printDetail("cache: redis")
	} else {
		printDetail("cache: in-memory (%d entries)", opts.cacheSize)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func newServeCache(ctx context.Context, opts serveOpts) (cache.Cache, error) {
	if opts.redisURL != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{URL: opts.redisURL})
	}
	return cache.NewLRUCache(opts.cacheSize)
}

// server handles the HTTP API.
type server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// newServer builds the router.
func newServer(runner *pipeline.Runner, logger *log.Logger, timeout time.Duration) http.Handler {
	s := &server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(observe)
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Post("/inspect", s.handleInspect)
	return r
}

type ctxRequestID struct{}

// requestID tags every request and response with a UUID, reusing a valid
// incoming X-Request-ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		ctx := context.WithValue(r.Context(), ctxRequestID{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestID{}).(string)
	return id
}

// observe reports requests and responses to the HTTP hooks.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path, requestIDFrom(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Format = r.URL.Query().Get("format")
	opts.Refresh = r.URL.Query().Get("refresh") == "true"

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType())
	if result.CacheHit {
		w.Header().Set(headerCache, "hit")
	} else {
		w.Header().Set(headerCache, "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifact)
}

func (s *server) handleInspect(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	_, res, err := pipeline.Interpret(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = pkgio.WriteJSON(res, w)
}

// options reads the body and the shared query parameters.
func (s *server) options(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{Logger: s.logger.With("request_id", requestIDFrom(r.Context()))}

	if ch := q.Get("channels"); ch != "" {
		n, err := strconv.Atoi(ch)
		if err != nil {
			return opts, mgerrors.New(mgerrors.ErrCodeInvalidInput, "channels must be an integer, got %q", ch)
		}
		opts.InputChannels = n
	}

	docFormat := q.Get("input")
	if docFormat == "" {
		docFormat = r.Header.Get("Content-Type")
	}
	if docFormat != "" {
		f, ok := pkgio.ParseFormat(docFormat)
		if !ok && q.Get("input") != "" {
			return opts, mgerrors.New(mgerrors.ErrCodeInvalidFormat, "unsupported document format: %q", docFormat)
		}
		opts.DocFormat = f
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return opts, errBodyTooLarge
		}
		return opts, mgerrors.Wrap(mgerrors.ErrCodeInvalidInput, err, "read body")
	}
	opts.Source = body
	return opts, nil
}

var errBodyTooLarge = mgerrors.New(mgerrors.ErrCodeInvalidInput, "description exceeds %d bytes", maxBodyBytes)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", requestIDFrom(r.Context()))
	}
	writeJSON(w, status, errorResponse{
		Error:     mgerrors.UserMessage(err),
		Code:      string(mgerrors.GetCode(err)),
		RequestID: requestIDFrom(r.Context()),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	if err == errBodyTooLarge {
		return http.StatusRequestEntityTooLarge
	}
	switch mgerrors.GetCode(err) {
	case mgerrors.ErrCodeInvalidInput, mgerrors.ErrCodeInvalidConfig, mgerrors.ErrCodeInvalidFormat, mgerrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case mgerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case mgerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintln(w, `{"error":"encode response"}`)
	}
}
