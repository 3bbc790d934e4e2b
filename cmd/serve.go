package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/config"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/export"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/pipeline"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/store"
)

var (
	servePort       int
	serveSkipEnrich bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for triggering and browsing runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, "serve", serveSkipEnrich)
		if err != nil {
			return err
		}
		defer env.Close()

		api := newAPIServer(ctx, env.Store, env.Runner(), cfg.Sites, serveSkipEnrich)
		err = startServer(ctx, buildRouter(api), resolvePort(servePort, cfg.Server.Port))
		api.Wait()
		return err
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveSkipEnrich, "skip-enrich", false, "skip AI enrichment for runs started through the API")
	rootCmd.AddCommand(serveCmd)
}

// runner starts and executes pipeline runs.
type runner interface {
	Start(ctx context.Context, sites []model.SiteConfig) (*model.Run, error)
	Execute(ctx context.Context, run *model.Run, opts pipeline.Options) (*model.Run, error)
}

// apiServer serves the run API. Runs started through it execute on ctx,
// which outlives individual requests.
type apiServer struct {
	ctx        context.Context
	store      store.Store
	runner     runner
	sites      []model.SiteConfig
	skipEnrich bool
	wg         sync.WaitGroup
}

func newAPIServer(ctx context.Context, st store.Store, r runner, sites []model.SiteConfig, skipEnrich bool) *apiServer {
	return &apiServer{ctx: ctx, store: st, runner: r, sites: sites, skipEnrich: skipEnrich}
}

// Wait blocks until background runs have finished.
func (s *apiServer) Wait() {
	s.wg.Wait()
}

// buildRouter wires the API routes and middleware.
func buildRouter(s *apiServer) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.createRun)
		r.Get("/", s.listRuns)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getRun)
			r.Get("/articles", s.runArticles)
			r.Get("/export", s.exportRun)
		})
	})

	return r
}

// requestLogger logs each request with its status and latency.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// createRunRequest selects configured sites by root URL. An empty list
// crawls every configured site.
type createRunRequest struct {
	Sites      []string `json:"sites"`
	SkipEnrich bool     `json:"skip_enrich"`
}

// selectSites resolves root URLs against the configured sites. Unknown URLs
// are rejected so the API can never be pointed at arbitrary hosts.
func (s *apiServer) selectSites(roots []string) ([]model.SiteConfig, error) {
	if len(roots) == 0 {
		return s.sites, nil
	}
	byRoot := make(map[string]model.SiteConfig, len(s.sites))
	for _, site := range s.sites {
		byRoot[site.RootURL] = site
	}
	out := make([]model.SiteConfig, 0, len(roots))
	seen := make(map[string]bool, len(roots))
	for _, root := range roots {
		site, ok := byRoot[root]
		if !ok {
			return nil, eris.Errorf("site %q is not configured", root)
		}
		if seen[root] {
			continue
		}
		seen[root] = true
		out = append(out, site)
	}
	return out, nil
}

func (s *apiServer) createRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline not configured")
		return
	}

	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sites, err := s.selectSites(req.Sites)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := config.ValidateSites(sites); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.runner.Start(r.Context(), sites)
	if err != nil {
		zap.L().Error("api: start run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not start run")
		return
	}
	id, status := run.ID, run.Status

	opts := pipeline.Options{SkipEnrich: s.skipEnrich || req.SkipEnrich}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		done, err := s.runner.Execute(s.ctx, run, opts)
		if err != nil {
			zap.L().Error("api: run failed", zap.String("run_id", id), zap.Error(err))
			return
		}
		zap.L().Info("api: run complete",
			zap.String("run_id", id),
			zap.Int("articles", len(done.Result.Articles)),
		)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     id,
		"status": string(status),
	})
}

func (s *apiServer) listRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{Status: model.RunStatus(q.Get("status"))}

	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list runs")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *apiServer) getRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *apiServer) runArticles(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadResult(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, runOutput{
		RunID:      run.ID,
		Status:     run.Status,
		Categories: run.Result.Categories,
		Articles:   filterArticles(run.Result.Articles, q.Get("category"), q.Get("keyword")),
	})
}

func (s *apiServer) exportRun(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("format")
	if name == "" {
		name = string(export.FormatCSV)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, ok := s.loadResult(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	articles := filterArticles(run.Result.Articles, q.Get("category"), q.Get("keyword"))
	if err := export.Write(&buf, format, articles); err != nil {
		zap.L().Error("api: export failed", zap.String("run_id", run.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="eidos-%s.%s"`, truncateID(run.ID), format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// loadRun fetches the run named in the URL, writing 404 when it is unknown.
func (s *apiServer) loadRun(w http.ResponseWriter, r *http.Request) (*model.Run, bool) {
	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("run %s not found", id))
		return nil, false
	}
	if err != nil {
		zap.L().Error("api: get run failed", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load run")
		return nil, false
	}
	return run, true
}

// loadResult is loadRun for routes that need a finished result. Runs still
// in progress or without a result get 409.
func (s *apiServer) loadResult(w http.ResponseWriter, r *http.Request) (*model.Run, bool) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return nil, false
	}
	if run.Result == nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("run %s has no result (status %s)", run.ID, run.Status))
		return nil, false
	}
	return run, true
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, eris.Errorf("invalid integer %q", v)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// resolvePort prefers the flag value over the configured port.
func resolvePort(flagPort, cfgPort int) int {
	if flagPort != 0 {
		return flagPort
	}
	return cfgPort
}

// startServer serves handler on port until ctx is cancelled, then shuts
// down gracefully.
func startServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server listen")
	}
	return nil
}
