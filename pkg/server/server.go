// Package server serves a documentation tree, resolving hash bindings in
// each document as it is requested.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jlrickert/hashdoc/pkg/binding"
	"github.com/jlrickert/hashdoc/pkg/eventlog"
	"github.com/jlrickert/hashdoc/pkg/hashdoc"
	"github.com/jlrickert/hashdoc/pkg/log"
)

// RecentPath serves the recent resolution events as plain text.
const RecentPath = "/_hashdoc/recent"

type Server struct {
	root   string
	docs   *hashdoc.Hashdoc
	events *eventlog.Log
	logger *slog.Logger
	router *chi.Mux
}

// New builds a server for the documents under root. A nil events log gets
// the default capacity.
func New(logger *slog.Logger, root string, docs *hashdoc.Hashdoc, events *eventlog.Log) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if events == nil {
		events = eventlog.New(eventlog.DefaultCapacity)
	}
	s := &Server{
		root:   root,
		docs:   docs,
		events: events,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Get(RecentPath, s.handleRecent)
	r.Head(RecentPath, s.handleRecent)
	r.Get("/*", s.handleFile)
	r.Head("/*", s.handleFile)
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving documentation", "addr", addr, "root", s.root)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("stopping server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		lg := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		ctx := log.ContextWithLogger(r.Context(), lg)

		next.ServeHTTP(ww, r.WithContext(ctx))

		lg.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(s.events.String()))
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	urlPath := path.Clean("/" + chi.URLParam(r, "*"))
	name := filepath.Join(s.root, filepath.FromSlash(urlPath))

	rt := s.docs.Runtime
	info, err := rt.Stat(name, true)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if info.IsDir() {
		name = filepath.Join(name, "index.html")
		if info, err = rt.Stat(name, true); err != nil {
			http.NotFound(w, r)
			return
		}
	}

	if !s.docs.Config.HasExtension(name) {
		b, err := rt.ReadFile(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, name, info.ModTime(), bytes.NewReader(b))
		return
	}

	res, err := s.docs.RewriteFile(r.Context(), name, false)
	if err != nil {
		log.FromContext(r.Context()).Error("unable to render document", "path", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.record(urlPath, res.Report)

	ctype := mime.TypeByExtension(filepath.Ext(name))
	if binding.IsMarkdown(name) {
		ctype = "text/markdown; charset=utf-8"
	}
	if ctype == "" {
		ctype = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(res.Output)
}

func (s *Server) record(source string, report binding.Report) {
	now := time.Now()
	for _, o := range report.Outcomes {
		e := eventlog.Event{Time: now, Source: source, Key: o.Key}
		switch {
		case o.Err != nil:
			e.Message = "failed: " + o.Err.Error()
		case !o.Result.Found:
			e.Message = "missing from manifest"
		default:
			e.Message = "resolved " + o.Result.Value
		}
		s.events.Append(e)
	}
}
