package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/specialistvlad/gobatis/internal/ctxlog"
	"github.com/specialistvlad/gobatis/internal/mapping"
	"github.com/specialistvlad/gobatis/internal/typealias"
)

type statementInfo struct {
	ID         string   `json:"id"`
	Command    string   `json:"command"`
	SQL        string   `json:"sql"`
	Source     string   `json:"source"`
	ResultMaps []string `json:"result_maps,omitempty"`
	Cache      string   `json:"cache,omitempty"`
	UseCache   bool     `json:"use_cache"`
	FlushCache bool     `json:"flush_cache"`
	Timeout    string   `json:"timeout,omitempty"`
}

func newStatementInfo(ms *mapping.MappedStatement) statementInfo {
	info := statementInfo{
		ID:         ms.ID,
		Command:    ms.CommandType.String(),
		SQL:        ms.SQL,
		Source:     ms.Source.String(),
		UseCache:   ms.UseCache,
		FlushCache: ms.FlushCache,
	}
	for _, rm := range ms.ResultMaps {
		info.ResultMaps = append(info.ResultMaps, rm.ID)
	}
	if ms.Cache != nil {
		info.Cache = ms.Cache.ID()
	}
	if ms.Timeout > 0 {
		info.Timeout = ms.Timeout.String()
	}
	return info
}

// Handler returns the inspect server's routes.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.logRequest)

	r.Get("/health", a.healthHandler)
	r.Get("/aliases", a.aliasesHandler)
	r.Get("/mappers", a.mappersHandler)
	r.Route("/statements", func(r chi.Router) {
		r.Get("/", a.statementsHandler)
		r.Get("/{id}", a.statementHandler)
	})
	return r
}

func (a *App) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.logger.Debug("Inspect endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	if a.cfg.Environment != nil && a.cfg.Environment.DB != nil {
		if err := a.cfg.Environment.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) aliasesHandler(w http.ResponseWriter, _ *http.Request) {
	aliases := a.cfg.Aliases.Aliases()
	out := make(map[string]string, len(aliases))
	for alias, t := range aliases {
		out[alias] = typealias.QualifiedName(t)
	}
	a.writeJSON(w, http.StatusOK, out)
}

func (a *App) statementsHandler(w http.ResponseWriter, _ *http.Request) {
	statements := a.cfg.MappedStatements()
	out := make([]statementInfo, 0, len(statements))
	for _, ms := range statements {
		out = append(out, newStatementInfo(ms))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	a.writeJSON(w, http.StatusOK, out)
}

func (a *App) statementHandler(w http.ResponseWriter, r *http.Request) {
	ms, err := a.cfg.MappedStatement(chi.URLParam(r, "id"))
	if err != nil {
		a.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	a.writeJSON(w, http.StatusOK, newStatementInfo(ms))
}

func (a *App) mappersHandler(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, a.mappers.Mappers())
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("Failed to encode inspect response.", "error", err)
	}
}

// startInspectServer runs the inspect server in the background.
func (a *App) startInspectServer(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	addr := fmt.Sprintf(":%d", a.config.HTTPPort)
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Inspect server starting.", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ErrServerClosed is the normal result of a graceful shutdown.
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Inspect server failed unexpectedly.", "error", err)
		}
	}()
}

func (a *App) closeInspectServer(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if a.httpServer == nil {
		logger.Debug("Inspect server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	logger.Info("Shutting down inspect server.")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Inspect server shutdown failed.", "error", err)
		return err
	}
	a.httpServer = nil
	return nil
}
