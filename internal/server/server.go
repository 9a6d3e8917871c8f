package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/saadjs/caltrack/internal/config"
	"github.com/saadjs/caltrack/internal/service"
)

const historyTolerance = 0.10

// Server exposes the day-load state as JSON for widgets and other local
// readers. It never writes to the store.
type Server struct {
	router *chi.Mux
	config config.ServerConfig
	db     *sql.DB
	store  *service.SettingsStore
	logger *slog.Logger
	now    func() time.Time
}

func New(database *sql.DB, store *service.SettingsStore, cfg config.ServerConfig, logger *slog.Logger, now func() time.Time) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	server := &Server{
		config: cfg,
		db:     database,
		store:  store,
		logger: logger,
		now:    now,
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(requestLogger(logger))
	router.Use(chimiddleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Get("/home", server.home)
		r.Get("/week", server.week)
		r.Get("/insights", server.insights)
		r.Get("/history", server.history)
		r.Get("/weight", server.weight)
	})

	server.router = router
	return server
}

func (server *Server) Handler() http.Handler {
	return server.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (server *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              server.config.Addr,
		Handler:           server.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		server.logger.Info("starting server", "address", server.config.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.logger.Info("stopping server")
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (server *Server) loadHome(w http.ResponseWriter, r *http.Request) (service.HomeState, bool) {
	state, err := service.ViewHome(r.Context(), server.db, server.store, server.logger, server.now())
	if err != nil {
		server.logger.Error("load home", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load today"})
		return service.HomeState{}, false
	}
	return state, true
}

func (server *Server) home(w http.ResponseWriter, r *http.Request) {
	state, ok := server.loadHome(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (server *Server) week(w http.ResponseWriter, r *http.Request) {
	state, ok := server.loadHome(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, state.Week)
}

func (server *Server) insights(w http.ResponseWriter, r *http.Request) {
	state, ok := server.loadHome(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, state.Insights)
}

// history defaults to the last seven days ending today.
func (server *Server) history(w http.ResponseWriter, r *http.Request) {
	now := server.now()
	to := now
	from := now.AddDate(0, 0, -6)
	var err error
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.ParseInLocation("2006-01-02", v, now.Location()); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to must be YYYY-MM-DD"})
			return
		}
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.ParseInLocation("2006-01-02", v, now.Location()); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from must be YYYY-MM-DD"})
			return
		}
	}
	report, err := service.HistoryRange(server.db, from, to, historyTolerance)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// requestLogger logs each request through slog once it completes.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}

type weightResponse struct {
	CurrentKg float64                `json:"current_weight_kg"`
	TargetKg  float64                `json:"target_weight_kg"`
	Trend     []service.WeightPoint  `json:"trend"`
	Changes   []service.WeightChange `json:"changes"`
}

func (server *Server) weight(w http.ResponseWriter, r *http.Request) {
	settings, err := server.store.Load()
	if err != nil {
		server.logger.Error("load settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load settings"})
		return
	}
	history, err := service.WeightHistory(server.db)
	if err != nil {
		server.logger.Error("load weight history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load weight history"})
		return
	}
	now := server.now()
	writeJSON(w, http.StatusOK, weightResponse{
		CurrentKg: settings.CurrentWeightKg,
		TargetKg:  settings.TargetWeightKg,
		Trend:     service.WeightTrend(history, now),
		Changes:   service.WeightChanges(history, now),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
