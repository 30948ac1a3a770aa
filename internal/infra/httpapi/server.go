package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"hr_contract_notifier/internal/domain/notification"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// EventQueue accepts lifecycle events without blocking.
type EventQueue interface {
	Enqueue(contractID int64, kind notification.EventKind) bool
}

// Pinger reports database reachability. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type eventResponse struct {
	Status     string `json:"status,omitempty"`
	ContractID int64  `json:"contract_id,omitempty"`
	Event      string `json:"event,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewHandler builds the internal HTTP surface:
//   - GET /healthz
//   - GET /metrics
//   - POST /contracts/{id}/events/{kind}
func NewHandler(queue EventQueue, db Pinger, logger *logrus.Entry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler(db))
	mux.HandleFunc("POST /contracts/{id}/events/{kind}", contractEventHandler(queue, logger))
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Database: "unchecked"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Database: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Database: "ok"})
	}
}

func contractEventHandler(queue EventQueue, logger *logrus.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, eventResponse{Error: "contract id must be a positive integer"})
			return
		}
		kind, err := notification.ParseLifecycleKind(r.PathValue("kind"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, eventResponse{Error: err.Error()})
			return
		}

		log := logger.WithFields(logrus.Fields{"contract_id": id, "event": kind})
		if !queue.Enqueue(id, kind) {
			log.Warn("Lifecycle event rejected, queue unavailable")
			writeJSON(w, http.StatusServiceUnavailable, eventResponse{Error: "notification queue is full"})
			return
		}
		log.Debug("Lifecycle event accepted")
		writeJSON(w, http.StatusAccepted, eventResponse{Status: "accepted", ContractID: id, Event: string(kind)})
	}
}

// Start serves handler on addr in a background goroutine and shuts the server
// down when ctx is cancelled.
func Start(ctx context.Context, addr string, handler http.Handler, logger *logrus.Entry) *http.Server {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.WithField("addr", addr).Info("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("HTTP server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("HTTP server shutdown error")
		} else {
			logger.Info("HTTP server stopped")
		}
	}()

	return server
}
