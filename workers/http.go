package workers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rootledger/workers/handlers"
)

func NewRouter(api *handlers.API, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Options("/*", CORSHeaders)

	r.Get("/state", api.State)
	r.Get("/health", handlers.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/accounts/{token}/{holder}", api.Account)
	r.Get("/tokens/{token}", api.Token)
	r.Get("/locked/{token}", api.Locked)
	r.Get("/transfers/{id}", api.Transfer)
	r.Get("/xctransfers", api.CrossChainTransfers)
	r.Get("/xctransfers/{id}", api.CrossChainTransfer)

	return r
}

// Worker_HTTP serves until ctx is done, then shuts down and sets WorkerShutdown
func Worker_HTTP(ctx context.Context, listen string, handler http.Handler, logger *zap.Logger) error {
	logger = logger.Named("http")
	logger.Info("starting HTTP service", zap.String("listen", listen))

	server := &http.Server{
		Addr:              listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()
	logger.Info("HTTP service started")

	// send signal to other workers to exit
	defer WorkerShutdown.Store(true)

	select {
	case err := <-errs:
		if err != nil {
			logger.Error("error listening", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("HTTP service stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP service shutdown error", zap.Error(err))
		return err
	}
	logger.Info("HTTP service shutdown normal")
	return nil
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)))
		})
	}
}

func CORSHeaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Origin, X-Requested-With")
}
