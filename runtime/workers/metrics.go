package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// MetricsWorker serves the Prometheus endpoint until the context is canceled.
type MetricsWorker struct {
	log     *slog.Logger
	addr    string
	handler http.Handler
}

func NewMetricsWorker(log *slog.Logger, addr string, handler http.Handler) *MetricsWorker {
	return &MetricsWorker{log: log, addr: addr, handler: handler}
}

func (w *MetricsWorker) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", w.handler)
	server := &http.Server{
		Addr:              w.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		w.log.Info("Metrics endpoint available", "url", "http://"+w.addr+"/metrics")
		errChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
