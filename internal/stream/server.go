package stream

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Handler returns a mux serving the WebSocket feed at /ws.
func Handler(h *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(h, w, r)
	})
	return mux
}

// Serve runs the hub and an HTTP server on addr until ctx is done.
func Serve(ctx context.Context, addr string, h *Hub) error {
	go h.Run()

	srv := &http.Server{Addr: addr, Handler: Handler(h)}
	errCh := make(chan error, 1)
	go func() {
		h.log.WithField("addr", addr).Info("stream server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		h.Stop()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		h.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
