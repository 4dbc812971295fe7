package dummy

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type ServerConfig struct {
	Port int
}

// Handler serves stand-ins for the connectivity check endpoint.
func Handler() http.Handler {
	mux := http.NewServeMux()

	// 1. Connectivity check: empty 204, like the real endpoint
	mux.HandleFunc("/generate_204", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// 2. Slow check (1s-2s) - Good for testing connect timeouts
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		jitter := time.Duration(rand.Intn(1000)+1000) * time.Millisecond
		select {
		case <-time.After(jitter):
		case <-r.Context().Done():
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// 3. Reset: drops the connection without a response
	mux.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if conn, _, err := hj.Hijack(); err == nil {
			conn.Close()
		}
	})

	// 4. Flaky check (20% reset)
	mux.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		if rand.Float32() < 0.2 {
			if conn, _, err := w.(http.Hijacker).Hijack(); err == nil {
				conn.Close()
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

// Start serves Handler on cfg.Port in the background.
func Start(cfg ServerConfig, log *zap.Logger) *http.Server {
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("dummy server running",
		zap.String("url", "http://localhost"+addr),
		zap.Strings("endpoints", []string{"/generate_204", "/slow", "/reset", "/flaky"}))

	server := &http.Server{
		Addr:              addr,
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("dummy server failed", zap.Error(err))
		}
	}()
	return server
}
