package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/ventas/pkg/cache"
	"github.com/shashiranjanraj/ventas/pkg/logger"
	"github.com/shashiranjanraj/ventas/pkg/response"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"

	// pendingTTL bounds how long a crashed request can hold its key.
	pendingTTL = time.Minute
)

// storedResponse is what the cache keeps per key. A pending entry marks a
// request that is still running.
type storedResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// captureWriter passes the response through and keeps a copy of it.
type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// Idempotency replays the first 2xx response for a repeated Idempotency-Key
// instead of running the handler again. Requests without the header pass
// through. A second request that arrives while the first is still running
// gets a 409. Non-2xx outcomes release the key so the client can retry.
func Idempotency(store cache.Store, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > 255 {
				response.ValidationError(w, map[string]string{IdempotencyHeader: "The Idempotency-Key must not exceed 255 characters."})
				return
			}

			ctx := r.Context()
			log := logger.WithCtx(ctx)
			cacheKey := "idempotency:" + r.Method + ":" + r.URL.Path + ":" + key

			var prev storedResponse
			hit, err := store.Get(ctx, cacheKey, &prev)
			if err != nil {
				log.Warn("idempotency lookup failed", "key", key, "error", err)
			}
			if hit {
				replay(w, prev)
				return
			}

			reserved, err := store.SetNX(ctx, cacheKey, storedResponse{Pending: true}, pendingTTL)
			if err != nil {
				// Without a working store the request still runs once.
				log.Warn("idempotency reserve failed", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !reserved {
				if hit, _ := store.Get(ctx, cacheKey, &prev); hit {
					replay(w, prev)
					return
				}
				response.Conflict(w, "A request with this Idempotency-Key is being processed.")
				return
			}

			cw := &captureWriter{ResponseWriter: w}
			completed := false
			defer func() {
				if !completed {
					_ = store.Del(context.WithoutCancel(ctx), cacheKey)
				}
			}()

			next.ServeHTTP(cw, r)

			if cw.status < 200 || cw.status >= 300 {
				return
			}
			completed = true
			rec := storedResponse{Status: cw.status, ContentType: cw.Header().Get("Content-Type"), Body: cw.body.Bytes()}
			if err := store.Set(context.WithoutCancel(ctx), cacheKey, rec, ttl); err != nil {
				log.Warn("idempotency store failed", "key", key, "error", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, prev storedResponse) {
	if prev.Pending {
		response.Conflict(w, "A request with this Idempotency-Key is being processed.")
		return
	}
	if prev.ContentType != "" {
		w.Header().Set("Content-Type", prev.ContentType)
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(prev.Status)
	_, _ = w.Write(prev.Body)
}
