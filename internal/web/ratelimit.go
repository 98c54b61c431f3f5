package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// rateLimit allows limit requests per period and client IP. Each call gets
// its own counter store.
func (s *Server) rateLimit(limit int, period time.Duration) func(http.Handler) http.Handler {
	instance := limiter.New(memory.NewStore(), limiter.Rate{
		Period: period,
		Limit:  int64(limit),
	})

	mw := stdlib.NewMiddleware(instance,
		stdlib.WithKeyGetter(clientIP),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			s.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			s.respondError(w, r, fmt.Errorf("rate limiter: %w", err), http.StatusInternalServerError)
		}),
	)
	return mw.Handler
}
