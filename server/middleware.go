package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/kdwils/eth-faucet-web/logger"
	"github.com/kdwils/eth-faucet-web/pkg/cache"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
)

func (s *Server) LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := s.logger.With("method", r.Method, "path", r.URL.Path, "ip", ExtractRealIP(r.RemoteAddr, r.Header, s.trustedProxies))
		ctx := logger.WithContext(r.Context(), log)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggerInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	log := s.logger.With("grpc.method", info.FullMethod)
	ctx = logger.WithContext(ctx, log)
	return handler(ctx, req)
}

type RateLimiter struct {
	visitors       *cache.Cache[string, *rate.Limiter]
	rate           rate.Limit
	burst          int
	ip             func(ip string, headers map[string][]string, trustedProxies []*net.IPNet) string
	trustedProxies []*net.IPNet
}

// NewRateLimiter allows r requests per second per client with bursts of b.
// Clients whose bucket has fully refilled are forgotten on each sweep.
func NewRateLimiter(r rate.Limit, b int, opts ...RateLimiterOpt) *RateLimiter {
	rl := &RateLimiter{
		rate:  r,
		burst: b,
	}
	rl.visitors = cache.New[string, *rate.Limiter](
		cache.WithCleanup[string, *rate.Limiter](time.Minute, func(_ string, l *rate.Limiter) bool {
			return l.Tokens() >= float64(rl.burst)
		}),
	)

	for _, opt := range opts {
		opt(rl)
	}

	return rl
}

type RateLimiterOpt func(r *RateLimiter)

func WithTrustedProxies(proxies []*net.IPNet) RateLimiterOpt {
	return func(r *RateLimiter) {
		r.trustedProxies = proxies
	}
}

func WithRealIp(ip func(ip string, headers map[string][]string, trustedProxies []*net.IPNet) string) RateLimiterOpt {
	return func(r *RateLimiter) {
		r.ip = ip
	}
}

// Start evicts idle clients until ctx is done.
func (rl *RateLimiter) Start(ctx context.Context) {
	rl.visitors.StartCleanup(ctx)
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	return rl.visitors.GetOrSet(key, func() *rate.Limiter {
		return rate.NewLimiter(rl.rate, rl.burst)
	})
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if rl.ip != nil {
			ip = rl.ip(r.RemoteAddr, r.Header, rl.trustedProxies)
		}

		limiter := rl.getLimiter(ip)
		if !limiter.Allow() {
			logger.FromContext(r.Context()).Warn("rate limit exceeded", "ip", ip)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
