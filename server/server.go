package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/kdwils/eth-faucet-web/faucet"
	"github.com/kdwils/eth-faucet-web/form"
	"github.com/kdwils/eth-faucet-web/logger"
	"github.com/kdwils/eth-faucet-web/metrics"
	"github.com/kdwils/eth-faucet-web/pkg/captcha"
	"github.com/kdwils/eth-faucet-web/template"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const defaultSubmitTimeout = 30 * time.Second

// Metrics is what the server records and exposes on /metrics.
type Metrics interface {
	metrics.Metricer
	Registry() *prometheus.Registry
}

type Config struct {
	HTTPPort       int
	GRPCPort       int
	AllowedOrigins []string
	TrustedProxies []*net.IPNet
	Title          string
	RepositoryURL  string
	ExplorerURL    string
	// SubmitTimeout bounds one submission, independent of the visitor's connection.
	SubmitTimeout time.Duration
}

type Server struct {
	logger         *slog.Logger
	sessions       *Sessions
	templates      *template.Store
	widget         *captcha.Widget
	rateLimiter    *RateLimiter
	metrics        Metrics
	config         Config
	trustedProxies []*net.IPNet
}

func New(logger *slog.Logger, cfg Config, sessions *Sessions, templateStore *template.Store, widget *captcha.Widget, rl *RateLimiter, m Metrics) *Server {
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = defaultSubmitTimeout
	}
	return &Server{
		logger:         logger,
		sessions:       sessions,
		templates:      templateStore,
		widget:         widget,
		rateLimiter:    rl,
		metrics:        m,
		config:         cfg,
		trustedProxies: cfg.TrustedProxies,
	}
}

// ServeDual starts the HTTP server and, when a gRPC port is configured, the
// gRPC health server.
func (s *Server) ServeDual(ctx context.Context) error {
	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	if s.sessions != nil {
		s.sessions.Start(ctx)
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Start(ctx)
	}

	if s.config.GRPCPort != 0 {
		wg.Go(func() {
			s.logger.Info("starting gRPC server", "port", s.config.GRPCPort)
			if err := s.serveGRPC(ctx, s.config.GRPCPort); err != nil {
				errChan <- fmt.Errorf("gRPC server error: %w", err)
			}
		})
	}

	wg.Go(func() {
		s.logger.Info("starting http server", "port", s.config.HTTPPort)
		if err := s.serveHTTP(ctx, s.config.HTTPPort); err != nil {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	})

	go func() {
		wg.Wait()
		close(errChan)
	}()

	if s.metrics != nil {
		s.metrics.RecordUp()
	}

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) serveGRPC(ctx context.Context, port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port %d: %v", port, err)
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(s.loggerInterceptor),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	go s.watchReadiness(ctx, healthServer)

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down gRPC server...")
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		s.logger.Info("gRPC server shutdown complete")
	}()

	s.logger.Info("grpc serving", "addr", lis.Addr().String())
	return grpcServer.Serve(lis)
}

// watchReadiness reports NOT_SERVING until the captcha widget is ready.
func (s *Server) watchReadiness(ctx context.Context, hs *health.Server) {
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	select {
	case <-s.widget.Ready():
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	case <-ctx.Done():
	}
}

// Handler builds the HTTP routes with their middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex()).Methods(http.MethodGet)
	r.HandleFunc("/request", s.handleRequest()).Methods(http.MethodPost)
	r.HandleFunc("/api/state", s.handleState()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.Healthz()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.Readyz()).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.Use(s.LoggerMiddleware)

	handler := handlers.CORS(s.corsOptions()...)(r)

	if s.rateLimiter != nil {
		handler = s.rateLimiter.Middleware(handler)
	}

	return handler
}

// corsOptions only allows credentials, and with them the session cookie, for
// explicitly configured origins. Browsers refuse credentials with a wildcard.
func (s *Server) corsOptions() []handlers.CORSOption {
	opts := []handlers.CORSOption{
		handlers.AllowedMethods([]string{http.MethodPost, http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	}
	if len(s.config.AllowedOrigins) == 0 {
		return append(opts, handlers.AllowedOrigins([]string{"*"}))
	}
	return append(opts, handlers.AllowedOrigins(s.config.AllowedOrigins), handlers.AllowCredentials())
}

func (s *Server) serveHTTP(ctx context.Context, port int) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("context canceled: terminating http server")
		httpServer.Shutdown(context.Background())
	}()

	s.logger.Info("http serving", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve http: %v", err)
	}
	return nil
}

func (s *Server) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		f, err := s.sessions.Form(w, r)
		if err != nil {
			log.Error("failed to start session", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		if err := s.templates.RenderFaucet(w, s.pageData(f.Consume())); err != nil {
			log.Error("failed to render faucet page", "error", err)
		}
	}
}

func (s *Server) handleRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		if err := r.ParseForm(); err != nil {
			log.Error("failed to parse form data", "error", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		f, err := s.sessions.Form(w, r)
		if err != nil {
			log.Error("failed to start session", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		// The submission outlives the visitor's connection: funds may already
		// be on their way when the browser gives up.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.config.SubmitTimeout)
		defer cancel()
		ctx = captcha.WithResponse(ctx, r.FormValue("captchaResponse"))

		_, err = f.Submit(ctx, r.FormValue("address"))
		if err != nil {
			log.Info("submission did not fund", "error", err, "kind", faucet.ErrorKind(err).String())
		}

		if !wantsJSON(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		writeJSON(w, r, submitStatus(err), f.Consume())
	}
}

func (s *Server) handleState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := s.sessions.Form(w, r)
		if err != nil {
			logger.FromContext(r.Context()).Error("failed to start session", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, r, http.StatusOK, f.State())
	}
}

func (s *Server) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

// Readyz fails until the captcha widget is ready.
func (s *Server) Readyz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := s.widget.Status()
		if status != captcha.StatusReady {
			http.Error(w, "captcha "+status.String(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) pageData(state form.State) template.FaucetPageData {
	data := template.FaucetPageData{
		Title:         s.config.Title,
		RepositoryURL: s.config.RepositoryURL,
		Captcha:       s.widget.Injection(),
		State:         state,
		ActionURL:     "/request",
		AmountText:    state.AmountText,
	}
	if state.Response != nil {
		data.ExplorerLink = faucet.TransactionURL(s.config.ExplorerURL, state.Response.TransactionHash)
	}
	return data
}

func submitStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, form.ErrAddressRequired):
		return http.StatusBadRequest
	case errors.Is(err, form.ErrBusy):
		return http.StatusConflict
	}

	switch faucet.ErrorKind(err) {
	case faucet.KindCaptcha:
		return http.StatusForbidden
	case faucet.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to write json response", "error", err)
	}
}
