package cmd

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kdwils/eth-faucet-web/config"
	"github.com/kdwils/eth-faucet-web/faucet"
	"github.com/kdwils/eth-faucet-web/form"
	"github.com/kdwils/eth-faucet-web/logger"
	"github.com/kdwils/eth-faucet-web/metrics"
	"github.com/kdwils/eth-faucet-web/pkg/captcha"
	"github.com/kdwils/eth-faucet-web/pkg/remote"
	"github.com/kdwils/eth-faucet-web/pkg/session"
	"github.com/kdwils/eth-faucet-web/server"
	"github.com/kdwils/eth-faucet-web/template"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

const widgetRetryInterval = 5 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve the faucet web page",
	Long:  `serve the faucet web page, the health endpoints and metrics`,
	Run: func(cmd *cobra.Command, args []string) {
		c, err := config.New(viper.GetViper())
		if err != nil {
			log.Fatal(err)
		}
		if err := c.Validate(); err != nil {
			log.Fatal(err)
		}

		slogger := logger.New(os.Stdout, c.LogLevel)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logger.WithContext(ctx, slogger)

		m := metrics.NewMetrics()
		m.RecordInfo(version)

		provider, err := captcha.ProviderFor(c.Captcha.Provider)
		if err != nil {
			log.Fatal(err)
		}

		widgetOpts := []captcha.Option{captcha.WithHTTPClient(&http.Client{Timeout: c.Captcha.Timeout})}
		if !c.Captcha.CheckScript {
			widgetOpts = append(widgetOpts, captcha.WithoutScriptCheck())
		}
		widget := captcha.NewWidget(provider, c.Captcha.SiteKey, captcha.BrowserSource{}, widgetOpts...)
		go loadWidget(ctx, widget, m)

		api := remote.New(&http.Client{Timeout: c.Faucet.Timeout})
		service := faucet.NewService(c.Environment(), widget, api, faucet.WithMetrics(m))

		formatAmount := func(a faucet.Amount) string {
			return faucet.FormatAmount(a, c.Faucet.AmountUnit, c.Faucet.Currency)
		}

		key, err := signingKey(c.Session.SigningKey, slogger)
		if err != nil {
			log.Fatal(err)
		}
		issuer := session.NewIssuer(key, c.Session.Duration,
			session.WithCookieName(c.Session.CookieName),
			session.WithCookieDomain(c.Session.CookieDomain),
			session.WithSecureCookie(c.Server.Scheme == "https"),
		)
		sessions := server.NewSessions(issuer, func() *form.Form {
			return form.New(service,
				form.WithNotificationDuration(c.UI.NotificationDuration),
				form.WithAmountFormat(formatAmount),
				form.WithMetrics(m),
			)
		})

		templateStore, err := template.NewStore()
		if err != nil {
			log.Fatal(err)
		}

		trustedProxies, err := c.ParseTrustedProxies()
		if err != nil {
			log.Fatal(err)
		}

		rateLimiter := server.NewRateLimiter(rate.Limit(c.RateLimit.RPS), c.RateLimit.Burst, server.WithTrustedProxies(trustedProxies), server.WithRealIp(server.ExtractRealIP))

		srv := server.New(slogger, server.Config{
			HTTPPort:       c.Server.HTTPPort,
			GRPCPort:       c.Server.GRPCPort,
			AllowedOrigins: c.Server.AllowedOrigins,
			TrustedProxies: trustedProxies,
			Title:          c.UI.Title,
			RepositoryURL:  c.UI.RepositoryURL,
			ExplorerURL:    c.Faucet.ExplorerURL,
			SubmitTimeout:  c.Faucet.Timeout,
		}, sessions, templateStore, widget, rateLimiter, m)

		if err := srv.ServeDual(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal(err)
		}
	},
}

// loadWidget retries until the captcha script is reachable or ctx is done.
func loadWidget(ctx context.Context, widget *captcha.Widget, m metrics.Metricer) {
	log := logger.FromContext(ctx)
	ticker := time.NewTicker(widgetRetryInterval)
	defer ticker.Stop()

	for {
		err := widget.Load(ctx)
		if err == nil {
			m.RecordCaptchaReady(true)
			return
		}
		log.Warn("captcha script not loaded, retrying", "error", err, "retry_in", widgetRetryInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func signingKey(configured string, log *slog.Logger) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}

	log.Warn("no session signing key configured, generating one; sessions will not survive a restart")
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
