package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/kdwils/eth-faucet-web/faucet"
	"github.com/kdwils/eth-faucet-web/pkg/captcha"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel       string    `yaml:"logLevel" json:"logLevel"`
	TrustedProxies []string  `yaml:"trustedProxies" json:"trustedProxies"`
	Server         Server    `yaml:"server" json:"server"`
	Faucet         Faucet    `yaml:"faucet" json:"faucet"`
	Captcha        Captcha   `yaml:"captcha" json:"captcha"`
	Session        Session   `yaml:"session" json:"session"`
	UI             UI        `yaml:"ui" json:"ui"`
	RateLimit      RateLimit `yaml:"rateLimit" json:"rateLimit"`
}

type Server struct {
	HTTPPort       int      `yaml:"httpPort" json:"httpPort"`
	GRPCPort       int      `yaml:"grpcPort" json:"grpcPort"`
	Scheme         string   `yaml:"scheme" json:"scheme"`
	AllowedOrigins []string `yaml:"allowedOrigins" json:"allowedOrigins"`
}

type Faucet struct {
	APIEndpoint string        `yaml:"apiEndpoint" json:"apiEndpoint"`
	ExplorerURL string        `yaml:"explorerURL" json:"explorerURL"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	AmountUnit  string        `yaml:"amountUnit" json:"amountUnit"`
	Currency    string        `yaml:"currency" json:"currency"`
}

type Captcha struct {
	Provider    string        `yaml:"provider" json:"provider"`
	SiteKey     string        `yaml:"siteKey" json:"siteKey"`
	CheckScript bool          `yaml:"checkScript" json:"checkScript"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	// Token is a fixed response used by the request command, for test site keys.
	Token string `yaml:"token" json:"token"`
}

type Session struct {
	SigningKey   string        `yaml:"signingKey" json:"signingKey"`
	Duration     time.Duration `yaml:"duration" json:"duration"`
	CookieName   string        `yaml:"cookieName" json:"cookieName"`
	CookieDomain string        `yaml:"cookieDomain" json:"cookieDomain"`
}

type UI struct {
	Title                string        `yaml:"title" json:"title"`
	RepositoryURL        string        `yaml:"repositoryURL" json:"repositoryURL"`
	NotificationDuration time.Duration `yaml:"notificationDuration" json:"notificationDuration"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps" json:"rps"`
	Burst int     `yaml:"burst" json:"burst"`
}

func New(v *viper.Viper) (Config, error) {
	c := Config{}
	if v == nil {
		return c, errors.New("viper not initialized")
	}
	if v.ConfigFileUsed() != "" {
		err := v.ReadInConfig()
		if err != nil {
			return c, err
		}
	}
	err := v.Unmarshal(&c)
	return c, err
}

// Validate checks the settings every command relies on.
func (c Config) Validate() error {
	u, err := url.Parse(c.Faucet.APIEndpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("faucet.apiEndpoint must be an http(s) url, got %q", c.Faucet.APIEndpoint)
	}
	if _, err := captcha.ProviderFor(c.Captcha.Provider); err != nil {
		return err
	}
	if strings.TrimSpace(c.Captcha.SiteKey) == "" {
		return errors.New("captcha.siteKey is required")
	}
	if c.Session.Duration <= 0 {
		return fmt.Errorf("session.duration must be positive, got %s", c.Session.Duration)
	}
	switch strings.ToLower(c.Faucet.AmountUnit) {
	case "", faucet.UnitEther, faucet.UnitWei:
	default:
		return fmt.Errorf("faucet.amountUnit must be %q or %q, got %q", faucet.UnitEther, faucet.UnitWei, c.Faucet.AmountUnit)
	}
	if _, err := c.ParseTrustedProxies(); err != nil {
		return err
	}
	return nil
}

// Environment is the static view of the config handed to the service layer.
func (c Config) Environment() faucet.Environment {
	return faucet.Environment{
		APIEndpoint:    c.Faucet.APIEndpoint,
		CaptchaSiteKey: c.Captcha.SiteKey,
	}
}

// ParseTrustedProxies accepts CIDRs and bare IPs.
func (c Config) ParseTrustedProxies() ([]*net.IPNet, error) {
	proxies := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, p := range c.TrustedProxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", p)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			p = fmt.Sprintf("%s/%d", p, bits)
		}
		_, network, err := net.ParseCIDR(p)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		proxies = append(proxies, network)
	}
	return proxies, nil
}
