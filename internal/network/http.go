package network

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"github.com/jadermarques/Info-AI-Studio/internal/config"
	"github.com/jadermarques/Info-AI-Studio/internal/logger"
)

type HTTPClientConfig struct {
	ProxyURL            string
	Timeout             time.Duration
	DisableKeepAlives   bool
	MaxIdleConns        int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	ForceAttemptHTTP2   bool
	UseCookieJar        bool
}

// NewScraperHTTPClientConfig is tuned for page scraping: short timeout,
// shared cookie jar, few idle connections.
func NewScraperHTTPClientConfig(cfg config.HTTPConfig) HTTPClientConfig {
	return HTTPClientConfig{
		ProxyURL:            cfg.GetProxy(),
		Timeout:             25 * time.Second,
		MaxIdleConns:        10,
		DisableKeepAlives:   false,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
		UseCookieJar:        true,
	}
}

// NewProviderHTTPClientConfig is tuned for LLM providers, which can take
// considerably longer than a page fetch to answer.
func NewProviderHTTPClientConfig(cfg config.HTTPConfig) HTTPClientConfig {
	return HTTPClientConfig{
		ProxyURL:            cfg.GetProxy(),
		Timeout:             3 * time.Minute,
		MaxIdleConns:        100,
		DisableKeepAlives:   false,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
	}
}

func SetupHTTPClient(cfg HTTPClientConfig, log logger.Logger) *http.Client {
	transport := &http.Transport{
		ForceAttemptHTTP2:   cfg.ForceAttemptHTTP2,
		MaxIdleConns:        cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		DisableKeepAlives:   cfg.DisableKeepAlives,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
	}

	if cfg.ProxyURL != "" {
		if err := configureProxy(transport, cfg.ProxyURL, log); err != nil {
			log.WithError(err).Fatal("failed to configure proxy")
		}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
	if cfg.UseCookieJar {
		jar, _ := cookiejar.New(nil)
		client.Jar = jar
	}
	return client
}

func configureProxy(transport *http.Transport, proxyURL string, log logger.Logger) error {
	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("failed to parse proxy URL: %w", err)
	}

	switch parsedURL.Scheme {
	case "socks5":
		dialContext, err := createSOCKS5ProxyDialer(parsedURL)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.DialContext = dialContext
		log.Info(fmt.Sprintf("Proxy configured: %s", parsedURL.Redacted()))
	case "http", "https":
		transport.Proxy = http.ProxyURL(parsedURL)
		log.Info(fmt.Sprintf("Proxy configured: %s", parsedURL.Redacted()))
	default:
		return fmt.Errorf("unsupported proxy scheme: %s", parsedURL.Scheme)
	}

	return nil
}

func createSOCKS5ProxyDialer(proxyURL *url.URL) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	directDialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	proxyDialer, err := proxy.FromURL(proxyURL, directDialer)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy dialer: %w", err)
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return proxyDialer.Dial(network, addr)
	}, nil
}
