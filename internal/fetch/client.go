// Package fetch implements the HTTP collaborator that submits the PAID
// search form and returns the raw results page.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Config holds the transport settings for the search client.
type Config struct {
	SearchURL   string
	UserAgent   string
	Timeout     time.Duration
	InsecureTLS bool
}

// Client posts the search form through a Colly collector. The upstream site
// runs an outdated TLS stack (weak DH parameters, broken chain) that modern
// defaults reject, so the transport optionally lowers the floor to match.
type Client struct {
	baseCollector *colly.Collector
	searchURL     string
	logger        *zap.Logger
}

// NewClient constructs a configured search client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.SearchURL == "" {
		return nil, fmt.Errorf("search url is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base := colly.NewCollector(colly.UserAgent(cfg.UserAgent))
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSClientConfig:       tlsConfig(cfg.InsecureTLS),
		MaxIdleConns:          8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
	})
	base.SetRequestTimeout(cfg.Timeout)

	return &Client{
		baseCollector: base,
		searchURL:     cfg.SearchURL,
		logger:        logger,
	}, nil
}

// tlsConfig builds a legacy-compatible TLS configuration when insecure mode
// is on.
func tlsConfig(insecure bool) *tls.Config {
	if !insecure {
		return &tls.Config{MinVersion: tls.VersionTLS12}
	}
	// #nosec G402 -- the upstream presents a broken certificate chain and
	// weak DH parameters; accepting them is the point of this client.
	return &tls.Config{
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS10,
		CipherSuites: []uint16{
			tls.TLS_AES_128_GCM_SHA256,
			tls.TLS_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA,
			tls.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
			tls.TLS_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_RSA_WITH_AES_128_CBC_SHA,
			tls.TLS_RSA_WITH_AES_256_CBC_SHA,
		},
	}
}

// FetchResults submits the search form for one category code and returns the
// raw response body, untransformed.
func (c *Client) FetchResults(ctx context.Context, searchType string) (string, error) {
	collector := c.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		if r.StatusCode != http.StatusOK {
			send(fetchResult{err: fmt.Errorf("unexpected status %d", r.StatusCode)})
			return
		}
		send(fetchResult{body: string(r.Body)})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		if r != nil && r.StatusCode != 0 {
			err = fmt.Errorf("http status %d: %w", r.StatusCode, err)
		}
		send(fetchResult{err: err})
	})

	form := map[string]string{
		"FirstName":  "",
		"LastName":   "",
		"SearchType": searchType,
	}
	c.logger.Debug("Submitting search", zap.String("search_type", searchType))
	if err := collector.Post(c.searchURL, form); err != nil {
		return "", err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return res.body, res.err
	default:
		return "", errors.New("search produced no result")
	}
}

type fetchResult struct {
	body string
	err  error
}
