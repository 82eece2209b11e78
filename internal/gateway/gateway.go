// Package gateway is the client side of the catalog backends: the primary
// data/scraping service and the AI generation service. Every call is a
// single request/response exchange that is checked, normalized and either
// returned or reported as a *RemoteError.
package gateway

import (
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config carries the two base URLs and transport settings. It is resolved
// once at startup and never mutated.
type Config struct {
	APIURL   string
	AIAPIURL string // empty means APIURL

	// Timeout bounds a whole exchange; zero leaves it to the caller's context.
	Timeout time.Duration
	// RequestsPerSecond paces outgoing calls; zero disables pacing.
	RequestsPerSecond float64
}

type Gateway struct {
	apiURL     string
	aiURL      string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
	maxBody    int64

	now   func() time.Time
	float func() float64
	intn  func(int) int
}

type Option func(*Gateway)

func WithLogger(l *zap.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

func New(cfg Config, opts ...Option) *Gateway {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	aiURL := strings.TrimRight(cfg.AIAPIURL, "/")
	if aiURL == "" {
		aiURL = apiURL
	}

	g := &Gateway{
		apiURL:     apiURL,
		aiURL:      aiURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        zap.NewNop(),
		maxBody:    maxBodyBytes,
		now:        time.Now,
		float:      rand.Float64,
		intn:       rand.IntN,
	}
	if cfg.RequestsPerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// APIURL is the primary backend base, shared with other collaborators.
func (g *Gateway) APIURL() string { return g.apiURL }

// AIAPIURL is the generation backend base.
func (g *Gateway) AIAPIURL() string { return g.aiURL }
