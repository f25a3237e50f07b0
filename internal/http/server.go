package http

import (
	"context"
	"net/http"
	"time"

	"github.com/tradeyard/eventgate/internal/config"
	"github.com/tradeyard/eventgate/internal/event"
	"github.com/tradeyard/eventgate/internal/http/middleware"
	"github.com/tradeyard/eventgate/internal/realtime"
	"github.com/tradeyard/eventgate/internal/repository"
	"github.com/tradeyard/eventgate/internal/storage"
	"github.com/tradeyard/eventgate/internal/webhook"
	echo "github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Deps carries the explicitly constructed collaborators; no package-level
// singletons, everything substitutable in tests.
type Deps struct {
	Store       storage.Backend
	Subs        *webhook.Service
	Publisher   *event.Publisher
	Deliveries  repository.DeliveryLog
	Stream      *realtime.Subscriber
	Redis       *redis.Client
}

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	authMW := middleware.APIKeyMiddleware(cfg.Auth.APIKeys)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          deps.Redis,
		DefaultRPS:     cfg.RateLimit.RPS,
		KeyPrefix:      "rl:key:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)

	v1.POST("/subscriptions", createSubscriptionHandler(deps.Subs))
	v1.GET("/subscriptions", listSubscriptionsHandler(deps.Subs))
	v1.GET("/subscriptions/:id", getSubscriptionHandler(deps.Subs))
	v1.PUT("/subscriptions/:id", updateSubscriptionHandler(deps.Subs))
	v1.DELETE("/subscriptions/:id", deleteSubscriptionHandler(deps.Subs))

	v1.POST("/listings", createListingHandler(deps.Store, deps.Publisher))
	v1.GET("/listings", listListingsHandler(deps.Store))
	v1.GET("/listings/:id", getListingHandler(deps.Store))
	v1.PUT("/listings/:id", updateListingHandler(deps.Store, deps.Publisher))
	v1.DELETE("/listings/:id", deleteListingHandler(deps.Store, deps.Publisher))

	v1.POST("/events", publishEventHandler(deps.Publisher))
	v1.GET("/events/stream", streamEventsHandler(deps.Stream))

	if deps.Deliveries != nil {
		v1.GET("/reports/deliveries", listDeliveriesHandler(deps.Deliveries))
	}

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

// Echo exposes the router for handler tests.
func (s *Server) Echo() *echo.Echo { return s.e }
