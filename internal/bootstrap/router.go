package bootstrap

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/skyon-community/skyon-backend/internal/api/http"
	"github.com/skyon-community/skyon-backend/internal/api/http/middleware"
	"github.com/skyon-community/skyon-backend/internal/audit"
	authhttp "github.com/skyon-community/skyon-backend/internal/auth/http"
	authmw "github.com/skyon-community/skyon-backend/internal/auth/middleware"
	"github.com/skyon-community/skyon-backend/internal/features/bazaar"
	"github.com/skyon-community/skyon-backend/internal/features/dishes"
	"github.com/skyon-community/skyon-backend/internal/features/events"
	"github.com/skyon-community/skyon-backend/internal/features/lostfound"
	"github.com/skyon-community/skyon-backend/internal/features/marketplace"
	"github.com/skyon-community/skyon-backend/internal/features/medical"
	"github.com/skyon-community/skyon-backend/internal/features/parking"
	"github.com/skyon-community/skyon-backend/internal/features/transport"
	"github.com/skyon-community/skyon-backend/internal/features/vendors"
)

type RouterOptions struct {
	// Sentry installs the Sentry middleware; sentry.Init must already have run.
	Sentry bool
}

func BuildRouter(a *App, opts RouterOptions) *gin.Engine {
	cfg := a.Config
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.RequestID(a.Log))
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	health := httpapi.NewHealthHandler(cfg.App.ServiceName, cfg.App.Version, cfg.Store.Backend, a.DB, a.Redis)
	health.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst).Middleware())
	api.Use(authmw.Authenticate(a.Auth))

	authhttp.New(a.Auth, a.Admins).Register(api)
	audit.NewHandler(a.Audit, a.Guard).Register(api)
	httpapi.NewChangesHandler(a.Store, a.Guard).Register(api)

	maxBytes := cfg.Cloudinary.MaxBytes
	f := a.Features
	marketplace.NewHandler(f.Marketplace, maxBytes).Register(api)
	bazaar.NewHandler(f.Bazaar, maxBytes).Register(api)
	dishes.NewHandler(f.Dishes, maxBytes).Register(api)
	vendors.NewHandler(f.Vendors, maxBytes).Register(api)
	events.NewHandler(f.Events, maxBytes).Register(api)
	lostfound.NewHandler(f.LostFound, maxBytes).Register(api)
	medical.NewHandler(f.Medical, maxBytes).Register(api)
	transport.NewHandler(f.Transport).Register(api)
	parking.NewHandler(f.Parking, maxBytes).Register(api)

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return c
}
