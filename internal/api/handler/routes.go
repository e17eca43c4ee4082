package handler

import (
	"net/http"

	"github.com/vfg2006/adtech-analytics-api/internal/api/handler/router"
	"github.com/vfg2006/adtech-analytics-api/internal/cache"
	"github.com/vfg2006/adtech-analytics-api/internal/config"
	"github.com/vfg2006/adtech-analytics-api/internal/observability"
	"github.com/vfg2006/adtech-analytics-api/internal/usecases/aggregating"
	"github.com/vfg2006/adtech-analytics-api/internal/usecases/authenticating"
	"github.com/vfg2006/adtech-analytics-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: observability.Handler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:        "/v1/users",
			Method:      http.MethodPost,
			Handler:     CreateUser(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Data(service aggregating.Aggregator, cfg *config.Config) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/data/upload",
			Method:      http.MethodPost,
			Handler:     UploadData(service, cfg),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/data/stats",
			Method:      http.MethodGet,
			Handler:     GetStats(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func CacheAdmin(statsCache *cache.StatsCache) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cache/stats",
			Method:      http.MethodGet,
			Handler:     GetCacheStats(statsCache),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}
