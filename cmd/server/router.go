package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	compliancehandler "aurum/internal/compliance/handler"
	"aurum/internal/platform/config"
	"aurum/internal/platform/health"
	redemptionhandler "aurum/internal/redemption/handler"
	registryhandler "aurum/internal/registry/handler"
	treasuryhandler "aurum/internal/treasury/handler"
	"aurum/pkg/platform/idempotency"
	"aurum/pkg/platform/middleware/metadata"
	"aurum/pkg/platform/middleware/request"
	"aurum/pkg/platform/middleware/signer"
)

// newRouter mounts probes and metrics without authentication and every
// token operation behind the signer and idempotency middleware.
func newRouter(cfg *config.Server, a *app, in *infra, checks *health.Handler, log *slog.Logger) (http.Handler, error) {
	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(metadata.ClientIP(proxies))
	r.Use(request.RequestTime)
	r.Use(request.Logger(log))
	r.Use(request.Instrument(request.NewMetrics(prometheus.DefaultRegisterer)))

	checks.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	verifier := signer.NewVerifier(cfg.Signer.Audience, cfg.Signer.MaxTTL, cfg.Signer.ClockSkew)
	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(cfg.RequestTimeout))
		r.Use(request.BodyLimit(cfg.MaxBodyBytes))
		r.Use(request.ContentTypeJSON)
		r.Use(signer.RequireSigner(verifier, log))
		r.Use(idempotency.Middleware(in.Idempotency(), cfg.Idempotency.TTL, log))

		registryhandler.New(a.registry, log).Register(r)
		treasuryhandler.New(a.treasury, log).Register(r)
		redemptionhandler.New(a.redemption, log).Register(r)
		compliancehandler.New(a.compliance, log).Register(r)
	})
	return r, nil
}
