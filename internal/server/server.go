package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/pulse/internal/assessment"
	"github.com/smallbiznis/pulse/internal/audit"
	auditdomain "github.com/smallbiznis/pulse/internal/audit/domain"
	"github.com/smallbiznis/pulse/internal/authorization"
	"github.com/smallbiznis/pulse/internal/campaign"
	campaigndomain "github.com/smallbiznis/pulse/internal/campaign/domain"
	"github.com/smallbiznis/pulse/internal/codegen"
	"github.com/smallbiznis/pulse/internal/config"
	"github.com/smallbiznis/pulse/internal/identity"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
	"github.com/smallbiznis/pulse/internal/invitation"
	invitationdomain "github.com/smallbiznis/pulse/internal/invitation/domain"
	"github.com/smallbiznis/pulse/internal/observability"
	obslogger "github.com/smallbiznis/pulse/internal/observability/logger"
	obstracing "github.com/smallbiznis/pulse/internal/observability/tracing"
	"github.com/smallbiznis/pulse/internal/ratelimit"
	"github.com/smallbiznis/pulse/internal/roster"
	"github.com/smallbiznis/pulse/internal/seed"
	"github.com/smallbiznis/pulse/internal/tool"
	"github.com/smallbiznis/pulse/internal/visibility"
	visibilitydomain "github.com/smallbiznis/pulse/internal/visibility/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	identity.Module,
	codegen.Module,
	tool.Module,
	audit.Module,
	authorization.Module,
	campaign.Module,
	assessment.Module,
	invitation.Module,
	roster.Module,
	visibility.Module,
	ratelimit.Module,
	seed.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	return r
}

func registerGin(obsCfg observability.Config, registry *prometheus.Registry) *gin.Engine {
	return NewEngine(obsCfg, registry)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	directory     identitydomain.Directory
	authzSvc      authorization.Service
	auditSvc      auditdomain.Service
	campaignSvc   campaigndomain.Service
	invitationSvc invitationdomain.Service
	visibilitySvc visibilitydomain.Service
	limiter       completionLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Directory     identitydomain.Directory
	AuthzSvc      authorization.Service
	AuditSvc      auditdomain.Service
	CampaignSvc   campaigndomain.Service
	InvitationSvc invitationdomain.Service
	VisibilitySvc visibilitydomain.Service
	Limiter       *ratelimit.CompletionLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		directory:     p.Directory,
		authzSvc:      p.AuthzSvc,
		auditSvc:      p.AuditSvc,
		campaignSvc:   p.CampaignSvc,
		invitationSvc: p.InvitationSvc,
		visibilitySvc: p.VisibilitySvc,
	}
	if p.Limiter != nil {
		svc.limiter = p.Limiter
	}
	svc.registerAPIRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Public (participant facing) --------
	api.GET("/campaigns/by-code/:code", s.GetCampaignByCode)
	api.POST("/invitations", s.CreateInvitation)
	api.POST("/invitations/:id/advance", s.AdvanceInvitation)
	api.POST("/completions", s.CompletionRateLimit(), s.RecordCompletion)

	// -------- Campaigns --------
	api.POST("/campaigns", s.IdentityRequired(), s.CreateCampaign)
	api.GET("/campaigns/:id", s.IdentityRequired(), s.GetCampaignByID)
	api.POST("/campaigns/:id/status", s.IdentityRequired(), s.SetCampaignStatus)

	// -------- Admin --------
	admin := api.Group("/admin", s.IdentityRequired(identitydomain.KindAdmin))
	admin.POST("/invitations/:id/reset", s.ResetInvitation)
	admin.GET("/companies/:id/overview", s.GetAdminOverview)
	admin.GET("/companies/:id/audit-logs", s.authorizeAdminAction(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)

	// -------- Manager --------
	manager := api.Group("/manager", s.IdentityRequired(identitydomain.KindManager))
	manager.GET("/overview", s.GetManagerOverview)
}
