package router

import (
	"time"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/config"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/handler"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/infra"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/middleware"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/repository"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/service"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, feedCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	skuRepo := repository.NewSkuRepository(db)
	changeRepo := repository.NewPriceChangeRepository(db)
	pendingRepo := repository.NewPendingUpdateRepository(db)
	ruleRepo := repository.NewPriceRuleRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	riskTTL := time.Duration(cfg.RiskCacheTTLMinutes) * time.Minute
	ledger := service.NewSkuLedger(skuRepo, changeRepo, rdb, riskTTL)
	workflow := service.NewPendingUpdateWorkflow(pendingRepo, skuRepo, ledger)
	bulk := service.NewBulkExecutor(skuRepo, ledger, workflow)
	registry := service.NewPriceRuleRegistry(ruleRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	skusH := handler.NewSkusHandler(ledger)
	bulkH := handler.NewBulkHandler(bulk)
	pendingH := handler.NewPendingHandler(workflow)
	rulesH := handler.NewRulesHandler(registry, dispatcher)
	changesH := handler.NewPriceChangesHandler(changeRepo)
	priceCheckH := handler.NewPriceCheckHandler(skuRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, feedCB))

	// Price check — no auth required, read-only
	r.GET("/v1/price-check/:code", priceCheckH.GetByCode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: viewer, merchandiser, admin — declared per-endpoint
		readRoles := middleware.RequireRole(middleware.RoleViewer, middleware.RoleMerchandiser, middleware.RoleAdmin)
		writeRoles := middleware.RequireRole(middleware.RoleMerchandiser, middleware.RoleAdmin)

		v1.GET("/skus", readRoles, skusH.List)
		v1.GET("/skus/:id", readRoles, skusH.GetByID)
		v1.GET("/skus/:id/price-changes", readRoles, changesH.ListBySku)
		v1.PATCH("/skus/:id/price", writeRoles, skusH.ApplyPrice)

		v1.GET("/margin-risk", readRoles, skusH.MarginRisk)

		// Bulk operations fan out over thousands of rows — extra limiter
		v1.POST("/prices/bulk", writeRoles, middleware.BulkRateLimiter(), bulkH.Execute)

		pending := v1.Group("/pending-updates")
		{
			pending.GET("", readRoles, pendingH.List)
			pending.POST("", writeRoles, pendingH.Propose)
			// Resolution is admin-only
			pending.POST("/:id/approve", middleware.RequireRole(middleware.RoleAdmin), pendingH.Approve)
			pending.POST("/:id/reject", middleware.RequireRole(middleware.RoleAdmin), pendingH.Reject)
		}

		rules := v1.Group("/price-rules")
		{
			rules.GET("", readRoles, rulesH.List)
			rules.POST("", writeRoles, rulesH.Create)
			rules.PATCH("/:id/activate", writeRoles, rulesH.Activate)
			rules.PATCH("/:id/expire", writeRoles, rulesH.Expire)
			rules.POST("/:id/evaluate", writeRoles, rulesH.Evaluate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
