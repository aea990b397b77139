package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"caixapos/internal/config"
	"caixapos/internal/handler"
	"caixapos/internal/middleware"
	"caixapos/internal/realtime"
	"caixapos/internal/service"
)

// New assembles the gin engine: middleware chain, route groups and the
// swagger UI (outside production).
func New(
	cfg *config.Config,
	db *gorm.DB,
	rdb *redis.Client,
	hub *realtime.Hub,
	authSvc service.AuthService,
	orderSvc service.OrderService,
	caixaSvc service.CaixaService,
	loyaltySvc service.LoyaltyService,
	settingsSvc service.SettingsService,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(),
		middleware.ErrorHandler(),
		middleware.RateLimiter(rdb, 300, time.Minute),
	)

	healthHandler := handler.NewHealthHandler(db, rdb)
	authHandler := handler.NewAuthHandler(authSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)
	caixaHandler := handler.NewCaixaHandler(caixaSvc)
	loyaltyHandler := handler.NewLoyaltyHandler(loyaltySvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	wsHandler := handler.NewWSHandler(hub)

	r.GET("/health", healthHandler.Check)
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	authed := v1.Group("")
	authed.Use(middleware.Auth(cfg.JWTSecret))
	{
		pedidos := authed.Group("/pedidos")
		{
			pedidos.GET("", orderHandler.List)
			pedidos.GET("/metodos-pagamento", orderHandler.PaymentMethods)
			pedidos.GET("/:id", orderHandler.Get)
			pedidos.POST("/:id/avancar", orderHandler.Advance)
			pedidos.POST("/:id/cancelar", orderHandler.Cancel)
			pedidos.POST("/:id/pagamento", orderHandler.ResolvePayment)
		}

		caixa := authed.Group("/caixa")
		{
			caixa.POST("/abrir", caixaHandler.Abrir)
			caixa.GET("/atual", caixaHandler.Atual)
			caixa.GET("/historico", caixaHandler.Historico)
			caixa.POST("/:id/vincular-pendentes", caixaHandler.VincularPendentes)
			caixa.GET("/:id/resumo", caixaHandler.Resumo)
			caixa.POST("/:id/fechar", caixaHandler.Fechar)
		}

		clientes := authed.Group("/clientes")
		{
			clientes.GET("/:id/pontos", loyaltyHandler.Balance)
			clientes.GET("/:id/extrato", loyaltyHandler.Statement)
		}

		configuracao := authed.Group("/configuracao")
		{
			configuracao.GET("", settingsHandler.Get)
			configuracao.PUT("",
				middleware.RequireRole(middleware.RoleGerente, middleware.RoleAdministrador),
				settingsHandler.Update)
		}

		authed.GET("/ws/pedidos", wsHandler.Feed)
	}

	return r
}
