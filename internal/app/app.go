// Package app wires services, handlers and middleware into the HTTP router.
package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"fintrack/internal/config"
	_ "fintrack/internal/docs" // swagger docs
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
)

// Services bundles the business services behind the API.
type Services struct {
	User        services.UserServicer
	Tag         services.TagServicer
	CreditCard  services.CreditCardServicer
	Transaction services.TransactionServicer
	Summary     services.SummaryServicer
	Audit       services.AuditServicer
}

// NewServices creates every service on top of db.
func NewServices(db *gorm.DB, cfg *config.Config) (*Services, error) {
	summary, err := services.NewSummaryService(db, services.SummaryOptions{
		DueSoonDays: cfg.DueSoonDays,
		Location:    cfg.Location(),
		CacheSize:   cfg.SummaryCacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create summary service: %w", err)
	}
	return &Services{
		User:        services.NewUserService(db),
		Tag:         services.NewTagService(db),
		CreditCard:  services.NewCreditCardService(db),
		Transaction: services.NewTransactionService(db),
		Summary:     summary,
		Audit:       services.NewAuditService(db),
	}, nil
}

// NewRouter builds the gin engine serving the v1 API. loc is the zone the
// default month of summary requests is taken in.
func NewRouter(svc *Services, loc *time.Location) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.User, svc.Audit)
	tagHandler := handlers.NewTagHandler(svc.Tag, svc.Audit)
	cardHandler := handlers.NewCreditCardHandler(svc.CreditCard, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transaction, svc.Audit)
	summaryHandler := handlers.NewSummaryHandler(svc.Summary, loc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	tags := protected.Group("/tags")
	tags.POST("", tagHandler.CreateTag)
	tags.GET("", tagHandler.GetTags)
	tags.GET("/:id", tagHandler.GetTag)
	tags.PUT("/:id", tagHandler.UpdateTag)
	tags.DELETE("/:id", tagHandler.DeleteTag)

	cards := protected.Group("/credit-cards")
	cards.POST("", cardHandler.CreateCreditCard)
	cards.GET("", cardHandler.GetCreditCards)
	cards.GET("/:id", cardHandler.GetCreditCard)
	cards.PUT("/:id", cardHandler.UpdateCreditCard)
	cards.DELETE("/:id", cardHandler.DeleteCreditCard)
	cards.GET("/:id/invoice", cardHandler.GetInvoice)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.DELETE("/groups/:group_id", transactionHandler.SettleGroup)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.PATCH("/:id/paid", transactionHandler.TogglePaid)

	summary := protected.Group("/summary")
	summary.GET("/monthly", summaryHandler.GetMonthlySummary)
	summary.GET("/annual", summaryHandler.GetAnnualOverview)

	return router
}
