package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"salonbook-backend/config"
	"salonbook-backend/controllers"
	"salonbook-backend/repository"
	"salonbook-backend/services"
	"salonbook-backend/utils"
)

// Dependencies holds everything the router and the background jobs share.
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Tokens        *utils.TokenManager
	Users         *repository.UserRepository
	Clients       *repository.ClientRepository
	Services      *repository.ServiceRepository
	Visits        *repository.VisitRepository
	Expenses      *repository.ExpenseRepository
	Notifications *repository.NotificationRepository

	Billing   *services.BillingService
	Summaries *services.SummaryService
	Notifier  *services.NotificationService
}

// NewDependencies builds stores and services on db. A nil cache or notifier
// disables that feature.
func NewDependencies(cfg *config.Config, db *gorm.DB, cache services.SummaryCache, notifier services.Notifier, logger *slog.Logger) (*Dependencies, error) {
	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	d := &Dependencies{
		Config:        cfg,
		Logger:        logger,
		Tokens:        tokens,
		Users:         repository.NewUserRepository(db),
		Clients:       repository.NewClientRepository(db),
		Services:      repository.NewServiceRepository(db),
		Visits:        repository.NewVisitRepository(db),
		Expenses:      repository.NewExpenseRepository(db),
		Notifications: repository.NewNotificationRepository(db),
	}
	d.Billing = services.NewBillingService(d.Clients, d.Services, d.Visits, cfg.Location())
	d.Summaries = services.NewSummaryService(d.Visits, d.Expenses, cache, cfg.Location(), logger)
	d.Notifier = services.NewNotificationService(notifier, d.Notifications, d.Clients, cfg.Location(), logger)
	return d, nil
}

func SetupRouter(d *Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger(d.Logger, d.Config.SlowRequestThreshold))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "SalonBook API is running")
	})

	authController := controllers.NewAuthController(d.Users, d.Tokens, controllers.AuthOptions{
		BcryptCost:        d.Config.BcryptCost,
		AllowRegistration: d.Config.AllowRegistration,
		SecureCookie:      d.Config.IsProduction(),
	})

	var receipts *services.NotificationService
	if d.Config.NotifyVisitReceipts {
		receipts = d.Notifier
	}

	clientController := controllers.NewClientController(d.Clients)
	serviceController := controllers.NewServiceController(d.Services)
	visitController := controllers.NewVisitController(d.Billing, d.Visits, d.Summaries, receipts)
	expenseController := controllers.NewExpenseController(d.Expenses, d.Summaries)
	reportController := controllers.NewReportController(d.Summaries)
	dashboardController := controllers.NewDashboardController(d.Clients, d.Visits, d.Expenses, d.Config.Location())
	notificationController := controllers.NewNotificationController(d.Notifications)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)

		auth.Use(utils.AuthMiddleware(d.Tokens))
		auth.GET("/me", authController.Me)
		auth.PUT("/profile", authController.UpdateProfile)
		auth.PUT("/password", authController.ChangePassword)
	}

	protected := api.Group("")
	protected.Use(utils.AuthMiddleware(d.Tokens))
	{
		// Client routes
		clients := protected.Group("/clients")
		{
			clients.POST("", clientController.CreateClient)
			clients.GET("", clientController.GetClients)
			clients.GET("/search", clientController.SearchClients)
			clients.GET("/:id", clientController.GetClient)
			clients.PUT("/:id", clientController.UpdateClient)
			clients.DELETE("/:id", clientController.DeleteClient)
			clients.PUT("/:id/reactivate", clientController.ReactivateClient)
		}

		// Service routes
		catalog := protected.Group("/services")
		{
			catalog.POST("", serviceController.AddService)
			catalog.GET("", serviceController.GetServices)
			catalog.PUT("/:id", serviceController.UpdateService)
			catalog.PUT("/toggle/:id", serviceController.ToggleServiceStatus)
		}

		// Visit routes
		visits := protected.Group("/visits")
		{
			visits.POST("", visitController.CreateVisit)
			visits.GET("/client/:clientId", visitController.GetClientVisits)
			visits.DELETE("/:visitId", visitController.DeleteVisit)
		}

		// Expense routes
		expenses := protected.Group("/expenses")
		{
			expenses.POST("", expenseController.AddExpense)
			expenses.GET("", expenseController.GetExpenses)
			expenses.DELETE("/:id", expenseController.DeleteExpense)
		}

		// Report routes
		protected.GET("/reports/summary", reportController.GetSummary)
		protected.GET("/reports/summary/export", reportController.ExportSummary)

		protected.GET("/dashboard", dashboardController.GetDashboardOverview)
		protected.GET("/notifications", notificationController.GetNotifications)
	}

	return r
}
