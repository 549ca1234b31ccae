package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/cash"
	"github.com/jhoicas/pos-api/internal/application/delivery"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	ProductUC   *usecase.ProductUseCase
	InventoryUC *inventory.UseCase
	CategoryUC  *usecase.CategoryUseCase
	CustomerUC  *usecase.CustomerUseCase
	SalesUC     *sales.UseCase
	DeliveryUC  *delivery.UseCase
	CashUC      *cash.UseCase
	JWTSecret   string
	Log         *logger.Logger
}

// AppConfig parámetros del servidor fiber.
type AppConfig struct {
	Name        string
	BodyLimitMB int
	SwaggerFile string // si el archivo no existe no se monta /docs
}

// NewApp arma la app completa: error handler global, métricas, log de requests, recover,
// /health, /metrics, Swagger y las rutas de /api.
func NewApp(cfg AppConfig, deps RouterDeps) *fiber.App {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	bodyLimit := cfg.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 10
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: ErrorHandler(deps.Log.Component("http")),
	})

	metrics := NewMetrics("api")
	app.Use(metrics.Middleware())
	app.Use(RequestLogger(deps.Log.Component("http")))
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.SwaggerFile != "" {
		if _, err := os.Stat(cfg.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.SwaggerFile,
				Path:     "docs",
				Title:    "POS API",
			}))
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})
	app.Get("/metrics", metrics.Handler())

	Router(app, deps)
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", authHandler.Register)

	// Rutas protegidas (requieren Bearer Token)
	authRequired := AuthMiddleware(deps.JWTSecret, deps.AuthUC)
	authGroup.Get("/profile", authRequired, authHandler.Profile)
	authGroup.Post("/change-password", authRequired, authHandler.ChangePassword)
	authGroup.Post("/users", authRequired, adminOnly, authHandler.CreateUser)
	authGroup.Get("/users", authRequired, adminOnly, authHandler.ListUsers)
	authGroup.Put("/users/:id", authRequired, adminOnly, authHandler.UpdateUser)

	// Products + movimientos de stock. Las rutas fijas van antes de /:id.
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	products := api.Group("/products", authRequired)
	products.Get("/", productHandler.List)
	products.Get("/top-selling", productHandler.TopSelling)
	products.Get("/stats", inventoryHandler.Stats)
	products.Get("/alerts", inventoryHandler.Alerts)
	products.Get("/movements/list", inventoryHandler.ListMovements)
	products.Post("/movements", inventoryHandler.RegisterMovement)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", productHandler.Create)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories := api.Group("/categories", authRequired)
	categories.Get("/", categoryHandler.List)
	categories.Get("/stats", categoryHandler.Stats)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Post("/", categoryHandler.Create)
	categories.Put("/:id", categoryHandler.Update)
	categories.Patch("/:id/restore", categoryHandler.Restore)
	categories.Delete("/:id", adminOnly, categoryHandler.Delete)

	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers := api.Group("/customers", authRequired)
	customers.Get("/", customerHandler.List)
	customers.Get("/stats", customerHandler.Stats)
	customers.Post("/transactions", customerHandler.CreateTransaction)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Get("/:id/balance", customerHandler.Balance)
	customers.Get("/:id/transactions", customerHandler.Transactions)
	customers.Post("/", customerHandler.Create)
	customers.Put("/:id", adminOnly, customerHandler.Update)
	customers.Delete("/:id", adminOnly, customerHandler.Delete)

	saleHandler := NewSaleHandler(deps.SalesUC)
	salesGroup := api.Group("/sales", authRequired)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/stats", saleHandler.Stats)
	salesGroup.Get("/report/daily", saleHandler.DailyReport)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/ticket", saleHandler.Ticket)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Patch("/:id/cancel", adminOnly, saleHandler.Cancel)

	deliveryHandler := NewDeliveryHandler(deps.DeliveryUC)
	deliveries := api.Group("/deliveries", authRequired)
	deliveries.Get("/", deliveryHandler.List)
	deliveries.Get("/stats", deliveryHandler.Stats)
	deliveries.Get("/driver/:driver_id", deliveryHandler.ByDriver)
	deliveries.Get("/:id", deliveryHandler.GetByID)
	deliveries.Post("/", deliveryHandler.Create)
	deliveries.Patch("/:id/status", deliveryHandler.UpdateStatus)

	cashHandler := NewCashHandler(deps.CashUC)
	cashGroup := api.Group("/cash", authRequired)
	cashGroup.Get("/status", cashHandler.Status)
	cashGroup.Post("/open", cashHandler.Open)
	cashGroup.Post("/close", cashHandler.Close)
	cashGroup.Get("/history", cashHandler.History)
	cashGroup.Get("/sessions/:id", cashHandler.Session)
	cashGroup.Get("/sessions/:id/report", cashHandler.Report)
	cashGroup.Get("/movements", cashHandler.Movements)
	cashGroup.Post("/movements", cashHandler.CreateMovement)
	cashGroup.Get("/settings", cashHandler.Settings)
	cashGroup.Put("/settings", adminOnly, cashHandler.UpdateSettings)
}
