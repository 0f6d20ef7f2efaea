package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/teampayal/cafe-pos/controllers"
	"github.com/teampayal/cafe-pos/middlewares"
	"github.com/teampayal/cafe-pos/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Service layer
	tokenSvc := services.NewTokenService(db)
	sessionSvc := services.NewSessionService(db, tokenSvc)

	// Controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db, sessionSvc, tokenSvc)
	publicCtrl := controllers.NewPublicController(db, tokenSvc)
	categoryCtrl := controllers.NewMenuCategoryController(db)
	menuCtrl := controllers.NewMenuController(db)
	orderCtrl := controllers.NewOrderController(db)

	// Rate guard untuk permukaan public: window per-IP dan per-token.
	// Validasi token gratis buat penyerang, jadi dua-duanya dibatasi.
	publicLimiter := middlewares.NewRateLimiter(30, 60)
	orderLimiter := middlewares.NewRateLimiter(10, 60)
	go publicLimiter.Cleanup(5 * time.Minute)
	go orderLimiter.Cleanup(5 * time.Minute)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------

	// Login/register dengan limiter ketat
	authPublic := r.Group("/")
	authPublic.Use(middlewares.NewStrictRateLimiter())
	{
		authPublic.POST("/register", userCtrl.Register)
		authPublic.POST("/login", userCtrl.Login)
	}

	// Katalog read-only untuk halaman self-order
	r.GET("/categories", categoryCtrl.GetAllCategories)
	r.GET("/menus", menuCtrl.GetAllMenus)
	r.GET("/menus/by-category", menuCtrl.GetMenuByCategory)

	// Gateway self-order: tanpa auth staff, hanya capability token.
	// Semua request kena rate guard per-IP + per-token.
	public := r.Group("/public")
	public.Use(publicLimiter.PerIP(), publicLimiter.PerToken())
	{
		public.GET("/session/:token", publicCtrl.ResolveSession)
		public.GET("/session/:token/orders", publicCtrl.ListOrders)
		public.POST("/session/:token/orders",
			orderLimiter.PerToken(), publicCtrl.PlaceOrder)
	}

	// WebSocket floor page (JWT via query token)
	r.GET("/floor/ws", middlewares.WebSocketAuthMiddleware(), controllers.FloorHandler)

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)

	// TABLE registry
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.POST("/tables", middlewares.RequireRole("staff"), tableCtrl.CreateTable)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.DELETE("/tables/:table_id", middlewares.RequireRole("staff"), tableCtrl.DeleteTable)

	// Lifecycle session per meja. Checkout/close menyentuh pembayaran,
	// jadi dipasangi limiter ketat juga.
	manage := auth.Group("/tables/:table_id")
	manage.Use(middlewares.RequireRole("staff"))
	{
		manage.POST("/seat", tableCtrl.SeatTable)
		manage.POST("/checkout", middlewares.NewStrictRateLimiter(), tableCtrl.BeginCheckout)
		manage.POST("/close", middlewares.NewStrictRateLimiter(), tableCtrl.CloseTable)
		manage.POST("/token", tableCtrl.IssueToken)
		manage.GET("/session", tableCtrl.GetActiveSession)
	}

	// MENU CATEGORIES (staff/admin)
	auth.POST("/categories", middlewares.RequireRole("staff"), categoryCtrl.CreateCategory)
	auth.DELETE("/categories/:cat_id", middlewares.RequireRole("staff"), categoryCtrl.DeleteCategory)

	// MENUS (staff/admin)
	auth.POST("/menus", middlewares.RequireRole("staff"), menuCtrl.CreateMenu)
	auth.PATCH("/menus/:menu_id", middlewares.RequireRole("staff"), menuCtrl.UpdateMenu)
	auth.DELETE("/menus/:menu_id", middlewares.RequireRole("staff"), menuCtrl.DeleteMenu)

	// ORDERS (staff/admin)
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.PATCH("/orders/:order_id", middlewares.RequireRole("staff"), orderCtrl.UpdateOrderStatus)

	return r
}
