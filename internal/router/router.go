package router

import (
	"time"

	"github.com/msakr99/pharmasky-backend-sub001/internal/config"
	"github.com/msakr99/pharmasky-backend-sub001/internal/handler"
	"github.com/msakr99/pharmasky-backend-sub001/internal/middleware"
	"github.com/msakr99/pharmasky-backend-sub001/internal/repository"
	"github.com/msakr99/pharmasky-backend-sub001/internal/service"
	"github.com/msakr99/pharmasky-backend-sub001/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	itemRepo := repository.NewInventoryItemRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	purchaseRepo := repository.NewPurchaseInvoiceRepository(db)
	saleRepo := repository.NewSaleInvoiceRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	productSvc := service.NewProductService(productRepo)
	inventorySvc := service.NewInventoryService(warehouseRepo, itemRepo, productRepo, rdb, dispatcher)
	offerSvc := service.NewOfferService(offerRepo, productRepo)
	invoiceSvc := service.NewInvoiceService(purchaseRepo, saleRepo, productRepo, itemRepo, offerSvc, inventorySvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productsH := handler.NewProductsHandler(productSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	offersH := handler.NewOffersHandler(offerSvc)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc)
	stockH := handler.NewStockCheckHandler(inventorySvc, rdb,
		time.Duration(cfg.StockCacheTTLMinutes)*time.Minute)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		// Stock check — read-only, cached
		v1.GET("/stock/:product_id", stockH.GetStock)

		products := v1.Group("/products")
		{
			products.POST("", productsH.Create)
			products.GET("", productsH.List)
			products.GET("/:id", productsH.Get)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
		}

		warehouses := v1.Group("/warehouses")
		{
			warehouses.POST("", inventoryH.CreateWarehouse)
			warehouses.GET("", inventoryH.ListWarehouses)
			warehouses.GET("/main", inventoryH.GetMainWarehouse)
			warehouses.GET("/:id", inventoryH.GetWarehouse)
			warehouses.GET("/:id/items", inventoryH.ListWarehouseItems)
		}

		inventory := v1.Group("/inventory")
		{
			inventory.POST("/items", inventoryH.CreateItem)
			inventory.PATCH("/items/:id", inventoryH.UpdateItem)
			inventory.POST("/items/:id/transfer", inventoryH.TransferItem)
			inventory.DELETE("/items/:id", inventoryH.DeleteItem)
			inventory.POST("/deduct", inventoryH.Deduct)
		}

		offers := v1.Group("/offers")
		{
			offers.POST("", offersH.Create)
			offers.GET("", offersH.List)
			offers.GET("/:id", offersH.Get)
			offers.DELETE("/:id", offersH.Delete)
		}

		purchases := v1.Group("/purchase-invoices")
		{
			purchases.POST("", invoicesH.CreatePurchase)
			purchases.GET("/:id", invoicesH.GetPurchase)
			purchases.PATCH("/items/:id", invoicesH.UpdatePurchaseItem)
			purchases.PATCH("/items/:id/status", invoicesH.UpdatePurchaseItemStatus)
			purchases.POST("/:id/close", invoicesH.ClosePurchase)
		}

		sales := v1.Group("/sale-invoices")
		{
			sales.POST("", invoicesH.CreateSale)
			sales.GET("/:id", invoicesH.GetSale)
			sales.GET("/:id/availability", invoicesH.CheckSaleAvailability)
			sales.POST("/:id/close", invoicesH.CloseSale)
		}
	}

	return r
}
