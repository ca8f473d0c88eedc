package handler

import (
	"go-inventory-pos/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Inventory *InventoryHandler
	Ledger    *LedgerHandler
	Sales     *SaleHandler
	Reports   *ReportHandler
	Dashboard *DashboardHandler
}

// RegisterRoutes mounts the API under router. Every route runs behind auth.
func RegisterRoutes(router fiber.Router, h Handlers, auth fiber.Handler) {
	protected := router.Group("", auth)

	// Dashboard Routes (authenticated users can view)
	protected.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)

	// Product Routes (with privilege checks)
	protected.Get("/products", h.Inventory.GetProducts)
	protected.Get("/products/:id", h.Inventory.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege(middleware.PrivProductCreate), h.Inventory.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(middleware.PrivProductUpdate), h.Inventory.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege(middleware.PrivProductUpdate), h.Inventory.DeactivateProduct)
	protected.Post("/products/:id/restock", middleware.RequirePrivilege(middleware.PrivStockWrite), h.Ledger.Restock)

	protected.Get("/categories", h.Inventory.GetCategories)
	protected.Post("/categories", middleware.RequirePrivilege(middleware.PrivProductCreate), h.Inventory.CreateCategory)
	protected.Put("/categories/:id", middleware.RequirePrivilege(middleware.PrivProductUpdate), h.Inventory.UpdateCategory)
	protected.Delete("/categories/:id", middleware.RequirePrivilege(middleware.PrivProductUpdate), h.Inventory.DeleteCategory)

	// Ledger Routes
	protected.Get("/transactions", middleware.RequirePrivilege(middleware.PrivTransactionView), h.Ledger.GetTransactions)
	protected.Get("/transactions/:id", middleware.RequirePrivilege(middleware.PrivTransactionView), h.Ledger.GetTransaction)
	protected.Post("/transactions", middleware.RequirePrivilege(middleware.PrivStockWrite), h.Ledger.CreateTransaction)

	// Sales Routes
	protected.Get("/sales", middleware.RequireAnyPrivilege(middleware.PrivSaleCreate, middleware.PrivReportView), h.Sales.GetSales)
	protected.Get("/sales/:id", middleware.RequireAnyPrivilege(middleware.PrivSaleCreate, middleware.PrivReportView), h.Sales.GetSale)
	protected.Post("/sales", middleware.RequirePrivilege(middleware.PrivSaleCreate), h.Sales.CreateSale)

	// Report Routes
	reports := protected.Group("/reports", middleware.RequirePrivilege(middleware.PrivReportView))
	reports.Get("/products/:id/summary", h.Reports.GetProductSummary)
	reports.Get("/summary", h.Reports.GetFleetSummary)
	reports.Get("/inventory", h.Reports.GetInventoryReport)
	reports.Get("/sales", h.Reports.GetSalesReport)
}
