package handler

import (
	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

func (h *ReportHandler) GetProductSummary(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}

	summary, err := h.service.SingleProductSummary(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// GetFleetSummary query params: start_date, end_date (optional, inclusive)
func (h *ReportHandler) GetFleetSummary(c *fiber.Ctx) error {
	window, err := dateWindow(c)
	if err != nil {
		return respondError(c, err)
	}

	summary, err := h.service.FleetSummary(c.UserContext(), window)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

func (h *ReportHandler) GetInventoryReport(c *fiber.Ctx) error {
	rows, err := h.service.InventoryReport(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}

func (h *ReportHandler) GetSalesReport(c *fiber.Ctx) error {
	window, err := dateWindow(c)
	if err != nil {
		return respondError(c, err)
	}

	rows, err := h.service.SalesReport(c.UserContext(), window)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}
