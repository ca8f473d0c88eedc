package handler

import (
	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SaleHandler struct {
	service service.CheckoutService
}

func NewSaleHandler(s service.CheckoutService) *SaleHandler {
	return &SaleHandler{service: s}
}

// CreateSale checks out a cart as the authenticated cashier
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	sale, err := h.service.CreateSale(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Sale completed", "data": sale})
}

// GetSales lists sales newest first. Query params: start_date, end_date (YYYY-MM-DD, inclusive)
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	window, err := dateWindow(c)
	if err != nil {
		return respondError(c, err)
	}

	sales, err := h.service.GetSales(c.UserContext(), window)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sales)
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	saleID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid sale ID")
	}

	sale, err := h.service.GetSaleByID(c.UserContext(), saleID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}
