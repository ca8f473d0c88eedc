package handler

import (
	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LedgerHandler struct {
	service service.LedgerService
}

func NewLedgerHandler(s service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: s}
}

func (h *LedgerHandler) CreateTransaction(c *fiber.Ctx) error {
	var req service.ApplyTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	entry, err := h.service.ApplyTransaction(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Transaction recorded", "data": entry})
}

// Restock books a purchase for the product in the path
func (h *LedgerHandler) Restock(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}

	var req service.RestockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	req.ProductID = productID

	product, err := h.service.Restock(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Stock updated", "data": product.ToResponse()})
}

// GetTransactions lists the ledger newest first. Query params: product (uuid)
func (h *LedgerHandler) GetTransactions(c *fiber.Ctx) error {
	var productID *uuid.UUID
	if raw := c.Query("product"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "Invalid product ID")
		}
		productID = &id
	}

	transactions, err := h.service.GetTransactions(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}

func (h *LedgerHandler) GetTransaction(c *fiber.Ctx) error {
	txID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid transaction ID")
	}

	tx, err := h.service.GetTransactionByID(c.UserContext(), txID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tx)
}
