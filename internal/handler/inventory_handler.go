package handler

import (
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.service.CreateProduct(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product.ToResponse()})
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}

	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), productID, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated.ToResponse()})
}

func (h *InventoryHandler) DeactivateProduct(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}

	if err := h.service.DeactivateProduct(c.UserContext(), productID, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deactivated"})
}

// GetProducts lists products. Query params: category (uuid), low_stock=true, include_inactive=true
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		LowStock:   c.QueryBool("low_stock"),
		ActiveOnly: !c.QueryBool("include_inactive"),
	}
	if raw := c.Query("category"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "Invalid category ID")
		}
		filter.CategoryID = &categoryID
	}

	products, err := h.service.GetProducts(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}

	data := make([]model.ProductResponse, len(products))
	for i := range products {
		data[i] = products[i].ToResponse()
	}
	return c.JSON(data)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}

	product, err := h.service.GetProductByID(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product.ToResponse())
}

func (h *InventoryHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

func (h *InventoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	category, err := h.service.CreateCategory(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Category created", "data": category})
}

func (h *InventoryHandler) UpdateCategory(c *fiber.Ctx) error {
	categoryID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid category ID")
	}

	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	category, err := h.service.UpdateCategory(c.UserContext(), categoryID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category updated", "data": category})
}

func (h *InventoryHandler) DeleteCategory(c *fiber.Ctx) error {
	categoryID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid category ID")
	}

	if err := h.service.DeleteCategory(c.UserContext(), categoryID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}
