package handler

import (
	"github.com/gin-gonic/gin"

	"wms/internal/authz"
	"wms/internal/middleware"
	"wms/internal/model"
	"wms/internal/service"
)

// InventoryHandler serves per-item stock. Every committed change is also
// pushed to /ws watchers by the service.
type InventoryHandler struct {
	crud[model.Inventory]
	auth *middleware.Authenticator
}

func NewInventoryHandler(inventoryService service.InventoryService, auth *middleware.Authenticator) *InventoryHandler {
	return &InventoryHandler{crud: crud[model.Inventory]{svc: inventoryService, name: "inventory"}, auth: auth}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inv := router.Group("/api/inventory")
	{
		inv.GET("", h.auth.Require(authz.InventoryList), h.ListInventory)
		inv.GET("/:id", h.auth.Require(authz.InventoryView), h.GetInventory)
		inv.POST("", h.auth.Require(authz.InventoryCreate), h.CreateInventory)
		inv.PUT("/:id", h.auth.Require(authz.InventoryUpdate), h.UpdateInventory)
		inv.DELETE("/:id", h.auth.Require(authz.InventoryDelete), h.DeleteInventory)
	}
}

// ListInventory
// @Summary      List inventory
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=model.Page[model.Inventory]}
// @Router       /api/inventory [get]
func (h *InventoryHandler) ListInventory(c *gin.Context) { h.list(c) }

// GetInventory
// @Summary      Get inventory record
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Inventory ID"
// @Success      200  {object}  response.Response{data=model.Inventory}
// @Failure      404  {object}  response.Response
// @Router       /api/inventory/{id} [get]
func (h *InventoryHandler) GetInventory(c *gin.Context) { h.get(c) }

// CreateInventory stores stock for an item. The total is recomputed from locations.
// @Summary      Create inventory record
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.Inventory  true  "Inventory"
// @Success      201      {object}  response.Response{data=model.Inventory}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/inventory [post]
func (h *InventoryHandler) CreateInventory(c *gin.Context) { h.create(c) }

// UpdateInventory
// @Summary      Update inventory record
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int              true  "Inventory ID"
// @Param        payload  body      model.Inventory  true  "Inventory"
// @Success      202      {object}  response.Response{data=model.Inventory}
// @Failure      400      {object}  response.Response
// @Router       /api/inventory/{id} [put]
func (h *InventoryHandler) UpdateInventory(c *gin.Context) { h.update(c) }

// DeleteInventory
// @Summary      Delete inventory record
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Inventory ID"
// @Success      202  {object}  response.Response
// @Router       /api/inventory/{id} [delete]
func (h *InventoryHandler) DeleteInventory(c *gin.Context) { h.remove(c) }
