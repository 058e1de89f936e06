package handler

import (
	"github.com/gin-gonic/gin"

	"wms/internal/authz"
	"wms/internal/middleware"
	"wms/internal/model"
	"wms/internal/service"
)

type OrderHandler struct {
	crud[model.Order]
	auth *middleware.Authenticator
}

func NewOrderHandler(orderService service.OrderService, auth *middleware.Authenticator) *OrderHandler {
	return &OrderHandler{crud: crud[model.Order]{svc: orderService, name: "order"}, auth: auth}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/api/orders")
	{
		orders.GET("", h.auth.Require(authz.OrderList), h.ListOrders)
		orders.GET("/:id", h.auth.Require(authz.OrderView), h.GetOrder)
		orders.POST("", h.auth.Require(authz.OrderCreate), h.CreateOrder)
		orders.PUT("/:id", h.auth.Require(authz.OrderUpdate), h.UpdateOrder)
		orders.DELETE("/:id", h.auth.Require(authz.OrderDelete), h.DeleteOrder)
	}
}

// ListOrders
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=model.Page[model.Order]}
// @Router       /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) { h.list(c) }

// GetOrder
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order ID"
// @Success      200  {object}  response.Response{data=model.Order}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) { h.get(c) }

// CreateOrder places an order. Customers always order for themselves.
// @Summary      Create order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.Order  true  "Order"
// @Success      201      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) { h.create(c) }

// UpdateOrder
// @Summary      Update order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int          true  "Order ID"
// @Param        payload  body      model.Order  true  "Order"
// @Success      202      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) { h.update(c) }

// DeleteOrder
// @Summary      Delete order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order ID"
// @Success      202  {object}  response.Response
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) { h.remove(c) }
