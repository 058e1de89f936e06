package handler

import (
	"github.com/gin-gonic/gin"

	"wms/internal/authz"
	"wms/internal/middleware"
	"wms/internal/model"
	"wms/internal/service"
)

type ItemHandler struct {
	crud[model.Item]
	auth *middleware.Authenticator
}

func NewItemHandler(itemService service.ItemService, auth *middleware.Authenticator) *ItemHandler {
	return &ItemHandler{crud: crud[model.Item]{svc: itemService, name: "item"}, auth: auth}
}

func (h *ItemHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/api/items")
	{
		items.GET("", h.auth.Require(authz.ItemList), h.ListItems)
		items.GET("/:id", h.auth.Require(authz.ItemView), h.GetItem)
		items.POST("", h.auth.Require(authz.ItemCreate), h.CreateItem)
		items.PUT("/:id", h.auth.Require(authz.ItemUpdate), h.UpdateItem)
		items.DELETE("/:id", h.auth.Require(authz.ItemDelete), h.DeleteItem)
	}
}

// ListItems returns a page of catalogued items
// @Summary      List items
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=model.Page[model.Item]}
// @Router       /api/items [get]
func (h *ItemHandler) ListItems(c *gin.Context) { h.list(c) }

// GetItem
// @Summary      Get item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  response.Response{data=model.Item}
// @Failure      404  {object}  response.Response
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetItem(c *gin.Context) { h.get(c) }

// CreateItem
// @Summary      Create item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.Item  true  "Item"
// @Success      201      {object}  response.Response{data=model.Item}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/items [post]
func (h *ItemHandler) CreateItem(c *gin.Context) { h.create(c) }

// UpdateItem
// @Summary      Update item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int         true  "Item ID"
// @Param        payload  body      model.Item  true  "Item"
// @Success      202      {object}  response.Response{data=model.Item}
// @Failure      400      {object}  response.Response
// @Router       /api/items/{id} [put]
func (h *ItemHandler) UpdateItem(c *gin.Context) { h.update(c) }

// DeleteItem
// @Summary      Delete item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Item ID"
// @Success      202  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) DeleteItem(c *gin.Context) { h.remove(c) }

type BoxHandler struct {
	crud[model.Box]
	auth *middleware.Authenticator
}

func NewBoxHandler(boxService service.BoxService, auth *middleware.Authenticator) *BoxHandler {
	return &BoxHandler{crud: crud[model.Box]{svc: boxService, name: "box"}, auth: auth}
}

func (h *BoxHandler) RegisterRoutes(router *gin.RouterGroup) {
	boxes := router.Group("/api/boxes")
	{
		boxes.GET("", h.auth.Require(authz.BoxList), h.ListBoxes)
		boxes.GET("/:id", h.auth.Require(authz.BoxView), h.GetBox)
		boxes.POST("", h.auth.Require(authz.BoxCreate), h.CreateBox)
		boxes.PUT("/:id", h.auth.Require(authz.BoxUpdate), h.UpdateBox)
		boxes.DELETE("/:id", h.auth.Require(authz.BoxDelete), h.DeleteBox)
	}
}

// ListBoxes
// @Summary      List boxes
// @Tags         boxes
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=model.Page[model.Box]}
// @Router       /api/boxes [get]
func (h *BoxHandler) ListBoxes(c *gin.Context) { h.list(c) }

// GetBox
// @Summary      Get box
// @Tags         boxes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Box ID"
// @Success      200  {object}  response.Response{data=model.Box}
// @Failure      404  {object}  response.Response
// @Router       /api/boxes/{id} [get]
func (h *BoxHandler) GetBox(c *gin.Context) { h.get(c) }

// CreateBox
// @Summary      Create box
// @Tags         boxes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.Box  true  "Box"
// @Success      201      {object}  response.Response{data=model.Box}
// @Failure      400      {object}  response.Response
// @Router       /api/boxes [post]
func (h *BoxHandler) CreateBox(c *gin.Context) { h.create(c) }

// UpdateBox
// @Summary      Update box
// @Tags         boxes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int        true  "Box ID"
// @Param        payload  body      model.Box  true  "Box"
// @Success      202      {object}  response.Response{data=model.Box}
// @Failure      400      {object}  response.Response
// @Router       /api/boxes/{id} [put]
func (h *BoxHandler) UpdateBox(c *gin.Context) { h.update(c) }

// DeleteBox
// @Summary      Delete box
// @Tags         boxes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Box ID"
// @Success      202  {object}  response.Response
// @Router       /api/boxes/{id} [delete]
func (h *BoxHandler) DeleteBox(c *gin.Context) { h.remove(c) }
