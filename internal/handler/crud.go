package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wms/internal/logger"
	"wms/internal/middleware"
	"wms/internal/model"
	"wms/internal/service"
	"wms/internal/token"
	"wms/pkg/pagination"
	"wms/pkg/response"
)

// entityService is the CRUD surface every warehouse service exposes.
type entityService[T any] interface {
	Create(ctx context.Context, actor token.Identity, in T) (*T, error)
	Get(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, page, limit int) (model.Page[T], error)
	Update(ctx context.Context, actor token.Identity, id int64, in T) (*T, error)
	Delete(ctx context.Context, actor token.Identity, id int64) error
}

// crud implements the request plumbing shared by entity handlers:
// POST 201, GET 200, PUT 202, DELETE 202.
type crud[T any] struct {
	svc  entityService[T]
	name string
}

func (h crud[T]) list(c *gin.Context) {
	p := pagination.Parse(c)
	page, err := h.svc.List(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

func (h crud[T]) get(c *gin.Context) {
	id, ok := pathID(c, h.name)
	if !ok {
		return
	}
	out, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, out))
}

func (h crud[T]) create(c *gin.Context) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	out, err := h.svc.Create(c.Request.Context(), middleware.Identity(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, out))
}

func (h crud[T]) update(c *gin.Context) {
	id, ok := pathID(c, h.name)
	if !ok {
		return
	}
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	out, err := h.svc.Update(c.Request.Context(), middleware.Identity(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, response.Success(http.StatusAccepted, out))
}

func (h crud[T]) remove(c *gin.Context) {
	id, ok := pathID(c, h.name)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.Identity(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, response.Success(http.StatusAccepted, gin.H{"id": id}))
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid "+name+" ID"))
		return 0, false
	}
	return id, true
}

// respondError maps service errors onto status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.From(c.Request.Context()).Error("request failed", zap.Error(err))
		msg = "Internal server error"
	}
	c.JSON(status, response.Error(status, msg))
}
