package handler

import (
	"github.com/gin-gonic/gin"

	"wms/internal/authz"
	"wms/internal/middleware"
	"wms/internal/model"
	"wms/internal/service"
)

type AccountHandler struct {
	crud[model.Account]
	auth *middleware.Authenticator
}

func NewAccountHandler(accountService service.AccountService, auth *middleware.Authenticator) *AccountHandler {
	return &AccountHandler{crud: crud[model.Account]{svc: accountService, name: "account"}, auth: auth}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup.
// View, update and delete are also open to the account owner.
func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup) {
	accounts := router.Group("/api/accounts")
	{
		accounts.GET("", h.auth.Require(authz.AccountList), h.ListAccounts)
		accounts.GET("/:id", h.auth.Require(authz.AccountView), h.GetAccount)
		accounts.POST("", h.auth.Require(authz.AccountCreate), h.CreateAccount)
		accounts.PUT("/:id", h.auth.Require(authz.AccountUpdate), h.UpdateAccount)
		accounts.DELETE("/:id", h.auth.Require(authz.AccountDelete), h.DeleteAccount)
	}
}

// ListAccounts returns a page of accounts
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=model.Page[model.Account]}
// @Failure      403    {object}  response.Response
// @Router       /api/accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) { h.list(c) }

// GetAccount returns one account
// @Summary      Get account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account ID"
// @Success      200  {object}  response.Response{data=model.Account}
// @Failure      404  {object}  response.Response
// @Router       /api/accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) { h.get(c) }

// CreateAccount registers a new account, hashing its password
// @Summary      Create account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.Account  true  "Account"
// @Success      201      {object}  response.Response{data=model.Account}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) { h.create(c) }

// UpdateAccount replaces an account. Only admins may change role or active.
// @Summary      Update account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int            true  "Account ID"
// @Param        payload  body      model.Account  true  "Account"
// @Success      202      {object}  response.Response{data=model.Account}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) { h.update(c) }

// DeleteAccount soft-deletes an account
// @Summary      Delete account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account ID"
// @Success      202  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) { h.remove(c) }
