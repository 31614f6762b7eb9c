package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-directory/internal/query"
	"github.com/iliyamo/user-directory/internal/service"
)

// AccountHandler exposes the admin directory endpoints.
type AccountHandler struct {
	Accounts *service.AccountService
}

func NewAccountHandler(a *service.AccountService) *AccountHandler {
	return &AccountHandler{Accounts: a}
}

// List: paginated, sortable, searchable account directory.  Query parameters
// arrive as raw strings and are normalized by the service; nothing here can
// make the call fail on malformed input.  The response is the serialized
// pagination envelope, identical whether it came from cache or the database.
func (h *AccountHandler) List(c echo.Context) error {
	opts := query.Options{
		Page:   c.QueryParam("page"),
		Limit:  c.QueryParam("limit"),
		Sort:   c.QueryParam("sort"),
		Order:  c.QueryParam("order"),
		Search: c.QueryParam("search"),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	payload, err := h.Accounts.List(ctx, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list accounts failed"})
	}
	return c.JSONBlob(http.StatusOK, payload)
}

// Delete: soft-delete an account by id.  The record keeps its tombstone and
// vanishes from lookups and listings.
func (h *AccountHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete account failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
