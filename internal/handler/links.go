package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/abdusco/linkbox/internal"
	"github.com/abdusco/linkbox/internal/auth"
	"github.com/abdusco/linkbox/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type LinkHandler struct {
	links *service.LinkService
}

func NewLinkHandler(linkService *service.LinkService) *LinkHandler {
	return &LinkHandler{links: linkService}
}

type CreateLinkRequest struct {
	Title string `json:"title" validate:"required"`
	URL   string `json:"url" validate:"required,httpurl"`
}

type ListLinksQuery struct {
	Page     int `query:"page" validate:"gte=1"`
	PageSize int `query:"page_size" validate:"gte=1,lte=100"`
}

type LinkResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func newLinkResponse(link internal.Link) LinkResponse {
	return LinkResponse{
		ID:        link.ID,
		Title:     link.Title,
		URL:       link.URL,
		CreatedAt: link.CreatedAt,
	}
}

// CreateLink handles POST /api/links
func (h *LinkHandler) CreateLink(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	var req CreateLinkRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	link, err := h.links.CreateLink(c.Request().Context(), user, req.Title, req.URL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create link").SetInternal(err)
	}

	return c.JSON(http.StatusCreated, newLinkResponse(*link))
}

// ListLinks handles GET /api/links?page=&page_size=
func (h *LinkHandler) ListLinks(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	if err := rejectEmptyQueryParams(c, "page", "page_size"); err != nil {
		return err
	}

	q := ListLinksQuery{Page: 1, PageSize: service.DefaultPageSize}
	err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("page_size", &q.PageSize).
		BindError()
	if err != nil {
		return queryBindError(err)
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	page, err := h.links.ListLinks(c.Request().Context(), user, q.Page, q.PageSize)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to list links")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list links").SetInternal(err)
	}

	return c.JSON(http.StatusOK, internal.MapPaginated(page, newLinkResponse))
}

// rejectEmptyQueryParams fails for parameters that are present without a value,
// such as "?page=". The binder would otherwise leave the default in place.
func rejectEmptyQueryParams(c echo.Context, names ...string) error {
	params := c.QueryParams()
	var fields []FieldError
	for _, name := range names {
		values, ok := params[name]
		if ok && (len(values) == 0 || values[0] == "") {
			fields = append(fields, FieldError{Field: name, Message: "value is not a valid integer"})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// queryBindError turns a non-integer query value into a validation failure.
func queryBindError(err error) error {
	var bindErr *echo.BindingError
	if errors.As(err, &bindErr) {
		return &ValidationError{Fields: []FieldError{{
			Field:   bindErr.Field,
			Message: "value is not a valid integer",
		}}}
	}
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters").SetInternal(err)
}
