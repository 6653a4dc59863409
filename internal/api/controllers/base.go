package controllers

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"contentos/internal/api/middleware"
	"contentos/internal/services"
)

// BaseController provides generic CRUD handlers for any workspace-scoped
// model. Every query is filtered to the caller's workspace; on create the
// workspace id from the token overrides whatever the body claims.
type BaseController[T any] struct {
	service services.BaseService[T]
}

// NewBaseController creates a new base controller
func NewBaseController[T any](service services.BaseService[T]) *BaseController[T] {
	return &BaseController[T]{
		service: service,
	}
}

// parseIncludes parses the include query parameter and returns a slice of relationships to preload
func parseIncludes(ctx echo.Context) []string {
	include := ctx.QueryParam("include")
	if include == "" {
		return nil
	}
	return strings.Split(include, ",")
}

// scope returns the tenant filter for this request. Models without a
// WorkspaceID column (none registered today) get an empty scope.
func scope[T any](ctx echo.Context) map[string]interface{} {
	var entity T
	if _, found := reflect.TypeOf(entity).FieldByName("WorkspaceID"); found {
		return map[string]interface{}{"workspace_id": middleware.GetWorkspaceID(ctx)}
	}
	return map[string]interface{}{}
}

// stampWorkspace forces the entity's WorkspaceID to the caller's workspace.
func stampWorkspace[T any](ctx echo.Context, entity *T) {
	field := reflect.ValueOf(entity).Elem().FieldByName("WorkspaceID")
	if field.IsValid() && field.Kind() == reflect.String {
		field.SetString(middleware.GetWorkspaceID(ctx))
	}
}

// Create handles creation of new entities
func (c *BaseController[T]) Create(ctx echo.Context) error {
	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body "+err.Error())
	}

	stampWorkspace(ctx, &entity)

	if err := ctx.Validate(&entity); err != nil {
		return err
	}

	includes := parseIncludes(ctx)
	if err := c.service.Create(ctx.Request().Context(), &entity, includes...); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusCreated, entity)
}

// Get handles retrieval of a single entity
func (c *BaseController[T]) Get(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}
	includes := parseIncludes(ctx)
	entity, err := c.service.Get(ctx.Request().Context(), scope[T](ctx), id, includes...)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "entity not found")
	}

	return ctx.JSON(http.StatusOK, entity)
}

// List handles retrieval of multiple entities with pagination
func (c *BaseController[T]) List(ctx echo.Context) error {
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	requestScope := scope[T](ctx)

	// Column filters from query parameters, restricted to real fields.
	var entity T
	entityType := reflect.TypeOf(entity)
	for key, values := range ctx.QueryParams() {
		if key == "page" || key == "limit" || key == "include" || key == "sort" || key == "order" || len(values) == 0 {
			continue
		}
		for i := 0; i < entityType.NumField(); i++ {
			jsonName := strings.SplitN(entityType.Field(i).Tag.Get("json"), ",", 2)[0]
			if jsonName == key {
				column := toSnakeCase(entityType.Field(i).Name)
				requestScope[column] = values[0]
				break
			}
		}
	}

	sortField := ctx.QueryParam("sort")
	order := ctx.QueryParam("order")
	includes := parseIncludes(ctx)

	entities, total, err := c.service.List(ctx.Request().Context(), requestScope, page, limit, sortField, order, includes...)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"data":  entities,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Update handles updating an existing entity
func (c *BaseController[T]) Update(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	stampWorkspace(ctx, &entity)

	includes := parseIncludes(ctx)
	if err := c.service.Update(ctx.Request().Context(), scope[T](ctx), id, &entity, includes...); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusOK, entity)
}

// Delete handles deletion of an entity
func (c *BaseController[T]) Delete(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	if err := c.service.Delete(ctx.Request().Context(), scope[T](ctx), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RegisterRoutes registers CRUD routes for the controller
func (c *BaseController[T]) RegisterRoutes(g *echo.Group, path string, methods ...string) {
	if len(methods) == 0 {
		methods = []string{"POST", "GET", "PUT", "DELETE"}
	}

	for _, method := range methods {
		switch method {
		case "POST":
			g.POST(path, c.Create)
		case "GET":
			g.GET(path+"/:id", c.Get)
			g.GET(path, c.List)
		case "PUT":
			g.PUT(path+"/:id", c.Update)
		case "DELETE":
			g.DELETE(path+"/:id", c.Delete)
		}
	}
}

func toSnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			// New word boundary only after a lowercase rune, so that
			// runs of capitals like "ID" stay together.
			if i > 0 && runes[i-1] >= 'a' && runes[i-1] <= 'z' {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
