package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/dto"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func parseListQuery(c *fiber.Ctx) (dto.ListQuery, error) {
	pageSize := parseInt(c.Query("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	q := dto.ListQuery{
		Page:     parseInt(c.Query("page"), 1),
		PageSize: pageSize,
	}
	if err := dto.Validate(q); err != nil {
		return dto.ListQuery{}, err
	}
	return q, nil
}

func parseProductListQuery(c *fiber.Ctx) (dto.ProductListQuery, error) {
	page, err := parseListQuery(c)
	if err != nil {
		return dto.ProductListQuery{}, err
	}
	return dto.ProductListQuery{
		ListQuery:  page,
		CategoryID: optionalQuery(c, "category_id"),
		OwnerID:    optionalQuery(c, "owner_id"),
		Search:     optionalQuery(c, "search"),
	}, nil
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	return &val
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	// out-of-range input saturates so bounds checks still see it
	if errors.Is(err, strconv.ErrRange) && parsed > 0 {
		return parsed
	}
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func listResponse[T any](items []T, q dto.ListQuery) fiber.Map {
	return fiber.Map{
		"data":      items,
		"page":      q.Page,
		"page_size": q.PageSize,
	}
}
