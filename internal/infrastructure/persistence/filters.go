package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
)

// allowedSortColumns guards ORDER BY input; anything else falls back to
// created_at
var allowedSortColumns = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"title":       true,
	"name":        true,
	"sku":         true,
	"brand":       true,
	"final_price": true,
	"stock":       true,
	"position":    true,
	"number":      true,
	"started_at":  true,
	"synced_at":   true,
}

// applyPagination applies offset/limit from the base filter
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

// applyOrdering applies a validated ORDER BY clause
func applyOrdering(query *gorm.DB, filter shared.Filter, fallback string) *gorm.DB {
	column := filter.OrderBy
	if !allowedSortColumns[column] {
		column = fallback
	}
	direction := "ASC"
	if strings.EqualFold(filter.OrderDir, "desc") {
		direction = "DESC"
	}
	return query.Order(column + " " + direction)
}
