package persistence

import (
	"strings"

	"github.com/rentledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a list query may be ordered by.
// Anything else falls back to the default column.
type sortColumns struct {
	fallback string
	allowed  map[string]struct{}
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	allowed := make(map[string]struct{}, len(columns)+1)
	allowed[fallback] = struct{}{}
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return sortColumns{fallback: fallback, allowed: allowed}
}

var (
	propertySort = newSortColumns("created_at", "id", "updated_at", "name")
	tenantSort   = newSortColumns("created_at", "updated_at", "name", "unit_id", "lease_start", "status")
	invoiceSort  = newSortColumns("sequence", "created_at", "period", "issue_date", "due_date", "total_due", "balance", "status")
	paymentSort  = newSortColumns("paid_at", "created_at", "amount", "period")
)

// order resolves a requested column and direction. Direction is descending
// unless "asc" is asked for.
func (s sortColumns) order(column, dir string) clause.OrderByColumn {
	column = strings.ToLower(strings.TrimSpace(column))
	if _, ok := s.allowed[column]; !ok {
		column = s.fallback
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}

// listPage orders by the filter's sort column and limits to its page.
// A zero page size returns every row.
func listPage(filter shared.Filter, sort sortColumns) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Order(sort.order(filter.OrderBy, filter.OrderDir))
		if filter.PageSize > 0 {
			db = db.Offset(filter.Offset()).Limit(filter.PageSize)
		}
		return db
	}
}
