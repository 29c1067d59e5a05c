package query

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/utils/response"
	"gorm.io/gorm"
)

const localsKey = "advancedResults"

// Results is one page of a list request
type Results struct {
	Count      int
	Total      int64
	Pagination response.Pagination
	Data       interface{}
}

// Run applies params to the table of T and loads the requested page
func Run[T any](ctx context.Context, db *gorm.DB, params Params, opts Options) (*Results, error) {
	base := db.WithContext(ctx).Model(new(T))
	for _, f := range params.Filters {
		if f.Operator == OpIn {
			base = base.Where(fmt.Sprintf("%s IN ?", f.Column), f.Value)
			continue
		}
		base = base.Where(fmt.Sprintf("%s %s ?", f.Column, sqlOperators[f.Operator]), f.Value)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}

	find := base
	if len(params.Select) > 0 {
		find = find.Select(params.Select)
	}
	for _, order := range params.Sort {
		find = find.Order(order)
	}
	for _, p := range opts.Preloads {
		find = withPreload(find, p)
	}

	rows := make([]T, 0)
	if err := find.Offset(params.Offset()).Limit(params.Limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find rows: %w", err)
	}

	return &Results{
		Count:      len(rows),
		Total:      total,
		Pagination: response.CalculatePagination(params.Page, params.Limit, total),
		Data:       rows,
	}, nil
}

func withPreload(tx *gorm.DB, p Preload) *gorm.DB {
	if len(p.Columns) == 0 {
		return tx.Preload(p.Relation)
	}
	columns := p.Columns
	return tx.Preload(p.Relation, func(db *gorm.DB) *gorm.DB {
		return db.Select(columns)
	})
}

// AdvancedResults is a middleware computing filtered, sorted and paginated
// results of T for the list handler that follows it.
func AdvancedResults[T any](db *gorm.DB, opts Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params, err := Parse(RawParams(c), opts)
		if err != nil {
			return err
		}

		results, err := Run[T](c.UserContext(), db, params, opts)
		if err != nil {
			return err
		}

		c.Locals(localsKey, results)
		return c.Next()
	}
}

// FromContext returns the results stored by AdvancedResults
func FromContext(c *fiber.Ctx) (*Results, bool) {
	results, ok := c.Locals(localsKey).(*Results)
	return results, ok
}

// Respond writes the results stored by AdvancedResults
func Respond(c *fiber.Ctx) error {
	results, ok := FromContext(c)
	if !ok {
		return fmt.Errorf("advanced results missing for %s", c.Path())
	}
	return response.Paginated(c, results.Data, results.Count, results.Pagination)
}
