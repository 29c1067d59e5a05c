package query

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
)

// Reserved query keys that control the result shape instead of filtering
const (
	KeySelect = "select"
	KeySort   = "sort"
	KeyPage   = "page"
	KeyLimit  = "limit"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 100
	// MaxPage keeps the row offset representable
	MaxPage = math.MaxInt32
)

// Operator is a comparison accepted in a bracketed filter key
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

var sqlOperators = map[Operator]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
	OpIn:  "IN",
}

// Filter is one parsed where clause
type Filter struct {
	Column   string
	Operator Operator
	Value    interface{}
}

// Params is the parsed form of a list request
type Params struct {
	Filters []Filter
	Select  []string
	Sort    []string
	Page    int
	Limit   int
}

// Offset returns the number of rows skipped before the current page
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// RawParams collects the query string of c. A key given more than once keeps
// its last value.
func RawParams(c *fiber.Ctx) map[string]string {
	raw := make(map[string]string)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		raw[string(key)] = string(value)
	})
	return raw
}

// Parse turns raw query values into Params using the field whitelist of opts.
// Keys naming unknown fields or operators are ignored.
func Parse(raw map[string]string, opts Options) (Params, error) {
	params := Params{Page: DefaultPage, Limit: DefaultLimit}

	for key, value := range raw {
		switch key {
		case KeySelect, KeySort, KeyPage, KeyLimit:
			continue
		}

		name, op, ok := splitKey(key)
		if !ok {
			continue
		}
		field, ok := opts.Fields[name]
		if !ok {
			continue
		}

		parsed, err := field.parse(op, value)
		if err != nil {
			return Params{}, apperror.BadRequest("Invalid value for %s: %s", name, value)
		}
		params.Filters = append(params.Filters, Filter{Column: field.Column, Operator: op, Value: parsed})
	}

	if value, ok := raw[KeySelect]; ok {
		params.Select = selectColumns(value, opts)
	}

	params.Sort = sortColumns(raw[KeySort], opts)

	if value, ok := raw[KeyPage]; ok {
		page, err := strconv.Atoi(value)
		if err != nil || page < 1 || page > MaxPage {
			return Params{}, apperror.BadRequest("Invalid page: %s", value)
		}
		params.Page = page
	}

	if value, ok := raw[KeyLimit]; ok {
		limit, err := strconv.Atoi(value)
		if err != nil || limit < 1 {
			return Params{}, apperror.BadRequest("Invalid limit: %s", value)
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		params.Limit = limit
	}

	return params, nil
}

// splitKey separates "average_cost[lte]" into its field name and operator
func splitKey(key string) (string, Operator, bool) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq, true
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", false
	}

	op := Operator(key[open+1 : len(key)-1])
	if _, ok := sqlOperators[op]; !ok || op == OpEq {
		return "", "", false
	}
	return key[:open], op, true
}

func selectColumns(value string, opts Options) []string {
	seen := make(map[string]bool)
	var columns []string
	add := func(column string) {
		if !seen[column] {
			seen[column] = true
			columns = append(columns, column)
		}
	}

	for _, column := range opts.AlwaysSelect {
		add(column)
	}
	requested := 0
	for _, name := range strings.Split(value, ",") {
		field, ok := opts.Fields[strings.TrimSpace(name)]
		if !ok {
			continue
		}
		requested++
		add(field.Column)
	}

	if requested == 0 {
		return nil
	}
	return columns
}

func sortColumns(value string, opts Options) []string {
	var order []string
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimSpace(name)
		desc := strings.HasPrefix(name, "-")
		name = strings.TrimPrefix(name, "-")

		field, ok := opts.Fields[name]
		if !ok {
			continue
		}
		if desc {
			order = append(order, field.Column+" DESC")
		} else {
			order = append(order, field.Column+" ASC")
		}
	}

	if len(order) == 0 {
		return []string{opts.defaultSort()}
	}
	return order
}
