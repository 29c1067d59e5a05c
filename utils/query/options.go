package query

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the type query values of a field are parsed into
type Kind int

const (
	String Kind = iota
	Number
	Bool
	Time
)

// Field describes a whitelisted query field
type Field struct {
	Column string
	Kind   Kind
}

// Preload names a relation to populate. Columns restricts the selected
// columns of the related rows; empty means all.
type Preload struct {
	Relation string
	Columns  []string
}

// Options configure advanced results for one resource
type Options struct {
	// Fields maps query names to columns
	Fields map[string]Field
	// AlwaysSelect lists columns kept when select narrows the result
	AlwaysSelect []string
	// DefaultSort is an ORDER BY expression, "created_at DESC" when empty
	DefaultSort string
	Preloads    []Preload
}

func (o Options) defaultSort() string {
	if o.DefaultSort == "" {
		return "created_at DESC"
	}
	return o.DefaultSort
}

// Fields builds a whitelist where every query name equals its column
func Fields(kinds map[string]Kind) map[string]Field {
	fields := make(map[string]Field, len(kinds))
	for name, kind := range kinds {
		fields[name] = Field{Column: name, Kind: kind}
	}
	return fields
}

func (f Field) parse(op Operator, value string) (interface{}, error) {
	if op != OpIn {
		return f.parseOne(value)
	}

	parts := strings.Split(value, ",")
	values := make([]interface{}, 0, len(parts))
	for _, part := range parts {
		v, err := f.parseOne(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (f Field) parseOne(value string) (interface{}, error) {
	switch f.Kind {
	case Number:
		return strconv.ParseFloat(value, 64)
	case Bool:
		return strconv.ParseBool(value)
	case Time:
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", value)
	default:
		return value, nil
	}
}
