package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeString(t *testing.T) {
	tests := map[string]struct {
		in  string
		out string
	}{
		"plain":        {"  Devworks Bootcamp ", "Devworks Bootcamp"},
		"null bytes":   {"Dev\x00works", "Devworks"},
		"tags":         {"<b>Full</b> stack <i>web</i>", "Full stack web"},
		"script":       {"hello<script>alert('x')</script> world", "hello world"},
		"entity":       {"R&amp;D", "R&D"},
		"comparison":   {"5 < 6", "5 < 6"},
		"nested style": {"<div><style>p{}</style>text</div>", "text"},
	}

	for name, tt := range tests {
		assert.Equal(t, tt.out, SanitizeString(tt.in), "%s - invalid sanitized value", name)
	}
}

type sample struct {
	Name   string `json:"name" validate:"required,max=5"`
	Rating int    `json:"rating" validate:"required,min=1,max=10"`
	Skill  string `json:"minimum_skill" validate:"omitempty,oneof=beginner intermediate advanced"`
}

func TestMessageUsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(sample{Name: "too long name", Rating: 11, Skill: "guru"})
	require.Error(t, err)

	formatted := FormatValidationErrors(err)
	assert.Contains(t, formatted, "name")
	assert.Contains(t, formatted, "rating")
	assert.Contains(t, formatted, "minimum_skill")

	assert.Equal(t,
		"minimum_skill must be one of beginner intermediate advanced, name can not be more than 5, rating can not be more than 10",
		Message(err),
	)
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("john@gmail.com"))
	assert.False(t, ValidateEmail("john@"))
	assert.False(t, ValidateEmail("a"))
}
