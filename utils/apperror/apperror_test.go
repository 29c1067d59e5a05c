package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := map[string]struct {
		err    *Error
		status int
	}{
		"not found":    {NotFound("Bootcamp not found with id of %d", 1), http.StatusNotFound},
		"conflict":     {Conflict("already published"), http.StatusBadRequest},
		"forbidden":    {Forbidden("not yours"), http.StatusForbidden},
		"unauthorized": {Unauthorized("no token"), http.StatusUnauthorized},
		"validation":   {Validation("bad"), http.StatusBadRequest},
		"bad request":  {BadRequest("Please upload a file"), http.StatusBadRequest},
		"internal":     {Internal(errors.New("disk full"), "Problem with file upload"), http.StatusInternalServerError},
	}

	for name, tt := range tests {
		assert.Equal(t, tt.status, tt.err.Status(), "%s - invalid status", name)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("upload: %w", Internal(cause, "Problem with file upload"))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, "Problem with file upload: disk full", Internal(cause, "Problem with file upload").Error())
}
