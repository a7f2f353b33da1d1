package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusOf(NotFound("workflow")))
	assert.Equal(t, http.StatusForbidden, StatusOf(Forbidden("nope")))
	assert.Equal(t, http.StatusBadRequest, StatusOf(BadRequest("bad input")))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(Unauthorized("who are you")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}

func TestStatusOf_WrappedChain(t *testing.T) {
	inner := NotFound("template")
	wrapped := fmt.Errorf("resolving steps: %w", inner)
	assert.Equal(t, http.StatusNotFound, StatusOf(wrapped))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed")
	err := Wrap(cause, BadRequest("decision already recorded for this step"))

	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "decision already recorded")
	assert.Contains(t, err.Error(), "UNIQUE constraint")
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "workflow not found", NotFound("workflow").Error())
	assert.Equal(t, "no step 3 in workflow", NotFoundf("no step %d in workflow", 3).Error())
	assert.Equal(t, "cannot submit a workflow in approved status",
		BadRequestf("cannot submit a workflow in %s status", "approved").Error())
}
