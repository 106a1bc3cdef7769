package coursegrab_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/coursegrab"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := coursegrab.Errorf(coursegrab.ENAVTIMEOUT, "page %q did not load", "modules")

	assert.Equal(t, coursegrab.ENAVTIMEOUT, coursegrab.ErrorCode(err))
	assert.Equal(t, "page \"modules\" did not load", coursegrab.ErrorMessage(err))
}

func TestErrorCode_Wrapped(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("visit: %w", coursegrab.Errorf(coursegrab.ETABLOST, "tab closed"))

	assert.Equal(t, coursegrab.ETABLOST, coursegrab.ErrorCode(err))
	assert.Equal(t, "tab closed", coursegrab.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, coursegrab.EINTERNAL, coursegrab.ErrorCode(err))
	assert.Equal(t, "Internal error.", coursegrab.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, coursegrab.ErrorCode(nil))
	assert.Empty(t, coursegrab.ErrorMessage(nil))
}
