package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunoffErrorsCollapse(t *testing.T) {
	for _, err := range []error{ErrRunoffNotFound, ErrRunoffNotPending, ErrRunoffNotActive} {
		wrapped := fmt.Errorf("runoff 7: %w", err)
		assert.ErrorIs(t, wrapped, ErrRunoffUnavailable)
		assert.ErrorIs(t, wrapped, err)
	}
	assert.False(t, errors.Is(ErrRunoffNotFound, ErrRunoffNotActive))
	assert.False(t, errors.Is(ErrInvalidRunoffCandidate, ErrRunoffUnavailable))
}
