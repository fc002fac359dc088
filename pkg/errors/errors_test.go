package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/agentstation/grimoire/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "spell",
			ID:       "acid-arrow",
		}
		assert.Equal(t, "spell with ID acid-arrow not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewNotFoundError("class", "wizard")
		assert.Equal(t, "class with ID wizard not found", err.Error())
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}

func TestAPIError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := pkgerrors.NewAPIError("/spells/fireball", 404, "no such spell")
		assert.Contains(t, err.Error(), "/spells/fireball")
		assert.Contains(t, err.Error(), "404")
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("rate limited", func(t *testing.T) {
		err := pkgerrors.NewAPIError("/classes", 429, "slow down")
		assert.True(t, pkgerrors.IsRateLimited(err))
	})

	t.Run("server error maps to upstream unavailable", func(t *testing.T) {
		err := pkgerrors.NewAPIError("/classes", 503, "maintenance")
		assert.True(t, pkgerrors.IsUpstreamUnavailable(err))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := errors.New("connection refused")
		err := pkgerrors.WrapAPI("/spells", 0, base)
		assert.True(t, errors.Is(err, base))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "level",
			Value:   12,
			Message: "must be between 0 and 9",
		}
		assert.Equal(t, "validation failed for field level: must be between 0 and 9", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid spell"}
		assert.Equal(t, "validation failed: invalid spell", err.Error())
	})
}

func TestAssemblyError(t *testing.T) {
	err := pkgerrors.NewAssemblyError(0, 0, "no spellcasting classes discovered")
	assert.Contains(t, err.Error(), "no spellcasting classes discovered")
	assert.True(t, pkgerrors.IsAssemblyError(err))
	assert.False(t, pkgerrors.IsAssemblyError(errors.New("plain")))
}

func TestStorageError(t *testing.T) {
	base := errors.New("disk full")
	err := pkgerrors.NewStorageError("write", "user-spellbook", base)
	assert.Contains(t, err.Error(), "user-spellbook")
	assert.True(t, pkgerrors.IsStorageFailed(err))
	assert.True(t, errors.Is(err, base))
}

func TestWrapHelpers(t *testing.T) {
	t.Run("nil passthrough", func(t *testing.T) {
		assert.Nil(t, pkgerrors.WrapIO("read", "/tmp/x", nil))
		assert.Nil(t, pkgerrors.WrapParse("json", "record", nil))
		assert.Nil(t, pkgerrors.WrapAPI("/spells", 0, nil))
	})

	t.Run("io wrap", func(t *testing.T) {
		base := errors.New("permission denied")
		err := pkgerrors.WrapIO("write", "/data/spellbook.json", base)
		assert.Contains(t, err.Error(), "/data/spellbook.json")
		assert.True(t, errors.Is(err, base))
	})
}
