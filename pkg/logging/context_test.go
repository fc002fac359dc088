package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/grimoire/pkg/logging"
)

func TestFromContext(t *testing.T) {
	t.Run("default when unset", func(t *testing.T) {
		logger := logging.FromContext(context.Background())
		assert.NotNil(t, logger)
		assert.Equal(t, logging.Default(), logger)
	})

	t.Run("round trip", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(&buf)
		ctx := logging.WithLogger(context.Background(), &logger)
		assert.Equal(t, &logger, logging.FromContext(ctx))
	})
}

func TestWithCollection(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf)
	ctx := logging.WithLogger(context.Background(), &logger)
	ctx = logging.WithCollection(ctx, "user-spellbook")

	logging.FromContext(ctx).Info().Msg("saved")
	assert.Contains(t, buf.String(), `"collection":"user-spellbook"`)
}
