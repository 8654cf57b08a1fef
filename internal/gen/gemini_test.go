package gen

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiClientVideoPollSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("configured values carried", func(t *testing.T) {
		c, err := NewGeminiClient(ctx, "test-key", 12, 3*time.Second)
		require.NoError(t, err)
		assert.Equal(t, 12, c.pollAttempts)
		assert.Equal(t, 3*time.Second, c.pollInterval)
	})

	t.Run("non-positive values fall back to defaults", func(t *testing.T) {
		c, err := NewGeminiClient(ctx, "test-key", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 30, c.pollAttempts)
		assert.Equal(t, 10*time.Second, c.pollInterval)
	})

	t.Run("missing key rejected", func(t *testing.T) {
		_, err := NewGeminiClient(ctx, "", 30, 10*time.Second)
		assert.Error(t, err)
	})
}
