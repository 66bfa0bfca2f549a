package cloud

import (
	"testing"

	"github.com/arnold/daily-challenges-api/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestClient_GatesUntilInit(t *testing.T) {
	c := New(logging.Discard())

	assert.False(t, c.Initialized())

	_, err := c.Firestore()
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = c.Messaging()
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Shutdown())
}
