package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Disabled(t *testing.T) {
	client, err := New(context.Background(), Config{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestNew_InvalidURL(t *testing.T) {
	client, err := New(context.Background(), Config{URL: "http://not-redis"})
	assert.ErrorContains(t, err, "parse redis URL")
	assert.Nil(t, client)
}

func TestConfig_Timeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, Config{}.Timeout())
	assert.Equal(t, 2*time.Second, Config{TimeoutSeconds: 2}.Timeout())
}
