package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	c := NewFixed(time.Date(2026, 3, 4, 22, 30, 0, 0, loc))

	assert.Equal(t, time.Date(2026, 3, 5, 3, 30, 0, 0, time.UTC), c.Now())
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), Today(c))
}

func TestSystem(t *testing.T) {
	now := NewSystem().Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}
