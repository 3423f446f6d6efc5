package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowIsUTCMicroseconds(t *testing.T) {
	now := New().Now()

	assert.Equal(t, time.UTC, now.Location())
	assert.Zero(t, now.Nanosecond()%int(time.Microsecond))
}
