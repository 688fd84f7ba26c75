package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	at := time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC)
	c := Fixed(at)

	assert.True(t, c.Now().Equal(at))
	assert.True(t, c.Now().Equal(c.Now()))
}

func TestSystemAdvances(t *testing.T) {
	before := time.Now()
	got := System.Now()

	assert.False(t, got.Before(before))
	assert.WithinDuration(t, time.Now(), got, time.Second)
}
