package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseScheduledAt_KSTToUTC(t *testing.T) {
	got, ok := ParseScheduledAt("2026-01-01 09:00:00")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParseScheduledAt_Empty(t *testing.T) {
	_, ok := ParseScheduledAt("")
	assert.False(t, ok)
}

func TestParseScheduledAt_Unparseable(t *testing.T) {
	_, ok := ParseScheduledAt("not-a-date")
	assert.False(t, ok)
}
