package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeCountdown(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		departure time.Time
		want      Countdown
	}{
		{"future", now.Add(26*time.Hour + 3*time.Minute + 4*time.Second), Countdown{Days: 1, Hours: 2, Minutes: 3, Seconds: 4}},
		{"sub-second truncates", now.Add(1500 * time.Millisecond), Countdown{Seconds: 1}},
		{"exactly now", now, Countdown{Departed: true}},
		{"past", now.Add(-48 * time.Hour), Countdown{Departed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeCountdown(tt.departure, now))
		})
	}
}

func TestComputeCountdownNeverNegative(t *testing.T) {
	departure := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for offset := -90 * time.Second; offset <= 90*time.Second; offset += 7 * time.Second {
		c := ComputeCountdown(departure, departure.Add(offset))
		assert.GreaterOrEqual(t, c.Days, 0)
		assert.GreaterOrEqual(t, c.Hours, 0)
		assert.GreaterOrEqual(t, c.Minutes, 0)
		assert.GreaterOrEqual(t, c.Seconds, 0)
		assert.Equal(t, offset >= 0, c.Departed, "offset %s", offset)
	}
}

func TestCountdownString(t *testing.T) {
	assert.Equal(t, "departed", Countdown{Departed: true}.String())
	assert.Equal(t, "2d 03h 04m 05s", Countdown{Days: 2, Hours: 3, Minutes: 4, Seconds: 5}.String())
}
