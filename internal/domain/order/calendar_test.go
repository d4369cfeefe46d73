package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCalendar_RejectsBadDate(t *testing.T) {
	_, err := NewCalendar([]string{"01-05-2026"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "01-05-2026")
}

func TestCalendarClosed(t *testing.T) {
	cal, err := NewCalendar([]string{"2026-12-25", "2026-01-01"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		at     time.Time
		closed bool
	}{
		{
			name:   "weekday",
			at:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), // Monday
			closed: false,
		},
		{
			name:   "sunday",
			at:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			closed: true,
		},
		{
			name:   "holiday",
			at:     time.Date(2026, 12, 25, 10, 0, 0, 0, time.UTC), // Friday
			closed: true,
		},
		{
			name:   "saturday",
			at:     time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC),
			closed: false,
		},
		{
			// 23:30 Saturday in UTC-2 is already Sunday in UTC.
			name:   "local saturday is utc sunday",
			at:     time.Date(2026, 2, 28, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600)),
			closed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.closed, cal.Closed(tt.at))
		})
	}
}
