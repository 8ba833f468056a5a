package internal

import (
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
)

const serialTolerance = 1e-9

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestInstantToSerial(t *testing.T) {
	require.Equal(t, float64(UnixEpochSerial), InstantToSerial(0, 0))
	require.InDelta(t, UnixEpochSerial+1.0/24, InstantToSerial(0, -60), serialTolerance)
	require.InDelta(t, UnixEpochSerial-5.0/24, InstantToSerial(0, 300), serialTolerance)
	require.InDelta(t, UnixEpochSerial+0.5, InstantToSerial(MsPerDay/2, 0), serialTolerance)

	// Whole local minutes are exact.
	require.Equal(t, 45487.75, InstantToSerial(1720976400000, -60))
}

func TestSerialToInstant(t *testing.T) {
	utc := func(float64) int { return 0 }
	require.Equal(t, 0.0, SerialToInstant(UnixEpochSerial, utc))

	var seen float64
	ms := SerialToInstant(UnixEpochSerial+0.5, func(ms float64) int {
		seen = ms
		return -120
	})
	require.Equal(t, float64(MsPerDay/2), seen, "offset must be resolved at the provisional instant")
	require.Equal(t, float64(MsPerDay/2-2*60*MsPerMinute), ms)
}

func TestSerialToTime(t *testing.T) {
	tests := []struct {
		zone   string
		serial float64
		want   time.Time
	}{
		{"Europe/London", 45487.75, time.Date(2024, 7, 14, 18, 0, 0, 0, time.UTC)},
		{"Europe/London", 45307.25, time.Date(2024, 1, 16, 6, 0, 0, 0, time.UTC)},
		{"America/New_York", 45487.75, time.Date(2024, 7, 14, 18, 0, 0, 0, time.UTC)},
		{"Asia/Tokyo", 45307.25, time.Date(2024, 1, 16, 6, 0, 0, 0, time.UTC)},
		{"UTC", UnixEpochSerial, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			loc := mustLoad(t, tt.zone)
			got := SerialToTime(tt.serial, loc)
			require.Equal(t, loc, got.Location())

			// Calendar fields are the serial's wall clock.
			wall := time.Date(got.Year(), got.Month(), got.Day(), got.Hour(), got.Minute(), got.Second(), got.Nanosecond(), time.UTC)
			require.Equal(t, tt.want, wall)

			require.InDelta(t, tt.serial, TimeToSerial(got), serialTolerance)
		})
	}
}

func TestTimeToSerial(t *testing.T) {
	london := mustLoad(t, "Europe/London")
	require.InDelta(t, 45487.75, TimeToSerial(time.Date(2024, 7, 14, 18, 0, 0, 0, london)), serialTolerance)
	require.InDelta(t, 45307.25, TimeToSerial(time.Date(2024, 1, 16, 6, 0, 0, 0, london)), serialTolerance)

	// The same instant has different serials in different zones.
	instant := time.Date(2024, 7, 14, 12, 0, 0, 0, time.UTC)
	require.InDelta(t, 45487.5, TimeToSerial(instant), serialTolerance)
	require.InDelta(t, 45487.5+9.0/24, TimeToSerial(instant.In(mustLoad(t, "Asia/Tokyo"))), serialTolerance)
}

func TestSerialRoundTripAcrossDST(t *testing.T) {
	tests := []struct {
		zone   string
		before time.Time
		after  time.Time
	}{
		// BST starts 2024-03-31 01:00 UTC.
		{"Europe/London", time.Date(2024, 3, 30, 12, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)},
		// BST ends 2024-10-27 01:00 UTC.
		{"Europe/London", time.Date(2024, 10, 26, 9, 30, 0, 0, time.UTC), time.Date(2024, 10, 28, 9, 30, 0, 0, time.UTC)},
		// EDT starts 2024-03-10 02:00 local.
		{"America/New_York", time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC), time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.zone+"/"+tt.before.Format("2006-01-02"), func(t *testing.T) {
			loc := mustLoad(t, tt.zone)
			for _, wall := range []time.Time{tt.before, tt.after} {
				local := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), 0, 0, loc)
				serial := TimeToSerial(local)

				// Wall clock maps to the same fraction of the day on both sides.
				frac := serial - math.Floor(serial)
				wantFrac := (float64(wall.Hour()) + float64(wall.Minute())/60) / 24
				require.InDelta(t, wantFrac, frac, serialTolerance)

				back := SerialToTime(serial, loc)
				require.True(t, local.Equal(back), "SerialToTime(%v) = %v, want %v", serial, back, local)
				require.InDelta(t, serial, TimeToSerial(back), serialTolerance)
			}
		})
	}
}
