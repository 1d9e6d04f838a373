package lgdate

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
)

func TestFormatUsesLocation(t *testing.T) {
	cairo, err := time.LoadLocation("Africa/Cairo")
	require.NoError(t, err)

	// 23:30 UTC is already the next day in Cairo.
	instant := time.Date(2025, time.March, 4, 23, 30, 0, 0, time.UTC)
	require.Equal(t, "04-Mar-2025", Format(instant, time.UTC))
	require.Equal(t, "05-Mar-2025", Format(instant, cairo))
	require.Equal(t, "04-Mar-2025", Format(instant, nil))
}

func TestToday(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, time.January, 9, 8, 0, 0, 0, time.UTC) }
	require.Equal(t, "09-Jan-2025", Today(clock, time.UTC))
}

func TestParseAcceptedLayouts(t *testing.T) {
	want := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"05-Mar-2025", "05/Mar/2025", "2025-03-05", " 5-Mar-2025 "} {
		got, err := Parse(in)
		require.NoError(t, err, in)
		require.True(t, want.Equal(got), in)
	}

	_, err := Parse("March fifth")
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "05-Mar-2025", Normalize("2025-03-05"))
	require.Equal(t, "", Normalize("  "))
	require.Equal(t, "soon", Normalize(" soon "))
}
