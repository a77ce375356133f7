package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTraffic = `[00:14] Engine 3 on scene, two-story wood frame, smoke showing.
[01:02] Command to dispatch, strike a second alarm.
[12:45] Interior to Command, water on the fire.`

func TestMarkers(t *testing.T) {
	tr := &Transcript{Text: sampleTraffic}
	markers := tr.Markers()
	require.Len(t, markers, 3)
	assert.Equal(t, 14, markers[0].Seconds)
	assert.Equal(t, 62, markers[1].Seconds)
	assert.Equal(t, 765, markers[2].Seconds)
	assert.Equal(t, "[12:45]", markers[2].Raw)
}

func TestMarkers_NoMarkers(t *testing.T) {
	tr := &Transcript{Text: "unstamped traffic"}
	assert.Empty(t, tr.Markers())
	assert.Equal(t, 0, tr.Duration())
}

func TestDuration(t *testing.T) {
	tr := &Transcript{Text: sampleTraffic}
	assert.Equal(t, 765, tr.Duration())
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("04:32")
	require.NoError(t, err)
	assert.Equal(t, 272, got)

	got, err = ParseTimestamp("[12:05]")
	require.NoError(t, err)
	assert.Equal(t, 725, got)

	_, err = ParseTimestamp("noon")
	require.Error(t, err)
}
