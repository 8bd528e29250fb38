package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptScanRoundTrip(t *testing.T) {
	transcript := Transcript{
		{Timestamp: "00:00", Text: "intro"},
		{Timestamp: "01:30", Text: "conclusion"},
	}

	value, err := transcript.Value()
	require.NoError(t, err)

	var scanned Transcript
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, transcript, scanned)
}

func TestTranscriptScanNull(t *testing.T) {
	var transcript Transcript
	require.NoError(t, transcript.Scan(nil))
	assert.Nil(t, transcript)

	value, err := transcript.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestComplete(t *testing.T) {
	video := &VideoRecord{}
	assert.False(t, video.Complete())

	// Exactly one derived field is never a valid terminal state.
	video.Transcript = Transcript{{Timestamp: "00:00", Text: "x"}}
	assert.False(t, video.Complete())

	video.Insights = Insights{"an insight"}
	assert.True(t, video.Complete())
}
