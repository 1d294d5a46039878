package merchant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeframeInterval(t *testing.T) {
	for timeframe, want := range map[string]string{
		"week":  "7 days",
		"month": "30 days",
		"year":  "365 days",
	} {
		got, err := timeframeInterval(timeframe)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := timeframeInterval("")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = timeframeInterval("all")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = timeframeInterval("decade")
	assert.Error(t, err)
}
