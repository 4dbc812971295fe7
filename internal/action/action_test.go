package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	for _, a := range All() {
		got, err := Parse(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
}

func TestParseCodes(t *testing.T) {
	got, err := Parse("action.generate_mobile_traffic")
	require.NoError(t, err)
	assert.Equal(t, GenerateMobileTraffic, got)

	got, err = Parse("action.sleep_top")
	require.NoError(t, err)
	assert.Equal(t, SleepWhileTop, got)
}

func TestParseRejectsUnknown(t *testing.T) {
	for _, code := range []string{"", "sleep_top", "action.fly", "ACTION.CRASH"} {
		a, err := Parse(code)
		assert.ErrorIs(t, err, ErrUnknownAction, code)
		assert.Equal(t, Unknown, a)
	}
	assert.Equal(t, "action.unknown", Unknown.String())
}
