package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadKey_Configured(t *testing.T) {
	want := testKey(t)
	got, err := LoadKey(base64.StdEncoding.EncodeToString(want), false, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadKey_BadEncoding(t *testing.T) {
	_, err := LoadKey("not-base64!!!", false, zap.NewNop())
	assert.Error(t, err)
}

func TestLoadKey_WrongLength(t *testing.T) {
	short := base64.StdEncoding.EncodeToString([]byte("too short"))
	_, err := LoadKey(short, false, zap.NewNop())
	assert.Error(t, err)
}

func TestLoadKey_DemoModeEphemeral(t *testing.T) {
	// stdin is not a terminal under go test, so this exercises the
	// ephemeral branch.
	key, err := LoadKey("", true, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, key, KeyLen)

	other, err := LoadKey("", true, zap.NewNop())
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestLoadKey_RefusesWithoutSource(t *testing.T) {
	_, err := LoadKey("", false, zap.NewNop())
	assert.Error(t, err)
}
