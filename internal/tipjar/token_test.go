package tipjar

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xpierson/tipjar/config"
)

func TestResolveToken(t *testing.T) {
	tokens := config.DefaultTokens()

	tok, err := ResolveToken(tokens, AssetPill, "", "")
	require.NoError(t, err)
	assert.Equal(t, config.PillToken, tok)

	tok, err = ResolveToken(tokens, AssetMoto, "ignored", "3")
	require.NoError(t, err)
	assert.Equal(t, config.MotoToken, tok)

	_, err = ResolveToken(tokens, "DOGE", "", "")
	assert.ErrorIs(t, err, ErrUnknownAsset)
}

func TestResolveToken_Custom(t *testing.T) {
	tests := []struct {
		decimals string
		want     int
	}{
		{"8", 8},
		{" 18 ", 18},
		{"8abc", 8},
		{"", 0},
		{"abc", 0},
		{"-2", -2},
		{"+4", 4},
		{"6.5", 6},
	}
	for _, tt := range tests {
		tok, err := ResolveToken(nil, AssetCustom, " 0xfeed ", tt.decimals)
		require.NoError(t, err)
		assert.Equal(t, tt.want, tok.Decimals, "decimals %q", tt.decimals)
		assert.Equal(t, "0xfeed", tok.Address)
		assert.Equal(t, "CUSTOM", tok.Symbol)
	}
}

func TestParseAsset(t *testing.T) {
	assert.Equal(t, AssetMoto, ParseAsset(" moto ", AssetPill))
	assert.Equal(t, AssetPill, ParseAsset("", AssetPill))
	assert.Equal(t, AssetCustom, ParseAsset("custom", AssetPill))
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "Enter an amount to tip.", UserMessage(ErrNoAmount))
	assert.Equal(t, "Connect your wallet first.", UserMessage(fmt.Errorf("send: %w", ErrNotConnected)))
	assert.Equal(t, "something else", UserMessage(errors.New("something else")))
}
