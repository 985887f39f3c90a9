package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCountTokens(t *testing.T) {
	require.NoError(t, Init(zap.NewNop()))

	n, err := CountTokens("")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = CountTokens("Project: Acme Redesign")
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	longer, err := CountTokens("Project: Acme Redesign\nDescription: a much longer description of the work")
	require.NoError(t, err)
	assert.Greater(t, longer, n)
}

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Greater(t, Estimate("plan a 3-phase rollout"), 0)
}
