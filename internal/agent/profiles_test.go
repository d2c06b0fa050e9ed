package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concesa/salesagent/internal/utils"
)

func TestProfileByName(t *testing.T) {
	p, err := ProfileByName("balanced")
	require.NoError(t, err)
	assert.Equal(t, "balanced", p.Name)
	assert.Equal(t, "gpt-4o-mini", p.Model)
	assert.Equal(t, StyleStandard, p.Style)
	assert.Greater(t, p.MaxTokens, 0)
}

func TestProfileByName_NormalizesInput(t *testing.T) {
	p, err := ProfileByName("  Premium ")
	require.NoError(t, err)
	assert.Equal(t, "premium", p.Name)
}

func TestProfileByName_Unknown(t *testing.T) {
	_, err := ProfileByName("turbo")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.Contains(t, err.Error(), "balanced")
}

func TestProfileNames_SortedStable(t *testing.T) {
	assert.Equal(t, []string{"balanced", "economical", "premium"}, ProfileNames())
}

func TestSystemPrompt_PerStyle(t *testing.T) {
	minimal := SystemPrompt(StyleMinimal)
	standard := SystemPrompt(StyleStandard)
	professional := SystemPrompt(StyleProfessional)

	for _, prompt := range []string{minimal, standard, professional} {
		assert.Contains(t, prompt, "CONCESA")
		assert.Contains(t, prompt, "Lempiras")
	}
	assert.NotEqual(t, minimal, standard)
	assert.NotEqual(t, standard, professional)

	assert.Less(t, len(minimal), len(standard))
	assert.Less(t, len(standard), len(professional))
}

func TestSystemPrompt_UnknownStyleFallsBackToStandard(t *testing.T) {
	assert.Equal(t, SystemPrompt(StyleStandard), SystemPrompt(PromptStyle("galáctico")))
}

func TestEveryProfileHasAPersona(t *testing.T) {
	for _, name := range ProfileNames() {
		p, err := ProfileByName(name)
		require.NoError(t, err)
		prompt := SystemPrompt(p.Style)
		assert.True(t, strings.Contains(prompt, "CONCESA"), "profile %s has an empty persona", name)
	}
}
