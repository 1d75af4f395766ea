package suggest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestParse(t *testing.T) {
	got, err := Parse(`[{"part":"Entrada","title":"Vem, Espírito","artist":"Pe. Zezinho","reasoning":"abre a celebração"}]`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Entrada", got[0].Part)
	assert.Equal(t, "Pe. Zezinho", got[0].Artist)
}

func TestParse_EmptyAndInvalid(t *testing.T) {
	got, err := Parse("  ")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Parse("not json")
	assert.Error(t, err)
}

func TestPrompt_IncludesInputs(t *testing.T) {
	p := Prompt("Domingo de Ramos", "Quaresma")
	assert.Contains(t, p, `"Domingo de Ramos"`)
	assert.Contains(t, p, `"Quaresma"`)
}

func TestResponseSchema_RequiresAllFields(t *testing.T) {
	s := responseSchema()
	assert.Equal(t, genai.TypeArray, s.Type)
	require.NotNil(t, s.Items)
	assert.ElementsMatch(t, []string{"part", "title", "artist", "reasoning"}, s.Items.Required)
	assert.Len(t, s.Items.Properties, 4)
}

func TestNewGemini_NoKey(t *testing.T) {
	s, err := NewGemini(context.Background(), "", "")
	require.NoError(t, err)
	_, err = s.Suggest(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
