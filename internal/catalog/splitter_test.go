package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Empty(t *testing.T) {
	assert.Nil(t, Split("", 100, 10))
	assert.Nil(t, Split("   \n\t  ", 100, 10))
}

func TestSplit_SingleChunk(t *testing.T) {
	chunks := Split("equipo de construcción", 100, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].ID)
	assert.Equal(t, 0, chunks[0].Offset)
	assert.Equal(t, "equipo de construcción", chunks[0].Text)
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	para1 := strings.Repeat("a", 40)
	para2 := strings.Repeat("b", 40)
	text := para1 + "\n\n" + para2

	chunks := Split(text, 60, 10)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, para1, chunks[0].Text)
	assert.True(t, strings.HasSuffix(chunks[len(chunks)-1].Text, para2))
}

func TestSplit_BreaksAtWords(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("palabra ", 30))

	chunks := Split(text, 50, 0)
	require.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks {
		// No word is ever cut in half; every chunk is whole words.
		for _, w := range strings.Fields(c.Text) {
			assert.Equal(t, "palabra", w)
		}
	}
}

func TestSplit_OffsetsAddressSourceBytes(t *testing.T) {
	text := "Año nuevo en Tegucigalpa.\n\nEquipos de construcción disponibles todo el año, con atención en español."

	chunks := Split(text, 40, 10)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.ID)
		assert.True(t, strings.HasPrefix(text[c.Offset:], c.Text),
			"chunk %d offset %d does not address its text", i, c.Offset)
	}
}

func TestSplit_OverlapStillTerminates(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxyz"

	chunks := Split(text, 5, 4)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.ID)
		assert.NotEmpty(t, c.Text)
	}
}

func TestSplit_DropsDuplicateWindows(t *testing.T) {
	chunks := Split("hola mundo", 8, 7)
	for i := 1; i < len(chunks); i++ {
		assert.NotEqual(t, chunks[i-1].Text, chunks[i].Text)
	}
}
