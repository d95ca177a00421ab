package deckfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeChartName(t *testing.T) {
	assert.Equal(t, "Ventes_P04", sanitizeChartName("Ventes_P04"))
	assert.Equal(t, "CA _ Volume", sanitizeChartName(`CA / Volume`))
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, sanitizeChartName(string(long)), 50)
}

func TestChartImageName(t *testing.T) {
	assert.Equal(t, "Pilotage_Ventes_1.png", ChartImageName("Pilotage", "Ventes", 1))
	assert.Equal(t, "A_B_Graph_2.png", ChartImageName("A/B", "Graph", 2))
}

func TestExportAllChartsDegradesWhenUnsupported(t *testing.T) {
	sp := newFakeSpreadsheet("b", 0, nil)

	charts, dir, err := ExportAllCharts(sp, t.TempDir(), testLogger())
	require.NoError(t, err)
	assert.Empty(t, charts)
	assert.DirExists(t, dir)
}

func TestFreezeChartsConvertsAndKeepsGeometry(t *testing.T) {
	deck := NewDeck("deck.pptx")
	slide := deck.AppendSlide()
	slide.AddTextBox("t", "titre")
	chart := slide.AddChart("c1", "Ventes")
	chart.SetGeometry(Geometry{Left: 50, Top: 60, Width: 400, Height: 300})

	frozen := FreezeCharts(slide, testLogger())
	assert.Equal(t, 1, frozen)

	var pic *MemPicture
	for _, s := range slide.Shapes() {
		if p, ok := s.(*MemPicture); ok {
			pic = p
		}
		_, isChart := s.(*MemChart)
		assert.False(t, isChart)
	}
	require.NotNil(t, pic)
	assert.Equal(t, Geometry{Left: 50, Top: 60, Width: 400, Height: 300}, pic.Geometry())
}

func TestFreezeChartsNoChartsIsNoOp(t *testing.T) {
	deck := NewDeck("deck.pptx")
	slide := deck.AppendSlide()
	slide.AddTextBox("t", "texte seul")

	assert.Equal(t, 0, FreezeCharts(slide, testLogger()))
	assert.Len(t, slide.Shapes(), 1)
}
