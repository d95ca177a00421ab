package deckfill

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopDeck builds intro / source("LOOP1") / outro.
func loopDeck() *Deck {
	deck := NewDeck("deck.pptx")
	deck.AppendSlide().AddTextBox("t", "intro")
	src := deck.AppendSlide()
	src.AddTextBox("id", "LOOP1")
	src.AddTextBox("body", "Marque: [Marque]")
	deck.AppendSlide().AddTextBox("t", "outro")
	return deck
}

func loopConfig(loops ...LoopSpec) *TemplateConfig {
	return &TemplateConfig{
		Name:        "test",
		MasterExcel: "m.xlsx",
		MasterPPT:   "m.pptx",
		TagSheet:    DefaultTagSheet,
		TagTable:    DefaultTagTable,
		Loops:       loops,
	}
}

func brandsByIteration(brands ...string) func(int) map[string]string {
	return func(iteration int) map[string]string {
		if iteration < 1 || iteration > len(brands) {
			return map[string]string{"[Marque]": ""}
		}
		return map[string]string{"[Marque]": brands[iteration-1]}
	}
}

func TestExpandSingleSourceThreeIterations(t *testing.T) {
	sp := newFakeSpreadsheet("boucle_marques", 3, brandsByIteration("Nutella", "Kinder", "Duplo"))
	deck := loopDeck()
	spec := LoopSpec{ID: "boucle_marques", Slides: []string{"LOOP1"}, Sheet: "Pilotage"}

	expander := NewLoopExpander(sp, deck, loopConfig(spec), quietOpts()...)
	result, err := expander.Expand(spec)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Count)
	assert.Equal(t, 3, result.Duplicates)
	require.Len(t, result.Iterations, 3)
	for _, ir := range result.Iterations {
		assert.True(t, ir.Success)
		assert.Equal(t, 1, ir.Slides)
	}

	// intro + 3 duplicates + outro; source removed.
	require.Equal(t, 5, deck.SlideCount())
	for i, brand := range []string{"Nutella", "Kinder", "Duplo"} {
		slide, err := deck.Slide(2 + i)
		require.NoError(t, err)
		texts := slideTexts(slide)
		assert.Contains(t, texts, "Marque: "+brand, "duplicate %d", i+1)
	}
	last, err := deck.Slide(5)
	require.NoError(t, err)
	assert.Contains(t, slideTexts(last), "outro")

	// No slide still carries the raw token or the source marker.
	assert.Nil(t, FindSlideByID(deck, "LOOP1"))
}

func TestExpandDuplicatePositionInvariant(t *testing.T) {
	// Source at index 2; iteration k must land at index 2 + k - 1 while
	// sources are still present, so post-deletion the block stays ordered.
	sp := newFakeSpreadsheet("b", 4, brandsByIteration("A1", "A2", "A3", "A4"))
	deck := loopDeck()
	spec := LoopSpec{ID: "b", Slides: []string{"LOOP1"}, Sheet: "Pilotage"}

	_, err := NewLoopExpander(sp, deck, loopConfig(spec), quietOpts()...).Expand(spec)
	require.NoError(t, err)

	require.Equal(t, 6, deck.SlideCount())
	for k := 1; k <= 4; k++ {
		slide, err := deck.Slide(1 + k)
		require.NoError(t, err)
		assert.Contains(t, slideTexts(slide), fmt.Sprintf("Marque: A%d", k))
	}
}

func TestExpandMultipleSourceSlides(t *testing.T) {
	deck := NewDeck("deck.pptx")
	deck.AppendSlide().AddTextBox("t", "intro")
	s1 := deck.AppendSlide()
	s1.AddTextBox("id", "PAGE_A")
	s1.AddTextBox("body", "A [Marque]")
	s2 := deck.AppendSlide()
	s2.AddTextBox("id", "PAGE_B")
	s2.AddTextBox("body", "B [Marque]")

	sp := newFakeSpreadsheet("b", 2, brandsByIteration("X", "Y"))
	spec := LoopSpec{ID: "b", Slides: []string{"PAGE_A", "PAGE_B"}, Sheet: "Pilotage"}

	result, err := NewLoopExpander(sp, deck, loopConfig(spec), quietOpts()...).Expand(spec)
	require.NoError(t, err)

	// N iterations x S sources duplicates, sources deleted.
	assert.Equal(t, 4, result.Duplicates)
	assert.Equal(t, 5, deck.SlideCount())
	assert.Nil(t, FindSlideByID(deck, "PAGE_A"))
	assert.Nil(t, FindSlideByID(deck, "PAGE_B"))

	var all []string
	for i := 1; i <= deck.SlideCount(); i++ {
		slide, err := deck.Slide(i)
		require.NoError(t, err)
		all = append(all, slideTexts(slide)...)
	}
	assert.Subset(t, all, []string{"A X", "A Y", "B X", "B Y"})
}

func TestExpandZeroCountSkipsLoop(t *testing.T) {
	sp := newFakeSpreadsheet("b", 0, brandsByIteration())
	deck := loopDeck()
	spec := LoopSpec{ID: "b", Slides: []string{"LOOP1"}, Sheet: "Pilotage"}

	result, err := NewLoopExpander(sp, deck, loopConfig(spec), quietOpts()...).Expand(spec)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Iterations)
	// Deck untouched, source slide still present.
	assert.Equal(t, 3, deck.SlideCount())
	assert.NotNil(t, FindSlideByID(deck, "LOOP1"))
}

func TestExpandUnknownLoopRowFails(t *testing.T) {
	sp := newFakeSpreadsheet("present", 2, brandsByIteration("X", "Y"))
	deck := loopDeck()
	spec := LoopSpec{ID: "absente", Slides: []string{"LOOP1"}, Sheet: "Pilotage"}

	_, err := NewLoopExpander(sp, deck, loopConfig(spec), quietOpts()...).Expand(spec)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 3, deck.SlideCount())
}

func TestExpandMissingSourceSlidesFails(t *testing.T) {
	sp := newFakeSpreadsheet("b", 2, brandsByIteration("X", "Y"))
	deck := loopDeck()
	spec := LoopSpec{ID: "b", Slides: []string{"INEXISTANTE"}, Sheet: "Pilotage"}

	_, err := NewLoopExpander(sp, deck, loopConfig(spec), quietOpts()...).Expand(spec)
	require.Error(t, err)
}

func TestExpandIterationFailureIsIsolated(t *testing.T) {
	sp := newFakeSpreadsheet("b", 3, brandsByIteration("A", "B", "C"))
	deck := loopDeck()
	spec := LoopSpec{ID: "b", Slides: []string{"LOOP1"}, Sheet: "Pilotage"}

	expander := NewLoopExpander(sp, deck, loopConfig(spec),
		append(quietOpts(), WithMaxRetries(1))...)

	// The tag re-read of iteration 2 fails; with a single attempt the
	// iteration is skipped and the others still materialize.
	sp.failTagReadAt = 2

	result, err := expander.Expand(spec)
	require.NoError(t, err)

	require.Len(t, result.Iterations, 3)
	assert.True(t, result.Iterations[0].Success)
	assert.False(t, result.Iterations[1].Success)
	assert.True(t, result.Iterations[2].Success)
	assert.Equal(t, 2, result.Duplicates)

	// intro + 2 duplicates + outro.
	assert.Equal(t, 4, deck.SlideCount())
}

func TestExpandRetriesTransientReads(t *testing.T) {
	sp := newFakeSpreadsheet("b", 1, brandsByIteration("Seule"))
	sp.failTableReads = 2
	deck := loopDeck()
	spec := LoopSpec{ID: "b", Slides: []string{"LOOP1"}, Sheet: "Pilotage"}

	result, err := NewLoopExpander(sp, deck, loopConfig(spec), quietOpts()...).Expand(spec)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Duplicates)
}

func TestExpandInjectsLoopDependentImages(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir+"/Nutella.png")
	touch(t, dir+"/Kinder.png")

	sp := newFakeSpreadsheet("b", 2, brandsByIteration("Nutella", "Kinder"))
	deck := loopDeck()
	spec := LoopSpec{ID: "b", Slides: []string{"LOOP1"}, Sheet: "Pilotage"}
	cfg := loopConfig(spec)
	cfg.Images = map[string][]ImageSpec{
		"LOOP1": {{Pattern: dir + "/{Marque}.png", LoopDependent: true}},
	}

	_, err := NewLoopExpander(sp, deck, cfg, quietOpts()...).Expand(spec)
	require.NoError(t, err)

	for i, name := range []string{"Nutella.png", "Kinder.png"} {
		slide, err := deck.Slide(2 + i)
		require.NoError(t, err)
		var pics []string
		for _, s := range slide.Shapes() {
			if p, ok := s.(*MemPicture); ok {
				pics = append(pics, p.Name())
			}
		}
		assert.Contains(t, pics, name)
	}
}

func TestExpandFreezesChartsOnDuplicatesOnly(t *testing.T) {
	deck := NewDeck("deck.pptx")
	src := deck.AppendSlide()
	src.AddTextBox("id", "LOOP1")
	src.AddChart("chart", "Ventes")

	sp := newFakeSpreadsheet("b", 2, brandsByIteration("X", "Y"))
	spec := LoopSpec{ID: "b", Slides: []string{"LOOP1"}, Sheet: "Pilotage"}

	_, err := NewLoopExpander(sp, deck, loopConfig(spec), quietOpts()...).Expand(spec)
	require.NoError(t, err)

	require.Equal(t, 2, deck.SlideCount())
	for i := 1; i <= 2; i++ {
		slide, err := deck.Slide(i)
		require.NoError(t, err)
		for _, s := range slide.Shapes() {
			_, isChart := s.(*MemChart)
			assert.False(t, isChart, "slide %d still has a live chart", i)
		}
	}
}

func TestExpandSavesDeckOnce(t *testing.T) {
	sp := newFakeSpreadsheet("b", 2, brandsByIteration("X", "Y"))
	deck := loopDeck()
	spec := LoopSpec{ID: "b", Slides: []string{"LOOP1"}, Sheet: "Pilotage"}

	_, err := NewLoopExpander(sp, deck, loopConfig(spec), quietOpts()...).Expand(spec)
	require.NoError(t, err)
	assert.Equal(t, 1, deck.Saves)
}
