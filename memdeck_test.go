package deckfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstText(t *testing.T, deck *Deck, index int) string {
	t.Helper()
	slide, err := deck.Slide(index)
	require.NoError(t, err)
	texts := slideTexts(slide)
	require.NotEmpty(t, texts)
	return texts[0]
}

func TestDeckDuplicateInsertsAfterOriginal(t *testing.T) {
	deck := deckWithIDs("a", "b", "c")

	idx, err := deck.DuplicateSlide(2)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)
	require.Equal(t, 4, deck.SlideCount())
	assert.Equal(t, "b", firstText(t, deck, 2))
	assert.Equal(t, "b", firstText(t, deck, 3))
	assert.Equal(t, "c", firstText(t, deck, 4))
}

func TestDeckDuplicateIsDeepCopy(t *testing.T) {
	deck := NewDeck("deck.pptx")
	slide := deck.AppendSlide()
	orig := slide.AddTextBox("t", "original")
	slide.AddGroup("g", &MemText{name: "inner", text: "groupé"})

	_, err := deck.DuplicateSlide(1)
	require.NoError(t, err)

	dup, err := deck.Slide(2)
	require.NoError(t, err)
	dupText := dup.Shapes()[0].(*MemText)
	require.NoError(t, dupText.SetText("modifié"))

	assert.Equal(t, "original", orig.Text())
	// Nested group content is also an independent copy.
	inner := dup.Shapes()[1].(*MemGroup).Items()[0].(*MemText)
	require.NoError(t, inner.SetText("autre"))
	srcInner, err := deck.Slide(1)
	require.NoError(t, err)
	assert.Equal(t, "groupé", srcInner.Shapes()[1].(*MemGroup).Items()[0].(*MemText).Text())
}

func TestDeckMoveSlide(t *testing.T) {
	deck := deckWithIDs("a", "b", "c", "d")

	require.NoError(t, deck.MoveSlide(4, 2))
	assert.Equal(t, []string{"a", "d", "b", "c"}, []string{
		firstText(t, deck, 1), firstText(t, deck, 2), firstText(t, deck, 3), firstText(t, deck, 4),
	})

	require.NoError(t, deck.MoveSlide(2, 4))
	assert.Equal(t, []string{"a", "b", "c", "d"}, []string{
		firstText(t, deck, 1), firstText(t, deck, 2), firstText(t, deck, 3), firstText(t, deck, 4),
	})
}

func TestDeckDeleteSlide(t *testing.T) {
	deck := deckWithIDs("a", "b", "c")
	require.NoError(t, deck.DeleteSlide(2))
	require.Equal(t, 2, deck.SlideCount())
	assert.Equal(t, "c", firstText(t, deck, 2))

	assert.Error(t, deck.DeleteSlide(9))
}

func TestDeckIndexesAreOneBased(t *testing.T) {
	deck := deckWithIDs("a")
	_, err := deck.Slide(0)
	assert.Error(t, err)
	slide, err := deck.Slide(1)
	require.NoError(t, err)
	assert.Equal(t, 1, slide.Index())
}

func TestMemTextReplaceAtByteOffsets(t *testing.T) {
	box := &MemText{name: "t", text: "début [Tag] fin"}
	// "début " is 7 bytes: the é is two bytes.
	require.NoError(t, box.ReplaceAt(7, len("[Tag]"), "valeur"))
	assert.Equal(t, "début valeur fin", box.Text())

	assert.Error(t, box.ReplaceAt(100, 2, "x"))
}

func TestMemPictureZOrder(t *testing.T) {
	deck := NewDeck("deck.pptx")
	slide := deck.AppendSlide()
	slide.AddTextBox("a", "a")
	slide.AddTextBox("b", "b")
	pic, err := slide.InsertPicture("/img/logo.png", Geometry{})
	require.NoError(t, err)

	assert.Equal(t, 3, pic.ZOrderPosition())
	require.NoError(t, pic.SendBackward())
	assert.Equal(t, 2, pic.ZOrderPosition())
	require.NoError(t, pic.SendToBack())
	assert.Equal(t, 1, pic.ZOrderPosition())
	require.NoError(t, pic.BringToFront())
	assert.Equal(t, 3, pic.ZOrderPosition())
}

func TestDeckConvertChartToPicture(t *testing.T) {
	deck := NewDeck("deck.pptx")
	slide := deck.AppendSlide()
	chart := slide.AddChart("c", "Ventes")

	pic, err := slide.ConvertChartToPicture(chart)
	require.NoError(t, err)
	assert.Equal(t, "Ventes", pic.Name())
	require.Len(t, slide.Shapes(), 1)
	_, isPic := slide.Shapes()[0].(*MemPicture)
	assert.True(t, isPic)

	// Converting a chart that is no longer on the slide fails.
	_, err = slide.ConvertChartToPicture(chart)
	assert.Error(t, err)
}
