package deckfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deckWithIDs(ids ...string) *Deck {
	deck := NewDeck("deck.pptx")
	for _, id := range ids {
		slide := deck.AppendSlide()
		slide.AddTextBox("marker", id)
	}
	return deck
}

func TestFindSlideByIDWholeWordOnly(t *testing.T) {
	deck := deckWithIDs("S12", "S1")

	found := FindSlideByID(deck, "S1")
	require.NotNil(t, found)
	// "S1" must not match inside "S12".
	assert.Equal(t, 2, found.Index())
}

func TestFindSlideByIDFirstMatchWins(t *testing.T) {
	deck := deckWithIDs("DUP", "autre", "DUP")

	found := FindSlideByID(deck, "DUP")
	require.NotNil(t, found)
	assert.Equal(t, 1, found.Index())
}

func TestFindSlideByIDMissing(t *testing.T) {
	deck := deckWithIDs("S1")
	assert.Nil(t, FindSlideByID(deck, "S9"))
}

func TestFindSlideByIDSearchesGroupsAndTables(t *testing.T) {
	deck := NewDeck("deck.pptx")
	slide := deck.AppendSlide()
	slide.AddGroup("g", &MemText{name: "inner", text: "ici S7 marqueur"})

	other := deck.AppendSlide()
	table := other.AddTable("tbl", 1, 1)
	cell, err := table.Cell(1, 1)
	require.NoError(t, err)
	require.NoError(t, cell.SetText("S8"))

	s7 := FindSlideByID(deck, "S7")
	require.NotNil(t, s7)
	assert.Equal(t, 1, s7.Index())

	s8 := FindSlideByID(deck, "S8")
	require.NotNil(t, s8)
	assert.Equal(t, 2, s8.Index())
}

func TestFindSlidesByIDsBatch(t *testing.T) {
	deck := deckWithIDs("A", "B", "C")

	found := FindSlidesByIDs(deck, []string{"A", "C", "Z"}, testLogger())
	require.Len(t, found, 2)
	assert.Equal(t, 1, found["A"].Index())
	assert.Equal(t, 3, found["C"].Index())
}

func TestDeleteSuppressedSlides(t *testing.T) {
	deck := NewDeck("deck.pptx")
	deck.AppendSlide().AddTextBox("t", "garde")
	deck.AppendSlide().AddTextBox("t", "à enlever "+SuppressionToken)
	deck.AppendSlide().AddTextBox("t", "garde aussi")
	// Suppression token buried inside a grouped shape.
	deck.AppendSlide().AddGroup("g", &MemText{name: "inner", text: SuppressionToken})

	deleted := DeleteSuppressedSlides(deck, testLogger())

	assert.ElementsMatch(t, []int{2, 4}, deleted)
	require.Equal(t, 2, deck.SlideCount())
	s1, err := deck.Slide(1)
	require.NoError(t, err)
	assert.Contains(t, slideTexts(s1)[0], "garde")
	s2, err := deck.Slide(2)
	require.NoError(t, err)
	assert.Contains(t, slideTexts(s2)[0], "garde aussi")
}

func TestDeleteSuppressedSlidesTokenInTableCellInsideNestedGroups(t *testing.T) {
	deck := NewDeck("deck.pptx")
	deck.AppendSlide().AddTextBox("t", "garde")

	slide := deck.AppendSlide()
	table := &MemTable{
		name:  "tbl",
		cells: [][]*MemText{{{name: "c", text: "détail " + SuppressionToken}}},
		links: map[[2]int]string{},
	}
	slide.AddGroup("externe", &MemGroup{name: "interne", items: []Shape{table}})

	deleted := DeleteSuppressedSlides(deck, testLogger())

	assert.Equal(t, []int{2}, deleted)
	require.Equal(t, 1, deck.SlideCount())
	s1, err := deck.Slide(1)
	require.NoError(t, err)
	assert.Contains(t, slideTexts(s1), "garde")
}
