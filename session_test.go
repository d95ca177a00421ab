package deckfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableFindRow(t *testing.T) {
	table := &Table{
		Rows: [][]Cell{
			{{Raw: "boucle_marques"}, {Raw: "1"}, {Raw: "3"}},
			{{Raw: "  boucle_pays  "}, {Raw: "0"}, {Raw: "2"}},
			{},
		},
	}
	assert.Equal(t, 1, table.FindRow("boucle_marques"))
	assert.Equal(t, 2, table.FindRow("boucle_pays"))
	assert.Equal(t, 0, table.FindRow("absente"))
	// Matching is case-sensitive.
	assert.Equal(t, 0, table.FindRow("Boucle_Marques"))
}

func TestSpliceLinkSourcePreservesCase(t *testing.T) {
	updated, matched := spliceLinkSource(
		`C:\Masters\CLASSEUR.xlsx!Feuil1!R1C1:R5C3`,
		`c:\masters\classeur.xlsx`,
		`C:\Sorties\classeur_Kinder.xlsx`,
	)
	assert.True(t, matched)
	assert.Equal(t, `C:\Sorties\classeur_Kinder.xlsx!Feuil1!R1C1:R5C3`, updated)

	_, matched = spliceLinkSource(`C:\autre\fichier.xlsx`, `c:\masters\classeur.xlsx`, "x")
	assert.False(t, matched)
}
