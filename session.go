// Package deckfill generates PowerPoint business reports from parameterized
// templates: it drives a live spreadsheet session through recalculation cycles,
// duplicates presentation slides per loop iteration, and rewrites their text,
// images, charts and tables with values read back from the spreadsheet.
package deckfill

import "strings"

// Cell is one spreadsheet cell as read through a session.
// Text is the displayed text with number formatting applied; Raw is the
// underlying value. Hyperlink is the resolved link target, if any.
type Cell struct {
	Text      string
	Raw       string
	Hyperlink string
}

// Table is a structured (named, header-plus-data) spreadsheet table.
// Rows holds data rows only, without the header row.
type Table struct {
	Name    string
	Sheet   string
	Headers []string
	Rows    [][]Cell
}

// FindRow returns the 1-based index of the first data row whose first column,
// trimmed, equals id (case-sensitive), or 0 if no row matches.
func (t *Table) FindRow(id string) int {
	for i, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(row[0].Raw) == id || strings.TrimSpace(row[0].Text) == id {
			return i + 1
		}
	}
	return 0
}

// RangeData is a rectangular region read from a spreadsheet.
type RangeData struct {
	Cells [][]Cell
}

// SpreadsheetSession is the narrow capability surface the pipeline needs from
// a live spreadsheet host. Implementations: XLSXSession (excelize) and the
// Windows COM session over desktop Excel.
type SpreadsheetSession interface {
	// Path returns the workbook file path this session operates on.
	Path() string

	// ReadTable reads the structured table with the given name on the given
	// sheet. It returns a NotFoundError when the sheet or table is absent.
	ReadTable(sheet, name string) (*Table, error)

	// WriteTableCell overwrites one cell of a structured table's data body.
	// row and col are 1-based within the data body (header excluded).
	WriteTableCell(sheet, table string, row, col int, value any) error

	// ReadRange reads a rectangular region such as "A1:C10", including
	// hyperlink targets (native links and HYPERLINK() formulas).
	ReadRange(sheet, ref string) (*RangeData, error)

	// Recalculate forces a full recalculation of the workbook.
	Recalculate() error

	// Calculating reports whether the host is still recalculating.
	// supported is false when the backend exposes no such signal; callers
	// then fall back to a fixed settle delay.
	Calculating() (busy, supported bool)

	// ExportCharts exports every chart object to PNG files under dir and
	// returns the written paths keyed by sheet name. Backends without a
	// rendering engine return an Unsupported error.
	ExportCharts(dir string) (map[string][]string, error)

	Save() error
	Close() error
}

// PresentationSession is the narrow capability surface the pipeline needs
// from a live presentation host. Slide indexes are 1-based throughout,
// matching the host object models.
type PresentationSession interface {
	// Path returns the presentation file path this session operates on.
	Path() string

	SlideCount() int
	Slide(index int) (Slide, error)

	// DuplicateSlide duplicates the slide at index; the copy is inserted
	// immediately after the original. Returns the copy's index.
	DuplicateSlide(index int) (int, error)

	// MoveSlide moves the slide at from so that it ends up at position to.
	MoveSlide(from, to int) error

	DeleteSlide(index int) error

	// PageSize returns the slide dimensions in points.
	PageSize() (width, height float64)

	// RelinkSpreadsheet repoints any linked objects referencing oldPath to
	// newPath, so embedded charts follow the run's output workbook.
	RelinkSpreadsheet(oldPath, newPath string) error

	// RefreshLinks updates linked objects against their current sources.
	RefreshLinks() error

	Save() error
	Close() error
}

// spliceLinkSource replaces the oldPath portion of a linked-object source
// with newPath, matching case-insensitively but preserving the case of the
// surrounding text: link sources often carry a !Sheet!Range suffix that must
// come through untouched. The second return is false when oldPath does not
// occur in source.
func spliceLinkSource(source, oldPath, newPath string) (string, bool) {
	at := strings.Index(strings.ToLower(source), strings.ToLower(oldPath))
	if at < 0 {
		return source, false
	}
	return source[:at] + newPath + source[at+len(oldPath):], true
}

// SpreadsheetOpener opens a spreadsheet session on a workbook file.
type SpreadsheetOpener func(path string) (SpreadsheetSession, error)

// PresentationOpener opens a presentation session on a presentation file.
type PresentationOpener func(path string) (PresentationSession, error)
