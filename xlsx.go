package deckfill

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// hyperlinkFormulaPattern extracts the target of a HYPERLINK() formula.
var hyperlinkFormulaPattern = regexp.MustCompile(`(?i)HYPERLINK\s*\(\s*"([^"]+)"`)

// XLSXSession is a SpreadsheetSession over an .xlsx file via excelize. It
// needs no desktop host: formulas are evaluated in-process on read, and
// recalculation marks the workbook for a full recalc on next host open. It
// cannot render charts; ExportCharts degrades with an Unsupported error.
type XLSXSession struct {
	path string
	f    *excelize.File
}

// OpenXLSX opens a workbook file as a spreadsheet session. It satisfies
// SpreadsheetOpener.
func OpenXLSX(path string) (SpreadsheetSession, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &XLSXSession{path: path, f: f}, nil
}

func (s *XLSXSession) Path() string { return s.path }

// ReadTable reads a structured table including formatted text, raw values and
// hyperlink targets. Table lookup is exact first, then trimmed
// case-insensitive, since hand-authored workbooks are sloppy about casing.
func (s *XLSXSession) ReadTable(sheet, name string) (*Table, error) {
	if err := s.checkSheet(sheet); err != nil {
		return nil, err
	}
	ref, err := s.tableRange(sheet, name)
	if err != nil {
		return nil, err
	}
	left, top, right, bottom, err := parseRangeRef(ref)
	if err != nil {
		return nil, fmt.Errorf("table %q range %q: %w", name, ref, err)
	}

	t := &Table{Name: name, Sheet: sheet}
	for col := left; col <= right; col++ {
		cell, err := s.readCell(sheet, col, top)
		if err != nil {
			return nil, err
		}
		t.Headers = append(t.Headers, cell.Text)
	}
	for row := top + 1; row <= bottom; row++ {
		var cells []Cell
		for col := left; col <= right; col++ {
			cell, err := s.readCell(sheet, col, row)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

// WriteTableCell overwrites one data-body cell of a structured table. The
// table's first range row is the header, so data row 1 lands one below it.
func (s *XLSXSession) WriteTableCell(sheet, table string, row, col int, value any) error {
	if err := s.checkSheet(sheet); err != nil {
		return err
	}
	ref, err := s.tableRange(sheet, table)
	if err != nil {
		return err
	}
	left, top, right, bottom, err := parseRangeRef(ref)
	if err != nil {
		return fmt.Errorf("table %q range %q: %w", table, ref, err)
	}
	absCol, absRow := left+col-1, top+row
	if absCol > right || absRow > bottom || row < 1 || col < 1 {
		return fmt.Errorf("cell (%d,%d) outside table %q data body", row, col, table)
	}
	cellRef, err := excelize.CoordinatesToCellName(absCol, absRow)
	if err != nil {
		return err
	}
	if err := s.f.SetCellValue(sheet, cellRef, value); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cellRef, err)
	}
	return nil
}

// ReadRange reads a rectangular region such as "A1:C10".
func (s *XLSXSession) ReadRange(sheet, ref string) (*RangeData, error) {
	if err := s.checkSheet(sheet); err != nil {
		return nil, err
	}
	left, top, right, bottom, err := parseRangeRef(ref)
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", ref, err)
	}
	data := &RangeData{}
	for row := top; row <= bottom; row++ {
		var cells []Cell
		for col := left; col <= right; col++ {
			cell, err := s.readCell(sheet, col, row)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell)
		}
		data.Cells = append(data.Cells, cells)
	}
	return data, nil
}

// Recalculate re-evaluates formula cells in-process and marks the workbook
// for a full recalculation on its next open in a desktop host, so cached
// values never go stale for downstream consumers.
func (s *XLSXSession) Recalculate() error {
	fullCalc := true
	if err := s.f.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &fullCalc}); err != nil {
		return fmt.Errorf("set calc props: %w", err)
	}
	return nil
}

// Calculating reports no signal: in-process evaluation is synchronous.
func (s *XLSXSession) Calculating() (busy, supported bool) { return false, false }

// ExportCharts is unsupported: excelize has no chart rendering engine.
func (s *XLSXSession) ExportCharts(dir string) (map[string][]string, error) {
	return nil, &UnsupportedError{Op: "chart export"}
}

func (s *XLSXSession) Save() error  { return s.f.Save() }
func (s *XLSXSession) Close() error { return s.f.Close() }

func (s *XLSXSession) checkSheet(sheet string) error {
	idx, err := s.f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", sheet, err)
	}
	if idx < 0 {
		return &NotFoundError{Kind: "sheet", Name: sheet}
	}
	return nil
}

// tableRange resolves a structured table name to its cell range on the sheet.
func (s *XLSXSession) tableRange(sheet, name string) (string, error) {
	tables, err := s.f.GetTables(sheet)
	if err != nil {
		return "", fmt.Errorf("list tables on %q: %w", sheet, err)
	}
	for _, t := range tables {
		if t.Name == name {
			return t.Range, nil
		}
	}
	for _, t := range tables {
		if strings.EqualFold(strings.TrimSpace(t.Name), strings.TrimSpace(name)) {
			return t.Range, nil
		}
	}
	return "", &NotFoundError{Kind: "table", Name: name}
}

// readCell reads one cell as formatted text, raw value and hyperlink target.
// Formula cells with no cached value are evaluated in-process.
func (s *XLSXSession) readCell(sheet string, col, row int) (Cell, error) {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Cell{}, err
	}
	text, err := s.f.GetCellValue(sheet, ref)
	if err != nil {
		return Cell{}, fmt.Errorf("read %s!%s: %w", sheet, ref, err)
	}
	raw, err := s.f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return Cell{}, fmt.Errorf("read raw %s!%s: %w", sheet, ref, err)
	}

	formula, _ := s.f.GetCellFormula(sheet, ref)
	if text == "" && formula != "" {
		if calc, err := s.f.CalcCellValue(sheet, ref); err == nil {
			text = calc
			if raw == "" {
				raw = calc
			}
		}
	}

	cell := Cell{Text: text, Raw: raw}
	if has, target, err := s.f.GetCellHyperLink(sheet, ref); err == nil && has {
		cell.Hyperlink = target
	} else if formula != "" {
		if m := hyperlinkFormulaPattern.FindStringSubmatch(formula); m != nil {
			cell.Hyperlink = m[1]
		}
	}
	return cell, nil
}

// parseRangeRef parses "A1:C10" into 1-based column and row bounds. A single
// cell reference is a 1x1 range.
func parseRangeRef(ref string) (left, top, right, bottom int, err error) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	first, second, found := strings.Cut(ref, ":")
	if !found {
		second = first
	}
	left, top, err = excelize.CellNameToCoordinates(first)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	right, bottom, err = excelize.CellNameToCoordinates(second)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if right < left {
		left, right = right, left
	}
	if bottom < top {
		top, bottom = bottom, top
	}
	return left, top, right, bottom, nil
}
