package deckfill

import (
	"fmt"
	"log/slog"
)

// InjectRange copies a rectangular spreadsheet region into the first table
// shape found on the slide. When hasHeader is set the table's first row is
// left untouched and data lands from row 2 down. The copy is clamped to
// whichever is smaller, the source region or the table, in both dimensions.
// Hyperlinked source cells become hyperlinked table cells. Individual cell
// failures are logged and skipped. Returns the number of cells written.
func InjectRange(slide Slide, data *RangeData, hasHeader bool, log *slog.Logger) (int, error) {
	table := firstTableShape(slide)
	if table == nil {
		return 0, &NotFoundError{Kind: "table shape", Name: fmt.Sprintf("slide %d", slide.Index())}
	}
	if data == nil || len(data.Cells) == 0 {
		log.Debug("range injection skipped, empty source", "slide", slide.Index())
		return 0, nil
	}

	headerOffset := 0
	if hasHeader {
		headerOffset = 1
	}
	rows := len(data.Cells)
	if avail := table.RowCount() - headerOffset; rows > avail {
		rows = avail
	}

	written := 0
	for r := 0; r < rows; r++ {
		cols := len(data.Cells[r])
		if cols > table.ColCount() {
			cols = table.ColCount()
		}
		for c := 0; c < cols; c++ {
			src := data.Cells[r][c]
			tr, tc := r+1+headerOffset, c+1
			cell, err := table.Cell(tr, tc)
			if err != nil || cell == nil {
				log.Debug("table cell unreachable", "slide", slide.Index(), "row", tr, "col", tc, "error", err)
				continue
			}
			if err := cell.SetText(src.Text); err != nil {
				log.Debug("table cell write failed", "slide", slide.Index(), "row", tr, "col", tc, "error", err)
				continue
			}
			if src.Hyperlink != "" {
				if err := table.SetCellHyperlink(tr, tc, src.Hyperlink); err != nil {
					log.Debug("table cell hyperlink failed", "slide", slide.Index(), "row", tr, "col", tc, "error", err)
				}
			}
			written++
		}
	}
	log.Debug("range injected", "slide", slide.Index(), "cells", written)
	return written, nil
}

// firstTableShape returns the first table shape on the slide, searching
// grouped shapes too, or nil.
func firstTableShape(slide Slide) TableShape {
	var found TableShape
	var walk func(Shape) bool
	walk = func(s Shape) bool {
		switch v := s.(type) {
		case TableShape:
			found = v
			return false
		case GroupShape:
			for _, item := range v.Items() {
				if !walk(item) {
					return false
				}
			}
		}
		return true
	}
	for _, s := range slide.Shapes() {
		if !walk(s) {
			break
		}
	}
	return found
}

// ApplyMappings runs every slide mapping of a template: read the declared
// spreadsheet range, locate the slide by id and fill its table shape. A
// mapping whose slide or range cannot be resolved is logged and skipped.
// Returns the number of mappings applied.
func ApplyMappings(sp SpreadsheetSession, ppt PresentationSession, mappings []SlideMapping, log *slog.Logger) int {
	applied := 0
	for _, m := range mappings {
		slide := FindSlideByID(ppt, m.SlideID)
		if slide == nil {
			log.Warn("mapping skipped, slide not found", "slide", m.SlideID)
			continue
		}
		data, err := sp.ReadRange(m.Sheet, m.Range)
		if err != nil {
			log.Warn("mapping skipped, range unreadable", "slide", m.SlideID, "sheet", m.Sheet, "range", m.Range, "error", err)
			continue
		}
		if _, err := InjectRange(slide, data, m.HasHeader, log); err != nil {
			log.Warn("mapping skipped, injection failed", "slide", m.SlideID, "error", err)
			continue
		}
		applied++
	}
	return applied
}
