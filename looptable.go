package deckfill

import (
	"fmt"
	"strconv"
	"strings"
)

// LoopTableName is the structured table driving slide loops. Each row is
// (id, iteration, count): the orchestrator overwrites column 2 once per
// iteration and reads column 3 as the total iteration count.
const LoopTableName = "Loop"

// ReadIterationCount returns the count column of the Loop-table row whose
// first column equals loopID. A missing sheet, table or row yields a
// NotFoundError; transient automation errors are retried.
func ReadIterationCount(sp SpreadsheetSession, sheet, loopID string, opts ...Option) (int, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return readIterationCount(sp, sheet, loopID, o)
}

func readIterationCount(sp SpreadsheetSession, sheet, loopID string, o *options) (int, error) {
	count := 0
	err := withRetry(o, "read loop count", func() error {
		t, err := sp.ReadTable(sheet, LoopTableName)
		if err != nil {
			return err
		}
		row := t.FindRow(loopID)
		if row == 0 {
			return &NotFoundError{Kind: "row", Name: loopID}
		}
		cells := t.Rows[row-1]
		if len(cells) < 3 {
			return fmt.Errorf("loop row %q has %d columns, want 3", loopID, len(cells))
		}
		count, err = cellInt(cells[2])
		if err != nil {
			return fmt.Errorf("loop row %q count: %w", loopID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// WriteIteration overwrites the iteration column of the Loop-table row
// matching loopID, then forces a full recalculation and persists the
// workbook before returning. The ordering is load-bearing: chart refresh and
// tag re-reads downstream depend on formulas having settled on disk.
func WriteIteration(sp SpreadsheetSession, sheet, loopID string, value int, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return writeIteration(sp, sheet, loopID, value, o)
}

func writeIteration(sp SpreadsheetSession, sheet, loopID string, value int, o *options) error {
	return withRetry(o, "write loop iteration", func() error {
		t, err := sp.ReadTable(sheet, LoopTableName)
		if err != nil {
			return err
		}
		row := t.FindRow(loopID)
		if row == 0 {
			return &NotFoundError{Kind: "row", Name: loopID}
		}
		if err := sp.WriteTableCell(sheet, LoopTableName, row, 2, value); err != nil {
			return fmt.Errorf("write iteration for loop %q: %w", loopID, err)
		}
		if err := sp.Recalculate(); err != nil {
			return fmt.Errorf("recalculate after iteration write: %w", err)
		}
		if err := sp.Save(); err != nil {
			return fmt.Errorf("save after iteration write: %w", err)
		}
		o.logger.Debug("loop iteration written", "loop", loopID, "iteration", value)
		return nil
	})
}

// cellInt parses a cell as an integer, preferring the raw value over the
// displayed text.
func cellInt(c Cell) (int, error) {
	for _, s := range []string{c.Raw, c.Text} {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), nil
		}
	}
	return 0, fmt.Errorf("cell %q is not numeric", c.Raw)
}
