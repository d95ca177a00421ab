package deckfill

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// quietOpts silences logging, skips real sleeps and disables process sweeps.
func quietOpts() []Option {
	return []Option{
		WithLogger(testLogger()),
		WithSleep(func(time.Duration) {}),
		WithProcessSweeper(NoSweeper{}),
		WithPreRunSweep(false),
		WithPostRunSweep(false),
	}
}

// errTransient mimics a host automation failure that the retry layer is
// expected to absorb.
var errTransient = errors.New("call was rejected by callee (automation error)")

// fakeSpreadsheet is an in-memory SpreadsheetSession whose tag values depend
// on the current loop iteration, the way live workbook formulas do.
type fakeSpreadsheet struct {
	path      string
	loopID    string
	loopSheet string
	count     int
	iteration int

	// tagFn produces the tag table contents for the current iteration.
	tagFn func(iteration int) map[string]string

	// failTableReads makes the next N ReadTable calls fail transiently.
	failTableReads int

	// failTagReadAt makes the Nth tag-table read (1-based) fail once.
	failTagReadAt int
	tagReads      int

	// ranges holds canned ReadRange results keyed by "sheet!ref".
	ranges map[string]*RangeData

	writes   []string
	recalcs  int
	saves    int
	closed   bool
	rawTags  map[string]string
	paramSet map[string]any
}

func newFakeSpreadsheet(loopID string, count int, tagFn func(int) map[string]string) *fakeSpreadsheet {
	return &fakeSpreadsheet{
		path:      "fake.xlsx",
		loopID:    loopID,
		loopSheet: "Pilotage",
		count:     count,
		tagFn:     tagFn,
		ranges:    map[string]*RangeData{},
		paramSet:  map[string]any{},
	}
}

func (f *fakeSpreadsheet) Path() string { return f.path }

func (f *fakeSpreadsheet) ReadTable(sheet, name string) (*Table, error) {
	if f.failTableReads > 0 {
		f.failTableReads--
		return nil, errTransient
	}
	if name == LoopTableName {
		return &Table{
			Name:    name,
			Sheet:   sheet,
			Headers: []string{"ID", "Iteration", "Count"},
			Rows: [][]Cell{{
				{Raw: f.loopID, Text: f.loopID},
				{Raw: fmt.Sprint(f.iteration), Text: fmt.Sprint(f.iteration)},
				{Raw: fmt.Sprint(f.count), Text: fmt.Sprint(f.count)},
			}},
		}, nil
	}
	f.tagReads++
	if f.tagReads == f.failTagReadAt {
		return nil, errTransient
	}
	tags := f.rawTags
	if f.tagFn != nil {
		tags = f.tagFn(f.iteration)
	}
	if tags == nil {
		return nil, &NotFoundError{Kind: "table", Name: name}
	}
	t := &Table{Name: name, Sheet: sheet, Headers: []string{"Balise", "Description", "Valeur"}}
	tokens := make([]string, 0, len(tags))
	for tok := range tags {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	for _, tok := range tokens {
		t.Rows = append(t.Rows, []Cell{{Raw: tok, Text: tok}, {}, {Text: tags[tok]}})
	}
	return t, nil
}

func (f *fakeSpreadsheet) WriteTableCell(sheet, table string, row, col int, value any) error {
	f.writes = append(f.writes, fmt.Sprintf("%s!%s[%d,%d]=%v", sheet, table, row, col, value))
	if table == LoopTableName && col == 2 {
		switch v := value.(type) {
		case int:
			f.iteration = v
		default:
			return fmt.Errorf("iteration value %v is not an int", value)
		}
		return nil
	}
	if col == 3 {
		f.paramSet[fmt.Sprintf("row%d", row)] = value
	}
	return nil
}

func (f *fakeSpreadsheet) ReadRange(sheet, ref string) (*RangeData, error) {
	if data, ok := f.ranges[sheet+"!"+ref]; ok {
		return data, nil
	}
	return nil, &NotFoundError{Kind: "range", Name: sheet + "!" + ref}
}

func (f *fakeSpreadsheet) Recalculate() error { f.recalcs++; return nil }

func (f *fakeSpreadsheet) Calculating() (bool, bool) { return false, false }

func (f *fakeSpreadsheet) ExportCharts(dir string) (map[string][]string, error) {
	return nil, &UnsupportedError{Op: "chart export"}
}

func (f *fakeSpreadsheet) Save() error  { f.saves++; return nil }
func (f *fakeSpreadsheet) Close() error { f.closed = true; return nil }

// slideTexts flattens every text frame of a slide, in walk order.
func slideTexts(s Slide) []string {
	var out []string
	WalkSlideText(s, func(ts TextShape) bool {
		out = append(out, ts.Text())
		return true
	})
	return out
}
