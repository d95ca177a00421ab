package deckfill

import (
	"fmt"
	"sort"
	"strings"
)

// TagMap maps a tag token, brackets included (e.g. "[Marque]"), to its
// current string value. It is rebuilt from the spreadsheet after every
// state-changing write and is only valid for the lifetime of one run.
// Lookup during substitution is a case-sensitive exact match on the token.
type TagMap map[string]string

// Tokens returns the tag tokens in sorted order. Substitution iterates in
// this order so that runs are reproducible; a token sorts before its own
// extensions, so "[Marque]" still fires before "[MarqueCourte]".
func (t TagMap) Tokens() []string {
	tokens := make([]string, 0, len(t))
	for tok := range t {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// ReadTags reads the replacement-tag table: column 1 is the tag token,
// column 3 is the value as displayed (number formatting applied). Rows with
// an empty token are skipped. The read is retried on transient automation
// errors with a host-process sweep between attempts.
func ReadTags(sp SpreadsheetSession, sheet, table string, opts ...Option) (TagMap, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return readTags(sp, sheet, table, o)
}

func readTags(sp SpreadsheetSession, sheet, table string, o *options) (TagMap, error) {
	var tags TagMap
	err := withRetry(o, "read tags", func() error {
		t, err := sp.ReadTable(sheet, table)
		if err != nil {
			return err
		}
		tags = make(TagMap, len(t.Rows))
		for _, row := range t.Rows {
			if len(row) < 3 {
				continue
			}
			token := strings.TrimSpace(row[0].Raw)
			if token == "" {
				token = strings.TrimSpace(row[0].Text)
			}
			if token == "" {
				continue
			}
			tags[token] = row[2].Text
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read tags from %s!%s: %w", sheet, table, err)
	}
	o.logger.Debug("tags loaded", "sheet", sheet, "table", table, "count", len(tags))
	return tags, nil
}

// InjectParameters writes run parameters into the tag table: for each
// parameter, the data rows are scanned for a first-column token equal to the
// bracketed, title-cased parameter name (case-insensitive), and column 3 of
// the matching row is overwritten. The workbook is then recalculated and
// saved so downstream reads see settled formulas.
func InjectParameters(sp SpreadsheetSession, sheet, table string, params map[string]any, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return injectParameters(sp, sheet, table, params, o)
}

func injectParameters(sp SpreadsheetSession, sheet, table string, params map[string]any, o *options) error {
	t, err := sp.ReadTable(sheet, table)
	if err != nil {
		return fmt.Errorf("inject parameters: %w", err)
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		token := "[" + titleCase(name) + "]"
		row := findTokenRow(t, token)
		if row == 0 {
			o.logger.Warn("no tag row for parameter", "parameter", name, "token", token)
			continue
		}
		if err := sp.WriteTableCell(sheet, table, row, 3, params[name]); err != nil {
			return fmt.Errorf("inject parameter %q: %w", name, err)
		}
		o.logger.Debug("parameter injected", "parameter", name, "row", row)
	}
	if err := sp.Recalculate(); err != nil {
		return fmt.Errorf("recalculate after parameter injection: %w", err)
	}
	if err := sp.Save(); err != nil {
		return fmt.Errorf("save after parameter injection: %w", err)
	}
	return nil
}

// findTokenRow returns the 1-based data row whose first column equals token,
// ignoring case, or 0.
func findTokenRow(t *Table, token string) int {
	for i, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		got := strings.TrimSpace(row[0].Raw)
		if got == "" {
			got = strings.TrimSpace(row[0].Text)
		}
		if strings.EqualFold(got, token) {
			return i + 1
		}
	}
	return 0
}

// titleCase upper-cases the first letter of each space-separated word and
// lower-cases the rest, matching how parameter names map to tag tokens.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		head := strings.ToUpper(string(r[:1]))
		words[i] = head + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}
