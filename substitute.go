package deckfill

import (
	"log/slog"
	"strings"
)

// SubstituteSlide replaces every tag occurrence on every shape of a slide.
// Per-shape failures are logged and skipped; substitution never aborts a
// slide half-way because one shape rejects the edit.
func SubstituteSlide(slide Slide, tags TagMap, log *slog.Logger) {
	if len(tags) == 0 {
		return
	}
	WalkSlideText(slide, func(ts TextShape) bool {
		if err := substituteText(ts, tags); err != nil {
			log.Debug("tag substitution failed on shape", "shape", ts.Name(), "error", err)
		}
		return true
	})
}

// SubstituteShape replaces every tag occurrence within one shape, recursing
// into grouped shapes and table cells.
func SubstituteShape(shape Shape, tags TagMap) error {
	var firstErr error
	WalkText(shape, func(ts TextShape) bool {
		if err := substituteText(ts, tags); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// substituteText replaces every occurrence of every known token in a text
// frame. Replacement is offset-based and rescans from the start after each
// edit, because replacing one occurrence shifts the offsets of the rest and
// some hosts only expose per-character-run mutation. When the offset edit is
// rejected by the host, the whole text is rewritten in one shot instead.
func substituteText(ts TextShape, tags TagMap) error {
	for _, token := range tags.Tokens() {
		value := tags[token]
		if strings.Contains(value, token) {
			// A value embedding its own token would rescan forever;
			// rewrite in a single pass.
			text := ts.Text()
			if strings.Contains(text, token) {
				if err := ts.SetText(strings.ReplaceAll(text, token, value)); err != nil {
					return err
				}
			}
			continue
		}
		for {
			text := ts.Text()
			pos := strings.Index(text, token)
			if pos < 0 {
				break
			}
			if err := ts.ReplaceAt(pos, len(token), value); err != nil {
				if err := ts.SetText(strings.ReplaceAll(text, token, value)); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}
