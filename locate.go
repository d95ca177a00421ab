package deckfill

import (
	"log/slog"
	"regexp"
	"strings"
)

// SuppressionToken marks a slide for deletion during the static pass when it
// appears anywhere in the slide's text, including inside groups and table
// cells.
const SuppressionToken = "[@SUPR@]"

// idPattern compiles a whole-word (token boundary) pattern for a slide
// identifier.
func idPattern(token string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(token) + `\b`)
}

// FindSlideByID returns the first slide, in presentation order, whose text
// contains the identifier token as a whole word, or nil when no slide
// matches. A token appearing on several slides is not reported: first match
// wins.
func FindSlideByID(ppt PresentationSession, token string) Slide {
	pattern := idPattern(token)
	for i := 1; i <= ppt.SlideCount(); i++ {
		slide, err := ppt.Slide(i)
		if err != nil {
			continue
		}
		if slideContainsPattern(slide, pattern) {
			return slide
		}
	}
	return nil
}

// FindSlidesByIDs locates a batch of slide identifiers in one pass over the
// deck. Tokens that resolve to no slide are logged, not failed.
func FindSlidesByIDs(ppt PresentationSession, tokens []string, log *slog.Logger) map[string]Slide {
	patterns := make(map[string]*regexp.Regexp, len(tokens))
	for _, tok := range tokens {
		patterns[tok] = idPattern(tok)
	}
	found := make(map[string]Slide)
	for i := 1; i <= ppt.SlideCount(); i++ {
		slide, err := ppt.Slide(i)
		if err != nil {
			continue
		}
		for tok, pattern := range patterns {
			if _, ok := found[tok]; ok {
				continue
			}
			if slideContainsPattern(slide, pattern) {
				found[tok] = slide
			}
		}
	}
	for _, tok := range tokens {
		if _, ok := found[tok]; !ok {
			log.Warn("slide not found", "id", tok)
		}
	}
	return found
}

func slideContainsPattern(slide Slide, pattern *regexp.Regexp) bool {
	hit := false
	WalkSlideText(slide, func(ts TextShape) bool {
		if pattern.MatchString(ts.Text()) {
			hit = true
			return false
		}
		return true
	})
	return hit
}

// slideContainsToken reports whether the literal token appears anywhere in
// the slide's text, without word-boundary matching. Used for the suppression
// token, which carries its own delimiters.
func slideContainsToken(slide Slide, token string) bool {
	hit := false
	WalkSlideText(slide, func(ts TextShape) bool {
		if strings.Contains(ts.Text(), token) {
			hit = true
			return false
		}
		return true
	})
	return hit
}

// DeleteSuppressedSlides removes every slide containing the suppression
// token, iterating in descending index order so deletions do not invalidate
// the remaining indexes. It returns the deleted indexes (pre-deletion
// numbering). Per-slide failures are logged and skipped.
func DeleteSuppressedSlides(ppt PresentationSession, log *slog.Logger) []int {
	var deleted []int
	for i := ppt.SlideCount(); i >= 1; i-- {
		slide, err := ppt.Slide(i)
		if err != nil {
			log.Warn("cannot access slide", "index", i, "error", err)
			continue
		}
		if !slideContainsToken(slide, SuppressionToken) {
			continue
		}
		if err := ppt.DeleteSlide(i); err != nil {
			log.Warn("cannot delete suppressed slide", "index", i, "error", err)
			continue
		}
		log.Info("slide deleted", "index", i, "reason", "suppression token")
		deleted = append(deleted, i)
	}
	return deleted
}
