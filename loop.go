package deckfill

import (
	"fmt"
	"sort"
	"time"
)

// SourceSlideHandle tracks one loop source slide: its identifier, the
// position captured before any duplication began, and its current position
// as insertions and moves shift the deck. The captured position is what each
// duplicate's target is computed from; recomputing after insertion would be
// wrong because earlier insertions shift the rest of the deck. Handles are
// invalid once the delete step has run.
type SourceSlideHandle struct {
	ID        string
	OrigIndex int
	CurIndex  int
}

// IterationResult records the outcome of one loop iteration.
type IterationResult struct {
	Iteration int
	Slides    int
	Success   bool
	Error     string
}

// LoopResult records the outcome of one loop's expansion.
type LoopResult struct {
	LoopID     string
	Count      int
	Duplicates int
	Iterations []IterationResult
}

// LoopExpander materializes loop-duplicated slides against one open
// spreadsheet session and one open presentation session. Both sessions stay
// open for the full duration of a loop's expansion; per-iteration reopening
// was rejected as far slower and less reliable.
type LoopExpander struct {
	sp       SpreadsheetSession
	ppt      PresentationSession
	images   map[string][]ImageSpec
	tagSheet string
	tagTable string
	o        *options
}

// NewLoopExpander creates an expander for one template's loops. The config
// supplies the image injection map and the tag table location; only
// loop-dependent image specs are applied during expansion.
func NewLoopExpander(sp SpreadsheetSession, ppt PresentationSession, cfg *TemplateConfig, opts ...Option) *LoopExpander {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &LoopExpander{
		sp:       sp,
		ppt:      ppt,
		images:   cfg.Images,
		tagSheet: cfg.TagSheet,
		tagTable: cfg.TagTable,
		o:        o,
	}
}

// Expand runs one loop end to end: read the iteration count, capture the
// source slides, then per iteration write the index, wait for the
// recalculation to settle, re-read the tags and materialize one duplicate
// per source slide; finally delete the sources and save. A count that cannot
// be read or sources that cannot be located abort this loop only. Failures
// inside a single iteration skip that iteration.
func (e *LoopExpander) Expand(spec LoopSpec) (*LoopResult, error) {
	log := e.o.logger
	result := &LoopResult{LoopID: spec.ID}

	count, err := readIterationCount(e.sp, spec.Sheet, spec.ID, e.o)
	if err != nil {
		return nil, fmt.Errorf("loop %q: read iteration count: %w", spec.ID, err)
	}
	result.Count = count
	if count <= 0 {
		log.Info("loop skipped, no iterations", "loop", spec.ID, "count", count)
		return result, nil
	}

	handles := e.locateSources(spec)
	if len(handles) == 0 {
		return nil, fmt.Errorf("loop %q: none of the source slides %v resolve", spec.ID, spec.Slides)
	}
	log.Info("loop expansion starting", "loop", spec.ID, "iterations", count, "sources", len(handles))

	for iteration := 1; iteration <= count; iteration++ {
		ir := e.runIteration(spec, handles, iteration)
		result.Iterations = append(result.Iterations, ir)
		if ir.Success {
			result.Duplicates += ir.Slides
		}
	}

	e.deleteSources(handles)
	if err := e.ppt.Save(); err != nil {
		return result, fmt.Errorf("loop %q: save presentation: %w", spec.ID, err)
	}
	log.Info("loop expansion done", "loop", spec.ID, "duplicates", result.Duplicates)
	return result, nil
}

// locateSources resolves the loop's slide ids and captures their current
// positions before any duplication begins.
func (e *LoopExpander) locateSources(spec LoopSpec) []*SourceSlideHandle {
	found := FindSlidesByIDs(e.ppt, spec.Slides, e.o.logger)
	var handles []*SourceSlideHandle
	for _, id := range spec.Slides {
		slide, ok := found[id]
		if !ok {
			continue
		}
		handles = append(handles, &SourceSlideHandle{
			ID:        id,
			OrigIndex: slide.Index(),
			CurIndex:  slide.Index(),
		})
	}
	return handles
}

// runIteration materializes the duplicates for one iteration. The iteration
// index is written to the Loop table (forcing recalculation and save), the
// tags are re-read with the settled values, and each source slide is
// duplicated, repositioned, substituted, image-injected and chart-frozen.
// The source slides themselves are never touched.
func (e *LoopExpander) runIteration(spec LoopSpec, handles []*SourceSlideHandle, iteration int) IterationResult {
	log := e.o.logger
	ir := IterationResult{Iteration: iteration}

	if err := writeIteration(e.sp, spec.Sheet, spec.ID, iteration, e.o); err != nil {
		log.Warn("iteration skipped, cannot write index", "loop", spec.ID, "iteration", iteration, "error", err)
		ir.Error = err.Error()
		return ir
	}
	e.waitForRecalc()

	tags, err := readTags(e.sp, e.tagSheet, e.tagTable, e.o)
	if err != nil {
		log.Warn("iteration skipped, cannot re-read tags", "loop", spec.ID, "iteration", iteration, "error", err)
		ir.Error = err.Error()
		return ir
	}

	for _, h := range handles {
		if err := e.materialize(h, iteration, tags, handles); err != nil {
			log.Warn("slide skipped in iteration", "loop", spec.ID, "iteration", iteration, "slide", h.ID, "error", err)
			if ir.Error == "" {
				ir.Error = err.Error()
			}
			continue
		}
		ir.Slides++
	}
	ir.Success = ir.Slides > 0
	return ir
}

// materialize duplicates one source slide for one iteration, moves the copy
// to OrigIndex + iteration - 1, and rewrites the copy's contents. Handle
// positions are shifted as the insertion and the move displace the deck.
func (e *LoopExpander) materialize(h *SourceSlideHandle, iteration int, tags TagMap, handles []*SourceSlideHandle) error {
	dupIdx, err := e.ppt.DuplicateSlide(h.CurIndex)
	if err != nil {
		return fmt.Errorf("duplicate slide %q: %w", h.ID, err)
	}
	shiftAfterInsert(handles, dupIdx)

	target := h.OrigIndex + iteration - 1
	if target != dupIdx {
		if err := e.ppt.MoveSlide(dupIdx, target); err != nil {
			return fmt.Errorf("move duplicate of %q to %d: %w", h.ID, target, err)
		}
		shiftAfterMove(handles, dupIdx, target)
	}

	dup, err := e.ppt.Slide(target)
	if err != nil {
		return fmt.Errorf("access duplicate of %q at %d: %w", h.ID, target, err)
	}

	SubstituteSlide(dup, tags, e.o.logger)

	for _, spec := range e.images[h.ID] {
		if !spec.LoopDependent {
			continue
		}
		if err := InjectImage(dup, e.ppt, spec, tags, e.o.logger); err != nil {
			e.o.logger.Warn("loop image injection failed", "slide", h.ID, "iteration", iteration, "error", err)
		}
	}

	FreezeCharts(dup, e.o.logger)
	return nil
}

// deleteSources removes the original source slides in descending index
// order, so each delete does not invalidate the remaining indexes.
func (e *LoopExpander) deleteSources(handles []*SourceSlideHandle) {
	sorted := make([]*SourceSlideHandle, len(handles))
	copy(sorted, handles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CurIndex > sorted[j].CurIndex })
	for _, h := range sorted {
		if err := e.ppt.DeleteSlide(h.CurIndex); err != nil {
			e.o.logger.Warn("cannot delete source slide", "slide", h.ID, "index", h.CurIndex, "error", err)
			continue
		}
		for _, other := range handles {
			if other.CurIndex > h.CurIndex {
				other.CurIndex--
			}
		}
		h.CurIndex = 0
	}
}

// waitForRecalc waits for the spreadsheet host to finish recalculating.
// When the backend exposes a calculation signal it is polled up to the
// settle limit; otherwise the fixed settle delay elapses.
func (e *LoopExpander) waitForRecalc() {
	if _, supported := e.sp.Calculating(); supported {
		deadline := e.o.now().Add(e.o.settleLimit)
		for {
			busy, _ := e.sp.Calculating()
			if !busy {
				return
			}
			if e.o.now().After(deadline) {
				e.o.logger.Warn("recalculation still busy past settle limit")
				return
			}
			e.o.sleep(50 * time.Millisecond)
		}
	}
	e.o.sleep(e.o.settleDelay)
}

// shiftAfterInsert bumps every handle at or after the inserted index.
func shiftAfterInsert(handles []*SourceSlideHandle, inserted int) {
	for _, h := range handles {
		if h.CurIndex >= inserted {
			h.CurIndex++
		}
	}
}

// shiftAfterMove adjusts handles for a slide moved from a higher index to a
// lower one: everything in [to, from) shifts forward by one.
func shiftAfterMove(handles []*SourceSlideHandle, from, to int) {
	for _, h := range handles {
		if h.CurIndex >= to && h.CurIndex < from {
			h.CurIndex++
		}
	}
}
