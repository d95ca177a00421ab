package deckfill

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Result records the outcome of one report generation run. A failed run
// carries its error message here; Run never returns pipeline errors directly.
type Result struct {
	Success          bool
	ExcelPath        string
	PPTXPath         string
	ExecutionSeconds float64
	LoopResults      []*LoopResult
	SlidesDeleted    int
	Error            string
}

// Runner drives one template through the full generation pipeline: parameter
// injection, static substitution, loop expansion, table mappings and image
// injections, producing an output workbook and presentation pair.
type Runner struct {
	cfg     *TemplateConfig
	openSP  SpreadsheetOpener
	openPPT PresentationOpener
	opts    []Option
	o       *options
}

// NewRunner creates a runner for one template. The openers select the
// backend (excelize file sessions or desktop COM sessions).
func NewRunner(cfg *TemplateConfig, openSP SpreadsheetOpener, openPPT PresentationOpener, opts ...Option) *Runner {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Runner{cfg: cfg, openSP: openSP, openPPT: openPPT, opts: opts, o: o}
}

// Run executes the pipeline with the given parameter values. Missing required
// parameters abort before any file is touched. Every other failure is folded
// into the returned Result; callers decide whether to keep partial outputs.
func (r *Runner) Run(params map[string]any) *Result {
	start := r.o.now()
	result := &Result{}

	if err := r.run(params, result); err != nil {
		result.Error = err.Error()
		result.Success = false
	} else {
		result.Success = true
	}
	result.ExecutionSeconds = r.o.now().Sub(start).Seconds()
	r.o.logger.Info("run finished",
		"template", r.cfg.Name,
		"success", result.Success,
		"seconds", result.ExecutionSeconds,
		"error", result.Error)
	return result
}

func (r *Runner) run(params map[string]any, result *Result) error {
	log := r.o.logger
	params = r.withDefaults(params)

	// Parameter validation happens before any file I/O so a bad call
	// never leaves half-copied outputs behind.
	if missing := r.cfg.MissingParameters(params); len(missing) > 0 {
		return &MissingParameterError{Names: missing}
	}

	if r.o.preRunSweep {
		if n, err := r.o.sweeper.Sweep(); err == nil && n > 0 {
			log.Warn("killed stray host processes before run", "count", n)
		}
	}
	if r.o.postRunSweep {
		defer func() {
			if n, err := r.o.sweeper.Sweep(); err == nil && n > 0 {
				log.Warn("killed stray host processes after run", "count", n)
			}
		}()
	}

	stamp := Timestamp(r.o.now())
	excelOut := r.outputPath(r.cfg.MasterExcel, params, stamp)
	pptOut := r.outputPath(r.cfg.MasterPPT, params, stamp)
	if err := os.MkdirAll(filepath.Dir(excelOut), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := copyFile(r.cfg.MasterExcel, excelOut); err != nil {
		return fmt.Errorf("copy master workbook: %w", err)
	}
	if err := copyFile(r.cfg.MasterPPT, pptOut); err != nil {
		return fmt.Errorf("copy master presentation: %w", err)
	}
	result.ExcelPath = excelOut
	result.PPTXPath = pptOut
	log.Info("masters copied", "excel", excelOut, "ppt", pptOut)

	sp, err := r.openSP(excelOut)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer sp.Close()

	if err := injectParameters(sp, r.cfg.TagSheet, r.cfg.TagTable, params, r.o); err != nil {
		return err
	}
	r.checkRequiredTables(sp)

	ppt, err := r.openPPT(pptOut)
	if err != nil {
		return fmt.Errorf("open presentation: %w", err)
	}
	defer ppt.Close()

	if err := ppt.RelinkSpreadsheet(r.cfg.MasterExcel, excelOut); err != nil {
		log.Warn("relink to output workbook failed", "error", err)
	}

	tags, err := readTags(sp, r.cfg.TagSheet, r.cfg.TagTable, r.o)
	if err != nil {
		return err
	}

	// Loop slides keep their tag tokens for the per-iteration pass; the
	// static pass must not consume them.
	loopSlides := FindSlidesByIDs(ppt, r.cfg.LoopSlideIDs(), log)
	loopIdx := make(map[int]bool, len(loopSlides))
	for _, s := range loopSlides {
		loopIdx[s.Index()] = true
	}
	for i := 1; i <= ppt.SlideCount(); i++ {
		if loopIdx[i] {
			continue
		}
		slide, err := ppt.Slide(i)
		if err != nil {
			log.Warn("cannot access slide", "index", i, "error", err)
			continue
		}
		SubstituteSlide(slide, tags, log)
	}

	result.SlidesDeleted = len(DeleteSuppressedSlides(ppt, log))
	if err := ppt.Save(); err != nil {
		return fmt.Errorf("save after static pass: %w", err)
	}

	if err := ppt.RefreshLinks(); err != nil {
		log.Warn("refresh linked objects failed", "error", err)
	}
	r.freezeStaticCharts(ppt)

	for _, spec := range r.cfg.Loops {
		expander := NewLoopExpander(sp, ppt, r.cfg, r.opts...)
		lr, err := expander.Expand(spec)
		if lr != nil {
			result.LoopResults = append(result.LoopResults, lr)
		}
		if err != nil {
			log.Error("loop expansion failed", "loop", spec.ID, "error", err)
		}
	}

	ApplyMappings(sp, ppt, r.cfg.Mappings, log)
	r.injectStaticImages(ppt, tags)

	if err := ppt.Save(); err != nil {
		return fmt.Errorf("save presentation: %w", err)
	}
	if err := sp.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// withDefaults fills in defaults declared on optional parameters without
// mutating the caller's map.
func (r *Runner) withDefaults(params map[string]any) map[string]any {
	merged := make(map[string]any, len(params))
	for k, v := range params {
		merged[k] = v
	}
	for _, p := range r.cfg.Parameters {
		if _, ok := merged[p.Name]; !ok && p.Default != nil {
			merged[p.Name] = p.Default
		}
	}
	return merged
}

// checkRequiredTables verifies the template's declared data tables are
// present. Absence is logged, never fatal: the tag formulas degrade to their
// own error values and the run still produces a deck to inspect.
func (r *Runner) checkRequiredTables(sp SpreadsheetSession) {
	for _, entry := range r.cfg.DataSource.RequiredTables {
		sheet, table := r.cfg.TagSheet, entry
		if i := strings.Index(entry, "!"); i > 0 {
			sheet, table = entry[:i], entry[i+1:]
		}
		if _, err := sp.ReadTable(sheet, table); err != nil {
			r.o.logger.Warn("required table unavailable", "sheet", sheet, "table", table, "error", err)
		}
	}
}

// freezeStaticCharts flattens chart objects on every non-loop slide. Loop
// source slides keep live charts so each duplicate freezes that iteration's
// rendering.
func (r *Runner) freezeStaticCharts(ppt PresentationSession) {
	loopSlides := FindSlidesByIDs(ppt, r.cfg.LoopSlideIDs(), r.o.logger)
	loopIdx := make(map[int]bool, len(loopSlides))
	for _, s := range loopSlides {
		loopIdx[s.Index()] = true
	}
	for i := 1; i <= ppt.SlideCount(); i++ {
		if loopIdx[i] {
			continue
		}
		slide, err := ppt.Slide(i)
		if err != nil {
			continue
		}
		FreezeCharts(slide, r.o.logger)
	}
}

// injectStaticImages applies the non-loop-dependent image specs with the
// static tag map. Loop-dependent specs were handled per iteration.
func (r *Runner) injectStaticImages(ppt PresentationSession, tags TagMap) {
	for slideID, specs := range r.cfg.Images {
		var static []ImageSpec
		for _, spec := range specs {
			if !spec.LoopDependent {
				static = append(static, spec)
			}
		}
		if len(static) == 0 {
			continue
		}
		slide := FindSlideByID(ppt, slideID)
		if slide == nil {
			r.o.logger.Warn("image slide not found", "slide", slideID)
			continue
		}
		for _, spec := range static {
			if err := InjectImage(slide, ppt, spec, tags, r.o.logger); err != nil {
				r.o.logger.Warn("image injection failed", "slide", slideID, "error", err)
			}
		}
	}
}

// outputPath derives the run's output file name from the master file name,
// the parameter values in declaration order, and a timestamp.
func (r *Runner) outputPath(master string, params map[string]any, stamp string) string {
	dir := r.cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(master)
	}
	base := filepath.Base(master)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	parts := []string{stem}
	for _, p := range r.cfg.Parameters {
		v, ok := params[p.Name]
		if !ok {
			continue
		}
		parts = append(parts, CleanForFilename(fmt.Sprint(v)))
	}
	parts = append(parts, stamp)
	return filepath.Join(dir, strings.Join(parts, "_")+ext)
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Timestamp formats a run timestamp the way output files are named.
func Timestamp(t time.Time) string {
	return t.Format("20060102_150405")
}
