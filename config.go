package deckfill

import (
	"encoding/json"
	"fmt"
	"os"
)

// Parameter declares one run-time parameter of a template.
type Parameter struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Default  any    `json:"default,omitempty"`
}

// DataSource describes the data tables a template expects in its workbook.
type DataSource struct {
	RequiredTables []string `json:"required_tables,omitempty"`
}

// LoopSpec declares one repeated slide block: which slides form the template
// of the block, and which Loop-table row (matched by ID) drives the
// iteration. Read-only during a run.
type LoopSpec struct {
	ID     string   `json:"loop_id"`
	Slides []string `json:"slides"`
	Sheet  string   `json:"sheet_name"`
}

// Position is an explicit left/top placement in points.
type Position struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// SizeSpec is an explicit width/height in points.
type SizeSpec struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ImageSpec declares one image injection. Pattern may contain {Var}
// placeholders resolved against the current tag map. LoopDependent images are
// only injected inside loop-duplicated slides, with that iteration's tags.
// Condition, when set, is a boolean expression over the tag values; the
// image is skipped when it evaluates false.
type ImageSpec struct {
	Pattern       string    `json:"pattern"`
	DefaultPath   string    `json:"default_path,omitempty"`
	Position      *Position `json:"position,omitempty"`
	Size          *SizeSpec `json:"size,omitempty"`
	FitToSlide    bool      `json:"fit_to_slide,omitempty"`
	KeepAspect    *bool     `json:"keep_aspect,omitempty"`
	Name          string    `json:"name,omitempty"`
	Background    bool      `json:"background,omitempty"`
	LoopDependent bool      `json:"loop_dependent,omitempty"`
	Condition     string    `json:"condition,omitempty"`
}

// SlideMapping declares a rectangular spreadsheet region copied into the
// first table shape found on the target slide.
type SlideMapping struct {
	SlideID   string `json:"slide_id"`
	Sheet     string `json:"sheet_name"`
	Range     string `json:"excel_range"`
	HasHeader bool   `json:"has_header"`
}

// TemplateConfig is the immutable configuration of one report template. The
// persistence layer supplies it in memory; LoadConfig reads the JSON form the
// admin tooling writes.
type TemplateConfig struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  []Parameter            `json:"parameters,omitempty"`
	DataSource  DataSource             `json:"data_source,omitempty"`
	TagSheet    string                 `json:"tag_sheet,omitempty"`
	TagTable    string                 `json:"tag_table,omitempty"`
	Loops       []LoopSpec             `json:"loops,omitempty"`
	Images      map[string][]ImageSpec `json:"image_injections,omitempty"`
	Mappings    []SlideMapping         `json:"slide_mappings,omitempty"`
	MasterExcel string                 `json:"master_excel"`
	MasterPPT   string                 `json:"master_ppt"`
	OutputDir   string                 `json:"output_dir,omitempty"`
}

// DefaultTagSheet and DefaultTagTable name the structured table holding the
// replacement tags when the template does not override them.
const (
	DefaultTagSheet = "Balises"
	DefaultTagTable = "Balises"
)

// LoadConfig reads a TemplateConfig from a JSON file.
func LoadConfig(path string) (*TemplateConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg TemplateConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *TemplateConfig) applyDefaults() {
	if c.TagSheet == "" {
		c.TagSheet = DefaultTagSheet
	}
	if c.TagTable == "" {
		c.TagTable = DefaultTagTable
	}
}

// Validate checks the structural integrity of the configuration.
func (c *TemplateConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("template config: name is required")
	}
	if c.MasterExcel == "" || c.MasterPPT == "" {
		return fmt.Errorf("template config %q: master_excel and master_ppt are required", c.Name)
	}
	for _, l := range c.Loops {
		if l.ID == "" {
			return fmt.Errorf("template config %q: loop with empty loop_id", c.Name)
		}
		if len(l.Slides) == 0 {
			return fmt.Errorf("template config %q: loop %q declares no slides", c.Name, l.ID)
		}
		if l.Sheet == "" {
			return fmt.Errorf("template config %q: loop %q declares no sheet_name", c.Name, l.ID)
		}
	}
	for slideID, specs := range c.Images {
		for i, spec := range specs {
			if spec.Pattern == "" {
				return fmt.Errorf("template config %q: image %d on slide %q has no pattern", c.Name, i, slideID)
			}
		}
	}
	return nil
}

// MissingParameters returns the names of required parameters absent from
// params, in declaration order.
func (c *TemplateConfig) MissingParameters(params map[string]any) []string {
	var missing []string
	for _, p := range c.Parameters {
		if !p.Required {
			continue
		}
		if _, ok := params[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// LoopSlideIDs returns the union of all slide identifiers claimed by loops.
// The run orchestrator skips these during the static substitution pass so
// their tags are only substituted per-iteration.
func (c *TemplateConfig) LoopSlideIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, l := range c.Loops {
		for _, id := range l.Slides {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
