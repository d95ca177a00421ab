package deckfill

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([^}]+)\}`)

// variantNames maps a placeholder variable to semantically equivalent tag
// names tried when the direct lookup fails. Each variant is also tried in
// lower, upper and title case.
var variantNames = map[string][]string{
	"Catégorie":    {"Category", "Segment", "Type"},
	"Marque":       {"Brand", "Sous_marque", "SousMarque"},
	"Distributeur": {"Distributor", "Enseigne"},
	"Produit":      {"Product"},
}

// ResolveImagePath resolves a file-path pattern with {Var} placeholders
// against the tag map. The Produit variable's value is used verbatim; every
// other value goes through the filesystem-safe sanitizer. When a direct
// lookup fails, semantic synonyms are tried in several cases. When the
// resolved path does not exist and ends in .png, the .jpg sibling is tried.
// Falls back to defaultPath when it exists on disk; returns "" when nothing
// resolves. Deterministic for a fixed pattern, tag map and filesystem state.
func ResolveImagePath(pattern string, tags TagMap, defaultPath string) string {
	resolved := pattern
	for _, match := range placeholderPattern.FindAllStringSubmatch(pattern, -1) {
		variable := match[1]
		value, ok := lookupVariable(variable, tags)
		if !ok {
			return tryDefault(defaultPath)
		}
		resolved = strings.ReplaceAll(resolved, "{"+variable+"}", value)
	}

	if _, err := os.Stat(resolved); err == nil {
		abs, err := filepath.Abs(resolved)
		if err != nil {
			return resolved
		}
		return abs
	}
	if strings.HasSuffix(strings.ToLower(resolved), ".png") {
		jpg := resolved[:len(resolved)-4] + ".jpg"
		if _, err := os.Stat(jpg); err == nil {
			abs, err := filepath.Abs(jpg)
			if err != nil {
				return jpg
			}
			return abs
		}
	}
	return tryDefault(defaultPath)
}

// lookupVariable resolves one {Var} placeholder to its tag value. Produit is
// passed through verbatim; other variables are sanitized for filesystem use.
// A present-but-empty tag does not resolve; the case and synonym variants are
// tried the same way the direct name is.
func lookupVariable(variable string, tags TagMap) (string, bool) {
	candidates := []string{
		"[" + variable + "]",
		"[" + strings.ToLower(variable) + "]",
		"[" + strings.ToUpper(variable) + "]",
		"[" + titleCase(variable) + "]",
	}
	for _, variant := range variantNames[variable] {
		candidates = append(candidates,
			"["+variant+"]",
			"["+strings.ToLower(variant)+"]",
			"["+strings.ToUpper(variant)+"]",
		)
	}
	for _, key := range candidates {
		value, ok := tags[key]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if variable == "Produit" {
			return value, true
		}
		return CleanForFilename(value), true
	}
	return "", false
}

func tryDefault(defaultPath string) string {
	if defaultPath == "" {
		return ""
	}
	if _, err := os.Stat(defaultPath); err != nil {
		return ""
	}
	abs, err := filepath.Abs(defaultPath)
	if err != nil {
		return defaultPath
	}
	return abs
}

// filenameReplacements collapses characters unsafe in file names.
var filenameReplacements = [][2]string{
	{" ", "_"}, {"/", "_"}, {"\\", "_"}, {":", "_"}, {"*", "_"},
	{"?", "_"}, {"\"", "_"}, {"<", "_"}, {">", "_"}, {"|", "_"},
	{"-", "_"}, {".", "_"}, {"&", "and"}, {"%", "pct"},
}

// CleanForFilename makes a tag value safe for use inside a file path.
func CleanForFilename(text string) string {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return "unknown"
	}
	for _, r := range filenameReplacements {
		cleaned = strings.ReplaceAll(cleaned, r[0], r[1])
	}
	for strings.Contains(cleaned, "__") {
		cleaned = strings.ReplaceAll(cleaned, "__", "_")
	}
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return "unknown"
	}
	return cleaned
}

// InjectImage resolves spec.Pattern against the tag map and inserts the
// image on the slide. Geometry is explicit left/top/width/height, or the
// whole page when FitToSlide is set, or natural size when no size is given.
// Background images are pushed fully to the back with a z-order walk, since
// a single send-to-back is not sufficient across host versions. Every
// failure is reported to the caller, which logs and continues: a missing
// image is never fatal to a run.
func InjectImage(slide Slide, ppt PresentationSession, spec ImageSpec, tags TagMap, log *slog.Logger) error {
	ok, err := EvalCondition(spec.Condition, tags)
	if err != nil {
		return fmt.Errorf("image condition: %w", err)
	}
	if !ok {
		log.Debug("image skipped by condition", "pattern", spec.Pattern, "condition", spec.Condition)
		return nil
	}

	path := ResolveImagePath(spec.Pattern, tags, spec.DefaultPath)
	if path == "" {
		return fmt.Errorf("no image found for pattern %q", spec.Pattern)
	}

	g := Geometry{}
	if spec.Position != nil {
		g.Left = spec.Position.Left
		g.Top = spec.Position.Top
	}
	if spec.Size != nil {
		g.Width = spec.Size.Width
		g.Height = spec.Size.Height
	}
	if spec.FitToSlide && (spec.Size == nil) {
		w, h := ppt.PageSize()
		g = Geometry{Left: 0, Top: 0, Width: w, Height: h}
	}

	pic, err := slide.InsertPicture(path, g)
	if err != nil {
		return fmt.Errorf("insert picture %s: %w", path, err)
	}

	if spec.KeepAspect != nil {
		if err := pic.LockAspectRatio(*spec.KeepAspect); err != nil {
			log.Debug("lock aspect ratio failed", "error", err)
		}
	}
	if spec.Name != "" {
		if err := pic.SetName(spec.Name); err != nil {
			log.Debug("rename picture failed", "error", err)
		}
	}
	setImageZOrder(pic, spec.Background, log)
	log.Debug("image injected", "path", filepath.Base(path), "background", spec.Background)
	return nil
}

// setImageZOrder places the picture at the front, or walks it back one step
// at a time until it reaches position 1.
func setImageZOrder(pic PictureShape, background bool, log *slog.Logger) {
	if !background {
		if err := pic.BringToFront(); err != nil {
			log.Debug("bring to front failed", "error", err)
		}
		return
	}
	if err := pic.SendToBack(); err != nil {
		log.Debug("send to back failed", "error", err)
	}
	for pic.ZOrderPosition() > 1 {
		if err := pic.SendBackward(); err != nil {
			break
		}
	}
}
