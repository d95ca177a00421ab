package deckfill

// Geometry is a shape's position and size on a slide, in points.
type Geometry struct {
	Left, Top, Width, Height float64
}

// Shape is anything placed on a slide. Concrete kinds are TextShape,
// GroupShape, TableShape, ChartShape and PictureShape.
type Shape interface {
	Name() string
	Geometry() Geometry
}

// TextShape is a shape with a text frame.
type TextShape interface {
	Shape

	Text() string
	SetText(text string) error

	// ReplaceAt overwrites length bytes of the text starting at the byte
	// offset pos with value. Hosts that address characters rather than
	// bytes convert internally.
	ReplaceAt(pos, length int, value string) error
}

// GroupShape is a group of nested shapes.
type GroupShape interface {
	Shape
	Items() []Shape
}

// TableShape is a presentation table. Row and column indexes are 1-based.
type TableShape interface {
	Shape
	RowCount() int
	ColCount() int
	Cell(row, col int) (TextShape, error)
	SetCellHyperlink(row, col int, url string) error
}

// ChartShape is a live, data-linked chart object.
type ChartShape interface {
	Shape
	ChartName() string
}

// PictureShape is an inserted image.
type PictureShape interface {
	Shape
	SetGeometry(g Geometry) error
	SetName(name string) error
	LockAspectRatio(lock bool) error

	// ZOrderPosition is 1-based; 1 is the very back of the slide.
	ZOrderPosition() int
	SendBackward() error
	SendToBack() error
	BringToFront() error
}

// Slide is one slide of an open presentation session.
type Slide interface {
	Index() int
	Shapes() []Shape

	// InsertPicture inserts an image file at the given geometry. A zero
	// Width/Height means natural size.
	InsertPicture(path string, g Geometry) (PictureShape, error)

	// ConvertChartToPicture replaces a live chart with a flattened picture
	// of its current rendering, decoupling the slide from the data link.
	ConvertChartToPicture(chart ChartShape) (PictureShape, error)
}

// WalkText visits every text-bearing leaf of a shape tree, recursing into
// grouped shapes and into every cell of every table shape. The walk stops
// early when fn returns false. It is the one traversal shared by tag
// substitution, suppression search, slide-by-id search and flexible tag
// search.
func WalkText(shape Shape, fn func(TextShape) bool) bool {
	switch s := shape.(type) {
	case GroupShape:
		for _, item := range s.Items() {
			if !WalkText(item, fn) {
				return false
			}
		}
	case TableShape:
		for r := 1; r <= s.RowCount(); r++ {
			for c := 1; c <= s.ColCount(); c++ {
				cell, err := s.Cell(r, c)
				if err != nil || cell == nil {
					continue
				}
				if !fn(cell) {
					return false
				}
			}
		}
	case TextShape:
		if !fn(s) {
			return false
		}
	}
	return true
}

// WalkSlideText applies WalkText to every shape on a slide.
func WalkSlideText(slide Slide, fn func(TextShape) bool) {
	for _, shape := range slide.Shapes() {
		if !WalkText(shape, fn) {
			return
		}
	}
}
