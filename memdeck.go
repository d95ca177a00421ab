package deckfill

import (
	"fmt"
	"path/filepath"
)

// Deck is an in-memory PresentationSession. It backs dry runs and tests on
// hosts without a presentation application, and is the reference behavior the
// COM session is checked against: duplicates insert immediately after their
// original, indexes are 1-based, z-order is back-to-front shape order.
type Deck struct {
	path         string
	pageW, pageH float64
	slides       []*MemSlide

	Saves        int
	Refreshes    int
	RelinkedFrom string
	RelinkedTo   string
}

// NewDeck creates an empty deck with a 16:9 page.
func NewDeck(path string) *Deck {
	return &Deck{path: path, pageW: 960, pageH: 540}
}

// SetPageSize overrides the page dimensions in points.
func (d *Deck) SetPageSize(w, h float64) { d.pageW, d.pageH = w, h }

func (d *Deck) Path() string    { return d.path }
func (d *Deck) SlideCount() int { return len(d.slides) }

func (d *Deck) Slide(index int) (Slide, error) {
	if index < 1 || index > len(d.slides) {
		return nil, fmt.Errorf("slide index %d out of range 1..%d", index, len(d.slides))
	}
	return d.slides[index-1], nil
}

// AppendSlide adds an empty slide at the end of the deck.
func (d *Deck) AppendSlide() *MemSlide {
	s := &MemSlide{deck: d}
	d.slides = append(d.slides, s)
	return s
}

// DuplicateSlide deep-copies the slide at index and inserts the copy
// immediately after it, returning the copy's index.
func (d *Deck) DuplicateSlide(index int) (int, error) {
	if index < 1 || index > len(d.slides) {
		return 0, fmt.Errorf("slide index %d out of range 1..%d", index, len(d.slides))
	}
	dup := d.slides[index-1].clone(d)
	d.slides = append(d.slides, nil)
	copy(d.slides[index+1:], d.slides[index:])
	d.slides[index] = dup
	return index + 1, nil
}

func (d *Deck) MoveSlide(from, to int) error {
	n := len(d.slides)
	if from < 1 || from > n || to < 1 || to > n {
		return fmt.Errorf("move %d to %d out of range 1..%d", from, to, n)
	}
	s := d.slides[from-1]
	d.slides = append(d.slides[:from-1], d.slides[from:]...)
	rest := append([]*MemSlide{s}, d.slides[to-1:]...)
	d.slides = append(d.slides[:to-1], rest...)
	return nil
}

func (d *Deck) DeleteSlide(index int) error {
	if index < 1 || index > len(d.slides) {
		return fmt.Errorf("slide index %d out of range 1..%d", index, len(d.slides))
	}
	d.slides = append(d.slides[:index-1], d.slides[index:]...)
	return nil
}

func (d *Deck) PageSize() (float64, float64) { return d.pageW, d.pageH }

func (d *Deck) RelinkSpreadsheet(oldPath, newPath string) error {
	d.RelinkedFrom, d.RelinkedTo = oldPath, newPath
	return nil
}

func (d *Deck) RefreshLinks() error {
	d.Refreshes++
	return nil
}

func (d *Deck) Save() error  { d.Saves++; return nil }
func (d *Deck) Close() error { return nil }

// MemSlide is one slide of a Deck. Shapes are stored back-to-front.
type MemSlide struct {
	deck   *Deck
	shapes []Shape
}

func (s *MemSlide) Index() int {
	for i, sl := range s.deck.slides {
		if sl == s {
			return i + 1
		}
	}
	return 0
}

func (s *MemSlide) Shapes() []Shape { return s.shapes }

// AddTextBox appends a text shape.
func (s *MemSlide) AddTextBox(name, text string) *MemText {
	t := &MemText{name: name, text: text}
	s.shapes = append(s.shapes, t)
	return t
}

// AddGroup appends a group of nested shapes.
func (s *MemSlide) AddGroup(name string, items ...Shape) *MemGroup {
	g := &MemGroup{name: name, items: items}
	s.shapes = append(s.shapes, g)
	return g
}

// AddTable appends an empty rows-by-cols table shape.
func (s *MemSlide) AddTable(name string, rows, cols int) *MemTable {
	t := &MemTable{name: name, links: map[[2]int]string{}}
	for r := 0; r < rows; r++ {
		row := make([]*MemText, cols)
		for c := 0; c < cols; c++ {
			row[c] = &MemText{name: fmt.Sprintf("%s_r%dc%d", name, r+1, c+1)}
		}
		t.cells = append(t.cells, row)
	}
	s.shapes = append(s.shapes, t)
	return t
}

// AddChart appends a live chart placeholder.
func (s *MemSlide) AddChart(name, chartName string) *MemChart {
	c := &MemChart{name: name, chartName: chartName}
	s.shapes = append(s.shapes, c)
	return c
}

func (s *MemSlide) InsertPicture(path string, g Geometry) (PictureShape, error) {
	p := &MemPicture{name: filepath.Base(path), path: path, g: g, slide: s}
	s.shapes = append(s.shapes, p)
	return p, nil
}

// ConvertChartToPicture swaps the chart for a picture at the chart's slot in
// the z-order.
func (s *MemSlide) ConvertChartToPicture(chart ChartShape) (PictureShape, error) {
	for i, shape := range s.shapes {
		if shape == chart {
			p := &MemPicture{name: chart.ChartName(), path: chart.ChartName() + ".png", g: chart.Geometry(), slide: s}
			s.shapes[i] = p
			return p, nil
		}
	}
	return nil, fmt.Errorf("chart %q is not on slide %d", chart.ChartName(), s.Index())
}

func (s *MemSlide) clone(d *Deck) *MemSlide {
	dup := &MemSlide{deck: d}
	for _, shape := range s.shapes {
		dup.shapes = append(dup.shapes, cloneShape(shape, dup))
	}
	return dup
}

func cloneShape(shape Shape, owner *MemSlide) Shape {
	switch v := shape.(type) {
	case *MemText:
		c := *v
		return &c
	case *MemGroup:
		g := &MemGroup{name: v.name, g: v.g}
		for _, item := range v.items {
			g.items = append(g.items, cloneShape(item, owner))
		}
		return g
	case *MemTable:
		t := &MemTable{name: v.name, g: v.g, links: map[[2]int]string{}}
		for _, row := range v.cells {
			var dup []*MemText
			for _, cell := range row {
				c := *cell
				dup = append(dup, &c)
			}
			t.cells = append(t.cells, dup)
		}
		for k, url := range v.links {
			t.links[k] = url
		}
		return t
	case *MemChart:
		c := *v
		return &c
	case *MemPicture:
		c := *v
		c.slide = owner
		return &c
	default:
		return shape
	}
}

// MemText is a text shape with byte-addressed offset replacement.
type MemText struct {
	name string
	g    Geometry
	text string

	// RejectReplaceAt simulates a host that only supports whole-frame
	// rewrites.
	RejectReplaceAt bool
}

func (t *MemText) Name() string       { return t.name }
func (t *MemText) Geometry() Geometry { return t.g }
func (t *MemText) Text() string       { return t.text }

func (t *MemText) SetText(text string) error {
	t.text = text
	return nil
}

func (t *MemText) ReplaceAt(pos, length int, value string) error {
	if t.RejectReplaceAt {
		return fmt.Errorf("offset edit rejected")
	}
	if pos < 0 || pos+length > len(t.text) {
		return fmt.Errorf("replace [%d,%d) outside text of %d bytes", pos, pos+length, len(t.text))
	}
	t.text = t.text[:pos] + value + t.text[pos+length:]
	return nil
}

// MemGroup is a group of nested shapes.
type MemGroup struct {
	name  string
	g     Geometry
	items []Shape
}

func (g *MemGroup) Name() string       { return g.name }
func (g *MemGroup) Geometry() Geometry { return g.g }
func (g *MemGroup) Items() []Shape     { return g.items }

// MemTable is a table shape of text cells.
type MemTable struct {
	name  string
	g     Geometry
	cells [][]*MemText
	links map[[2]int]string
}

func (t *MemTable) Name() string       { return t.name }
func (t *MemTable) Geometry() Geometry { return t.g }
func (t *MemTable) RowCount() int      { return len(t.cells) }

func (t *MemTable) ColCount() int {
	if len(t.cells) == 0 {
		return 0
	}
	return len(t.cells[0])
}

func (t *MemTable) Cell(row, col int) (TextShape, error) {
	if row < 1 || row > t.RowCount() || col < 1 || col > t.ColCount() {
		return nil, fmt.Errorf("cell (%d,%d) outside %dx%d table", row, col, t.RowCount(), t.ColCount())
	}
	return t.cells[row-1][col-1], nil
}

func (t *MemTable) SetCellHyperlink(row, col int, url string) error {
	if row < 1 || row > t.RowCount() || col < 1 || col > t.ColCount() {
		return fmt.Errorf("cell (%d,%d) outside %dx%d table", row, col, t.RowCount(), t.ColCount())
	}
	t.links[[2]int{row, col}] = url
	return nil
}

// CellHyperlink returns the hyperlink set on a cell, or "".
func (t *MemTable) CellHyperlink(row, col int) string {
	return t.links[[2]int{row, col}]
}

// MemChart is a live chart placeholder.
type MemChart struct {
	name      string
	chartName string
	g         Geometry
}

func (c *MemChart) Name() string       { return c.name }
func (c *MemChart) Geometry() Geometry { return c.g }
func (c *MemChart) ChartName() string  { return c.chartName }

// SetGeometry positions the chart; the builder API uses it when composing
// decks.
func (c *MemChart) SetGeometry(g Geometry) { c.g = g }

// MemPicture is an inserted image. Z-order is its position in the owning
// slide's shape slice.
type MemPicture struct {
	name   string
	path   string
	g      Geometry
	locked bool
	slide  *MemSlide
}

func (p *MemPicture) Name() string       { return p.name }
func (p *MemPicture) Geometry() Geometry { return p.g }
func (p *MemPicture) Path() string       { return p.path }
func (p *MemPicture) AspectLocked() bool { return p.locked }

func (p *MemPicture) SetGeometry(g Geometry) error { p.g = g; return nil }
func (p *MemPicture) SetName(name string) error    { p.name = name; return nil }

func (p *MemPicture) LockAspectRatio(lock bool) error {
	p.locked = lock
	return nil
}

func (p *MemPicture) ZOrderPosition() int {
	for i, shape := range p.slide.shapes {
		if shape == p {
			return i + 1
		}
	}
	return 0
}

func (p *MemPicture) SendBackward() error {
	i := p.ZOrderPosition()
	if i <= 1 {
		return nil
	}
	p.slide.shapes[i-2], p.slide.shapes[i-1] = p.slide.shapes[i-1], p.slide.shapes[i-2]
	return nil
}

func (p *MemPicture) SendToBack() error {
	i := p.ZOrderPosition()
	if i <= 1 {
		return nil
	}
	shapes := p.slide.shapes
	copy(shapes[1:i], shapes[:i-1])
	shapes[0] = p
	return nil
}

func (p *MemPicture) BringToFront() error {
	i := p.ZOrderPosition()
	shapes := p.slide.shapes
	if i == 0 || i == len(shapes) {
		return nil
	}
	copy(shapes[i-1:], shapes[i:])
	shapes[len(shapes)-1] = p
	return nil
}
