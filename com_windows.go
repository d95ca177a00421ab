//go:build windows

package deckfill

import (
	"fmt"
	"path/filepath"
	"runtime"
	"unicode/utf8"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// Office object-model constants.
const (
	msoTrue  = -1
	msoFalse = 0

	msoGroup   = 6
	msoPicture = 13

	msoBringToFront = 0
	msoSendToBack   = 1
	msoSendBackward = 3

	ppPastePNG = 6

	xlCalculationStateDone = 0
)

// OLE dispatch helpers. COM errors carry the host's message text, which is
// what IsTransient matches against.

func comProp(d *ole.IDispatch, name string, args ...interface{}) (*ole.VARIANT, error) {
	return oleutil.GetProperty(d, name, args...)
}

func comCall(d *ole.IDispatch, name string, args ...interface{}) (*ole.VARIANT, error) {
	return oleutil.CallMethod(d, name, args...)
}

func comPut(d *ole.IDispatch, name string, value interface{}) error {
	_, err := oleutil.PutProperty(d, name, value)
	return err
}

func comDisp(d *ole.IDispatch, name string, args ...interface{}) (*ole.IDispatch, error) {
	v, err := comProp(d, name, args...)
	if err != nil {
		return nil, err
	}
	disp := v.ToIDispatch()
	if disp == nil {
		return nil, fmt.Errorf("%s is not an object", name)
	}
	return disp, nil
}

func comStr(d *ole.IDispatch, name string, args ...interface{}) string {
	v, err := comProp(d, name, args...)
	if err != nil {
		return ""
	}
	defer v.Clear()
	return v.ToString()
}

func comInt(d *ole.IDispatch, name string, args ...interface{}) int {
	v, err := comProp(d, name, args...)
	if err != nil {
		return 0
	}
	defer v.Clear()
	return int(v.Val)
}

func comFloat(d *ole.IDispatch, name string, args ...interface{}) float64 {
	v, err := comProp(d, name, args...)
	if err != nil {
		return 0
	}
	defer v.Clear()
	if f, ok := v.Value().(float64); ok {
		return f
	}
	return float64(v.Val)
}

// ExcelCOMSession drives a desktop Excel instance over COM. All calls must
// stay on the thread that initialized the apartment, so the opener locks the
// goroutine to its OS thread for the session's lifetime.
type ExcelCOMSession struct {
	path     string
	app      *ole.IDispatch
	workbook *ole.IDispatch
}

// OpenExcelCOM opens a workbook in a hidden desktop Excel instance. It
// satisfies SpreadsheetOpener.
func OpenExcelCOM(path string) (SpreadsheetSession, error) {
	runtime.LockOSThread()
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		if oleErr, ok := err.(*ole.OleError); !ok || oleErr.Code() != 1 {
			runtime.UnlockOSThread()
			return nil, fmt.Errorf("initialize COM: %w", err)
		}
	}
	unknown, err := oleutil.CreateObject("Excel.Application")
	if err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("start Excel: %w", err)
	}
	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("query Excel dispatch: %w", err)
	}
	_ = comPut(app, "Visible", false)
	_ = comPut(app, "DisplayAlerts", false)

	workbooks, err := comDisp(app, "Workbooks")
	if err != nil {
		_, _ = comCall(app, "Quit")
		return nil, fmt.Errorf("access Workbooks: %w", err)
	}
	wbv, err := comCall(workbooks, "Open", path)
	if err != nil {
		_, _ = comCall(app, "Quit")
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &ExcelCOMSession{path: path, app: app, workbook: wbv.ToIDispatch()}, nil
}

func (s *ExcelCOMSession) Path() string { return s.path }

func (s *ExcelCOMSession) sheet(name string) (*ole.IDispatch, error) {
	ws, err := comDisp(s.workbook, "Worksheets", name)
	if err != nil {
		return nil, &NotFoundError{Kind: "sheet", Name: name}
	}
	return ws, nil
}

func (s *ExcelCOMSession) listObject(sheet, table string) (*ole.IDispatch, error) {
	ws, err := s.sheet(sheet)
	if err != nil {
		return nil, err
	}
	lo, err := comDisp(ws, "ListObjects", table)
	if err != nil {
		return nil, &NotFoundError{Kind: "table", Name: table}
	}
	return lo, nil
}

func (s *ExcelCOMSession) ReadTable(sheet, name string) (*Table, error) {
	lo, err := s.listObject(sheet, name)
	if err != nil {
		return nil, err
	}
	t := &Table{Name: name, Sheet: sheet}

	header, err := comDisp(lo, "HeaderRowRange")
	if err == nil {
		cols := comInt(comMust(comDisp(header, "Columns")), "Count")
		for c := 1; c <= cols; c++ {
			cell, err := comDisp(header, "Cells", 1, c)
			if err != nil {
				continue
			}
			t.Headers = append(t.Headers, comStr(cell, "Text"))
		}
	}

	body, err := comDisp(lo, "DataBodyRange")
	if err != nil {
		// A table with no data rows has no body range.
		return t, nil
	}
	rows := comInt(comMust(comDisp(body, "Rows")), "Count")
	cols := comInt(comMust(comDisp(body, "Columns")), "Count")
	for r := 1; r <= rows; r++ {
		var cells []Cell
		for c := 1; c <= cols; c++ {
			cellDisp, err := comDisp(body, "Cells", r, c)
			if err != nil {
				return nil, fmt.Errorf("read %s!%s cell (%d,%d): %w", sheet, name, r, c, err)
			}
			cells = append(cells, readCOMCell(cellDisp))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

// comMust discards the error of a dispatch lookup that the caller has already
// validated.
func comMust(d *ole.IDispatch, err error) *ole.IDispatch { return d }

func readCOMCell(cell *ole.IDispatch) Cell {
	c := Cell{Text: comStr(cell, "Text")}
	if v, err := comProp(cell, "Value"); err == nil {
		if v.Value() != nil {
			c.Raw = fmt.Sprint(v.Value())
		}
		v.Clear()
	}
	if links, err := comDisp(cell, "Hyperlinks"); err == nil && comInt(links, "Count") > 0 {
		if link, err := comDisp(links, "Item", 1); err == nil {
			c.Hyperlink = comStr(link, "Address")
		}
	}
	if c.Hyperlink == "" {
		formula := comStr(cell, "Formula")
		if m := hyperlinkFormulaPattern.FindStringSubmatch(formula); m != nil {
			c.Hyperlink = m[1]
		}
	}
	return c
}

func (s *ExcelCOMSession) WriteTableCell(sheet, table string, row, col int, value any) error {
	lo, err := s.listObject(sheet, table)
	if err != nil {
		return err
	}
	body, err := comDisp(lo, "DataBodyRange")
	if err != nil {
		return fmt.Errorf("table %q has no data body", table)
	}
	cell, err := comDisp(body, "Cells", row, col)
	if err != nil {
		return fmt.Errorf("table %q cell (%d,%d): %w", table, row, col, err)
	}
	if err := comPut(cell, "Value", value); err != nil {
		return fmt.Errorf("write table %q cell (%d,%d): %w", table, row, col, err)
	}
	return nil
}

func (s *ExcelCOMSession) ReadRange(sheet, ref string) (*RangeData, error) {
	ws, err := s.sheet(sheet)
	if err != nil {
		return nil, err
	}
	rng, err := comDisp(ws, "Range", ref)
	if err != nil {
		return nil, fmt.Errorf("range %s!%s: %w", sheet, ref, err)
	}
	rows := comInt(comMust(comDisp(rng, "Rows")), "Count")
	cols := comInt(comMust(comDisp(rng, "Columns")), "Count")
	data := &RangeData{}
	for r := 1; r <= rows; r++ {
		var cells []Cell
		for c := 1; c <= cols; c++ {
			cellDisp, err := comDisp(rng, "Cells", r, c)
			if err != nil {
				return nil, fmt.Errorf("range %s!%s cell (%d,%d): %w", sheet, ref, r, c, err)
			}
			cells = append(cells, readCOMCell(cellDisp))
		}
		data.Cells = append(data.Cells, cells)
	}
	return data, nil
}

func (s *ExcelCOMSession) Recalculate() error {
	if _, err := comCall(s.app, "CalculateFullRebuild"); err != nil {
		if _, err := comCall(s.app, "CalculateFull"); err != nil {
			return fmt.Errorf("recalculate: %w", err)
		}
	}
	return nil
}

func (s *ExcelCOMSession) Calculating() (busy, supported bool) {
	v, err := comProp(s.app, "CalculationState")
	if err != nil {
		return false, false
	}
	defer v.Clear()
	return int(v.Val) != xlCalculationStateDone, true
}

// ExportCharts renders every chart object in the workbook to a PNG under dir.
func (s *ExcelCOMSession) ExportCharts(dir string) (map[string][]string, error) {
	sheets, err := comDisp(s.workbook, "Worksheets")
	if err != nil {
		return nil, fmt.Errorf("access worksheets: %w", err)
	}
	out := make(map[string][]string)
	count := comInt(sheets, "Count")
	for i := 1; i <= count; i++ {
		ws, err := comDisp(sheets, "Item", i)
		if err != nil {
			continue
		}
		sheetName := comStr(ws, "Name")
		charts, err := comDisp(ws, "ChartObjects")
		if err != nil {
			continue
		}
		n := comInt(charts, "Count")
		for j := 1; j <= n; j++ {
			co, err := comDisp(charts, "Item", j)
			if err != nil {
				continue
			}
			chart, err := comDisp(co, "Chart")
			if err != nil {
				continue
			}
			path := filepath.Join(dir, ChartImageName(sheetName, comStr(co, "Name"), j))
			if _, err := comCall(chart, "Export", path, "PNG"); err != nil {
				continue
			}
			out[sheetName] = append(out[sheetName], path)
		}
	}
	return out, nil
}

func (s *ExcelCOMSession) Save() error {
	if _, err := comCall(s.workbook, "Save"); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (s *ExcelCOMSession) Close() error {
	_, _ = comCall(s.workbook, "Close", false)
	_, _ = comCall(s.app, "Quit")
	s.workbook.Release()
	s.app.Release()
	ole.CoUninitialize()
	runtime.UnlockOSThread()
	return nil
}

// PowerPointCOMSession drives a desktop PowerPoint instance over COM.
type PowerPointCOMSession struct {
	path string
	app  *ole.IDispatch
	pres *ole.IDispatch
}

// OpenPowerPointCOM opens a presentation without a visible window. It
// satisfies PresentationOpener.
func OpenPowerPointCOM(path string) (PresentationSession, error) {
	runtime.LockOSThread()
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		if oleErr, ok := err.(*ole.OleError); !ok || oleErr.Code() != 1 {
			runtime.UnlockOSThread()
			return nil, fmt.Errorf("initialize COM: %w", err)
		}
	}
	unknown, err := oleutil.CreateObject("PowerPoint.Application")
	if err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("start PowerPoint: %w", err)
	}
	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("query PowerPoint dispatch: %w", err)
	}
	presentations, err := comDisp(app, "Presentations")
	if err != nil {
		_, _ = comCall(app, "Quit")
		return nil, fmt.Errorf("access Presentations: %w", err)
	}
	// ReadOnly:=false, Untitled:=false, WithWindow:=false.
	pv, err := comCall(presentations, "Open", path, msoFalse, msoFalse, msoFalse)
	if err != nil {
		_, _ = comCall(app, "Quit")
		return nil, fmt.Errorf("open presentation %s: %w", path, err)
	}
	return &PowerPointCOMSession{path: path, app: app, pres: pv.ToIDispatch()}, nil
}

func (s *PowerPointCOMSession) Path() string { return s.path }

func (s *PowerPointCOMSession) slides() (*ole.IDispatch, error) {
	return comDisp(s.pres, "Slides")
}

func (s *PowerPointCOMSession) SlideCount() int {
	slides, err := s.slides()
	if err != nil {
		return 0
	}
	return comInt(slides, "Count")
}

func (s *PowerPointCOMSession) Slide(index int) (Slide, error) {
	slides, err := s.slides()
	if err != nil {
		return nil, err
	}
	disp, err := comDisp(slides, "Item", index)
	if err != nil {
		return nil, fmt.Errorf("slide %d: %w", index, err)
	}
	return &comSlide{session: s, disp: disp}, nil
}

func (s *PowerPointCOMSession) DuplicateSlide(index int) (int, error) {
	slides, err := s.slides()
	if err != nil {
		return 0, err
	}
	slide, err := comDisp(slides, "Item", index)
	if err != nil {
		return 0, fmt.Errorf("slide %d: %w", index, err)
	}
	if _, err := comCall(slide, "Duplicate"); err != nil {
		return 0, fmt.Errorf("duplicate slide %d: %w", index, err)
	}
	return index + 1, nil
}

func (s *PowerPointCOMSession) MoveSlide(from, to int) error {
	slides, err := s.slides()
	if err != nil {
		return err
	}
	slide, err := comDisp(slides, "Item", from)
	if err != nil {
		return fmt.Errorf("slide %d: %w", from, err)
	}
	if _, err := comCall(slide, "MoveTo", to); err != nil {
		return fmt.Errorf("move slide %d to %d: %w", from, to, err)
	}
	return nil
}

func (s *PowerPointCOMSession) DeleteSlide(index int) error {
	slides, err := s.slides()
	if err != nil {
		return err
	}
	slide, err := comDisp(slides, "Item", index)
	if err != nil {
		return fmt.Errorf("slide %d: %w", index, err)
	}
	if _, err := comCall(slide, "Delete"); err != nil {
		return fmt.Errorf("delete slide %d: %w", index, err)
	}
	return nil
}

func (s *PowerPointCOMSession) PageSize() (float64, float64) {
	setup, err := comDisp(s.pres, "PageSetup")
	if err != nil {
		return 0, 0
	}
	return comFloat(setup, "SlideWidth"), comFloat(setup, "SlideHeight")
}

// RelinkSpreadsheet repoints linked OLE objects and linked pictures whose
// source references oldPath to newPath.
func (s *PowerPointCOMSession) RelinkSpreadsheet(oldPath, newPath string) error {
	slides, err := s.slides()
	if err != nil {
		return err
	}
	count := comInt(slides, "Count")
	for i := 1; i <= count; i++ {
		slide, err := comDisp(slides, "Item", i)
		if err != nil {
			continue
		}
		shapes, err := comDisp(slide, "Shapes")
		if err != nil {
			continue
		}
		n := comInt(shapes, "Count")
		for j := 1; j <= n; j++ {
			shape, err := comDisp(shapes, "Item", j)
			if err != nil {
				continue
			}
			link, err := comDisp(shape, "LinkFormat")
			if err != nil {
				continue
			}
			source := comStr(link, "SourceFullName")
			if source == "" {
				continue
			}
			updated, matched := spliceLinkSource(source, oldPath, newPath)
			if !matched {
				continue
			}
			if err := comPut(link, "SourceFullName", updated); err != nil {
				return fmt.Errorf("relink shape %d on slide %d: %w", j, i, err)
			}
		}
	}
	return nil
}

func (s *PowerPointCOMSession) RefreshLinks() error {
	if _, err := comCall(s.pres, "UpdateLinks"); err != nil {
		return fmt.Errorf("update links: %w", err)
	}
	return nil
}

func (s *PowerPointCOMSession) Save() error {
	if _, err := comCall(s.pres, "Save"); err != nil {
		return fmt.Errorf("save presentation: %w", err)
	}
	return nil
}

func (s *PowerPointCOMSession) Close() error {
	_, _ = comCall(s.pres, "Close")
	_, _ = comCall(s.app, "Quit")
	s.pres.Release()
	s.app.Release()
	ole.CoUninitialize()
	runtime.UnlockOSThread()
	return nil
}

// comSlide adapts one PowerPoint slide to the Slide interface.
type comSlide struct {
	session *PowerPointCOMSession
	disp    *ole.IDispatch
}

func (s *comSlide) Index() int { return comInt(s.disp, "SlideIndex") }

func (s *comSlide) Shapes() []Shape {
	shapes, err := comDisp(s.disp, "Shapes")
	if err != nil {
		return nil
	}
	count := comInt(shapes, "Count")
	var out []Shape
	for i := 1; i <= count; i++ {
		disp, err := comDisp(shapes, "Item", i)
		if err != nil {
			continue
		}
		out = append(out, wrapCOMShape(s, disp))
	}
	return out
}

// wrapCOMShape classifies a shape dispatch into the richest interface it
// supports. Order matters: tables and charts also report a text frame.
func wrapCOMShape(slide *comSlide, disp *ole.IDispatch) Shape {
	base := comShape{slide: slide, disp: disp}
	if comInt(disp, "HasTable") == msoTrue {
		return &comTable{comShape: base}
	}
	if comInt(disp, "HasChart") == msoTrue {
		return &comChart{comShape: base}
	}
	if comInt(disp, "Type") == msoGroup {
		return &comGroup{comShape: base}
	}
	if comInt(disp, "Type") == msoPicture {
		return &comPicture{comShape: base}
	}
	if comInt(disp, "HasTextFrame") == msoTrue {
		return &comText{comShape: base}
	}
	return &base
}

type comShape struct {
	slide *comSlide
	disp  *ole.IDispatch
}

func (s *comShape) Name() string { return comStr(s.disp, "Name") }

func (s *comShape) Geometry() Geometry {
	return Geometry{
		Left:   comFloat(s.disp, "Left"),
		Top:    comFloat(s.disp, "Top"),
		Width:  comFloat(s.disp, "Width"),
		Height: comFloat(s.disp, "Height"),
	}
}

type comText struct{ comShape }

func (t *comText) textRange() (*ole.IDispatch, error) {
	frame, err := comDisp(t.disp, "TextFrame")
	if err != nil {
		return nil, err
	}
	return comDisp(frame, "TextRange")
}

func (t *comText) Text() string {
	tr, err := t.textRange()
	if err != nil {
		return ""
	}
	return comStr(tr, "Text")
}

func (t *comText) SetText(text string) error {
	tr, err := t.textRange()
	if err != nil {
		return err
	}
	return comPut(tr, "Text", text)
}

// ReplaceAt edits a character run in place, preserving the formatting of the
// surrounding text. The byte offset is converted to the host's 1-based
// character addressing.
func (t *comText) ReplaceAt(pos, length int, value string) error {
	tr, err := t.textRange()
	if err != nil {
		return err
	}
	text := comStr(tr, "Text")
	if pos < 0 || pos+length > len(text) {
		return fmt.Errorf("replace [%d,%d) outside text of %d bytes", pos, pos+length, len(text))
	}
	start := utf8.RuneCountInString(text[:pos]) + 1
	count := utf8.RuneCountInString(text[pos : pos+length])
	chars, err := comDisp(tr, "Characters", start, count)
	if err != nil {
		return fmt.Errorf("address characters %d+%d: %w", start, count, err)
	}
	return comPut(chars, "Text", value)
}

type comGroup struct{ comShape }

func (g *comGroup) Items() []Shape {
	items, err := comDisp(g.disp, "GroupItems")
	if err != nil {
		return nil
	}
	count := comInt(items, "Count")
	var out []Shape
	for i := 1; i <= count; i++ {
		disp, err := comDisp(items, "Item", i)
		if err != nil {
			continue
		}
		out = append(out, wrapCOMShape(g.slide, disp))
	}
	return out
}

type comTable struct{ comShape }

func (t *comTable) table() (*ole.IDispatch, error) { return comDisp(t.disp, "Table") }

func (t *comTable) RowCount() int {
	tbl, err := t.table()
	if err != nil {
		return 0
	}
	return comInt(comMust(comDisp(tbl, "Rows")), "Count")
}

func (t *comTable) ColCount() int {
	tbl, err := t.table()
	if err != nil {
		return 0
	}
	return comInt(comMust(comDisp(tbl, "Columns")), "Count")
}

func (t *comTable) Cell(row, col int) (TextShape, error) {
	tbl, err := t.table()
	if err != nil {
		return nil, err
	}
	cell, err := comDisp(tbl, "Cell", row, col)
	if err != nil {
		return nil, fmt.Errorf("table cell (%d,%d): %w", row, col, err)
	}
	shape, err := comDisp(cell, "Shape")
	if err != nil {
		return nil, fmt.Errorf("table cell (%d,%d) shape: %w", row, col, err)
	}
	return &comText{comShape{slide: t.slide, disp: shape}}, nil
}

func (t *comTable) SetCellHyperlink(row, col int, url string) error {
	cell, err := t.Cell(row, col)
	if err != nil {
		return err
	}
	ct := cell.(*comText)
	tr, err := ct.textRange()
	if err != nil {
		return err
	}
	// ppMouseClick action.
	action, err := comDisp(tr, "ActionSettings", 1)
	if err != nil {
		return fmt.Errorf("cell (%d,%d) action settings: %w", row, col, err)
	}
	link, err := comDisp(action, "Hyperlink")
	if err != nil {
		return fmt.Errorf("cell (%d,%d) hyperlink: %w", row, col, err)
	}
	return comPut(link, "Address", url)
}

type comChart struct{ comShape }

func (c *comChart) ChartName() string {
	if chart, err := comDisp(c.disp, "Chart"); err == nil {
		if name := comStr(chart, "Name"); name != "" {
			return name
		}
	}
	return c.Name()
}

type comPicture struct{ comShape }

func (p *comPicture) SetGeometry(g Geometry) error {
	if err := comPut(p.disp, "Left", g.Left); err != nil {
		return err
	}
	if err := comPut(p.disp, "Top", g.Top); err != nil {
		return err
	}
	if g.Width > 0 {
		if err := comPut(p.disp, "Width", g.Width); err != nil {
			return err
		}
	}
	if g.Height > 0 {
		if err := comPut(p.disp, "Height", g.Height); err != nil {
			return err
		}
	}
	return nil
}

func (p *comPicture) SetName(name string) error { return comPut(p.disp, "Name", name) }

func (p *comPicture) LockAspectRatio(lock bool) error {
	v := msoFalse
	if lock {
		v = msoTrue
	}
	return comPut(p.disp, "LockAspectRatio", v)
}

func (p *comPicture) ZOrderPosition() int { return comInt(p.disp, "ZOrderPosition") }

func (p *comPicture) SendBackward() error {
	_, err := comCall(p.disp, "ZOrder", msoSendBackward)
	return err
}

func (p *comPicture) SendToBack() error {
	_, err := comCall(p.disp, "ZOrder", msoSendToBack)
	return err
}

func (p *comPicture) BringToFront() error {
	_, err := comCall(p.disp, "ZOrder", msoBringToFront)
	return err
}

func (s *comSlide) InsertPicture(path string, g Geometry) (PictureShape, error) {
	shapes, err := comDisp(s.disp, "Shapes")
	if err != nil {
		return nil, err
	}
	width, height := g.Width, g.Height
	if width <= 0 {
		width = -1
	}
	if height <= 0 {
		height = -1
	}
	v, err := comCall(shapes, "AddPicture", path, msoFalse, msoTrue, g.Left, g.Top, width, height)
	if err != nil {
		return nil, fmt.Errorf("add picture %s: %w", path, err)
	}
	return &comPicture{comShape{slide: s, disp: v.ToIDispatch()}}, nil
}

// ConvertChartToPicture copies the chart to the clipboard, pastes it back as
// a PNG and deletes the live original.
func (s *comSlide) ConvertChartToPicture(chart ChartShape) (PictureShape, error) {
	cc, ok := chart.(*comChart)
	if !ok {
		return nil, fmt.Errorf("chart %q does not belong to this session", chart.ChartName())
	}
	if _, err := comCall(cc.disp, "Copy"); err != nil {
		return nil, fmt.Errorf("copy chart %q: %w", chart.ChartName(), err)
	}
	shapes, err := comDisp(s.disp, "Shapes")
	if err != nil {
		return nil, err
	}
	v, err := comCall(shapes, "PasteSpecial", ppPastePNG)
	if err != nil {
		return nil, fmt.Errorf("paste chart %q as picture: %w", chart.ChartName(), err)
	}
	pasted := v.ToIDispatch()
	if _, err := comCall(cc.disp, "Delete"); err != nil {
		return nil, fmt.Errorf("delete original chart %q: %w", chart.ChartName(), err)
	}
	return &comPicture{comShape{slide: s, disp: pasted}}, nil
}
