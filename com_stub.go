//go:build !windows

package deckfill

// OpenExcelCOM requires a desktop Excel installation and is only available on
// Windows.
func OpenExcelCOM(path string) (SpreadsheetSession, error) {
	return nil, &UnsupportedError{Op: "Excel COM automation"}
}

// OpenPowerPointCOM requires a desktop PowerPoint installation and is only
// available on Windows.
func OpenPowerPointCOM(path string) (PresentationSession, error) {
	return nil, &UnsupportedError{Op: "PowerPoint COM automation"}
}
