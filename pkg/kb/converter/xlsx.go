package converter

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXFile renders every sheet as tab-separated rows, sheets separated by a
// blank line. Empty rows are dropped.
func XLSXFile(path string) (string, map[string]any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var blocks []string
	for _, sh := range sheets {
		rows, err := f.GetRows(sh)
		if err != nil {
			return "", nil, err
		}
		var lines []string
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(blocks, "\n\n"), map[string]any{"sheets": sheets}, nil
}
