package converter

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

func PDFFile(path string) (string, map[string]any, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	plain, err := r.GetPlainText()
	if err != nil {
		return "", nil, err
	}
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", nil, err
	}
	return cleanWhitespace(buf.String()), map[string]any{"pages": r.NumPage()}, nil
}
