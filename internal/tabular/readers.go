package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readFile loads an export file into raw string cells.
// CSV and Excel files are supported; the format is chosen by extension.
func readFile(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return readCSV(path)
	case ".xlsx", ".xls":
		return readExcel(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", path)
	}
}

// readCSV reads a CSV export, handling the encodings the OMS tools produce:
// plain UTF-8, UTF-8 with BOM, and GBK. Separator detection falls back from
// comma to tab to semicolon until the header row yields more than one column.
func readCSV(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text, err := decodeBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	var lastErr error
	for _, sep := range []rune{',', '\t', ';'} {
		r := csv.NewReader(strings.NewReader(text))
		r.Comma = sep
		r.FieldsPerRecord = -1 // exports pad trailing cells inconsistently
		r.LazyQuotes = true

		records, err := r.ReadAll()
		if err != nil {
			lastErr = err
			continue
		}
		if len(records) > 0 && len(records[0]) > 1 {
			return records, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("failed to parse %s as CSV: %w", path, lastErr)
	}
	return nil, fmt.Errorf("failed to parse %s: no separator yields more than one column", path)
}

// decodeBytes converts raw export bytes to a UTF-8 string.
func decodeBytes(raw []byte) (string, error) {
	if bytes.HasPrefix(raw, utf8BOM) {
		return string(bytes.TrimPrefix(raw, utf8BOM)), nil
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("not valid UTF-8 and GBK decoding failed: %w", err)
	}
	return string(decoded), nil
}

// readExcel reads the first sheet of an Excel export.
func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q from %s: %w", sheets[0], path, err)
	}
	return rows, nil
}
