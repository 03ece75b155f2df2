// Package importer reads item lists from CSV and Excel files and fixed
// obstacles from DXF drawings. CSV import auto-detects the delimiter and maps
// columns by case-insensitive header aliases.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/rectcheck/internal/geometry"
	"github.com/piwi3910/rectcheck/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the outcome of an import operation. Rows that fail to
// parse are reported in Errors without aborting the rest of the file.
type ImportResult struct {
	Items     []model.Item
	Obstacles []model.Obstacle
	Errors    []string
	Warnings  []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label    int
	XSize    int
	YSize    int
	Quantity int
}

// headerAliases maps canonical column names to their accepted aliases (all
// lowercase).
var headerAliases = map[string][]string{
	"label":    {"label", "name", "part", "item", "description", "desc", "piece"},
	"xsize":    {"xsize", "x size", "x_size", "width", "w", "x", "length", "len"},
	"ysize":    {"ysize", "y size", "y_size", "height", "h", "y", "depth", "d"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
}

// DetectCSVDelimiter determines the most likely delimiter among comma,
// semicolon, tab, and pipe: the one producing the most consistent multi-column
// row shape wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}
		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}
	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping. Matching
// is case-insensitive against the known aliases. When no header is detected a
// positional mapping (label, x size, y size, quantity) is returned with false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, XSize: -1, YSize: -1, Quantity: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "label":
					if mapping.Label == -1 {
						mapping.Label = i
					}
				case "xsize":
					if mapping.XSize == -1 {
						mapping.XSize = i
					}
				case "ysize":
					if mapping.YSize == -1 {
						mapping.YSize = i
					}
				case "quantity":
					if mapping.Quantity == -1 {
						mapping.Quantity = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Label: 0, XSize: 1, YSize: 2, Quantity: 3}, false
	}
	return mapping, true
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRow extracts the items of one row using the given column mapping. The
// quantity column, when present, repeats the item that many times.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, board geometry.Rect, itemCount int) ([]model.Item, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Item %d", itemCount+1)
	}

	xStr := getCell(row, mapping.XSize)
	if xStr == "" {
		return nil, fmt.Sprintf("%s: Missing x size", rowLabel)
	}
	xSize, err := strconv.ParseInt(xStr, 10, 64)
	if err != nil {
		return nil, fmt.Sprintf("%s: Invalid x size '%s'", rowLabel, xStr)
	}

	yStr := getCell(row, mapping.YSize)
	if yStr == "" {
		return nil, fmt.Sprintf("%s: Missing y size", rowLabel)
	}
	ySize, err := strconv.ParseInt(yStr, 10, 64)
	if err != nil {
		return nil, fmt.Sprintf("%s: Invalid y size '%s'", rowLabel, yStr)
	}

	qty := 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		qty, err = strconv.Atoi(qtyStr)
		if err != nil {
			return nil, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr)
		}
	}
	if xSize <= 0 || ySize <= 0 || qty <= 0 {
		return nil, fmt.Sprintf("%s: Sizes and quantity must be positive", rowLabel)
	}

	items := make([]model.Item, qty)
	for i := range items {
		name := label
		if qty > 1 {
			name = fmt.Sprintf("%s #%d", label, i+1)
		}
		items[i] = model.NewItem(name, xSize, ySize, board)
	}
	return items, ""
}

// ImportCSV imports items from a CSV file; every item gets board as its
// allowed placement range. The delimiter is auto-detected.
func ImportCSV(path string, board geometry.Rect) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	return importCSVData(bytes.NewReader(data), delimiter, board, result.Warnings)
}

// ImportCSVFromReader imports items from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune, board geometry.Rect) ImportResult {
	return importCSVData(reader, delimiter, board, nil)
}

func importCSVData(reader io.Reader, delimiter rune, board geometry.Rect, warnings []string) ImportResult {
	result := ImportResult{Warnings: warnings}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}
	return importFromRows(records, "Line", board, result.Warnings)
}

// ImportExcel imports items from the first sheet of an .xlsx file.
func ImportExcel(path string, board geometry.Rect) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}
	return importFromRows(rows, "Row", board, nil)
}

// importFromRows is the shared row-parsing path for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, board geometry.Rect, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.XSize == -1 {
			missing = append(missing, "XSize")
		}
		if mapping.YSize == -1 {
			missing = append(missing, "YSize")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		if _, err := strconv.ParseInt(strings.TrimSpace(rows[0][1]), 10, 64); err != nil {
			// Unrecognized header words: skip the row but keep positional
			// mapping.
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		items, errMsg := parseRow(row, mapping, rowLabel, board, len(result.Items))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Items = append(result.Items, items...)
	}
	return result
}
