// Package ingest reads CSV and Excel files into the raw table shape the
// core consumes. All file-format concerns live here, outside the core.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"chartlab/ports"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	fileType := "csv"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xls":
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType, sheet: "Sheet1"}
}

// WithSheet selects an Excel sheet other than Sheet1
func (r *DataReader) WithSheet(sheet string) *DataReader {
	r.sheet = sheet
	return r
}

// Read implements ports.RowSource
func (r *DataReader) Read(ctx context.Context) (*ports.RawTable, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		rows, err = r.readCSVRows()
	}
	if err != nil {
		return nil, err
	}

	return r.processRows(rows)
}

// readExcelRows reads the configured sheet via excelize
func (r *DataReader) readExcelRows() ([][]string, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", r.sheet, err)
	}
	log.Printf("[DataReader] Excel sheet %s read in %.2fms (%d rows)",
		r.sheet, float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// readCSVRows reads the whole CSV file
func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are padded below

	start := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// processRows converts raw string rows into the RawTable shape
func (r *DataReader) processRows(rows [][]string) (*ports.RawTable, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have at least a header row and one data row")
	}

	// Skip empty header cells (phantom columns from trailing delimiters)
	var headers []string
	var headerIdx []int
	for i, header := range rows[0] {
		header = strings.TrimSpace(header)
		if header == "" {
			log.Printf("[DataReader] skipping empty header at position %d", i)
			continue
		}
		headers = append(headers, header)
		headerIdx = append(headerIdx, i)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("file has no named columns")
	}

	data := make([]map[string]string, len(rows)-1)
	for i, record := range rows[1:] {
		row := make(map[string]string, len(headers))
		for j, header := range headers {
			src := headerIdx[j]
			if src < len(record) {
				row[header] = strings.TrimSpace(record[src])
			} else {
				row[header] = ""
			}
		}
		data[i] = row
	}

	name := strings.TrimSuffix(filepath.Base(r.filePath), filepath.Ext(r.filePath))
	return &ports.RawTable{
		Name:        name,
		ColumnNames: headers,
		Rows:        data,
	}, nil
}
