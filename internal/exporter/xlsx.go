package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// EncodeXLSX writes the report as a workbook with one sheet per section
func EncodeXLSX(out io.Writer, report Report) error {
	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteXLSX saves the report workbook to path
func WriteXLSX(path string, report Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("KPI report written",
		slog.String("format", FormatXLSX),
		slog.String("full_path", path))
	return nil
}

func buildWorkbook(report Report) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"667EEA"}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, section := range report.Sections() {
		if err := writeSheet(f, section, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
		if i == 0 {
			idx, _ := f.GetSheetIndex(section.Name)
			f.SetActiveSheet(idx)
		}
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	return f, nil
}

func writeSheet(f *excelize.File, section Section, headerStyle int) error {
	if _, err := f.NewSheet(section.Name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", section.Name, err)
	}

	rows := append([][]string{section.Headers}, section.Records...)
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for c, v := range row {
			values[c] = cellValue(v, r == 0)
		}
		if err := f.SetSheetRow(section.Name, cell, &values); err != nil {
			return fmt.Errorf("failed to write sheet %s row %d: %w", section.Name, r+1, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(section.Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(section.Name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style sheet %s: %w", section.Name, err)
	}
	return f.SetColWidth(section.Name, "A", "C", 22)
}

// cellValue stores numeric strings as numbers so spreadsheets can sum them
func cellValue(v string, header bool) interface{} {
	if header {
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
