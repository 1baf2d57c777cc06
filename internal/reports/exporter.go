package reports

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Report is a flat table ready for export.
type Report struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Exporter renders a Report in one output format.
type Exporter interface {
	ContentType() string
	FileExt() string
	Write(w io.Writer, rep *Report) error
}

// NewExporter picks the exporter for a format string.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "", "csv":
		return csvExporter{}, nil
	case "xlsx", "excel":
		return excelExporter{}, nil
	case "pdf":
		return pdfExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

type csvExporter struct{}

func (csvExporter) ContentType() string { return "text/csv" }
func (csvExporter) FileExt() string     { return "csv" }

func (csvExporter) Write(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rep.Headers); err != nil {
		return err
	}
	for _, row := range rep.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type excelExporter struct{}

func (excelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (excelExporter) FileExt() string { return "xlsx" }

func (excelExporter) Write(w io.Writer, rep *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"

	header := make([]interface{}, len(rep.Headers))
	for i, h := range rep.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range rep.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}

	return f.Write(w)
}

type pdfExporter struct{}

func (pdfExporter) ContentType() string { return "application/pdf" }
func (pdfExporter) FileExt() string     { return "pdf" }

func (pdfExporter) Write(w io.Writer, rep *Report) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, rep.Title)
	pdf.Ln(12)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(rep.Headers))

	pdf.SetFont("Arial", "B", 9)
	for _, h := range rep.Headers {
		pdf.CellFormat(colWidth, 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range rep.Rows {
		for _, v := range row {
			pdf.CellFormat(colWidth, 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
