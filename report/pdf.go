package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

var pdfWidths = []float64{34, 44, 30, 24, 28, 26, 26, 24, 30}

// WritePDF renders the report as a landscape A4 table.
func WritePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Leave balances", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Leave Balances")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("As of %s - %d employee(s)", r.AsOf, len(r.Rows)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(pdfWidths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range r.Rows {
		for i, c := range row.cells() {
			text, align := pdfCell(c)
			pdf.CellFormat(pdfWidths[i], 6, text, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

func pdfCell(v interface{}) (string, string) {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", x), "R"
	default:
		return fmt.Sprint(x), "L"
	}
}
