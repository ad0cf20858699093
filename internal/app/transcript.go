package app

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// SaveTranscript renders the last question/answer pair to a minimal PDF.
// Layout is intentionally simple: a bold question line, then the answer as
// wrapped paragraphs.
func (a *App) SaveTranscript(path string) error {
	if strings.TrimSpace(a.lastAnswer) == "" {
		return fmt.Errorf("nothing to save yet")
	}
	return writeTranscriptPDF(a.lastQuery, a.lastAnswer, path)
}

func writeTranscriptPDF(query, answerText, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 12)
	pdf.MultiCell(0, 6, "Q: "+query, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, para := range strings.Split(answerText, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			pdf.Ln(4)
			continue
		}
		pdf.MultiCell(0, 5, para, "", "L", false)
	}

	return pdf.OutputFileAndClose(outPath)
}
