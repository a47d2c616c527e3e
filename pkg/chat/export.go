package chat

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const exportTitle = "Chat Transcript"

// Formatter renders a transcript for download.
type Formatter interface {
	Format(messages []Message) ([]byte, error)
	ContentType() string
	FileExtension() string
}

// Export renders the current transcript with the given formatter.
func (s *Session) Export(f Formatter) ([]byte, error) {
	return f.Format(s.Messages())
}

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(messages []Message) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", exportTitle)

	for _, m := range messages {
		switch m.Role {
		case RoleUser:
			fmt.Fprintf(&buf, "**You:** %s\n\n", m.Content)
		case RoleModel:
			fmt.Fprintf(&buf, "**Model:** %s\n\n", m.Content)
			if m.Grounding != nil && len(m.Grounding.Chunks) > 0 {
				buf.WriteString("Sources:\n")
				for _, c := range m.Grounding.Chunks {
					if title := c.Title(); title != "" {
						fmt.Fprintf(&buf, "- %s\n", title)
					}
				}
				buf.WriteString("\n")
			}
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// Relative paths where the TTF font may live.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "pkg/chat/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// resolveFontPath tries to find the DejaVuSans font in
// runtime layout (next to the binary) or source layout.
func resolveFontPath() string {
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}
	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}
	return ""
}

func (pf *PDFFormatter) Format(messages []Message) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Use the UTF-8 capable DejaVuSans font when bundled, Arial otherwise.
	fontName := "Arial"
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
	}

	pdf.SetFont(fontName, "B", 20)
	pdf.Cell(0, 10, exportTitle)
	pdf.Ln(14)

	_, lineHeight := pdf.GetFontSize()
	for _, m := range messages {
		label := "You"
		if m.Role == RoleModel {
			label = "Model"
		}

		pdf.SetFont(fontName, "B", 12)
		pdf.Cell(0, lineHeight*1.5, label)
		pdf.Ln(lineHeight * 1.5)

		pdf.SetFont(fontName, "", 12)
		pdf.MultiCell(0, lineHeight*1.5, m.Content, "", "", false)
		pdf.Ln(lineHeight)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
