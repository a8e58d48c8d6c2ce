package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Letterhead carries the static institution block printed on every transcript.
type Letterhead struct {
	InstitutionName string
	Program         string
	DirectorName    string
	FooterAddress   string
}

// TranscriptRow is one subject line inside a teaching unit.
type TranscriptRow struct {
	Subject string
	Value   float64
}

// TranscriptUnit groups subject rows under a teaching unit; the unit cell is
// merged vertically across its rows.
type TranscriptUnit struct {
	Name string
	Rows []TranscriptRow
}

// TranscriptData is everything the renderer needs for one student document.
type TranscriptData struct {
	StudentName string
	ClassLevel  string
	SchoolYear  string
	Units       []TranscriptUnit
}

// TranscriptRenderer renders grade transcripts into PDF documents.
type TranscriptRenderer struct {
	letterhead Letterhead
}

// NewTranscriptRenderer constructs a renderer with the given letterhead.
func NewTranscriptRenderer(letterhead Letterhead) *TranscriptRenderer {
	return &TranscriptRenderer{letterhead: letterhead}
}

const (
	unitColWidth    = 55.0
	subjectColWidth = 80.0
	valueColWidth   = 55.0
	rowHeight       = 8.0
)

// Render produces the transcript document. An empty unit list renders a
// placeholder paragraph instead of the table.
func (r *TranscriptRenderer) Render(data TranscriptData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	r.header(pdf)

	pdf.SetFont("Times", "B", 14)
	pdf.CellFormat(0, 10, "RELEVE DE NOTES", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Times", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("De : %s", data.StudentName), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Times", "", 11)
	level := data.ClassLevel
	if level == "" {
		level = "Non assigné"
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Filière : %s", r.letterhead.Program), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Niveau : %s", level), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Année universitaire : %s", data.SchoolYear), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	if len(data.Units) == 0 {
		pdf.SetFont("Times", "I", 11)
		pdf.CellFormat(0, 8, "Aucune note d'examen disponible pour le semestre 2", "", 1, "L", false, 0, "")
	} else {
		r.table(pdf, data.Units)
	}

	pdf.Ln(14)
	pdf.SetFont("Times", "", 12)
	pdf.CellFormat(0, 8, "Le Directeur", "", 1, "C", false, 0, "")
	pdf.Ln(16)
	if r.letterhead.DirectorName != "" {
		pdf.CellFormat(0, 8, r.letterhead.DirectorName, "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Times", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Éditée le %s", time.Now().Format("02/01/2006")), "", 1, "R", false, 0, "")

	r.footer(pdf)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render transcript pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *TranscriptRenderer) header(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, r.letterhead.InstitutionName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Etablissement d'Enseignement Supérieur Privé", "", 1, "C", false, 0, "")
	x, y := pdf.GetXY()
	pdf.SetLineWidth(0.4)
	pdf.Line(10, y+2, 200, y+2)
	pdf.Line(10, y+3, 200, y+3)
	pdf.SetXY(x, y+8)
}

func (r *TranscriptRenderer) footer(pdf *gofpdf.Fpdf) {
	if r.letterhead.FooterAddress == "" {
		return
	}
	pdf.SetY(-30)
	x, y := pdf.GetXY()
	pdf.SetLineWidth(0.4)
	pdf.Line(10, y, 200, y)
	pdf.SetXY(x, y+2)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, r.letterhead.InstitutionName, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, r.letterhead.FooterAddress, "", 1, "C", false, 0, "")
}

// table draws the grade rows with the unit column merged across each unit's
// subjects. gofpdf has no native row span, so the unit cell is drawn once with
// the combined height and the subject/value cells are positioned next to it.
func (r *TranscriptRenderer) table(pdf *gofpdf.Fpdf, units []TranscriptUnit) {
	left := (210.0 - unitColWidth - subjectColWidth - valueColWidth) / 2

	pdf.SetX(left)
	pdf.SetFont("Times", "B", 12)
	pdf.CellFormat(unitColWidth, rowHeight+2, "Unité d'enseignement", "1", 0, "C", false, 0, "")
	pdf.CellFormat(subjectColWidth, rowHeight+2, "Modules", "1", 0, "C", false, 0, "")
	pdf.CellFormat(valueColWidth, rowHeight+2, "Note Examen finale /20", "1", 1, "C", false, 0, "")

	pdf.SetFont("Times", "", 10)
	for _, unit := range units {
		if len(unit.Rows) == 0 {
			continue
		}
		startY := pdf.GetY()
		unitHeight := rowHeight * float64(len(unit.Rows))

		pdf.SetX(left)
		pdf.CellFormat(unitColWidth, unitHeight, unit.Name, "1", 0, "CM", false, 0, "")

		for i, row := range unit.Rows {
			pdf.SetXY(left+unitColWidth, startY+rowHeight*float64(i))
			pdf.CellFormat(subjectColWidth, rowHeight, row.Subject, "1", 0, "C", false, 0, "")
			pdf.CellFormat(valueColWidth, rowHeight, fmt.Sprintf("%.2f", row.Value), "1", 0, "C", false, 0, "")
		}
		pdf.SetXY(left, startY+unitHeight)
	}
}
