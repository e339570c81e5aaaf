// Package pdf implementa la Representación Gráfica del Acte de decisión de la
// comisión (archivo imprimible que acompaña al XML firmado en el expediente).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Referencia del expediente  │  Resultado + Fecha    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SOLICITANTE: entidad / autoridad / proyecto                │
//	│  DECISIÓN: organismo + usuario + motivo                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Pos | Designación | Valor aduana | Impuestos        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Crédito externo / interno / TOTAL                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: digest SHA-384 del acte XML                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	apprequest "github.com/jhoicas/credifiscal-api/internal/application/request"
	"github.com/jhoicas/credifiscal-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 160, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ apprequest.ActePDFGenerator = (*MarotoActeGenerator)(nil)

// MarotoActeGenerator implementa request.ActePDFGenerator usando Maroto v2.
type MarotoActeGenerator struct{}

// NewMarotoActeGenerator construye el generador.
func NewMarotoActeGenerator() *MarotoActeGenerator { return &MarotoActeGenerator{} }

// GenerateActePDF genera el PDF del acte y devuelve sus bytes.
func (g *MarotoActeGenerator) GenerateActePDF(
	_ context.Context,
	req *entity.CorrectionRequest,
	final *entity.Decision,
	lines []entity.ImportLine,
	summary entity.CreditSummary,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Acte de Decisión "+req.Reference, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(req, final))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(solicitanteRow(req))
	m.AddRows(decisionRow(final))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(summary))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range digestFooterRows(req) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar acte: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: referencia del expediente (izq) y resultado + fecha (der).
func headerRow(req *entity.CorrectionRequest, final *entity.Decision) core.Row {
	resultado := "SOLICITUD ADOPTADA"
	resColor := colorPrimary
	if final.Kind == entity.KindRechazo {
		resultado = "SOLICITUD RECHAZADA"
		resColor = colorDanger
	}
	fecha := final.DecidedAt.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New("ACTE DE DECISIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(req.Reference, props.Text{
				Style: fontstyle.Bold, Size: 13, Top: 7,
			}),
		),
		col.New(5).Add(
			text.New(resultado, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right,
				Color: resColor, Top: 3,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 11, Color: colorGray,
			}),
		),
	)
}

// solicitanteRow: datos del expediente.
func solicitanteRow(req *entity.CorrectionRequest) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("EXPEDIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Entidad: %s   |   Autoridad: %s   |   Proyecto: %s",
				req.EntityID,
				req.AuthorityID,
				nonEmpty(req.ProjectID, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// decisionRow: organismo que cierra, usuario actuante y motivo si aplica.
func decisionRow(final *entity.Decision) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("DECISIÓN FINAL", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Organismo: %s   |   Usuario: %s",
				string(final.Role), final.ActingUser,
			), props.Text{Style: fontstyle.Bold, Size: 9, Top: 6}),
			text.New("Motivo: "+nonEmpty(final.Motive, "—"), props.Text{
				Size: 8, Top: 11, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas de importación.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Pos.", 1, align.Center),
		h("Designación de la mercancía", 5, align.Left),
		h("Valor aduana", 3, align.Right),
		h("Impuestos", 3, align.Right),
	)
}

// tableLineRows: una fila por línea de importación.
func tableLineRows(lines []entity.ImportLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", l.Position),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				l.Designation,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				l.CustomsValue.Round(2).StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				l.TotalTaxes.Round(2).StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de créditos alineado a la derecha.
func totalsRow(summary entity.CreditSummary) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(26).Add(
		col.New(3),
		col.New(4).Add(
			label("Crédito externo:"),
			label("Crédito interno:"),
			grandLabel("CRÉDITO TOTAL:"),
		),
		col.New(4).Add(
			value(summary.ExternalCredit.Round(2).StringFixed(2)),
			value(summary.DomesticCredit.Round(2).StringFixed(2)),
			grandValue(summary.TotalCredit.Round(2).StringFixed(2)),
		),
		col.New(1),
	)
}

// digestFooterRows: digest SHA-384 del XML partido en fragmentos.
func digestFooterRows(req *entity.CorrectionRequest) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("INTEGRIDAD DEL ACTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}

	if req.ActeDigest != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Huella SHA-384 del acte XML canónico:", props.Text{
				Style: fontstyle.Bold, Size: 7, Top: 1,
			}),
		)))
		for _, chunk := range splitEvery(req.ActeDigest, 64) {
			rows = append(rows, row.New(4).Add(col.New(12).Add(
				text.New(chunk, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
			)))
		}
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Este documento es la representación gráfica del acte XML archivado "+
				"en el expediente. Ante cualquier discrepancia prevalece el XML.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
