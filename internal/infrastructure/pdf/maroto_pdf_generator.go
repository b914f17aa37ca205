// Package pdf genera el historial de movimientos de inventario en PDF.
//
// Layout de la página A4 horizontal:
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + filtros aplicados  │  Fecha de emisión         │
//	│  ──────────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Referencia | Ítem | Cant. | Antes | Desp. │
//	│  ──────────────────────────────────────────────────────────────  │
//	│  RESUMEN: total de movimientos / líneas                          │
//	└──────────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 34, Green: 102, Blue: 51}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorOut     = &props.Color{Red: 170, Green: 40, Blue: 40}
	colorIn      = &props.Color{Red: 30, Green: 110, Blue: 50}
)

var _ inventory.MovementPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa inventory.MovementPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	author string
}

// NewMarotoPDFGenerator construye el generador; author aparece en los metadatos del PDF.
func NewMarotoPDFGenerator(author string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{author: author}
}

// GenerateMovementsPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateMovementsPDF(_ context.Context, report *inventory.MovementReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(report.Title, true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableRows(report.Movements)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report *inventory.MovementReport) core.Row {
	return row.New(18).Add(
		col.New(8).Add(
			text.New(report.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(describeFilter(report.Filter), props.Text{
				Size: 8, Top: 10, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Emitido: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(7).Add(
		h("Fecha", 1, align.Left),
		h("Tipo", 1, align.Center),
		h("Referencia", 2, align.Left),
		h("Motivo", 3, align.Left),
		h("Ítem", 2, align.Left),
		h("Cant.", 1, align.Right),
		h("Antes", 1, align.Right),
		h("Después", 1, align.Right),
	)
}

// tableRows una fila por línea; los datos de cabecera solo en la primera línea de cada movimiento.
func tableRows(movements []dto.MovementResponse) []core.Row {
	var rows []core.Row
	for _, mov := range movements {
		kindColor := colorGray
		switch mov.Type {
		case "OUT":
			kindColor = colorOut
		case "IN":
			kindColor = colorIn
		}
		for i, l := range mov.Lines {
			date, kind, ref, reason := "", "", "", ""
			if i == 0 {
				date = mov.Date.Format("02/01/2006")
				kind = mov.Type
				ref = nonEmpty(mov.Reference, "—")
				reason = mov.Reason
			}
			rows = append(rows, row.New(6).Add(
				col.New(1).Add(text.New(date, props.Text{Size: 7, Top: 1, Left: 1})),
				col.New(1).Add(text.New(kind, props.Text{Size: 7, Top: 1, Align: align.Center, Style: fontstyle.Bold, Color: kindColor})),
				col.New(2).Add(text.New(ref, props.Text{Size: 7, Top: 1, Left: 1})),
				col.New(3).Add(text.New(truncate(reason, 60), props.Text{Size: 7, Top: 1, Left: 1})),
				col.New(2).Add(text.New(nonEmpty(l.ItemName, l.ItemID), props.Text{Size: 7, Top: 1, Left: 1})),
				col.New(1).Add(text.New(l.Quantity.StringFixed(2), props.Text{Size: 7, Top: 1, Align: align.Right, Right: 1})),
				col.New(1).Add(text.New(l.StockBefore.StringFixed(2), props.Text{Size: 7, Top: 1, Align: align.Right, Right: 1})),
				col.New(1).Add(text.New(l.StockAfter.StringFixed(2), props.Text{Size: 7, Top: 1, Align: align.Right, Right: 1})),
			))
		}
	}
	if len(rows) == 0 {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Sin movimientos para los filtros indicados.", props.Text{
				Size: 9, Align: align.Center, Top: 3, Color: colorGray,
			}),
		)))
	}
	return rows
}

func summaryRow(report *inventory.MovementReport) core.Row {
	lines := 0
	for _, m := range report.Movements {
		lines += len(m.Lines)
	}
	summary := fmt.Sprintf("Movimientos: %d   |   Líneas: %d", len(report.Movements), lines)
	if report.Truncated {
		summary += fmt.Sprintf("   |   Limitado a los %d más recientes", inventory.MaxReportRows)
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(summary, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 2}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func describeFilter(f dto.MovementFilterRequest) string {
	var parts []string
	if f.Type != "" {
		parts = append(parts, "Tipo: "+f.Type)
	}
	if f.ItemKind != "" {
		parts = append(parts, "Ítem: "+f.ItemKind)
	}
	if f.ItemID != "" {
		parts = append(parts, "ID: "+f.ItemID)
	}
	if f.From != "" || f.To != "" {
		parts = append(parts, fmt.Sprintf("Período: %s a %s", nonEmpty(f.From, "inicio"), nonEmpty(f.To, "hoy")))
	}
	if len(parts) == 0 {
		return "Todos los movimientos"
	}
	return strings.Join(parts, "   |   ")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// truncate corta s a n runas agregando "…".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
