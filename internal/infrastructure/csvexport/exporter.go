// Package csvexport exporta el historial de movimientos a CSV compatible con Excel (Windows-1252, separador ';').
package csvexport

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/agrocontrol/agrocontrol-api/internal/application/inventory"
)

var _ inventory.MovementCSVExporter = (*Exporter)(nil)

var header = []string{
	"fecha", "tipo", "referencia", "motivo", "origen", "id_origen", "usuario",
	"tipo_item", "id_item", "item", "cantidad", "stock_antes", "stock_despues",
}

// Exporter implementa inventory.MovementCSVExporter.
type Exporter struct {
	// UTF8 desactiva la conversión a Windows-1252.
	UTF8 bool
}

// NewExporter exporter con codificación Windows-1252 (la que abre Excel en es-AR/es-CO sin asistente).
func NewExporter() *Exporter {
	return &Exporter{}
}

// ExportMovementsCSV una fila por línea de movimiento.
func (e *Exporter) ExportMovementsCSV(_ context.Context, report *inventory.MovementReport) ([]byte, error) {
	var buf bytes.Buffer
	var tw *transform.Writer
	var w *csv.Writer
	if e.UTF8 {
		w = csv.NewWriter(&buf)
	} else {
		// Caracteres fuera de Windows-1252 se reemplazan en lugar de abortar la exportación.
		tw = transform.NewWriter(&buf, encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()))
		w = csv.NewWriter(tw)
	}
	w.Comma = ';'

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("csv: escribir cabecera: %w", err)
	}
	for _, m := range report.Movements {
		for _, l := range m.Lines {
			rec := []string{
				m.Date.Format("2006-01-02"), m.Type, m.Reference, m.Reason, m.SourceType, m.SourceID, m.PerformedBy,
				l.ItemKind, l.ItemID, l.ItemName,
				l.Quantity.String(), l.StockBefore.String(), l.StockAfter.String(),
			}
			if err := w.Write(rec); err != nil {
				return nil, fmt.Errorf("csv: escribir fila: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv: flush: %w", err)
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return nil, fmt.Errorf("csv: codificar: %w", err)
		}
	}
	return buf.Bytes(), nil
}
