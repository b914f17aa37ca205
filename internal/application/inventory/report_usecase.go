package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
)

// MaxReportRows tope de movimientos por exportación.
const MaxReportRows = 5000

// MovementReport datos de entrada de los generadores de reportes.
type MovementReport struct {
	Title       string
	GeneratedAt time.Time
	Filter      dto.MovementFilterRequest
	Movements   []dto.MovementResponse
	Truncated   bool
}

// MovementPDFGenerator genera el historial de movimientos en PDF.
type MovementPDFGenerator interface {
	GenerateMovementsPDF(ctx context.Context, report *MovementReport) ([]byte, error)
}

// MovementCSVExporter genera el historial de movimientos en CSV.
type MovementCSVExporter interface {
	ExportMovementsCSV(ctx context.Context, report *MovementReport) ([]byte, error)
}

// ReportUseCase exportación de solo lectura del historial de movimientos.
type ReportUseCase struct {
	movementRepo repository.InventoryMovementRepository
	pdf          MovementPDFGenerator
	csv          MovementCSVExporter
	now          func() time.Time
}

// NewReportUseCase construye el caso de uso. pdf o csv pueden ser nil si el formato no está disponible.
func NewReportUseCase(movementRepo repository.InventoryMovementRepository, pdf MovementPDFGenerator, csv MovementCSVExporter) *ReportUseCase {
	return &ReportUseCase{movementRepo: movementRepo, pdf: pdf, csv: csv, now: time.Now}
}

// MovementsPDF historial filtrado en PDF.
func (uc *ReportUseCase) MovementsPDF(ctx context.Context, in dto.MovementFilterRequest) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("%w: exportación PDF no disponible", domain.ErrInvalidInput)
	}
	report, err := uc.build(ctx, in)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateMovementsPDF(ctx, report)
}

// MovementsCSV historial filtrado en CSV.
func (uc *ReportUseCase) MovementsCSV(ctx context.Context, in dto.MovementFilterRequest) ([]byte, error) {
	if uc.csv == nil {
		return nil, fmt.Errorf("%w: exportación CSV no disponible", domain.ErrInvalidInput)
	}
	report, err := uc.build(ctx, in)
	if err != nil {
		return nil, err
	}
	return uc.csv.ExportMovementsCSV(ctx, report)
}

func (uc *ReportUseCase) build(ctx context.Context, in dto.MovementFilterRequest) (*MovementReport, error) {
	filter, err := ToMovementFilter(in)
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = MaxReportRows, 0
	list, total, err := uc.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	report := &MovementReport{
		Title:       "Historial de movimientos de inventario",
		GeneratedAt: uc.now(),
		Filter:      in,
		Movements:   make([]dto.MovementResponse, 0, len(list)),
		Truncated:   total > len(list),
	}
	for _, m := range list {
		report.Movements = append(report.Movements, *ToMovementResponse(m))
	}
	return report, nil
}
