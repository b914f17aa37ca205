package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
)

// Tipos de orden de trabajo.
const (
	WorkOrderApplication = "APPLICATION"
	WorkOrderIrrigation  = "IRRIGATION"
	WorkOrderMaintenance = "MAINTENANCE"
)

// WorkOrderUseCase vista de solo lectura que une aplicaciones, riegos y
// mantenimientos en un único listado ordenado por fecha.
type WorkOrderUseCase struct {
	applications repository.ApplicationRepository
	irrigations  repository.IrrigationRepository
	maintenances repository.MaintenanceRepository
	fields       repository.FieldRepository
}

// NewWorkOrderUseCase construye el caso de uso.
func NewWorkOrderUseCase(
	applications repository.ApplicationRepository,
	irrigations repository.IrrigationRepository,
	maintenances repository.MaintenanceRepository,
	fields repository.FieldRepository,
) *WorkOrderUseCase {
	return &WorkOrderUseCase{applications: applications, irrigations: irrigations, maintenances: maintenances, fields: fields}
}

// List une los tres flujos, filtra y pagina. El resumen cuenta por estado
// dentro del rango de fechas y responsable, sin los filtros de tipo y estado.
func (uc *WorkOrderUseCase) List(ctx context.Context, in dto.WorkOrderFilterRequest) (*dto.WorkOrderListResponse, error) {
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	switch in.Type {
	case "", WorkOrderApplication, WorkOrderIrrigation, WorkOrderMaintenance:
	default:
		return nil, fmt.Errorf("%w: tipo de orden %q", domain.ErrInvalidInput, in.Type)
	}
	filter, err := ToWorkflowFilter(dto.WorkflowFilterRequest{
		Status:        in.Status,
		ResponsibleID: in.ResponsibleID,
		From:          in.From,
		To:            in.To,
	})
	if err != nil {
		return nil, err
	}
	status := filter.Status
	scope := repository.WorkflowFilter{ResponsibleID: filter.ResponsibleID, From: filter.From, To: filter.To}

	all, err := uc.collect(ctx, scope)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].ScheduledAt.Equal(all[j].ScheduledAt) {
			return all[i].ScheduledAt.After(all[j].ScheduledAt)
		}
		return all[i].Code < all[j].Code
	})

	var summary dto.WorkOrderSummary
	matched := make([]dto.WorkOrderResponse, 0, len(all))
	for _, o := range all {
		summary.Total++
		switch entity.WorkflowStatus(o.Status) {
		case entity.StatusScheduled:
			summary.Scheduled++
		case entity.StatusCompleted:
			summary.Completed++
		case entity.StatusCancelled:
			summary.Cancelled++
		}
		if in.Type != "" && o.Type != in.Type {
			continue
		}
		if status != "" && entity.WorkflowStatus(o.Status) != status {
			continue
		}
		matched = append(matched, o)
	}

	in.DefaultPage()
	items := matched
	if in.Offset >= len(items) {
		items = []dto.WorkOrderResponse{}
	} else {
		items = items[in.Offset:]
		if len(items) > in.Limit {
			items = items[:in.Limit]
		}
	}
	return &dto.WorkOrderListResponse{
		Items:   items,
		Summary: summary,
		Page:    dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: len(matched)},
	}, nil
}

func (uc *WorkOrderUseCase) collect(ctx context.Context, f repository.WorkflowFilter) ([]dto.WorkOrderResponse, error) {
	apps, err := uc.applications.List(ctx, f)
	if err != nil {
		return nil, err
	}
	irrs, err := uc.irrigations.List(ctx, f)
	if err != nil {
		return nil, err
	}
	tasks, err := uc.maintenances.List(ctx, f)
	if err != nil {
		return nil, err
	}
	fieldNames, err := uc.fieldNames(ctx, irrs)
	if err != nil {
		return nil, err
	}

	out := make([]dto.WorkOrderResponse, 0, len(apps)+len(irrs)+len(tasks))
	for _, a := range apps {
		desc := a.Objective
		if desc == "" {
			desc = "Aplicación " + a.Method
		}
		out = append(out, dto.WorkOrderResponse{
			ID: a.ID, Code: "APL-" + a.ID, Type: WorkOrderApplication, Description: strings.TrimSpace(desc),
			ScheduledAt: a.ScheduledAt, ResponsibleID: a.ApplicatorID, Status: string(a.Status),
		})
	}
	for _, i := range irrs {
		desc := "Riego " + fieldNames[i.FieldID]
		if i.IncludesFertilizer {
			desc += " con fertilizante"
		}
		out = append(out, dto.WorkOrderResponse{
			ID: i.ID, Code: "RIE-" + i.ID, Type: WorkOrderIrrigation, Description: strings.TrimSpace(desc),
			ScheduledAt: i.Date, ResponsibleID: i.ResponsibleID, Status: string(i.Status),
		})
	}
	for _, m := range tasks {
		desc := m.Description
		if desc == "" {
			desc = fmt.Sprintf("Mantenimiento %s %s", strings.ToLower(m.Kind), m.EquipmentName)
		}
		out = append(out, dto.WorkOrderResponse{
			ID: m.ID, Code: "MAN-" + m.ID, Type: WorkOrderMaintenance, Description: strings.TrimSpace(desc),
			ScheduledAt: m.ScheduledAt, ResponsibleID: m.ResponsibleID, Status: string(m.Status),
		})
	}
	return out, nil
}

func (uc *WorkOrderUseCase) fieldNames(ctx context.Context, irrs []*entity.Irrigation) (map[string]string, error) {
	ids := make([]string, 0, len(irrs))
	for _, i := range irrs {
		ids = append(ids, i.FieldID)
	}
	fields, err := uc.fields.GetByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(fields))
	for _, f := range fields {
		names[f.ID] = f.Name
	}
	return names, nil
}
