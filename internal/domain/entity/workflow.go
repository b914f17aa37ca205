package entity

// WorkflowStatus estado de una aplicación, riego o mantenimiento.
type WorkflowStatus string

const (
	StatusScheduled WorkflowStatus = "SCHEDULED"
	StatusCompleted WorkflowStatus = "COMPLETED"
	StatusCancelled WorkflowStatus = "CANCELLED"
)

// IsTerminal indica si el estado ya no admite transiciones.
func (s WorkflowStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition SCHEDULED -> COMPLETED | CANCELLED; cualquier otra combinación es inválida.
func CanTransition(from, to WorkflowStatus) bool {
	return from == StatusScheduled && (to == StatusCompleted || to == StatusCancelled)
}
