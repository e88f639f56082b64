package service

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/export"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// ExportService produces tabular exports of the full ticket table.
type ExportService struct {
	tickets repository.TicketRepository
}

// NewExportService constructs the service.
func NewExportService(tickets repository.TicketRepository) *ExportService {
	return &ExportService{tickets: tickets}
}

// Export renders every ticket, newest first, in the requested format.
func (s *ExportService) Export(ctx context.Context, requester *domain.User, format string) ([]byte, export.Format, error) {
	if requester == nil || !auth.Allowed(requester.Role, auth.ActionExportTickets) {
		return nil, "", apperrors.NewForbidden("You do not have permission.")
	}
	f, ok := export.ParseFormat(format)
	if !ok {
		return nil, "", apperrors.NewValidationError("Unsupported export format.", map[string]any{"format": format})
	}
	views, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	data, err := export.Render(f, views)
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	return data, f, nil
}
