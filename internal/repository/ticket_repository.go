package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// TicketFilter narrows ticket listings.
type TicketFilter struct {
	CreatedBy *int64
	Status    *domain.TicketStatus
	Search    string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetView(ctx context.Context, id int64) (*domain.TicketView, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.TicketView, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error
	UpdateAssignee(ctx context.Context, id int64, assignee *int64) error
	CountByStatus(ctx context.Context) (domain.StatusCounts, error)
}

type ticketRepository struct {
	store *persistence.Store
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(store *persistence.Store) TicketRepository {
	return &ticketRepository{store: store}
}

const ticketViewSelect = `
        SELECT t.id, t.title, t.description, t.status, t.created_by, t.assigned_to, t.created_at,
               COALESCE(u.username, ''), a.username
        FROM tickets t
        LEFT JOIN users u ON t.created_by = u.id
        LEFT JOIN users a ON t.assigned_to = a.id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const op = "repository.tickets.Create"
	const query = `
        INSERT INTO tickets (title, description, status, created_by, assigned_to, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
        RETURNING id`

	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	err := r.store.DB.QueryRowContext(ctx, r.store.Rebind(query),
		ticket.Title,
		ticket.Description,
		string(ticket.Status),
		ticket.CreatedBy,
		nullableID(ticket.AssignedTo),
		formatTimestamp(ticket.CreatedAt),
	).Scan(&ticket.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const op = "repository.tickets.GetByID"
	const query = `
        SELECT id, title, description, status, created_by, assigned_to, created_at
        FROM tickets WHERE id = ?`

	var (
		ticket    domain.Ticket
		status    string
		assignee  sql.NullInt64
		createdAt string
	)
	err := r.store.DB.QueryRowContext(ctx, r.store.Rebind(query), id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&status,
		&ticket.CreatedBy,
		&assignee,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ticket.Status = domain.TicketStatus(status)
	ticket.AssignedTo = idPtr(assignee)
	if ticket.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("%s: parse created_at: %w", op, err)
	}
	return &ticket, nil
}

func (r *ticketRepository) GetView(ctx context.Context, id int64) (*domain.TicketView, error) {
	const op = "repository.tickets.GetView"
	query := ticketViewSelect + ` WHERE t.id = ?`

	rows, err := r.store.DB.QueryContext(ctx, r.store.Rebind(query), id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	views, err := scanTicketViews(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(views) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return &views[0], nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.TicketView, error) {
	const op = "repository.tickets.List"

	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedBy != nil {
		clauses = append(clauses, "t.created_by = ?")
		args = append(args, *filter.CreatedBy)
	}
	if filter.Status != nil {
		clauses = append(clauses, "t.status = ?")
		args = append(args, string(*filter.Status))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		clauses = append(clauses, "(LOWER(t.title) LIKE ? OR LOWER(t.description) LIKE ?)")
		pattern := "%" + strings.ToLower(term) + "%"
		args = append(args, pattern, pattern)
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.id DESC`, ticketViewSelect, strings.Join(clauses, " AND "))

	rows, err := r.store.DB.QueryContext(ctx, r.store.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	views, err := scanTicketViews(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return views, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	const op = "repository.tickets.UpdateStatus"
	const query = `UPDATE tickets SET status = ? WHERE id = ?`

	return r.execOne(ctx, op, query, string(status), id)
}

func (r *ticketRepository) UpdateAssignee(ctx context.Context, id int64, assignee *int64) error {
	const op = "repository.tickets.UpdateAssignee"
	const query = `UPDATE tickets SET assigned_to = ? WHERE id = ?`

	return r.execOne(ctx, op, query, nullableID(assignee), id)
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (domain.StatusCounts, error) {
	const op = "repository.tickets.CountByStatus"
	const query = `SELECT status, COUNT(*) FROM tickets GROUP BY status`

	var counts domain.StatusCounts
	rows, err := r.store.DB.QueryContext(ctx, query)
	if err != nil {
		return counts, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return counts, fmt.Errorf("%s: %w", op, err)
		}
		switch domain.TicketStatus(status) {
		case domain.TicketStatusOpen:
			counts.Open = n
		case domain.TicketStatusInProgress:
			counts.InProgress = n
		case domain.TicketStatusClosed:
			counts.Closed = n
		}
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("%s: %w", op, err)
	}
	return counts, nil
}

func (r *ticketRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := r.store.DB.ExecContext(ctx, r.store.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func scanTicketViews(rows *sql.Rows) ([]domain.TicketView, error) {
	var result []domain.TicketView
	for rows.Next() {
		var (
			view         domain.TicketView
			status       string
			assignee     sql.NullInt64
			createdAt    string
			assigneeName sql.NullString
		)
		if err := rows.Scan(
			&view.ID,
			&view.Title,
			&view.Description,
			&status,
			&view.CreatedBy,
			&assignee,
			&createdAt,
			&view.CreatedByName,
			&assigneeName,
		); err != nil {
			return nil, err
		}
		view.Status = domain.TicketStatus(status)
		view.AssignedTo = idPtr(assignee)
		if assigneeName.Valid {
			name := assigneeName.String
			view.AssignedToName = &name
		}
		ts, err := parseTimestamp(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		view.CreatedAt = ts
		result = append(result, view)
	}
	return result, rows.Err()
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func idPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
