package repository

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func newTicket(createdBy int64, assignee *int64) *domain.Ticket {
	return &domain.Ticket{
		Title:       gofakeit.Sentence(4),
		Description: gofakeit.Paragraph(1, 2, 8, " "),
		Status:      domain.TicketStatusOpen,
		CreatedBy:   createdBy,
		AssignedTo:  assignee,
	}
}

func TestTicketRepositoryCreateAndView(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUserRepository(store)
	tickets := NewTicketRepository(store)

	owner := createUser(t, users, domain.RoleUser)
	tech := createUser(t, users, domain.RoleTechnician)

	ticket := newTicket(owner.ID, &tech.ID)
	require.NoError(t, tickets.Create(ctx, ticket))
	require.NotZero(t, ticket.ID)

	got, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.Title, got.Title)
	assert.Equal(t, domain.TicketStatusOpen, got.Status)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, tech.ID, *got.AssignedTo)

	view, err := tickets.GetView(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.Username, view.CreatedByName)
	assert.Equal(t, tech.Username, view.AssigneeName())
}

func TestTicketRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	tickets := NewTicketRepository(newTestStore(t))

	_, err := tickets.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tickets.GetView(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, tickets.UpdateStatus(ctx, 99, domain.TicketStatusClosed), ErrNotFound)
	assert.ErrorIs(t, tickets.UpdateAssignee(ctx, 99, nil), ErrNotFound)
}

func TestTicketRepositoryRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	owner := createUser(t, NewUserRepository(store), domain.RoleUser)
	tickets := NewTicketRepository(store)

	ticket := newTicket(owner.ID, nil)
	require.NoError(t, tickets.Create(ctx, ticket))

	assert.Error(t, tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatus("Done")))
}

func TestTicketRepositoryListFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUserRepository(store)
	tickets := NewTicketRepository(store)

	alice := createUser(t, users, domain.RoleUser)
	bob := createUser(t, users, domain.RoleUser)

	printer := newTicket(alice.ID, nil)
	printer.Title = "Printer down"
	require.NoError(t, tickets.Create(ctx, printer))

	vpn := newTicket(bob.ID, nil)
	vpn.Title = "VPN drops"
	vpn.Description = "Connection resets every hour"
	require.NoError(t, tickets.Create(ctx, vpn))

	laptop := newTicket(alice.ID, nil)
	laptop.Title = "Laptop fan"
	require.NoError(t, tickets.Create(ctx, laptop))
	require.NoError(t, tickets.UpdateStatus(ctx, laptop.ID, domain.TicketStatusClosed))

	all, err := tickets.List(ctx, TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{laptop.ID, vpn.ID, printer.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	mine, err := tickets.List(ctx, TicketFilter{CreatedBy: &alice.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, v := range mine {
		assert.Equal(t, alice.ID, v.CreatedBy)
		assert.Equal(t, alice.Username, v.CreatedByName)
	}

	closed := domain.TicketStatusClosed
	onlyClosed, err := tickets.List(ctx, TicketFilter{Status: &closed})
	require.NoError(t, err)
	require.Len(t, onlyClosed, 1)
	assert.Equal(t, laptop.ID, onlyClosed[0].ID)

	search, err := tickets.List(ctx, TicketFilter{Search: "connection RESETS"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, vpn.ID, search[0].ID)
}

func TestTicketRepositoryAssigneeAndCounts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUserRepository(store)
	tickets := NewTicketRepository(store)

	owner := createUser(t, users, domain.RoleUser)
	tech := createUser(t, users, domain.RoleTechnician)

	for i := 0; i < 3; i++ {
		require.NoError(t, tickets.Create(ctx, newTicket(owner.ID, nil)))
	}
	first := newTicket(owner.ID, nil)
	require.NoError(t, tickets.Create(ctx, first))

	require.NoError(t, tickets.UpdateAssignee(ctx, first.ID, &tech.ID))
	require.NoError(t, tickets.UpdateStatus(ctx, first.ID, domain.TicketStatusInProgress))

	view, err := tickets.GetView(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, tech.Username, view.AssigneeName())

	require.NoError(t, tickets.UpdateAssignee(ctx, first.ID, nil))
	view, err = tickets.GetView(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, view.AssignedTo)
	assert.Empty(t, view.AssigneeName())

	counts, err := tickets.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCounts{Open: 3, InProgress: 1, Closed: 0}, counts)
	assert.Equal(t, 4, counts.Total())
}
