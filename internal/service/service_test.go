package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
)

type testEnv struct {
	users   repository.UserRepository
	tickets repository.TicketRepository

	auth    *AuthService
	userSvc *UserService
	ticket  *TicketService
	export  *ExportService

	recorder *eventRecorder
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := persistence.Open(context.Background(), config.StoreConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "helpdesk.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, persistence.RunMigrations(store, zap.NewNop()))

	users := repository.NewUserRepository(store)
	tickets := repository.NewTicketRepository(store)

	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	for _, et := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketAssigned,
		events.EventUserRegistered,
		events.EventUserRoleChanged,
		events.EventPasswordChanged,
	} {
		dispatcher.Subscribe(et, recorder.record)
	}
	NewAuditService(dispatcher, zap.NewNop()).RegisterHandlers()

	return &testEnv{
		users:   users,
		tickets: tickets,
		auth: NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost}, AuthDependencies{
			UserRepo:   users,
			Dispatcher: dispatcher,
		}),
		userSvc: NewUserService(users, dispatcher),
		ticket: NewTicketService(TicketDependencies{
			TicketRepo: tickets,
			UserRepo:   users,
			Dispatcher: dispatcher,
		}),
		export:   NewExportService(tickets),
		recorder: recorder,
	}
}

func (e *testEnv) register(t *testing.T, username, password string, role domain.Role) *domain.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), username, password, role)
	require.NoError(t, err)
	return user
}

func (e *testEnv) openTicket(t *testing.T, owner *domain.User, title string) *domain.Ticket {
	t.Helper()
	ticket, err := e.ticket.CreateTicket(context.Background(), owner.ID, TicketCreateInput{
		Title:       title,
		Description: title + " details",
	})
	require.NoError(t, err)
	return ticket
}
