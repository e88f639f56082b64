package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/export"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func TestExportRowCountMatchesTickets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", "pw", domain.RoleUser)
	tech := env.register(t, "tech", "pw", domain.RoleTechnician)
	for _, title := range []string{"one", "two", "three"} {
		env.openTicket(t, alice, title)
	}

	data, format, err := env.export.Export(ctx, tech, "csv")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, format)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, export.Columns, rows[0])
	assert.Equal(t, "three", rows[1][1])
	assert.Equal(t, "alice", rows[1][5])

	xlsx, format, err := env.export.Export(ctx, tech, "xlsx")
	require.NoError(t, err)
	assert.Equal(t, export.FormatXLSX, format)
	assert.NotEmpty(t, xlsx)
}

func TestExportRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ulla", "pw", domain.RoleUser)
	admin := env.register(t, "root", "pw", domain.RoleAdmin)

	_, _, err := env.export.Export(ctx, user, "csv")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, _, err = env.export.Export(ctx, admin, "pdf")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
