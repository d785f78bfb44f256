package legalcase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"aliadolaboral/database/repository/repotest"
	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func status(t *testing.T, err error) int {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Status
}

func TestCreateAndList(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := NewDefaultLegalCaseService(repotest.NewLegalCases())
	svc.Now = func() time.Time { return now }
	ctx := context.Background()

	_, err := svc.Create(ctx, "w1", models.CreateCaseRequest{Title: "  "})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	lc, err := svc.Create(ctx, "w1", models.CreateCaseRequest{Title: "Despido injustificado", EmployerName: "Textiles SA"})
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusActive, lc.Status)
	assert.True(t, lc.StartDate.Equal(now))

	list, err := svc.List(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Textiles SA", list[0].EmployerName)

	empty, err := svc.List(ctx, "w2")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestAddEvent(t *testing.T) {
	svc := NewDefaultLegalCaseService(repotest.NewLegalCases())
	ctx := context.Background()
	lc, err := svc.Create(ctx, "w1", models.CreateCaseRequest{Title: "Horas extra"})
	require.NoError(t, err)

	when := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	ev, err := svc.AddEvent(ctx, "w1", lc.ID, models.AddCaseEventRequest{EventType: "audiencia", Description: "Primera audiencia", OccurredAt: when})
	require.NoError(t, err)
	assert.Equal(t, lc.ID, ev.CaseID)

	list, err := svc.List(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, list[0].History, 1)
	assert.Equal(t, "audiencia", list[0].History[0].EventType)

	_, err = svc.AddEvent(ctx, "w2", lc.ID, models.AddCaseEventRequest{EventType: "nota"})
	assert.Equal(t, http.StatusForbidden, status(t, err))
	_, err = svc.AddEvent(ctx, "w1", "missing", models.AddCaseEventRequest{EventType: "nota"})
	assert.Equal(t, http.StatusNotFound, status(t, err))
	_, err = svc.AddEvent(ctx, "w1", lc.ID, models.AddCaseEventRequest{})
	assert.Equal(t, http.StatusBadRequest, status(t, err))
}
