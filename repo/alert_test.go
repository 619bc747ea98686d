package repo

import (
	"testing"
	"time"

	"github.com/skyvolt/fleetmon/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"
)

func newAlert(inverterID int64, alertType string) *model.Alert {
	return &model.Alert{
		StationID:   pointy.Int64(1),
		InverterID:  pointy.Int64(inverterID),
		Type:        alertType,
		Title:       "test alert",
		Description: "test",
		OccurredAt:  time.Now(),
	}
}

func TestCreateFillsSeverityAndActive(t *testing.T) {
	repo := NewAlertRepo(newTestDB(t))

	alert := newAlert(1, model.AlertTypeFault)
	require.NoError(t, repo.Create(alert))

	stored, err := repo.FindOne(alert.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AlertSeverityError, stored.Severity)
	assert.True(t, stored.IsActive)
	assert.False(t, stored.NotificationSent)
}

func TestFindActiveForInverterScopesByType(t *testing.T) {
	repo := NewAlertRepo(newTestDB(t))

	require.NoError(t, repo.Create(newAlert(1, model.AlertTypeOffline)))

	found, err := repo.FindActiveForInverter(1, model.AlertTypeOffline)
	require.NoError(t, err)
	require.NotNil(t, found)

	none, err := repo.FindActiveForInverter(1, model.AlertTypeLowBattery)
	require.NoError(t, err)
	assert.Nil(t, none)

	other, err := repo.FindActiveForInverter(2, model.AlertTypeOffline)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestResolvedAlertDoesNotBlockRecreation(t *testing.T) {
	repo := NewAlertRepo(newTestDB(t))

	first := newAlert(1, model.AlertTypeOffline)
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Resolve(first.ID, "fixed", time.Now()))

	active, err := repo.FindActiveForInverter(1, model.AlertTypeOffline)
	require.NoError(t, err)
	assert.Nil(t, active)

	second := newAlert(1, model.AlertTypeOffline)
	require.NoError(t, repo.Create(second))

	active, err = repo.FindActiveForInverter(1, model.AlertTypeOffline)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
}

func TestAcknowledgeAndResolve(t *testing.T) {
	repo := NewAlertRepo(newTestDB(t))
	now := time.Now()

	alert := newAlert(1, model.AlertTypeLowBattery)
	require.NoError(t, repo.Create(alert))

	require.NoError(t, repo.Acknowledge(alert.ID, "operator", now))
	stored, err := repo.FindOne(alert.ID)
	require.NoError(t, err)
	assert.True(t, stored.Acknowledged)
	assert.Equal(t, "operator", stored.AcknowledgedBy)
	assert.True(t, stored.IsActive)

	require.NoError(t, repo.Resolve(alert.ID, "battery replaced", now))
	stored, err = repo.FindOne(alert.ID)
	require.NoError(t, err)
	assert.True(t, stored.Resolved)
	assert.False(t, stored.IsActive)
	assert.Equal(t, "battery replaced", stored.ResolutionNotes)

	assert.ErrorIs(t, repo.Acknowledge(9999, "nobody", now), ErrAlertNotFound)
	assert.ErrorIs(t, repo.Resolve(9999, "", now), ErrAlertNotFound)
}

func TestNotificationSweepFlow(t *testing.T) {
	repo := NewAlertRepo(newTestDB(t))

	alert := newAlert(1, model.AlertTypeFault)
	require.NoError(t, repo.Create(alert))

	unsent, err := repo.FindUnsentActive()
	require.NoError(t, err)
	require.Len(t, unsent, 1)

	require.NoError(t, repo.MarkNotified(alert.ID, time.Now()))

	unsent, err = repo.FindUnsentActive()
	require.NoError(t, err)
	assert.Empty(t, unsent)
}

func TestFindAllFilters(t *testing.T) {
	repo := NewAlertRepo(newTestDB(t))

	require.NoError(t, repo.Create(newAlert(1, model.AlertTypeOffline)))
	require.NoError(t, repo.Create(newAlert(2, model.AlertTypeFault)))
	resolved := newAlert(1, model.AlertTypeFault)
	require.NoError(t, repo.Create(resolved))
	require.NoError(t, repo.Resolve(resolved.ID, "", time.Now()))

	all, err := repo.FindAll(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	faults, err := repo.FindAll(&AlertFilter{Type: model.AlertTypeFault})
	require.NoError(t, err)
	assert.Len(t, faults, 2)

	activeFaults, err := repo.FindAll(&AlertFilter{Type: model.AlertTypeFault, ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, activeFaults, 1)

	byInverter, err := repo.FindAll(&AlertFilter{InverterID: pointy.Int64(1)})
	require.NoError(t, err)
	assert.Len(t, byInverter, 2)
}
