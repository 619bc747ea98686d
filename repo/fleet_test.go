package repo

import (
	"testing"
	"time"

	"github.com/skyvolt/fleetmon/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"
)

func TestStationUpsertPreservesDerivedState(t *testing.T) {
	repo := NewStationRepo(newTestDB(t))

	station := &model.Station{CredentialID: 1, ExternalID: "st-1", Name: "Roof A"}
	require.NoError(t, repo.Upsert(station))
	require.NotZero(t, station.ID)

	lastData := time.Now().UTC()
	require.NoError(t, repo.UpdateStatus(station.ID, model.StatusOnline, &lastData))

	// A later sync cycle re-upserts the same station with fresh identity
	// fields; status and last_data_time must survive.
	again := &model.Station{CredentialID: 1, ExternalID: "st-1", Name: "Roof A renamed"}
	require.NoError(t, repo.Upsert(again))
	assert.Equal(t, station.ID, again.ID)

	stored, err := repo.FindOne(station.ID)
	require.NoError(t, err)
	assert.Equal(t, "Roof A renamed", stored.Name)
	assert.Equal(t, model.StatusOnline, stored.Status)
	require.NotNil(t, stored.LastDataTime)
}

func TestStationUpsertKeyedPerCredential(t *testing.T) {
	repo := NewStationRepo(newTestDB(t))

	first := &model.Station{CredentialID: 1, ExternalID: "st-1"}
	second := &model.Station{CredentialID: 2, ExternalID: "st-1"}
	require.NoError(t, repo.Upsert(first))
	require.NoError(t, repo.Upsert(second))
	assert.NotEqual(t, first.ID, second.ID)

	stations, err := repo.FindByCredential(1)
	require.NoError(t, err)
	assert.Len(t, stations, 1)
}

func TestInverterUpsertPreservesSnapshot(t *testing.T) {
	repo := NewInverterRepo(newTestDB(t))

	inverter := &model.Inverter{StationID: 1, ExternalID: "sn-1", SerialNumber: "SN1", Model: "X100"}
	require.NoError(t, repo.Upsert(inverter))
	require.NotZero(t, inverter.ID)

	// Ingestion writes a snapshot.
	inverter.Status = model.StatusOnline
	inverter.CurrentPowerW = pointy.Float64(2500)
	now := time.Now().UTC()
	inverter.LastDataTime = &now
	require.NoError(t, repo.Save(inverter))

	// The next cycle upserts identity again; the snapshot must survive.
	again := &model.Inverter{StationID: 1, ExternalID: "sn-1", SerialNumber: "SN1", Firmware: "v2"}
	require.NoError(t, repo.Upsert(again))
	assert.Equal(t, inverter.ID, again.ID)
	assert.Equal(t, "v2", again.Firmware)
	assert.Equal(t, model.StatusOnline, again.Status)
	require.NotNil(t, again.CurrentPowerW)
	assert.Equal(t, 2500.0, *again.CurrentPowerW)
	require.NotNil(t, again.LastDataTime)
}
