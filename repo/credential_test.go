package repo

import (
	"strings"
	"testing"
	"time"

	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/setting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCredential(t *testing.T, repo CredentialRepo) *model.Credential {
	t.Helper()

	credential := &model.Credential{
		BrandCode: model.BrandCodeDeye,
		AccountID: "ops@example.com",
		APIKey:    "app-id",
		APISecret: "app-secret",
		Active:    true,
	}
	require.NoError(t, repo.Create(credential))
	require.NotZero(t, credential.ID)

	return credential
}

func TestCredentialCreateDefaultsPending(t *testing.T) {
	repo := NewCredentialRepo(newTestDB(t))
	credential := seedCredential(t, repo)

	stored, err := repo.FindOne(credential.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusPending, stored.SyncStatus)
}

func TestClaimSync(t *testing.T) {
	repo := NewCredentialRepo(newTestDB(t))
	credential := seedCredential(t, repo)
	now := time.Now()

	claimed, err := repo.ClaimSync(credential.ID, now)
	require.NoError(t, err)
	assert.True(t, claimed)

	stored, err := repo.FindOne(credential.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusSyncing, stored.SyncStatus)

	// A second claim while syncing loses.
	claimed, err = repo.ClaimSync(credential.ID, now)
	require.NoError(t, err)
	assert.False(t, claimed)

	// A stale claim is reclaimable after the lease TTL.
	claimed, err = repo.ClaimSync(credential.ID, now.Add(setting.SyncLeaseTTL+time.Minute))
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestCompleteSyncClearsError(t *testing.T) {
	repo := NewCredentialRepo(newTestDB(t))
	credential := seedCredential(t, repo)
	now := time.Now()

	require.NoError(t, repo.FailSync(credential.ID, "boom", now))
	stored, err := repo.FindOne(credential.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusError, stored.SyncStatus)
	assert.Equal(t, "boom", stored.SyncError)

	require.NoError(t, repo.CompleteSync(credential.ID, now))
	stored, err = repo.FindOne(credential.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusSuccess, stored.SyncStatus)
	assert.Empty(t, stored.SyncError)
	require.NotNil(t, stored.LastSyncAt)
}

func TestFailSyncTruncatesMessage(t *testing.T) {
	repo := NewCredentialRepo(newTestDB(t))
	credential := seedCredential(t, repo)

	long := strings.Repeat("x", setting.SyncErrorMaxLen+200)
	require.NoError(t, repo.FailSync(credential.ID, long, time.Now()))

	stored, err := repo.FindOne(credential.ID)
	require.NoError(t, err)
	assert.Len(t, stored.SyncError, setting.SyncErrorMaxLen)
}

func TestUpdateToken(t *testing.T) {
	repo := NewCredentialRepo(newTestDB(t))
	credential := seedCredential(t, repo)
	expiresAt := time.Now().Add(time.Hour).UTC()

	require.NoError(t, repo.UpdateToken(credential.ID, "access", "refresh", expiresAt))

	stored, err := repo.FindOne(credential.ID)
	require.NoError(t, err)
	assert.Equal(t, "access", stored.AccessToken)
	assert.Equal(t, "refresh", stored.RefreshToken)
	require.NotNil(t, stored.TokenExpiresAt)
	assert.WithinDuration(t, expiresAt, *stored.TokenExpiresAt, time.Second)
}

func TestFindAllActiveSkipsInactive(t *testing.T) {
	repo := NewCredentialRepo(newTestDB(t))
	active := seedCredential(t, repo)

	inactive := &model.Credential{
		BrandCode: model.BrandCodeGrowatt,
		AccountID: "retired@example.com",
		Active:    false,
	}
	require.NoError(t, repo.Create(inactive))

	credentials, err := repo.FindAllActive()
	require.NoError(t, err)
	require.Len(t, credentials, 1)
	assert.Equal(t, active.ID, credentials[0].ID)
}
