package model

import (
	"time"
)

const (
	SyncStatusPending = "pending"
	SyncStatusSyncing = "syncing"
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// Credential holds one vendor cloud account and its cached token state.
// Mutated only by the token manager and the synchronizer.
type Credential struct {
	ID             int64      `gorm:"column:id;primaryKey" json:"id"`
	BrandCode      string     `gorm:"column:brand_code;index" json:"brand_code"`
	AccountID      string     `gorm:"column:account_id" json:"account_id"`
	APIKey         string     `gorm:"column:api_key" json:"api_key"`
	APISecret      string     `gorm:"column:api_secret" json:"-"`
	AccessToken    string     `gorm:"column:access_token" json:"-"`
	RefreshToken   string     `gorm:"column:refresh_token" json:"-"`
	TokenExpiresAt *time.Time `gorm:"column:token_expires_at" json:"token_expires_at"`
	SyncStatus     string     `gorm:"column:sync_status" json:"sync_status"`
	LastSyncAt     *time.Time `gorm:"column:last_sync_at" json:"last_sync_at"`
	SyncError      string     `gorm:"column:sync_error" json:"sync_error"`
	Owner          string     `gorm:"column:owner" json:"owner"`
	Active         bool       `gorm:"column:active" json:"active"`
	CreatedAt      *time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (*Credential) TableName() string {
	return "tbl_credentials"
}

// TokenValid reports whether the cached access token can still be used.
// A token inside the refresh buffer counts as expired so a sync cycle
// never starts with a token about to lapse mid-run.
func (c *Credential) TokenValid(now time.Time, buffer time.Duration) bool {
	if c.AccessToken == "" || c.TokenExpiresAt == nil {
		return false
	}

	return now.Before(c.TokenExpiresAt.Add(-buffer))
}
