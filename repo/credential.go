package repo

import (
	"time"

	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/pkg/util"
	"github.com/skyvolt/fleetmon/setting"
	"gorm.io/gorm"
)

type CredentialRepo interface {
	FindAllActive() ([]model.Credential, error)
	FindOne(id int64) (*model.Credential, error)
	Create(credential *model.Credential) error
	Update(id int64, credential *model.Credential) error
	Delete(id int64) error

	// ClaimSync transitions the credential into syncing and reports
	// whether this caller won the claim. A credential already syncing is
	// only reclaimable once its claim is older than the lease TTL.
	ClaimSync(id int64, now time.Time) (bool, error)

	UpdateToken(id int64, accessToken, refreshToken string, expiresAt time.Time) error
	CompleteSync(id int64, at time.Time) error
	FailSync(id int64, message string, at time.Time) error
}

type credentialRepo struct {
	db *gorm.DB
}

func NewCredentialRepo(db *gorm.DB) CredentialRepo {
	return &credentialRepo{db: db}
}

func (r *credentialRepo) FindAllActive() ([]model.Credential, error) {
	var credentials []model.Credential
	tx := r.db.Session(&gorm.Session{})
	if err := tx.Where("active = ?", true).Find(&credentials).Error; err != nil {
		return nil, err
	}

	return credentials, nil
}

func (r *credentialRepo) FindOne(id int64) (*model.Credential, error) {
	var credential model.Credential
	tx := r.db.Session(&gorm.Session{})
	if err := tx.Where("id = ?", id).First(&credential).Error; err != nil {
		return nil, err
	}

	return &credential, nil
}

func (r *credentialRepo) Create(credential *model.Credential) error {
	if credential.SyncStatus == "" {
		credential.SyncStatus = model.SyncStatusPending
	}

	tx := r.db.Session(&gorm.Session{})
	if err := tx.Create(credential).Error; err != nil {
		return err
	}

	return nil
}

func (r *credentialRepo) Update(id int64, credential *model.Credential) error {
	tx := r.db.Session(&gorm.Session{})
	if err := tx.Model(&model.Credential{}).Where("id = ?", id).Updates(credential).Error; err != nil {
		return err
	}

	return nil
}

func (r *credentialRepo) Delete(id int64) error {
	tx := r.db.Session(&gorm.Session{})
	if err := tx.Where("id = ?", id).Delete(&model.Credential{}).Error; err != nil {
		return err
	}

	return nil
}

func (r *credentialRepo) ClaimSync(id int64, now time.Time) (bool, error) {
	stale := now.Add(-setting.SyncLeaseTTL)
	tx := r.db.Session(&gorm.Session{}).
		Model(&model.Credential{}).
		Where("id = ? AND (sync_status <> ? OR updated_at < ?)", id, model.SyncStatusSyncing, stale).
		Updates(map[string]any{
			"sync_status": model.SyncStatusSyncing,
			"updated_at":  now,
		})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *credentialRepo) UpdateToken(id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	tx := r.db.Session(&gorm.Session{})
	err := tx.Model(&model.Credential{}).Where("id = ?", id).Updates(map[string]any{
		"access_token":     accessToken,
		"refresh_token":    refreshToken,
		"token_expires_at": expiresAt,
	}).Error
	if err != nil {
		return err
	}

	return nil
}

func (r *credentialRepo) CompleteSync(id int64, at time.Time) error {
	tx := r.db.Session(&gorm.Session{})
	err := tx.Model(&model.Credential{}).Where("id = ?", id).Updates(map[string]any{
		"sync_status":  model.SyncStatusSuccess,
		"last_sync_at": at,
		"sync_error":   "",
	}).Error
	if err != nil {
		return err
	}

	return nil
}

func (r *credentialRepo) FailSync(id int64, message string, at time.Time) error {
	tx := r.db.Session(&gorm.Session{})
	err := tx.Model(&model.Credential{}).Where("id = ?", id).Updates(map[string]any{
		"sync_status": model.SyncStatusError,
		"sync_error":  util.Truncate(message, setting.SyncErrorMaxLen),
		"updated_at":  at,
	}).Error
	if err != nil {
		return err
	}

	return nil
}
