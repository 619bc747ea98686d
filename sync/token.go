package sync

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/skyvolt/fleetmon/api"
	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"github.com/skyvolt/fleetmon/repo"
	"github.com/skyvolt/fleetmon/setting"
)

// TokenManager keeps adapter access tokens fresh. It reuses the cached token
// while it sits outside the refresh buffer and runs the vendor auth flow
// otherwise, persisting whatever the vendor returned.
type TokenManager struct {
	credRepo repo.CredentialRepo
	logger   zerolog.Logger
}

func NewTokenManager(credRepo repo.CredentialRepo) *TokenManager {
	return &TokenManager{
		credRepo: credRepo,
		logger:   zerolog.New(logger.NewWriter("token_manager.log")).With().Timestamp().Caller().Logger(),
	}
}

// EnsureToken leaves the adapter holding a usable access token and the
// credential row in sync with it. Auth rejections come back wrapped with
// api.ErrAuth and must not be retried by the caller.
func (m *TokenManager) EnsureToken(credential *model.Credential, adapter api.BrandAdapter, now time.Time) error {
	if credential.TokenValid(now, setting.TokenRefreshBuffer) {
		adapter.SetToken(credential.AccessToken)
		return nil
	}

	token, err := adapter.Authenticate()
	if err != nil {
		m.logger.Error().Err(err).Int64("credential_id", credential.ID).Msg("TokenManager::EnsureToken() - authentication failed")
		return err
	}

	ttl := token.ExpiresIn
	if ttl <= 0 {
		ttl = setting.DefaultTokenTTL
	}
	expiresAt := now.Add(ttl)

	if err := m.credRepo.UpdateToken(credential.ID, token.AccessToken, token.RefreshToken, expiresAt); err != nil {
		return err
	}

	credential.AccessToken = token.AccessToken
	credential.RefreshToken = token.RefreshToken
	credential.TokenExpiresAt = &expiresAt

	m.logger.Info().Int64("credential_id", credential.ID).Time("expires_at", expiresAt).Msg("TokenManager::EnsureToken() - token refreshed")
	return nil
}
