package setting

import "time"

const (
	CrontabSyncTime      = "*/10 * * * *"
	CrontabAggregateTime = "15 0 * * *"
	CrontabAlertTime     = "*/5 * * * *"
	CrontabNotifyTime    = "*/2 * * * *"
	CrontabArchiveTime   = "45 0 * * *"
)

const (
	// TokenRefreshBuffer forces a refresh when a token is within this
	// window of its expiry.
	TokenRefreshBuffer = 5 * time.Minute

	// DefaultTokenTTL applies when the vendor response omits a TTL.
	DefaultTokenTTL = 3600 * time.Second

	// SyncLeaseTTL bounds how long one credential sync may hold its lease.
	SyncLeaseTTL = 15 * time.Minute

	// SyncErrorMaxLen caps the persisted sync error message.
	SyncErrorMaxLen = 500
)

const (
	// OfflineThreshold is how stale last_data_time must be before an
	// online or standby inverter is considered offline.
	OfflineThreshold = 30 * time.Minute

	// LowBatterySocPercent raises a low battery alert below this level.
	LowBatterySocPercent = 20.0

	// ActivePowerThresholdW is the duty-cycle cutoff for generation
	// hours. The 100 W value is inherited operational lore; override it
	// through config rather than editing here.
	ActivePowerThresholdW = 100.0
)

const (
	// TariffPerKwh and GridEmissionKgPerKwh feed the daily savings and
	// CO2 estimates.
	TariffPerKwh         = 0.15
	GridEmissionKgPerKwh = 0.475
)

const (
	SyncInverterWorkers = 4
	HistoryBackfillMax  = 24 * time.Hour
)
