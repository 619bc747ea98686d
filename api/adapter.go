package api

import (
	"time"

	"github.com/skyvolt/fleetmon/model"
)

// StationPayload is the vendor-neutral shape of one site returned by
// ListStations.
type StationPayload struct {
	ExternalID      string
	Name            string
	Address         string
	Latitude        *float64
	Longitude       *float64
	RatedCapacityKw *float64
	Metadata        model.JSONMap
}

// InverterPayload is the vendor-neutral shape of one device under a station.
type InverterPayload struct {
	ExternalID   string
	SerialNumber string
	Model        string
	Firmware     string
	RatedPowerW  *float64
	Metadata     model.JSONMap
}

// RealtimeReading carries one normalized realtime sample. Fields uses
// canonical names only; a canonical field the vendor does not report is
// simply absent.
type RealtimeReading struct {
	CollectedAt *time.Time
	Fields      model.FieldMap
}

// HistoryPoint is one normalized historical sample.
type HistoryPoint struct {
	Timestamp time.Time
	Fields    model.FieldMap
}

// Token is the result of a vendor login or refresh flow.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// BrandAdapter is the capability every vendor client implements. List
// methods exhaust vendor pagination internally; callers never see pages or
// vendor field names.
type BrandAdapter interface {
	// Authenticate runs the brand's login/refresh flow and returns a
	// fresh token. Rejection is wrapped with ErrAuth.
	Authenticate() (*Token, error)

	// SetToken installs a cached access token without a network call.
	SetToken(accessToken string)

	ListStations() ([]StationPayload, error)
	ListInverters(stationExternalID string) ([]InverterPayload, error)

	// GetRealtime returns nil without error when the vendor has no
	// current reading for the device.
	GetRealtime(inverterExternalID string) (*RealtimeReading, error)

	GetHistory(inverterExternalID string, start, end time.Time) ([]HistoryPoint, error)
}
