package deye

import (
	"fmt"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/skyvolt/fleetmon/api"
	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/setting"
	"go.openly.dev/pointy"
)

// deyeFieldMap translates vendor data-list keys into canonical field names.
// Anything not listed here stays vendor-private and never reaches callers.
var deyeFieldMap = map[string]string{
	"Pac":      "power_w",
	"Etdy_ge1": "today_energy_kwh",
	"Et_ge1":   "total_energy_kwh",
	"Uac1":     "grid_voltage",
	"Iac1":     "grid_current",
	"Fac":      "grid_frequency",
	"Upv1":     "pv1_voltage",
	"Ipv1":     "pv1_current",
	"Ppv1":     "pv1_power",
	"Upv2":     "pv2_voltage",
	"Ipv2":     "pv2_current",
	"Ppv2":     "pv2_power",
	"Ubat":     "battery_voltage",
	"Ibat":     "battery_current",
	"Pbat":     "battery_power",
	"SOC":      "battery_soc",
	"Tbat":     "battery_temperature",
	"Pload":    "load_power",
	"Tigbt":    "inverter_temperature",
	"Pbuy":     "grid_import_power",
	"Psell":    "grid_export_power",
}

// Adapter exposes the Deye cloud through the brand adapter contract.
type Adapter struct {
	client *DeyeClient
}

func init() {
	api.Register(model.BrandCodeDeye, func(credential *model.Credential) api.BrandAdapter {
		return NewAdapter(NewDeyeClient(
			credential.AccountID,
			credential.APISecret,
			credential.APIKey,
			credential.APISecret,
		))
	})
}

func NewAdapter(client *DeyeClient) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Authenticate() (*api.Token, error) {
	resp, err := a.client.ObtainToken()
	if err != nil {
		return nil, err
	}

	accessToken := pointy.StringValue(resp.AccessToken, "")
	if accessToken == "" {
		return nil, fmt.Errorf("token response without access token: %w", api.ErrAuth)
	}

	expiresIn := setting.DefaultTokenTTL
	if resp.ExpiresIn != nil && *resp.ExpiresIn > 0 {
		expiresIn = time.Duration(*resp.ExpiresIn) * time.Second
	}

	a.client.SetAccessToken(accessToken)
	return &api.Token{
		AccessToken:  accessToken,
		RefreshToken: pointy.StringValue(resp.RefreshToken, ""),
		ExpiresIn:    expiresIn,
	}, nil
}

func (a *Adapter) SetToken(accessToken string) {
	a.client.SetAccessToken(accessToken)
}

func (a *Adapter) ListStations() ([]api.StationPayload, error) {
	stations, err := a.client.GetStationList()
	if err != nil {
		return nil, err
	}

	payloads := make([]api.StationPayload, 0, len(stations))
	for _, station := range stations {
		if station.ID == nil {
			continue
		}

		payloads = append(payloads, api.StationPayload{
			ExternalID:      strconv.FormatInt(*station.ID, 10),
			Name:            pointy.StringValue(station.Name, ""),
			Address:         pointy.StringValue(station.LocationAddr, ""),
			Latitude:        station.LocationLat,
			Longitude:       station.LocationLng,
			RatedCapacityKw: station.InstalledKwp,
			Metadata: model.JSONMap{
				"owner_name":                pointy.StringValue(station.OwnerName, ""),
				"contact_phone":             pointy.StringValue(station.ContactPhone, ""),
				"grid_interconnection_time": pointy.StringValue(station.GridInterTime, ""),
			},
		})
	}

	return payloads, nil
}

func (a *Adapter) ListInverters(stationExternalID string) ([]api.InverterPayload, error) {
	stationId, err := strconv.ParseInt(stationExternalID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad station external id %q: %w", stationExternalID, err)
	}

	devices, err := a.client.GetDeviceList(stationId)
	if err != nil {
		return nil, err
	}

	payloads := make([]api.InverterPayload, 0, len(devices))
	for _, device := range devices {
		sn := pointy.StringValue(device.DeviceSn, "")
		if sn == "" {
			continue
		}

		payloads = append(payloads, api.InverterPayload{
			ExternalID:   sn,
			SerialNumber: sn,
			Model:        pointy.StringValue(device.ProductModel, ""),
			Firmware:     pointy.StringValue(device.FirmwareVer, ""),
			RatedPowerW:  device.RatedPower,
			Metadata: model.JSONMap{
				"device_type":    pointy.StringValue(device.DeviceType, ""),
				"connect_status": pointy.StringValue(device.ConnectState, ""),
			},
		})
	}

	return payloads, nil
}

func (a *Adapter) GetRealtime(inverterExternalID string) (*api.RealtimeReading, error) {
	resp, err := a.client.GetRealtimeData(inverterExternalID)
	if err != nil {
		return nil, err
	}

	if len(resp.DataList) == 0 && resp.DeviceState == nil {
		return nil, nil
	}

	fields := canonicalFields(resp.DataList)
	if resp.DeviceState != nil {
		extra := model.FieldMap{"status": *resp.DeviceState}
		_ = mergo.Merge(&fields, extra)
	}

	reading := &api.RealtimeReading{Fields: fields}
	if resp.CollectTime != nil {
		collectedAt := time.Unix(*resp.CollectTime, 0)
		reading.CollectedAt = &collectedAt
	}

	return reading, nil
}

func (a *Adapter) GetHistory(inverterExternalID string, start, end time.Time) ([]api.HistoryPoint, error) {
	resp, err := a.client.GetHistoryData(inverterExternalID, start, end)
	if err != nil {
		return nil, err
	}

	points := make([]api.HistoryPoint, 0, len(resp.ParamDataList))
	for _, frame := range resp.ParamDataList {
		if frame.CollectTime == nil {
			continue
		}

		points = append(points, api.HistoryPoint{
			Timestamp: time.Unix(*frame.CollectTime, 0),
			Fields:    canonicalFields(frame.DataList),
		})
	}

	return points, nil
}

// canonicalFields projects a vendor data list onto canonical names. An
// unmapped key or an unparseable value is dropped, never an error.
func canonicalFields(items []DataItem) model.FieldMap {
	fields := make(model.FieldMap)
	for _, item := range items {
		if item.Key == nil || item.Value == nil {
			continue
		}

		canonical, ok := deyeFieldMap[*item.Key]
		if !ok {
			continue
		}

		value, err := strconv.ParseFloat(*item.Value, 64)
		if err != nil {
			continue
		}

		fields[canonical] = value
	}

	return fields
}
