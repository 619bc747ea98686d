package growatt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/skyvolt/fleetmon/api"
	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/setting"
	"go.openly.dev/pointy"
)

// Adapter exposes the Growatt open API through the brand adapter contract.
// Growatt uses a static API token, so Authenticate only has to prove the
// token is still accepted.
type Adapter struct {
	client *GrowattClient
}

func init() {
	api.Register(model.BrandCodeGrowatt, func(credential *model.Credential) api.BrandAdapter {
		return NewAdapter(NewGrowattClient(credential.AccountID, credential.APIKey))
	})
}

func NewAdapter(client *GrowattClient) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Authenticate() (*api.Token, error) {
	// Cheapest call that exercises the token.
	if _, err := a.client.GetPlantListWithPagination(1, 1); err != nil {
		return nil, fmt.Errorf("token probe failed: %w", api.ErrAuth)
	}

	return &api.Token{
		AccessToken: a.client.token,
		ExpiresIn:   setting.DefaultTokenTTL,
	}, nil
}

func (a *Adapter) SetToken(accessToken string) {
	a.client.headers[AuthHeader] = accessToken
}

func (a *Adapter) ListStations() ([]api.StationPayload, error) {
	plants, err := a.client.GetPlantList()
	if err != nil {
		return nil, err
	}

	payloads := make([]api.StationPayload, 0, len(plants))
	for _, plant := range plants {
		if plant.PlantID == nil {
			continue
		}

		payload := api.StationPayload{
			ExternalID:      strconv.Itoa(*plant.PlantID),
			Name:            pointy.StringValue(plant.Name, ""),
			Address:         pointy.StringValue(plant.City, ""),
			RatedCapacityKw: plant.PeakPowerKw,
			Metadata: model.JSONMap{
				"country":     pointy.StringValue(plant.Country, ""),
				"create_date": pointy.StringValue(plant.CreateDate, ""),
			},
		}

		if lat, err := strconv.ParseFloat(pointy.StringValue(plant.Latitude, ""), 64); err == nil {
			payload.Latitude = pointy.Float64(lat)
		}
		if lng, err := strconv.ParseFloat(pointy.StringValue(plant.Longitude, ""), 64); err == nil {
			payload.Longitude = pointy.Float64(lng)
		}

		payloads = append(payloads, payload)
	}

	return payloads, nil
}

func (a *Adapter) ListInverters(stationExternalID string) ([]api.InverterPayload, error) {
	plantId, err := strconv.Atoi(stationExternalID)
	if err != nil {
		return nil, fmt.Errorf("bad station external id %q: %w", stationExternalID, err)
	}

	devices, err := a.client.GetDeviceList(plantId)
	if err != nil {
		return nil, err
	}

	payloads := make([]api.InverterPayload, 0, len(devices))
	for _, device := range devices {
		sn := pointy.StringValue(device.DeviceSN, "")
		if sn == "" {
			continue
		}

		payloads = append(payloads, api.InverterPayload{
			ExternalID:   sn,
			SerialNumber: sn,
			Model:        pointy.StringValue(device.Model, ""),
			Firmware:     pointy.StringValue(device.FwVersion, ""),
			RatedPowerW:  device.NominalPower,
			Metadata: model.JSONMap{
				"device_type":      pointy.IntValue(device.Type, 0),
				"last_update_time": pointy.StringValue(device.LastUpdate, ""),
			},
		})
	}

	return payloads, nil
}

func (a *Adapter) GetRealtime(inverterExternalID string) (*api.RealtimeReading, error) {
	resp, err := a.client.GetInverterLastData(inverterExternalID)
	if err != nil {
		return nil, err
	}

	if resp.Data == nil {
		return nil, nil
	}

	data := resp.Data
	fields := make(model.FieldMap)
	putFloat(fields, "power_w", data.Pac)
	putFloat(fields, "today_energy_kwh", data.EToday)
	putFloat(fields, "total_energy_kwh", data.ETotal)
	putFloat(fields, "grid_voltage", data.Vac1)
	putFloat(fields, "grid_current", data.Iac1)
	putFloat(fields, "grid_frequency", data.Fac)
	putFloat(fields, "pv1_voltage", data.Vpv1)
	putFloat(fields, "pv1_current", data.Ipv1)
	putFloat(fields, "pv1_power", data.Ppv1)
	putFloat(fields, "pv2_voltage", data.Vpv2)
	putFloat(fields, "pv2_current", data.Ipv2)
	putFloat(fields, "pv2_power", data.Ppv2)
	putFloat(fields, "inverter_temperature", data.Temperature)
	if data.Status != nil {
		fields["status"] = *data.Status
	}

	reading := &api.RealtimeReading{Fields: fields}
	if data.Time != nil {
		if collectedAt, err := time.Parse("2006-01-02 15:04:05", *data.Time); err == nil {
			reading.CollectedAt = &collectedAt
		}
	}

	return reading, nil
}

func (a *Adapter) GetHistory(inverterExternalID string, start, end time.Time) ([]api.HistoryPoint, error) {
	resp, err := a.client.GetInverterHistory(inverterExternalID, start, end)
	if err != nil {
		return nil, err
	}

	if resp.Data == nil {
		return nil, nil
	}

	points := make([]api.HistoryPoint, 0, len(resp.Data.Datas))
	for _, item := range resp.Data.Datas {
		if item.Time == nil {
			continue
		}

		timestamp, err := time.Parse("2006-01-02 15:04:05", *item.Time)
		if err != nil {
			continue
		}

		fields := make(model.FieldMap)
		putFloat(fields, "power_w", item.Pac)
		putFloat(fields, "today_energy_kwh", item.EToday)
		putFloat(fields, "total_energy_kwh", item.ETotal)
		putFloat(fields, "grid_voltage", item.Vac1)

		points = append(points, api.HistoryPoint{
			Timestamp: timestamp,
			Fields:    fields,
		})
	}

	return points, nil
}

func putFloat(fields model.FieldMap, key string, value *float64) {
	if value == nil {
		return
	}

	fields[key] = *value
}
