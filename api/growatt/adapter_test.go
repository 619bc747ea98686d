package growatt

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skyvolt/fleetmon/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"
)

func newTestAdapter(url string) *Adapter {
	return NewAdapter(NewGrowattClient("fleet@example.com", "api-token", WithBaseURL(url)))
}

func TestGetRealtimeMapsFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/device/inverter/last_new_data", r.URL.Path)
		require.Equal(t, "api-token", r.Header.Get(AuthHeader))
		require.Equal(t, "SN1", r.URL.Query().Get("device_sn"))

		json.NewEncoder(w).Encode(GetInverterLastDataResponse{
			Data: &InverterLastData{
				Status: pointy.String("1"),
				Pac:    pointy.Float64(2450.5),
				EToday: pointy.Float64(8.2),
				ETotal: pointy.Float64(10321.7),
				Vac1:   pointy.Float64(231.4),
				Time:   pointy.String("2026-03-01 12:04:30"),
			},
		})
	}))
	defer server.Close()

	reading, err := newTestAdapter(server.URL).GetRealtime("SN1")
	require.NoError(t, err)
	require.NotNil(t, reading)

	assert.Equal(t, 2450.5, reading.Fields["power_w"])
	assert.Equal(t, 8.2, reading.Fields["today_energy_kwh"])
	assert.Equal(t, 10321.7, reading.Fields["total_energy_kwh"])
	assert.Equal(t, 231.4, reading.Fields["grid_voltage"])
	assert.Equal(t, "1", reading.Fields["status"])
	_, hasTemperature := reading.Fields["inverter_temperature"]
	assert.False(t, hasTemperature)

	require.NotNil(t, reading.CollectedAt)
	assert.Equal(t, "2026-03-01 12:04:30", reading.CollectedAt.Format("2006-01-02 15:04:05"))
}

func TestGetRealtimeNoDataReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GetInverterLastDataResponse{})
	}))
	defer server.Close()

	reading, err := newTestAdapter(server.URL).GetRealtime("SN1")
	require.NoError(t, err)
	assert.Nil(t, reading)
}

func TestListStationsMapsPlants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/plant/user_plant_list", r.URL.Path)
		json.NewEncoder(w).Encode(GetPlantListResponse{
			Data: &GetPlantListData{
				Count: pointy.Int(2),
				Plants: []PlantItem{
					{
						PlantID:     pointy.Int(42),
						Name:        pointy.String("Roof A"),
						City:        pointy.String("Chiang Mai"),
						Latitude:    pointy.String("18.7883"),
						Longitude:   pointy.String("98.9853"),
						PeakPowerKw: pointy.Float64(9.9),
					},
					// A plant without an id cannot be keyed and is skipped.
					{Name: pointy.String("orphan")},
				},
			},
		})
	}))
	defer server.Close()

	stations, err := newTestAdapter(server.URL).ListStations()
	require.NoError(t, err)
	require.Len(t, stations, 1)

	assert.Equal(t, "42", stations[0].ExternalID)
	assert.Equal(t, "Roof A", stations[0].Name)
	assert.Equal(t, 18.7883, pointy.Float64Value(stations[0].Latitude, 0))
	assert.Equal(t, 9.9, pointy.Float64Value(stations[0].RatedCapacityKw, 0))
}

func TestAuthenticateRejectionIsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GetPlantListResponse{
			Envelope: Envelope{
				ErrorCode: pointy.Int(10011),
				ErrorMsg:  pointy.String("token invalid"),
			},
		})
	}))
	defer server.Close()

	_, err := newTestAdapter(server.URL).Authenticate()
	require.Error(t, err)
	assert.True(t, api.IsAuthErr(err))
}

func TestGetHistorySkipsUnparseableTimes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/device/inverter/history", r.URL.Path)
		json.NewEncoder(w).Encode(GetInverterHistoryResponse{
			Data: &GetInverterHistoryData{
				Count: pointy.Int(3),
				Datas: []InverterHistoryItem{
					{Time: pointy.String("2026-03-01 10:00:00"), Pac: pointy.Float64(1200)},
					{Time: pointy.String("not a time"), Pac: pointy.Float64(1300)},
					{Pac: pointy.Float64(1400)},
				},
			},
		})
	}))
	defer server.Close()

	points, err := newTestAdapter(server.URL).GetHistory("SN1", timeMustParse("2026-03-01 00:00:00"), timeMustParse("2026-03-02 00:00:00"))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 1200.0, points[0].Fields["power_w"])
}

func timeMustParse(value string) (t time.Time) {
	t, _ = time.Parse("2006-01-02 15:04:05", value)
	return t
}
