package growatt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/imroc/req/v3"
	"github.com/rs/zerolog"
	"github.com/skyvolt/fleetmon/api"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"go.openly.dev/pointy"
)

const (
	AuthHeader  = "Token"
	MaxPageSize = 100
)

const (
	GrowattDeviceStatusOffline = 0
	GrowattDeviceStatusOnline  = 1
	GrowattDeviceStatusStandby = 2
	GrowattDeviceStatusFault   = 3
)

type GrowattClient struct {
	reqClient *req.Client
	username  string
	token     string
	url       string
	headers   map[string]string
	logger    zerolog.Logger
}

type Option func(*GrowattClient)

func WithBaseURL(url string) Option {
	return func(g *GrowattClient) {
		g.url = url
	}
}

func NewGrowattClient(username, token string, opts ...Option) *GrowattClient {
	logger := zerolog.New(logger.NewWriter("growatt_api.log")).With().Caller().Timestamp().Logger()
	g := &GrowattClient{
		reqClient: req.C().
			SetTimeout(10 * time.Second).
			SetCommonRetryCount(3).
			SetCommonRetryBackoffInterval(1*time.Second, 30*time.Second).
			AddCommonRetryCondition(func(resp *req.Response, err error) bool {
				if err != nil {
					return true
				}

				return resp.StatusCode >= 500 || resp.StatusCode == 429
			}),
		url:      "https://openapi.growatt.com/v1",
		username: username,
		token:    token,
		headers:  map[string]string{AuthHeader: token},
		logger:   logger,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *GrowattClient) GetPlantListWithPagination(page, size int) (*GetPlantListResponse, error) {
	url := g.url + "/plant/user_plant_list"
	query := map[string]string{
		"user_name": g.username,
		"page":      strconv.Itoa(page),
		"perpage":   strconv.Itoa(size),
	}

	var result GetPlantListResponse
	var errorResult api.ErrorResponse
	resp, err := g.reqClient.R().
		SetHeaders(g.headers).
		SetQueryParams(query).
		SetSuccessResult(&result).
		SetErrorResult(&errorResult).
		Get(url)

	if err != nil {
		g.logger.Error().
			Err(err).
			Str("url", url).
			Any("query", query).
			Msg("failed to get plant list with pagination")
		return nil, err
	}

	if resp.IsErrorState() {
		g.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("error_response", errorResult).
			Any("query", query).
			Msg("failed to get plant list with pagination")
		return nil, fmt.Errorf("failed to get plant list with pagination")
	}

	if result.Failed() {
		g.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("result", result.Envelope).
			Any("query", query).
			Msg("failed to get plant list with pagination")
		return nil, fmt.Errorf("failed to get plant list with error: %s", pointy.StringValue(result.ErrorMsg, ""))
	}

	return &result, nil
}

func (g *GrowattClient) GetPlantList() ([]PlantItem, error) {
	result := make([]PlantItem, 0)
	page := 1

	for {
		response, err := g.GetPlantListWithPagination(page, MaxPageSize)
		if err != nil {
			return nil, err
		}

		if response.Data == nil || len(response.Data.Plants) == 0 {
			break
		}

		result = append(result, response.Data.Plants...)
		if len(result) >= pointy.IntValue(response.Data.Count, 0) {
			break
		}

		page++
	}

	return result, nil
}

func (g *GrowattClient) GetDeviceListWithPagination(plantId, page, size int) (*GetDeviceListResponse, error) {
	url := g.url + "/device/list"
	query := map[string]string{
		"plant_id": strconv.Itoa(plantId),
		"page":     strconv.Itoa(page),
		"perpage":  strconv.Itoa(size),
	}

	var result GetDeviceListResponse
	var errorResult api.ErrorResponse
	resp, err := g.reqClient.R().
		SetHeaders(g.headers).
		SetQueryParams(query).
		SetSuccessResult(&result).
		SetErrorResult(&errorResult).
		Get(url)

	if err != nil {
		g.logger.Error().
			Err(err).
			Str("url", url).
			Any("query", query).
			Msg("failed to get device list with pagination")
		return nil, err
	}

	if resp.IsErrorState() {
		g.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("error_response", errorResult).
			Any("query", query).
			Msg("failed to get device list with pagination")
		return nil, fmt.Errorf("failed to get device list with pagination")
	}

	if result.Failed() {
		g.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("result", result.Envelope).
			Any("query", query).
			Msg("failed to get device list with pagination")
		return nil, fmt.Errorf("failed to get device list with error: %s", pointy.StringValue(result.ErrorMsg, ""))
	}

	return &result, nil
}

func (g *GrowattClient) GetDeviceList(plantId int) ([]DeviceItem, error) {
	result := make([]DeviceItem, 0)
	page := 1

	for {
		response, err := g.GetDeviceListWithPagination(plantId, page, MaxPageSize)
		if err != nil {
			return nil, err
		}

		if response.Data == nil || len(response.Data.Devices) == 0 {
			break
		}

		result = append(result, response.Data.Devices...)
		if len(result) >= pointy.IntValue(response.Data.Count, 0) {
			break
		}

		page++
	}

	return result, nil
}

func (g *GrowattClient) GetInverterLastData(deviceSn string) (*GetInverterLastDataResponse, error) {
	url := g.url + "/device/inverter/last_new_data"
	query := map[string]string{
		"device_sn": deviceSn,
	}

	var result GetInverterLastDataResponse
	var errorResult api.ErrorResponse
	resp, err := g.reqClient.R().
		SetHeaders(g.headers).
		SetQueryParams(query).
		SetSuccessResult(&result).
		SetErrorResult(&errorResult).
		Get(url)

	if err != nil {
		g.logger.Error().
			Err(err).
			Str("url", url).
			Any("query", query).
			Msg("failed to get inverter last data")
		return nil, err
	}

	if resp.IsErrorState() {
		g.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("error_response", errorResult).
			Any("query", query).
			Msg("failed to get inverter last data")
		return nil, fmt.Errorf("failed to get inverter last data")
	}

	if result.Failed() {
		g.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("result", result.Envelope).
			Any("query", query).
			Msg("failed to get inverter last data")
		return nil, fmt.Errorf("failed to get inverter last data with error: %s", pointy.StringValue(result.ErrorMsg, ""))
	}

	return &result, nil
}

func (g *GrowattClient) GetInverterHistory(deviceSn string, start, end time.Time) (*GetInverterHistoryResponse, error) {
	url := g.url + "/device/inverter/history"
	query := map[string]string{
		"device_sn":  deviceSn,
		"start_date": start.Format("2006-01-02"),
		"end_date":   end.Format("2006-01-02"),
	}

	var result GetInverterHistoryResponse
	var errorResult api.ErrorResponse
	resp, err := g.reqClient.R().
		SetHeaders(g.headers).
		SetQueryParams(query).
		SetSuccessResult(&result).
		SetErrorResult(&errorResult).
		Get(url)

	if err != nil {
		g.logger.Error().
			Err(err).
			Str("url", url).
			Any("query", query).
			Msg("failed to get inverter history")
		return nil, err
	}

	if resp.IsErrorState() {
		g.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("error_response", errorResult).
			Any("query", query).
			Msg("failed to get inverter history")
		return nil, fmt.Errorf("failed to get inverter history")
	}

	if result.Failed() {
		g.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("result", result.Envelope).
			Any("query", query).
			Msg("failed to get inverter history")
		return nil, fmt.Errorf("failed to get inverter history with error: %s", pointy.StringValue(result.ErrorMsg, ""))
	}

	return &result, nil
}
