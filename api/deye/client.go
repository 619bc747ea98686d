package deye

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/imroc/req/v3"
	"github.com/rs/zerolog"
	"github.com/skyvolt/fleetmon/api"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"go.openly.dev/pointy"
)

const (
	MaxPageSize = 100

	AuthorizationHeader = "Authorization"
	AppIDHeader         = "X-App-Id"
	TimestampHeader     = "X-Timestamp"
	NonceHeader         = "X-Nonce"
	SignatureHeader     = "X-Sign"
)

const (
	DeyeDeviceStateOnline  = "ONLINE"
	DeyeDeviceStateOffline = "OFFLINE"
	DeyeDeviceStateFault   = "FAULT"
)

type DeyeClient struct {
	reqClient *req.Client
	logger    zerolog.Logger
	url       string
	email     string
	password  string
	appId     string
	appSecret string
	headers   map[string]string
}

type Option func(*DeyeClient)

func WithBaseURL(url string) Option {
	return func(c *DeyeClient) {
		c.url = url
	}
}

func WithRetryCount(count int) Option {
	return func(c *DeyeClient) {
		c.reqClient.SetCommonRetryCount(count)
	}
}

func NewDeyeClient(email, password, appId, appSecret string, opts ...Option) *DeyeClient {
	logger := zerolog.New(logger.NewWriter("deye_api.log")).With().Caller().Timestamp().Logger()
	client := &DeyeClient{
		reqClient: req.C().
			SetTimeout(10 * time.Second).
			SetCommonRetryCount(3).
			SetCommonRetryBackoffInterval(1*time.Second, 30*time.Second).
			AddCommonRetryCondition(func(resp *req.Response, err error) bool {
				if err != nil {
					return true
				}

				return resp.StatusCode >= 500 || resp.StatusCode == 429
			}).
			OnBeforeRequest(func(client *req.Client, req *req.Request) error {
				logger.Debug().
					Any("request", req.RawURL).
					Msg("DeyeClient::NewDeyeClient() - requesting")
				return nil
			}),
		url:       "https://eu1-developer.deyecloud.com/v1.0",
		email:     email,
		password:  EncodePassword(password),
		appId:     appId,
		appSecret: appSecret,
		logger:    logger,
		headers:   make(map[string]string),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func EncodePassword(password string) string {
	hashPassword := sha256.Sum256([]byte(password))
	return fmt.Sprintf("%x", hashPassword[:])
}

func (c *DeyeClient) SetAccessToken(accessToken string) {
	c.headers[AuthorizationHeader] = fmt.Sprintf("Bearer %s", accessToken)
}

// signedHeaders returns the bearer header plus a rolling signature computed
// over appId + timestamp + nonce. Timestamp and nonce are fresh per request
// so a captured request cannot be replayed.
func (c *DeyeClient) signedHeaders() map[string]string {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	nonce := newNonce()

	mac := hmac.New(sha256.New, []byte(c.appSecret))
	mac.Write([]byte(c.appId + timestamp + nonce))
	sign := hex.EncodeToString(mac.Sum(nil))

	headers := map[string]string{
		AppIDHeader:     c.appId,
		TimestampHeader: timestamp,
		NonceHeader:     nonce,
		SignatureHeader: sign,
	}
	for k, v := range c.headers {
		headers[k] = v
	}

	return headers
}

func newNonce() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}

	return hex.EncodeToString(buf)
}

func (c *DeyeClient) ObtainToken() (*ObtainTokenResponse, error) {
	url := c.url + "/account/token"
	body := ObtainTokenRequest{
		Email:     c.email,
		Password:  c.password,
		AppSecret: c.appSecret,
		GrantType: "password",
	}
	query := map[string]string{
		"appId": c.appId,
	}

	var result ObtainTokenResponse
	var errorResult api.ErrorResponse
	resp, err := c.reqClient.R().
		SetRetryCount(0).
		SetQueryParams(query).
		SetBody(body).
		SetSuccessResult(&result).
		SetErrorResult(&errorResult).
		Post(url)

	if err != nil {
		c.logger.Error().
			Err(err).
			Str("url", url).
			Any("query", query).
			Msg("failed to obtain token")
		return nil, err
	}

	if resp.IsErrorState() {
		c.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("error_response", errorResult).
			Any("query", query).
			Msg("failed to obtain token")
		return nil, fmt.Errorf("obtain token status %d: %w", resp.StatusCode, api.ErrAuth)
	}

	if !result.Success {
		c.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("result", result).
			Any("query", query).
			Msg("failed to obtain token")
		return nil, fmt.Errorf("obtain token code %s: %w", pointy.StringValue(result.Code, ""), api.ErrAuth)
	}

	c.logger.Info().
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Msg("obtain token successfully")

	return &result, nil
}

func (c *DeyeClient) GetStationListWithPagination(page, size int) (*GetStationListResponse, error) {
	url := c.url + "/station/list"
	body := map[string]any{
		"page": page,
		"size": size,
	}

	var result GetStationListResponse
	var errorResult api.ErrorResponse
	resp, err := c.reqClient.R().
		SetHeaders(c.signedHeaders()).
		SetBody(body).
		SetSuccessResult(&result).
		SetErrorResult(&errorResult).
		Post(url)

	if err != nil {
		c.logger.Error().
			Err(err).
			Str("url", url).
			Any("body", body).
			Msg("failed to get station list with pagination")
		return nil, err
	}

	if resp.IsErrorState() {
		c.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("error_response", errorResult).
			Any("body", body).
			Msg("failed to get station list with pagination")
		return nil, fmt.Errorf("failed to get station list with pagination")
	}

	if !result.Success {
		c.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("result", result).
			Any("body", body).
			Msg("failed to get station list with pagination")
		return nil, fmt.Errorf("failed to get station list with error: %s", pointy.StringValue(result.Code, ""))
	}

	c.logger.Info().
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Int("count", len(result.StationList)).
		Any("body", body).
		Msg("get station list with pagination successfully")

	return &result, nil
}

func (c *DeyeClient) GetStationList() ([]StationItem, error) {
	result := make([]StationItem, 0)
	page := 1

	for {
		response, err := c.GetStationListWithPagination(page, MaxPageSize)
		if err != nil {
			return nil, err
		}

		// Empty page ends the loop even when total disagrees, so a vendor
		// miscount cannot spin forever.
		if len(response.StationList) == 0 {
			break
		}

		result = append(result, response.StationList...)
		if len(result) >= pointy.IntValue(response.Total, 0) {
			break
		}

		page++
	}

	return result, nil
}

func (c *DeyeClient) GetDeviceListWithPagination(stationId int64, page, size int) (*GetDeviceListResponse, error) {
	url := c.url + "/station/device/list"
	body := map[string]any{
		"stationId": stationId,
		"page":      page,
		"size":      size,
	}

	var result GetDeviceListResponse
	var errorResult api.ErrorResponse
	resp, err := c.reqClient.R().
		SetHeaders(c.signedHeaders()).
		SetBody(body).
		SetSuccessResult(&result).
		SetErrorResult(&errorResult).
		Post(url)

	if err != nil {
		c.logger.Error().
			Err(err).
			Str("url", url).
			Any("body", body).
			Msg("failed to get device list with pagination")
		return nil, err
	}

	if resp.IsErrorState() {
		c.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("error_response", errorResult).
			Any("body", body).
			Msg("failed to get device list with pagination")
		return nil, fmt.Errorf("failed to get device list with pagination")
	}

	if !result.Success {
		c.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("result", result).
			Any("body", body).
			Msg("failed to get device list with pagination")
		return nil, fmt.Errorf("failed to get device list with error: %s", pointy.StringValue(result.Code, ""))
	}

	c.logger.Info().
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Int("count", len(result.DeviceList)).
		Any("body", body).
		Msg("get device list with pagination successfully")

	return &result, nil
}

func (c *DeyeClient) GetDeviceList(stationId int64) ([]DeviceItem, error) {
	result := make([]DeviceItem, 0)
	page := 1

	for {
		response, err := c.GetDeviceListWithPagination(stationId, page, MaxPageSize)
		if err != nil {
			return nil, err
		}

		if len(response.DeviceList) == 0 {
			break
		}

		result = append(result, response.DeviceList...)
		if len(result) >= pointy.IntValue(response.Total, 0) {
			break
		}

		page++
	}

	return result, nil
}

func (c *DeyeClient) GetRealtimeData(deviceSn string) (*GetRealtimeDataResponse, error) {
	url := c.url + "/device/latest"
	body := map[string]any{
		"deviceSn": deviceSn,
	}

	var result GetRealtimeDataResponse
	var errorResult api.ErrorResponse
	resp, err := c.reqClient.R().
		SetHeaders(c.signedHeaders()).
		SetBody(body).
		SetSuccessResult(&result).
		SetErrorResult(&errorResult).
		Post(url)

	if err != nil {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error().
			Err(err).
			Str("url", url).
			Str("raw", string(raw)).
			Any("body", body).
			Msg("failed to get realtime data")
		return nil, err
	}

	if resp.IsErrorState() {
		c.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("error_response", errorResult).
			Any("body", body).
			Msg("failed to get realtime data")
		return nil, fmt.Errorf("failed to get realtime data")
	}

	if !result.Success {
		c.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("result", result).
			Any("body", body).
			Msg("failed to get realtime data")
		return nil, fmt.Errorf("failed to get realtime data with error: %s", pointy.StringValue(result.Code, ""))
	}

	c.logger.Info().
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Int("field_count", len(result.DataList)).
		Any("body", body).
		Msg("get realtime data successfully")

	return &result, nil
}

func (c *DeyeClient) GetHistoryData(deviceSn string, start, end time.Time) (*GetHistoryDataResponse, error) {
	url := c.url + "/device/history"
	body := map[string]any{
		"deviceSn":    deviceSn,
		"startAt":     start.Unix(),
		"endAt":       end.Unix(),
		"granularity": 1,
	}

	var result GetHistoryDataResponse
	var errorResult api.ErrorResponse
	resp, err := c.reqClient.R().
		SetHeaders(c.signedHeaders()).
		SetBody(body).
		SetSuccessResult(&result).
		SetErrorResult(&errorResult).
		Post(url)

	if err != nil {
		c.logger.Error().
			Err(err).
			Str("url", url).
			Any("body", body).
			Msg("failed to get history data")
		return nil, err
	}

	if resp.IsErrorState() {
		c.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("error_response", errorResult).
			Any("body", body).
			Msg("failed to get history data")
		return nil, fmt.Errorf("failed to get history data")
	}

	if !result.Success {
		c.logger.Error().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Any("result", result).
			Any("body", body).
			Msg("failed to get history data")
		return nil, fmt.Errorf("failed to get history data with error: %s", pointy.StringValue(result.Code, ""))
	}

	c.logger.Info().
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Int("frame_count", len(result.ParamDataList)).
		Any("body", body).
		Msg("get history data successfully")

	return &result, nil
}
