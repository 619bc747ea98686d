package deye

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skyvolt/fleetmon/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"
)

func newTestClient(url string) *DeyeClient {
	return NewDeyeClient("fleet@example.com", "secret", "app-id", "app-secret",
		WithBaseURL(url), WithRetryCount(0))
}

func TestObtainToken(t *testing.T) {
	var gotBody ObtainTokenRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/account/token", r.URL.Path)
		require.Equal(t, "app-id", r.URL.Query().Get("appId"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(ObtainTokenResponse{
			Success:     true,
			AccessToken: pointy.String("token-abc"),
			ExpiresIn:   pointy.Int64(5184000),
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.ObtainToken()
	require.NoError(t, err)
	assert.Equal(t, "token-abc", pointy.StringValue(result.AccessToken, ""))

	assert.Equal(t, "fleet@example.com", gotBody.Email)
	assert.Equal(t, "password", gotBody.GrantType)
	// The password crosses the wire hashed, never in clear.
	assert.Equal(t, EncodePassword("secret"), gotBody.Password)
}

func TestObtainTokenRejectionIsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ObtainTokenResponse{
			Success: false,
			Code:    pointy.String("1001"),
			Msg:     pointy.String("invalid credentials"),
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ObtainToken()
	require.Error(t, err)
	assert.True(t, api.IsAuthErr(err))
}

func TestSignedHeadersCarrySignature(t *testing.T) {
	var headers http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		json.NewEncoder(w).Encode(GetRealtimeDataResponse{Success: true})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.SetAccessToken("token-abc")

	_, err := client.GetRealtimeData("SN1")
	require.NoError(t, err)

	assert.Equal(t, "app-id", headers.Get(AppIDHeader))
	assert.Equal(t, "Bearer token-abc", headers.Get(AuthorizationHeader))
	require.NotEmpty(t, headers.Get(TimestampHeader))
	require.NotEmpty(t, headers.Get(NonceHeader))

	mac := hmac.New(sha256.New, []byte("app-secret"))
	mac.Write([]byte("app-id" + headers.Get(TimestampHeader) + headers.Get(NonceHeader)))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), headers.Get(SignatureHeader))
}

func TestGetStationListPaginates(t *testing.T) {
	pages := [][]StationItem{
		make([]StationItem, MaxPageSize),
		make([]StationItem, 20),
	}
	var requestedPages []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		requestedPages = append(requestedPages, body["page"])

		list := []StationItem{}
		if body["page"] <= len(pages) {
			list = pages[body["page"]-1]
		}
		json.NewEncoder(w).Encode(GetStationListResponse{
			Success:     true,
			Total:       pointy.Int(MaxPageSize + 20),
			StationList: list,
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	stations, err := client.GetStationList()
	require.NoError(t, err)
	assert.Len(t, stations, MaxPageSize+20)
	assert.Equal(t, []int{1, 2}, requestedPages)
}

func TestGetStationListStopsOnEmptyPage(t *testing.T) {
	// Vendor reports a total it never delivers; the empty page must end the
	// loop anyway.
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		list := []StationItem{}
		if calls == 1 {
			list = make([]StationItem, 5)
		}
		json.NewEncoder(w).Encode(GetStationListResponse{
			Success:     true,
			Total:       pointy.Int(1000),
			StationList: list,
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	stations, err := client.GetStationList()
	require.NoError(t, err)
	assert.Len(t, stations, 5)
	assert.Equal(t, 2, calls)
}
