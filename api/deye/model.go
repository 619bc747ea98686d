package deye

type ObtainTokenRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	AppSecret string `json:"appSecret"`
	GrantType string `json:"grantType"`
}

type ObtainTokenResponse struct {
	Success      bool    `json:"success"`
	Code         *string `json:"code,omitempty"`
	Msg          *string `json:"msg,omitempty"`
	AccessToken  *string `json:"accessToken,omitempty"`
	RefreshToken *string `json:"refreshToken,omitempty"`
	ExpiresIn    *int64  `json:"expiresIn,omitempty"`
}

type StationItem struct {
	ID            *int64   `json:"id,omitempty"`
	Name          *string  `json:"name,omitempty"`
	LocationLat   *float64 `json:"locationLat,omitempty"`
	LocationLng   *float64 `json:"locationLng,omitempty"`
	LocationAddr  *string  `json:"locationAddress,omitempty"`
	InstalledKwp  *float64 `json:"installedCapacity,omitempty"`
	GridInterTime *string  `json:"gridInterconnectionTime,omitempty"`
	ContactPhone  *string  `json:"contactPhone,omitempty"`
	OwnerName     *string  `json:"ownerName,omitempty"`
}

type GetStationListResponse struct {
	Success     bool          `json:"success"`
	Code        *string       `json:"code,omitempty"`
	Msg         *string       `json:"msg,omitempty"`
	Total       *int          `json:"total,omitempty"`
	StationList []StationItem `json:"stationList,omitempty"`
}

type DeviceItem struct {
	DeviceSn     *string  `json:"deviceSn,omitempty"`
	DeviceID     *int64   `json:"deviceId,omitempty"`
	DeviceType   *string  `json:"deviceType,omitempty"`
	ProductModel *string  `json:"productModel,omitempty"`
	FirmwareVer  *string  `json:"firmwareVersion,omitempty"`
	RatedPower   *float64 `json:"ratedPower,omitempty"`
	ConnectState *string  `json:"connectStatus,omitempty"`
}

type GetDeviceListResponse struct {
	Success    bool         `json:"success"`
	Code       *string      `json:"code,omitempty"`
	Msg        *string      `json:"msg,omitempty"`
	Total      *int         `json:"total,omitempty"`
	DeviceList []DeviceItem `json:"deviceList,omitempty"`
}

type DataItem struct {
	Key   *string `json:"key,omitempty"`
	Value *string `json:"value,omitempty"`
	Unit  *string `json:"unit,omitempty"`
}

type GetRealtimeDataResponse struct {
	Success     bool       `json:"success"`
	Code        *string    `json:"code,omitempty"`
	Msg         *string    `json:"msg,omitempty"`
	DeviceSn    *string    `json:"deviceSn,omitempty"`
	DeviceState *string    `json:"deviceState,omitempty"`
	CollectTime *int64     `json:"collectionTime,omitempty"`
	DataList    []DataItem `json:"dataList,omitempty"`
}

type HistoryFrame struct {
	CollectTime *int64     `json:"collectTime,omitempty"`
	DataList    []DataItem `json:"dataList,omitempty"`
}

type GetHistoryDataResponse struct {
	Success       bool           `json:"success"`
	Code          *string        `json:"code,omitempty"`
	Msg           *string        `json:"msg,omitempty"`
	DeviceSn      *string        `json:"deviceSn,omitempty"`
	ParamDataList []HistoryFrame `json:"paramDataList,omitempty"`
}
