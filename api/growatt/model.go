package growatt

type Envelope struct {
	ErrorCode *int    `json:"error_code,omitempty"`
	ErrorMsg  *string `json:"error_msg,omitempty"`
}

func (e Envelope) Failed() bool {
	return e.ErrorCode != nil && *e.ErrorCode != 0
}

type PlantItem struct {
	PlantID     *int     `json:"plant_id,omitempty"`
	Name        *string  `json:"name,omitempty"`
	City        *string  `json:"city,omitempty"`
	Country     *string  `json:"country,omitempty"`
	Latitude    *string  `json:"latitude,omitempty"`
	Longitude   *string  `json:"longitude,omitempty"`
	PeakPowerKw *float64 `json:"peak_power,omitempty"`
	CreateDate  *string  `json:"create_date,omitempty"`
}

type GetPlantListData struct {
	Count  *int        `json:"count,omitempty"`
	Plants []PlantItem `json:"plants,omitempty"`
}

type GetPlantListResponse struct {
	Envelope
	Data *GetPlantListData `json:"data,omitempty"`
}

type DeviceItem struct {
	DeviceSN     *string  `json:"device_sn,omitempty"`
	DeviceID     *int     `json:"device_id,omitempty"`
	Type         *int     `json:"type,omitempty"`
	Model        *string  `json:"model,omitempty"`
	FwVersion    *string  `json:"fw_version,omitempty"`
	NominalPower *float64 `json:"nominal_power,omitempty"`
	Status       *int     `json:"status,omitempty"`
	LastUpdate   *string  `json:"last_update_time,omitempty"`
}

type GetDeviceListData struct {
	Count   *int         `json:"count,omitempty"`
	Devices []DeviceItem `json:"devices,omitempty"`
}

type GetDeviceListResponse struct {
	Envelope
	Data *GetDeviceListData `json:"data,omitempty"`
}

type InverterLastData struct {
	Status      *string  `json:"status,omitempty"`
	Pac         *float64 `json:"pac,omitempty"`
	EToday      *float64 `json:"e_today,omitempty"`
	ETotal      *float64 `json:"e_total,omitempty"`
	Vac1        *float64 `json:"vac1,omitempty"`
	Iac1        *float64 `json:"iac1,omitempty"`
	Fac         *float64 `json:"fac,omitempty"`
	Vpv1        *float64 `json:"vpv1,omitempty"`
	Ipv1        *float64 `json:"ipv1,omitempty"`
	Ppv1        *float64 `json:"ppv1,omitempty"`
	Vpv2        *float64 `json:"vpv2,omitempty"`
	Ipv2        *float64 `json:"ipv2,omitempty"`
	Ppv2        *float64 `json:"ppv2,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Time        *string  `json:"time,omitempty"`
}

type GetInverterLastDataResponse struct {
	Envelope
	Data *InverterLastData `json:"data,omitempty"`
}

type InverterHistoryItem struct {
	Time   *string  `json:"time,omitempty"`
	Pac    *float64 `json:"pac,omitempty"`
	EToday *float64 `json:"e_today,omitempty"`
	ETotal *float64 `json:"e_total,omitempty"`
	Vac1   *float64 `json:"vac1,omitempty"`
}

type GetInverterHistoryData struct {
	Count *int                  `json:"count,omitempty"`
	Datas []InverterHistoryItem `json:"datas,omitempty"`
}

type GetInverterHistoryResponse struct {
	Envelope
	Data *GetInverterHistoryData `json:"data,omitempty"`
}
