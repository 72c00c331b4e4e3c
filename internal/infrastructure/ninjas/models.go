package ninjas

// validatePhoneResponse mirrors GET /v1/validatephone.
type validatePhoneResponse struct {
	IsValid   bool     `json:"is_valid"`
	Country   string   `json:"country"`
	Timezones []string `json:"timezones"`
}

// geocodingResponse is one element of GET /v1/geocoding.
type geocodingResponse struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
}

// worldTimeResponse mirrors GET /v1/worldtime.
type worldTimeResponse struct {
	Timezone string `json:"timezone"`
	Datetime string `json:"datetime"`
}

// weatherResponse mirrors GET /v1/weather.
type weatherResponse struct {
	Temp *float64 `json:"temp"`
}
