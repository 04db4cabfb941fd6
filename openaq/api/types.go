package api

type measurementsResponse struct {
	Results []measurementResult `json:"results"`
}

type measurementResult struct {
	Value  float64 `json:"value"`
	Period struct {
		DatetimeTo struct {
			Local string `json:"local"`
			UTC   string `json:"utc"`
		} `json:"datetimeTo"`
	} `json:"period"`
}

// Location is a named monitoring site hosting one or more sensors.
type Location struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Locality string `json:"locality"`
}

// Parameter describes what a sensor measures.
type Parameter struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Units       string `json:"units"`
}

// Sensor is one measurement channel of a location.
type Sensor struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Parameter Parameter `json:"parameter"`
	Latest    struct {
		Value float64 `json:"value"`
	} `json:"latest"`
}

type locationsResponse struct {
	Results []Location `json:"results"`
}

type sensorsResponse struct {
	Results []Sensor `json:"results"`
}
