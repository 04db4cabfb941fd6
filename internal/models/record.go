package models

// Measurement is a single sensor reading as stored in a record set.
// Timestamp is the station-local ISO-8601 time reported by the API,
// kept as a string so the stored file reflects exactly what the API said.
type Measurement struct {
	Timestamp string
	Value     float64
	Parameter string
	SensorID  int64
}
