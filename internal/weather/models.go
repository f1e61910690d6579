package weather

// Units selects the measurement system forwarded to the upstream provider.
type Units string

const (
	UnitsFahrenheit Units = "f"
	UnitsMetric     Units = "m"
	UnitsScientific Units = "s"
)

// Valid reports whether u is one of the accepted unit systems.
func (u Units) Valid() bool {
	switch u {
	case UnitsFahrenheit, UnitsMetric, UnitsScientific:
		return true
	}
	return false
}

// Query identifies a single weather lookup. It lives for one request and is
// never persisted.
type Query struct {
	Location string
	Units    Units
}

// Report is the flat normalized weather record returned by the proxy
// regardless of the upstream provider's native format. It is built fresh per
// call and never mutated after construction.
type Report struct {
	Location           string `json:"location"`
	Temperature        int    `json:"temperature"`
	FeelsLike          int    `json:"feels_like"`
	Humidity           int    `json:"humidity"`
	WindSpeed          int    `json:"wind_speed"`
	WindDirection      string `json:"wind_direction"`
	WeatherDescription string `json:"weather_description"`
	UVIndex            int    `json:"uv_index"`
	Visibility         int    `json:"visibility"`
	CloudCover         int    `json:"cloud_cover"`
}
