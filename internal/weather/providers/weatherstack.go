package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mdowling/weathergate/internal/weather"
)

// Weatherstack error codes that signal an invalid or unrecognized location.
// Every other body error (bad credential, usage limit, ...) is an upstream
// failure, not a caller error.
var locationNotFoundCodes = map[int]bool{
	601: true,
	615: true,
}

// WeatherstackProvider implements the weather.Provider interface for
// Weatherstack's /current endpoint. It performs a single attempt per call
// behind a circuit breaker; failures surface immediately.
type WeatherstackProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherstackProvider(client *http.Client, baseURL, apiKey string) *WeatherstackProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weatherstack",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &WeatherstackProvider{
		name:    "weatherstack",
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		circuit: cb,
	}
}

func (p *WeatherstackProvider) Name() string {
	return p.name
}

func (p *WeatherstackProvider) Current(ctx context.Context, q weather.Query) (weather.Report, error) {
	if p.apiKey == "" {
		return weather.Report{}, &weather.UpstreamError{Reason: "api key is not configured"}
	}

	units := q.Units
	if units == "" {
		units = weather.UnitsFahrenheit
	}

	values := url.Values{}
	values.Set("access_key", p.apiKey)
	values.Set("query", q.Location)
	values.Set("units", string(units))

	u := fmt.Sprintf("%s/current?%s", p.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return weather.Report{}, &weather.UpstreamError{Reason: "building request", Err: sanitize(err)}
	}

	result, err := p.circuit.Execute(func() (interface{}, error) {
		resp, execErr := p.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return weather.Report{}, &weather.UpstreamError{Reason: "circuit breaker open"}
		}
		return weather.Report{}, &weather.UpstreamError{Reason: classify(err), Err: sanitize(err)}
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return weather.Report{}, &weather.UpstreamError{Reason: "unexpected result type from circuit breaker"}
	}
	defer resp.Body.Close()

	// Weatherstack HTTP errors carry no caller-actionable detail; the body is
	// deliberately discarded so provider payloads never reach our callers.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return weather.Report{}, &weather.UpstreamError{Reason: fmt.Sprintf("provider returned status %d", resp.StatusCode)}
	}

	var payload struct {
		Success *bool `json:"success"`
		Error   struct {
			Code int    `json:"code"`
			Type string `json:"type"`
			Info string `json:"info"`
		} `json:"error"`
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
		Current struct {
			Temperature         int      `json:"temperature"`
			FeelsLike           int      `json:"feelslike"`
			Humidity            int      `json:"humidity"`
			WindSpeed           int      `json:"wind_speed"`
			WindDir             string   `json:"wind_dir"`
			WeatherDescriptions []string `json:"weather_descriptions"`
			UVIndex             int      `json:"uv_index"`
			Visibility          int      `json:"visibility"`
			CloudCover          int      `json:"cloudcover"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Report{}, &weather.UpstreamError{Reason: "decoding provider response", Err: err}
	}

	// Weatherstack always answers HTTP 200; failures are signalled in the body.
	if payload.Success != nil && !*payload.Success {
		if locationNotFoundCodes[payload.Error.Code] {
			return weather.Report{}, weather.ErrLocationNotFound
		}
		return weather.Report{}, &weather.UpstreamError{
			Reason: fmt.Sprintf("provider error code %d (%s)", payload.Error.Code, payload.Error.Type),
		}
	}

	description := ""
	if len(payload.Current.WeatherDescriptions) > 0 {
		description = payload.Current.WeatherDescriptions[0]
	}

	return weather.Report{
		Location:           payload.Location.Name,
		Temperature:        payload.Current.Temperature,
		FeelsLike:          payload.Current.FeelsLike,
		Humidity:           payload.Current.Humidity,
		WindSpeed:          payload.Current.WindSpeed,
		WindDirection:      payload.Current.WindDir,
		WeatherDescription: description,
		UVIndex:            payload.Current.UVIndex,
		Visibility:         payload.Current.Visibility,
		CloudCover:         payload.Current.CloudCover,
	}, nil
}

// classify produces a short, credential-free description of a transport error.
func classify(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return "request timed out"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return "request failed"
}

// sanitize strips the request URL from transport errors. The raw *url.Error
// text embeds the full query string, access key included, and must never be
// logged or wrapped.
func sanitize(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
