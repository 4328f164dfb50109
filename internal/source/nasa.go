package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/alikhn/weatherwindow/internal/metrics"
	"github.com/alikhn/weatherwindow/internal/models"
)

const (
	powerBaseURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

	// POWER's fill value for a missing reading.
	powerFillValue = -999
)

// POWER parameters requested per day: temperature at 2m (°C), corrected
// precipitation (mm/day), wind speed at 2m (m/s), relative humidity (%).
var powerParameters = []string{"T2M", "PRECTOTCORR", "WS2M", "RH2M"}

// NASAPowerClient fetches daily point data from the NASA POWER API.
type NASAPowerClient struct {
	baseURL string
	client  *http.Client
}

func NewNASAPowerClient() *NASAPowerClient {
	return &NASAPowerClient{
		baseURL: powerBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewNASAPowerClientWithBase overrides the endpoint, for tests.
func NewNASAPowerClientWithBase(base string) *NASAPowerClient {
	c := NewNASAPowerClient()
	c.baseURL = base
	return c
}

func (n *NASAPowerClient) Name() string {
	return "NASA POWER API - Surface meteorology"
}

type powerResponse struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}

// DailyRange fetches observations for the inclusive range. Transient HTTP
// failures are retried with exponential backoff; client errors are permanent.
// Wind speeds come back in m/s and are tagged as such, never converted here.
func (n *NASAPowerClient) DailyRange(ctx context.Context, lat, lon float64, from, to time.Time) ([]models.DailyObservation, error) {
	q := url.Values{}
	q.Set("parameters", strings.Join(powerParameters, ","))
	q.Set("community", "AG")
	q.Set("latitude", fmt.Sprintf("%g", lat))
	q.Set("longitude", fmt.Sprintf("%g", lon))
	q.Set("start", from.Format("20060102"))
	q.Set("end", to.Format("20060102"))
	q.Set("format", "JSON")
	reqURL := n.baseURL + "?" + q.Encode()

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}

		started := time.Now()
		resp, err := n.client.Do(req)
		metrics.NASAAPILatency.Observe(time.Since(started).Seconds())
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return fmt.Errorf("fetch daily: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			metrics.NASAAPICallsTotal.WithLabelValues("retryable").Inc()
			return fmt.Errorf("fetch daily: status %d", resp.StatusCode)
		default:
			metrics.NASAAPICallsTotal.WithLabelValues("error").Inc()
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("fetch daily: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		metrics.NASAAPICallsTotal.WithLabelValues("ok").Inc()
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	var data powerResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return mapPowerResponse(data)
}

// mapPowerResponse flattens the per-parameter date maps into one observation
// per day, keyed off T2M's dates. Fill values become nil readings.
func mapPowerResponse(data powerResponse) ([]models.DailyObservation, error) {
	params := data.Properties.Parameter
	temps, ok := params["T2M"]
	if !ok {
		return nil, fmt.Errorf("response missing T2M parameter")
	}

	reading := func(param, date string) *float64 {
		values, ok := params[param]
		if !ok {
			return nil
		}
		v, ok := values[date]
		if !ok || v == powerFillValue {
			return nil
		}
		return &v
	}

	var out []models.DailyObservation
	for date := range temps {
		day, err := time.Parse("20060102", date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		out = append(out, models.DailyObservation{
			Date:          day,
			Temperature:   reading("T2M", date),
			Precipitation: reading("PRECTOTCORR", date),
			WindSpeed:     reading("WS2M", date),
			WindUnit:      models.WindMS,
			Humidity:      reading("RH2M", date),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
