// Package meteocat implements the XEMA observation source on top of the
// public Meteocat REST API.
package meteocat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/meteocat-tools/xema-aggregation/internal/xema"
)

const (
	// DefaultBaseURL is the production endpoint of the XEMA API.
	DefaultBaseURL = "https://api.meteocat.gencat.cat/xema/v1"

	// stationPageLimit is the page size requested when listing stations;
	// the network has a few hundred, so one page covers everything.
	stationPageLimit = 5000
)

// Config bundles everything a Client needs for one run. There is no
// process-global session: the API key lives here and nowhere else.
type Config struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Backoff BackoffConfig
}

// Client talks to the Meteocat XEMA API. It satisfies xema.ObservationSource.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
	log     *slog.Logger
}

// NewClient creates a Client from cfg, applying defaults for anything unset.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Backoff.MaxRetries == 0 {
		cfg.Backoff = BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		}
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "meteocat",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    cfg.Client,
		backoff: cfg.Backoff,
		circuit: cb,
		log:     log,
	}
}

// stationPayload mirrors the station metadata document of the API.
type stationPayload struct {
	Codi     string `json:"codi"`
	Nom      string `json:"nom"`
	Municipi struct {
		Nom string `json:"nom"`
	} `json:"municipi"`
	Comarca struct {
		Nom string `json:"nom"`
	} `json:"comarca"`
	Coordenades struct {
		Latitud  float64 `json:"latitud"`
		Longitud float64 `json:"longitud"`
	} `json:"coordenades"`
	Altitud float64 `json:"altitud"`
	Estats  []struct {
		Nom string `json:"nom"`
	} `json:"estats"`
}

// ListStations returns the stations of the given network, optionally
// filtered by status (API values, e.g. "operativa").
func (c *Client) ListStations(ctx context.Context, network, status string) ([]xema.Station, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(stationPageLimit))
	if status != "" {
		params.Set("estat", status)
	}
	if network != "" {
		params.Set("xarxa", network)
	}

	var payload []stationPayload
	if err := c.getJSON(ctx, "/estacions/metadades", params, &payload); err != nil {
		return nil, err
	}

	stations := make([]xema.Station, 0, len(payload))
	for _, p := range payload {
		if p.Codi == "" {
			continue
		}
		stations = append(stations, xema.Station{
			Code:         p.Codi,
			Name:         p.Nom,
			Municipality: p.Municipi.Nom,
			County:       p.Comarca.Nom,
			Coordinates: xema.Coordinates{
				Lat: p.Coordenades.Latitud,
				Lon: p.Coordenades.Longitud,
			},
			Elevation: p.Altitud,
			Status:    mapStatus(p.Estats),
		})
	}
	c.log.Info("loaded station metadata", "count", len(stations))
	return stations, nil
}

func mapStatus(estats []struct {
	Nom string `json:"nom"`
}) xema.StationStatus {
	if len(estats) == 0 {
		return xema.StatusUnknown
	}
	// The API lists status periods chronologically; the last one is current.
	switch s := strings.ToLower(estats[len(estats)-1].Nom); {
	case strings.Contains(s, "operativa"):
		return xema.StatusOperational
	case strings.Contains(s, "desmantellada"), strings.Contains(s, "tancada"):
		return xema.StatusClosed
	default:
		return xema.StatusUnknown
	}
}

// dailyStatsPayload mirrors the daily statistics document for one variable.
// The variable code field is ignored: it echoes the request and its JSON
// type differs between numeric and named variables.
type dailyStatsPayload struct {
	Estadistics []struct {
		Data  string   `json:"data"`
		Valor *float64 `json:"valor"`
	} `json:"estadistics"`
}

// FetchDailyObservations collects the recorded daily values for one station
// and variable over [start, end]. The API serves daily statistics one month
// at a time, so the range is walked month by month; days the station did not
// report are simply absent from the result.
func (c *Client) FetchDailyObservations(ctx context.Context, stationCode, variableCode string, start, end xema.Date) (map[xema.Date]float64, error) {
	if start.After(end.Time) {
		return nil, fmt.Errorf("%w: %s > %s", xema.ErrInvalidRange, start, end)
	}

	readings := make(map[xema.Date]float64)
	for _, ym := range monthRange(start, end) {
		params := url.Values{}
		params.Set("codiEstacio", stationCode)
		params.Set("any", strconv.Itoa(ym.year))
		params.Set("mes", fmt.Sprintf("%02d", ym.month))

		path := "/variables/estadistics/diaris/" + url.PathEscape(variableCode)

		var raw json.RawMessage
		if err := c.getJSON(ctx, path, params, &raw); err != nil {
			return nil, err
		}
		payload, err := decodeDailyStats(raw)
		if err != nil {
			return nil, err
		}

		for _, entry := range payload.Estadistics {
			if entry.Valor == nil || len(entry.Data) < 10 {
				continue
			}
			day, err := xema.ParseDate(entry.Data[:10])
			if err != nil {
				continue
			}
			if day.Before(start.Time) || day.After(end.Time) {
				continue
			}
			readings[day] = *entry.Valor
		}
		c.log.Debug("fetched daily statistics",
			"station", stationCode, "variable", variableCode,
			"year", ym.year, "month", int(ym.month))
	}
	return readings, nil
}

// decodeDailyStats accepts both document shapes the API is known to serve:
// a single statistics object, or a one-element list wrapping it.
func decodeDailyStats(raw json.RawMessage) (dailyStatsPayload, error) {
	var payload dailyStatsPayload
	if err := json.Unmarshal(raw, &payload); err == nil {
		return payload, nil
	}
	var list []dailyStatsPayload
	if err := json.Unmarshal(raw, &list); err != nil {
		return dailyStatsPayload{}, fmt.Errorf("%w: unrecognized daily statistics payload", ErrFetch)
	}
	if len(list) == 0 {
		return dailyStatsPayload{}, nil
	}
	return list[0], nil
}

type yearMonth struct {
	year  int
	month time.Month
}

// monthRange lists the (year, month) pairs between start and end inclusive.
func monthRange(start, end xema.Date) []yearMonth {
	var out []yearMonth
	y, m := start.Year(), start.Month()
	for y < end.Year() || (y == end.Year() && m <= end.Month()) {
		out = append(out, yearMonth{year: y, month: m})
		m++
		if m > time.December {
			m = time.January
			y++
		}
	}
	return out
}

// getJSON performs an authenticated GET with resilience and decodes the
// response body into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	buildRequest := func() (*http.Request, error) {
		u := c.baseURL + path
		if len(params) > 0 {
			u += "?" + params.Encode()
		}
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-api-key", c.apiKey)
		return req, nil
	}

	resp, err := doWithResilience(ctx, c.http, c.backoff, c.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrFetch, path, err)
	}
	return nil
}
