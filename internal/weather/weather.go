package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNoAPIKey is returned when the client has no API key configured.
var ErrNoAPIKey = errors.New("weather api key is not configured")

const maxErrorBody = 4 << 10

// StatusError is returned when the weather API answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather api status %d: %s", e.Code, e.Body)
}

// Report is the current weather for a city.
type Report struct {
	City        string
	Temperature float64
	Description string
	Humidity    int
	WindSpeed   float64
}

// Config holds the OpenWeatherMap settings.
type Config struct {
	BaseURL string
	APIKey  string
	City    string
	Units   string
	Lang    string
}

// Client fetches current weather for one configured city.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a client; a nil httpClient gets a 10s timeout default.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// City is the configured city.
func (c *Client) City() string { return c.cfg.City }

type apiResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches the current weather.
func (c *Client) Current(ctx context.Context) (*Report, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("weather url: %w", err)
	}
	q := u.Query()
	q.Set("q", c.cfg.City)
	q.Set("appid", c.cfg.APIKey)
	if c.cfg.Units != "" {
		q.Set("units", c.cfg.Units)
	}
	if c.cfg.Lang != "" {
		q.Set("lang", c.cfg.Lang)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	r := &Report{
		City:        data.Name,
		Temperature: data.Main.Temp,
		Humidity:    data.Main.Humidity,
		WindSpeed:   data.Wind.Speed,
	}
	if r.City == "" {
		r.City = c.cfg.City
	}
	if len(data.Weather) > 0 {
		r.Description = data.Weather[0].Description
	}
	return r, nil
}
