package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Backend API paths.
const (
	listDevicesPath  = "/api/v1/Device/GetAllDevices"
	updateDevicePath = "/api/v1/Device/UpdateDevice"
)

// DefaultPageSize is the device list page requested.
const DefaultPageSize = 10

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 1024

var (
	// ErrBackend indicates a non-success response from the backend.
	ErrBackend = errors.New("relay: backend request failed")

	// ErrNoDevices indicates the backend returned an empty device list.
	ErrNoDevices = errors.New("relay: no devices found")
)

// Device is a backend device record.
type Device struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status bool   `json:"status"`
	RoomID int    `json:"roomId"`
}

// UpdateDevice is the body of a device update.
type UpdateDevice struct {
	ID     int    `json:"Id"`
	Name   string `json:"Name"`
	Status bool   `json:"Status"`
}

type deviceListResponse struct {
	PageNumber int      `json:"pageNumber"`
	PageSize   int      `json:"pageSize"`
	Succeeded  bool     `json:"succeeded"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Data       []Device `json:"data"`
}

// DeviceClient is the backend API the relay needs.
type DeviceClient interface {
	ListDevices(ctx context.Context) ([]Device, error)
	UpdateDevice(ctx context.Context, cmd UpdateDevice) error
}

// Backend is an HTTP client for the building backend.
type Backend struct {
	// BaseURL is the scheme and host of the API, e.g. https://backend.example.com.
	BaseURL string

	// HTTPClient is used for requests. Nil uses http.DefaultClient.
	HTTPClient *http.Client

	// PageSize is the device page size. Zero uses DefaultPageSize.
	PageSize int
}

// ListDevices returns the first page of devices.
func (b *Backend) ListDevices(ctx context.Context) ([]Device, error) {
	pageSize := b.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	q := url.Values{}
	q.Set("PageNumber", "1")
	q.Set("PageSize", strconv.Itoa(pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint(listDevicesPath, q), nil)
	if err != nil {
		return nil, fmt.Errorf("relay: build list request: %w", err)
	}
	resp, err := b.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay: list devices: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	var list deviceListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("relay: decode device list: %w", err)
	}
	if len(list.Data) == 0 {
		return nil, ErrNoDevices
	}
	return list.Data, nil
}

// UpdateDevice stores cmd for device cmd.ID.
func (b *Backend) UpdateDevice(ctx context.Context, cmd UpdateDevice) error {
	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("relay: encode update: %w", err)
	}
	q := url.Values{}
	q.Set("id", strconv.Itoa(cmd.ID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.endpoint(updateDevicePath, q), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("relay: build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := b.client().Do(req)
	if err != nil {
		return fmt.Errorf("relay: update device %d: %w", cmd.ID, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("update device %d: %w", cmd.ID, err)
	}
	return nil
}

func (b *Backend) endpoint(path string, q url.Values) string {
	return strings.TrimSuffix(b.BaseURL, "/") + path + "?" + q.Encode()
}

func (b *Backend) client() *http.Client {
	if b.HTTPClient != nil {
		return b.HTTPClient
	}
	return http.DefaultClient
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%w: status %d: %s", ErrBackend, resp.StatusCode, strings.TrimSpace(string(msg)))
}

// LatestOfType returns the device of type typ with the highest Id.
func LatestOfType(devices []Device, typ string) (Device, bool) {
	var latest Device
	found := false
	for _, d := range devices {
		if d.Type != typ {
			continue
		}
		if !found || d.ID >= latest.ID {
			latest = d
			found = true
		}
	}
	return latest, found
}
