package clients

import (
	"context"
	"net/http"
	"strconv"

	"envdashboard/services/dashboard-cli/internal/models"
)

// SensorsQuery filters sensors. Zero values are omitted.
type SensorsQuery struct {
	StationID uint
	Offset    int
	Limit     int
}

// GetSensors lists sensors, optionally for one station.
func (c *Client) GetSensors(ctx context.Context, q SensorsQuery) (*Envelope[[]models.Sensor], error) {
	params := paging(nil, q.Offset, q.Limit)
	if q.StationID != 0 {
		params = append(params, param{"station_id", strconv.FormatUint(uint64(q.StationID), 10)})
	}
	path := withQuery("/sensors", params)
	return doEnvelope[[]models.Sensor](ctx, c.base, request{method: http.MethodGet, path: path})
}

// UpsertSensor creates or updates a sensor.
func (c *Client) UpsertSensor(ctx context.Context, s models.Sensor) (*Envelope[models.Sensor], error) {
	body, err := jsonBody(s)
	if err != nil {
		return nil, err
	}
	return doEnvelope[models.Sensor](ctx, c.base, request{method: http.MethodPost, path: "/sensors", body: body})
}
