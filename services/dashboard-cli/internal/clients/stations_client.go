package clients

import (
	"context"
	"net/http"

	"envdashboard/services/dashboard-cli/internal/models"
)

// StationsQuery pages through stations. Zero values are omitted.
type StationsQuery struct {
	Offset int
	Limit  int
}

// UpsertStationParams describes a station to create or update.
type UpsertStationParams struct {
	ID       uint    `json:"id,omitempty"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Altitude float64 `json:"altitude"`
}

// GetStations lists stations.
func (c *Client) GetStations(ctx context.Context, q StationsQuery) (*Envelope[[]models.Station], error) {
	path := withQuery("/stations", paging(nil, q.Offset, q.Limit))
	return doEnvelope[[]models.Station](ctx, c.base, request{method: http.MethodGet, path: path})
}

// UpsertStation creates or updates a station; the server decides which.
func (c *Client) UpsertStation(ctx context.Context, p UpsertStationParams) (*Envelope[models.Station], error) {
	body, err := jsonBody(p)
	if err != nil {
		return nil, err
	}
	return doEnvelope[models.Station](ctx, c.base, request{method: http.MethodPost, path: "/stations", body: body})
}
