package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"envdashboard/services/dashboard-cli/internal/models"
)

// uploadField is the multipart form field carrying the CSV file.
const uploadField = "file"

// RecordsQuery filters data records. Empty slices, zero times and zero ints are omitted.
type RecordsQuery struct {
	SensorIDs       []uint
	StartTime       time.Time
	EndTime         time.Time
	BeforeCreatedAt time.Time
	AfterCreatedAt  time.Time
	Offset          int
	Limit           int
}

func (q RecordsQuery) params() []param {
	var params []param
	if len(q.SensorIDs) > 0 {
		params = append(params, param{"sensor_ids", joinIDs(q.SensorIDs)})
	}
	for _, f := range []struct {
		key string
		t   time.Time
	}{
		{"start_time", q.StartTime},
		{"end_time", q.EndTime},
		{"before_created_at", q.BeforeCreatedAt},
		{"after_created_at", q.AfterCreatedAt},
	} {
		if !f.t.IsZero() {
			params = append(params, param{f.key, formatTime(f.t)})
		}
	}
	return paging(params, q.Offset, q.Limit)
}

// GetRecords lists data records matching q.
func (c *Client) GetRecords(ctx context.Context, q RecordsQuery) (*Envelope[[]models.DataRecord], error) {
	path := withQuery("/records", q.params())
	return doEnvelope[[]models.DataRecord](ctx, c.base, request{method: http.MethodGet, path: path})
}

// DownloadTemplate returns the CSV upload template as raw text.
func (c *Client) DownloadTemplate(ctx context.Context) (string, error) {
	resp, err := c.base.do(ctx, request{method: http.MethodGet, path: "/records/template"})
	if err != nil {
		return "", err
	}
	if resp.status < 200 || resp.status >= 300 {
		return "", &HTTPError{StatusCode: resp.status, Body: string(resp.body)}
	}
	return string(resp.body), nil
}

// UploadCSVRecords posts a CSV file as multipart form data. The payload of
// the returned envelope is left undecoded.
func (c *Client) UploadCSVRecords(ctx context.Context, filename string, r io.Reader) (*Envelope[json.RawMessage], error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(uploadField, filename)
	if err != nil {
		return nil, fmt.Errorf("clients: create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("clients: copy csv: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("clients: close form: %w", err)
	}
	return doEnvelope[json.RawMessage](ctx, c.base, request{
		method:      http.MethodPost,
		path:        "/records/upload",
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	})
}
