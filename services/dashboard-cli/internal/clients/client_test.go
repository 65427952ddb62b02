package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"envdashboard/services/dashboard-cli/internal/models"
	"envdashboard/services/dashboard-cli/internal/session"
)

type captured struct {
	method string
	uri    string
	header http.Header
	body   []byte
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []captured
	handler  func(w http.ResponseWriter, r *http.Request)
}

func newFakeAPI(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{handler: handler}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, captured{method: r.Method, uri: r.URL.RequestURI(), header: r.Header.Clone(), body: body})
		f.mu.Unlock()
		f.handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) last(t *testing.T) captured {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatalf("no request captured")
	}
	return f.requests[len(f.requests)-1]
}

func writeEnvelope(w http.ResponseWriter, status int, env interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func ok(payload interface{}) map[string]interface{} {
	return map[string]interface{}{"code": 200, "error": "", "payload": payload, "status": "ok"}
}

func newTestClient(srv *httptest.Server, sess *session.Session) *Client {
	return NewClient(srv.URL+"/api/", srv.Client(), sess, nil)
}

func TestLoginStoresTokenAndSendsItRaw(t *testing.T) {
	api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			writeEnvelope(w, http.StatusOK, ok(map[string]string{"token": "tok-123"}))
		default:
			writeEnvelope(w, http.StatusOK, ok(map[string]interface{}{"id": 7, "username": "alice", "token": "tok-123"}))
		}
	})
	ctx := context.Background()
	storage := session.NewMemoryStorage()
	sess := session.New(storage, nil)
	c := newTestClient(srv, sess)

	if c.IsAuthorized(ctx) {
		t.Fatalf("should start unauthorized")
	}

	env, err := c.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !env.OK() || env.Payload.Token != "tok-123" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	req := api.last(t)
	if req.method != http.MethodPost || req.uri != "/api/login" {
		t.Fatalf("unexpected request %s %s", req.method, req.uri)
	}
	if got := req.header.Get("Authorization"); got != "" {
		t.Fatalf("anonymous login must not send Authorization, got %q", got)
	}
	var creds map[string]string
	if err := json.Unmarshal(req.body, &creds); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if creds["username"] != "alice" || creds["password"] != "pw" {
		t.Fatalf("unexpected credentials %v", creds)
	}

	if persisted, _ := storage.Get(ctx); persisted != "tok-123" {
		t.Fatalf("token not persisted, got %q", persisted)
	}
	if !c.IsAuthorized(ctx) {
		t.Fatalf("expected authorized after login")
	}

	acct, err := c.GetAccount(ctx)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acct.Payload.Username != "alice" {
		t.Fatalf("unexpected account %+v", acct.Payload)
	}
	req = api.last(t)
	if got := req.header.Get("Authorization"); got != "tok-123" {
		t.Fatalf("expected raw token header, got %q", got)
	}
	if req.header.Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestLoginFailureKeepsSessionEmpty(t *testing.T) {
	_, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, map[string]interface{}{"code": 401, "error": "bad credentials", "status": "error"})
	})
	ctx := context.Background()
	c := newTestClient(srv, session.New(nil, nil))

	env, err := c.Login(ctx, "alice", "nope")
	if err != nil {
		t.Fatalf("server error envelope should not be a Go error: %v", err)
	}
	if env.OK() || env.Error != "bad credentials" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	var apiErr *APIError
	if !errors.As(env.Err(), &apiErr) || apiErr.Code != 401 {
		t.Fatalf("expected APIError 401, got %v", env.Err())
	}
	if c.IsAuthorized(ctx) {
		t.Fatalf("failed login must not authorize")
	}
}

func TestHTTPFailureWithoutEnvelopeIsError(t *testing.T) {
	_, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c := newTestClient(srv, session.New(nil, nil))

	env, err := c.GetStations(context.Background(), StationsQuery{})
	if env != nil {
		t.Fatalf("expected nil envelope")
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected HTTPError 502, got %v", err)
	}
}

func TestTransportFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, http.DefaultClient, session.New(nil, nil), nil)
	if _, err := c.GetSensors(context.Background(), SensorsQuery{}); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestLogoutClearsTokenWithoutServerCall(t *testing.T) {
	api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL)
	})
	ctx := context.Background()
	storage := session.NewMemoryStorage()
	sess := session.New(storage, nil)
	_ = sess.SetToken(ctx, "abc")
	c := newTestClient(srv, sess)

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if c.IsAuthorized(ctx) {
		t.Fatalf("expected unauthorized after logout")
	}
	if _, err := storage.Get(ctx); !errors.Is(err, session.ErrNoToken) {
		t.Fatalf("expected storage cleared, got %v", err)
	}
	if len(api.requests) != 0 {
		t.Fatalf("logout must not call the server")
	}
}

func TestRegenerateTokenAdoptsNewToken(t *testing.T) {
	api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, ok(map[string]interface{}{"id": 1, "username": "alice", "token": "fresh"}))
	})
	ctx := context.Background()
	sess := session.New(nil, nil)
	_ = sess.SetToken(ctx, "stale")
	c := newTestClient(srv, sess)

	if _, err := c.RegenerateToken(ctx); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	req := api.last(t)
	if req.uri != "/api/account/regenrateToken" || req.header.Get("Authorization") != "stale" {
		t.Fatalf("unexpected request %s auth=%q", req.uri, req.header.Get("Authorization"))
	}
	if sess.Token(ctx) != "fresh" {
		t.Fatalf("expected fresh token, got %q", sess.Token(ctx))
	}
}

func TestChangePasswordBody(t *testing.T) {
	api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, ok(map[string]interface{}{"id": 1}))
	})
	c := newTestClient(srv, session.New(nil, nil))
	if _, err := c.ChangePassword(context.Background(), "s3cret"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	req := api.last(t)
	if req.uri != "/api/account/changePassword" || !strings.Contains(string(req.body), `"new_password":"s3cret"`) {
		t.Fatalf("unexpected request %s %s", req.uri, req.body)
	}
}

func TestGetStationsReadsTotalHeader(t *testing.T) {
	api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Total-Count", "42")
		writeEnvelope(w, http.StatusOK, ok([]map[string]interface{}{{"id": 1, "name": "Ridge", "lat": 1.5}}))
	})
	c := newTestClient(srv, session.New(nil, nil))

	env, err := c.GetStations(context.Background(), StationsQuery{Offset: 10, Limit: 5})
	if err != nil {
		t.Fatalf("get stations: %v", err)
	}
	if env.Total == nil || *env.Total != 42 {
		t.Fatalf("expected total 42, got %v", env.Total)
	}
	if len(env.Payload) != 1 || env.Payload[0].Name != "Ridge" || *env.Payload[0].Lat != 1.5 {
		t.Fatalf("unexpected payload %+v", env.Payload)
	}
	if got := api.last(t).uri; got != "/api/stations?offset=10&limit=5" {
		t.Fatalf("unexpected uri %q", got)
	}
}

func TestTotalAbsentIsNil(t *testing.T) {
	_, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, ok([]interface{}{}))
	})
	c := newTestClient(srv, session.New(nil, nil))
	env, err := c.GetSensors(context.Background(), SensorsQuery{})
	if err != nil {
		t.Fatalf("get sensors: %v", err)
	}
	if env.Total != nil {
		t.Fatalf("expected nil total, got %d", *env.Total)
	}
}

func TestQueryStrings(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 9, 0, 0, 123_000_000, time.FixedZone("CET", 3600))

	cases := []struct {
		name string
		call func(c *Client) error
		want string
	}{
		{
			name: "stations without params",
			call: func(c *Client) error { _, err := c.GetStations(context.Background(), StationsQuery{}); return err },
			want: "/api/stations",
		},
		{
			name: "sensors by station",
			call: func(c *Client) error {
				_, err := c.GetSensors(context.Background(), SensorsQuery{StationID: 3, Limit: 20})
				return err
			},
			want: "/api/sensors?limit=20&station_id=3",
		},
		{
			name: "records by sensor ids",
			call: func(c *Client) error {
				_, err := c.GetRecords(context.Background(), RecordsQuery{SensorIDs: []uint{1, 2, 3}})
				return err
			},
			want: "/api/records?sensor_ids=1%2C2%2C3",
		},
		{
			name: "records with dates",
			call: func(c *Client) error {
				_, err := c.GetRecords(context.Background(), RecordsQuery{StartTime: start, EndTime: end, Offset: 5})
				return err
			},
			want: "/api/records?start_time=2024-03-01T08%3A30%3A00.000Z&end_time=2024-03-02T08%3A00%3A00.123Z&offset=5",
		},
		{
			name: "records with created-at bounds",
			call: func(c *Client) error {
				_, err := c.GetRecords(context.Background(), RecordsQuery{BeforeCreatedAt: start, AfterCreatedAt: start})
				return err
			},
			want: "/api/records?before_created_at=2024-03-01T08%3A30%3A00.000Z&after_created_at=2024-03-01T08%3A30%3A00.000Z",
		},
		{
			name: "records empty ids omitted",
			call: func(c *Client) error {
				_, err := c.GetRecords(context.Background(), RecordsQuery{SensorIDs: []uint{}})
				return err
			},
			want: "/api/records",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, http.StatusOK, ok([]interface{}{}))
			})
			if err := tc.call(newTestClient(srv, session.New(nil, nil))); err != nil {
				t.Fatalf("call: %v", err)
			}
			if got := api.last(t).uri; got != tc.want {
				t.Fatalf("uri = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUpsertSensorSendsJSON(t *testing.T) {
	api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, ok(map[string]interface{}{"id": 9, "station_id": 2, "name": "CO2"}))
	})
	c := newTestClient(srv, session.New(nil, nil))

	env, err := c.UpsertSensor(context.Background(), models.Sensor{StationID: 2, Name: "CO2", Position: models.PositionDown})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if env.Payload.ID != 9 {
		t.Fatalf("unexpected payload %+v", env.Payload)
	}
	req := api.last(t)
	if req.header.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", req.header.Get("Content-Type"))
	}
	body := string(req.body)
	if !strings.Contains(body, `"station_id":2`) || !strings.Contains(body, `"position":"down"`) || strings.Contains(body, `"id"`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestUpsertStation(t *testing.T) {
	api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, ok(map[string]interface{}{"id": 4, "name": "Ridge"}))
	})
	c := newTestClient(srv, session.New(nil, nil))
	if _, err := c.UpsertStation(context.Background(), UpsertStationParams{Name: "Ridge", Lat: 0, Lng: 12.5, Altitude: 300}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	body := string(api.last(t).body)
	if !strings.Contains(body, `"lat":0`) || !strings.Contains(body, `"altitude":300`) {
		t.Fatalf("required fields must always be sent: %s", body)
	}
}

func TestDownloadTemplateReturnsRawText(t *testing.T) {
	_, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/records/template" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "sensor_id,value,time\n")
	})
	c := newTestClient(srv, session.New(nil, nil))
	got, err := c.DownloadTemplate(context.Background())
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if got != "sensor_id,value,time\n" {
		t.Fatalf("unexpected template %q", got)
	}
}

func TestUploadCSVRecordsMultipart(t *testing.T) {
	_, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeEnvelope(w, http.StatusBadRequest, map[string]interface{}{"code": 400, "error": err.Error()})
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		writeEnvelope(w, http.StatusOK, ok(map[string]interface{}{"name": header.Filename, "size": len(data)}))
	})
	c := newTestClient(srv, session.New(nil, nil))

	env, err := c.UploadCSVRecords(context.Background(), "records.csv", strings.NewReader("1,2.5,2024-01-01\n"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !env.OK() {
		t.Fatalf("unexpected envelope %+v", env)
	}
	var payload struct {
		Name string `json:"name"`
		Size int    `json:"size"`
	}
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Name != "records.csv" || payload.Size != 17 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestAbsoluteURL(t *testing.T) {
	b := NewBaseClient("http://host/api/", http.DefaultClient, nil, nil)
	if got := b.AbsoluteURL("/stations"); got != "http://host/api/stations" {
		t.Fatalf("got %q", got)
	}
	if got := b.AbsoluteURL("https://elsewhere/x"); got != "https://elsewhere/x" {
		t.Fatalf("got %q", got)
	}
}
