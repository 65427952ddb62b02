package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"envdashboard/services/dashboard-cli/internal/clients"
	"envdashboard/services/dashboard-cli/internal/models"
)

// ErrSuperseded is returned by SetMapSelectedStation when a newer selection
// started before this one finished; its results were discarded.
var ErrSuperseded = errors.New("store: station selection superseded")

// API is the subset of the dashboard client the store fetches through.
type API interface {
	GetStations(ctx context.Context, q clients.StationsQuery) (*clients.Envelope[[]models.Station], error)
	GetSensors(ctx context.Context, q clients.SensorsQuery) (*clients.Envelope[[]models.Sensor], error)
	GetRecords(ctx context.Context, q clients.RecordsQuery) (*clients.Envelope[[]models.DataRecord], error)
}

// Dashboard caches fetched entities and derives the views shown by the CLI.
// It is safe for concurrent use.
type Dashboard struct {
	api        API
	categories models.Categories
	logger     *zap.Logger

	mu sync.RWMutex

	treeSensors        []models.Sensor
	treeStations       []models.Station
	treeRecords        []models.DataRecord
	treeRecordsLoading bool
	treeGen            uint64
	treeAppliedGen     uint64

	stations        []models.Station
	loadingStations bool
	sensors         []models.Sensor
	loadingSensors  bool

	selectedStation    *models.Station
	loadingStationData bool
	partition          models.Partition
	selectionGen       uint64
	cancelSelection    context.CancelFunc
}

// NewDashboard returns an empty store.
func NewDashboard(api API, categories models.Categories, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dashboard{
		api:        api,
		categories: categories,
		logger:     logger.Named("dashboard-store"),
		partition:  emptyPartition(),
	}
}

func emptyPartition() models.Partition {
	return models.Partition{
		AirSensors:  []models.Sensor{},
		AirRecords:  []models.DataRecord{},
		SoilSensors: []models.Sensor{},
		SoilRecords: []models.DataRecord{},
	}
}

// payloadOrErr unwraps an envelope. A failed envelope yields an empty
// collection together with its *clients.APIError.
func payloadOrErr[T any](env *clients.Envelope[[]T]) ([]T, error) {
	if env == nil {
		return []T{}, nil
	}
	if err := env.Err(); err != nil {
		return []T{}, err
	}
	if env.Payload == nil {
		return []T{}, nil
	}
	return env.Payload, nil
}

// AddTreeNodeSelected adds sensor and its station to the tree selection and
// refetches records for every selected sensor. Selecting an already selected
// sensor does nothing.
func (d *Dashboard) AddTreeNodeSelected(ctx context.Context, sensor models.Sensor, station models.Station) error {
	d.mu.Lock()
	for _, s := range d.treeSensors {
		if s.ID == sensor.ID {
			d.mu.Unlock()
			return nil
		}
	}
	d.treeSensors = append(d.treeSensors, sensor)
	d.treeGen++
	if !containsStation(d.treeStations, station.ID) {
		d.treeStations = append(d.treeStations, station)
	}
	d.mu.Unlock()

	return d.LoadRecordsForSelectedTreeSensor(ctx)
}

// RemoveTreeNodeSelected drops sensor from the selection together with its
// loaded records. Stations no longer referenced by a selected sensor are dropped.
func (d *Dashboard) RemoveTreeNodeSelected(sensor models.Sensor) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sensors := make([]models.Sensor, 0, len(d.treeSensors))
	referenced := make(map[uint]struct{})
	for _, s := range d.treeSensors {
		if s.ID == sensor.ID {
			continue
		}
		sensors = append(sensors, s)
		referenced[s.StationID] = struct{}{}
	}

	stations := make([]models.Station, 0, len(d.treeStations))
	for _, st := range d.treeStations {
		if _, ok := referenced[st.ID]; ok {
			stations = append(stations, st)
		}
	}

	records := make([]models.DataRecord, 0, len(d.treeRecords))
	for _, r := range d.treeRecords {
		if r.SensorID != sensor.ID {
			records = append(records, r)
		}
	}

	d.treeSensors = sensors
	d.treeStations = stations
	d.treeRecords = records
	d.treeGen++
}

// LoadRecordsForSelectedTreeSensor fetches records for all selected sensors
// in one call and replaces the loaded records. On a transport failure the
// previous records are kept.
//
// Only records of sensors still selected when the response arrives are kept,
// and a response older than the last applied one is dropped.
func (d *Dashboard) LoadRecordsForSelectedTreeSensor(ctx context.Context) error {
	d.mu.Lock()
	d.treeRecordsLoading = true
	gen := d.treeGen
	ids := make([]uint, len(d.treeSensors))
	for i, s := range d.treeSensors {
		ids[i] = s.ID
	}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.treeRecordsLoading = false
		d.mu.Unlock()
	}()

	if len(ids) == 0 {
		return nil
	}

	env, err := d.api.GetRecords(ctx, clients.RecordsQuery{SensorIDs: ids})
	if err != nil {
		d.logger.Warn("load tree records failed", zap.Int("sensors", len(ids)), zap.Error(err))
		return fmt.Errorf("load tree records: %w", err)
	}
	records, apiErr := payloadOrErr(env)

	d.mu.Lock()
	if gen < d.treeAppliedGen {
		d.mu.Unlock()
		d.logger.Debug("stale tree records dropped", zap.Uint64("gen", gen))
		return nil
	}
	d.treeRecords = selectedRecords(records, d.treeSensors)
	d.treeAppliedGen = gen
	d.mu.Unlock()

	if apiErr != nil {
		d.logger.Warn("load tree records rejected", zap.Error(apiErr))
		return fmt.Errorf("load tree records: %w", apiErr)
	}
	return nil
}

// LoadStations refetches all stations.
func (d *Dashboard) LoadStations(ctx context.Context) error {
	d.setFlag(&d.loadingStations, true)
	defer d.setFlag(&d.loadingStations, false)

	env, err := d.api.GetStations(ctx, clients.StationsQuery{})
	if err != nil {
		d.logger.Warn("load stations failed", zap.Error(err))
		return fmt.Errorf("load stations: %w", err)
	}
	stations, apiErr := payloadOrErr(env)

	d.mu.Lock()
	d.stations = stations
	d.mu.Unlock()

	if apiErr != nil {
		return fmt.Errorf("load stations: %w", apiErr)
	}
	return nil
}

// LoadSensors refetches all sensors.
func (d *Dashboard) LoadSensors(ctx context.Context) error {
	d.setFlag(&d.loadingSensors, true)
	defer d.setFlag(&d.loadingSensors, false)

	env, err := d.api.GetSensors(ctx, clients.SensorsQuery{})
	if err != nil {
		d.logger.Warn("load sensors failed", zap.Error(err))
		return fmt.Errorf("load sensors: %w", err)
	}
	sensors, apiErr := payloadOrErr(env)

	d.mu.Lock()
	d.sensors = sensors
	d.mu.Unlock()

	if apiErr != nil {
		return fmt.Errorf("load sensors: %w", apiErr)
	}
	return nil
}

func (d *Dashboard) setFlag(flag *bool, v bool) {
	d.mu.Lock()
	*flag = v
	d.mu.Unlock()
}

// selectedRecords keeps the records that belong to one of sensors.
func selectedRecords(records []models.DataRecord, sensors []models.Sensor) []models.DataRecord {
	ids := make(map[uint]struct{}, len(sensors))
	for _, s := range sensors {
		ids[s.ID] = struct{}{}
	}
	out := make([]models.DataRecord, 0, len(records))
	for _, r := range records {
		if _, ok := ids[r.SensorID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func containsStation(stations []models.Station, id uint) bool {
	for _, st := range stations {
		if st.ID == id {
			return true
		}
	}
	return false
}
