package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"envdashboard/services/dashboard-cli/internal/clients"
	"envdashboard/services/dashboard-cli/internal/models"
)

// SetMapSelectedStation selects station on the map and loads its air and
// soil views. Reselecting the current station is a no-op. A nil station or
// one without an ID clears the views without fetching.
//
// A newer call cancels an older one still in flight; the older call then
// returns ErrSuperseded and leaves the views alone.
func (d *Dashboard) SetMapSelectedStation(ctx context.Context, station *models.Station) error {
	d.mu.Lock()
	if d.selectedStation != nil && d.selectedStation.ID != 0 && station != nil && d.selectedStation.ID == station.ID {
		d.mu.Unlock()
		return nil
	}

	if d.cancelSelection != nil {
		d.cancelSelection()
	}
	ctx, cancel := context.WithCancel(ctx)
	d.cancelSelection = cancel
	d.selectionGen++
	gen := d.selectionGen

	d.selectedStation = cloneStation(station)
	d.partition = emptyPartition()
	d.loadingStationData = true
	d.mu.Unlock()

	defer cancel()
	defer func() {
		d.mu.Lock()
		if d.selectionGen == gen {
			d.loadingStationData = false
			d.cancelSelection = nil
		}
		d.mu.Unlock()
	}()

	if station == nil || station.ID == 0 {
		return nil
	}

	d.logger.Debug("select station", zap.Uint("station_id", station.ID), zap.String("name", station.Name))

	sensorsEnv, err := d.api.GetSensors(ctx, clients.SensorsQuery{StationID: station.ID})
	if err != nil {
		return d.selectionFailed(gen, "load station sensors", err)
	}
	sensors, apiErr := payloadOrErr(sensorsEnv)
	if apiErr != nil {
		return d.selectionFailed(gen, "load station sensors", apiErr)
	}
	if len(sensors) == 0 {
		return d.stale(gen)
	}

	airIDs, soilIDs := d.categories.SensorIDs(sensors)
	ids := append(append([]uint{}, airIDs...), soilIDs...)

	// A rejected records call still sorts the sensors; only the record
	// views stay empty.
	var records []models.DataRecord
	var recordsErr error
	if len(ids) > 0 {
		recordsEnv, err := d.api.GetRecords(ctx, clients.RecordsQuery{SensorIDs: ids})
		if err != nil {
			return d.selectionFailed(gen, "load station records", err)
		}
		records, recordsErr = payloadOrErr(recordsEnv)
	}

	partition := d.categories.Split(sensors, records)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selectionGen != gen {
		return ErrSuperseded
	}
	d.partition = partition
	if recordsErr != nil {
		d.logger.Warn("load station records failed", zap.Uint("station_id", station.ID), zap.Error(recordsErr))
		return fmt.Errorf("load station records: %w", recordsErr)
	}
	d.logger.Debug("station records loaded", zap.Uint("station_id", station.ID), zap.Int("records", len(records)))
	return nil
}

func (d *Dashboard) stale(gen uint64) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.selectionGen != gen {
		return ErrSuperseded
	}
	return nil
}

func (d *Dashboard) selectionFailed(gen uint64, op string, err error) error {
	if stale := d.stale(gen); stale != nil {
		return stale
	}
	d.logger.Warn(op+" failed", zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func cloneStation(st *models.Station) *models.Station {
	if st == nil {
		return nil
	}
	c := *st
	return &c
}
