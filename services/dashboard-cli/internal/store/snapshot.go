package store

import (
	"envdashboard/services/dashboard-cli/internal/models"
)

// Snapshot is a point-in-time copy of the dashboard state.
type Snapshot struct {
	TreeSensorsSelected     []models.Sensor     `json:"tree_sensors_selected" yaml:"tree_sensors_selected"`
	TreeStationsSelected    []models.Station    `json:"tree_stations_selected" yaml:"tree_stations_selected"`
	TreeSensorRecordsLoaded []models.DataRecord `json:"tree_sensor_records_loaded" yaml:"tree_sensor_records_loaded"`
	TreeRecordsLoading      bool                `json:"tree_records_loading" yaml:"tree_records_loading"`
	TreeSensorSelectedTags  []models.SensorTag  `json:"tree_sensor_selected_tags" yaml:"tree_sensor_selected_tags"`

	Stations        []models.Station `json:"stations" yaml:"stations"`
	LoadingStations bool             `json:"loading_stations" yaml:"loading_stations"`
	Sensors         []models.Sensor  `json:"sensors" yaml:"sensors"`
	LoadingSensors  bool             `json:"loading_sensors" yaml:"loading_sensors"`

	SelectedStation       *models.Station  `json:"selected_station,omitempty" yaml:"selected_station,omitempty"`
	LoadingDataForStation bool             `json:"loading_data_for_station" yaml:"loading_data_for_station"`
	StationData           models.Partition `json:"station_data" yaml:"station_data"`
}

// Snapshot copies the current state, including derived tag labels.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return Snapshot{
		TreeSensorsSelected:     clone(d.treeSensors),
		TreeStationsSelected:    clone(d.treeStations),
		TreeSensorRecordsLoaded: clone(d.treeRecords),
		TreeRecordsLoading:      d.treeRecordsLoading,
		TreeSensorSelectedTags:  models.BuildSensorTags(d.treeSensors, d.treeStations),
		Stations:                clone(d.stations),
		LoadingStations:         d.loadingStations,
		Sensors:                 clone(d.sensors),
		LoadingSensors:          d.loadingSensors,
		SelectedStation:         cloneStation(d.selectedStation),
		LoadingDataForStation:   d.loadingStationData,
		StationData: models.Partition{
			AirSensors:  clone(d.partition.AirSensors),
			AirRecords:  clone(d.partition.AirRecords),
			SoilSensors: clone(d.partition.SoilSensors),
			SoilRecords: clone(d.partition.SoilRecords),
		},
	}
}

// TreeSensorTags recomputes the labels of the selected tree sensors.
func (d *Dashboard) TreeSensorTags() []models.SensorTag {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return models.BuildSensorTags(d.treeSensors, d.treeStations)
}

// TreeSensorsSelected returns the selected tree sensors.
func (d *Dashboard) TreeSensorsSelected() []models.Sensor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return clone(d.treeSensors)
}

// TreeStationsSelected returns the stations owning the selected sensors.
func (d *Dashboard) TreeStationsSelected() []models.Station {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return clone(d.treeStations)
}

// TreeSensorRecordsLoaded returns the records loaded for the tree selection.
func (d *Dashboard) TreeSensorRecordsLoaded() []models.DataRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return clone(d.treeRecords)
}

// Stations returns the loaded stations.
func (d *Dashboard) Stations() []models.Station {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return clone(d.stations)
}

// Sensors returns the loaded sensors.
func (d *Dashboard) Sensors() []models.Sensor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return clone(d.sensors)
}

// SelectedStation returns the map selection, nil when none.
func (d *Dashboard) SelectedStation() *models.Station {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneStation(d.selectedStation)
}

// StationData returns the air/soil views of the selected station.
func (d *Dashboard) StationData() models.Partition {
	return d.Snapshot().StationData
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
