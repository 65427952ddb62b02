package app

import (
	"context"
	"fmt"

	"envdashboard/services/dashboard-cli/internal/models"
	"envdashboard/services/dashboard-cli/internal/render"
	"envdashboard/services/dashboard-cli/internal/router"
)

// cmdStation renders the map view of one station: its air and soil sensors
// with their records.
func (a *App) cmdStation(ctx context.Context, p *render.Printer, args []string) error {
	verb, rest, err := subcommand("station", args, "show")
	if err != nil {
		return err
	}
	fs := a.subFlags("station " + verb)
	if err := parseFlags(fs, rest); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: station show <id>", ErrUsage)
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := a.enter(ctx, router.Home); err != nil {
		return err
	}

	if err := a.dashboard.LoadStations(ctx); err != nil {
		return fmt.Errorf("load stations: %w", err)
	}
	station := findStation(a.dashboard.Stations(), id)
	if err := a.dashboard.SetMapSelectedStation(ctx, &station); err != nil {
		return fmt.Errorf("load station %d: %w", id, err)
	}

	data := a.dashboard.StationData()
	if p.Structured() {
		return p.Value(struct {
			Station *models.Station  `json:"station" yaml:"station"`
			Data    models.Partition `json:"data" yaml:"data"`
		}{a.dashboard.SelectedStation(), data})
	}

	title := station.Name
	if title == "" {
		title = fmt.Sprintf("station %d", id)
	}
	p.Section(title)
	p.Section("Air sensors")
	if err := p.Sensors(data.AirSensors, nil); err != nil {
		return err
	}
	if err := p.Records(data.AirRecords, nil); err != nil {
		return err
	}
	p.Section("Soil sensors")
	if err := p.Sensors(data.SoilSensors, nil); err != nil {
		return err
	}
	return p.Records(data.SoilRecords, nil)
}

// cmdTree selects sensors the way the station tree does and shows the
// resulting tags and records.
func (a *App) cmdTree(ctx context.Context, p *render.Printer, args []string) error {
	fs := a.subFlags("tree")
	selectRaw := fs.String("sensors", "", "comma-separated sensor ids to select")
	dropRaw := fs.String("drop", "", "comma-separated sensor ids to deselect afterwards")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	selected, err := parseIDs(*selectRaw)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return fmt.Errorf("%w: tree requires -sensors", ErrUsage)
	}
	dropped, err := parseIDs(*dropRaw)
	if err != nil {
		return err
	}
	if err := a.enter(ctx, router.Home); err != nil {
		return err
	}

	if err := a.dashboard.LoadStations(ctx); err != nil {
		return fmt.Errorf("load stations: %w", err)
	}
	if err := a.dashboard.LoadSensors(ctx); err != nil {
		return fmt.Errorf("load sensors: %w", err)
	}

	sensors := a.dashboard.Sensors()
	stations := a.dashboard.Stations()
	for _, id := range selected {
		sensor, ok := findSensor(sensors, id)
		if !ok {
			return fmt.Errorf("sensor %d not found", id)
		}
		if err := a.dashboard.AddTreeNodeSelected(ctx, sensor, findStation(stations, sensor.StationID)); err != nil {
			return fmt.Errorf("select sensor %d: %w", id, err)
		}
	}
	for _, id := range dropped {
		if sensor, ok := findSensor(sensors, id); ok {
			a.dashboard.RemoveTreeNodeSelected(sensor)
		}
	}

	if p.Structured() {
		snap := a.dashboard.Snapshot()
		return p.Value(struct {
			Tags    []models.SensorTag  `json:"tags" yaml:"tags"`
			Records []models.DataRecord `json:"records" yaml:"records"`
		}{snap.TreeSensorSelectedTags, snap.TreeSensorRecordsLoaded})
	}
	p.Section("Selected sensors")
	p.Tags(a.dashboard.TreeSensorTags())
	p.Section("Records")
	return p.Records(a.dashboard.TreeSensorRecordsLoaded(), nil)
}

// findStation falls back to a bare station carrying only the id.
func findStation(stations []models.Station, id uint) models.Station {
	for _, st := range stations {
		if st.ID == id {
			return st
		}
	}
	return models.Station{Base: models.Base{ID: id}}
}

func findSensor(sensors []models.Sensor, id uint) (models.Sensor, bool) {
	for _, s := range sensors {
		if s.ID == id {
			return s, true
		}
	}
	return models.Sensor{}, false
}
