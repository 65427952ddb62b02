package app

import (
	"context"
	"fmt"

	"envdashboard/services/dashboard-cli/internal/clients"
	"envdashboard/services/dashboard-cli/internal/models"
	"envdashboard/services/dashboard-cli/internal/render"
	"envdashboard/services/dashboard-cli/internal/router"
)

func (a *App) cmdStations(ctx context.Context, p *render.Printer, args []string) error {
	verb, rest, err := subcommand("stations", args, "list", "upsert")
	if err != nil {
		return err
	}
	switch verb {
	case "upsert":
		return a.upsertStation(ctx, p, rest)
	default:
		return a.listStations(ctx, p, rest)
	}
}

func (a *App) listStations(ctx context.Context, p *render.Printer, args []string) error {
	fs := a.subFlags("stations list")
	offset := fs.Int("offset", 0, "skip this many stations")
	limit := fs.Int("limit", 0, "return at most this many stations")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := a.enter(ctx, router.Home); err != nil {
		return err
	}
	env, err := checked(a.client.GetStations(ctx, clients.StationsQuery{Offset: *offset, Limit: *limit}))
	if err != nil {
		return fmt.Errorf("list stations: %w", err)
	}
	return p.Stations(env.Payload, env.Total)
}

func (a *App) upsertStation(ctx context.Context, p *render.Printer, args []string) error {
	fs := a.subFlags("stations upsert")
	id := fs.Uint("id", 0, "station id to update; omit to create")
	name := fs.String("name", "", "station name")
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	altitude := fs.Float64("altitude", 0, "altitude in meters")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("%w: stations upsert requires -name", ErrUsage)
	}
	if err := a.enter(ctx, router.Admin); err != nil {
		return err
	}
	env, err := checked(a.client.UpsertStation(ctx, clients.UpsertStationParams{
		ID:       *id,
		Name:     *name,
		Lat:      *lat,
		Lng:      *lng,
		Altitude: *altitude,
	}))
	if err != nil {
		return fmt.Errorf("upsert station: %w", err)
	}
	return p.Stations([]models.Station{env.Payload}, nil)
}

func (a *App) cmdSensors(ctx context.Context, p *render.Printer, args []string) error {
	verb, rest, err := subcommand("sensors", args, "list", "upsert")
	if err != nil {
		return err
	}
	switch verb {
	case "upsert":
		return a.upsertSensor(ctx, p, rest)
	default:
		return a.listSensors(ctx, p, rest)
	}
}

func (a *App) listSensors(ctx context.Context, p *render.Printer, args []string) error {
	fs := a.subFlags("sensors list")
	station := fs.Uint("station", 0, "only sensors of this station")
	offset := fs.Int("offset", 0, "skip this many sensors")
	limit := fs.Int("limit", 0, "return at most this many sensors")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := a.enter(ctx, router.Home); err != nil {
		return err
	}
	env, err := checked(a.client.GetSensors(ctx, clients.SensorsQuery{
		StationID: *station,
		Offset:    *offset,
		Limit:     *limit,
	}))
	if err != nil {
		return fmt.Errorf("list sensors: %w", err)
	}
	return p.Sensors(env.Payload, env.Total)
}

func (a *App) upsertSensor(ctx context.Context, p *render.Printer, args []string) error {
	fs := a.subFlags("sensors upsert")
	id := fs.Uint("id", 0, "sensor id to update; omit to create")
	station := fs.Uint("station", 0, "owning station id")
	position := fs.String("position", "", "mounting position: up|middle|down")
	name := fs.String("name", "", "sensor name")
	group := fs.String("group", "", "sensor group")
	tag := fs.String("tag", "", "sensor tag")
	unit := fs.String("unit", "", "measurement unit")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *station == 0 {
		return fmt.Errorf("%w: sensors upsert requires -station", ErrUsage)
	}
	pos, ok := models.ParsePosition(*position)
	if !ok {
		return fmt.Errorf("%w: invalid position %q", ErrUsage, *position)
	}
	if err := a.enter(ctx, router.Admin); err != nil {
		return err
	}

	sensor := models.Sensor{
		StationID: *station,
		Position:  pos,
		Tag:       *tag,
		Name:      *name,
		Group:     *group,
		Unit:      *unit,
	}
	sensor.ID = *id
	env, err := checked(a.client.UpsertSensor(ctx, sensor))
	if err != nil {
		return fmt.Errorf("upsert sensor: %w", err)
	}
	return p.Sensors([]models.Sensor{env.Payload}, nil)
}
