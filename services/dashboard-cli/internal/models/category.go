package models

// Default sensor names grouped into the two station views.
var (
	DefaultAirSensorNames = []string{
		"Air Temperature",
		"Air Humidity",
		"Illuminance",
		"CO2",
		"Wind Speed",
		"Wind Direction",
		"Rainfall",
		"Atmospheric Pressure",
		"PM2.5",
		"PM10",
	}
	DefaultSoilSensorNames = []string{
		"Soil Temperature",
		"Soil Moisture",
		"Soil EC",
		"Soil pH",
		"Soil Nitrogen",
		"Soil Phosphorus",
		"Soil Potassium",
	}
)

// Categories splits sensors into air- and soil-related views by exact name.
// A name may appear in at most one list; a sensor named in neither list
// belongs to no view.
type Categories struct {
	air  map[string]struct{}
	soil map[string]struct{}
}

// NewCategories builds a Categories from the two name lists. Names listed as
// air take precedence if a name appears in both.
func NewCategories(air, soil []string) Categories {
	c := Categories{
		air:  make(map[string]struct{}, len(air)),
		soil: make(map[string]struct{}, len(soil)),
	}
	for _, n := range air {
		c.air[n] = struct{}{}
	}
	for _, n := range soil {
		if _, dup := c.air[n]; dup {
			continue
		}
		c.soil[n] = struct{}{}
	}
	return c
}

// DefaultCategories uses the built-in name lists.
func DefaultCategories() Categories {
	return NewCategories(DefaultAirSensorNames, DefaultSoilSensorNames)
}

// IsAir reports whether the sensor belongs to the air view.
func (c Categories) IsAir(s Sensor) bool {
	if s.ID == 0 || s.Name == "" {
		return false
	}
	_, ok := c.air[s.Name]
	return ok
}

// IsSoil reports whether the sensor belongs to the soil view.
func (c Categories) IsSoil(s Sensor) bool {
	if s.ID == 0 || s.Name == "" {
		return false
	}
	_, ok := c.soil[s.Name]
	return ok
}

// Partition is a station's sensors and records split into the two views.
type Partition struct {
	AirSensors  []Sensor     `json:"air_sensors" yaml:"air_sensors"`
	AirRecords  []DataRecord `json:"air_records" yaml:"air_records"`
	SoilSensors []Sensor     `json:"soil_sensors" yaml:"soil_sensors"`
	SoilRecords []DataRecord `json:"soil_records" yaml:"soil_records"`
}

// SensorIDs returns the air and soil sensor identifiers, in input order.
func (c Categories) SensorIDs(sensors []Sensor) (air, soil []uint) {
	for _, s := range sensors {
		switch {
		case c.IsAir(s):
			air = append(air, s.ID)
		case c.IsSoil(s):
			soil = append(soil, s.ID)
		}
	}
	return air, soil
}

// Split partitions sensors and records by the air/soil ID sets derived from sensors.
func (c Categories) Split(sensors []Sensor, records []DataRecord) Partition {
	airIDs, soilIDs := c.SensorIDs(sensors)
	air := idSet(airIDs)
	soil := idSet(soilIDs)

	p := Partition{
		AirSensors:  []Sensor{},
		AirRecords:  []DataRecord{},
		SoilSensors: []Sensor{},
		SoilRecords: []DataRecord{},
	}
	for _, s := range sensors {
		if _, ok := air[s.ID]; ok {
			p.AirSensors = append(p.AirSensors, s)
		} else if _, ok := soil[s.ID]; ok {
			p.SoilSensors = append(p.SoilSensors, s)
		}
	}
	for _, r := range records {
		if _, ok := air[r.SensorID]; ok {
			p.AirRecords = append(p.AirRecords, r)
		} else if _, ok := soil[r.SensorID]; ok {
			p.SoilRecords = append(p.SoilRecords, r)
		}
	}
	return p
}

func idSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
