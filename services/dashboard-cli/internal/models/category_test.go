package models

import (
	"reflect"
	"testing"
)

func sensor(id uint, name string) Sensor {
	return Sensor{Base: Base{ID: id}, StationID: 1, Name: name}
}

func record(id, sensorID uint) DataRecord {
	return DataRecord{Base: Base{ID: id}, SensorID: sensorID}
}

func TestCategoriesSensorIDs(t *testing.T) {
	c := NewCategories([]string{"CO2"}, []string{"Soil pH"})
	sensors := []Sensor{
		sensor(1, "CO2"),
		sensor(2, "Soil pH"),
		sensor(3, "Mystery"),
		sensor(0, "CO2"),
		sensor(4, ""),
	}
	air, soil := c.SensorIDs(sensors)
	if !reflect.DeepEqual(air, []uint{1}) {
		t.Fatalf("air ids = %v", air)
	}
	if !reflect.DeepEqual(soil, []uint{2}) {
		t.Fatalf("soil ids = %v", soil)
	}
}

func TestCategoriesSplitIsDisjoint(t *testing.T) {
	c := NewCategories([]string{"CO2", "Both"}, []string{"Soil pH", "Both"})
	sensors := []Sensor{sensor(1, "CO2"), sensor(2, "Soil pH"), sensor(3, "Mystery"), sensor(4, "Both")}
	records := []DataRecord{record(10, 1), record(11, 2), record(12, 3), record(13, 4), record(14, 1)}

	p := c.Split(sensors, records)

	if len(p.AirSensors) != 2 || len(p.SoilSensors) != 1 {
		t.Fatalf("unexpected sensor buckets air=%v soil=%v", p.AirSensors, p.SoilSensors)
	}
	seen := map[uint]int{}
	for _, r := range p.AirRecords {
		seen[r.ID]++
	}
	for _, r := range p.SoilRecords {
		seen[r.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Fatalf("record %d appears in both buckets", id)
		}
	}
	if _, ok := seen[12]; ok {
		t.Fatalf("record of uncategorised sensor must be excluded")
	}
	if len(p.AirRecords) != 3 || len(p.SoilRecords) != 1 {
		t.Fatalf("unexpected record buckets air=%d soil=%d", len(p.AirRecords), len(p.SoilRecords))
	}
}

func TestSplitEmptyInputsGiveEmptyBuckets(t *testing.T) {
	p := DefaultCategories().Split(nil, nil)
	if p.AirSensors == nil || p.SoilRecords == nil {
		t.Fatalf("buckets should be empty, not nil")
	}
}
