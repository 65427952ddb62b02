package models

import (
	"strings"
)

// SensorPosition is where a sensor is mounted relative to the panel.
type SensorPosition string

const (
	PositionUp     SensorPosition = "up"
	PositionMiddle SensorPosition = "middle"
	PositionDown   SensorPosition = "down"
)

var positionNames = map[SensorPosition]string{
	PositionUp:     "Above Panel",
	PositionMiddle: "Between Panels",
	PositionDown:   "Below Panel",
}

// ParsePosition accepts the wire values case-insensitively. Empty input is a
// valid "no position".
func ParsePosition(s string) (SensorPosition, bool) {
	p := SensorPosition(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return "", true
	}
	_, ok := positionNames[p]
	return p, ok
}

// Sensor is a measurement device attached to a station.
type Sensor struct {
	Base `yaml:",inline"`
	StationID uint           `json:"station_id" yaml:"station_id"`
	Position  SensorPosition `json:"position,omitempty" yaml:"position,omitempty"`
	Tag       string         `json:"tag,omitempty" yaml:"tag,omitempty"`
	Name      string         `json:"name,omitempty" yaml:"name,omitempty"`
	Group     string         `json:"group,omitempty" yaml:"group,omitempty"`
	Unit      string         `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// GetPositionName returns the display label for a mounting position, or ""
// when the position is absent or unknown.
func GetPositionName(p SensorPosition) string {
	return positionNames[p]
}

// SensorDisplayText builds the label shown for a selected sensor, e.g.
// "North Field: Above Panel-weather-Air Temperature(probe 2)".
func SensorDisplayText(s Sensor, stationName string) string {
	var b strings.Builder
	if stationName != "" {
		b.WriteString(stationName)
		b.WriteString(": ")
	}
	if s.Position != "" {
		b.WriteString(GetPositionName(s.Position))
		b.WriteString("-")
	}
	if s.Group != "" {
		b.WriteString(s.Group)
		b.WriteString("-")
	}
	b.WriteString(s.Name)
	if s.Tag != "" {
		b.WriteString("(")
		b.WriteString(s.Tag)
		b.WriteString(")")
	}
	return b.String()
}

// SensorTag pairs a display title with the sensor it stands for.
type SensorTag struct {
	Title  string `json:"title" yaml:"title"`
	Sensor Sensor `json:"data" yaml:"data"`
}

// BuildSensorTags derives tag labels for the selected sensors. The owning
// station name is looked up in stations and omitted when not found.
func BuildSensorTags(sensors []Sensor, stations []Station) []SensorTag {
	names := make(map[uint]string, len(stations))
	for _, st := range stations {
		if _, seen := names[st.ID]; !seen {
			names[st.ID] = st.Name
		}
	}
	tags := make([]SensorTag, 0, len(sensors))
	for _, s := range sensors {
		tags = append(tags, SensorTag{
			Title:  SensorDisplayText(s, names[s.StationID]),
			Sensor: s,
		})
	}
	return tags
}
