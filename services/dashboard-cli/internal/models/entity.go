package models

import "time"

// Base carries the identifier and timestamps every server entity has.
type Base struct {
	ID        uint       `json:"id,omitempty" yaml:"id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
}

// Account is the authenticated user.
type Account struct {
	Base `yaml:",inline"`
	Username string `json:"username" yaml:"username"`
	Token    string `json:"token" yaml:"token"`
}

// TokenPayload is returned by register and login.
type TokenPayload struct {
	Token string `json:"token" yaml:"token"`
}

// Station is a physical monitoring location.
type Station struct {
	Base `yaml:",inline"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Lat      *float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty" yaml:"lng,omitempty"`
	Altitude *float64 `json:"altitude,omitempty" yaml:"altitude,omitempty"`
}

// DataRecord is a single reading from a sensor.
type DataRecord struct {
	Base `yaml:",inline"`
	SensorID uint       `json:"sensor_id" yaml:"sensor_id"`
	Value    *float64   `json:"value,omitempty" yaml:"value,omitempty"`
	Time     *time.Time `json:"time,omitempty" yaml:"time,omitempty"`
}
