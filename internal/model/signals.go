package model

import "time"

// OpenStatus is the resolved open/closed state of a business.
type OpenStatus string

const (
	StatusOpen   OpenStatus = "OPEN"
	StatusClosed OpenStatus = "CLOSED"
)

// ChangeAction names the kind of upcoming status transition.
type ChangeAction string

const (
	ActionOpens  ChangeAction = "opens"
	ActionCloses ChangeAction = "closes"
)

// HoursStatus is the output of the hours resolver.
type HoursStatus struct {
	IsOpen     bool        `json:"isOpen"`
	Status     OpenStatus  `json:"status"`
	NextChange *NextChange `json:"nextChange,omitempty"`
}

// NextChange is the next transition of the open/closed state.
type NextChange struct {
	Day    string       `json:"day"`
	Time   string       `json:"time"`
	Action ChangeAction `json:"action"`
	At     time.Time    `json:"at"`
}

// Age evidence sources.
const (
	AgeSourceMetadata    = "metadata"
	AgeSourceDescription = "description"
	AgeSourceNone        = "none"
)

// AgeEstimate is the years-in-business estimate with its evidence source.
type AgeEstimate struct {
	YearsInBusiness *int    `json:"yearsInBusiness,omitempty"`
	EstablishedYear *int    `json:"establishedYear,omitempty"`
	Confidence      float64 `json:"confidence"`
	Source          string  `json:"source"`
	Rule            string  `json:"rule,omitempty"`
}

// Known reports whether an establishment year was found.
func (a AgeEstimate) Known() bool {
	return a.EstablishedYear != nil && a.Confidence > 0
}

// Service area estimation methods.
const (
	MethodCityList        = "cityList"
	MethodDeclaredRadius  = "declaredRadius"
	MethodIndustryDefault = "industryDefault"
)

// ServiceAreaEstimate is the estimated service radius.
type ServiceAreaEstimate struct {
	RadiusMiles float64 `json:"radiusMiles"`
	Confidence  float64 `json:"confidence"`
	Method      string  `json:"method"`
	PlaceCount  int     `json:"placeCount,omitempty"`
}

// ClimateZone is a coarse climate region.
type ClimateZone string

const (
	ClimateArid      ClimateZone = "ARID"
	ClimateHumid     ClimateZone = "HUMID"
	ClimateCold      ClimateZone = "COLD"
	ClimateTemperate ClimateZone = "TEMPERATE"
)

// NormalizedSignals are derived from a profile on every call; never persisted
// by the engine itself.
type NormalizedSignals struct {
	Hours       HoursStatus         `json:"hours"`
	Age         AgeEstimate         `json:"age"`
	ServiceArea ServiceAreaEstimate `json:"serviceArea"`
	ClimateZone ClimateZone         `json:"climateZone"`
}
