package model

import "encoding/json"

// Canonical day names used by weekly hours periods.
const (
	Sunday    = "SUNDAY"
	Monday    = "MONDAY"
	Tuesday   = "TUESDAY"
	Wednesday = "WEDNESDAY"
	Thursday  = "THURSDAY"
	Friday    = "FRIDAY"
	Saturday  = "SATURDAY"
)

// BusinessProfile is an externally sourced business record. It is treated as
// immutable for the duration of a single engine call.
type BusinessProfile struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name,omitempty"`
	Category       string          `json:"category,omitempty"`
	Website        string          `json:"website,omitempty"`
	Address        string          `json:"address,omitempty"`
	PhoneNumbers   []string        `json:"phoneNumbers,omitempty"`
	RegularHours   Hours           `json:"regularHours"`
	AuxiliaryHours []LabeledHours  `json:"auxiliaryHours,omitempty"`
	Timezone       string          `json:"timezone,omitempty"`
	Coordinates    *Coordinates    `json:"coordinates,omitempty"`
	ServiceArea    ServiceAreaInfo `json:"serviceArea"`
	Metadata       Metadata        `json:"metadata"`
	Attributes     map[string]any  `json:"attributes,omitempty"` // free-form nested upstream data
	Profile        ProfileText     `json:"profile"`
	Photos         []Photo         `json:"photos,omitempty"`
	Videos         []string        `json:"videos,omitempty"`
	Reviews        *Reviews        `json:"reviews,omitempty"`
	Certifications []string        `json:"certifications,omitempty"`
	Services       []string        `json:"services,omitempty"`
	Highlights     []string        `json:"highlights,omitempty"`
}

// Hours holds the regular weekly schedule.
type Hours struct {
	Periods []Period `json:"periods,omitempty"`
}

// Period is one opening interval of the weekly schedule. Times are "HH:MM"
// or "HHMM" in the business's local time.
type Period struct {
	OpenDay   string `json:"openDay"`
	CloseDay  string `json:"closeDay,omitempty"`
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
}

// LabeledHours is an auxiliary schedule entry such as "Delivery" or
// "Senior hours" with its human readable display text.
type LabeledHours struct {
	Label       string   `json:"label,omitempty"`
	DisplayText []string `json:"displayText,omitempty"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within WGS84 bounds and is not the
// null island placeholder upstream sources emit for unknown locations.
func (c *Coordinates) Valid() bool {
	if c == nil {
		return false
	}
	if c.Lat == 0 && c.Lng == 0 {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// UnmarshalJSON decodes a point that carries both lat and lng. A point
// missing either one decodes to the zero value, which Valid rejects.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var raw struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Coordinates{}
	if raw.Lat != nil && raw.Lng != nil {
		c.Lat, c.Lng = *raw.Lat, *raw.Lng
	}
	return nil
}

// ServiceAreaInfo describes where a business serves customers.
type ServiceAreaInfo struct {
	Places      []ServicePlace `json:"places,omitempty"`
	RadiusMiles float64        `json:"radiusMiles,omitempty"`
}

// ServicePlace is a named place in the service area. Coordinates are present
// only when the caller geocoded the place before invoking the engine.
type ServicePlace struct {
	Name        string       `json:"name"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Metadata carries establishment data reported by the upstream source.
type Metadata struct {
	EstablishedDate string `json:"establishedDate,omitempty"`
	YearEstablished any    `json:"yearEstablished,omitempty"`
}

// ProfileText holds free-text profile content.
type ProfileText struct {
	Description string `json:"description,omitempty"`
}

// Photo is a single image attached to the profile.
type Photo struct {
	URL      string `json:"url"`
	Category string `json:"category,omitempty"`
}

// Reviews is the aggregate review summary.
type Reviews struct {
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}

// PhotoURLs returns the non-empty photo URLs in profile order.
func (p *BusinessProfile) PhotoURLs() []string {
	var urls []string
	for _, ph := range p.Photos {
		if ph.URL != "" {
			urls = append(urls, ph.URL)
		}
	}
	return urls
}

// PrimaryPhone returns the first non-empty phone number.
func (p *BusinessProfile) PrimaryPhone() string {
	for _, n := range p.PhoneNumbers {
		if n != "" {
			return n
		}
	}
	return ""
}
