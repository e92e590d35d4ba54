package weather

import (
	"encoding/json"
	"encoding/xml"
	"strconv"
	"time"
)

// OutputFormat is the serialization requested by the caller.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatXML  OutputFormat = "xml"
)

// ContentType returns the MIME type used when responding in this format.
func (f OutputFormat) ContentType() string {
	if f == FormatXML {
		return "application/xml"
	}
	return "application/json"
}

// Query is a validated request for the current weather of a city.
// Build it with NewQuery.
type Query struct {
	City   string
	Format OutputFormat
}

// Payload is the raw upstream answer for a Query.
type Payload struct {
	Format     OutputFormat
	StatusCode int
	Body       []byte
}

// Coordinate keeps the upstream textual representation of a latitude or
// longitude so "1.0" is not re-rendered as "1".
type Coordinate string

// MarshalJSON emits the coordinate as a JSON number when it is one and as a
// string otherwise (including the empty string for missing values).
func (c Coordinate) MarshalJSON() ([]byte, error) {
	s := string(c)
	if _, err := strconv.ParseFloat(s, 64); err == nil && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// Report is the normalized output record produced per request.
// Empty fields mean the upstream value was missing or rejected.
type Report struct {
	Weather   string
	Latitude  Coordinate
	Longitude Coordinate
	City      string
}

type jsonReport struct {
	Weather   string     `json:"Weather"`
	Latitude  Coordinate `json:"Latitude"`
	Longitude Coordinate `json:"Longitude"`
	City      string     `json:"City"`
}

type xmlReport struct {
	XMLName     xml.Name   `xml:"root"`
	Temperature string     `xml:"Temperature"`
	City        string     `xml:"City"`
	Latitude    Coordinate `xml:"Latitude"`
	Longitude   Coordinate `xml:"Longitude"`
}

// Encode serializes the report in the given output format.
func (r Report) Encode(format OutputFormat) ([]byte, error) {
	if format == FormatXML {
		body, err := xml.Marshal(xmlReport{
			Temperature: r.Weather,
			City:        r.City,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
		})
		if err != nil {
			return nil, err
		}
		return append([]byte(xml.Header), body...), nil
	}

	return json.Marshal(jsonReport(r))
}

// Rendered is a serialized Report ready to be written to the client.
type Rendered struct {
	ContentType string
	Body        []byte
}

// ProbeResult records one upstream connectivity check.
type ProbeResult struct {
	ID         string        `json:"id"`
	City       string        `json:"city"`
	CheckedAt  time.Time     `json:"checkedAt"` // always UTC
	OK         bool          `json:"ok"`
	StatusCode int           `json:"statusCode,omitempty"`
	Latency    time.Duration `json:"latencyNs"`
	Error      string        `json:"error,omitempty"`
}
