package weather

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// BuildReport maps an upstream payload onto a Report for the requested city.
//
// Missing or rejected upstream fields leave the matching Report field empty;
// the returned error joins one *PartialDataError per problem and is meant
// for logging only. The Report is always usable.
func BuildReport(p Payload, city string) (Report, error) {
	if p.Format == FormatXML {
		return buildXMLReport(p.Body, city)
	}
	return buildJSONReport(p)
}

func buildJSONReport(p Payload) (Report, error) {
	var r Report

	if p.StatusCode != http.StatusOK {
		return r, &PartialDataError{Field: "status", Reason: fmt.Sprintf("upstream status %d", p.StatusCode)}
	}

	dec := json.NewDecoder(bytes.NewReader(p.Body))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return r, &PartialDataError{Field: "payload", Reason: err.Error()}
	}

	var errs []error

	if temp, err := lookupJSON(doc, "current", "temp_c"); err != nil {
		errs = append(errs, err)
	} else {
		r.Weather = temp + " C"
	}

	if lat, err := lookupJSON(doc, "location", "lat"); err != nil {
		errs = append(errs, err)
	} else {
		r.Latitude = Coordinate(lat)
	}

	if lon, err := lookupJSON(doc, "location", "lon"); err != nil {
		errs = append(errs, err)
	} else {
		r.Longitude = Coordinate(lon)
	}

	name, nameErr := lookupJSON(doc, "location", "name")
	country, countryErr := lookupJSON(doc, "location", "country")
	if nameErr != nil || countryErr != nil {
		errs = append(errs, nameErr, countryErr)
	} else {
		r.City = name + " " + country
	}

	return r, errors.Join(errs...)
}

// lookupJSON walks nested objects and returns the leaf as text.
func lookupJSON(doc map[string]any, path ...string) (string, error) {
	field := strings.Join(path, ".")

	var cur any = doc
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return "", &PartialDataError{Field: field, Reason: "parent is not an object"}
		}
		cur, ok = obj[key]
		if !ok {
			return "", &PartialDataError{Field: field, Reason: "missing"}
		}
	}

	switch v := cur.(type) {
	case json.Number:
		return v.String(), nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", &PartialDataError{Field: field, Reason: "null"}
	default:
		return "", &PartialDataError{Field: field, Reason: "not a scalar value"}
	}
}

// upstreamXML covers the subset of the upstream XML document we read.
// Pointers distinguish absent elements from empty ones.
type upstreamXML struct {
	Location *struct {
		Name *string `xml:"name"`
		Lat  *string `xml:"lat"`
		Lon  *string `xml:"lon"`
	} `xml:"location"`
	Current *struct {
		TempC *string `xml:"temp_c"`
	} `xml:"current"`
}

func buildXMLReport(body []byte, city string) (Report, error) {
	var r Report

	var doc upstreamXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return r, &PartialDataError{Field: "payload", Reason: err.Error()}
	}

	if doc.Location == nil || doc.Location.Name == nil {
		return r, &PartialDataError{Field: "location/name", Reason: "missing"}
	}

	name := strings.TrimSpace(*doc.Location.Name)
	if !strings.EqualFold(name, city) {
		return r, &PartialDataError{
			Field:  "location/name",
			Reason: fmt.Sprintf("%q does not match requested city %q", name, city),
		}
	}
	r.City = name

	var errs []error

	if doc.Current == nil || doc.Current.TempC == nil {
		errs = append(errs, &PartialDataError{Field: "current/temp_c", Reason: "missing"})
	} else {
		r.Weather = strings.TrimSpace(*doc.Current.TempC) + " C"
	}

	if doc.Location.Lat == nil {
		errs = append(errs, &PartialDataError{Field: "location/lat", Reason: "missing"})
	} else {
		r.Latitude = Coordinate(strings.TrimSpace(*doc.Location.Lat))
	}

	if doc.Location.Lon == nil {
		errs = append(errs, &PartialDataError{Field: "location/lon", Reason: "missing"})
	} else {
		r.Longitude = Coordinate(strings.TrimSpace(*doc.Location.Lon))
	}

	return r, errors.Join(errs...)
}
