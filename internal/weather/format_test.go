package weather

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

const parisJSON = `{"current":{"temp_c":21},"location":{"lat":1.0,"lon":2.0,"name":"Paris","country":"France"}}`

const parisXML = `<?xml version="1.0" encoding="utf-8"?>
<root>
  <location><name>Paris</name><region>Ile-de-France</region><country>France</country><lat>48.87</lat><lon>2.33</lon></location>
  <current><temp_c>21.0</temp_c><is_day>1</is_day></current>
</root>`

func jsonPayload(body string) Payload {
	return Payload{Format: FormatJSON, StatusCode: http.StatusOK, Body: []byte(body)}
}

func xmlPayload(body string) Payload {
	return Payload{Format: FormatXML, StatusCode: http.StatusOK, Body: []byte(body)}
}

func TestBuildReportJSON(t *testing.T) {
	r, err := BuildReport(jsonPayload(parisJSON), "Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, err := r.Encode(FormatJSON)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"Weather":"21 C","Latitude":1.0,"Longitude":2.0,"City":"Paris France"}`
	if string(body) != want {
		t.Fatalf("expected %s, got %s", want, body)
	}
}

func TestBuildReportJSONMissingFields(t *testing.T) {
	r, err := BuildReport(jsonPayload(`{"location":{"lat":-33.87,"name":"Sydney"}}`), "Sydney")

	var pErr *PartialDataError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected *PartialDataError, got %v", err)
	}
	for _, field := range []string{"current.temp_c", "location.lon", "location.country"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("expected %s in %v", field, err)
		}
	}

	body, _ := r.Encode(FormatJSON)
	want := `{"Weather":"","Latitude":-33.87,"Longitude":"","City":""}`
	if string(body) != want {
		t.Fatalf("expected %s, got %s", want, body)
	}
}

func TestBuildReportJSONNon200(t *testing.T) {
	p := jsonPayload(parisJSON)
	p.StatusCode = http.StatusNonAuthoritativeInfo

	r, err := BuildReport(p, "Paris")
	if err == nil {
		t.Fatal("expected partial data error")
	}
	if r != (Report{}) {
		t.Fatalf("expected empty report, got %+v", r)
	}
}

func TestBuildReportJSONGarbage(t *testing.T) {
	r, err := BuildReport(jsonPayload(`<html>oops</html>`), "Paris")
	if err == nil {
		t.Fatal("expected partial data error")
	}
	if r != (Report{}) {
		t.Fatalf("expected empty report, got %+v", r)
	}
}

func TestBuildReportXML(t *testing.T) {
	r, err := BuildReport(xmlPayload(parisXML), "PARIS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Report{Weather: "21.0 C", Latitude: "48.87", Longitude: "2.33", City: "Paris"}
	if r != want {
		t.Fatalf("expected %+v, got %+v", want, r)
	}

	body, err := r.Encode(FormatXML)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	wantBody := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<root><Temperature>21.0 C</Temperature><City>Paris</City><Latitude>48.87</Latitude><Longitude>2.33</Longitude></root>`
	if string(body) != wantBody {
		t.Fatalf("expected %s, got %s", wantBody, body)
	}
}

func TestBuildReportXMLCityMismatch(t *testing.T) {
	r, err := BuildReport(xmlPayload(parisXML), "Paris, Texas")

	var pErr *PartialDataError
	if !errors.As(err, &pErr) || pErr.Field != "location/name" {
		t.Fatalf("expected location/name error, got %v", err)
	}
	if r != (Report{}) {
		t.Fatalf("expected empty report, got %+v", r)
	}
}

func TestBuildReportXMLMissingElements(t *testing.T) {
	r, err := BuildReport(xmlPayload(`<root><location><name>Oslo</name><lat>59.91</lat></location></root>`), "oslo")
	if err == nil {
		t.Fatal("expected partial data error")
	}

	want := Report{City: "Oslo", Latitude: "59.91"}
	if r != want {
		t.Fatalf("expected %+v, got %+v", want, r)
	}
}

func TestBuildReportXMLGarbage(t *testing.T) {
	for _, body := range []string{"", "not xml", `<root><current><temp_c>3</temp_c></current></root>`} {
		r, err := BuildReport(xmlPayload(body), "Oslo")
		if err == nil {
			t.Fatalf("body %q: expected partial data error", body)
		}
		if r != (Report{}) {
			t.Fatalf("body %q: expected empty report, got %+v", body, r)
		}
	}
}

func TestCoordinateMarshalJSON(t *testing.T) {
	cases := map[Coordinate]string{
		"1.0":    `1.0`,
		"-33.87": `-33.87`,
		"":       `""`,
		"NaN":    `"NaN"`,
		"north":  `"north"`,
	}
	for in, want := range cases {
		got, err := in.MarshalJSON()
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if string(got) != want {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}
}
