package scraper

import (
	"testing"
)

const fullPage = `
<html><body>
<div class="station"><span id="dist_cant">8km</span></div>
<div class="latest">
  <span id="ult_dato_temp">21.5</span>
  <span id="ult_dato_hum">64</span>
  <span id="fecha_act_dato">2021-08-26 13:00</span>
</div>
</body></html>`

func TestExtract_AllFieldsPresent(t *testing.T) {
	fields, err := Extract(fullPage)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if fields.Distance == nil || *fields.Distance != "8km" {
		t.Errorf("Distance = %v, want 8km", fields.Distance)
	}
	if fields.Temperature == nil || *fields.Temperature != 21.5 {
		t.Errorf("Temperature = %v, want 21.5", fields.Temperature)
	}
	if fields.Humidity == nil || *fields.Humidity != 64 {
		t.Errorf("Humidity = %v, want 64", fields.Humidity)
	}
	if fields.Updated == nil {
		t.Fatal("Updated = nil, want non-nil")
	}
	// 2021-08-26 13:00 UTC
	if *fields.Updated != 1629982800 {
		t.Errorf("Updated = %d, want 1629982800", *fields.Updated)
	}
}

func TestExtract_MissingFragments(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		distNil bool
		tempNil bool
		humNil  bool
		updNil  bool
	}{
		{
			name:    "no fragments at all",
			markup:  `<html><body><p>nothing here</p></body></html>`,
			distNil: true, tempNil: true, humNil: true, updNil: true,
		},
		{
			name:    "only temperature",
			markup:  `<html><body><span id="ult_dato_temp">18.0</span></body></html>`,
			distNil: true, tempNil: false, humNil: true, updNil: true,
		},
		{
			name: "only distance and humidity",
			markup: `<html><body>
				<span id="dist_cant">3km</span>
				<span id="ult_dato_hum">40</span>
			</body></html>`,
			distNil: false, tempNil: true, humNil: false, updNil: true,
		},
		{
			name:    "empty fragment counts as absent",
			markup:  `<html><body><span id="dist_cant">  </span></body></html>`,
			distNil: true, tempNil: true, humNil: true, updNil: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := Extract(tc.markup)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if (fields.Distance == nil) != tc.distNil {
				t.Errorf("Distance nil = %v, want %v", fields.Distance == nil, tc.distNil)
			}
			if (fields.Temperature == nil) != tc.tempNil {
				t.Errorf("Temperature nil = %v, want %v", fields.Temperature == nil, tc.tempNil)
			}
			if (fields.Humidity == nil) != tc.humNil {
				t.Errorf("Humidity nil = %v, want %v", fields.Humidity == nil, tc.humNil)
			}
			if (fields.Updated == nil) != tc.updNil {
				t.Errorf("Updated nil = %v, want %v", fields.Updated == nil, tc.updNil)
			}
		})
	}
}

func TestExtract_MalformedValues(t *testing.T) {
	markup := `<html><body>
		<span id="dist_cant">8km</span>
		<span id="ult_dato_temp">not-a-number</span>
		<span id="ult_dato_hum">64</span>
		<span id="fecha_act_dato">hace un rato</span>
	</body></html>`

	fields, err := Extract(markup)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if fields.Temperature != nil {
		t.Errorf("Temperature = %v, want nil for unparseable value", *fields.Temperature)
	}
	if fields.Updated != nil {
		t.Errorf("Updated = %v, want nil for unparseable timestamp", *fields.Updated)
	}
	// The malformed fields must not poison the parseable ones.
	if fields.Distance == nil || *fields.Distance != "8km" {
		t.Errorf("Distance = %v, want 8km", fields.Distance)
	}
	if fields.Humidity == nil || *fields.Humidity != 64 {
		t.Errorf("Humidity = %v, want 64", fields.Humidity)
	}
}

func TestParseUpdated_Layouts(t *testing.T) {
	tests := []struct {
		text string
		want int64
	}{
		{"2021-08-26 13:00", 1629982800},
		{"2021-08-26 13:00:05", 1629982805},
		{"26/08/2021 13:00", 1629982800},
		{"2021-08-26", 1629936000},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			got := parseUpdated(tc.text)
			if got == nil {
				t.Fatalf("parseUpdated(%q) = nil", tc.text)
			}
			if *got != tc.want {
				t.Errorf("parseUpdated(%q) = %d, want %d", tc.text, *got, tc.want)
			}
		})
	}

	if got := parseUpdated("mañana temprano"); got != nil {
		t.Errorf("parseUpdated(garbage) = %d, want nil", *got)
	}
}
