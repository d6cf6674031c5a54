// scraper/extractor.go
package scraper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmtz/meteopipe/models"
)

// Element ids of the four fragments of interest on the historico page.
const (
	distanceElementID = "dist_cant"
	tempElementID     = "ult_dato_temp"
	humidityElementID = "ult_dato_hum"
	updatedElementID  = "fecha_act_dato"
)

// Layouts tried against the latest-update text. The page prints the
// timestamp without a timezone; it is interpreted as UTC.
var updateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// Extract pulls the distance, temperature, humidity and latest-update values
// out of raw page markup. Each field is independently nullable: a missing
// fragment or an unparseable value yields nil for that field and never fails
// the extraction. Only markup that cannot be parsed at all returns an error.
func Extract(rawMarkup string) (models.Fields, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawMarkup))
	if err != nil {
		return models.Fields{}, fmt.Errorf("failed to parse markup: %w", err)
	}

	var fields models.Fields

	fields.Distance = elementText(doc, distanceElementID)

	if s := elementText(doc, tempElementID); s != nil {
		if v, err := strconv.ParseFloat(*s, 64); err == nil {
			fields.Temperature = &v
		}
	}
	if s := elementText(doc, humidityElementID); s != nil {
		if v, err := strconv.ParseFloat(*s, 64); err == nil {
			fields.Humidity = &v
		}
	}
	if s := elementText(doc, updatedElementID); s != nil {
		fields.Updated = parseUpdated(*s)
	}

	return fields, nil
}

// elementText returns the trimmed text of the element with the given id,
// or nil when the element is absent or empty.
func elementText(doc *goquery.Document, id string) *string {
	sel := doc.Find("#" + id)
	if sel.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(sel.First().Text())
	if text == "" {
		return nil
	}
	return &text
}

// parseUpdated coerces the latest-update text to epoch seconds, trying each
// known layout in UTC. Unparseable text yields nil.
func parseUpdated(text string) *int64 {
	for _, layout := range updateLayouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			ts := t.Unix()
			return &ts
		}
	}
	return nil
}
