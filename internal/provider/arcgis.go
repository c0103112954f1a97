package provider

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/wefrigerator/fridge-ingest/internal/classify"
	"github.com/wefrigerator/fridge-ingest/internal/model"
	"github.com/wefrigerator/fridge-ingest/internal/textutil"
)

// DefaultArcGISURL is the LA County charitable food layer as GeoJSON.
const DefaultArcGISURL = "https://arcgis.gis.lacounty.gov/arcgis/rest/services/LACounty_Dynamic/LMS_Data_Public_2014/MapServer/156/query?where=1%3D1&outFields=*&f=geojson"

const (
	arcgisSitePrefix  = "lac-156"
	arcgisDefaultName = "Food Distribution Site"
)

// ArcGIS adapts the LA County charitable food GeoJSON layer.
type ArcGIS struct {
	url        string
	thresholdM float64
}

// NewArcGIS creates the adapter. Empty url selects DefaultArcGISURL.
func NewArcGIS(url string, thresholdM float64) *ArcGIS {
	if url == "" {
		url = DefaultArcGISURL
	}
	return &ArcGIS{url: url, thresholdM: thresholdM}
}

// Name implements Provider.
func (a *ArcGIS) Name() string { return TagArcGISLA }

// Route implements Provider.
func (a *ArcGIS) Route() string { return "arcgis-la" }

// Traits implements Provider.
func (a *ArcGIS) Traits() Traits {
	return Traits{
		Label:            "LA County",
		CountKey:         "total_features",
		DedupeThresholdM: a.thresholdM,
		Classifier:       classify.Text{},
		ReportSites:      true,
	}
}

// Request implements Provider.
func (a *ArcGIS) Request() Request { return getRequest(a.url, nil) }

// arcgisCollection is the GeoJSON envelope. Features are decoded one at a
// time so a malformed feature only drops itself.
type arcgisCollection struct {
	Features []json.RawMessage `json:"features"`
}

type arcgisFeature struct {
	Geometry *struct {
		Coordinates []any `json:"coordinates"`
	} `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Parse implements Provider.
func (a *ArcGIS) Parse(payload []byte, _ time.Time) (*Batch, error) {
	var fc arcgisCollection
	if err := decode(payload, &fc); err != nil {
		return nil, eris.Wrap(err, "provider: decode arcgis feature collection")
	}

	batch := &Batch{Total: len(fc.Features), Records: make([]model.Record, 0, len(fc.Features))}
	for _, rawFeature := range fc.Features {
		var f arcgisFeature
		if err := decode(rawFeature, &f); err != nil {
			batch.Dropped++
			continue
		}
		rec, ok := arcgisRecord(&f)
		if !ok {
			batch.Dropped++
			continue
		}
		batch.Records = append(batch.Records, rec)
	}
	return batch, nil
}

func arcgisRecord(f *arcgisFeature) (model.Record, bool) {
	if f.Geometry == nil || len(f.Geometry.Coordinates) < 2 {
		return model.Record{}, false
	}
	lon, okLon := floatValue(f.Geometry.Coordinates[0])
	lat, okLat := floatValue(f.Geometry.Coordinates[1])
	loc := model.Location{Lat: lat, Lon: lon}
	if !okLon || !okLat || !loc.Valid() {
		return model.Record{}, false
	}

	props := f.Properties
	if props == nil {
		props = map[string]any{}
	}

	rec := model.Record{
		Name:        textutil.FirstNonEmpty(textutil.CleanText(stringValue(props["Name"])), arcgisDefaultName),
		OrgName:     textutil.CleanText(stringValue(props["org_name"])),
		Description: textutil.CleanText(stringValue(props["description"])),
		Address:     arcgisAddress(props),
		Location:    loc,
		HoursText:   stringValue(props["hours"]),
		Source:      TagArcGISLA,
	}

	if id, ok := parseLeadingInt(stringValue(props["post_id"])); ok {
		rec.PostID = &id
	}
	for _, k := range []string{"cat1", "cat2", "cat3"} {
		if c := textutil.CleanText(stringValue(props[k])); c != "" {
			rec.Categories = append(rec.Categories, c)
		}
	}

	rec.Hours = ParseFreeTextHours(rec.HoursText)
	rec.Phones = ParseFreeTextPhones(stringValue(props["phones"]))
	if website, _ := textutil.NormalizeURL(stringValue(props["url"])); website != "" {
		rec.Websites = []string{website}
	}
	if email := textutil.CleanText(stringValue(props["email"])); email != "" {
		rec.Emails = []string{email}
	}

	rec.UpdatedAt = textutil.EpochMillisToISO(stringValue(props["date_updated"]))
	if rec.UpdatedAt == "" {
		if t, ok := textutil.ParseISO(stringValue(props["date_updated"])); ok {
			rec.UpdatedAt = textutil.FormatISO(t)
		}
	}
	if t, ok := textutil.ParseISO(rec.UpdatedAt); ok {
		rec.Modified = &t
	}

	objectID := firstValue(props, "OBJECTID", "ObjectId")
	if id := stringValue(objectID); id != "" {
		rec.SiteID = arcgisSitePrefix + ":OBJECTID-" + id
	} else {
		rec.SiteID = arcgisSitePrefix + ":HASH-" + arcgisFallbackHash(rec)
	}

	raw := model.Raw(props).Clone()
	raw["OBJECTID"] = objectID
	raw["link"] = props["link"]
	rec.Raw = raw

	return rec, true
}

func arcgisAddress(props map[string]any) model.Address {
	return model.Address{
		Street1: textutil.TitleCase(textutil.CleanText(firstString(props, "addrln1", "Address", "ADDRESS"))),
		Street2: textutil.TitleCase(textutil.CleanText(stringValue(props["addrln2"]))),
		City:    textutil.TitleCase(textutil.CleanText(firstString(props, "city", "City", "CITY"))),
		State:   textutil.State(firstString(props, "state", "State", "STATE")),
		Zip:     textutil.Zip(firstString(props, "zip", "Zip", "ZIP")),
	}
}

// arcgisFallbackHash identifies a feature without an OBJECTID by its name
// and position so reruns produce the same site id.
func arcgisFallbackHash(rec model.Record) string {
	return textutil.ShortHash(strings.Join([]string{
		rec.Name,
		rec.Address.Joined(),
		formatCoord(rec.Location.Lat),
		formatCoord(rec.Location.Lon),
	}, "|"))
}
