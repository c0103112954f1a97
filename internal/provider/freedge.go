package provider

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/wefrigerator/fridge-ingest/internal/classify"
	"github.com/wefrigerator/fridge-ingest/internal/geo"
	"github.com/wefrigerator/fridge-ingest/internal/model"
	"github.com/wefrigerator/fridge-ingest/internal/textutil"
)

// Freedge defaults.
const (
	DefaultFreedgeURL       = "https://freedge.org/api/locations"
	DefaultFreedgeUserAgent = "Wefrigerator Community Fridge Locator"
)

// Freedge adapts the freedge.org locator. Its response shape is not pinned,
// so coordinates and fields are read from several alternative keys and the
// run is optional: an unreachable upstream yields an empty, successful run.
type Freedge struct {
	url        string
	userAgent  string
	bounds     geo.BBox
	thresholdM float64
}

// NewFreedge creates the adapter. Empty url or userAgent select the
// defaults; a zero bounds selects geo.LosAngeles.
func NewFreedge(url, userAgent string, bounds geo.BBox, thresholdM float64) *Freedge {
	if url == "" {
		url = DefaultFreedgeURL
	}
	if userAgent == "" {
		userAgent = DefaultFreedgeUserAgent
	}
	if bounds.IsZero() {
		bounds = geo.LosAngeles
	}
	return &Freedge{url: url, userAgent: userAgent, bounds: bounds, thresholdM: thresholdM}
}

// Name implements Provider.
func (f *Freedge) Name() string { return TagFreedge }

// Route implements Provider.
func (f *Freedge) Route() string { return "freedge" }

// Traits implements Provider.
func (f *Freedge) Traits() Traits {
	return Traits{
		Label:            "Freedge",
		CountKey:         "total_locations",
		DedupeThresholdM: f.thresholdM,
		Classifier:       classify.Tags{},
		Optional:         true,
		ReportFiltered:   true,
	}
}

// Request implements Provider.
func (f *Freedge) Request() Request {
	return getRequest(f.url, map[string]string{"User-Agent": f.userAgent})
}

// Bounds returns the bounding box locations are filtered to.
func (f *Freedge) Bounds() geo.BBox { return f.bounds }

// Parse implements Provider. The payload is either a JSON array of
// locations or an object with a "locations" array.
func (f *Freedge) Parse(payload []byte, _ time.Time) (*Batch, error) {
	locations, err := freedgeLocations(payload)
	if err != nil {
		return nil, err
	}

	batch := &Batch{Total: len(locations), Records: make([]model.Record, 0, len(locations))}
	for _, raw := range locations {
		var loc map[string]any
		if err := decode(raw, &loc); err != nil || loc == nil {
			batch.Dropped++
			continue
		}
		rec, ok := f.record(loc)
		if !ok {
			batch.Dropped++
			continue
		}
		batch.Records = append(batch.Records, rec)
	}
	return batch, nil
}

func freedgeLocations(payload []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(payload))
	if strings.HasPrefix(trimmed, "[") {
		var list []json.RawMessage
		if err := json.Unmarshal(payload, &list); err != nil {
			return nil, eris.Wrap(err, "provider: decode freedge locations")
		}
		return list, nil
	}
	var wrapped struct {
		Locations []json.RawMessage `json:"locations"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, eris.Wrap(err, "provider: decode freedge locations")
	}
	return wrapped.Locations, nil
}

func (f *Freedge) record(loc map[string]any) (model.Record, bool) {
	lat, okLat := freedgeCoordinate(loc, []string{"lat", "latitude"}, []string{"lat", "latitude"})
	lng, okLng := freedgeCoordinate(loc, []string{"lng", "lon", "longitude"}, []string{"lng", "lon", "longitude"})
	point := model.Location{Lat: lat, Lon: lng}
	if !okLat || !okLng || !point.Valid() || !f.bounds.Contains(lat, lng) {
		return model.Record{}, false
	}

	name := textutil.FirstNonEmpty(textutil.CleanText(firstString(loc, "name", "title")), overpassDefaultName)
	description := textutil.CleanText(firstString(loc, "description", "notes"))
	operator := textutil.CleanText(firstString(loc, "operator", "organization", "org_name"))

	tags := map[string]string{"amenity": "food_sharing", "name": name}
	if description != "" {
		tags["description"] = description
	}
	if operator != "" {
		tags["operator"] = operator
	}

	rec := model.Record{
		Name:        name,
		OrgName:     operator,
		Description: description,
		Address:     freedgeAddress(loc),
		Location:    point,
		Phones:      []model.Phone{},
		Websites:    []string{},
		Emails:      []string{},
		Tags:        tags,
		Source:      TagFreedge,
		Raw:         model.Raw(loc).Clone(),
	}

	if id := stringValue(loc["id"]); id != "" {
		rec.SiteID = id
	} else {
		rec.SiteID = strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
	}

	if oh := textutil.CleanText(stringValue(loc["opening_hours"])); oh != "" {
		tags["opening_hours"] = oh
		rec.HoursText = oh
		rec.Hours = ParseOpeningHours(oh)
	} else {
		rec.HoursText = stringValue(loc["hours"])
		rec.Hours = ParseFreeTextHours(rec.HoursText)
	}

	if n := cleanTaggedNumber(stringValue(loc["phone"])); n != "" {
		rec.Phones = []model.Phone{{Number: n}}
	}
	if u, _ := textutil.NormalizeURL(firstString(loc, "website", "url")); u != "" {
		rec.Websites = []string{u}
	}
	if e := textutil.CleanText(stringValue(loc["email"])); e != "" && emailRe.MatchString(e) {
		rec.Emails = []string{e}
	}

	if t, ok := textutil.ParseISO(firstString(loc, "updated_at", "updatedAt")); ok {
		rec.UpdatedAt = textutil.FormatISO(t)
		rec.Modified = &t
	}

	return rec, true
}

// freedgeCoordinate reads the first non-zero numeric value among the flat
// keys, then among the same keys nested under "coordinates".
func freedgeCoordinate(loc map[string]any, flat, nested []string) (float64, bool) {
	for _, k := range flat {
		if v, ok := floatValue(loc[k]); ok && v != 0 {
			return v, true
		}
	}
	coords, _ := loc["coordinates"].(map[string]any)
	for _, k := range nested {
		if v, ok := floatValue(coords[k]); ok && v != 0 {
			return v, true
		}
	}
	return 0, false
}

// freedgeAddress keeps a single-line address in street1, or assembles the
// structured fields when only those are present.
func freedgeAddress(loc map[string]any) model.Address {
	if line := textutil.CleanText(stringValue(loc["address"])); line != "" {
		return model.Address{Street1: line}
	}
	return model.Address{
		Street1: textutil.TitleCase(textutil.CleanText(stringValue(loc["street"]))),
		City:    textutil.TitleCase(textutil.CleanText(stringValue(loc["city"]))),
		State:   textutil.State(stringValue(loc["state"])),
		Zip:     textutil.Zip(stringValue(loc["zip"])),
	}
}
