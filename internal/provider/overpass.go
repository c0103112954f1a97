package provider

import (
	"encoding/json"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/wefrigerator/fridge-ingest/internal/classify"
	"github.com/wefrigerator/fridge-ingest/internal/model"
	"github.com/wefrigerator/fridge-ingest/internal/textutil"
)

// Overpass defaults: every amenity=food_sharing feature in the City of Los
// Angeles administrative area, with way/relation centers and edit metadata.
const (
	DefaultOverpassURL   = "https://overpass-api.de/api/interpreter"
	DefaultOverpassQuery = `[out:json][timeout:25];
area["name"="Los Angeles"]["admin_level"="8"]->.a;
(
  node["amenity"="food_sharing"](area.a);
  way["amenity"="food_sharing"](area.a);
  relation["amenity"="food_sharing"](area.a);
);
out center meta;`
)

const overpassDefaultName = "Community Fridge"

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Overpass adapts OpenStreetMap Overpass API results.
type Overpass struct {
	url        string
	query      string
	thresholdM float64
}

// NewOverpass creates the adapter. Empty url or query select the defaults.
func NewOverpass(url, query string, thresholdM float64) *Overpass {
	if url == "" {
		url = DefaultOverpassURL
	}
	if query == "" {
		query = DefaultOverpassQuery
	}
	return &Overpass{url: url, query: query, thresholdM: thresholdM}
}

// Name implements Provider.
func (o *Overpass) Name() string { return TagOverpass }

// Route implements Provider.
func (o *Overpass) Route() string { return "overpass" }

// Traits implements Provider.
func (o *Overpass) Traits() Traits {
	return Traits{
		Label:            "OSM Overpass",
		CountKey:         "total_elements",
		DedupeThresholdM: o.thresholdM,
		Classifier:       classify.Tags{},
		ReportSites:      true,
	}
}

// Request implements Provider.
func (o *Overpass) Request() Request {
	return Request{
		Method:      http.MethodPost,
		URL:         o.url,
		Body:        []byte(o.query),
		ContentType: "text/plain",
	}
}

type overpassResult struct {
	Elements []json.RawMessage `json:"elements"`
}

type osmCenter struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type osmElement struct {
	Type      string            `json:"type"`
	ID        int64             `json:"id"`
	Lat       *float64          `json:"lat"`
	Lon       *float64          `json:"lon"`
	Center    *osmCenter        `json:"center"`
	Tags      map[string]string `json:"tags"`
	Version   int               `json:"version"`
	Timestamp string            `json:"timestamp"`
}

// location returns node coordinates, or the center for ways and relations.
func (e *osmElement) location() (model.Location, bool) {
	var lat, lon *float64
	switch e.Type {
	case "node":
		lat, lon = e.Lat, e.Lon
	case "way", "relation":
		if e.Center != nil {
			lat, lon = e.Center.Lat, e.Center.Lon
		}
	}
	if lat == nil || lon == nil {
		return model.Location{}, false
	}
	loc := model.Location{Lat: *lat, Lon: *lon}
	return loc, loc.Valid()
}

// Parse implements Provider.
func (o *Overpass) Parse(payload []byte, now time.Time) (*Batch, error) {
	var res overpassResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, eris.Wrap(err, "provider: decode overpass result")
	}

	batch := &Batch{Total: len(res.Elements), Records: make([]model.Record, 0, len(res.Elements))}
	for _, rawElement := range res.Elements {
		var el osmElement
		if err := json.Unmarshal(rawElement, &el); err != nil {
			batch.Dropped++
			continue
		}
		loc, ok := el.location()
		if !ok {
			batch.Dropped++
			continue
		}
		batch.Records = append(batch.Records, o.record(&el, rawElement, loc, now))
	}
	return batch, nil
}

func (o *Overpass) record(el *osmElement, rawElement json.RawMessage, loc model.Location, now time.Time) model.Record {
	tags := el.Tags
	if tags == nil {
		tags = map[string]string{}
	}

	rec := model.Record{
		SiteID:      "osm-" + el.Type + ":" + strconv.FormatInt(el.ID, 10),
		Name:        textutil.FirstNonEmpty(textutil.CleanText(tags["name"]), textutil.CleanText(tags["operator"]), overpassDefaultName),
		OrgName:     textutil.CleanText(tags["operator"]),
		Description: textutil.CleanText(textutil.FirstNonEmpty(tags["description"], tags["note"])),
		Address:     osmAddress(tags),
		Location:    loc,
		HoursText:   tags["opening_hours"],
		Hours:       ParseOpeningHours(tags["opening_hours"]),
		Phones:      osmPhones(tags),
		Websites:    osmWebsites(tags),
		Emails:      osmEmails(tags),
		Tags:        tags,
		Source:      TagOverpass,
		UpdatedAt:   textutil.FormatISO(now),
	}
	if t, ok := textutil.ParseISO(el.Timestamp); ok {
		rec.UpdatedAt = el.Timestamp
		rec.Modified = &t
	}

	rec.Raw = model.Raw{
		"OBJECTID":    el.ID,
		"osm_element": rawElement,
		"source_meta": map[string]any{
			"provider":       "OpenStreetMap",
			"endpoint":       "Overpass API",
			"endpoint_query": o.query,
			"osm_type":       el.Type,
			"osm_id":         el.ID,
			"osm_version":    el.Version,
			"osm_timestamp":  el.Timestamp,
			"last_seen_at":   textutil.FormatISO(now),
			"raw_hash":       RawHash(tags, loc.Lat, loc.Lon),
		},
		"images":   osmImages(tags),
		"websites": rec.Websites,
		"emails":   rec.Emails,
	}
	return rec
}

func osmAddress(tags map[string]string) model.Address {
	street := textutil.CleanText(tags["addr:street"])
	street1 := street
	if house := textutil.CleanText(tags["addr:housenumber"]); house != "" && street != "" {
		street1 = house + " " + street
	}
	state := textutil.State(tags["addr:state"])
	if state == "" {
		state = "CA"
	}
	return model.Address{
		Street1: textutil.TitleCase(street1),
		Street2: textutil.TitleCase(textutil.CleanText(tags["addr:unit"])),
		City:    textutil.TitleCase(textutil.CleanText(tags["addr:city"])),
		State:   state,
		Zip:     textutil.Zip(tags["addr:postcode"]),
	}
}

func osmPhones(tags map[string]string) []model.Phone {
	list := newPhoneList()
	for _, src := range []struct{ key, label string }{
		{"phone", ""},
		{"contact:phone", "Contact"},
		{"contact:mobile", "Mobile"},
	} {
		if n := cleanTaggedNumber(tags[src.key]); n != "" {
			list.add(model.Phone{Label: src.label, Number: n})
		}
	}
	return list.phones
}

func osmEmails(tags map[string]string) []string {
	emails := []string{}
	for _, k := range []string{"email", "contact:email"} {
		e := textutil.CleanText(tags[k])
		if e != "" && emailRe.MatchString(e) && !slices.Contains(emails, e) {
			emails = append(emails, e)
		}
	}
	return emails
}

func osmWebsites(tags map[string]string) []string {
	websites := []string{}
	for _, k := range []string{"website", "contact:website", "url", "contact:instagram"} {
		if u, _ := textutil.NormalizeURL(tags[k]); u != "" && !slices.Contains(websites, u) {
			websites = append(websites, u)
		}
	}
	return websites
}

// osmImages collects image and image:* tag values, primary image first.
func osmImages(tags map[string]string) []string {
	images := []string{}
	if u, _ := textutil.NormalizeURL(tags["image"]); u != "" {
		images = append(images, u)
	}
	keys := make([]string, 0)
	for k := range tags {
		if strings.HasPrefix(k, "image:") {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		if u, _ := textutil.NormalizeURL(tags[k]); u != "" && !slices.Contains(images, u) {
			images = append(images, u)
		}
	}
	return images
}

// RawHash fingerprints an element's tags and position for change detection:
// the first 16 hex characters of SHA-256 over "k1=v1|k2=v2|...|lat|lon" with
// keys sorted and coordinates at seven decimals.
func RawHash(tags map[string]string, lat, lon float64) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + tags[k]
	}
	return textutil.ShortHash(strings.Join(pairs, "|") + "|" + formatCoord(lat) + "|" + formatCoord(lon))
}
