// Package model defines the canonical site record produced by the ingestion
// pipeline and the intermediate record adapters hand to the classifier.
package model

import (
	"encoding/json"
	"maps"
	"math"
	"strings"

	"github.com/wefrigerator/fridge-ingest/internal/textutil"
)

// Address is a structured postal address. Every field may be empty.
type Address struct {
	Street1 string `json:"street1,omitempty"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// Parts returns the non-empty components in street1, street2, city, state, zip order.
func (a Address) Parts() []string {
	var parts []string
	for _, p := range []string{a.Street1, a.Street2, a.City, a.State, a.Zip} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// Joined comma-joins the non-empty components.
func (a Address) Joined() string {
	return strings.Join(a.Parts(), ", ")
}

// Location is a WGS84 point.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both coordinates are finite, in range, and not the
// zero placeholder upstream feeds use for "unknown".
func (l Location) Valid() bool {
	if math.IsNaN(l.Lat) || math.IsInf(l.Lat, 0) || math.IsNaN(l.Lon) || math.IsInf(l.Lon, 0) {
		return false
	}
	if l.Lat == 0 || l.Lon == 0 {
		return false
	}
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180
}

// Hours is one opening-hours entry. Parsed is false when the upstream text
// could not be interpreted; the cleaned text is then kept in Notes.
type Hours struct {
	Days   string `json:"days"`
	Opens  string `json:"opens"`
	Closes string `json:"closes"`
	Notes  string `json:"notes"`
	Parsed bool   `json:"parsed"`
}

// MarshalJSON writes empty opens, closes and notes as null.
func (h Hours) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Days   string  `json:"days"`
		Opens  *string `json:"opens"`
		Closes *string `json:"closes"`
		Notes  *string `json:"notes"`
		Parsed bool    `json:"parsed"`
	}{
		Days:   h.Days,
		Opens:  nullable(h.Opens),
		Closes: nullable(h.Closes),
		Notes:  nullable(h.Notes),
		Parsed: h.Parsed,
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Phone is a contact number with an optional label and extension.
type Phone struct {
	Label  string `json:"label,omitempty"`
	Number string `json:"number"`
	Ext    string `json:"ext,omitempty"`
}

// Flags are the per-site quality flags.
type Flags struct {
	AddressGeoMismatch bool `json:"flag_address_geo_mismatch"`
	UnparseableHours   bool `json:"flag_unparseable_hours"`
	BrokenURL          bool `json:"flag_broken_url"`
	StaleRecord        bool `json:"flag_stale_record"`
	SparseRecord       bool `json:"flag_sparse_record"`
}

// Raw is the provider payload retained on a site for provenance. Pipeline
// stages treat it as opaque except for the source_merge entry added on merge.
type Raw map[string]any

// Clone returns a shallow copy of r.
func (r Raw) Clone() Raw {
	if r == nil {
		return Raw{}
	}
	return maps.Clone(r)
}

// Site is the canonical record for one real-world service location.
type Site struct {
	SiteID             string          `json:"site_id"`
	PostID             *int64          `json:"post_id"`
	Name               string          `json:"name"`
	OrgRootName        string          `json:"org_root_name,omitempty"`
	OrgType            OrgType         `json:"org_type,omitempty"`
	SiteType           SiteType        `json:"site_type,omitempty"`
	ServiceTags        []ServiceTag    `json:"service_tags"`
	PopulationTags     []PopulationTag `json:"population_tags"`
	AccessModel        AccessModel     `json:"access_model,omitempty"`
	Description        string          `json:"description,omitempty"`
	Address            Address         `json:"address"`
	Location           Location        `json:"location"`
	Hours              []Hours         `json:"hours"`
	Phones             []Phone         `json:"phones"`
	Website            string          `json:"website,omitempty"`
	WebsiteDomain      string          `json:"website_domain,omitempty"`
	Email              string          `json:"email,omitempty"`
	Source             string          `json:"source"`
	UpdatedAt          string          `json:"updated_at,omitempty"`
	FreshnessBucket    FreshnessBucket `json:"freshness_bucket,omitempty"`
	ScoreRecency       float64         `json:"score_recency"`
	ScoreOpenNow       float64         `json:"score_open_now"`
	ScoreSpecificity   float64         `json:"score_specificity"`
	ScorePopulationFit float64         `json:"score_population_fit"`
	Flags              Flags           `json:"flags"`
	Raw                Raw             `json:"raw"`
}

// PhoneDigitSet returns the digits-only forms of the site's phones.
func (s *Site) PhoneDigitSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Phones))
	for _, p := range s.Phones {
		if d := textutil.PhoneDigits(p.Number); d != "" {
			set[d] = struct{}{}
		}
	}
	return set
}

// HasParsedHours reports whether any hours entry was parsed.
func (s *Site) HasParsedHours() bool {
	for _, h := range s.Hours {
		if h.Parsed {
			return true
		}
	}
	return false
}

// ClusteredSite is the narrow projection of a site listed inside an OrgCluster.
type ClusteredSite struct {
	SiteID         string          `json:"site_id"`
	Name           string          `json:"name"`
	SiteType       SiteType        `json:"site_type,omitempty"`
	Address        Address         `json:"address"`
	Location       Location        `json:"location"`
	ServiceTags    []ServiceTag    `json:"service_tags"`
	PopulationTags []PopulationTag `json:"population_tags"`
}

// OrgCluster groups sites that share a parent organization and web domain.
type OrgCluster struct {
	OrgRootName   string          `json:"org_root_name"`
	OrgType       OrgType         `json:"org_type,omitempty"`
	Website       string          `json:"website,omitempty"`
	WebsiteDomain string          `json:"website_domain,omitempty"`
	Sites         []ClusteredSite `json:"sites"`
}
