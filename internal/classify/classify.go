// Package classify derives site type, tag sets, access model, org type, org
// root name, and freshness from an intermediate record. Every rule set is a
// declarative table; single-valued fields take the first matching rule and
// tag sets accumulate every match.
package classify

import (
	"regexp"
	"strings"
	"time"

	"github.com/wefrigerator/fridge-ingest/internal/model"
	"github.com/wefrigerator/fridge-ingest/internal/textutil"
)

// Derived holds the classifier output for one record. Empty values mean no
// rule matched.
type Derived struct {
	SiteType       model.SiteType
	ServiceTags    []model.ServiceTag
	PopulationTags []model.PopulationTag
	AccessModel    model.AccessModel
	OrgType        model.OrgType
	OrgRootName    string
	Freshness      model.FreshnessBucket
}

// Classifier derives classification fields from a record. Implementations
// are pure; now only feeds the freshness bucket.
type Classifier interface {
	Classify(rec *model.Record, now time.Time) Derived
}

// Text classifies records whose meaning lives in free-text descriptions and
// category labels, such as the county charitable food listing.
type Text struct{}

// Classify implements Classifier.
func (Text) Classify(rec *model.Record, now time.Time) Derived {
	cats := strings.Join(rec.Categories, " ")
	_, domain := textutil.NormalizeURL(rec.Website())

	d := Derived{
		ServiceTags:    allMatches(textServiceTagRules, input{text: joinLower(rec.Description, cats)}),
		PopulationTags: allMatches(textPopulationRules, input{text: joinLower(rec.Description, rec.HoursText)}),
		OrgRootName:    OrgRootName(rec.Name, rec.OrgName, domain),
		Freshness:      Freshness(rec.Modified, now),
	}

	d.SiteType, _ = firstMatch(textSiteTypeRules, input{text: joinLower(rec.Description, cats, rec.Name)})

	access, ok := firstMatch(textAccessRules, input{text: joinLower(rec.HoursText, rec.Description)})
	switch {
	case ok:
		d.AccessModel = access
	case strings.TrimSpace(rec.HoursText) != "":
		d.AccessModel = model.AccessWalkIn
	}

	// Every listing in a free-text directory is an agency record, so
	// unmatched organizations default to nonprofit.
	d.OrgType = model.OrgNonprofit
	if org, ok := firstMatch(textOrgTypeRules, input{text: joinLower(rec.Name, rec.OrgName, rec.Description)}); ok {
		d.OrgType = org
	}

	return d
}

// Tags classifies records described by OpenStreetMap-style tags.
type Tags struct{}

var (
	alwaysOpenRe = regexp.MustCompile(`^(24/7|24 hours|always open)$`)
	dayPrefixRe  = regexp.MustCompile(`\b(Mo|Tu|We|Th|Fr|Sa|Su)\b`)
)

// Classify implements Classifier.
func (Tags) Classify(rec *model.Record, now time.Time) Derived {
	tags := rec.Tags
	if tags == nil {
		tags = map[string]string{}
	}
	_, domain := textutil.NormalizeURL(rec.Website())

	desc := textutil.FirstNonEmpty(tags["description"], tags["note"])

	d := Derived{
		ServiceTags: allMatches(tagServiceTagRules, input{text: strings.ToLower(desc), tags: tags}),
		PopulationTags: allMatches(tagPopulationRules, input{
			text: joinLower(tags["description"], tags["note"], tags["social_facility:for"], tags["name"]),
			tags: tags,
		}),
		OrgRootName: OrgRootName(textutil.CleanText(tags["name"]), textutil.CleanText(tags["operator"]), domain),
		Freshness:   Freshness(rec.Modified, now),
		AccessModel: tagAccessModel(tags),
	}

	d.SiteType, _ = firstMatch(tagSiteTypeRules, input{tags: tags})
	d.OrgType, _ = firstMatch(tagOrgTypeRules, input{
		text: joinLower(tags["operator"], tags["name"], tags["description"]),
		tags: tags,
	})

	return d
}

func tagAccessModel(tags map[string]string) model.AccessModel {
	hours := tags["opening_hours"]
	if alwaysOpenRe.MatchString(strings.ToLower(strings.TrimSpace(hours))) {
		return model.AccessTwentyFourSeven
	}
	switch strings.ToLower(tags["access"]) {
	case "private", "customers":
		return model.AccessAppointment
	}
	if hours != "" && dayPrefixRe.MatchString(hours) {
		return model.AccessScheduledDays
	}
	if tags["amenity"] == "food_sharing" {
		return model.AccessWalkIn
	}
	return ""
}

// monthDuration is the 30-day month used for freshness arithmetic.
const monthDuration = 30 * 24 * time.Hour

// Freshness buckets the age of modified relative to now in 30-day months.
func Freshness(modified *time.Time, now time.Time) model.FreshnessBucket {
	if modified == nil || modified.IsZero() {
		return ""
	}
	months := float64(now.Sub(*modified)) / float64(monthDuration)
	switch {
	case months < 12:
		return model.FreshUnder12
	case months < 24:
		return model.Fresh12To24
	default:
		return model.FreshOver24
	}
}

// Suffixes stripped from a site name to recover the parent organization.
var orgSuffixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*[-–—]\s*(Hollywood|Valley|Downtown|East|West|North|South|Central)\s*$`),
	regexp.MustCompile(`(?i)\s*[-–—]\s*Bread\s+And\s+Roses\s+Cafe\s*$`),
	regexp.MustCompile(`(?i)\s*[-–—]\s*Homeless\s+Service\s+Center\s*$`),
	regexp.MustCompile(`(?i)\s*[-–—]\s*(Campus|Center|Site|Location|Branch)\s*$`),
	regexp.MustCompile(`\s*[-–—]\s*\d+\s*$`),
	regexp.MustCompile(`(?i)\s*\((Main|Branch|Site)\)\s*$`),
}

// OrgRootName prefers an explicit organization name, then the site name with
// branch and location suffixes stripped, then the first label of the
// website domain.
func OrgRootName(name, orgName, websiteDomain string) string {
	if o := strings.TrimSpace(orgName); o != "" {
		return o
	}
	if strings.TrimSpace(name) == "" {
		if websiteDomain == "" {
			return ""
		}
		return textutil.FirstLabel(websiteDomain)
	}

	cleaned := strings.TrimSpace(name)
	for _, re := range orgSuffixes {
		cleaned = strings.TrimSpace(re.ReplaceAllString(cleaned, ""))
	}
	if cleaned == "" {
		return name
	}
	return cleaned
}
