// Package scorer computes relevance scores and quality flags for canonical
// sites. Every score lies in [0, 1].
package scorer

import (
	"github.com/wefrigerator/fridge-ingest/internal/model"
	"github.com/wefrigerator/fridge-ingest/internal/textutil"
)

// Recency scores per freshness bucket. Records without a timestamp score as stale.
const (
	RecencyFresh = 1.0
	RecencyAging = 0.6
	RecencyStale = 0.2
)

// Placeholder scores until query-time context exists.
const (
	OpenNowScore       = 0.0
	PopulationFitScore = 0.6
)

// Specificity weights in tenths, so sums stay exact.
const (
	specificSiteTypeTenths = 5
	specificServiceTenths  = 3
	specificityCapTenths   = 10
)

var specificSiteTypes = map[model.SiteType]bool{
	model.SiteCommunityFridge: true,
	model.SiteFoodPantry:      true,
	model.SiteFoodBank:        true,
	model.SiteSoupKitchen:     true,
	model.SiteSeniorMeals:     true,
}

var foodServiceTags = map[model.ServiceTag]bool{
	model.ServiceCommunityFridge:   true,
	model.ServiceMutualAid:         true,
	model.ServiceFreeStore:         true,
	model.ServiceFoodPantry:        true,
	model.ServiceFoodBankWholesale: true,
	model.ServiceCongregateMeal:    true,
	model.ServiceHomeDelivered:     true,
	model.ServiceHolidayMeal:       true,
}

// Recency maps a freshness bucket to its score.
func Recency(bucket model.FreshnessBucket) float64 {
	switch bucket {
	case model.FreshUnder12:
		return RecencyFresh
	case model.Fresh12To24:
		return RecencyAging
	default:
		return RecencyStale
	}
}

// Specificity rewards food-focused site types and service tags. The result
// is one of 0, 0.3, 0.5, 0.8.
func Specificity(siteType model.SiteType, tags []model.ServiceTag) float64 {
	tenths := 0
	if specificSiteTypes[siteType] {
		tenths += specificSiteTypeTenths
	}
	for _, t := range tags {
		if foodServiceTags[t] {
			tenths += specificServiceTenths
			break
		}
	}
	return float64(min(tenths, specificityCapTenths)) / 10
}

// Apply sets the four scores and the derivable quality flags on s. The
// geo-mismatch flag is left as is; only merging sets it.
func Apply(s *model.Site) {
	s.ScoreRecency = Recency(s.FreshnessBucket)
	s.ScoreOpenNow = OpenNowScore
	s.ScoreSpecificity = Specificity(s.SiteType, s.ServiceTags)
	s.ScorePopulationFit = PopulationFitScore

	mismatch := s.Flags.AddressGeoMismatch
	s.Flags = QualityFlags(s)
	s.Flags.AddressGeoMismatch = mismatch
}

// QualityFlags derives the per-site flags. AddressGeoMismatch is always
// false here.
func QualityFlags(s *model.Site) model.Flags {
	var f model.Flags
	for _, h := range s.Hours {
		if !h.Parsed {
			f.UnparseableHours = true
			break
		}
	}
	f.BrokenURL = s.Website != "" && !textutil.ValidURL(s.Website)
	f.StaleRecord = s.FreshnessBucket == model.FreshOver24
	f.SparseRecord = len(s.Phones) == 0 && len(s.Hours) == 0
	return f
}
