package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wefrigerator/fridge-ingest/internal/model"
)

var now = time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestText_UnionRescueMission(t *testing.T) {
	rec := &model.Record{
		Name:        "Union Rescue Mission",
		Description: "Emergency shelter and free meals",
		Modified:    ptr(time.UnixMilli(1715040000000).UTC()),
	}

	d := Text{}.Classify(rec, now)

	assert.Equal(t, model.SiteShelter, d.SiteType)
	assert.Subset(t, d.ServiceTags, []model.ServiceTag{model.ServiceShelter, model.ServiceCongregateMeal})
	assert.Equal(t, model.FreshUnder12, d.Freshness)
	assert.Contains(t, d.PopulationTags, model.PopHomeless)
	assert.Equal(t, model.OrgNonprofit, d.OrgType)
	assert.Equal(t, "Union Rescue Mission", d.OrgRootName)
	assert.Empty(t, d.AccessModel)
}

func TestText_SiteTypeOrder(t *testing.T) {
	tests := []struct {
		name string
		rec  model.Record
		want model.SiteType
	}{
		{"food bank beats shelter", model.Record{Description: "Food bank with shelter referrals"}, model.SiteFoodBank},
		{"distributes to agencies", model.Record{Description: "Distributes to member agencies"}, model.SiteFoodBank},
		{"senior needs meal keyword", model.Record{Description: "Senior center lunch"}, ""},
		{"senior meals", model.Record{Description: "Senior meal program"}, model.SiteSeniorMeals},
		{"soup kitchen", model.Record{Description: "Soup kitchen open daily"}, model.SiteSoupKitchen},
		{"gov center needs both", model.Record{Description: "City of Pasadena recreation and parks"}, model.SiteGovCenter},
		{"gov keyword alone", model.Record{Description: "County office"}, ""},
		{"church program", model.Record{Name: "First Baptist Church"}, model.SiteChurchProgram},
		{"youth center", model.Record{Description: "Boys and Girls club"}, model.SiteYouthCenter},
		{"multi service", model.Record{Description: "Counseling and legal aid"}, model.SiteMultiService},
		{"pantry from category", model.Record{Categories: []string{"Food Pantry"}}, model.SiteFoodPantry},
		{"nothing", model.Record{Name: "Office"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			assert.Equal(t, tt.want, Text{}.Classify(&rec, now).SiteType)
		})
	}
}

func TestText_ServiceTagsAccumulate(t *testing.T) {
	rec := &model.Record{
		Description: "Emergency food, meals on wheels, Thanksgiving baskets, utility assistance, tutoring and dental care",
		Categories:  []string{"Food Distribution", "Emergency Food"},
	}

	d := Text{}.Classify(rec, now)
	assert.ElementsMatch(t, []model.ServiceTag{
		model.ServiceFoodPantry,
		model.ServiceHomeDelivered,
		model.ServiceHolidayMeal,
		model.ServiceUtilityAid,
		model.ServiceYouthPrograms,
		model.ServiceHealthClinic,
	}, d.ServiceTags)
}

func TestText_AccessModel(t *testing.T) {
	tests := []struct {
		hours, desc string
		want        model.AccessModel
	}{
		{"Open 24 hours", "", model.AccessTwentyFourSeven},
		{"1st and 3rd Wednesday 9am", "", model.AccessScheduledDays},
		{"", "Distribution on a designated day", model.AccessScheduledDays},
		{"", "By appointment only", model.AccessAppointment},
		{"", "Walk-in welcome", model.AccessWalkIn},
		{"Mon-Fri 9am-5pm", "", model.AccessWalkIn},
		{"", "", ""},
	}
	for _, tt := range tests {
		rec := &model.Record{HoursText: tt.hours, Description: tt.desc}
		assert.Equal(t, tt.want, Text{}.Classify(rec, now).AccessModel, "hours=%q desc=%q", tt.hours, tt.desc)
	}
}

func TestText_OrgType(t *testing.T) {
	assert.Equal(t, model.OrgFaithBased, Text{}.Classify(&model.Record{Name: "St. Mark's Catholic Church"}, now).OrgType)
	assert.Equal(t, model.OrgGovernment, Text{}.Classify(&model.Record{OrgName: "County of Los Angeles Department of Public Health"}, now).OrgType)
	assert.Equal(t, model.OrgCollective, Text{}.Classify(&model.Record{Description: "Neighborhood mutual aid network"}, now).OrgType)
	assert.Equal(t, model.OrgNonprofit, Text{}.Classify(&model.Record{Name: "Helping Hands"}, now).OrgType)
}

func TestText_PopulationTags(t *testing.T) {
	rec := &model.Record{
		Description: "Serving senior citizens, families with children, military veterans and people living with HIV. Residents of 90012 only",
		HoursText:   "Teen night Fridays",
	}
	d := Text{}.Classify(rec, now)
	assert.ElementsMatch(t, []model.PopulationTag{
		model.PopSeniors, model.PopFamilies, model.PopHIVAIDS, model.PopZipRestricted, model.PopYouth, model.PopVeterans,
	}, d.PopulationTags)
}

func TestTags_SilverLakeFridge(t *testing.T) {
	rec := &model.Record{
		Name: "Silver Lake Fridge",
		Tags: map[string]string{
			"amenity":       "food_sharing",
			"name":          "Silver Lake Fridge",
			"opening_hours": "24/7",
		},
	}

	d := Tags{}.Classify(rec, now)

	assert.Equal(t, model.SiteCommunityFridge, d.SiteType)
	assert.Subset(t, d.ServiceTags, []model.ServiceTag{model.ServiceCommunityFridge, model.ServiceMutualAid})
	assert.Equal(t, model.AccessTwentyFourSeven, d.AccessModel)
	assert.Equal(t, model.OrgCollective, d.OrgType)
	assert.Equal(t, "Silver Lake Fridge", d.OrgRootName)
	assert.Empty(t, d.Freshness)
}

func TestTags_SiteType(t *testing.T) {
	tests := []struct {
		tags map[string]string
		want model.SiteType
	}{
		{map[string]string{"amenity": "food_bank"}, model.SiteFoodBank},
		{map[string]string{"amenity": "social_facility", "social_facility": "soup_kitchen"}, model.SiteSoupKitchen},
		{map[string]string{"amenity": "social_facility", "social_facility:for": "homeless"}, model.SiteShelter},
		{map[string]string{"amenity": "shelter"}, model.SiteShelter},
		{map[string]string{"amenity": "social_facility", "social_facility": "outreach"}, ""},
		{map[string]string{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tags{}.Classify(&model.Record{Tags: tt.tags}, now).SiteType, "%v", tt.tags)
	}
}

func TestTags_ServiceAndPopulation(t *testing.T) {
	rec := &model.Record{Tags: map[string]string{
		"amenity":     "give_box",
		"description": "Free store and pantry shelf, hot meal on Sundays for unhoused neighbors",
		"access":      "permissive",
	}}
	d := Tags{}.Classify(rec, now)

	assert.ElementsMatch(t, []model.ServiceTag{model.ServiceFoodPantry, model.ServiceFreeStore, model.ServiceCongregateMeal}, d.ServiceTags)
	assert.ElementsMatch(t, []model.PopulationTag{model.PopHomeless, model.PopAccessPermissive}, d.PopulationTags)
}

func TestTags_AccessModel(t *testing.T) {
	tests := []struct {
		tags map[string]string
		want model.AccessModel
	}{
		{map[string]string{"opening_hours": "Always Open"}, model.AccessTwentyFourSeven},
		{map[string]string{"access": "customers", "opening_hours": "Mo-Fr 09:00-17:00"}, model.AccessAppointment},
		{map[string]string{"opening_hours": "Mo-Fr 09:00-17:00"}, model.AccessScheduledDays},
		{map[string]string{"amenity": "food_sharing"}, model.AccessWalkIn},
		{map[string]string{"amenity": "food_bank"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tags{}.Classify(&model.Record{Tags: tt.tags}, now).AccessModel, "%v", tt.tags)
	}
}

func TestTags_OrgType(t *testing.T) {
	tests := []struct {
		tags map[string]string
		want model.OrgType
	}{
		{map[string]string{"operator": "Grace Chapel"}, model.OrgFaithBased},
		{map[string]string{"operator": "LA County Parks"}, model.OrgGovernment},
		{map[string]string{"name": "Grassroots Kitchen"}, model.OrgCollective},
		{map[string]string{"operator": "Helping Hands Inc"}, model.OrgNonprofit},
		{map[string]string{"name": "Smith Foundation Pantry"}, model.OrgNonprofit},
		{map[string]string{"name": "Pantry"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tags{}.Classify(&model.Record{Tags: tt.tags}, now).OrgType, "%v", tt.tags)
	}
}

func TestFreshness(t *testing.T) {
	day := 24 * time.Hour
	assert.Equal(t, model.FreshUnder12, Freshness(ptr(now.Add(-359*day)), now))
	assert.Equal(t, model.Fresh12To24, Freshness(ptr(now.Add(-360*day)), now))
	assert.Equal(t, model.Fresh12To24, Freshness(ptr(now.Add(-719*day)), now))
	assert.Equal(t, model.FreshOver24, Freshness(ptr(now.Add(-720*day)), now))
	assert.Equal(t, model.FreshUnder12, Freshness(ptr(now.Add(30*day)), now))
	assert.Empty(t, Freshness(nil, now))
}

func TestOrgRootName(t *testing.T) {
	tests := []struct {
		name, org, domain, want string
	}{
		{"Anything", "  Parent Org  ", "", "Parent Org"},
		{"Salvation Army - Hollywood", "", "", "Salvation Army"},
		{"Hope Center — East", "", "", "Hope Center"},
		{"LA Kitchen - Bread And Roses Cafe", "", "", "LA Kitchen"},
		{"PATH - Homeless Service Center", "", "", "PATH"},
		{"Food Forward - Campus", "", "", "Food Forward"},
		{"Meals Program - 2", "", "", "Meals Program"},
		{"St. Mark's Church (Main)", "", "", "St. Mark's Church"},
		{"", "", "stmarks.org", "stmarks"},
		{"", "", "", ""},
		{"- North", "", "", "- North"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OrgRootName(tt.name, tt.org, tt.domain), "name=%q", tt.name)
	}
}
