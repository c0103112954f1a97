package classify

import "github.com/wefrigerator/fridge-ingest/internal/model"

// Rule tables for tag-driven feeds (OpenStreetMap conventions).

var tagSiteTypeRules = []rule[model.SiteType]{
	{model.SiteCommunityFridge, tagIs("amenity", "food_sharing")},
	{model.SiteFoodBank, tagIs("amenity", "food_bank")},
	{model.SiteSoupKitchen, allOf(tagIs("amenity", "social_facility"), tagIs("social_facility", "soup_kitchen", "food_bank"))},
	{model.SiteShelter, allOf(tagIs("amenity", "social_facility"), anyOf(tagIs("social_facility", "shelter"), tagIs("social_facility:for", "homeless")))},
	{model.SiteShelter, tagIs("amenity", "shelter")},
}

// Service rules read the description/note text.
var tagServiceTagRules = []rule[model.ServiceTag]{
	{model.ServiceCommunityFridge, tagIs("amenity", "food_sharing")},
	{model.ServiceMutualAid, tagIs("amenity", "food_sharing")},
	{model.ServiceFoodBankWholesale, tagIs("amenity", "food_bank")},
	{model.ServiceFoodPantry, contains("pantry", "food distribution")},
	{model.ServiceFreeStore, anyOf(tagIs("amenity", "give_box"), contains("free store"))},
	{model.ServiceCongregateMeal, contains("meal", "soup kitchen")},
	{model.ServiceShelter, anyOf(tagIs("amenity", "shelter"), tagIs("social_facility", "shelter"))},
}

// Population rules read description, note, social_facility:for and name.
var tagPopulationRules = []rule[model.PopulationTag]{
	{model.PopSeniors, re(`\b(senior|elderly|60\+|over 60)\b`)},
	{model.PopFamilies, re(`\b(families|children|kids|youth programs)\b`)},
	{model.PopHomeless, re(`\b(homeless|unhoused|housing insecure)\b`)},
	{model.PopVeterans, re(`\b(veteran|vets)\b`)},
	{model.PopYouth, re(`\b(youth|teen|young adult)\b`)},
	{model.PopAccessPermissive, tagIs("access", "permissive")},
}

// Org type rules read operator, name and description.
var tagOrgTypeRules = []rule[model.OrgType]{
	{model.OrgFaithBased, re(`\b(church|ministry|parish|synagogue|mosque|temple|cathedral|chapel)\b`)},
	{model.OrgGovernment, re(`\b(city|county|state|federal|municipal|government|public|dept)\b`)},
	{model.OrgCollective, anyOf(re(`\b(collective|mutual aid|community|grassroots|volunteer)\b`), tagIs("amenity", "food_sharing"))},
	{model.OrgNonprofit, func(in input) bool {
		return in.tags["operator"] != "" || contains("foundation", "organization")(input{text: joinLower(in.tags["name"])})
	}},
}
