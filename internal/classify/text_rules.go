package classify

import "github.com/wefrigerator/fridge-ingest/internal/model"

// Rule tables for free-text feeds. Inputs are lowercased before matching.

var textSiteTypeRules = []rule[model.SiteType]{
	{model.SiteFoodBank, re(`\b(food\s+bank|distribut(es?|ing)\s+to\s+(member\s+)?(charities|agencies))\b`)},
	{model.SiteShelter, re(`\b(shelter|emergency\s+housing|24\s*hour.*\bbed)\b`)},
	{model.SiteSeniorMeals, re(`\b(senior|60\s*\+|congregate\s+dining|dining\s+center|home\s+delivered\s+meal)\b`, `\bmeal`)},
	{model.SiteSoupKitchen, re(`\b(soup\s+kitchen|cafe|dining|meals?\s+served|free\s+meal)\b`)},
	{model.SiteGovCenter, re(`\b(city\s+of|county|department|municipal|government)\b`, `\b(recreation|human\s+services|social\s+services)\b`)},
	{model.SiteChurchProgram, re(`\b(church|ministry|parish|synagogue|mosque|temple|faith\s+based)\b`)},
	{model.SiteYouthCenter, re(`\b(youth|boys\s+and\s+girls|ymca|ywca)\b`)},
	{model.SiteMultiService, re(`\b(counseling|utility\s+aid|employment|job\s+training|immigration|legal\s+aid)\b`)},
	{model.SiteFoodPantry, re(`\b(food|pantry|distribution|emergency)\b`)},
}

var textServiceTagRules = []rule[model.ServiceTag]{
	{model.ServiceFoodPantry, re(`\b(food\s+pantry|emergency\s+food|food\s+distribution)\b`)},
	{model.ServiceFoodBankWholesale, re(`\b(food\s+bank|distribut(es?|ing)\s+to\s+agencies)\b`)},
	{model.ServiceCongregateMeal, re(`\b(congregate\s+meal|dining|cafe|meals?\s+served|free\s+meals?)\b`)},
	{model.ServiceHomeDelivered, re(`\b(home\s+delivered|meals?\s+on\s+wheels)\b`)},
	{model.ServiceHolidayMeal, re(`\b(holiday\s+meal|thanksgiving|christmas)\b`)},
	{model.ServiceShelter, re(`\b(shelter|emergency\s+housing)\b`)},
	{model.ServiceUtilityAid, re(`\b(utility\s+aid|utility\s+assistance|energy\s+assistance)\b`)},
	{model.ServiceCounseling, re(`\b(counseling|therapy|mental\s+health)\b`)},
	{model.ServiceEmployment, re(`\b(employment|job\s+training|job\s+placement|workforce)\b`)},
	{model.ServiceImmigration, re(`\b(immigration|visa|citizenship)\b`)},
	{model.ServiceYouthPrograms, re(`\b(youth\s+program|after\s+school|tutoring|mentoring)\b`)},
	{model.ServiceSeniorServices, re(`\b(senior\s+service|60\s*\+|elderly|aging)\b`)},
	{model.ServiceHealthClinic, re(`\b(health\s+clinic|medical|dental|vision)\b`)},
}

var textPopulationRules = []rule[model.PopulationTag]{
	{model.PopSeniors, re(`\b(senior|60\s*\+|elderly|aging)\b`)},
	{model.PopFamilies, re(`\b(famil(y|ies)|children|kids|parents)\b`)},
	{model.PopHomeless, re(`\b(homeless|unhoused|shelter)\b`)},
	{model.PopHIVAIDS, re(`\b(hiv|aids)\b`)},
	{model.PopUndocumented, re(`\b(undocumented|immigration\s+status|regardless\s+of\s+status)\b`)},
	{model.PopZipRestricted, re(`\b(zip\s+code|restricted\s+to|residents\s+of)\b`)},
	{model.PopYouth, re(`\b(youth|teen|adolescent|young\s+adult)\b`)},
	{model.PopVeterans, re(`\b(veteran|military|va)\b`)},
}

var textAccessRules = []rule[model.AccessModel]{
	{model.AccessTwentyFourSeven, re(`\b(24\s*hours?|24\s*/\s*7|open\s+24)\b`)},
	{model.AccessScheduledDays, anyOf(
		re(`\b(\d+(?:st|nd|rd|th)\s+(?:and|&)\s+\d+(?:st|nd|rd|th))\b`),
		re(`\b(specific\s+day|designated\s+day)\b`),
	)},
	{model.AccessAppointment, re(`\b(appointment|call\s+ahead|by\s+appointment|schedule)\b`)},
	{model.AccessWalkIn, re(`\b(walk[\s-]?in|open\s+to\s+public|no\s+appointment)\b`)},
}

var textOrgTypeRules = []rule[model.OrgType]{
	{model.OrgFaithBased, re(`\b(church|ministry|parish|synagogue|mosque|temple|cathedral|baptist|catholic|lutheran|methodist|presbyterian)\b`)},
	{model.OrgGovernment, re(`\b(city\s+of|county|department|municipal|government|public\s+health)\b`)},
	{model.OrgCollective, re(`\b(mutual\s+aid|collective|grassroots)\b`)},
}
