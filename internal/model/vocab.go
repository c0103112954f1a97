package model

// SiteType is the primary kind of service offered at a site.
type SiteType string

const (
	SiteCommunityFridge SiteType = "community_fridge"
	SiteFoodPantry      SiteType = "food_pantry"
	SiteFoodBank        SiteType = "food_bank"
	SiteSoupKitchen     SiteType = "soup_kitchen"
	SiteSeniorMeals     SiteType = "senior_meals"
	SiteShelter         SiteType = "shelter"
	SiteMultiService    SiteType = "multi_service"
	SiteChurchProgram   SiteType = "church_program"
	SiteGovCenter       SiteType = "gov_center"
	SiteYouthCenter     SiteType = "youth_center"
)

// ServiceTag names one service a site offers.
type ServiceTag string

const (
	ServiceCommunityFridge   ServiceTag = "community_fridge"
	ServiceMutualAid         ServiceTag = "mutual_aid"
	ServiceFreeStore         ServiceTag = "free_store"
	ServiceFoodPantry        ServiceTag = "food_pantry"
	ServiceFoodBankWholesale ServiceTag = "food_bank_wholesale"
	ServiceCongregateMeal    ServiceTag = "congregate_meal"
	ServiceHomeDelivered     ServiceTag = "home_delivered_meal"
	ServiceHolidayMeal       ServiceTag = "holiday_meal"
	ServiceShelter           ServiceTag = "shelter"
	ServiceUtilityAid        ServiceTag = "utility_aid"
	ServiceCounseling        ServiceTag = "counseling"
	ServiceEmployment        ServiceTag = "employment"
	ServiceImmigration       ServiceTag = "immigration"
	ServiceYouthPrograms     ServiceTag = "youth_programs"
	ServiceSeniorServices    ServiceTag = "senior_services"
	ServiceHealthClinic      ServiceTag = "health_clinic"
)

// AllServiceTags is the closed service vocabulary.
var AllServiceTags = []ServiceTag{
	ServiceCommunityFridge, ServiceMutualAid, ServiceFreeStore, ServiceFoodPantry,
	ServiceFoodBankWholesale, ServiceCongregateMeal, ServiceHomeDelivered, ServiceHolidayMeal,
	ServiceShelter, ServiceUtilityAid, ServiceCounseling, ServiceEmployment,
	ServiceImmigration, ServiceYouthPrograms, ServiceSeniorServices, ServiceHealthClinic,
}

// Valid reports whether t belongs to the closed vocabulary.
func (t ServiceTag) Valid() bool {
	for _, v := range AllServiceTags {
		if v == t {
			return true
		}
	}
	return false
}

// PopulationTag names a population a site serves or restricts to.
type PopulationTag string

const (
	PopSeniors          PopulationTag = "seniors_60_plus"
	PopFamilies         PopulationTag = "families_with_children"
	PopHomeless         PopulationTag = "homeless"
	PopHIVAIDS          PopulationTag = "hiv_aids"
	PopUndocumented     PopulationTag = "undocumented"
	PopZipRestricted    PopulationTag = "zip_restricted"
	PopYouth            PopulationTag = "youth"
	PopVeterans         PopulationTag = "veterans"
	PopAccessPermissive PopulationTag = "access_permissive"
)

// AllPopulationTags is the closed population vocabulary.
var AllPopulationTags = []PopulationTag{
	PopSeniors, PopFamilies, PopHomeless, PopHIVAIDS, PopUndocumented,
	PopZipRestricted, PopYouth, PopVeterans, PopAccessPermissive,
}

// Valid reports whether t belongs to the closed vocabulary.
func (t PopulationTag) Valid() bool {
	for _, v := range AllPopulationTags {
		if v == t {
			return true
		}
	}
	return false
}

// AccessModel describes how visitors reach the service.
type AccessModel string

const (
	AccessWalkIn          AccessModel = "walk_in"
	AccessAppointment     AccessModel = "appointment"
	AccessScheduledDays   AccessModel = "scheduled_days"
	AccessTwentyFourSeven AccessModel = "twenty_four_seven"
)

// OrgType is the kind of organization operating a site.
type OrgType string

const (
	OrgFaithBased OrgType = "faith_based"
	OrgNonprofit  OrgType = "nonprofit"
	OrgGovernment OrgType = "government"
	OrgCollective OrgType = "collective"
)

// FreshnessBucket is the coarse age class of an upstream record.
type FreshnessBucket string

const (
	FreshUnder12 FreshnessBucket = "<12mo"
	Fresh12To24  FreshnessBucket = "12_24mo"
	FreshOver24  FreshnessBucket = ">24mo"
)
