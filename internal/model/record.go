package model

import "time"

// Record is the provider-neutral intermediate shape an adapter emits for one
// upstream feature. Classification and scoring derive a Site from it.
type Record struct {
	SiteID      string
	PostID      *int64
	Name        string
	OrgName     string // explicit parent organization (org_name, operator)
	Description string
	Categories  []string
	Address     Address
	Location    Location
	HoursText   string
	Hours       []Hours
	Phones      []Phone
	Websites    []string
	Emails      []string
	// Tags carries structured key/value tags for tag-driven feeds.
	Tags      map[string]string
	Source    string
	UpdatedAt string
	// Modified is the upstream modification time; nil leaves the freshness
	// bucket empty.
	Modified *time.Time
	Raw      Raw
}

// Website returns the canonical (first) website.
func (r *Record) Website() string {
	if len(r.Websites) == 0 {
		return ""
	}
	return r.Websites[0]
}

// Email returns the canonical (first) email.
func (r *Record) Email() string {
	if len(r.Emails) == 0 {
		return ""
	}
	return r.Emails[0]
}
