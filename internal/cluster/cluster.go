// Package cluster groups canonical sites into organization clusters.
package cluster

import (
	"cmp"
	"slices"

	"github.com/wefrigerator/fridge-ingest/internal/model"
)

const (
	unknownKey         = "unknown"
	unknownOrgRootName = "Unknown Organization"
)

// Key returns the grouping key "<org_root_name>::<website_domain>", with
// "unknown" standing in for either empty component.
func Key(s *model.Site) string {
	return cmp.Or(s.OrgRootName, unknownKey) + "::" + cmp.Or(s.WebsiteDomain, unknownKey)
}

// ByOrg groups sites by Key. A group whose key is entirely unknown and
// which has a single member is dropped; every other site lands in exactly
// one cluster. Clusters take their name, org type, and website from their
// first member and are ordered by size descending, then by name.
func ByOrg(sites []model.Site) []model.OrgCluster {
	var order []string
	groups := make(map[string][]*model.Site)
	for i := range sites {
		k := Key(&sites[i])
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], &sites[i])
	}

	clusters := make([]model.OrgCluster, 0, len(order))
	for _, k := range order {
		members := groups[k]
		if k == unknownKey+"::"+unknownKey && len(members) == 1 {
			continue
		}
		first := members[0]
		c := model.OrgCluster{
			OrgRootName:   cmp.Or(first.OrgRootName, unknownOrgRootName),
			OrgType:       first.OrgType,
			Website:       first.Website,
			WebsiteDomain: first.WebsiteDomain,
			Sites:         make([]model.ClusteredSite, 0, len(members)),
		}
		for _, s := range members {
			c.Sites = append(c.Sites, Project(s))
		}
		clusters = append(clusters, c)
	}

	slices.SortStableFunc(clusters, func(a, b model.OrgCluster) int {
		if n := cmp.Compare(len(b.Sites), len(a.Sites)); n != 0 {
			return n
		}
		return cmp.Compare(a.OrgRootName, b.OrgRootName)
	})
	return clusters
}

// Project returns the narrow cluster view of s.
func Project(s *model.Site) model.ClusteredSite {
	return model.ClusteredSite{
		SiteID:         s.SiteID,
		Name:           s.Name,
		SiteType:       s.SiteType,
		Address:        s.Address,
		Location:       s.Location,
		ServiceTags:    s.ServiceTags,
		PopulationTags: s.PopulationTags,
	}
}
