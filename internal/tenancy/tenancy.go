// Package tenancy holds the in-memory index of a tenancy's regions,
// compartments and availability domains for a single run.
package tenancy

import (
	"fmt"
	"strings"
)

// StateActive is the lifecycle state of a sweepable compartment.
const StateActive = "ACTIVE"

// realmPrefixLen is the length of the realm tag on AD names ("Uocm:").
const realmPrefixLen = 5

// Compartments that exist in every tenancy but are owned by the platform.
var reservedCompartments = map[string]struct{}{
	"ManagedCompartmentForPaaS": {},
	"OCI_Scripts":               {},
}

// Tenancy is the root identity of the account.
type Tenancy struct {
	ID            string
	Name          string
	Description   string
	HomeRegionKey string
}

// Region is one subscribed region.
type Region struct {
	Key    string // e.g. IAD
	Name   string // e.g. us-ashburn-1
	IsHome bool
}

// Compartment is a node of the compartment tree.
type Compartment struct {
	ID          string
	Name        string
	Description string
	ParentID    string
	State       string
}

// AvailabilityDomain is an AD as listed in one region.
type AvailabilityDomain struct {
	ID            string
	Name          string // e.g. Uocm:EU-FRANKFURT-1-AD-1
	CompartmentID string
}

// RootCompartment returns the synthetic compartment standing for the tenancy
// root: id and parent id both equal the tenancy id.
func RootCompartment(t Tenancy) Compartment {
	return Compartment{
		ID:          t.ID,
		Name:        t.Name + " (root)",
		Description: t.Description,
		ParentID:    t.ID,
		State:       StateActive,
	}
}

// IsSweepable reports whether resources in c should be enumerated.
func IsSweepable(c Compartment) bool {
	if c.State != StateActive {
		return false
	}
	_, reserved := reservedCompartments[c.Name]
	return !reserved
}

// NormalizeADName maps an AD name to the region code it is matched against:
// split on '-', drop the realm prefix from the first segment, lowercase the
// first three segments and join them with '-'.
// Uocm:EU-FRANKFURT-1-AD-1 becomes eu-frankfurt-1. Names with fewer than three
// segments normalize to "" and match no region.
//
// TODO: legacy AD names (Uocm:US-ASHBURN-AD-1, Uocm:PHX-AD-1) normalize to
// us-ashburn-ad and phx-ad-1; matching them needs the region key table.
func NormalizeADName(name string) string {
	s := strings.Split(name, "-")
	if len(s) < 3 {
		return ""
	}
	first := s[0]
	if len(first) > realmPrefixLen {
		first = first[realmPrefixLen:]
	} else {
		first = ""
	}
	return strings.ToLower(first) + "-" + strings.ToLower(s[1]) + "-" + strings.ToLower(s[2])
}

// Index is the per-run view of the tenancy.
type Index struct {
	tenancy      Tenancy
	regions      []Region
	compartments []Compartment
	compSeen     map[string]struct{}
	ads          []AvailabilityDomain
}

// NewIndex creates an index whose first compartment is the synthetic root.
func NewIndex(t Tenancy, regions []Region) *Index {
	x := &Index{
		tenancy:  t,
		regions:  append([]Region(nil), regions...),
		compSeen: make(map[string]struct{}),
	}
	x.AddCompartments(RootCompartment(t))
	return x
}

// AddCompartments appends compartments, skipping ids already present.
func (x *Index) AddCompartments(cs ...Compartment) {
	for _, c := range cs {
		if _, ok := x.compSeen[c.ID]; ok {
			continue
		}
		x.compSeen[c.ID] = struct{}{}
		x.compartments = append(x.compartments, c)
	}
}

// AddAvailabilityDomains appends ADs in listing order.
func (x *Index) AddAvailabilityDomains(ads ...AvailabilityDomain) {
	x.ads = append(x.ads, ads...)
}

// Tenancy returns the root identity.
func (x *Index) Tenancy() Tenancy { return x.tenancy }

// Regions returns every subscribed region.
func (x *Index) Regions() []Region { return x.regions }

// HomeRegion returns the home region, falling back to the first subscription.
func (x *Index) HomeRegion() (Region, bool) {
	for _, r := range x.regions {
		if r.IsHome {
			return r, true
		}
	}
	if len(x.regions) > 0 {
		return x.regions[0], true
	}
	return Region{}, false
}

// SelectRegions returns the subscribed regions named in names, in
// subscription order. An empty names selects every region. Naming a region
// the tenancy is not subscribed to is an error.
func (x *Index) SelectRegions(names []string) ([]Region, error) {
	if len(names) == 0 {
		return x.regions, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = false
	}

	var out []Region
	for _, r := range x.regions {
		key := strings.ToLower(r.Name)
		if _, ok := want[key]; ok {
			want[key] = true
			out = append(out, r)
		}
	}

	for _, n := range names {
		if !want[strings.ToLower(n)] {
			return nil, fmt.Errorf("region %q is not subscribed", n)
		}
	}
	return out, nil
}

// Compartments returns every compartment, root first.
func (x *Index) Compartments() []Compartment { return x.compartments }

// ActiveCompartments returns the compartments whose resources are swept.
func (x *Index) ActiveCompartments() []Compartment {
	var out []Compartment
	for _, c := range x.compartments {
		if IsSweepable(c) {
			out = append(out, c)
		}
	}
	return out
}

// AllAvailabilityDomains returns every AD of every region.
func (x *Index) AllAvailabilityDomains() []AvailabilityDomain { return x.ads }

// AvailabilityDomains returns the ADs whose normalized name equals region.
func (x *Index) AvailabilityDomains(region string) []AvailabilityDomain {
	want := strings.ToLower(region)
	var out []AvailabilityDomain
	for _, ad := range x.ads {
		if NormalizeADName(ad.Name) == want {
			out = append(out, ad)
		}
	}
	return out
}
