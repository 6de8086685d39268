package mailing

import (
	"fmt"
	"strings"
)

// Region identifies one of the two operational areas that own an upload slot.
type Region string

const (
	RegionMG Region = "MG"
	RegionSP Region = "SP"
)

// Regions returns the known regions in display order.
func Regions() []Region {
	return []Region{RegionMG, RegionSP}
}

// ParseRegion accepts a region tag in any case, ignoring surrounding spaces.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown region %q (expected MG or SP)", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known regions.
func (r Region) Valid() bool {
	return r == RegionMG || r == RegionSP
}

// DisplayName returns the full name of the region.
func (r Region) DisplayName() string {
	switch r {
	case RegionMG:
		return "Minas Gerais"
	case RegionSP:
		return "São Paulo"
	default:
		return string(r)
	}
}

func (r Region) String() string {
	return string(r)
}
