package query

import (
	"fmt"
	"slices"
	"strconv"
)

// Sentinel values meaning "no filter". They match the dashboard's default
// selector options.
const (
	AllYears   = "All Years"
	AllRegions = "All Regions"
)

// YearOptions is the fixed year selector set; the dataset covers 2016-2018.
var YearOptions = []string{AllYears, "2016", "2017", "2018"}

// RegionOptions is the fixed Brazilian region selector set.
var RegionOptions = []string{AllRegions, "North", "Northeast", "Southeast", "South", "Central-West"}

// Filters is the UI filter state every query function accepts. Zero values
// are treated like the "all" sentinels.
type Filters struct {
	Year   string
	Region string
}

// Validate rejects values outside the fixed enumerations.
func (f Filters) Validate() error {
	if f.Year != "" && !slices.Contains(YearOptions, f.Year) {
		return fmt.Errorf("invalid year filter %q (expected one of %v)", f.Year, YearOptions)
	}
	if f.Region != "" && !slices.Contains(RegionOptions, f.Region) {
		return fmt.Errorf("invalid region filter %q (expected one of %v)", f.Region, RegionOptions)
	}
	return nil
}

// yearValue returns the concrete year, or false when no year was selected.
func (f Filters) yearValue() (int, bool) {
	if f.Year == "" || f.Year == AllYears {
		return 0, false
	}
	year, err := strconv.Atoi(f.Year)
	if err != nil {
		return 0, false
	}
	return year, true
}

// regionValue returns the concrete region, or false when no region was selected.
func (f Filters) regionValue() (string, bool) {
	if f.Region == "" || f.Region == AllRegions {
		return "", false
	}
	return f.Region, true
}

// key is the filter part of a cache key.
func (f Filters) key() string {
	year := f.Year
	if year == "" {
		year = AllYears
	}
	region := f.Region
	if region == "" {
		region = AllRegions
	}
	return year + "|" + region
}
