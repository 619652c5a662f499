package enums

import "fmt"

// SiteStatus tracks the overall lifecycle of a construction site.
type SiteStatus string

const (
	SiteStatusPlanned   SiteStatus = "Planned"
	SiteStatusActive    SiteStatus = "Active"
	SiteStatusOnHold    SiteStatus = "On Hold"
	SiteStatusCompleted SiteStatus = "Completed"
)

var validSiteStatuses = []SiteStatus{
	SiteStatusPlanned,
	SiteStatusActive,
	SiteStatusOnHold,
	SiteStatusCompleted,
}

// String implements fmt.Stringer.
func (s SiteStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SiteStatus.
func (s SiteStatus) IsValid() bool {
	for _, candidate := range validSiteStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSiteStatus converts raw input into a SiteStatus.
func ParseSiteStatus(value string) (SiteStatus, error) {
	for _, candidate := range validSiteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid site status %q", value)
}
