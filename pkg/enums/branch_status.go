package enums

import "fmt"

// BranchStatus is the availability verdict a branch reports for a set of
// order items.
type BranchStatus string

const (
	BranchStatusAvailable   BranchStatus = "available"
	BranchStatusUnavailable BranchStatus = "unavailable"
	BranchStatusInactive    BranchStatus = "inactive"
)

var validBranchStatuses = []BranchStatus{
	BranchStatusAvailable,
	BranchStatusUnavailable,
	BranchStatusInactive,
}

// String implements fmt.Stringer.
func (b BranchStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is known.
func (b BranchStatus) IsValid() bool {
	for _, candidate := range validBranchStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBranchStatus converts raw input into a BranchStatus.
func ParseBranchStatus(value string) (BranchStatus, error) {
	for _, candidate := range validBranchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid branch status %q", value)
}
