package enums

import "fmt"

// PrescriptionStatus tracks pharmacist review of an uploaded prescription.
type PrescriptionStatus string

const (
	PrescriptionStatusPending  PrescriptionStatus = "pending"
	PrescriptionStatusApproved PrescriptionStatus = "approved"
	PrescriptionStatusRejected PrescriptionStatus = "rejected"
)

var validPrescriptionStatuses = []PrescriptionStatus{
	PrescriptionStatusPending,
	PrescriptionStatusApproved,
	PrescriptionStatusRejected,
}

// String implements fmt.Stringer.
func (v PrescriptionStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known PrescriptionStatus.
func (v PrescriptionStatus) IsValid() bool {
	for _, candidate := range validPrescriptionStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParsePrescriptionStatus converts raw input into a PrescriptionStatus.
func ParsePrescriptionStatus(value string) (PrescriptionStatus, error) {
	for _, candidate := range validPrescriptionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid prescription status %q", value)
}
