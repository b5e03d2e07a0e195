package enums

import "fmt"

// DeliveryMethod is how the order reaches the customer; only in-store pickup today.
type DeliveryMethod string

const (
	DeliveryMethodPickup DeliveryMethod = "pickup"
)

var validDeliveryMethods = []DeliveryMethod{
	DeliveryMethodPickup,
}

// String implements fmt.Stringer.
func (v DeliveryMethod) String() string {
	return string(v)
}

// IsValid reports whether the value is a known DeliveryMethod.
func (v DeliveryMethod) IsValid() bool {
	for _, candidate := range validDeliveryMethods {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseDeliveryMethod converts raw input into a DeliveryMethod.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	for _, candidate := range validDeliveryMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery method %q", value)
}
