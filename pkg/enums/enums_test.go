package enums

import "testing"

func TestParseRoundTrips(t *testing.T) {
	if got, err := ParseOrderStatus("processing"); err != nil || got != OrderStatusProcessing {
		t.Fatalf("unexpected parse result %v %v", got, err)
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
	if _, err := ParsePaymentMethod("ach"); err == nil {
		t.Fatalf("expected error for unsupported payment method")
	}
	if got, err := ParseProductCategory("inhaler"); err != nil || got != ProductCategoryInhaler {
		t.Fatalf("unexpected category %v %v", got, err)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	terminal := map[OrderStatus]bool{
		OrderStatusPending:    false,
		OrderStatusProcessing: false,
		OrderStatusCompleted:  true,
		OrderStatusCancelled:  true,
	}
	for status, want := range terminal {
		if status.IsTerminal() != want {
			t.Fatalf("%s terminal=%v, want %v", status, status.IsTerminal(), want)
		}
	}
}

func TestUserRoleIsStaff(t *testing.T) {
	if !UserRoleAdmin.IsStaff() || !UserRolePharmacyStaff.IsStaff() || UserRoleCustomer.IsStaff() {
		t.Fatalf("unexpected staff classification")
	}
}

func TestAvailabilityLabels(t *testing.T) {
	for _, a := range validAvailabilities {
		if a.Label() == string(a) {
			t.Fatalf("availability %s has no label", a)
		}
	}
	if AvailabilityLowStock.Label() != "Low Stock" {
		t.Fatalf("unexpected label %q", AvailabilityLowStock.Label())
	}
}

func TestProductCategoriesIsACopy(t *testing.T) {
	cats := ProductCategories()
	if len(cats) != 9 {
		t.Fatalf("expected 9 categories, got %d", len(cats))
	}
	cats[0] = "mutated"
	if ProductCategories()[0] != ProductCategoryLiquid {
		t.Fatalf("ProductCategories leaked its backing slice")
	}
}
