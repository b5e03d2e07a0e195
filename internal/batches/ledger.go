package batches

import (
	"sort"
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

const dateLayout = "2006-01-02"

// CalendarDay returns UTC midnight of t's calendar day as observed in loc.
// Batch dates are stored in this form, so comparisons never depend on the
// clock time or zone of either side.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StockStatus classifies a single batch against the product's threshold.
func StockStatus(b models.Batch, threshold int) enums.StockStatus {
	switch {
	case b.Quantity <= 0:
		return enums.StockStatusOutOfStock
	case b.Quantity <= threshold:
		return enums.StockStatusLowStock
	default:
		return enums.StockStatusInStock
	}
}

// IsExpired reports whether the batch expired strictly before asOf's day.
func IsExpired(b models.Batch, asOf time.Time) bool {
	return day(b.ExpirationDate).Before(day(asOf))
}

// DaysUntilExpiry is the whole number of days left, never negative.
func DaysUntilExpiry(b models.Batch, asOf time.Time) int {
	days := int(day(b.ExpirationDate).Sub(day(asOf)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// IsSellable is active and still good after asOf. Quantity is not considered.
// A batch on its expiration day is not expired yet but can no longer be sold.
func IsSellable(b models.Batch, asOf time.Time) bool {
	return b.IsActive && day(b.ExpirationDate).After(day(asOf))
}

// IsAllocatable is sellable with stock on hand.
func IsAllocatable(b models.Batch, asOf time.Time) bool {
	return IsSellable(b, asOf) && b.Quantity > 0
}

// SortFEFO orders batches first-expiry-first-out, then by received date and
// code so equal expirations are deterministic.
func SortFEFO(batches []models.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		return fefoLess(batches[i], batches[j])
	})
}

func fefoLess(a, b models.Batch) bool {
	ae, be := day(a.ExpirationDate), day(b.ExpirationDate)
	if !ae.Equal(be) {
		return ae.Before(be)
	}
	ar, br := day(a.ReceivedDate), day(b.ReceivedDate)
	if !ar.Equal(br) {
		return ar.Before(br)
	}
	return a.Code < b.Code
}

// SelectFEFO picks the earliest-expiring allocatable batch.
func SelectFEFO(batches []models.Batch, asOf time.Time) (models.Batch, bool) {
	var (
		best  models.Batch
		found bool
	)
	for _, b := range batches {
		if !IsAllocatable(b, asOf) {
			continue
		}
		if !found || fefoLess(b, best) {
			best, found = b, true
		}
	}
	return best, found
}

// Allocatable filters to allocatable batches in FEFO order.
func Allocatable(batches []models.Batch, asOf time.Time) []models.Batch {
	out := make([]models.Batch, 0, len(batches))
	for _, b := range batches {
		if IsAllocatable(b, asOf) {
			out = append(out, b)
		}
	}
	SortFEFO(out)
	return out
}
