package promotions

import "time"

// ExpiryGraceDays is added after the later of the current expiry and the promotion end.
const ExpiryGraceDays = 30

// MergeExpiry returns the listing's new expiry: max(current, promoEnd) plus
// ExpiryGraceDays UTC calendar days. A nil current expiry (paused listing) counts as promoEnd.
func MergeExpiry(current *time.Time, promoEnd time.Time) time.Time {
	base := promoEnd.UTC()
	if current != nil && current.After(base) {
		base = current.UTC()
	}
	return base.AddDate(0, 0, ExpiryGraceDays)
}
