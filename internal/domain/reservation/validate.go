package reservation

import (
	"regexp"
	"strings"
	"time"

	"github.com/harborview-stays/service-reservations/internal/platform/apperrors"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPhoneDigits = 7

// ValidateSearch checks a stay search for well-formedness: both dates set,
// check-in not before the start of today, check-out strictly after check-in,
// at least one guest. Returns nil on success; callers must treat a non-nil
// result as the user-facing rejection and abort.
func ValidateSearch(checkIn, checkOut time.Time, guests int, now time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return apperrors.NewValidationError(apperrors.CodeInvalidDateRange,
			"check-in and check-out dates are required")
	}
	if checkIn.Before(StartOfToday(now)) {
		return apperrors.NewValidationError(apperrors.CodePastCheckIn,
			"check-in date cannot be in the past")
	}
	if !checkOut.After(checkIn) {
		return apperrors.NewValidationError(apperrors.CodeInvertedRange,
			"check-out date must be after check-in date")
	}
	if guests < 1 {
		return apperrors.NewValidationError(apperrors.CodeInvalidGuestCount,
			"at least one guest is required")
	}
	return nil
}

// GuestInfoErrors validates guest contact fields, returning one keyed message
// per failing field so a caller can highlight all of them at once. An empty
// map means the contact info is valid.
func GuestInfoErrors(name, email, phone string) map[string]string {
	errs := make(map[string]string)

	if len(strings.TrimSpace(name)) < 2 {
		errs["name"] = "full name must be at least 2 characters"
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		errs["email"] = "a valid email address is required"
	}
	if len(DigitsOnly(phone)) < minPhoneDigits {
		errs["phone"] = "phone number must contain at least 7 digits"
	}
	return errs
}

// BillingAddressErrors validates billing address fields independently.
// Postal code is never required.
func BillingAddressErrors(street, city, state, country string) map[string]string {
	errs := make(map[string]string)

	if len(strings.TrimSpace(street)) < 3 {
		errs["street"] = "street address must be at least 3 characters"
	}
	if len(strings.TrimSpace(city)) < 2 {
		errs["city"] = "city must be at least 2 characters"
	}
	if len(strings.TrimSpace(state)) < 2 {
		errs["state"] = "state or region must be at least 2 characters"
	}
	if len(strings.TrimSpace(country)) < 2 {
		errs["country"] = "country must be at least 2 characters"
	}
	return errs
}

// DigitsOnly strips every non-digit character from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
