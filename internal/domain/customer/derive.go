package customer

import (
	"sort"
	"strings"
	"time"

	"github.com/harborview-stays/service-reservations/internal/domain/reservation"
)

// GroupingKey resolves a booking to a customer identity, cascading through
// the strongest signal available: normalized email, then digits-only phone,
// then normalized full name. Two bookings sharing an email belong to the same
// customer even under different names. The name-only fallback is a known
// imprecision: common names can merge distinct people and spelling variants
// can split one person; it is kept as-is rather than guessed around.
func GroupingKey(email, phone, fullName string) string {
	if e := strings.ToLower(strings.TrimSpace(email)); e != "" {
		return "email:" + e
	}
	if p := reservation.DigitsOnly(phone); p != "" {
		return "phone:" + p
	}
	return "name:" + normalizeName(fullName)
}

// normalizeName lowercases and collapses all whitespace runs to single spaces.
func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// splitName splits a full name into first and last: first token, then the
// remainder.
func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// activityTime is the booking's contribution to "last activity": the booked
// check-out date, falling back to the creation timestamp when check-out is
// unset. Note this uses the booked check-out, not actual departure, so a
// far-future confirmed stay makes a customer look recently active before the
// stay happens.
func activityTime(r *reservation.Reservation) time.Time {
	if r.CheckOut().IsZero() {
		return r.CreatedAt()
	}
	return r.CheckOut()
}

// Derive folds the entire ledger into the deduplicated customer registry.
// The output is recomputed fresh on every call and is idempotent for an
// unchanged ledger: same grouping, same totals, same sort order. A malformed
// individual record degrades (activity falls back to creation time) rather
// than failing the whole aggregate.
func Derive(ledger []*reservation.Reservation, now time.Time) []Customer {
	byKey := make(map[string]*Customer, len(ledger))

	for _, r := range ledger {
		contact := r.Contact()
		address := r.Address()
		key := GroupingKey(contact.Email, contact.Phone, contact.FullName)

		c, seen := byKey[key]
		if !seen {
			c = &Customer{Key: key, JoinedAt: r.CreatedAt()}
			byKey[key] = c
		}

		// First non-empty wins, never overwritten.
		if c.FirstName == "" && c.LastName == "" && strings.TrimSpace(contact.FullName) != "" {
			c.FirstName, c.LastName = splitName(contact.FullName)
		}
		if c.Email == "" {
			c.Email = strings.TrimSpace(contact.Email)
		}
		if c.Phone == "" {
			c.Phone = strings.TrimSpace(contact.Phone)
		}
		if c.Street == "" {
			c.Street = strings.TrimSpace(address.Street)
		}
		if c.City == "" {
			c.City = strings.TrimSpace(address.City)
		}
		if c.Country == "" {
			c.Country = strings.TrimSpace(address.Country)
		}

		if r.CreatedAt().Before(c.JoinedAt) {
			c.JoinedAt = r.CreatedAt()
		}
		if activity := activityTime(r); activity.After(c.LastActivity) {
			c.LastActivity = activity
		}

		// Cancelled bookings never count toward spend or volume.
		if r.Status() != reservation.StatusCancelled {
			c.TotalBookings++
			c.TotalSpentCents += r.TotalCents()
		}
	}

	customers := make([]Customer, 0, len(byKey))
	for _, c := range byKey {
		c.Status = classify(c, now)
		customers = append(customers, *c)
	}

	sort.Slice(customers, func(i, j int) bool {
		ni, nj := sortName(customers[i]), sortName(customers[j])
		if ni != nj {
			return ni < nj
		}
		// Same display name, distinct customers. Break the tie on the
		// grouping key so repeated derivations order them identically.
		return customers[i].Key < customers[j].Key
	})
	return customers
}

// classify is evaluated after folding completes and is order-independent.
// VIP takes precedence over inactive.
func classify(c *Customer, now time.Time) Status {
	if c.TotalSpentCents >= VIPSpendThresholdCents || c.TotalBookings >= VIPBookingThreshold {
		return StatusVIP
	}
	if now.Sub(c.LastActivity) > InactivityWindowDays*24*time.Hour {
		return StatusInactive
	}
	return StatusActive
}

func sortName(c Customer) string {
	return strings.ToLower(strings.TrimSpace(c.FirstName + " " + c.LastName))
}
