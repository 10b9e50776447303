// internal/app/system/secid/secid.go

// Package secid mints the human-readable secondary identifiers printed
// on tickets and labels. These are cosmetic: the Mongo ObjectID remains
// the primary key. Uniqueness is enforced by a unique index on each
// collection; stores re-mint and retry when an insert hits a duplicate.
package secid

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randBase36(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return b.String()
}

// Repair returns an id like "jan4821": the lowercased three-letter
// month abbreviation for now, followed by a four-digit number in
// [1000, 9999].
func Repair(now time.Time) string {
	month := strings.ToLower(now.Month().String()[:3])
	return fmt.Sprintf("%s%d", month, 1000+rand.IntN(9000))
}

// Product returns an id like "PROD-1a2b3c4d" (8 base-36 characters).
func Product() string {
	return "PROD-" + randBase36(8)
}

// Technician returns an id like "TECH-9x2k4m" (6 base-36 characters).
func Technician() string {
	return "TECH-" + randBase36(6)
}
