// internal/app/system/inputval/inputval.go

// Package inputval holds the field-level validation predicates and the
// per-entity composite validators used by the stores before any write.
//
// Composite validators evaluate every rule independently (no
// short-circuit) so a caller gets the complete list of violations in
// one pass. The same rules are mirrored by the $jsonSchema collection
// validators in system/validators; enums and required-field lists are
// derived from the models package in both places so the two enforcement
// points cannot drift.
package inputval

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/fixtrack/fixtrack/internal/domain/models"
)

// ValidationError aggregates every rule a candidate record violated.
// Stores return it without performing the write; the HTTP layer renders
// it as a 422 with the full list.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// AsValidationError returns the *ValidationError inside err, or nil.
func AsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

/* ------------------------------ predicates ------------------------------ */

// emailRe accepts the common user@domain.tld shape. Deliverability is
// not checked; this only rejects obviously malformed addresses.
var emailRe = regexp.MustCompile(`^[A-Za-z0-9!#$%&'*+/=?^_` + "`" + `{|}~.\-]+@[A-Za-z0-9][A-Za-z0-9.\-]*\.[A-Za-z]{2,}$`)

// IsValidEmail reports whether s looks like a real email address.
// The empty string is not valid; optional fields check presence first.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || !emailRe.MatchString(s) {
		return false
	}
	local, domain, _ := strings.Cut(s, "@")
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

// NonBlank reports whether s contains any non-whitespace character.
func NonBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// NonNegative reports whether v is zero or greater.
func NonNegative(v float64) bool {
	return v >= 0
}

// NonNegativeInt reports whether v is zero or greater.
func NonNegativeInt(v int) bool {
	return v >= 0
}

/* ------------------------- composite validators ------------------------- */

// ValidateCustomer checks a fully merged customer record.
func ValidateCustomer(c models.Customer) *ValidationError {
	var errs []string
	if !NonBlank(c.Name) {
		errs = append(errs, "name is required")
	}
	if !NonBlank(c.Phone) {
		errs = append(errs, "phone is required")
	}
	if NonBlank(c.Email) && !IsValidEmail(c.Email) {
		errs = append(errs, "email is not a valid address")
	}
	return wrap(errs)
}

// ValidateRepair checks a fully merged repair record. CustomerID must
// already be resolved to an ObjectID; a zero value means it was missing.
func ValidateRepair(r models.Repair) *ValidationError {
	var errs []string
	if r.CustomerID.IsZero() {
		errs = append(errs, "customer_id is required")
	}
	if !NonBlank(r.DeviceType) {
		errs = append(errs, "device_type is required")
	}
	if !NonBlank(r.Brand) {
		errs = append(errs, "brand is required")
	}
	if !NonBlank(r.Model) {
		errs = append(errs, "model is required")
	}
	if !NonBlank(r.Status) {
		errs = append(errs, "status is required")
	} else if !models.IsValidRepairStatus(r.Status) {
		errs = append(errs, fmt.Sprintf("status must be one of %s", strings.Join(models.RepairStatuses, ", ")))
	}
	if !NonNegative(r.Cost) {
		errs = append(errs, "cost must be non-negative")
	}
	if len(r.Tasks) == 0 {
		errs = append(errs, "tasks must contain at least one entry")
	}
	return wrap(errs)
}

// ValidateProduct checks a fully merged product record.
func ValidateProduct(p models.Product) *ValidationError {
	var errs []string
	if !NonBlank(p.Name) {
		errs = append(errs, "name is required")
	}
	if !NonBlank(p.Category) {
		errs = append(errs, "category is required")
	}
	if !NonBlank(p.Supplier) {
		errs = append(errs, "supplier is required")
	}
	if !NonNegativeInt(p.Quantity) {
		errs = append(errs, "quantity must be non-negative")
	}
	if !NonNegative(p.Price) {
		errs = append(errs, "price must be non-negative")
	}
	return wrap(errs)
}

// ValidateTechnician checks a fully merged technician record.
func ValidateTechnician(t models.Technician) *ValidationError {
	var errs []string
	if !NonBlank(t.Name) {
		errs = append(errs, "name is required")
	}
	if !NonBlank(t.Phone) {
		errs = append(errs, "phone is required")
	}
	if len(t.Specialization) == 0 {
		errs = append(errs, "specialization must contain at least one entry")
	}
	if NonBlank(t.Email) && !IsValidEmail(t.Email) {
		errs = append(errs, "email is not a valid address")
	}
	return wrap(errs)
}

// ValidateUser checks an account record before insert.
func ValidateUser(u models.User) *ValidationError {
	var errs []string
	if !IsValidEmail(u.Email) {
		errs = append(errs, "email is not a valid address")
	}
	if !NonBlank(u.FullName) {
		errs = append(errs, "full_name is required")
	}
	if !models.IsValidRole(u.Role) {
		errs = append(errs, fmt.Sprintf("role must be one of %s", strings.Join(models.Roles, ", ")))
	}
	return wrap(errs)
}

func wrap(errs []string) *ValidationError {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
