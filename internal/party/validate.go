package party

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nekogravitycat/party-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/request"
)

const (
	maxCount   = 500
	maxNotes   = 1000
	minKidAge  = 1
	maxKidAge  = 18
	maxName    = 100
	maxAddress = 300

	// deposit is numeric(10, 2)
	maxDeposit = 99999999.99
)

// validate checks a complete party and returns a validation AppError listing every issue,
// or nil if p is storable.
func validate(p *Party) error {
	var errs apperror.FieldErrors
	validateInto(p, &errs)
	return errs.Err()
}

func validateInto(p *Party, errs *apperror.FieldErrors) {
	if p.PartyDate.IsZero() && !errs.Has("partyDate") {
		errs.Add("partyDate", "is required")
	}

	textLen(errs, "kidName", p.KidName, 2, maxName)
	if !errs.Has("kidAge") && (p.KidAge < minKidAge || p.KidAge > maxKidAge) {
		errs.Add("kidAge", fmt.Sprintf("must be between %d and %d", minKidAge, maxKidAge))
	}
	textLen(errs, "locationName", p.LocationName, 1, 200)
	textLen(errs, "phoneNumber", p.PhoneNumber, 1, 50)

	if p.StartTime != nil && !request.IsClock(*p.StartTime) {
		errs.Add("startTime", "must be in HH:mm format")
	}
	if p.EndTime != nil && !request.IsClock(*p.EndTime) {
		errs.Add("endTime", "must be in HH:mm format")
	}
	if p.ParentEmail != nil && !request.IsEmail(*p.ParentEmail) {
		errs.Add("parentEmail", "must be a valid email")
	}

	optionalLen(errs, "address", p.Address, maxAddress)
	optionalLen(errs, "parentName", p.ParentName, maxName)
	optionalLen(errs, "kidsCatering", p.KidsCatering, maxNotes)
	optionalLen(errs, "parentsCatering", p.ParentsCatering, maxNotes)
	optionalLen(errs, "notes", p.Notes, maxNotes)

	count(errs, "guestsCount", p.GuestsCount)
	count(errs, "kidsCount", p.KidsCount)
	count(errs, "parentsCount", p.ParentsCount)

	deposit(errs, p.Deposit)
	if !IsType(p.PartyType) {
		errs.Add("partyType", "is not a known party type")
	}
}

func deposit(errs *apperror.FieldErrors, v float64) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0) || v < 0:
		errs.Add("deposit", "must not be negative")
	case v > maxDeposit:
		errs.Add("deposit", fmt.Sprintf("must be at most %.2f", maxDeposit))
	case decimals(v) > 2:
		errs.Add("deposit", "must have at most 2 decimal places")
	}
}

// decimals counts the fraction digits of the shortest representation of v.
func decimals(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

func textLen(errs *apperror.FieldErrors, path, s string, min, max int) {
	n := utf8.RuneCountInString(s)
	switch {
	case n == 0:
		errs.Add(path, "is required")
	case n < min:
		errs.Add(path, fmt.Sprintf("must be at least %d characters", min))
	case n > max:
		errs.Add(path, fmt.Sprintf("must be at most %d characters", max))
	}
}

func optionalLen(errs *apperror.FieldErrors, path string, s *string, max int) {
	if s != nil && utf8.RuneCountInString(*s) > max {
		errs.Add(path, fmt.Sprintf("must be at most %d characters", max))
	}
}

func count(errs *apperror.FieldErrors, path string, v *int) {
	if v != nil && (*v < 0 || *v > maxCount) {
		errs.Add(path, fmt.Sprintf("must be between 0 and %d", maxCount))
	}
}
