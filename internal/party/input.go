package party

import (
	"fmt"
	"strings"

	"github.com/nekogravitycat/party-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/request"
)

// Input carries the caller-supplied fields for create and update.
// A nil field is absent. After Normalize, an empty optional text field means "clear".
type Input struct {
	PartyDate    *string
	KidName      *string
	KidAge       *int
	LocationName *string
	StartTime    *string
	EndTime      *string
	Address      *string
	ParentName   *string
	ParentEmail  *string
	GuestsCount  *int
	PhoneNumber  *string
	Deposit      *float64
	PartyType    *string

	KidsCount       *int
	ParentsCount    *int
	KidsCatering    *string
	ParentsCatering *string
	Notes           *string
}

// Normalize trims text fields and zero-pads clock times to HH:mm.
func (in *Input) Normalize() {
	for _, s := range []*string{
		in.PartyDate, in.KidName, in.LocationName, in.StartTime, in.EndTime,
		in.Address, in.ParentName, in.ParentEmail, in.PhoneNumber, in.PartyType,
		in.KidsCatering, in.ParentsCatering, in.Notes,
	} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	padClock(in.StartTime)
	padClock(in.EndTime)
	if in.ParentEmail != nil {
		*in.ParentEmail = strings.ToLower(*in.ParentEmail)
	}
}

func padClock(s *string) {
	if s == nil || !request.IsClock(*s) {
		return
	}
	var h, m int
	if _, err := fmt.Sscanf(*s, "%d:%d", &h, &m); err == nil {
		*s = fmt.Sprintf("%02d:%02d", h, m)
	}
}

// Apply copies the present fields of in onto p. Empty optional text clears the field.
// Values that cannot be represented on p at all are reported in errs.
func (in Input) Apply(p *Party, errs *apperror.FieldErrors) {
	if in.PartyDate != nil {
		d, err := request.ParseDate(*in.PartyDate)
		if err != nil {
			errs.Add("partyDate", "must be in YYYY-MM-DD format")
		} else {
			p.PartyDate = d
		}
	}
	if in.KidName != nil {
		p.KidName = *in.KidName
	}
	if in.KidAge != nil {
		p.KidAge = *in.KidAge
	}
	if in.LocationName != nil {
		p.LocationName = *in.LocationName
	}
	if in.PhoneNumber != nil {
		p.PhoneNumber = *in.PhoneNumber
	}
	if in.Deposit != nil {
		p.Deposit = *in.Deposit
	}
	if in.PartyType != nil {
		p.PartyType = *in.PartyType
	}

	setText(&p.StartTime, in.StartTime)
	setText(&p.EndTime, in.EndTime)
	setText(&p.Address, in.Address)
	setText(&p.ParentName, in.ParentName)
	setText(&p.ParentEmail, in.ParentEmail)
	setText(&p.KidsCatering, in.KidsCatering)
	setText(&p.ParentsCatering, in.ParentsCatering)
	setText(&p.Notes, in.Notes)

	if in.GuestsCount != nil {
		p.GuestsCount = intPtr(*in.GuestsCount)
	}
	if in.KidsCount != nil {
		p.KidsCount = intPtr(*in.KidsCount)
	}
	if in.ParentsCount != nil {
		p.ParentsCount = intPtr(*in.ParentsCount)
	}
}

func setText(dst **string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		*dst = nil
		return
	}
	s := *v
	*dst = &s
}

func intPtr(v int) *int {
	return &v
}
