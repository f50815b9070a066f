package party

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/party-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "party not found")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "not authorized to modify this party")
	ErrRangeTooLong     = apperror.New(http.StatusBadRequest, "date range cannot exceed 3 months")
	ErrInvalidRange     = apperror.New(http.StatusBadRequest, "from date must not be after to date")
)

// Party types offered by the venue. The empty type means unspecified.
const (
	TypeOutdoor   = "Външно парти"
	TypePaintball = "Пейнтбол"
	TypeKidsHall  = "Детска зала"
)

// Types lists every accepted partyType value.
var Types = []string{TypeOutdoor, TypePaintball, TypeKidsHall, ""}

// IsType reports whether s is an accepted partyType.
func IsType(s string) bool {
	for _, t := range Types {
		if s == t {
			return true
		}
	}
	return false
}

// Party is one booked party. PartyDate is a calendar day at UTC midnight.
type Party struct {
	ID           string
	PartyDate    time.Time
	KidName      string
	KidAge       int
	LocationName string
	StartTime    *string
	EndTime      *string
	Address      *string
	ParentName   *string
	ParentEmail  *string
	GuestsCount  *int
	PhoneNumber  string
	Deposit      float64
	PartyType    string

	KidsCount       *int
	ParentsCount    *int
	KidsCatering    *string
	ParentsCatering *string
	Notes           *string

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter selects parties by day range and creator.
// Nil bounds are unbounded; both bounds are inclusive.
type Filter struct {
	From      *time.Time
	To        *time.Time
	CreatedBy string
}
