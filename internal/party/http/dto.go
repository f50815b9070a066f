package http

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/party-booking-backend/internal/party"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/request"
)

// RegisterValidators installs the partytype binding rule.
func RegisterValidators() {
	request.RegisterValidation("partytype", func(fl validator.FieldLevel) bool {
		return party.IsType(strings.TrimSpace(fl.Field().String()))
	})
}

// Amount is a money value that also accepts "" (as 0) and numeric strings.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*a = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			*a = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return &json.UnmarshalTypeError{Value: "string", Type: reflect.TypeOf(float64(0)), Field: "deposit"}
	}
	*a = Amount(v)
	return nil
}

func (a *Amount) float() *float64 {
	if a == nil {
		return nil
	}
	v := float64(*a)
	return &v
}

// CreatePartyRequest is the body of POST /parties.
type CreatePartyRequest struct {
	PartyDate    string  `json:"partyDate" binding:"required,date"`
	KidName      string  `json:"kidName" binding:"required"`
	KidAge       *int    `json:"kidAge" binding:"required"`
	LocationName string  `json:"locationName" binding:"required"`
	StartTime    *string `json:"startTime" binding:"omitempty,hhmm"`
	EndTime      *string `json:"endTime" binding:"omitempty,hhmm"`
	Address      *string `json:"address"`
	ParentName   *string `json:"parentName"`
	ParentEmail  *string `json:"parentEmail" binding:"omitempty,optemail"`
	GuestsCount  *int    `json:"guestsCount"`
	PhoneNumber  string  `json:"phoneNumber" binding:"required"`
	Deposit      *Amount `json:"deposit" binding:"omitempty,min=0"`
	PartyType    *string `json:"partyType" binding:"omitempty,partytype"`

	KidsCount       *int    `json:"kidsCount"`
	ParentsCount    *int    `json:"parentsCount"`
	KidsCatering    *string `json:"kidsCatering"`
	ParentsCatering *string `json:"parentsCatering"`
	Notes           *string `json:"notes"`
}

func (r *CreatePartyRequest) ToInput() party.Input {
	return party.Input{
		PartyDate:       &r.PartyDate,
		KidName:         &r.KidName,
		KidAge:          r.KidAge,
		LocationName:    &r.LocationName,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Address:         r.Address,
		ParentName:      r.ParentName,
		ParentEmail:     r.ParentEmail,
		GuestsCount:     r.GuestsCount,
		PhoneNumber:     &r.PhoneNumber,
		Deposit:         r.Deposit.float(),
		PartyType:       r.PartyType,
		KidsCount:       r.KidsCount,
		ParentsCount:    r.ParentsCount,
		KidsCatering:    r.KidsCatering,
		ParentsCatering: r.ParentsCatering,
		Notes:           r.Notes,
	}
}

// UpdatePartyRequest is the body of PUT /parties/:id. Absent fields are left unchanged.
type UpdatePartyRequest struct {
	PartyDate    *string `json:"partyDate" binding:"omitempty,date"`
	KidName      *string `json:"kidName"`
	KidAge       *int    `json:"kidAge"`
	LocationName *string `json:"locationName"`
	StartTime    *string `json:"startTime" binding:"omitempty,hhmm"`
	EndTime      *string `json:"endTime" binding:"omitempty,hhmm"`
	Address      *string `json:"address"`
	ParentName   *string `json:"parentName"`
	ParentEmail  *string `json:"parentEmail" binding:"omitempty,optemail"`
	GuestsCount  *int    `json:"guestsCount"`
	PhoneNumber  *string `json:"phoneNumber"`
	Deposit      *Amount `json:"deposit" binding:"omitempty,min=0"`
	PartyType    *string `json:"partyType" binding:"omitempty,partytype"`

	KidsCount       *int    `json:"kidsCount"`
	ParentsCount    *int    `json:"parentsCount"`
	KidsCatering    *string `json:"kidsCatering"`
	ParentsCatering *string `json:"parentsCatering"`
	Notes           *string `json:"notes"`
}

func (r *UpdatePartyRequest) ToInput() party.Input {
	return party.Input{
		PartyDate:       r.PartyDate,
		KidName:         r.KidName,
		KidAge:          r.KidAge,
		LocationName:    r.LocationName,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Address:         r.Address,
		ParentName:      r.ParentName,
		ParentEmail:     r.ParentEmail,
		GuestsCount:     r.GuestsCount,
		PhoneNumber:     r.PhoneNumber,
		Deposit:         r.Deposit.float(),
		PartyType:       r.PartyType,
		KidsCount:       r.KidsCount,
		ParentsCount:    r.ParentsCount,
		KidsCatering:    r.KidsCatering,
		ParentsCatering: r.ParentsCatering,
		Notes:           r.Notes,
	}
}

// ExportRequest selects the export format and an optional day range.
type ExportRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx ics CSV XLSX ICS"`
	From   string `form:"from" binding:"omitempty,date"`
	To     string `form:"to" binding:"omitempty,date"`
}

// PartyResponse is the wire shape of a party.
type PartyResponse struct {
	ID           string  `json:"id"`
	PartyDate    string  `json:"partyDate"`
	KidName      string  `json:"kidName"`
	KidAge       int     `json:"kidAge"`
	LocationName string  `json:"locationName"`
	StartTime    *string `json:"startTime,omitempty"`
	EndTime      *string `json:"endTime,omitempty"`
	Address      *string `json:"address,omitempty"`
	ParentName   *string `json:"parentName,omitempty"`
	ParentEmail  *string `json:"parentEmail,omitempty"`
	GuestsCount  *int    `json:"guestsCount,omitempty"`
	PhoneNumber  string  `json:"phoneNumber"`
	Deposit      float64 `json:"deposit"`
	PartyType    string  `json:"partyType"`

	KidsCount       *int    `json:"kidsCount,omitempty"`
	ParentsCount    *int    `json:"parentsCount,omitempty"`
	KidsCatering    *string `json:"kidsCatering,omitempty"`
	ParentsCatering *string `json:"parentsCatering,omitempty"`
	Notes           *string `json:"notes,omitempty"`

	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewPartyResponse(p *party.Party) PartyResponse {
	return PartyResponse{
		ID:              p.ID,
		PartyDate:       request.FormatDate(p.PartyDate),
		KidName:         p.KidName,
		KidAge:          p.KidAge,
		LocationName:    p.LocationName,
		StartTime:       p.StartTime,
		EndTime:         p.EndTime,
		Address:         p.Address,
		ParentName:      p.ParentName,
		ParentEmail:     p.ParentEmail,
		GuestsCount:     p.GuestsCount,
		PhoneNumber:     p.PhoneNumber,
		Deposit:         p.Deposit,
		PartyType:       p.PartyType,
		KidsCount:       p.KidsCount,
		ParentsCount:    p.ParentsCount,
		KidsCatering:    p.KidsCatering,
		ParentsCatering: p.ParentsCatering,
		Notes:           p.Notes,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func NewPartyListResponse(parties []*party.Party) []PartyResponse {
	items := make([]PartyResponse, len(parties))
	for i, p := range parties {
		items[i] = NewPartyResponse(p)
	}
	return items
}
