// Package client is a typed REST client for the party scheduler API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/nekogravitycat/party-booking-backend/internal/calendar"
	calHttp "github.com/nekogravitycat/party-booking-backend/internal/calendar/http"
	"github.com/nekogravitycat/party-booking-backend/internal/party"
	partyHttp "github.com/nekogravitycat/party-booking-backend/internal/party/http"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/response"
	userHttp "github.com/nekogravitycat/party-booking-backend/internal/user/http"
)

// ErrUnauthorized is returned when the server rejects the session.
var ErrUnauthorized = errors.New("not authenticated")

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Message string
	Issues  []apperror.FieldError
}

func (e *APIError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.Path + " " + is.Message
	}
	return fmt.Sprintf("http %d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Client talks to one server. The session cookie set by Login is kept in its jar,
// so a Client represents one signed-in session.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a client for baseURL, e.g. http://localhost:4000.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
	}, nil
}

// Login starts a session and returns the signed-in user.
func (c *Client) Login(ctx context.Context, email, password string) (*userHttp.UserResponse, error) {
	var resp userHttp.MeResponse
	body := userHttp.LoginRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout ends the session on the server and drops the cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Me returns the user of the current session.
func (c *Client) Me(ctx context.Context) (*userHttp.UserResponse, error) {
	var resp userHttp.MeResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ListParties fetches the parties whose day lies in [from, to].
func (c *Client) ListParties(ctx context.Context, from, to time.Time) ([]*party.Party, error) {
	q := url.Values{}
	q.Set("from", request.FormatDate(from))
	q.Set("to", request.FormatDate(to))
	return c.listParties(ctx, "/api/parties?"+q.Encode())
}

// AllParties fetches every party.
func (c *Client) AllParties(ctx context.Context) ([]*party.Party, error) {
	return c.listParties(ctx, "/api/parties/all")
}

func (c *Client) listParties(ctx context.Context, path string) ([]*party.Party, error) {
	var items []partyHttp.PartyResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	parties := make([]*party.Party, 0, len(items))
	for _, it := range items {
		p, err := fromResponse(it)
		if err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, nil
}

func (c *Client) GetParty(ctx context.Context, id string) (*party.Party, error) {
	var resp partyHttp.PartyResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/parties/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return fromResponse(resp)
}

func (c *Client) CreateParty(ctx context.Context, body partyHttp.CreatePartyRequest) (*party.Party, error) {
	var resp partyHttp.PartyResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/parties", body, &resp); err != nil {
		return nil, err
	}
	return fromResponse(resp)
}

func (c *Client) UpdateParty(ctx context.Context, id string, body partyHttp.UpdatePartyRequest) (*party.Party, error) {
	var resp partyHttp.PartyResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/parties/"+url.PathEscape(id), body, &resp); err != nil {
		return nil, err
	}
	return fromResponse(resp)
}

func (c *Client) DeleteParty(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/parties/"+url.PathEscape(id), nil, nil)
}

// DeletePartiesInRange removes the parties in [from, to] and reports how many went.
func (c *Client) DeletePartiesInRange(ctx context.Context, from, to time.Time) (int64, error) {
	q := url.Values{}
	q.Set("from", request.FormatDate(from))
	q.Set("to", request.FormatDate(to))

	var resp response.DeletedResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/api/parties/range?"+q.Encode(), nil, &resp); err != nil {
		return 0, err
	}
	return resp.DeletedCount, nil
}

func (c *Client) DeleteAllParties(ctx context.Context) (int64, error) {
	var resp response.DeletedResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/api/parties/all", nil, &resp); err != nil {
		return 0, err
	}
	return resp.DeletedCount, nil
}

// Export streams an export file (csv, xlsx or ics) into w.
func (c *Client) Export(ctx context.Context, format string, w io.Writer) error {
	q := url.Values{}
	q.Set("format", format)

	req, err := c.newRequest(ctx, http.MethodGet, "/api/parties/export?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, func(body io.Reader) error {
		_, err := io.Copy(w, body)
		return err
	})
}

// Calendar fetches a server-rendered grid.
func (c *Client) Calendar(ctx context.Context, view calendar.View, date time.Time) (*calHttp.GridResponse, error) {
	q := url.Values{}
	q.Set("view", string(view))
	q.Set("date", request.FormatDate(date))

	var resp calHttp.GridResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/calendar?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.do(req, func(r io.Reader) error {
		if out == nil {
			return nil
		}
		return json.NewDecoder(r).Decode(out)
	})
}

func (c *Client) do(req *http.Request, read func(io.Reader) error) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var body response.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != "" {
			apiErr.Message = body.Error
			apiErr.Issues = body.Issues
		}
		return apiErr
	}
	return read(resp.Body)
}

func fromResponse(r partyHttp.PartyResponse) (*party.Party, error) {
	day, err := request.ParseDate(r.PartyDate)
	if err != nil {
		return nil, fmt.Errorf("party %s: %w", r.ID, err)
	}
	return &party.Party{
		ID:              r.ID,
		PartyDate:       day,
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
		Deposit:         r.Deposit,
		PartyType:       r.PartyType,
		KidsCount:       r.KidsCount,
		ParentsCount:    r.ParentsCount,
		KidsCatering:    r.KidsCatering,
		ParentsCatering: r.ParentsCatering,
		Notes:           r.Notes,
		CreatedBy:       r.CreatedBy,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}
