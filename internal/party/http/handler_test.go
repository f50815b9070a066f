package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/party-booking-backend/internal/auth"
	"github.com/nekogravitycat/party-booking-backend/internal/export"
	"github.com/nekogravitycat/party-booking-backend/internal/party"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/party-booking-backend/internal/pkg/response"
)

const (
	testUserID  = "9b2e8a0c-6f0e-4c35-8d8a-1f1f2f3f4f5f"
	testPartyID = "6f1c7a52-2a43-4b7e-9f57-0d2a3f0c1e01"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) FindInRange(ctx context.Context, from, to time.Time) ([]*party.Party, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*party.Party), args.Error(1)
}

func (m *mockService) FindAll(ctx context.Context) ([]*party.Party, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*party.Party), args.Error(1)
}

func (m *mockService) GetByID(ctx context.Context, id string) (*party.Party, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *mockService) Create(ctx context.Context, actorID string, in party.Input) (*party.Party, error) {
	args := m.Called(ctx, actorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *mockService) Update(ctx context.Context, actorID, id string, in party.Input) (*party.Party, error) {
	args := m.Called(ctx, actorID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *mockService) Delete(ctx context.Context, actorID, id string) error {
	return m.Called(ctx, actorID, id).Error(0)
}

func (m *mockService) DeleteInRange(ctx context.Context, actorID string, from, to time.Time) (int64, error) {
	args := m.Called(ctx, actorID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockService) DeleteAll(ctx context.Context, actorID string) (int64, error) {
	args := m.Called(ctx, actorID)
	return args.Get(0).(int64), args.Error(1)
}

func fakeSession(c *gin.Context) {
	auth.SetSession(c, &auth.Session{UserID: testUserID, Email: "admin@partyzala.com"})
	c.Next()
}

func setupRouter(svc party.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), NewHandler(svc, export.New(time.UTC)), fakeSession)
	return r
}

func executeRequest(r *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func sampleParty() *party.Party {
	start := "10:00"
	return &party.Party{
		ID:           testPartyID,
		PartyDate:    day("2025-01-15"),
		KidName:      "Иван",
		KidAge:       7,
		LocationName: "Зала 1",
		StartTime:    &start,
		PhoneNumber:  "0888123456",
		CreatedBy:    testUserID,
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestList(t *testing.T) {
	t.Run("returns parties in range", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(svc)
		svc.On("FindInRange", mock.Anything, day("2025-01-01"), day("2025-01-31")).
			Return([]*party.Party{sampleParty()}, nil).Once()

		w := executeRequest(r, http.MethodGet, "/api/parties?from=2025-01-01&to=2025-01-31", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var items []PartyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
		require.Len(t, items, 1)
		assert.Equal(t, "2025-01-15", items[0].PartyDate)
		assert.Equal(t, "10:00", *items[0].StartTime)
	})

	t.Run("empty range encodes as empty array", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(svc)
		svc.On("FindInRange", mock.Anything, mock.Anything, mock.Anything).Return([]*party.Party{}, nil).Once()

		w := executeRequest(r, http.MethodGet, "/api/parties?from=2025-01-01&to=2025-01-02", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
	})

	t.Run("missing and malformed bounds", func(t *testing.T) {
		r := setupRouter(new(mockService))

		w := executeRequest(r, http.MethodGet, "/api/parties?from=2025-01-01", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "to", decodeError(t, w).Issues[0].Path)

		w = executeRequest(r, http.MethodGet, "/api/parties?from=01/01/2025&to=2025-01-02", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "from", decodeError(t, w).Issues[0].Path)
	})

	t.Run("range cap from service", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(svc)
		svc.On("FindInRange", mock.Anything, mock.Anything, mock.Anything).Return(nil, party.ErrRangeTooLong).Once()

		w := executeRequest(r, http.MethodGet, "/api/parties?from=2025-01-01&to=2025-06-01", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "date range cannot exceed 3 months", decodeError(t, w).Error)
	})
}

func TestCreate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(svc)

		svc.On("Create", mock.Anything, testUserID, mock.MatchedBy(func(in party.Input) bool {
			return *in.KidName == "Иван" && *in.KidAge == 7 && in.Deposit != nil && *in.Deposit == 0
		})).Return(sampleParty(), nil).Once()

		body := `{"partyDate":"2025-01-15","kidName":"Иван","kidAge":7,"locationName":"Зала 1",` +
			`"phoneNumber":"0888123456","deposit":"","parentEmail":"","startTime":"10:00"}`
		w := executeRequest(r, http.MethodPost, "/api/parties", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp PartyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, testPartyID, resp.ID)
		svc.AssertExpectations(t)
	})

	t.Run("binding failures list fields", func(t *testing.T) {
		r := setupRouter(new(mockService))

		body := `{"partyDate":"15.01.2025","kidAge":7,"locationName":"Зала","phoneNumber":"1","startTime":"7pm","partyType":"Боулинг"}`
		w := executeRequest(r, http.MethodPost, "/api/parties", body)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeError(t, w)
		paths := make([]string, 0, len(resp.Issues))
		for _, i := range resp.Issues {
			paths = append(paths, i.Path)
		}
		assert.ElementsMatch(t, []string{"partyDate", "kidName", "startTime", "partyType"}, paths)
	})

	t.Run("wrong type", func(t *testing.T) {
		r := setupRouter(new(mockService))

		body := `{"partyDate":"2025-01-15","kidName":"Иван","kidAge":"seven","locationName":"Зала","phoneNumber":"1"}`
		w := executeRequest(r, http.MethodPost, "/api/parties", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "kidAge", decodeError(t, w).Issues[0].Path)
	})

	t.Run("domain validation from service", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(svc)
		svc.On("Create", mock.Anything, testUserID, mock.Anything).
			Return(nil, apperror.Validation(apperror.FieldError{Path: "kidAge", Message: "must be between 1 and 18"})).Once()

		body := `{"partyDate":"2025-01-15","kidName":"Иван","kidAge":40,"locationName":"Зала","phoneNumber":"1"}`
		w := executeRequest(r, http.MethodPost, "/api/parties", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation error", decodeError(t, w).Error)
	})
}

func TestGetUpdateDelete(t *testing.T) {
	t.Run("get not found", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(svc)
		svc.On("GetByID", mock.Anything, testPartyID).Return(nil, party.ErrNotFound).Once()

		w := executeRequest(r, http.MethodGet, "/api/parties/"+testPartyID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		r := setupRouter(new(mockService))
		w := executeRequest(r, http.MethodGet, "/api/parties/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("partial update", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(svc)

		updated := sampleParty()
		updated.KidAge = 8
		svc.On("Update", mock.Anything, testUserID, testPartyID, mock.MatchedBy(func(in party.Input) bool {
			return in.KidAge != nil && *in.KidAge == 8 && in.KidName == nil && in.Notes != nil && *in.Notes == ""
		})).Return(updated, nil).Once()

		w := executeRequest(r, http.MethodPut, "/api/parties/"+testPartyID, `{"kidAge":8,"notes":""}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"kidAge":8`)
	})

	t.Run("update forbidden", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(svc)
		svc.On("Update", mock.Anything, testUserID, testPartyID, mock.Anything).Return(nil, party.ErrPermissionDenied).Once()

		w := executeRequest(r, http.MethodPut, "/api/parties/"+testPartyID, `{}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(svc)
		svc.On("Delete", mock.Anything, testUserID, testPartyID).Return(nil).Once()

		w := executeRequest(r, http.MethodDelete, "/api/parties/"+testPartyID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Party deleted successfully"}`, w.Body.String())
	})
}

func TestBulkDelete(t *testing.T) {
	t.Run("range", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(svc)
		svc.On("DeleteInRange", mock.Anything, testUserID, day("2025-01-01"), day("2025-12-31")).Return(int64(4), nil).Once()

		w := executeRequest(r, http.MethodDelete, "/api/parties/range?from=2025-01-01&to=2025-12-31", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"message":"Parties deleted successfully","deletedCount":4,"from":"2025-01-01","to":"2025-12-31"}`,
			w.Body.String())
	})

	t.Run("inverted range", func(t *testing.T) {
		r := setupRouter(new(mockService))
		w := executeRequest(r, http.MethodDelete, "/api/parties/range?from=2025-02-01&to=2025-01-01", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("all", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(svc)
		svc.On("DeleteAll", mock.Anything, testUserID).Return(int64(0), nil).Once()

		w := executeRequest(r, http.MethodDelete, "/api/parties/all", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"All parties deleted successfully","deletedCount":0}`, w.Body.String())
	})
}

func TestExport(t *testing.T) {
	t.Run("csv of everything", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(svc)
		svc.On("FindAll", mock.Anything).Return([]*party.Party{sampleParty()}, nil).Once()

		w := executeRequest(r, http.MethodGet, "/api/parties/export?format=csv", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
		assert.Contains(t, w.Body.String(), "15.01.2025")
	})

	t.Run("ics in range", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(svc)
		svc.On("FindInRange", mock.Anything, day("2025-01-01"), day("2025-01-31")).
			Return([]*party.Party{sampleParty()}, nil).Once()

		w := executeRequest(r, http.MethodGet, "/api/parties/export?format=ics&from=2025-01-01&to=2025-01-31", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	})

	t.Run("half range and unknown format", func(t *testing.T) {
		r := setupRouter(new(mockService))

		w := executeRequest(r, http.MethodGet, "/api/parties/export?from=2025-01-01", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = executeRequest(r, http.MethodGet, "/api/parties/export?format=pdf", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
