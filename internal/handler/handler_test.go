package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shareit-platform/service-booking/internal/application"
	"github.com/shareit-platform/service-booking/internal/repository"
	"github.com/shareit-platform/service-booking/internal/testutil"
	"github.com/shareit-platform/service-booking/pkg/auth"
)

const (
	ownerID  int64 = 1
	bookerID int64 = 2
	adminID  int64 = 3
)

type testServer struct {
	router *gin.Engine
	jwt    *auth.JWTManager
	itemID int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	db := testutil.NewTestDB(t)
	for _, id := range []int64{ownerID, bookerID, adminID} {
		testutil.SeedUser(t, db, id)
	}
	itemID := testutil.SeedItem(t, db, ownerID, "Projector", true)

	store := repository.NewStore(db)
	log := zap.NewNop()
	bookings := application.NewBookingService(store, nil, log)
	items := application.NewItemService(store, nil, log)
	comments := application.NewCommentService(store, nil, log)
	requests := application.NewItemRequestService(store, nil, log)

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	router := gin.New()
	api := router.Group("")
	NewBookingHandler(bookings).RegisterRoutes(api, jwtManager)
	NewItemHandler(items, comments).RegisterRoutes(api, jwtManager)
	NewAdminBookingHandler(bookings).RegisterRoutes(api, jwtManager)
	NewItemRequestHandler(requests).RegisterRoutes(api, jwtManager)

	return &testServer{router: router, jwt: jwtManager, itemID: itemID}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func (s *testServer) do(t *testing.T, method, path string, userID int64, role auth.Role, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := s.jwt.GenerateAccessToken(userID, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func createBody(itemID int64, from, to time.Duration) gin.H {
	base := time.Now().UTC().Truncate(time.Hour).Add(48 * time.Hour)
	return gin.H{"item_id": itemID, "start": base.Add(from), "end": base.Add(to)}
}

func TestBookingRoutes_Lifecycle(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/bookings", bookerID, auth.RoleUser, createBody(s.itemID, 0, time.Hour))
	require.Equal(t, http.StatusCreated, status)
	var created application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "WAITING", created.Status)

	path := fmt.Sprintf("/api/v1/bookings/%d", created.ID)

	status, env = s.do(t, http.MethodPatch, path+"?approved=true", bookerID, auth.RoleUser, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ACCESS_DENIED", env.Error.Code)

	status, _ = s.do(t, http.MethodPatch, path+"?approved=maybe", ownerID, auth.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(t, http.MethodPatch, path+"?approved=true", ownerID, auth.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	var approved application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &approved))
	assert.Equal(t, "APPROVED", approved.Status)

	status, env = s.do(t, http.MethodPatch, path+"?approved=false", ownerID, auth.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ALREADY_PROCESSED", env.Error.Code)

	status, env = s.do(t, http.MethodPost, "/api/v1/bookings", adminID, auth.RoleUser, createBody(s.itemID, 30*time.Minute, 90*time.Minute))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "OVERLAP_CONFLICT", env.Error.Code)

	status, _ = s.do(t, http.MethodGet, path, bookerID, auth.RoleUser, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, path, adminID, auth.RoleUser, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/bookings/owner?state=FUTURE", ownerID, auth.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	var list []application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)
}

func TestBookingRoutes_Errors(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/bookings", 0, "", createBody(s.itemID, 0, time.Hour))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, env = s.do(t, http.MethodPost, "/api/v1/bookings", ownerID, auth.RoleUser, createBody(s.itemID, 0, time.Hour))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "SELF_BOOKING", env.Error.Code)

	status, env = s.do(t, http.MethodPost, "/api/v1/bookings", bookerID, auth.RoleUser, createBody(s.itemID, time.Hour, 0))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INTERVAL", env.Error.Code)

	status, _ = s.do(t, http.MethodPost, "/api/v1/bookings", bookerID, auth.RoleUser, gin.H{"item_id": s.itemID})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/bookings?state=UNSUPPORTED_STATUS", bookerID, auth.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", env.Error.Message)

	status, _ = s.do(t, http.MethodGet, "/api/v1/bookings/abc", bookerID, auth.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/bookings/999", bookerID, auth.RoleUser, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestItemRoutes(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/items", ownerID, auth.RoleUser, gin.H{"name": "Speaker", "description": "Bluetooth speaker", "available": true})
	require.Equal(t, http.StatusCreated, status)
	var item application.ItemDTO
	require.NoError(t, json.Unmarshal(env.Data, &item))

	status, _ = s.do(t, http.MethodPost, "/api/v1/items", ownerID, auth.RoleUser, gin.H{"name": "  ", "description": "x", "available": true})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/items", ownerID, auth.RoleUser, gin.H{"name": "Lamp", "description": "x"})
	assert.Equal(t, http.StatusBadRequest, status)

	path := fmt.Sprintf("/api/v1/items/%d", item.ID)
	status, _ = s.do(t, http.MethodPatch, path, bookerID, auth.RoleUser, gin.H{"name": "Stolen"})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(t, http.MethodPatch, path, ownerID, auth.RoleUser, gin.H{"available": false})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.False(t, item.Available)
	assert.Equal(t, "Speaker", item.Name)

	status, env = s.do(t, http.MethodGet, "/api/v1/items/search?text=projector", bookerID, auth.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	var found []application.ItemDTO
	require.NoError(t, json.Unmarshal(env.Data, &found))
	require.Len(t, found, 1)
	assert.Equal(t, s.itemID, found[0].ID)

	status, env = s.do(t, http.MethodGet, "/api/v1/items", ownerID, auth.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &found))
	assert.Len(t, found, 2)

	status, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/items/%d/comment", s.itemID), bookerID, auth.RoleUser, gin.H{"text": "Great"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestItemRequestRoutes(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/requests", bookerID, auth.RoleUser, gin.H{"description": "Need a tripod"})
	require.Equal(t, http.StatusCreated, status)
	var req application.ItemRequestDTO
	require.NoError(t, json.Unmarshal(env.Data, &req))
	assert.Equal(t, bookerID, req.RequesterID)

	status, _ = s.do(t, http.MethodPost, "/api/v1/requests", bookerID, auth.RoleUser, gin.H{"description": "  "})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/items", ownerID, auth.RoleUser,
		gin.H{"name": "Tripod", "description": "Carbon tripod", "available": true, "request_id": req.ID})
	require.Equal(t, http.StatusCreated, status)

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/requests/%d", req.ID), ownerID, auth.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &req))
	require.Len(t, req.Items, 1)
	assert.Equal(t, "Tripod", req.Items[0].Name)
	assert.Equal(t, ownerID, req.Items[0].OwnerID)

	var list []application.ItemRequestDTO
	status, env = s.do(t, http.MethodGet, "/api/v1/requests", bookerID, auth.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	status, env = s.do(t, http.MethodGet, "/api/v1/requests/all?from=0&size=20", bookerID, auth.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list)

	status, env = s.do(t, http.MethodGet, "/api/v1/requests/all", ownerID, auth.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	status, env = s.do(t, http.MethodGet, "/api/v1/requests/all?from=-1&size=20", ownerID, auth.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	status, _ = s.do(t, http.MethodGet, "/api/v1/requests/all?from=0&size=0", ownerID, auth.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/requests/999", ownerID, auth.RoleUser, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/v1/bookings", bookerID, auth.RoleUser, createBody(s.itemID, 0, time.Hour))
	require.Equal(t, http.StatusCreated, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/admin/bookings", bookerID, auth.RoleUser, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env := s.do(t, http.MethodGet, "/api/v1/admin/stats/bookings", adminID, auth.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	var stats application.BookingStatsDTO
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(1), stats.TotalBookings)

	status, env = s.do(t, http.MethodGet, "/api/v1/admin/bookings?page=1&limit=5", adminID, auth.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	var page []application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page, 1)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
	assert.Equal(t, 5, env.Meta.Limit)
	assert.Equal(t, 1, env.Meta.TotalPages)
}
