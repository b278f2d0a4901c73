package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/internal/dto"
	"github.com/SaicharanT-tech/eventra/pkg/response"
)

func setupEventRouter(h *EventHandler, actor *domain.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if actor != nil {
		router.Use(func(c *gin.Context) {
			c.Set("user_id", actor.ID)
			c.Set("role", string(actor.Role))
			c.Next()
		})
	}

	events := router.Group("/events")
	{
		events.POST("", h.Create)
		events.GET("", h.List)
		events.GET("/:id", h.Get)
		events.PUT("/:id/approve", h.Approve)
		events.PUT("/:id/reject", h.Reject)
		events.PUT("/:id/start", h.Start)
		events.PUT("/:id/complete", h.Complete)
	}
	return router
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var env response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid envelope %q: %v", w.Body.String(), err)
	}
	return env
}

var coordinator = &domain.Actor{ID: "alice", Role: domain.RoleCoordinator}

func validCreateBody() *dto.CreateEventRequest {
	return &dto.CreateEventRequest{
		Title:        "Tech Talk",
		Department:   "CS",
		Date:         "2026-11-20",
		StartTime:    "10:00",
		EndTime:      "12:00",
		Participants: 50,
		VenueID:      "hall",
		Resources:    []dto.ResourceLineRequest{{ResourceID: "projector", Quantity: 2}},
	}
}

func TestEventHandler_Create(t *testing.T) {
	tests := []struct {
		name            string
		actor           *domain.Actor
		body            interface{}
		mockFunc        func(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error)
		expectedStatus  int
		expectedCode    string
		expectedMessage string
	}{
		{
			name:  "created",
			actor: coordinator,
			body:  validCreateBody(),
			mockFunc: func(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error) {
				e := req.ToDomain(actor.ID)
				e.ID = "event-1"
				return e, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unauthorized - no actor",
			body:           validCreateBody(),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:           "missing title",
			actor:          coordinator,
			body:           map[string]interface{}{"department": "CS"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeValidation,
		},
		{
			name:  "time conflict",
			actor: coordinator,
			body:  validCreateBody(),
			mockFunc: func(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error) {
				return nil, domain.NewError(domain.ErrSchedulingConflict, "Time conflict with event: %s", "Robotics Demo")
			},
			expectedStatus:  http.StatusBadRequest,
			expectedCode:    CodeSchedulingConflict,
			expectedMessage: "Time conflict with event: Robotics Demo",
		},
		{
			name:  "capacity exceeded",
			actor: coordinator,
			body:  validCreateBody(),
			mockFunc: func(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error) {
				return nil, domain.NewError(domain.ErrCapacityExceeded, "Venue capacity (20) is less than participants (50)")
			},
			expectedStatus:  http.StatusBadRequest,
			expectedCode:    CodeCapacityExceeded,
			expectedMessage: "Venue capacity (20) is less than participants (50)",
		},
		{
			name:  "unknown venue",
			actor: coordinator,
			body:  validCreateBody(),
			mockFunc: func(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error) {
				return nil, domain.ErrVenueNotFound
			},
			expectedStatus:  http.StatusNotFound,
			expectedCode:    CodeNotFound,
			expectedMessage: "Venue not found",
		},
		{
			name:  "store unavailable",
			actor: coordinator,
			body:  validCreateBody(),
			mockFunc: func(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error) {
				return nil, fmt.Errorf("failed to create event: %w", domain.ErrStoreUnavailable)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   CodeStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewEventHandler(&MockEventService{CreateEventFunc: tt.mockFunc})
			router := setupEventRouter(h, tt.actor)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}

			env := decodeEnvelope(t, w)
			if tt.expectedCode == "" {
				if !env.Success {
					t.Errorf("expected success envelope, got %s", w.Body.String())
				}
				return
			}
			if env.Success || env.Error == nil {
				t.Fatalf("expected error envelope, got %s", w.Body.String())
			}
			if env.Error.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, env.Error.Code)
			}
			if tt.expectedMessage != "" && env.Error.Message != tt.expectedMessage {
				t.Errorf("expected message %q, got %q", tt.expectedMessage, env.Error.Message)
			}
		})
	}
}

func TestEventHandler_Create_PassesActor(t *testing.T) {
	var got domain.Actor
	h := NewEventHandler(&MockEventService{
		CreateEventFunc: func(ctx context.Context, actor domain.Actor, req *dto.CreateEventRequest) (*domain.Event, error) {
			got = actor
			e := req.ToDomain(actor.ID)
			e.ID = "event-1"
			return e, nil
		},
	})
	router := setupEventRouter(h, coordinator)

	body, _ := json.Marshal(validCreateBody())
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got != *coordinator {
		t.Errorf("expected actor %+v, got %+v", *coordinator, got)
	}

	var env struct {
		Data dto.EventResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Data.Coordinator != "alice" || env.Data.Status != string(domain.StatusPending) {
		t.Errorf("unexpected event %+v", env.Data)
	}
	if len(env.Data.Resources) != 1 || env.Data.Resources[0].Quantity != 2 {
		t.Errorf("unexpected resources %+v", env.Data.Resources)
	}
}

func TestEventHandler_List(t *testing.T) {
	h := NewEventHandler(&MockEventService{
		ListEventsFunc: func(ctx context.Context, actor domain.Actor) ([]*domain.Event, error) {
			return []*domain.Event{
				{ID: "a", Status: domain.StatusPending},
				{ID: "b", Status: domain.StatusApproved},
			}, nil
		},
	})
	router := setupEventRouter(h, &domain.Actor{ID: "bob", Role: domain.RoleHOD})

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var env struct {
		Data []dto.EventResponse `json:"data"`
		Meta response.ListMeta   `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if len(env.Data) != 2 || env.Meta.Total != 2 {
		t.Errorf("expected 2 events, got %d (total %d)", len(env.Data), env.Meta.Total)
	}
}

func TestEventHandler_List_EmbedsVenueAndResources(t *testing.T) {
	h := NewEventHandler(&MockEventService{
		ListEventsFunc: func(ctx context.Context, actor domain.Actor) ([]*domain.Event, error) {
			return []*domain.Event{{
				ID:      "a",
				Status:  domain.StatusDeanApproved,
				VenueID: "hall",
				Venue:   &domain.Venue{ID: "hall", Name: "Main Auditorium", Capacity: 500},
				Resources: []domain.ResourceLine{
					{
						ResourceID: "proj",
						Quantity:   2,
						Resource:   &domain.Resource{ID: "proj", Name: "Projector", Type: domain.ResourceEquipment},
					},
					{ResourceID: "gone", Quantity: 1},
				},
			}}, nil
		},
	})
	router := setupEventRouter(h, &domain.Actor{ID: "dave", Role: domain.RoleInstitutionalHead})

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var env struct {
		Data []dto.EventResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if len(env.Data) != 1 {
		t.Fatalf("expected 1 event, got %d", len(env.Data))
	}
	got := env.Data[0]
	if got.Venue == nil || got.Venue.Name != "Main Auditorium" || got.Venue.Capacity != 500 {
		t.Errorf("venue not embedded: %+v", got.Venue)
	}
	if len(got.Resources) != 2 {
		t.Fatalf("expected 2 resource lines, got %d", len(got.Resources))
	}
	if r := got.Resources[0].Resource; r == nil || r.Name != "Projector" || r.Type != "equipment" {
		t.Errorf("resource not embedded: %+v", r)
	}
	if got.Resources[1].Resource != nil {
		t.Errorf("unresolved line should carry no resource, got %+v", got.Resources[1].Resource)
	}
	if !strings.Contains(w.Body.String(), `"venue":{"id":"hall","name":"Main Auditorium","capacity":500}`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestEventHandler_Get_NotVisible(t *testing.T) {
	h := NewEventHandler(&MockEventService{})
	router := setupEventRouter(h, coordinator)

	req := httptest.NewRequest(http.MethodGet, "/events/someone-else", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Error == nil || env.Error.Message != "Event not found" {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestEventHandler_Decisions(t *testing.T) {
	hod := &domain.Actor{ID: "bob", Role: domain.RoleHOD}

	tests := []struct {
		name           string
		path           string
		body           string
		expectedReason string
	}{
		{"approve with reason", "/events/e1/approve", `{"reason":"Looks good"}`, "Looks good"},
		{"approve without body", "/events/e1/approve", "", ""},
		{"reject with reason", "/events/e1/reject", `{"reason":"Clashes with exams"}`, "Clashes with exams"},
		{"reject without body", "/events/e1/reject", "", domain.DefaultRejectReason},
		{"reject with empty reason", "/events/e1/reject", `{"reason":""}`, domain.DefaultRejectReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotReason, gotID string
			record := func(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Event, error) {
				gotID, gotReason = id, reason
				return &domain.Event{ID: id, Status: domain.StatusHODApproved}, nil
			}
			h := NewEventHandler(&MockEventService{ApproveFunc: record, RejectFunc: record})
			router := setupEventRouter(h, hod)

			var body *bytes.Buffer
			if tt.body != "" {
				body = bytes.NewBufferString(tt.body)
			} else {
				body = &bytes.Buffer{}
			}
			req := httptest.NewRequest(http.MethodPut, tt.path, body)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
			}
			if gotID != "e1" {
				t.Errorf("expected id e1, got %q", gotID)
			}
			if gotReason != tt.expectedReason {
				t.Errorf("expected reason %q, got %q", tt.expectedReason, gotReason)
			}
		})
	}
}

func TestEventHandler_Decisions_InvalidBody(t *testing.T) {
	h := NewEventHandler(&MockEventService{})
	router := setupEventRouter(h, &domain.Actor{ID: "bob", Role: domain.RoleHOD})

	req := httptest.NewRequest(http.MethodPut, "/events/e1/approve", bytes.NewBufferString(`{"reason":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestEventHandler_TransitionErrors(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "wrong approver",
			path:           "/events/e1/approve",
			err:            domain.NewError(domain.ErrInvalidTransition, "Event at Dean Approved awaits Institutional Head, not HOD"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeInvalidTransition,
		},
		{
			name:           "final approval shortage",
			path:           "/events/e1/approve",
			err:            domain.NewError(domain.ErrResourceUnavailable, "Not enough Projector available"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeResourceUnavailable,
		},
		{
			name:           "reject missing event",
			path:           "/events/missing/reject",
			err:            domain.ErrEventNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   CodeNotFound,
		},
		{
			name:           "start before approval",
			path:           "/events/e1/start",
			err:            domain.NewError(domain.ErrInvalidTransition, "Only fully approved events can be started"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeInvalidTransition,
		},
		{
			name:           "complete twice",
			path:           "/events/e1/complete",
			err:            domain.NewError(domain.ErrInvalidTransition, "Only running events can be completed"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeInvalidTransition,
		},
		{
			name:           "unexpected failure",
			path:           "/events/e1/complete",
			err:            fmt.Errorf("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fail := func(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Event, error) {
				return nil, tt.err
			}
			failNoReason := func(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error) {
				return nil, tt.err
			}
			h := NewEventHandler(&MockEventService{
				ApproveFunc:  fail,
				RejectFunc:   fail,
				StartFunc:    failNoReason,
				CompleteFunc: failNoReason,
			})
			router := setupEventRouter(h, coordinator)

			req := httptest.NewRequest(http.MethodPut, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			env := decodeEnvelope(t, w)
			if env.Error == nil || env.Error.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, w.Body.String())
			}
			if tt.expectedStatus == http.StatusBadRequest && env.Error.Message != domain.UserMessage(tt.err) {
				t.Errorf("expected message %q, got %q", domain.UserMessage(tt.err), env.Error.Message)
			}
		})
	}
}
