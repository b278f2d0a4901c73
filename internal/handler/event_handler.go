package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/internal/dto"
	"github.com/SaicharanT-tech/eventra/internal/service"
	"github.com/SaicharanT-tech/eventra/pkg/response"
	"github.com/SaicharanT-tech/eventra/pkg/telemetry"
)

// EventHandler handles event lifecycle HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// Create handles POST /events
func (h *EventHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "User not found in context")
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		bindError(c, err)
		return
	}

	event, err := h.eventService.CreateEvent(ctx, actor, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, dto.FromEvent(event))
}

// List handles GET /events
func (h *EventHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "User not found in context")
		return
	}

	events, err := h.eventService.ListEvents(ctx, actor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.List(c, dto.FromEvents(events), len(events))
}

// Get handles GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "User not found in context")
		return
	}

	id := c.Param("id")
	span.SetAttributes(attribute.String("event_id", id))

	event, err := h.eventService.GetEvent(ctx, actor, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.FromEvent(event))
}

// Approve handles PUT /events/:id/approve. The body and its reason are optional.
func (h *EventHandler) Approve(c *gin.Context) {
	h.decide(c, "handler.event.approve", func(ctx context.Context, actor domain.Actor, id string, req *dto.DecisionRequest) (*domain.Event, error) {
		return h.eventService.Approve(ctx, actor, id, req.ReasonOr(""))
	})
}

// Reject handles PUT /events/:id/reject
func (h *EventHandler) Reject(c *gin.Context) {
	h.decide(c, "handler.event.reject", func(ctx context.Context, actor domain.Actor, id string, req *dto.DecisionRequest) (*domain.Event, error) {
		return h.eventService.Reject(ctx, actor, id, req.ReasonOr(domain.DefaultRejectReason))
	})
}

// Start handles PUT /events/:id/start
func (h *EventHandler) Start(c *gin.Context) {
	h.decide(c, "handler.event.start", func(ctx context.Context, actor domain.Actor, id string, _ *dto.DecisionRequest) (*domain.Event, error) {
		return h.eventService.Start(ctx, actor, id)
	})
}

// Complete handles PUT /events/:id/complete
func (h *EventHandler) Complete(c *gin.Context) {
	h.decide(c, "handler.event.complete", func(ctx context.Context, actor domain.Actor, id string, _ *dto.DecisionRequest) (*domain.Event, error) {
		return h.eventService.Complete(ctx, actor, id)
	})
}

type transitionFunc func(ctx context.Context, actor domain.Actor, id string, req *dto.DecisionRequest) (*domain.Event, error)

func (h *EventHandler) decide(c *gin.Context, spanName string, fn transitionFunc) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), spanName)
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "User not found in context")
		return
	}

	id := c.Param("id")
	span.SetAttributes(
		attribute.String("event_id", id),
		attribute.String("role", string(actor.Role)),
	)

	var req dto.DecisionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid request")
			bindError(c, err)
			return
		}
	}

	event, err := fn(ctx, actor, id, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("status", string(event.Status)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.FromEvent(event))
}
