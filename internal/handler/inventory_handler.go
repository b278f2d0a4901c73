package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/internal/dto"
	"github.com/SaicharanT-tech/eventra/internal/service"
	"github.com/SaicharanT-tech/eventra/pkg/response"
	"github.com/SaicharanT-tech/eventra/pkg/telemetry"
)

// InventoryHandler handles venue and resource requests
type InventoryHandler struct {
	inventoryService service.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// ListVenues handles GET /venues
func (h *InventoryHandler) ListVenues(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.venue.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	venues, err := h.inventoryService.ListVenues(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	out := make([]*dto.VenueResponse, 0, len(venues))
	for _, v := range venues {
		out = append(out, dto.FromVenue(v))
	}
	response.List(c, out, len(out))
}

// CreateVenue handles POST /venues
func (h *InventoryHandler) CreateVenue(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.venue.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		bindError(c, err)
		return
	}

	venue, err := h.inventoryService.CreateVenue(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("venue_id", venue.ID))
	response.Created(c, dto.FromVenue(venue))
}

// ListResources handles GET /resources
func (h *InventoryHandler) ListResources(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.resource.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	resources, err := h.inventoryService.ListResources(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	response.List(c, fromResources(resources), len(resources))
}

// CreateResource handles POST /resources
func (h *InventoryHandler) CreateResource(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.resource.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		bindError(c, err)
		return
	}

	res, err := h.inventoryService.CreateResource(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("resource_id", res.ID))
	response.Created(c, dto.FromResource(res))
}

// UpdateResource handles PUT /resources/:id
func (h *InventoryHandler) UpdateResource(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.resource.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("resource_id", id))

	var req dto.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		bindError(c, err)
		return
	}

	res, err := h.inventoryService.UpdateResource(ctx, id, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	response.Success(c, dto.FromResource(res))
}

func fromResources(resources []*domain.Resource) []*dto.ResourceResponse {
	out := make([]*dto.ResourceResponse, 0, len(resources))
	for _, r := range resources {
		out = append(out, dto.FromResource(r))
	}
	return out
}
