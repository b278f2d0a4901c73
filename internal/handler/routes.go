package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/pkg/middleware"
)

// RouteConfig carries the middleware shared by the API routes
type RouteConfig struct {
	// Auth resolves the actor; required
	Auth gin.HandlerFunc
	// Idempotency wraps write routes when set
	Idempotency gin.HandlerFunc
}

// RegisterRoutes mounts the event, venue and resource routes on group.
// Approve and reject are open to any authenticated role; the lifecycle
// table decides whether the caller may act on the event's current status.
func RegisterRoutes(group *gin.RouterGroup, events *EventHandler, inventory *InventoryHandler, cfg *RouteConfig) {
	group.Use(cfg.Auth)

	// write chains the role gate, then idempotency, then h
	write := func(gate, h gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, 3)
		if gate != nil {
			chain = append(chain, gate)
		}
		if cfg.Idempotency != nil {
			chain = append(chain, cfg.Idempotency)
		}
		return append(chain, h)
	}

	coordinator := middleware.RequireRoles(string(domain.RoleCoordinator))
	admin := middleware.RequireRoles(string(domain.RoleAdmin))

	ev := group.Group("/events")
	{
		ev.POST("", write(coordinator, events.Create)...)
		ev.GET("", events.List)
		ev.GET("/:id", events.Get)
		ev.PUT("/:id/approve", write(nil, events.Approve)...)
		ev.PUT("/:id/reject", write(nil, events.Reject)...)
		ev.PUT("/:id/start", write(coordinator, events.Start)...)
		ev.PUT("/:id/complete", write(coordinator, events.Complete)...)
	}

	venues := group.Group("/venues")
	{
		venues.GET("", inventory.ListVenues)
		venues.POST("", write(admin, inventory.CreateVenue)...)
	}

	resources := group.Group("/resources")
	{
		resources.GET("", inventory.ListResources)
		resources.POST("", write(admin, inventory.CreateResource)...)
		resources.PUT("/:id", write(admin, inventory.UpdateResource)...)
	}
}
