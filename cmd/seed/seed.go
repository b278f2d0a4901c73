package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/internal/dto"
	"github.com/SaicharanT-tech/eventra/internal/service"
	"github.com/SaicharanT-tech/eventra/pkg/logger"
	"github.com/SaicharanT-tech/eventra/pkg/middleware"
)

type devUser struct {
	Name       string
	Email      string
	Role       domain.Role
	Department string
}

var devUsers = []devUser{
	{Name: "Alice Coordinator", Email: "coordinator@inst.edu", Role: domain.RoleCoordinator, Department: "Computer Science"},
	{Name: "Bob HOD", Email: "hod@inst.edu", Role: domain.RoleHOD, Department: "Computer Science"},
	{Name: "Carol Dean", Email: "dean@inst.edu", Role: domain.RoleDean},
	{Name: "Dave Head", Email: "head@inst.edu", Role: domain.RoleInstitutionalHead},
	{Name: "Eve Admin", Email: "admin@inst.edu", Role: domain.RoleAdmin},
}

var seedVenues = []dto.CreateVenueRequest{
	{Name: "Main Auditorium", Capacity: 500},
	{Name: "CS Seminar Hall", Capacity: 100},
	{Name: "Conference Room A", Capacity: 20},
}

var seedResources = []dto.CreateResourceRequest{
	{Name: "Projector", Type: string(domain.ResourceEquipment), QuantityAvailable: 10},
	{Name: "PA System", Type: string(domain.ResourceEquipment), QuantityAvailable: 5},
	{Name: "Catering Service (Standard)", Type: string(domain.ResourceFood), QuantityAvailable: 2},
	{Name: "Live Streaming Setup", Type: string(domain.ResourceITC), QuantityAvailable: 3},
}

// userID derives a stable id from the email so reseeding keeps tokens valid
// for events already created.
func userID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String()
}

type seedResult struct {
	Created int
	Skipped int
}

// seedInventory creates the demo venues and resources, leaving existing
// names untouched.
func seedInventory(ctx context.Context, svc service.InventoryService, log *logger.Logger) (*seedResult, error) {
	res := &seedResult{}

	for i := range seedVenues {
		req := seedVenues[i]
		v, err := svc.CreateVenue(ctx, &req)
		switch {
		case errors.Is(err, domain.ErrDuplicateName):
			res.Skipped++
			log.Info("Venue already exists", zap.String("name", req.Name))
		case err != nil:
			return res, err
		default:
			res.Created++
			log.Info("Venue seeded", zap.String("id", v.ID), zap.String("name", v.Name))
		}
	}

	for i := range seedResources {
		req := seedResources[i]
		r, err := svc.CreateResource(ctx, &req)
		switch {
		case errors.Is(err, domain.ErrDuplicateName):
			res.Skipped++
			log.Info("Resource already exists", zap.String("name", req.Name))
		case err != nil:
			return res, err
		default:
			res.Created++
			log.Info("Resource seeded", zap.String("id", r.ID), zap.String("name", r.Name))
		}
	}

	return res, nil
}

type devToken struct {
	User  devUser
	ID    string
	Token string
}

// mintTokens signs one access token per demo user
func mintTokens(auth *middleware.AuthConfig, ttl time.Duration) ([]devToken, error) {
	out := make([]devToken, 0, len(devUsers))
	for _, u := range devUsers {
		id := userID(u.Email)
		tok, err := middleware.SignToken(auth, middleware.Claims{
			UserID:     id,
			Name:       u.Name,
			Role:       string(u.Role),
			Department: u.Department,
		}, ttl)
		if err != nil {
			return nil, err
		}
		out = append(out, devToken{User: u, ID: id, Token: tok})
	}
	return out, nil
}
