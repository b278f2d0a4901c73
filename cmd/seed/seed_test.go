package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/internal/dto"
	"github.com/SaicharanT-tech/eventra/pkg/logger"
	"github.com/SaicharanT-tech/eventra/pkg/middleware"
)

type recordingInventory struct {
	venues    map[string]bool
	resources map[string]bool
}

func (r *recordingInventory) ListVenues(context.Context) ([]*domain.Venue, error) { return nil, nil }

func (r *recordingInventory) ListResources(context.Context) ([]*domain.Resource, error) {
	return nil, nil
}

func (r *recordingInventory) CreateVenue(_ context.Context, req *dto.CreateVenueRequest) (*domain.Venue, error) {
	if r.venues[req.Name] {
		return nil, domain.NewError(domain.ErrDuplicateName, "Venue %q already exists", req.Name)
	}
	r.venues[req.Name] = true
	v := req.ToDomain()
	v.ID = req.Name
	return v, v.Validate()
}

func (r *recordingInventory) CreateResource(_ context.Context, req *dto.CreateResourceRequest) (*domain.Resource, error) {
	if r.resources[req.Name] {
		return nil, domain.NewError(domain.ErrDuplicateName, "Resource %q already exists", req.Name)
	}
	r.resources[req.Name] = true
	res := req.ToDomain()
	res.ID = req.Name
	return res, res.Validate()
}

func (r *recordingInventory) UpdateResource(context.Context, string, *dto.UpdateResourceRequest) (*domain.Resource, error) {
	return nil, nil
}

func TestSeedInventory_Idempotent(t *testing.T) {
	inv := &recordingInventory{venues: map[string]bool{}, resources: map[string]bool{}}
	ctx := context.Background()

	res, err := seedInventory(ctx, inv, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 7, res.Created)
	assert.Equal(t, 0, res.Skipped)
	assert.True(t, inv.resources["Live Streaming Setup"])

	res, err = seedInventory(ctx, inv, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 7, res.Skipped)
}

func TestMintTokens(t *testing.T) {
	auth := &middleware.AuthConfig{Secret: "seed-secret", Issuer: "eventra"}

	tokens, err := mintTokens(auth, time.Hour)
	require.NoError(t, err)
	require.Len(t, tokens, len(devUsers))

	for _, tok := range tokens {
		claims, err := middleware.ParseToken(auth, tok.Token)
		require.NoError(t, err)
		assert.Equal(t, tok.ID, claims.UserID)
		assert.Equal(t, string(tok.User.Role), claims.Role)
		assert.True(t, domain.Role(claims.Role).IsValid())
	}

	assert.Equal(t, userID("hod@inst.edu"), tokens[1].ID, "ids are stable across runs")
	assert.NotEqual(t, tokens[0].ID, tokens[1].ID)
}
