package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/pkg/database"
)

// PostgresVenueRepository implements VenueRepository using PostgreSQL
type PostgresVenueRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresVenueRepository creates a new PostgresVenueRepository
func NewPostgresVenueRepository(pool *pgxpool.Pool) *PostgresVenueRepository {
	return &PostgresVenueRepository{pool: pool}
}

const venueColumns = `id, name, capacity, availability_schedule, created_at, updated_at`

// Create inserts a venue. A taken name is ErrDuplicateName.
func (r *PostgresVenueRepository) Create(ctx context.Context, venue *domain.Venue) error {
	if venue.ID == "" {
		venue.ID = uuid.New().String()
	}
	if venue.AvailabilitySchedule == nil {
		venue.AvailabilitySchedule = []domain.AvailabilityBlock{}
	}
	schedule, err := json.Marshal(venue.AvailabilitySchedule)
	if err != nil {
		return fmt.Errorf("failed to encode availability schedule: %w", err)
	}

	now := time.Now()
	venue.CreatedAt, venue.UpdatedAt = now, now

	_, err = r.pool.Exec(ctx, `
		INSERT INTO venues (`+venueColumns+`)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6)
	`, venue.ID, venue.Name, venue.Capacity, schedule, venue.CreatedAt, venue.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.NewError(domain.ErrDuplicateName, "Venue %q already exists", venue.Name)
		}
		return storeErr("create venue", err)
	}
	return nil
}

// GetByID retrieves a venue by ID
func (r *PostgresVenueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = $1`, id)
	v, err := scanVenue(row)
	if err != nil {
		return nil, notFoundOr(domain.ErrVenueNotFound, "get venue", err)
	}
	return v, nil
}

// List returns all venues ordered by name
func (r *PostgresVenueRepository) List(ctx context.Context) ([]*domain.Venue, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY name`)
	if err != nil {
		return nil, storeErr("list venues", err)
	}
	return collectVenues(rows)
}

// ListByIDs resolves the venues named by ids in one query
func (r *PostgresVenueRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Venue, error) {
	if len(ids) == 0 {
		return []*domain.Venue{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, storeErr("list venues by id", err)
	}
	return collectVenues(rows)
}

func collectVenues(rows pgx.Rows) ([]*domain.Venue, error) {
	defer rows.Close()

	venues := []*domain.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list venues", err)
	}
	return venues, nil
}

func scanVenue(row pgx.Row) (*domain.Venue, error) {
	v := &domain.Venue{}
	var schedule []byte
	if err := row.Scan(&v.ID, &v.Name, &v.Capacity, &schedule, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.AvailabilitySchedule = []domain.AvailabilityBlock{}
	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &v.AvailabilitySchedule); err != nil {
			return nil, fmt.Errorf("failed to decode availability schedule: %w", err)
		}
	}
	return v, nil
}

// PostgresResourceRepository implements ResourceRepository using PostgreSQL
type PostgresResourceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresResourceRepository creates a new PostgresResourceRepository
func NewPostgresResourceRepository(pool *pgxpool.Pool) *PostgresResourceRepository {
	return &PostgresResourceRepository{pool: pool}
}

const resourceColumns = `id, name, type, quantity_available, created_at, updated_at`

// Create inserts a resource. A taken name is ErrDuplicateName.
func (r *PostgresResourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	now := time.Now()
	res.CreatedAt, res.UpdatedAt = now, now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO resources (`+resourceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, res.ID, res.Name, string(res.Type), res.QuantityAvailable, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.NewError(domain.ErrDuplicateName, "Resource %q already exists", res.Name)
		}
		return storeErr("create resource", err)
	}
	return nil
}

// GetByID retrieves a resource by ID
func (r *PostgresResourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id)
	res, err := scanResource(row)
	if err != nil {
		return nil, notFoundOr(domain.ErrResourceNotFound, "get resource", err)
	}
	return res, nil
}

// List returns all resources ordered by name
func (r *PostgresResourceRepository) List(ctx context.Context) ([]*domain.Resource, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY name`)
	if err != nil {
		return nil, storeErr("list resources", err)
	}
	return collectResources(rows)
}

// ListByIDs resolves the resources named by ids in one query
func (r *PostgresResourceRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Resource, error) {
	if len(ids) == 0 {
		return []*domain.Resource{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, storeErr("list resources by id", err)
	}
	return collectResources(rows)
}

func collectResources(rows pgx.Rows) ([]*domain.Resource, error) {
	defer rows.Close()

	resources := []*domain.Resource{}
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list resources", err)
	}
	return resources, nil
}

// Update overwrites name, type and quantity. It is an administrative stock
// correction and bypasses the reservation path.
func (r *PostgresResourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE resources SET
			name = $2,
			type = $3,
			quantity_available = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+resourceColumns,
		res.ID, res.Name, string(res.Type), res.QuantityAvailable)

	updated, err := scanResource(row)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.NewError(domain.ErrDuplicateName, "Resource %q already exists", res.Name)
		}
		return notFoundOr(domain.ErrResourceNotFound, "update resource", err)
	}
	*res = *updated
	return nil
}

func scanResource(row pgx.Row) (*domain.Resource, error) {
	res := &domain.Resource{}
	var typ string
	if err := row.Scan(&res.ID, &res.Name, &typ, &res.QuantityAvailable, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	res.Type = domain.ResourceType(typ)
	return res, nil
}

var (
	_ VenueRepository    = (*PostgresVenueRepository)(nil)
	_ ResourceRepository = (*PostgresResourceRepository)(nil)
)
