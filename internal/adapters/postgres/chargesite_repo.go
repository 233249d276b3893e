package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/chargemap/internal/core/domain"
)

// publicColumns never includes true_lat/true_lon; region reads stay on the
// obfuscated columns.
const publicColumns = `id::text, user_id, lat, lon, is_obfuscated, obfuscation_disabled,
		       is_private, is_reserved, rate_of_charge, created_at, updated_at`

// ChargeSiteRepo implements ports.ChargeSiteRepository with pgx.
type ChargeSiteRepo struct {
	db *DB
}

// NewChargeSiteRepo creates a new ChargeSiteRepo.
func NewChargeSiteRepo(db *DB) *ChargeSiteRepo {
	return &ChargeSiteRepo{db: db}
}

// Create inserts a site, assigning an ID when empty.
func (r *ChargeSiteRepo) Create(ctx context.Context, s *domain.ChargeSite) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO charge_sites (id, user_id, true_lat, true_lon, lat, lon, is_obfuscated,
		                          obfuscation_disabled, is_private, is_reserved, rate_of_charge)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, s.ID, s.UserID, s.TrueLocation.Lat, s.TrueLocation.Lon, s.Location.Lat, s.Location.Lon,
		s.IsObfuscated, s.ObfuscationDisabled, s.IsPrivate, s.IsReserved, s.RateOfCharge,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// Update replaces every mutable column of an existing site.
func (r *ChargeSiteRepo) Update(ctx context.Context, s *domain.ChargeSite) error {
	if _, err := uuid.Parse(s.ID); err != nil {
		return domain.ErrNotFound
	}
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE charge_sites
		SET user_id = $2, true_lat = $3, true_lon = $4, lat = $5, lon = $6,
		    is_obfuscated = $7, obfuscation_disabled = $8, is_private = $9,
		    is_reserved = $10, rate_of_charge = $11, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, s.ID, s.UserID, s.TrueLocation.Lat, s.TrueLocation.Lon, s.Location.Lat, s.Location.Lon,
		s.IsObfuscated, s.ObfuscationDisabled, s.IsPrivate, s.IsReserved, s.RateOfCharge,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// GetByID returns a site including its true location.
func (r *ChargeSiteRepo) GetByID(ctx context.Context, id string) (*domain.ChargeSite, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	var s domain.ChargeSite
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id::text, user_id, true_lat, true_lon, lat, lon, is_obfuscated, obfuscation_disabled,
		       is_private, is_reserved, rate_of_charge, created_at, updated_at
		FROM charge_sites WHERE id = $1
	`, id).Scan(
		&s.ID, &s.UserID, &s.TrueLocation.Lat, &s.TrueLocation.Lon,
		&s.Location.Lat, &s.Location.Lon, &s.IsObfuscated, &s.ObfuscationDisabled,
		&s.IsPrivate, &s.IsReserved, &s.RateOfCharge, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a site.
func (r *ChargeSiteRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM charge_sites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindWithin returns sites whose obfuscated position is within radius of
// center under the planar degree metric. The bounding-box predicate lets the
// (lat, lon) index prune before the exact distance check.
func (r *ChargeSiteRepo) FindWithin(ctx context.Context, center domain.GeoPoint, radius float64) ([]domain.ChargeSite, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+publicColumns+`
		FROM charge_sites
		WHERE lat BETWEEN $1::float8 - $3::float8 AND $1::float8 + $3::float8
		  AND lon BETWEEN $2::float8 - $3::float8 AND $2::float8 + $3::float8
		  AND sqrt(power(lat - $1::float8, 2) + power(lon - $2::float8, 2)) <= $3::float8
	`, center.Lat, center.Lon, radius)
	if err != nil {
		return nil, fmt.Errorf("find within: %w", err)
	}
	defer rows.Close()

	sites := make([]domain.ChargeSite, 0)
	for rows.Next() {
		var s domain.ChargeSite
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Location.Lat, &s.Location.Lon, &s.IsObfuscated, &s.ObfuscationDisabled,
			&s.IsPrivate, &s.IsReserved, &s.RateOfCharge, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// ListIDs returns up to limit IDs ordered after afterID.
func (r *ChargeSiteRepo) ListIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text FROM charge_sites
		WHERE id::text > $1
		ORDER BY id::text
		LIMIT $2
	`, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
