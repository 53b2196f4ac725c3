package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/propdesk/propdesk/internal/domain"
)

const mapsLinkColumns = `id, property_id, link_title, google_maps_link, latitude, longitude, created_date`

type MapsLinkStore struct {
	db *sql.DB
}

func NewMapsLinkStore(db *sql.DB) *MapsLinkStore {
	return &MapsLinkStore{db: db}
}

func (s *MapsLinkStore) Create(ctx context.Context, l *domain.MapsLink) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO property_maps_links (property_id, link_title, google_maps_link, latitude, longitude, created_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, l.PropertyID, l.LinkTitle, l.GoogleMapsLink, l.Latitude, l.Longitude, l.CreatedDate)
	if err != nil {
		return 0, fmt.Errorf("failed to create maps link: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return id, nil
}

func (s *MapsLinkStore) GetByID(ctx context.Context, id int64) (*domain.MapsLink, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mapsLinkColumns+` FROM property_maps_links WHERE id = ?`, id)
	l, err := scanMapsLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get maps link: %w", err)
	}
	return l, nil
}

// ListByProperty returns all maps links for a property, newest first.
func (s *MapsLinkStore) ListByProperty(ctx context.Context, propertyID int64) ([]*domain.MapsLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+mapsLinkColumns+` FROM property_maps_links
		WHERE property_id = ? ORDER BY created_date DESC
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps links: %w", err)
	}
	defer rows.Close()

	var links []*domain.MapsLink
	for rows.Next() {
		l, err := scanMapsLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maps link: %w", err)
		}
		links = append(links, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating maps links: %w", err)
	}

	return links, nil
}

func (s *MapsLinkStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM property_maps_links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete maps link: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func scanMapsLink(row interface{ Scan(dest ...any) error }) (*domain.MapsLink, error) {
	l := &domain.MapsLink{}
	err := row.Scan(&l.ID, &l.PropertyID, &l.LinkTitle, &l.GoogleMapsLink, &l.Latitude, &l.Longitude, &l.CreatedDate)
	if err != nil {
		return nil, err
	}
	return l, nil
}
