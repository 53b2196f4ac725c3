package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/propdesk/propdesk/internal/domain"
)

const propertyColumns = `id, title, description, property_type, price, location,
	bedrooms, bathrooms, area, status, owner_name, owner_contact, created_date, updated_date`

type PropertyStore struct {
	db *sql.DB
}

func NewPropertyStore(db *sql.DB) *PropertyStore {
	return &PropertyStore{db: db}
}

// CreateWithAttachments inserts the property and, in the same transaction,
// its optional maps link and its document rows. Callers save upload files
// before calling this and remove them again when it returns an error, so a
// failed transaction never leaves a partial property visible.
func (s *PropertyStore) CreateWithAttachments(ctx context.Context, p *domain.Property, link *domain.MapsLink, docs []*domain.Document) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO properties (title, description, property_type, price, location,
			bedrooms, bathrooms, area, status, owner_name, owner_contact, created_date, updated_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Title, p.Description, p.PropertyType, p.Price, p.Location,
		p.Bedrooms, p.Bathrooms, p.Area, p.Status, p.OwnerName, p.OwnerContact,
		p.CreatedDate, p.UpdatedDate)
	if err != nil {
		return 0, fmt.Errorf("failed to create property: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	if link != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO property_maps_links (property_id, link_title, google_maps_link, latitude, longitude, created_date)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, link.LinkTitle, link.GoogleMapsLink, link.Latitude, link.Longitude, link.CreatedDate)
		if err != nil {
			return 0, fmt.Errorf("failed to create maps link: %w", err)
		}
	}

	for _, d := range docs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO property_documents (property_id, filename, original_filename, document_type, upload_date)
			VALUES (?, ?, ?, ?, ?)
		`, id, d.Filename, d.OriginalFilename, d.DocumentType, d.UploadDate)
		if err != nil {
			return 0, fmt.Errorf("failed to create document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit property: %w", err)
	}

	return id, nil
}

func (s *PropertyStore) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return p, nil
}

// List returns all properties ordered newest first.
func (s *PropertyStore) List(ctx context.Context) ([]*domain.Property, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY created_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var props []*domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		props = append(props, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}

	return props, nil
}

// Update rewrites the editable fields and refreshes updated_date.
// Documents and maps links are untouched.
func (s *PropertyStore) Update(ctx context.Context, id int64, p *domain.Property) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE properties
		SET title = ?, description = ?, property_type = ?, price = ?, location = ?,
			bedrooms = ?, bathrooms = ?, area = ?, status = ?, owner_name = ?,
			owner_contact = ?, updated_date = ?
		WHERE id = ?
	`, p.Title, p.Description, p.PropertyType, p.Price, p.Location,
		p.Bedrooms, p.Bathrooms, p.Area, p.Status, p.OwnerName, p.OwnerContact,
		p.UpdatedDate, id)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
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

// DeleteCascade removes the property together with its document and maps-link
// rows in a single transaction. File cleanup is the caller's concern and
// happens before this runs.
func (s *PropertyStore) DeleteCascade(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM property_documents WHERE property_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM property_maps_links WHERE property_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete maps links: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	return nil
}

func scanProperty(row interface{ Scan(dest ...any) error }) (*domain.Property, error) {
	p := &domain.Property{}
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.PropertyType, &p.Price, &p.Location,
		&p.Bedrooms, &p.Bathrooms, &p.Area, &p.Status, &p.OwnerName, &p.OwnerContact,
		&p.CreatedDate, &p.UpdatedDate)
	if err != nil {
		return nil, err
	}
	return p, nil
}
