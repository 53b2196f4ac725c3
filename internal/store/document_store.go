package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/propdesk/propdesk/internal/domain"
)

const documentColumns = `id, property_id, filename, original_filename, document_type, upload_date`

type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) Create(ctx context.Context, d *domain.Document) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO property_documents (property_id, filename, original_filename, document_type, upload_date)
		VALUES (?, ?, ?, ?, ?)
	`, d.PropertyID, d.Filename, d.OriginalFilename, d.DocumentType, d.UploadDate)
	if err != nil {
		return 0, fmt.Errorf("failed to create document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return id, nil
}

func (s *DocumentStore) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM property_documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return d, nil
}

// ListByProperty returns all documents for a property, newest upload first.
func (s *DocumentStore) ListByProperty(ctx context.Context, propertyID int64) ([]*domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM property_documents
		WHERE property_id = ? ORDER BY upload_date DESC
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// LatestByType returns the most recent document of the given type for a
// property, or nil when the property has none. Used for listing previews.
func (s *DocumentStore) LatestByType(ctx context.Context, propertyID int64, documentType string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+` FROM property_documents
		WHERE property_id = ? AND document_type = ?
		ORDER BY upload_date DESC LIMIT 1
	`, propertyID, documentType)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest document: %w", err)
	}
	return d, nil
}

// FilenamesByProperty returns the stored filenames of every document owned by
// the property, for file-store cleanup before a cascade delete.
func (s *DocumentStore) FilenamesByProperty(ctx context.Context, propertyID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT filename FROM property_documents WHERE property_id = ?`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document filenames: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan filename: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating filenames: %w", err)
	}

	return names, nil
}

func (s *DocumentStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM property_documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
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

func scanDocument(row interface{ Scan(dest ...any) error }) (*domain.Document, error) {
	d := &domain.Document{}
	err := row.Scan(&d.ID, &d.PropertyID, &d.Filename, &d.OriginalFilename, &d.DocumentType, &d.UploadDate)
	if err != nil {
		return nil, err
	}
	return d, nil
}
