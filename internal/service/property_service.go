package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/propdesk/propdesk/internal/domain"
	"github.com/propdesk/propdesk/internal/filestore"
)

// propertyRepository is the subset of store.PropertyStore that PropertyService requires.
type propertyRepository interface {
	CreateWithAttachments(ctx context.Context, p *domain.Property, link *domain.MapsLink, docs []*domain.Document) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
	List(ctx context.Context) ([]*domain.Property, error)
	Update(ctx context.Context, id int64, p *domain.Property) error
	DeleteCascade(ctx context.Context, id int64) error
}

// documentRepository is the subset of store.DocumentStore that PropertyService requires.
type documentRepository interface {
	Create(ctx context.Context, d *domain.Document) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Document, error)
	ListByProperty(ctx context.Context, propertyID int64) ([]*domain.Document, error)
	LatestByType(ctx context.Context, propertyID int64, documentType string) (*domain.Document, error)
	FilenamesByProperty(ctx context.Context, propertyID int64) ([]string, error)
	Delete(ctx context.Context, id int64) error
}

// mapsLinkRepository is the subset of store.MapsLinkStore that PropertyService requires.
type mapsLinkRepository interface {
	Create(ctx context.Context, l *domain.MapsLink) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.MapsLink, error)
	ListByProperty(ctx context.Context, propertyID int64) ([]*domain.MapsLink, error)
	Delete(ctx context.Context, id int64) error
}

// PropertyFields is the validated, coerced form input for create and update.
type PropertyFields struct {
	Title        string
	Description  string
	PropertyType string
	Price        float64
	Location     string
	Bedrooms     int64
	Bathrooms    int64
	Area         float64
	Status       string
	OwnerName    string
	OwnerContact string
}

// MapsLinkFields carries the optional map-link section of the create form.
// Latitude and Longitude stay raw strings here: on the create path an invalid
// pair is dropped silently instead of failing the whole operation.
type MapsLinkFields struct {
	GoogleMapsLink string
	Latitude       string
	Longitude      string
}

// Upload is a single file submitted with a form.
type Upload struct {
	Filename string
	Content  io.Reader
}

// PropertySummary bundles a property with its most recent photo document for
// listing pages.
type PropertySummary struct {
	*domain.Property
	Photo *domain.Document `json:"photo"`
}

// PropertyDetail is the full detail view of one property.
type PropertyDetail struct {
	Property  *domain.Property   `json:"property"`
	Documents []*domain.Document `json:"documents"`
	MapsLinks []*domain.MapsLink `json:"maps_links"`
}

type PropertyService struct {
	properties propertyRepository
	documents  documentRepository
	mapsLinks  mapsLinkRepository
	files      filestore.Store
	allowed    map[string]bool
	logger     *slog.Logger
}

func NewPropertyService(
	properties propertyRepository,
	documents documentRepository,
	mapsLinks mapsLinkRepository,
	files filestore.Store,
	allowedExtensions []string,
	logger *slog.Logger,
) *PropertyService {
	allowed := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}
	return &PropertyService{
		properties: properties,
		documents:  documents,
		mapsLinks:  mapsLinks,
		files:      files,
		allowed:    allowed,
		logger:     logger,
	}
}

// List returns all properties newest first, each with at most one preview
// photo (the most recent document of type "Photos").
func (s *PropertyService) List(ctx context.Context) ([]*PropertySummary, error) {
	props, err := s.properties.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]*PropertySummary, 0, len(props))
	for _, p := range props {
		photo, err := s.documents.LatestByType(ctx, p.ID, "Photos")
		if err != nil {
			return nil, fmt.Errorf("failed to get preview photo for property %d: %w", p.ID, err)
		}
		summaries = append(summaries, &PropertySummary{Property: p, Photo: photo})
	}
	return summaries, nil
}

// Get returns a property with its documents (all types, newest first) and
// maps links (newest first).
func (s *PropertyService) Get(ctx context.Context, id int64) (*PropertyDetail, error) {
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.ListByProperty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	links, err := s.mapsLinks.ListByProperty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps links: %w", err)
	}

	return &PropertyDetail{Property: p, Documents: docs, MapsLinks: links}, nil
}

// Create stores a new property together with its optional maps link and any
// accepted uploads. Files are written first; the property, link, and document
// rows then commit as one transaction. When the transaction fails, the
// just-written files are removed best-effort so nothing partial survives.
// Uploads with a disallowed extension are skipped, and an invalid coordinate
// pair in the maps-link fields is dropped rather than failing the create.
func (s *PropertyService) Create(ctx context.Context, fields PropertyFields, maps MapsLinkFields, uploads []Upload) (int64, error) {
	now := time.Now().UTC()
	p := propertyFromFields(fields, now, now)

	link := buildCreateMapsLink(maps, now)

	var docs []*domain.Document
	var saved []string
	for _, up := range uploads {
		if up.Filename == "" || !s.allowedFile(up.Filename) {
			continue
		}
		storedName, err := s.files.Save(ctx, up.Filename, up.Content)
		if err != nil {
			s.removeFiles(ctx, saved)
			return 0, fmt.Errorf("failed to save upload: %w: %w", domain.ErrStorage, err)
		}
		saved = append(saved, storedName)
		docs = append(docs, &domain.Document{
			Filename:         storedName,
			OriginalFilename: up.Filename,
			DocumentType:     "General",
			UploadDate:       now,
		})
	}

	id, err := s.properties.CreateWithAttachments(ctx, p, link, docs)
	if err != nil {
		s.removeFiles(ctx, saved)
		return 0, err
	}

	s.logger.Info("property created", "property_id", id, "documents", len(docs))
	return id, nil
}

// Update rewrites a property's fields and refreshes its updated date.
func (s *PropertyService) Update(ctx context.Context, id int64, fields PropertyFields) error {
	p := propertyFromFields(fields, time.Time{}, time.Now().UTC())
	if err := s.properties.Update(ctx, id, p); err != nil {
		return err
	}
	s.logger.Info("property updated", "property_id", id)
	return nil
}

// Delete removes a property and everything it owns. Document files are
// deleted first, best effort — a missing or undeletable file never blocks the
// row cascade, which runs as a single transaction.
func (s *PropertyService) Delete(ctx context.Context, id int64) error {
	filenames, err := s.documents.FilenamesByProperty(ctx, id)
	if err != nil {
		return err
	}

	for _, name := range filenames {
		if err := s.files.Delete(ctx, name); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Debug("document file already absent", "filename", name)
				continue
			}
			s.logger.Warn("failed to delete document file", "filename", name, "error", err)
		}
	}

	if err := s.properties.DeleteCascade(ctx, id); err != nil {
		return err
	}

	s.logger.Info("property deleted", "property_id", id, "documents", len(filenames))
	return nil
}

// AddDocument attaches one uploaded file to a property. The file is written
// first; if the row insert fails, the file is removed again before the error
// is reported.
func (s *PropertyService) AddDocument(ctx context.Context, propertyID int64, up Upload, documentType string) (int64, error) {
	if up.Filename == "" {
		return 0, domain.ErrNoFile
	}
	if !s.allowedFile(up.Filename) {
		return 0, domain.ErrFileType
	}
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return 0, err
	}
	if documentType == "" {
		documentType = "General"
	}

	storedName, err := s.files.Save(ctx, up.Filename, up.Content)
	if err != nil {
		return 0, fmt.Errorf("failed to save upload: %w: %w", domain.ErrStorage, err)
	}

	id, err := s.documents.Create(ctx, &domain.Document{
		PropertyID:       propertyID,
		Filename:         storedName,
		OriginalFilename: up.Filename,
		DocumentType:     documentType,
		UploadDate:       time.Now().UTC(),
	})
	if err != nil {
		if derr := s.files.Delete(ctx, storedName); derr != nil && !errors.Is(derr, domain.ErrNotFound) {
			s.logger.Warn("failed to remove file after insert error", "filename", storedName, "error", derr)
		}
		return 0, err
	}

	s.logger.Info("document added", "property_id", propertyID, "document_id", id, "type", documentType)
	return id, nil
}

// DeleteDocument removes a document's file (tolerating absence) and then its
// row. Returns the owning property id for redirecting.
func (s *PropertyService) DeleteDocument(ctx context.Context, id int64) (int64, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	if err := s.files.Delete(ctx, doc.Filename); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug("document file already absent", "filename", doc.Filename)
		} else {
			s.logger.Warn("failed to delete document file", "filename", doc.Filename, "error", err)
		}
	}

	if err := s.documents.Delete(ctx, id); err != nil {
		return 0, err
	}

	return doc.PropertyID, nil
}

// AddMapsLink stores a named maps link. Unlike the create-property path,
// coordinates are validated as a pair and any parse failure rejects the whole
// operation. The asymmetry is deliberate and mirrors the form flows: the
// dedicated maps form can be corrected and resubmitted cheaply, a property
// create cannot.
func (s *PropertyService) AddMapsLink(ctx context.Context, propertyID int64, title, url, latStr, lonStr string) (int64, error) {
	if title == "" || url == "" {
		return 0, fmt.Errorf("%w: link title and URL are required", domain.ErrValidation)
	}
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return 0, err
	}

	var lat, lon *float64
	if latStr != "" || lonStr != "" {
		latVal, latErr := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		lonVal, lonErr := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if latErr != nil || lonErr != nil {
			return 0, fmt.Errorf("%w: invalid coordinates", domain.ErrValidation)
		}
		lat, lon = &latVal, &lonVal
	}

	id, err := s.mapsLinks.Create(ctx, &domain.MapsLink{
		PropertyID:     propertyID,
		LinkTitle:      title,
		GoogleMapsLink: url,
		Latitude:       lat,
		Longitude:      lon,
		CreatedDate:    time.Now().UTC(),
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("maps link added", "property_id", propertyID, "maps_link_id", id)
	return id, nil
}

// DeleteMapsLink removes a maps link and returns the owning property id for
// redirecting.
func (s *PropertyService) DeleteMapsLink(ctx context.Context, id int64) (int64, error) {
	link, err := s.mapsLinks.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := s.mapsLinks.Delete(ctx, id); err != nil {
		return 0, err
	}
	return link.PropertyID, nil
}

func (s *PropertyService) allowedFile(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext != "" && s.allowed[ext]
}

func (s *PropertyService) removeFiles(ctx context.Context, names []string) {
	for _, name := range names {
		if err := s.files.Delete(ctx, name); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("failed to remove file during rollback", "filename", name, "error", err)
		}
	}
}

func propertyFromFields(fields PropertyFields, created, updated time.Time) *domain.Property {
	status := fields.Status
	if status == "" {
		status = "Available"
	}
	return &domain.Property{
		Title:        fields.Title,
		Description:  fields.Description,
		PropertyType: fields.PropertyType,
		Price:        fields.Price,
		Location:     fields.Location,
		Bedrooms:     fields.Bedrooms,
		Bathrooms:    fields.Bathrooms,
		Area:         fields.Area,
		Status:       status,
		OwnerName:    fields.OwnerName,
		OwnerContact: fields.OwnerContact,
		CreatedDate:  created,
		UpdatedDate:  updated,
	}
}

// buildCreateMapsLink turns the optional maps section of the create form into
// a link row, or nil when nothing usable was supplied. Coordinates are kept
// only when both parse; an invalid or half-filled pair is dropped without
// failing the create.
func buildCreateMapsLink(maps MapsLinkFields, now time.Time) *domain.MapsLink {
	hasPair := maps.Latitude != "" && maps.Longitude != ""
	if maps.GoogleMapsLink == "" && !hasPair {
		return nil
	}

	var lat, lon *float64
	if hasPair {
		latVal, latErr := strconv.ParseFloat(strings.TrimSpace(maps.Latitude), 64)
		lonVal, lonErr := strconv.ParseFloat(strings.TrimSpace(maps.Longitude), 64)
		if latErr == nil && lonErr == nil {
			lat, lon = &latVal, &lonVal
		}
	}

	// A pair alone is enough to warrant a row only when it survived parsing.
	if maps.GoogleMapsLink == "" && lat == nil {
		return nil
	}

	return &domain.MapsLink{
		LinkTitle:      "Property Location",
		GoogleMapsLink: maps.GoogleMapsLink,
		Latitude:       lat,
		Longitude:      lon,
		CreatedDate:    now,
	}
}
