package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/propdesk/propdesk/internal/domain"
	"github.com/propdesk/propdesk/internal/service"
)

// parseFloatField coerces a numeric form field. An empty or missing value
// becomes zero; a non-numeric value is a validation error naming the field.
func parseFloatField(r *http.Request, field string) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrValidation, field)
	}
	return v, nil
}

// parseIntField coerces an integer form field with the same empty-is-zero rule.
func parseIntField(r *http.Request, field string) (int64, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number", domain.ErrValidation, field)
	}
	return v, nil
}

// propertyFieldsFromForm maps the shared property form into service fields,
// coercing the numeric columns.
func propertyFieldsFromForm(r *http.Request) (service.PropertyFields, error) {
	var fields service.PropertyFields
	var err error

	fields.Title = strings.TrimSpace(r.FormValue("title"))
	fields.Description = r.FormValue("description")
	fields.PropertyType = r.FormValue("property_type")
	fields.Location = r.FormValue("location")
	fields.Status = r.FormValue("status")
	fields.OwnerName = r.FormValue("owner_name")
	fields.OwnerContact = r.FormValue("owner_contact")

	if fields.Price, err = parseFloatField(r, "price"); err != nil {
		return fields, err
	}
	if fields.Bedrooms, err = parseIntField(r, "bedrooms"); err != nil {
		return fields, err
	}
	if fields.Bathrooms, err = parseIntField(r, "bathrooms"); err != nil {
		return fields, err
	}
	if fields.Area, err = parseFloatField(r, "area"); err != nil {
		return fields, err
	}

	return fields, nil
}
