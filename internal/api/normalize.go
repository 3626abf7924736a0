package api

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rongwang/fintrack-server/internal/apperror"
	"github.com/rongwang/fintrack-server/internal/models"
)

// absent lists the spellings clients use for "no value"
var absent = map[string]struct{}{
	"":          {},
	"null":      {},
	"nil":       {},
	"none":      {},
	"undefined": {},
}

func isAbsent(s string) bool {
	_, ok := absent[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// NormalizeID maps every absent spelling to nil and requires anything
// else to be a UUID.
func NormalizeID(field string, raw *string) (*string, error) {
	if raw == nil || isAbsent(*raw) {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperror.Validation("%s must be a valid UUID", field)
	}
	s := id.String()
	return &s, nil
}

// NormalizeText maps absent spellings to nil and trims the rest
func NormalizeText(raw *string) *string {
	if raw == nil || isAbsent(*raw) {
		return nil
	}
	s := strings.TrimSpace(*raw)
	return &s
}

// pathID reads a UUID path parameter; malformed ids cannot exist
func pathID(value, resource string) (string, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return "", apperror.NotFound(resource)
	}
	return id.String(), nil
}

func queryString(value string) *string {
	return NormalizeText(&value)
}

func queryID(field, value string) (*string, error) {
	return NormalizeID(field, &value)
}

func queryInt(field, value string) (*int, error) {
	if isAbsent(value) {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil, apperror.Validation("%s must be an integer", field)
	}
	return &n, nil
}

func queryDate(field, value string) (*models.Date, error) {
	if isAbsent(value) {
		return nil, nil
	}
	d, err := models.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return nil, apperror.Validation("%s must be a date (YYYY-MM-DD)", field)
	}
	return &d, nil
}
