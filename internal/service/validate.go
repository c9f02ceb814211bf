package service

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxLimit caps the page size requested from the catalogue.
	MaxLimit = 100
	// MaxSortLength bounds the sort_fields argument.
	MaxSortLength = 100
)

// ClampLimit rejects limits below 1 and caps the rest at MaxLimit. A nil
// limit stays nil so the upstream default applies.
func ClampLimit(limit *int) (*int, error) {
	if limit == nil {
		return nil, nil
	}
	if *limit < 1 {
		return nil, invalid("limit must be >= 1")
	}

	n := *limit
	if n > MaxLimit {
		n = MaxLimit
	}
	return &n, nil
}

// ValidateSort checks the sort_fields length.
func ValidateSort(sortFields string) (string, error) {
	if utf8.RuneCountInString(sortFields) > MaxSortLength {
		return "", invalid("sort_fields too long; max 100 characters")
	}
	return sortFields, nil
}

// ValidateIdentifiers requires at least one title identifier.
func ValidateIdentifiers(bibID, isbn, controlNo string) error {
	if blank(bibID) && blank(isbn) && blank(controlNo) {
		return invalid("Provide at least one identifier: bib_id, isbn, or control_no")
	}
	return nil
}

func validateOffset(name string, v *int) error {
	if v != nil && *v < 0 {
		return invalid(name + " must be >= 0")
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func limitValue(limit *int) int {
	if limit == nil {
		return 0
	}
	return *limit
}
