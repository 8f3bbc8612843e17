package deal

import (
	"fmt"
	"time"
)

// PropertyType values mirror the property_type enum in PostgreSQL.
type PropertyType string

const (
	PropertySFH         PropertyType = "SFH"
	PropertyMultiFamily PropertyType = "Multi-Family"
	PropertyCommercial  PropertyType = "Commercial"
	PropertyLand        PropertyType = "Land"
)

// ParsePropertyType converts a raw string to a PropertyType, returning an
// error for unknown values.
func ParsePropertyType(s string) (PropertyType, error) {
	pt := PropertyType(s)
	switch pt {
	case PropertySFH, PropertyMultiFamily, PropertyCommercial, PropertyLand:
		return pt, nil
	}
	return "", fmt.Errorf("deal: unknown property type %q", s)
}

// Status represents the listing lifecycle, distinct from the escrow
// transaction lifecycle.
type Status string

const (
	StatusActive        Status = "active"
	StatusUnderContract Status = "under_contract"
	StatusSold          Status = "sold"
	StatusWithdrawn     Status = "withdrawn"
)

// Deal is the snapshot matching consumes. WholesalerReputation is attached
// by the repository (joined from the seller's user row) before any scoring
// runs, so the matching engine needs no lookups of its own.
type Deal struct {
	ID                   string
	WholesalerID         string
	Title                string
	State                string
	City                 string
	PropertyType         PropertyType
	AskingPrice          float64
	Status               Status
	WholesalerReputation float64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
