package model

import (
	"strings"
	"time"
)

func init() {
	RegisterKind(KindListing, func() Record { return &Listing{} })
}

type ListingStatus string

const (
	ListingActive ListingStatus = "active"
	ListingSold   ListingStatus = "sold"
	ListingClosed ListingStatus = "closed"
)

func (s ListingStatus) String() string { return string(s) }

func (s ListingStatus) Valid() bool {
	return s == ListingActive || s == ListingSold || s == ListingClosed
}

// ParseListingStatus normalizes input; empty => active.
// Returns (value, true) if valid; otherwise (active, false).
func ParseListingStatus(s string) (ListingStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active":
		return ListingActive, true
	case "sold":
		return ListingSold, true
	case "closed":
		return ListingClosed, true
	default:
		return ListingActive, false
	}
}

// Listing is a marketplace item offered for sale.
type Listing struct {
	ID        string        `json:"id"`
	SellerID  string        `json:"seller_id"`
	Title     string        `json:"title"`
	Price     int64         `json:"price"`
	Currency  string        `json:"currency"`
	Status    ListingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (l *Listing) Kind() string          { return KindListing }
func (l *Listing) RecordID() string      { return l.ID }
func (l *Listing) SetRecordID(id string) { l.ID = id }
