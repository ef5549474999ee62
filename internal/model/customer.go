package model

import "time"

type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "Active"
	CustomerStatusInactive CustomerStatus = "Inactive"
)

type CustomerPriority string

const (
	CustomerPriorityHigh   CustomerPriority = "High"
	CustomerPriorityNormal CustomerPriority = "Normal"
	CustomerPriorityLow    CustomerPriority = "Low"
)

// Customer is the cached copy of the ticketing system's customer record.
// The external system owns it; the cache only guarantees bounded staleness.
type Customer struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Company  string           `json:"company"`
	Status   CustomerStatus   `json:"status"`
	Priority CustomerPriority `json:"priority"`
}

// CacheEntry is the persisted cache record, keyed by normalized phone
// number. A nil CustomerData is a negative entry: a confirmed "not found".
type CacheEntry struct {
	PhoneNumber  string    `json:"phoneNumber"`
	CustomerData *Customer `json:"customerData"`
	TTL          int64     `json:"ttl"` // epoch seconds, logical expiry
	LastUpdated  time.Time `json:"lastUpdated"`
}

// Expired reports whether the entry is logically dead. Expiry is lazy:
// the physical row stays until overwritten or invalidated, it just becomes
// invisible to reads.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.Unix() >= e.TTL
}

// Negative reports whether the entry records a confirmed "not found".
func (e *CacheEntry) Negative() bool {
	return e.CustomerData == nil
}
