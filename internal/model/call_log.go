package model

import (
	"time"

	"github.com/google/uuid"
)

// CallData carries the attributes of a finished call into the ticketing
// system and the audit table.
type CallData struct {
	PhoneNumber string    `json:"phone_number"`
	Transcript  string    `json:"transcript"`
	CustomerID  string    `json:"customer_id"`
	AgentID     string    `json:"agent_id"`
	ContactID   string    `json:"contact_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// Ticket is the record the external system returns for a created call log.
type Ticket struct {
	ID      int    `json:"id"`
	Summary string `json:"summary"`
}

// CallLog is the local audit row written after a ticket is created upstream.
type CallLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ContactID   string    `gorm:"index;not null" json:"contact_id"`
	TicketID    int       `gorm:"not null" json:"ticket_id"`
	PhoneNumber string    `gorm:"not null" json:"phone_number"`
	AgentID     string    `json:"agent_id"`
	CustomerID  string    `gorm:"index" json:"customer_id"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (CallLog) TableName() string { return "call_logs" }
