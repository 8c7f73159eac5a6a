package models

import "gorm.io/datatypes"

// PaymentStatus is the terminal state of a settlement attempt.
type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// Payment is an immutable record of a settled payment. Rows are created
// exactly once, after the remote settle call returns, and never updated.
type Payment struct {
	BaseModel

	ResourceID      string         `gorm:"type:uuid;index;not null" json:"resource_id"`
	PayerAddress    string         `json:"payer_address"`
	Amount          string         `gorm:"not null" json:"amount"`
	Network         string         `json:"network"`
	TransactionHash string         `gorm:"index" json:"transaction_hash,omitempty"`
	Status          PaymentStatus  `gorm:"not null" json:"status"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	Metadata        datatypes.JSON `json:"metadata,omitempty"`

	Resource *PaidResource `gorm:"foreignKey:ResourceID" json:"resource,omitempty"`
}
