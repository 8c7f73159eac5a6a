package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rawgroundbeef/openfacilitator/internal/models"
)

// PaymentService persists immutable payment records. Rows are written exactly
// once per settlement outcome and never updated afterwards.
type PaymentService struct {
	db *gorm.DB
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(db *gorm.DB) (*PaymentService, error) {
	if db == nil {
		return nil, errors.New("payment service: db is required")
	}
	return &PaymentService{db: db}, nil
}

// RecordSuccessInput describes a settled payment.
type RecordSuccessInput struct {
	ResourceID      string
	Network         string
	Amount          string
	TransactionHash string
	// PayerAddress may be the requirement's payee on fee-delegated networks,
	// where the true payer is not recoverable from the settle result.
	PayerAddress string
	Metadata     map[string]any
}

// RecordSuccess creates the single Payment row for a successful settlement.
func (s *PaymentService) RecordSuccess(ctx context.Context, input RecordSuccessInput) (*models.Payment, error) {
	if input.ResourceID == "" {
		return nil, errors.New("payment service: resource id is required")
	}

	payment := models.Payment{
		ResourceID:      input.ResourceID,
		PayerAddress:    input.PayerAddress,
		Amount:          input.Amount,
		Network:         input.Network,
		TransactionHash: input.TransactionHash,
		Status:          models.PaymentSuccess,
	}

	if len(input.Metadata) > 0 {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("payment service: encode metadata: %w", err)
		}
		payment.Metadata = datatypes.JSON(raw)
	}

	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("payment service: record payment: %w", err)
	}

	return &payment, nil
}

// ListByResource returns payments for one resource, newest first.
func (s *PaymentService) ListByResource(ctx context.Context, resourceID string) ([]models.Payment, error) {
	var rows []models.Payment
	if err := s.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("payment service: list payments: %w", err)
	}
	return rows, nil
}
