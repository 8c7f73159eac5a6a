package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rawgroundbeef/openfacilitator/internal/database/testutil"
	"github.com/rawgroundbeef/openfacilitator/internal/models"
)

func TestRecordSuccessAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewPaymentService(db)
	require.NoError(t, err)

	owner := seedFacilitator(t, db, "acme", "pay.acme.example")
	res := seedLink(t, db, owner.ID, "premium", nil)

	ctx := context.Background()

	payment, err := svc.RecordSuccess(ctx, RecordSuccessInput{
		ResourceID:      res.ID,
		Network:         "base",
		Amount:          "10000",
		TransactionHash: "0xabc",
		PayerAddress:    "0x5ba1e12693dc8f9c48aad8770482f4739beed696",
		Metadata:        map[string]any{"scheme": "exact"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, payment.ID)
	require.Equal(t, models.PaymentSuccess, payment.Status)
	require.Contains(t, string(payment.Metadata), "exact")

	rows, err := svc.ListByResource(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "0xabc", rows[0].TransactionHash)

	other, err := svc.ListByResource(ctx, "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestRecordSuccessRequiresResource(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewPaymentService(db)
	require.NoError(t, err)

	_, err = svc.RecordSuccess(context.Background(), RecordSuccessInput{})
	require.Error(t, err)
}
