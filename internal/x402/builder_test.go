package x402

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rawgroundbeef/openfacilitator/internal/models"
	apperrors "github.com/rawgroundbeef/openfacilitator/pkg/errors"
)

func linkResource() *models.PaidResource {
	return &models.PaidResource{
		Variant: models.VariantLink,
		Kind:    models.KindPayment,
		Network: "base",
		Asset:   "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		Amount:  "10000",
		PayTo:   "0x1111111111111111111111111111111111111111",
	}
}

func TestBuildRequirementsEVM(t *testing.T) {
	res := linkResource()
	res.Description = "Premium report"

	req, err := BuildRequirements(res, "https://pay.example/pay/abc", IdentityMap{})
	require.NoError(t, err)

	require.Equal(t, SchemeExact, req.Scheme)
	require.Equal(t, "base", req.Network)
	require.Equal(t, "10000", req.MaxAmountRequired)
	require.Equal(t, res.Asset, req.Asset)
	require.Equal(t, res.PayTo, req.PayTo)
	require.Equal(t, "Premium report", req.Description)
	require.Equal(t, "https://pay.example/pay/abc", req.Resource)
	require.EqualValues(t, 3600, req.MaxTimeoutSeconds)
	require.Nil(t, req.Extra)
}

func TestBuildRequirementsIsDeterministic(t *testing.T) {
	res := linkResource()

	first, err := BuildRequirements(res, "https://pay.example/pay/abc", IdentityMap{})
	require.NoError(t, err)
	second, err := BuildRequirements(res, "https://pay.example/pay/abc", IdentityMap{})
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestBuildRequirementsDescriptionFallback(t *testing.T) {
	req, err := BuildRequirements(linkResource(), "https://pay.example/pay/abc", IdentityMap{})
	require.NoError(t, err)
	require.Equal(t, "Payment for https://pay.example/pay/abc", req.Description)
}

func TestBuildRequirementsFeeDelegated(t *testing.T) {
	res := linkResource()
	res.Network = "solana"
	res.Asset = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	res.PayTo = "4Nd1mYtVt5pSB7jje7M2ZF66qhqd3p3KyeL8MF8zQxsb"

	ids := IdentityMap{"solana": "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"}
	req, err := BuildRequirements(res, "https://pay.example/pay/abc", ids)
	require.NoError(t, err)
	require.Equal(t, "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", req.Extra["feePayer"])
}

func TestBuildRequirementsFeeDelegatedWithoutIdentity(t *testing.T) {
	res := linkResource()
	res.Network = "solana-devnet"

	_, err := BuildRequirements(res, "https://pay.example/pay/abc", IdentityMap{})
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, apperrors.ErrFeeDelegateUnavailable.Code, appErr.Code)
}

func TestBuildRequirementsUnsupportedNetwork(t *testing.T) {
	res := linkResource()
	res.Network = "dogecoin"

	_, err := BuildRequirements(res, "https://pay.example/pay/abc", IdentityMap{})
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, apperrors.ErrUnsupportedNetwork.Code, appErr.Code)
}

func TestBuildRequirementsInvalidAmount(t *testing.T) {
	for _, amount := range []string{"", "zero", "-5", "0", "1.5"} {
		res := linkResource()
		res.Amount = amount
		_, err := BuildRequirements(res, "https://pay.example/pay/abc", IdentityMap{})
		require.Error(t, err, "amount %q", amount)
	}
}

func TestBuildRequirementsProxyNeedsTarget(t *testing.T) {
	res := linkResource()
	res.Kind = models.KindProxy

	_, err := BuildRequirements(res, "https://pay.example/pay/abc", IdentityMap{})
	require.Error(t, err)

	res.TargetURL = "https://origin.example/data"
	_, err = BuildRequirements(res, "https://pay.example/pay/abc", IdentityMap{})
	require.NoError(t, err)
}
