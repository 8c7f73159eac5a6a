package x402

import (
	"fmt"
	"math/big"

	"github.com/rawgroundbeef/openfacilitator/internal/models"
	"github.com/rawgroundbeef/openfacilitator/pkg/chains"
	apperrors "github.com/rawgroundbeef/openfacilitator/pkg/errors"
)

// extraFeePayerKey is the requirements extra entry for fee-delegated networks.
const extraFeePayerKey = "feePayer"

// defaultMaxTimeoutSeconds bounds how long a constructed proof stays
// submittable, mirroring the client-side authorization window.
const defaultMaxTimeoutSeconds = 3600

// IdentityResolver resolves the facilitator's custodial signing identity for
// a network. The second return reports whether one exists.
type IdentityResolver interface {
	FeePayer(network string) (string, bool)
}

// BuildRequirements derives the payment requirement descriptor for a
// resource. It is pure: identical inputs yield identical output, because the
// settlement path re-derives the requirement and must match what the payer
// was shown. resourceURL is the canonical URL of the resource being paid for.
func BuildRequirements(res *models.PaidResource, resourceURL string, ids IdentityResolver) (*PaymentRequirements, error) {
	family := chains.FamilyForNetwork(res.Network)
	if family == "" {
		return nil, apperrors.ErrUnsupportedNetwork.WithInternal(fmt.Errorf("network %q", res.Network))
	}

	if res.RequiresTarget() && res.TargetURL == "" {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("%s resources require a target URL", res.EffectiveKind()))
	}

	amount, ok := new(big.Int).SetString(res.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid amount %q", res.Amount))
	}

	req := &PaymentRequirements{
		Scheme:            SchemeExact,
		Network:           res.Network,
		MaxAmountRequired: amount.String(),
		Asset:             res.Asset,
		PayTo:             res.PayTo,
		Description:       res.Description,
		Resource:          resourceURL,
		MaxTimeoutSeconds: defaultMaxTimeoutSeconds,
	}
	if req.Description == "" {
		req.Description = fmt.Sprintf("Payment for %s", resourceURL)
	}

	if family == chains.FamilySVM {
		feePayer, ok := ids.FeePayer(res.Network)
		if !ok || feePayer == "" {
			return nil, apperrors.ErrFeeDelegateUnavailable.WithInternal(
				fmt.Errorf("network %q has no signing identity", res.Network))
		}
		req.Extra = map[string]string{extraFeePayerKey: feePayer}
	}

	return req, nil
}
