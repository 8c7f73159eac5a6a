package chains

import (
	"fmt"
	"math/big"
)

// UTXOTransfer describes a transfer for the UTXO-account hybrid family. The
// client selects inputs; the engine only pins the payment output, which must
// be the first output so the facilitator can verify it positionally.
type UTXOTransfer struct {
	PayTo  string `json:"payTo"`
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

// NewUTXOTransfer builds the payment-output contract for a UTXO transfer.
func NewUTXOTransfer(payTo, asset string, amount *big.Int) (*UTXOTransfer, error) {
	if payTo == "" {
		return nil, fmt.Errorf("chains: payee address is required")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("chains: transfer amount must be positive")
	}
	return &UTXOTransfer{PayTo: payTo, Asset: asset, Amount: amount.String()}, nil
}
