package chains

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DefaultAuthorizationWindow bounds how long a transfer authorization stays
// broadcastable once constructed.
const DefaultAuthorizationWindow = time.Hour

// TransferAuthorization is the typed, time-boxed transfer authorization a
// payer signs for the EVM family. It is not a broadcast transaction; the
// facilitator relays it to the network during settlement.
type TransferAuthorization struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  string `json:"validAfter"`
	ValidBefore string `json:"validBefore"`
	Nonce       string `json:"nonce"`
}

// NewTransferAuthorization builds an unsigned authorization binding payer,
// payee and amount with a random 32-byte nonce. A non-positive window falls
// back to DefaultAuthorizationWindow.
func NewTransferAuthorization(from, to string, value *big.Int, window time.Duration) (*TransferAuthorization, error) {
	if !common.IsHexAddress(from) {
		return nil, fmt.Errorf("chains: invalid payer address %q", from)
	}
	if !common.IsHexAddress(to) {
		return nil, fmt.Errorf("chains: invalid payee address %q", to)
	}
	if value == nil || value.Sign() <= 0 {
		return nil, fmt.Errorf("chains: transfer value must be positive")
	}

	if window <= 0 {
		window = DefaultAuthorizationWindow
	}

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("chains: generate nonce: %w", err)
	}

	now := time.Now()
	return &TransferAuthorization{
		From:        common.HexToAddress(from).Hex(),
		To:          common.HexToAddress(to).Hex(),
		Value:       value.String(),
		ValidAfter:  "0",
		ValidBefore: fmt.Sprintf("%d", now.Add(window).Unix()),
		Nonce:       hexutil.Encode(nonce),
	}, nil
}

// Expired reports whether the authorization's validity window has passed.
func (a *TransferAuthorization) Expired(now time.Time) bool {
	deadline, ok := new(big.Int).SetString(a.ValidBefore, 10)
	if !ok {
		return true
	}
	return now.Unix() >= deadline.Int64()
}
