// Package x402 implements the wire-level vocabulary of the x402 payment
// protocol: requirement descriptors, payment-proof payloads, the 402
// challenge body, and the content negotiation that decides which of them a
// request receives.
package x402

// ProtocolVersion is the x402 protocol version this engine speaks.
const ProtocolVersion = 1

// PaymentProofHeader carries the base64-encoded payment proof.
const PaymentProofHeader = "X-Payment"

// SchemeExact is the only payment scheme this engine issues: an exact-amount
// transfer authorization.
const SchemeExact = "exact"

// PaymentRequirements is the ephemeral, request-scoped descriptor shown to a
// payer in a 402 challenge and re-derived when their proof settles.
type PaymentRequirements struct {
	Scheme            string            `json:"scheme"`
	Network           string            `json:"network"`
	MaxAmountRequired string            `json:"maxAmountRequired"`
	Asset             string            `json:"asset"`
	PayTo             string            `json:"payTo"`
	Description       string            `json:"description"`
	Resource          string            `json:"resource"`
	MaxTimeoutSeconds int64             `json:"maxTimeoutSeconds"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// Challenge is the 402 response body.
type Challenge struct {
	X402Version int                   `json:"x402Version"`
	Accepts     []PaymentRequirements `json:"accepts"`
	Error       string                `json:"error,omitempty"`
	Message     string                `json:"message,omitempty"`
}

// NewChallenge builds the 402 body for a single requirement.
func NewChallenge(req PaymentRequirements, errCode, message string) Challenge {
	return Challenge{
		X402Version: ProtocolVersion,
		Accepts:     []PaymentRequirements{req},
		Error:       errCode,
		Message:     message,
	}
}

// ExactAuthorization is the signed transfer authorization inside an
// account-model payment proof.
type ExactAuthorization struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  string `json:"validAfter"`
	ValidBefore string `json:"validBefore"`
	Nonce       string `json:"nonce"`
}

// ExactPayload is the scheme-specific part of a payment proof. EVM-family
// proofs carry Signature+Authorization; fee-delegated proofs carry the
// partially signed Transaction instead.
type ExactPayload struct {
	Signature     string              `json:"signature,omitempty"`
	Authorization *ExactAuthorization `json:"authorization,omitempty"`
	Transaction   string              `json:"transaction,omitempty"`
}

// PaymentPayload is a decoded payment proof.
type PaymentPayload struct {
	X402Version int          `json:"x402Version"`
	Scheme      string       `json:"scheme"`
	Network     string       `json:"network"`
	Payload     ExactPayload `json:"payload"`
}

// PayerAddress extracts the payer identity embedded in the proof, if any.
// Fee-delegated proofs do not expose the payer directly.
func (p *PaymentPayload) PayerAddress() string {
	if p.Payload.Authorization == nil {
		return ""
	}
	return p.Payload.Authorization.From
}

// VerifyResult is the outcome of the remote verify operation.
type VerifyResult struct {
	Valid         bool   `json:"valid"`
	InvalidReason string `json:"invalidReason,omitempty"`
	Payer         string `json:"payer,omitempty"`
}

// SettleResult is the outcome of the remote settle operation.
type SettleResult struct {
	Success         bool   `json:"success"`
	TransactionHash string `json:"transactionHash,omitempty"`
	ErrorMessage    string `json:"errorMessage,omitempty"`
	Payer           string `json:"payer,omitempty"`
}
