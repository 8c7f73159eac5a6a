package x402

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeProof decodes a payment proof from its header (or body-field) form:
// base64 of a structured JSON payload. Any decode or shape failure returns an
// error; callers translate it into the protocol's 400.
func DecodeProof(value string) (*PaymentPayload, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("x402: empty payment proof")
	}

	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		// some clients emit unpadded base64
		raw, err = base64.RawStdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("x402: decode payment proof: %w", err)
		}
	}

	var payload PaymentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("x402: parse payment proof: %w", err)
	}

	if payload.Scheme == "" || payload.Network == "" {
		return nil, fmt.Errorf("x402: payment proof missing scheme or network")
	}

	return &payload, nil
}

// EncodeProof is the inverse of DecodeProof, used by tests and
// server-to-server callers.
func EncodeProof(payload *PaymentPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("x402: encode payment proof: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
