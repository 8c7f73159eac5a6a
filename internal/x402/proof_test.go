package x402

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeProofRoundTrip(t *testing.T) {
	payload := &PaymentPayload{
		X402Version: ProtocolVersion,
		Scheme:      SchemeExact,
		Network:     "base",
		Payload: ExactPayload{
			Signature: "0xsig",
			Authorization: &ExactAuthorization{
				From:  "0x1111111111111111111111111111111111111111",
				To:    "0x2222222222222222222222222222222222222222",
				Value: "10000",
			},
		},
	}

	encoded, err := EncodeProof(payload)
	require.NoError(t, err)

	decoded, err := DecodeProof(encoded)
	require.NoError(t, err)
	require.Equal(t, payload, decoded)
	require.Equal(t, "0x1111111111111111111111111111111111111111", decoded.PayerAddress())
}

func TestEncodeProofOmitsAuthorizationForFeeDelegated(t *testing.T) {
	encoded, err := EncodeProof(&PaymentPayload{
		X402Version: ProtocolVersion,
		Scheme:      SchemeExact,
		Network:     "solana",
		Payload:     ExactPayload{Transaction: "base64-partial-tx"},
	})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "authorization")

	decoded, err := DecodeProof(encoded)
	require.NoError(t, err)
	require.Empty(t, decoded.PayerAddress())
}

func TestDecodeProofUnpaddedBase64(t *testing.T) {
	payload := &PaymentPayload{Scheme: SchemeExact, Network: "solana"}
	encoded, err := EncodeProof(payload)
	require.NoError(t, err)

	unpadded := strings.TrimRight(encoded, "=")
	decoded, err := DecodeProof(unpadded)
	require.NoError(t, err)
	require.Equal(t, "solana", decoded.Network)
}

func TestDecodeProofRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"whitespace":     "   ",
		"not base64":     "!!!not-base64!!!",
		"not json":       base64.StdEncoding.EncodeToString([]byte("plain text")),
		"missing scheme": base64.StdEncoding.EncodeToString([]byte(`{"network":"base"}`)),
		"missing network": base64.StdEncoding.EncodeToString(
			[]byte(`{"scheme":"exact"}`)),
	}

	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeProof(value)
			require.Error(t, err)
		})
	}
}
