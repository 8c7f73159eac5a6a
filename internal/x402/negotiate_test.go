package x402

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name     string
		accept   string
		proof    string
		hasGrant bool
		want     Decision
	}{
		{
			name:   "json accept without proof gets challenge",
			accept: "application/json",
			want:   Decision{Protocol: true, Mode: ModeChallenge},
		},
		{
			name:   "proof header always processes payment",
			accept: "text/html",
			proof:  "abc",
			want:   Decision{Protocol: true, Mode: ModeProcessPayment},
		},
		{
			name:   "no accept and no proof renders payment page",
			accept: "",
			want:   Decision{Protocol: false, Mode: ModePaymentPage},
		},
		{
			name:   "browser accept renders payment page",
			accept: "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			want:   Decision{Protocol: false, Mode: ModePaymentPage},
		},
		{
			name:   "browser accept listing json still renders payment page",
			accept: "text/html,application/json;q=0.9",
			want:   Decision{Protocol: false, Mode: ModePaymentPage},
		},
		{
			name:     "json accept with grant serves entitled content",
			accept:   "application/json",
			hasGrant: true,
			want:     Decision{Protocol: true, Mode: ModeEntitled},
		},
		{
			name:     "browser with grant serves entitled content",
			accept:   "text/html",
			hasGrant: true,
			want:     Decision{Protocol: false, Mode: ModeEntitled},
		},
		{
			name:     "proof wins over grant",
			accept:   "application/json",
			proof:    "abc",
			hasGrant: true,
			want:     Decision{Protocol: true, Mode: ModeProcessPayment},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Negotiate(tt.accept, tt.proof, tt.hasGrant))
		})
	}
}
