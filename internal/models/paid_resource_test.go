package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEffectiveKind(t *testing.T) {
	link := &PaidResource{Variant: VariantLink, Kind: KindRedirect}
	require.Equal(t, KindRedirect, link.EffectiveKind())

	// Endpoint resources are always proxies, whatever Kind says.
	endpoint := &PaidResource{Variant: VariantEndpoint, Kind: KindPayment}
	require.Equal(t, KindProxy, endpoint.EffectiveKind())
	require.True(t, endpoint.IsProxyLike())

	payment := &PaidResource{Variant: VariantLink, Kind: KindPayment}
	require.False(t, payment.IsProxyLike())
	require.False(t, payment.RequiresTarget())

	proxy := &PaidResource{Variant: VariantLink, Kind: KindProxy}
	require.True(t, proxy.RequiresTarget())
	require.True(t, link.RequiresTarget())
}

func TestForwardHeaderNames(t *testing.T) {
	res := &PaidResource{}
	require.Nil(t, res.ForwardHeaderNames())

	res.ForwardHeaders = []byte(`["X-Api-Key","Accept-Language"]`)
	require.Equal(t, []string{"X-Api-Key", "Accept-Language"}, res.ForwardHeaderNames())

	res.ForwardHeaders = []byte(`{"not":"a list"}`)
	require.Nil(t, res.ForwardHeaderNames())
}
