package x402

// IdentityMap is a per-network snapshot of a facilitator's custodial
// identities, resolved once per request so requirement building stays pure.
type IdentityMap map[string]string

// FeePayer implements IdentityResolver.
func (m IdentityMap) FeePayer(network string) (string, bool) {
	addr, ok := m[network]
	return addr, ok && addr != ""
}
