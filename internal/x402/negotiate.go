package x402

import "strings"

// Mode is the terminal handling decision for an inbound request.
type Mode int

const (
	// ModeChallenge serves the 402 challenge body.
	ModeChallenge Mode = iota
	// ModeProcessPayment hands the request to the settlement orchestrator.
	ModeProcessPayment
	// ModeEntitled serves the entitled content without contacting the chain.
	ModeEntitled
	// ModePaymentPage renders the interactive payment page.
	ModePaymentPage
)

// Decision captures the audience and handling mode for one request.
type Decision struct {
	// Protocol is true for structured-data (machine) audiences.
	Protocol bool
	Mode     Mode
}

// Negotiate inspects a request's content-negotiation signals and decides how
// to answer it. hasGrant must already account for the resource's entitlement
// policy: callers pass false when accessTTL is 0.
func Negotiate(accept, proofHeader string, hasGrant bool) Decision {
	protocol := proofHeader != "" || prefersStructured(accept)

	switch {
	case protocol && proofHeader != "":
		return Decision{Protocol: true, Mode: ModeProcessPayment}
	case protocol && hasGrant:
		return Decision{Protocol: true, Mode: ModeEntitled}
	case protocol:
		return Decision{Protocol: true, Mode: ModeChallenge}
	case hasGrant:
		return Decision{Protocol: false, Mode: ModeEntitled}
	default:
		return Decision{Protocol: false, Mode: ModePaymentPage}
	}
}

// prefersStructured reports whether the Accept header indicates a
// structured-data preference. Browsers always advertise text/html, which wins
// over any JSON entry they also carry.
func prefersStructured(accept string) bool {
	accept = strings.ToLower(accept)
	if strings.Contains(accept, "text/html") {
		return false
	}
	return strings.Contains(accept, "application/json")
}
