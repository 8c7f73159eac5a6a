// Package chains defines the chain-facing contracts shared between the
// protocol engine and the payer's client. The server never signs or
// broadcasts anything here; it parameterizes descriptors that the payer's
// wallet turns into signed payloads, and the facilitator completes at
// settlement time.
package chains

// Family classifies a payment network into a blockchain family.
type Family string

const (
	// FamilyEVM covers account-model networks with native gas where the
	// payer signs a typed transfer authorization (EIP-3009 shape).
	FamilyEVM Family = "evm"

	// FamilySVM covers the fee-delegated account-model family: the
	// facilitator's fee payer identity covers transaction fees and
	// completes the signature set at settlement.
	FamilySVM Family = "svm"

	// FamilyUTXO covers the UTXO-account hybrid family.
	FamilyUTXO Family = "utxo"
)

// FamilyForNetwork maps a network identifier onto its chain family.
// Unknown networks return an empty family.
func FamilyForNetwork(network string) Family {
	switch network {
	case "base", "base-sepolia", "ethereum", "polygon":
		return FamilyEVM
	case "solana", "solana-devnet":
		return FamilySVM
	case "cardano":
		return FamilyUTXO
	}
	return ""
}

// SupportedNetworks lists every network the engine can build requirements for.
func SupportedNetworks() []string {
	return []string{
		"base", "base-sepolia", "ethereum", "polygon",
		"solana", "solana-devnet",
		"cardano",
	}
}

// AuxiliaryData carries the chain-specific values a client needs alongside
// payment requirements to construct an unsigned transaction.
type AuxiliaryData struct {
	RPCEndpoint string `json:"rpcEndpoint,omitempty"`
	FeePayer    string `json:"feePayer,omitempty"`
}
