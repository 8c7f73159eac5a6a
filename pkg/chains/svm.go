package chains

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcutil/base58"
)

// Instruction kinds for the fee-delegated family, in the order a client must
// place them inside the transaction.
const (
	InstructionCreateTokenAccount = "createTokenAccount"
	InstructionTransfer           = "transfer"
)

// Instruction is one entry of a fee-delegated transfer's instruction set.
type Instruction struct {
	Kind string `json:"kind"`
	// FeePayer covers the instruction's own cost. Account creation is always
	// paid by the fee payer, never the payer.
	FeePayer string   `json:"feePayer"`
	Accounts []string `json:"accounts"`
	Amount   string   `json:"amount,omitempty"`
}

// FeeDelegatedTransfer describes a partially signed transaction for the
// fee-delegated family. The payer signs the transfer instruction only; the
// fee payer signature is completed server-side at settlement.
type FeeDelegatedTransfer struct {
	FeePayer     string        `json:"feePayer"`
	Payer        string        `json:"payer"`
	PayTo        string        `json:"payTo"`
	Asset        string        `json:"asset"`
	Amount       string        `json:"amount"`
	Instructions []Instruction `json:"instructions"`
}

// NewFeeDelegatedTransfer builds the instruction set for a gasless transfer.
// When the payee's asset-holding account does not exist on-chain yet, an
// account-creation instruction paid by the fee payer is prepended; the
// transfer instruction always comes last.
func NewFeeDelegatedTransfer(feePayer, payer, payTo, asset string, amount *big.Int, payeeAccountExists bool) (*FeeDelegatedTransfer, error) {
	for name, addr := range map[string]string{
		"fee payer": feePayer,
		"payer":     payer,
		"payee":     payTo,
		"asset":     asset,
	} {
		if !validBase58Address(addr) {
			return nil, fmt.Errorf("chains: invalid %s address %q", name, addr)
		}
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("chains: transfer amount must be positive")
	}

	var instructions []Instruction
	if !payeeAccountExists {
		instructions = append(instructions, Instruction{
			Kind:     InstructionCreateTokenAccount,
			FeePayer: feePayer,
			Accounts: []string{payTo, asset},
		})
	}
	instructions = append(instructions, Instruction{
		Kind:     InstructionTransfer,
		FeePayer: feePayer,
		Accounts: []string{payer, payTo, asset},
		Amount:   amount.String(),
	})

	return &FeeDelegatedTransfer{
		FeePayer:     feePayer,
		Payer:        payer,
		PayTo:        payTo,
		Asset:        asset,
		Amount:       amount.String(),
		Instructions: instructions,
	}, nil
}

func validBase58Address(addr string) bool {
	if addr == "" {
		return false
	}
	decoded := base58.Decode(addr)
	return len(decoded) == 32
}
