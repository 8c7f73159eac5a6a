package chains

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	payerEVM = "0x857b06519E91e3A54538791bDbb0E22373e36b66"
	payeeEVM = "0x209693Bc6afc0C5328bA36FaF03C514EF312287C"

	// 32-byte base58 identities
	feePayerSVM = "4Nd1mBQtrMJVYVfKf2PjRmmiZdqvuG9p6iS3WoTGWstV"
	payerSVM    = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	payeeSVM    = "5oNDL3swdJJF1g9DzJiZ4ynHXgszjAEpUkxVYejchzrY"
	assetSVM    = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func TestNewTransferAuthorization(t *testing.T) {
	auth, err := NewTransferAuthorization(payerEVM, payeeEVM, big.NewInt(1000000), 0)
	require.NoError(t, err)

	require.Equal(t, payerEVM, auth.From)
	require.Equal(t, payeeEVM, auth.To)
	require.Equal(t, "1000000", auth.Value)
	require.Equal(t, "0", auth.ValidAfter)
	require.Len(t, auth.Nonce, 2+64) // 0x + 32 bytes hex
	require.False(t, auth.Expired(time.Now()))
	require.True(t, auth.Expired(time.Now().Add(DefaultAuthorizationWindow+time.Minute)))
}

func TestNewTransferAuthorizationRejectsBadInput(t *testing.T) {
	_, err := NewTransferAuthorization("not-an-address", payeeEVM, big.NewInt(1), 0)
	require.Error(t, err)

	_, err = NewTransferAuthorization(payerEVM, payeeEVM, big.NewInt(0), 0)
	require.Error(t, err)
}

func TestTransferAuthorizationNonceIsUnique(t *testing.T) {
	a, err := NewTransferAuthorization(payerEVM, payeeEVM, big.NewInt(5), 0)
	require.NoError(t, err)
	b, err := NewTransferAuthorization(payerEVM, payeeEVM, big.NewInt(5), 0)
	require.NoError(t, err)
	require.NotEqual(t, a.Nonce, b.Nonce)
}

func TestNewFeeDelegatedTransferPrependsAccountCreation(t *testing.T) {
	tx, err := NewFeeDelegatedTransfer(feePayerSVM, payerSVM, payeeSVM, assetSVM, big.NewInt(250000), false)
	require.NoError(t, err)

	require.Len(t, tx.Instructions, 2)
	require.Equal(t, InstructionCreateTokenAccount, tx.Instructions[0].Kind)
	require.Equal(t, feePayerSVM, tx.Instructions[0].FeePayer)
	require.Equal(t, InstructionTransfer, tx.Instructions[1].Kind)
	require.Equal(t, "250000", tx.Instructions[1].Amount)
}

func TestNewFeeDelegatedTransferExistingAccount(t *testing.T) {
	tx, err := NewFeeDelegatedTransfer(feePayerSVM, payerSVM, payeeSVM, assetSVM, big.NewInt(1), true)
	require.NoError(t, err)

	require.Len(t, tx.Instructions, 1)
	require.Equal(t, InstructionTransfer, tx.Instructions[0].Kind)
}

func TestNewFeeDelegatedTransferRejectsBadAddress(t *testing.T) {
	_, err := NewFeeDelegatedTransfer("short", payerSVM, payeeSVM, assetSVM, big.NewInt(1), true)
	require.Error(t, err)
}

func TestFamilyForNetwork(t *testing.T) {
	require.Equal(t, FamilyEVM, FamilyForNetwork("base"))
	require.Equal(t, FamilySVM, FamilyForNetwork("solana"))
	require.Equal(t, FamilyUTXO, FamilyForNetwork("cardano"))
	require.Equal(t, Family(""), FamilyForNetwork("tron"))
}
