package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "aurum/pkg/domain"
	dErrors "aurum/pkg/domain-errors"
)

func TestFeeConfig_Calculate(t *testing.T) {
	tests := []struct {
		name   string
		fee    FeeConfig
		amount uint64
		want   uint64
	}{
		{"no fee", FeeConfig{}, 1_000, 0},
		{"exact", FeeConfig{BasisPoints: 100, MaximumFee: 1_000}, 10_000, 100},
		{"rounds up", FeeConfig{BasisPoints: 100, MaximumFee: 1_000}, 101, 2},
		{"capped", FeeConfig{BasisPoints: 500, MaximumFee: 3}, 1_000, 3},
		{"zero amount", FeeConfig{BasisPoints: 500, MaximumFee: 3}, 0, 0},
		{"no overflow at max amount", FeeConfig{BasisPoints: MaxFeeBasisPoints, MaximumFee: math.MaxUint64}, math.MaxUint64, math.MaxUint64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fee.Calculate(tt.amount))
		})
	}
}

func TestFeeConfig_Validate(t *testing.T) {
	assert.NoError(t, FeeConfig{BasisPoints: MaxFeeBasisPoints}.Validate())
	assert.True(t, dErrors.HasCode(FeeConfig{BasisPoints: MaxFeeBasisPoints + 1}.Validate(), dErrors.CodeValidation))
}

func TestAccount_Delegation(t *testing.T) {
	acct := &Account{Amount: 150}
	delegate := id.Address{9}

	acct.Approve(delegate, 100)
	assert.True(t, acct.HasDelegate())

	require.NoError(t, acct.ConsumeAllowance(40))
	assert.Equal(t, uint64(60), acct.DelegatedAmount)

	err := acct.ConsumeAllowance(61)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientBalance))

	require.NoError(t, acct.ConsumeAllowance(60))
	assert.False(t, acct.HasDelegate(), "spent delegation is cleared")

	acct.Approve(delegate, 5)
	acct.Revoke()
	assert.False(t, acct.HasDelegate())
	assert.Zero(t, acct.DelegatedAmount)
}

func TestAccount_Balance(t *testing.T) {
	acct := &Account{Amount: 10}
	assert.True(t, dErrors.HasCode(acct.Debit(11), dErrors.CodeInsufficientBalance))
	assert.Equal(t, uint64(10), acct.Amount, "failed debit leaves the balance")

	acct.Amount = math.MaxUint64
	assert.Error(t, acct.Credit(1))
}

func TestWithhold_Overflow(t *testing.T) {
	acct := &Account{WithheldAmount: math.MaxUint64 - 1}
	require.NoError(t, acct.Withhold(1))
	err := acct.Withhold(1)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	assert.Equal(t, uint64(math.MaxUint64), acct.WithheldAmount, "failed withhold leaves the total")

	m := &Mint{WithheldAmount: math.MaxUint64}
	assert.True(t, dErrors.HasCode(m.Withhold(1), dErrors.CodeInvariantViolation))
	require.NoError(t, m.Withhold(0))
}

func TestMint_Supply(t *testing.T) {
	m := &Mint{}
	require.NoError(t, m.IssueSupply(5))
	assert.Error(t, m.RetireSupply(6))
	require.NoError(t, m.RetireSupply(5))
	m.Supply = math.MaxUint64
	assert.Error(t, m.IssueSupply(1))
}
