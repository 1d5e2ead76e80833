package validation

import (
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "aurum/pkg/domain-errors"
)

type LimitsSuite struct {
	suite.Suite
}

func TestLimitsSuite(t *testing.T) {
	suite.Run(t, new(LimitsSuite))
}

func (s *LimitsSuite) TestCheckSliceCount() {
	s.Run("passes at the limit", func() {
		s.NoError(CheckSliceCount("sources", MaxSourceAccounts, MaxSourceAccounts))
	})

	s.Run("passes when empty", func() {
		s.NoError(CheckSliceCount("sources", 0, MaxSourceAccounts))
	})

	s.Run("fails one past the limit", func() {
		err := CheckSliceCount("sources", MaxSourceAccounts+1, MaxSourceAccounts)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "too many sources: max 64 allowed")
	})
}

func (s *LimitsSuite) TestCheckRequired() {
	s.NoError(CheckRequired("sources", 1))
	err := CheckRequired("sources", 0)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(err.Error(), "sources are required")
}
