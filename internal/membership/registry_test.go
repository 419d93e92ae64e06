package membership

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"tokenhost/pkg/domain"
	dErrors "tokenhost/pkg/domain-errors"
)

type RegistrySuite struct {
	suite.Suite
	registry *Registry
}

func (s *RegistrySuite) SetupTest() {
	s.registry = NewRegistry()
}

func (s *RegistrySuite) SetupSubTest() {
	s.SetupTest()
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

const carol = domain.Account("carol")

func (s *RegistrySuite) TestIssue() {
	s.Run("lists the account as pending", func() {
		change, err := s.registry.Issue(carol)
		s.Require().NoError(err)

		s.True(s.registry.IsPending(carol))
		s.False(s.registry.IsMember(carol))
		s.Equal(StatusIssued, change.NewStatus)
		s.Nil(change.VotingPower)
	})

	s.Run("rejects a second offer while pending", func() {
		_, err := s.registry.Issue(carol)
		s.Require().NoError(err)

		_, err = s.registry.Issue(carol)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyMember))
	})

	s.Run("rejects an offer to a full member", func() {
		_, err := s.registry.Issue(carol)
		s.Require().NoError(err)
		_, err = s.registry.Accept(carol)
		s.Require().NoError(err)

		_, err = s.registry.Issue(carol)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyMember))
	})
}

func (s *RegistrySuite) TestAccept() {
	s.Run("promotes pending to member with unit voting power", func() {
		_, err := s.registry.Issue(carol)
		s.Require().NoError(err)

		change, err := s.registry.Accept(carol)
		s.Require().NoError(err)

		s.True(s.registry.IsMember(carol))
		s.False(s.registry.IsPending(carol))
		s.Equal(StatusAccepted, change.NewStatus)
		s.Require().NotNil(change.VotingPower)
		s.EqualValues(1, *change.VotingPower)
	})

	s.Run("rejects without a pending offer", func() {
		_, err := s.registry.Accept(carol)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAMember))
	})

	s.Run("rejects a second accept", func() {
		_, err := s.registry.Issue(carol)
		s.Require().NoError(err)
		_, err = s.registry.Accept(carol)
		s.Require().NoError(err)

		_, err = s.registry.Accept(carol)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAMember))
	})
}

func (s *RegistrySuite) TestDecline() {
	s.Run("removes the pending offer without voting power", func() {
		_, err := s.registry.Issue(carol)
		s.Require().NoError(err)

		change, err := s.registry.Decline(carol)
		s.Require().NoError(err)

		s.False(s.registry.IsPending(carol))
		s.False(s.registry.IsMember(carol))
		s.Equal(StatusDeclined, change.NewStatus)
		s.Nil(change.VotingPower)
	})

	s.Run("declined account can be offered again", func() {
		_, err := s.registry.Issue(carol)
		s.Require().NoError(err)
		_, err = s.registry.Decline(carol)
		s.Require().NoError(err)

		_, err = s.registry.Issue(carol)
		s.NoError(err)
	})

	s.Run("rejects without a pending offer", func() {
		_, err := s.registry.Decline(carol)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAMember))
	})
}

func (s *RegistrySuite) TestRevoke() {
	s.Run("removes the member and zeroes voting power", func() {
		_, err := s.registry.Issue(carol)
		s.Require().NoError(err)
		_, err = s.registry.Accept(carol)
		s.Require().NoError(err)

		change, err := s.registry.Revoke(carol)
		s.Require().NoError(err)

		s.False(s.registry.IsMember(carol))
		s.Equal(StatusRevoked, change.NewStatus)
		s.Require().NotNil(change.VotingPower)
		s.EqualValues(0, *change.VotingPower)
	})

	s.Run("rejects a pending account", func() {
		_, err := s.registry.Issue(carol)
		s.Require().NoError(err)

		_, err = s.registry.Revoke(carol)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAMember))
		s.True(s.registry.IsPending(carol))
	})

	s.Run("rejects an unlisted account", func() {
		_, err := s.registry.Revoke(carol)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAMember))
	})
}

func (s *RegistrySuite) TestTotalMembers() {
	accounts := []domain.Account{"a1", "a2", "a3"}
	for _, account := range accounts {
		_, err := s.registry.Issue(account)
		s.Require().NoError(err)
		_, err = s.registry.Accept(account)
		s.Require().NoError(err)
	}
	s.Equal(3, s.registry.TotalMembers())

	_, err := s.registry.Revoke("a2")
	s.Require().NoError(err)
	s.Equal(2, s.registry.TotalMembers())
}
