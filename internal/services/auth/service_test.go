package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/pokerleague/internal/dependencies/mocks"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	token   string
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.token = GenerateToken()

	hash, err := HashToken(s.token, bcrypt.MinCost)
	s.Require().NoError(err)

	s.service, err = New(Config{TokenHash: hash, CacheDuration: time.Minute}, s.clock)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestVerifyAcceptsToken() {
	s.True(s.service.Enabled())
	s.NoError(s.service.Verify(s.token))
	// Second check is served from the cache
	s.NoError(s.service.Verify(s.token))
}

func (s *ServiceSuite) TestVerifyRejectsWrongToken() {
	s.ErrorIs(s.service.Verify("plt_wrong"), ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyRequiresToken() {
	s.ErrorIs(s.service.Verify(""), ErrTokenRequired)
}

func (s *ServiceSuite) TestDisabledAcceptsAnything() {
	service, err := New(DefaultConfig(), s.clock)
	s.Require().NoError(err)

	s.False(service.Enabled())
	s.NoError(service.Verify(""))
	s.NoError(service.Verify("anything"))
}

func (s *ServiceSuite) TestMalformedHashIsRejected() {
	_, err := New(Config{TokenHash: "not-a-bcrypt-hash"}, s.clock)
	s.Error(err)
}

func (s *ServiceSuite) TestCleanExpired() {
	s.Require().NoError(s.service.Verify(s.token))
	s.Equal(0, s.service.CleanExpired())

	s.clock.Advance(2 * time.Minute)
	s.Equal(1, s.service.CleanExpired())

	// Still valid after the cache entry is gone
	s.NoError(s.service.Verify(s.token))
}

func (s *ServiceSuite) TestGenerateTokenIsUnique() {
	a, b := GenerateToken(), GenerateToken()
	s.NotEqual(a, b)
	s.True(strings.HasPrefix(a, "plt_"))
}

func (s *ServiceSuite) TestHashTokenRequiresToken() {
	_, err := HashToken("", bcrypt.MinCost)
	s.ErrorIs(err, ErrTokenRequired)
}
