package service

import (
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"scoregate/internal/identity"
	"scoregate/internal/leaderboard"
	"scoregate/internal/metadata"
	"scoregate/internal/ratelimit"
	"scoregate/internal/stats"
	"scoregate/internal/submission/models"
	"scoregate/internal/token"
	dErrors "scoregate/pkg/domain-errors"
)

func (s *ServiceSuite) validClaims() *token.Claims {
	now := time.Now()
	return &token.Claims{
		AccountID: testAccount,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(30 * time.Second).Unix(),
		Nonce:     testNonce,
	}
}

// expectUpToStats wires every gate before the stats check to pass.
func (s *ServiceSuite) expectUpToStats() {
	s.expectRatePass()
	s.tickets.EXPECT().
		Validate(gomock.Any(), testAccount, "session-ticket").
		Return(identity.Verdict{Valid: true}, nil)
	s.bans.EXPECT().IsBanned(gomock.Any(), testAccount).Return(false)
	s.tokens.EXPECT().Verify(gomock.Any(), "payload.mac").Return(s.validClaims(), nil)
	s.replay.EXPECT().Claim(gomock.Any(), testNonce).Return(true, nil)
}

func (s *ServiceSuite) TestSubmitAccepted() {
	sub := s.submission()
	s.expectUpToStats()
	s.stats.EXPECT().Validate(sub).Return(stats.Result{Valid: true})
	s.board.EXPECT().
		Submit(gomock.Any(), models.DifficultyWarmage, testAccount, int32(261000), gomock.Not(gomock.Nil())).
		Return(leaderboard.Outcome{Accepted: true, ScoreChanged: true, PreviousRank: 40, NewRank: 11}, nil)
	s.expectAudit(models.OutcomeAccepted, true)

	res, err := s.service.Submit(s.ctx(), sub)
	s.Require().NoError(err)
	s.True(res.Accepted)
	s.True(res.ScoreChanged)
	s.Equal(40, res.PreviousRank)
	s.Equal(11, res.NewRank)
	s.False(res.Banned)
	s.Equal(models.OutcomeAccepted, res.Outcome)
}

func (s *ServiceSuite) TestSubmitForwardsPackedMetadata() {
	sub := s.submission()
	s.expectUpToStats()
	s.stats.EXPECT().Validate(sub).Return(stats.Result{Valid: true})

	var got *[metadata.Slots]int32
	s.board.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, _ models.Difficulty, _ string, _ int32, packed *[metadata.Slots]int32) (leaderboard.Outcome, error) {
			got = packed
			return leaderboard.Outcome{Accepted: true}, nil
		})
	s.expectAudit(models.OutcomeAccepted, true)

	_, err := s.service.Submit(s.ctx(), sub)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(int32(255), got[0], "crossbow kills in slot 0")
	s.Equal(int32(261000), got[45], "final time in the summary block")
}

func (s *ServiceSuite) TestSubmitRateLimitedByAddress() {
	s.rate.EXPECT().
		Check(gomock.Any(), ratelimit.KeyPrefixAddr, testAddr, time.Minute, 10).
		Return(&ratelimit.Result{Limited: true, RetryAfter: 42 * time.Second}, nil)
	s.expectAudit(models.OutcomeRateLimited, false)

	res, err := s.service.Submit(s.ctx(), s.submission())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
	s.Equal(models.OutcomeRateLimited, res.Outcome)
	s.Equal(42*time.Second, res.RetryAfter)
	s.False(res.Banned)
}

func (s *ServiceSuite) TestSubmitRateLimitedByAccount() {
	s.rate.EXPECT().
		Check(gomock.Any(), ratelimit.KeyPrefixAddr, testAddr, time.Minute, 10).
		Return(&ratelimit.Result{}, nil)
	s.rate.EXPECT().
		Check(gomock.Any(), ratelimit.KeyPrefixAccount, testAccount, time.Minute, 3).
		Return(&ratelimit.Result{Limited: true, RetryAfter: 10 * time.Second}, nil)
	s.expectAudit(models.OutcomeRateLimited, false)

	_, err := s.service.Submit(s.ctx(), s.submission())
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
}

func (s *ServiceSuite) TestSubmitRateStoreOutageIsTransient() {
	s.rate.EXPECT().
		Check(gomock.Any(), ratelimit.KeyPrefixAddr, testAddr, time.Minute, 10).
		Return(nil, errors.New("store down"))
	s.expectAudit(models.OutcomeTransient, false)

	res, err := s.service.Submit(s.ctx(), s.submission())
	s.True(dErrors.HasCode(err, dErrors.CodeTransient))
	s.False(res.Banned, "outages never ban")
}

func (s *ServiceSuite) TestSubmitMissingTokenIsStructuralBan() {
	sub := s.submission()
	sub.Token = ""
	s.expectRatePass()
	s.bans.EXPECT().Ban(gomock.Any(), testAccount, "missing_token").Return(nil)
	s.expectAudit(models.OutcomeStructural, false)

	res, err := s.service.Submit(s.ctx(), sub)
	s.True(dErrors.HasCode(err, dErrors.CodeStructural))
	s.True(res.Banned)
}

func (s *ServiceSuite) TestSubmitMissingAccountCannotBan() {
	sub := s.submission()
	sub.AccountID = ""
	s.rate.EXPECT().
		Check(gomock.Any(), ratelimit.KeyPrefixAddr, testAddr, time.Minute, 10).
		Return(&ratelimit.Result{}, nil)
	// No account bucket check and no Ban call: there is no identity to act on.
	s.expectAudit(models.OutcomeStructural, false)

	res, err := s.service.Submit(s.ctx(), sub)
	s.True(dErrors.HasCode(err, dErrors.CodeStructural))
	s.True(res.Banned, "classification still reports the hard failure")
}

func (s *ServiceSuite) TestRejectStructuralBansAndAudits() {
	s.bans.EXPECT().Ban(gomock.Any(), testAccount, "missing_token").Return(nil)
	s.expectAudit(models.OutcomeStructural, false)

	res, err := s.service.RejectStructural(s.ctx(), testAccount, "missing_token")
	s.True(dErrors.HasCode(err, dErrors.CodeStructural))
	s.True(res.Banned)
	s.Equal("missing_token", res.Reason)
}

func (s *ServiceSuite) TestRejectStructuralWithoutAccountAuditsOnly() {
	// No Ban expectation: there is no identity to act on.
	s.expectAudit(models.OutcomeStructural, false)

	res, err := s.service.RejectStructural(s.ctx(), "", "missing_account_id")
	s.True(dErrors.HasCode(err, dErrors.CodeStructural))
	s.True(res.Banned, "classification still reports the hard failure")
}

func (s *ServiceSuite) TestSubmitInvalidTicketBans() {
	for _, reason := range []identity.Reason{
		identity.ReasonInvalidTicket,
		identity.ReasonIdentityMismatch,
		identity.ReasonNotEntitled,
	} {
		s.SetupTest()
		s.expectRatePass()
		s.tickets.EXPECT().
			Validate(gomock.Any(), testAccount, "session-ticket").
			Return(identity.Verdict{Valid: false, Reason: reason}, nil)
		s.bans.EXPECT().Ban(gomock.Any(), testAccount, "ticket:"+string(reason)).Return(nil)
		s.expectAudit(models.OutcomeAuthentication, false)

		res, err := s.service.Submit(s.ctx(), s.submission())
		s.True(dErrors.HasCode(err, dErrors.CodeAuthentication), "reason %s", reason)
		s.True(res.Banned)
		s.TearDownTest()
	}
}

func (s *ServiceSuite) TestSubmitTicketProviderOutageIsTransientNoBan() {
	s.expectRatePass()
	s.tickets.EXPECT().
		Validate(gomock.Any(), testAccount, "session-ticket").
		Return(identity.Verdict{}, dErrors.New(dErrors.CodeTransient, "identity provider unreachable"))
	s.expectAudit(models.OutcomeTransient, false)

	res, err := s.service.Submit(s.ctx(), s.submission())
	s.True(dErrors.HasCode(err, dErrors.CodeTransient))
	s.False(res.Banned)
}

func (s *ServiceSuite) TestSubmitAlreadyBannedIsSoft() {
	s.expectRatePass()
	s.tickets.EXPECT().
		Validate(gomock.Any(), testAccount, "session-ticket").
		Return(identity.Verdict{Valid: true}, nil)
	s.bans.EXPECT().IsBanned(gomock.Any(), testAccount).Return(true)
	// No new Ban call for an account that is already out.
	s.expectAudit(models.OutcomeBanned, false)

	res, err := s.service.Submit(s.ctx(), s.submission())
	s.True(dErrors.HasCode(err, dErrors.CodeBanned))
	s.True(res.Banned)
}

func (s *ServiceSuite) TestSubmitExpiredTokenRejectsWithoutBan() {
	s.expectRatePass()
	s.tickets.EXPECT().
		Validate(gomock.Any(), testAccount, "session-ticket").
		Return(identity.Verdict{Valid: true}, nil)
	s.bans.EXPECT().IsBanned(gomock.Any(), testAccount).Return(false)
	s.tokens.EXPECT().Verify(gomock.Any(), "payload.mac").Return(nil, token.ErrExpired)
	s.expectAudit(models.OutcomeAuthentication, false)

	res, err := s.service.Submit(s.ctx(), s.submission())
	s.True(dErrors.HasCode(err, dErrors.CodeAuthentication))
	s.False(res.Banned, "a slow legitimate client can present an expired token")
}

func (s *ServiceSuite) TestSubmitForgedTokenBans() {
	for _, verifyErr := range []error{token.ErrMalformed, token.ErrBadSignature} {
		s.SetupTest()
		s.expectRatePass()
		s.tickets.EXPECT().
			Validate(gomock.Any(), testAccount, "session-ticket").
			Return(identity.Verdict{Valid: true}, nil)
		s.bans.EXPECT().IsBanned(gomock.Any(), testAccount).Return(false)
		s.tokens.EXPECT().Verify(gomock.Any(), "payload.mac").Return(nil, verifyErr)
		s.bans.EXPECT().Ban(gomock.Any(), testAccount, "token_invalid").Return(nil)
		s.expectAudit(models.OutcomeAuthentication, false)

		res, err := s.service.Submit(s.ctx(), s.submission())
		s.True(dErrors.HasCode(err, dErrors.CodeAuthentication), "verify error %v", verifyErr)
		s.True(res.Banned)
		s.TearDownTest()
	}
}

func (s *ServiceSuite) TestSubmitTokenOwnerMismatchBans() {
	claims := s.validClaims()
	claims.AccountID = "someone-else"

	s.expectRatePass()
	s.tickets.EXPECT().
		Validate(gomock.Any(), testAccount, "session-ticket").
		Return(identity.Verdict{Valid: true}, nil)
	s.bans.EXPECT().IsBanned(gomock.Any(), testAccount).Return(false)
	s.tokens.EXPECT().Verify(gomock.Any(), "payload.mac").Return(claims, nil)
	s.bans.EXPECT().Ban(gomock.Any(), testAccount, "token_owner_mismatch").Return(nil)
	s.expectAudit(models.OutcomeAuthentication, false)

	res, err := s.service.Submit(s.ctx(), s.submission())
	s.True(dErrors.HasCode(err, dErrors.CodeAuthentication))
	s.True(res.Banned)
}

func (s *ServiceSuite) TestSubmitReplayedTokenBans() {
	s.expectRatePass()
	s.tickets.EXPECT().
		Validate(gomock.Any(), testAccount, "session-ticket").
		Return(identity.Verdict{Valid: true}, nil)
	s.bans.EXPECT().IsBanned(gomock.Any(), testAccount).Return(false)
	s.tokens.EXPECT().Verify(gomock.Any(), "payload.mac").Return(s.validClaims(), nil)
	s.replay.EXPECT().Claim(gomock.Any(), testNonce).Return(false, nil)
	s.bans.EXPECT().Ban(gomock.Any(), testAccount, "token_replayed").Return(nil)
	s.expectAudit(models.OutcomeAuthentication, false)

	res, err := s.service.Submit(s.ctx(), s.submission())
	s.True(dErrors.HasCode(err, dErrors.CodeAuthentication))
	s.True(res.Banned)
}

func (s *ServiceSuite) TestSubmitReplayGuardOutageIsTransient() {
	s.expectRatePass()
	s.tickets.EXPECT().
		Validate(gomock.Any(), testAccount, "session-ticket").
		Return(identity.Verdict{Valid: true}, nil)
	s.bans.EXPECT().IsBanned(gomock.Any(), testAccount).Return(false)
	s.tokens.EXPECT().Verify(gomock.Any(), "payload.mac").Return(s.validClaims(), nil)
	s.replay.EXPECT().Claim(gomock.Any(), testNonce).Return(false, errors.New("redis down"))
	s.expectAudit(models.OutcomeTransient, false)

	_, err := s.service.Submit(s.ctx(), s.submission())
	s.True(dErrors.HasCode(err, dErrors.CodeTransient))
}

func (s *ServiceSuite) TestSubmitImplausibleStatsIsSoftByDefault() {
	sub := s.submission()
	s.expectUpToStats()
	s.stats.EXPECT().Validate(sub).Return(stats.Result{Reason: "round_time_below_spawn_floor:round=1"})
	s.expectAudit(models.OutcomeImplausible, false)

	res, err := s.service.Submit(s.ctx(), sub)
	s.True(dErrors.HasCode(err, dErrors.CodePlausibility))
	s.False(res.Banned)
	s.Equal("round_time_below_spawn_floor:round=1", res.Reason)
}

func (s *ServiceSuite) TestSubmitImplausibleStatsBansWhenConfigured() {
	svc := s.newService(Config{
		RateWindow:       time.Minute,
		RatePerAddress:   10,
		RatePerAccount:   3,
		BanOnImplausible: true,
	})

	sub := s.submission()
	s.expectUpToStats()
	s.stats.EXPECT().Validate(sub).Return(stats.Result{Reason: "combined_kills_out_of_range:have=301"})
	s.bans.EXPECT().Ban(gomock.Any(), testAccount, "combined_kills_out_of_range:have=301").Return(nil)
	s.expectAudit(models.OutcomeImplausible, false)

	res, err := svc.Submit(s.ctx(), sub)
	s.True(dErrors.HasCode(err, dErrors.CodePlausibility))
	s.True(res.Banned)
}

func (s *ServiceSuite) TestSubmitRetriesWithoutMetadataWhenRejected() {
	sub := s.submission()
	s.expectUpToStats()
	s.stats.EXPECT().Validate(sub).Return(stats.Result{Valid: true})

	first := s.board.EXPECT().
		Submit(gomock.Any(), models.DifficultyWarmage, testAccount, int32(261000), gomock.Not(gomock.Nil())).
		Return(leaderboard.Outcome{}, leaderboard.ErrMetadataRejected)
	s.board.EXPECT().
		Submit(gomock.Any(), models.DifficultyWarmage, testAccount, int32(261000), gomock.Nil()).
		Return(leaderboard.Outcome{Accepted: true, NewRank: 3}, nil).
		After(first)
	s.expectAudit(models.OutcomeAccepted, true)

	res, err := s.service.Submit(s.ctx(), sub)
	s.Require().NoError(err)
	s.True(res.Accepted)
	s.Equal(3, res.NewRank)
}

func (s *ServiceSuite) TestSubmitForwardOutageIsTransient() {
	sub := s.submission()
	s.expectUpToStats()
	s.stats.EXPECT().Validate(sub).Return(stats.Result{Valid: true})
	s.board.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(leaderboard.Outcome{}, dErrors.New(dErrors.CodeTransient, "leaderboard unreachable"))
	s.expectAudit(models.OutcomeTransient, false)

	res, err := s.service.Submit(s.ctx(), sub)
	s.True(dErrors.HasCode(err, dErrors.CodeTransient))
	s.False(res.Accepted)
}

func (s *ServiceSuite) TestSubmitBanWriteFailureStillRejects() {
	s.expectRatePass()
	s.tickets.EXPECT().
		Validate(gomock.Any(), testAccount, "session-ticket").
		Return(identity.Verdict{Valid: false, Reason: identity.ReasonInvalidTicket}, nil)
	s.bans.EXPECT().
		Ban(gomock.Any(), testAccount, "ticket:invalid_ticket").
		Return(errors.New("store down"))
	s.expectAudit(models.OutcomeAuthentication, false)

	res, err := s.service.Submit(s.ctx(), s.submission())
	s.True(dErrors.HasCode(err, dErrors.CodeAuthentication))
	s.True(res.Banned)
}
