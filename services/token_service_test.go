package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teampayal/cafe-pos/models"
)

func assertTokenReason(t *testing.T, err error, reason string) {
	t.Helper()
	assert.ErrorIs(t, err, ErrTokenInvalid)
	var tokenErr *TokenError
	if assert.True(t, errors.As(err, &tokenErr)) {
		assert.Equal(t, reason, tokenErr.Reason)
	}
}

// Property: seat -> issue -> validate menghasilkan (session, meja) yang
// sama dengan yang dioperasikan seat/issue.
func TestIssueValidateRoundTrip(t *testing.T) {
	sessions, tokens, db := newServicesForTest(t)
	table := createTestTable(t, db, "A1")

	session, err := sessions.Seat(context.Background(), table.ID)
	assert.NoError(t, err)

	token, err := tokens.Issue(context.Background(), session.ID)
	assert.NoError(t, err)
	assert.Len(t, token.Token, 43)
	assert.Equal(t, session.ID, token.SessionID)

	val, err := tokens.Validate(context.Background(), token.Token)
	assert.NoError(t, err)
	assert.Equal(t, session.ID, val.SessionID)
	assert.Equal(t, table.ID, val.TableID)
}

func TestIssueRequiresActiveSession(t *testing.T) {
	sessions, tokens, db := newServicesForTest(t)
	table := createTestTable(t, db, "A1")

	_, err := tokens.Issue(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	session, err := sessions.Seat(context.Background(), table.ID)
	assert.NoError(t, err)
	assert.NoError(t, sessions.CloseSession(context.Background(), table.ID))

	_, err = tokens.Issue(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

// Beberapa token untuk satu session aktif boleh hidup berdampingan
// (regenerasi QR), dan nilainya tidak pernah sama.
func TestIssueMultipleIndependentTokens(t *testing.T) {
	sessions, tokens, db := newServicesForTest(t)
	table := createTestTable(t, db, "A1")

	session, err := sessions.Seat(context.Background(), table.ID)
	assert.NoError(t, err)

	first, err := tokens.Issue(context.Background(), session.ID)
	assert.NoError(t, err)
	second, err := tokens.Issue(context.Background(), session.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	_, err = tokens.Validate(context.Background(), first.Token)
	assert.NoError(t, err)
	_, err = tokens.Validate(context.Background(), second.Token)
	assert.NoError(t, err)
}

// Property: token valid selama session aktif, dan langsung mati begitu
// session ditutup walau token itu sendiri tidak pernah di-revoke eksplisit.
func TestValidateAfterSessionClose(t *testing.T) {
	sessions, tokens, db := newServicesForTest(t)
	table := createTestTable(t, db, "A1")

	session, err := sessions.Seat(context.Background(), table.ID)
	assert.NoError(t, err)

	token, err := tokens.Issue(context.Background(), session.ID)
	assert.NoError(t, err)

	_, err = tokens.Validate(context.Background(), token.Token)
	assert.NoError(t, err)

	assert.NoError(t, sessions.CloseSession(context.Background(), table.ID))

	_, err = tokens.Validate(context.Background(), token.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

// Property: close me-revoke SEMUA token milik session
func TestCloseRevokesAllTokens(t *testing.T) {
	sessions, tokens, db := newServicesForTest(t)
	table := createTestTable(t, db, "A1")

	session, err := sessions.Seat(context.Background(), table.ID)
	assert.NoError(t, err)

	first, err := tokens.Issue(context.Background(), session.ID)
	assert.NoError(t, err)
	second, err := tokens.Issue(context.Background(), session.ID)
	assert.NoError(t, err)

	assert.NoError(t, sessions.CloseSession(context.Background(), table.ID))

	_, err = tokens.Validate(context.Background(), first.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = tokens.Validate(context.Background(), second.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	var revokedCount int64
	db.Model(&models.AccessToken{}).
		Where("session_id = ? AND revoked = ?", session.ID, true).
		Count(&revokedCount)
	assert.Equal(t, int64(2), revokedCount)
}

func TestValidateRevokedToken(t *testing.T) {
	sessions, tokens, db := newServicesForTest(t)
	table := createTestTable(t, db, "A1")

	session, err := sessions.Seat(context.Background(), table.ID)
	assert.NoError(t, err)

	token, err := tokens.Issue(context.Background(), session.ID)
	assert.NoError(t, err)

	assert.NoError(t, tokens.RevokeAll(context.Background(), session.ID))
	// RevokeAll idempotent
	assert.NoError(t, tokens.RevokeAll(context.Background(), session.ID))

	_, err = tokens.Validate(context.Background(), token.Token)
	assertTokenReason(t, err, TokenRevoked)
}

func TestValidateExpiredToken(t *testing.T) {
	sessions, tokens, db := newServicesForTest(t)
	table := createTestTable(t, db, "A1")

	session, err := sessions.Seat(context.Background(), table.ID)
	assert.NoError(t, err)

	tokens.TTL = -1 * time.Minute // langsung kadaluarsa
	token, err := tokens.Issue(context.Background(), session.ID)
	assert.NoError(t, err)

	_, err = tokens.Validate(context.Background(), token.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

// Input malformed atau tidak dikenal -> NotFound, tanpa panic, tanpa
// membocorkan beda antara "salah bentuk" dan "tidak ada".
func TestValidateMalformedToken(t *testing.T) {
	_, tokens, _ := newServicesForTest(t)

	cases := []string{
		"",
		"short",
		"dengan spasi yang jelas bukan token valid!!!!!",
		"$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$", // 43 char, alfabet salah
		"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", // 43 char, bentuk benar tapi tidak ada
	}
	for _, value := range cases {
		_, err := tokens.Validate(context.Background(), value)
		assertTokenReason(t, err, TokenNotFound)
	}
}

// Property: setelah turnover meja, token lama tetap mati dan token baru
// terikat ke session baru -- QR fisik yang belum diganti tidak bisa
// dipakai menembak session berikutnya.
func TestTableTurnoverInvalidatesOldTokens(t *testing.T) {
	sessions, tokens, db := newServicesForTest(t)
	table := createTestTable(t, db, "A1")

	firstSession, err := sessions.Seat(context.Background(), table.ID)
	assert.NoError(t, err)
	oldToken, err := tokens.Issue(context.Background(), firstSession.ID)
	assert.NoError(t, err)

	assert.NoError(t, sessions.CloseSession(context.Background(), table.ID))

	secondSession, err := sessions.Seat(context.Background(), table.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, firstSession.ID, secondSession.ID)

	newToken, err := tokens.Issue(context.Background(), secondSession.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, oldToken.Token, newToken.Token)

	_, err = tokens.Validate(context.Background(), oldToken.Token)
	assertTokenReason(t, err, TokenSessionClosed)

	val, err := tokens.Validate(context.Background(), newToken.Token)
	assert.NoError(t, err)
	assert.Equal(t, secondSession.ID, val.SessionID)
	assert.Equal(t, table.ID, val.TableID)
}
