package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/teampayal/cafe-pos/models"
	"github.com/teampayal/cafe-pos/utils"
)

const (
	// 32 byte acak -> 43 karakter base64url, 256 bit entropy
	tokenRawBytes = 32
	tokenLength   = 43

	// DefaultTokenTTL mengikuti expires_at 24 jam pada QR token lama.
	DefaultTokenTTL = 24 * time.Hour
)

// TokenService -> mint, validasi, dan revoke bearer token self-order.
// Token adalah capability, bukan identitas: siapa pun yang memegangnya
// boleh order atas nama session yang terikat, tidak lebih.
type TokenService struct {
	DB  *gorm.DB
	TTL time.Duration
}

func NewTokenService(db *gorm.DB) *TokenService {
	return &TokenService{DB: db, TTL: DefaultTokenTTL}
}

// Validation -> hasil resolve token yang sah. Authorization selalu jalan
// token -> session -> meja; TableID di sini diambil dari session, bukan
// dari input client mana pun.
type Validation struct {
	SessionID string
	TableID   uint
}

// Issue -> buat token baru untuk session aktif. Boleh dipanggil berkali-
// kali untuk session yang sama (regenerasi QR); tiap token berdiri
// sendiri sampai session-nya ditutup.
func (ts *TokenService) Issue(ctx context.Context, sessionID string) (*models.AccessToken, error) {
	var token models.AccessToken
	err := withStoreRetry(ctx, func(ctx context.Context) error {
		return ts.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var session models.Session
			if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrSessionNotFound
				}
				return err
			}
			if session.Status != models.SessionActive {
				return ErrSessionNotActive
			}

			value, err := generateTokenValue()
			if err != nil {
				return err
			}

			expires := time.Now().Add(ts.ttl())
			token = models.AccessToken{
				Token:     value,
				SessionID: session.ID,
				IssuedAt:  time.Now(),
				ExpiresAt: &expires,
			}
			return tx.Create(&token).Error
		})
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Token issued for session %s (expires %s)", sessionID, token.ExpiresAt.Format(time.RFC3339))
	return &token, nil
}

// Validate -> resolve nilai token ke (session, meja). State session selalu
// dicek ulang live: begitu session tertutup, token langsung mati tanpa
// perlu propagasi revoke. Input malformed tidak pernah panic atau bocor
// info, hasilnya sama dengan token yang tidak ada.
func (ts *TokenService) Validate(ctx context.Context, value string) (*Validation, error) {
	if !wellFormedToken(value) {
		return nil, &TokenError{Reason: TokenNotFound}
	}

	var token models.AccessToken
	err := withStoreRetry(ctx, func(ctx context.Context) error {
		if err := ts.DB.WithContext(ctx).Preload("Session").
			First(&token, "token = ?", value).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &TokenError{Reason: TokenNotFound}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case token.Session.Status != models.SessionActive:
		// Penutupan session adalah invalidasi otoritatif; flag revoked
		// cuma penanda sekunder, jadi dicek belakangan
		return nil, &TokenError{Reason: TokenSessionClosed}
	case token.Revoked:
		return nil, &TokenError{Reason: TokenRevoked}
	case token.ExpiresAt != nil && time.Now().After(*token.ExpiresAt):
		return nil, &TokenError{Reason: TokenExpired}
	}

	return &Validation{
		SessionID: token.SessionID,
		TableID:   token.Session.TableID,
	}, nil
}

// RevokeAll -> revoke semua token milik satu session. Idempotent.
func (ts *TokenService) RevokeAll(ctx context.Context, sessionID string) error {
	return withStoreRetry(ctx, func(ctx context.Context) error {
		return ts.revokeAllTx(ts.DB.WithContext(ctx), sessionID)
	})
}

// revokeAllTx dipakai SessionService di dalam transaksi CloseSession
// supaya revoke dan penutupan session commit bersama.
func (ts *TokenService) revokeAllTx(tx *gorm.DB, sessionID string) error {
	return tx.Model(&models.AccessToken{}).
		Where("session_id = ?", sessionID).
		Update("revoked", true).Error
}

func (ts *TokenService) ttl() time.Duration {
	if ts.TTL > 0 {
		return ts.TTL
	}
	return DefaultTokenTTL
}

func generateTokenValue() (string, error) {
	buf := make([]byte, tokenRawBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// wellFormedToken menolak input yang jelas bukan token kita sebelum kena
// DB. Panjang tetap, alfabet base64url saja.
func wellFormedToken(value string) bool {
	if len(value) != tokenLength {
		return false
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
