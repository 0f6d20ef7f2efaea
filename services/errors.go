package services

import "errors"

// Error domain untuk session & token service. Controller yang menerjemahkan
// ke kode HTTP (lihat controllers), service hanya mengembalikan sentinel.
var (
	// ErrTableConflict -> meja sudah ditempati; pelanggaran invariant
	// satu session aktif per meja. Jangan di-retry otomatis, staff harus
	// refresh state meja dulu.
	ErrTableConflict = errors.New("table already has an active session")

	// ErrInvalidState -> transisi dari state yang tidak mengizinkannya
	// (mis. checkout di meja yang masih available).
	ErrInvalidState = errors.New("table state does not permit this transition")

	ErrTableNotFound   = errors.New("table not found")
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionNotActive -> operasi butuh session aktif (mis. issue token).
	ErrSessionNotActive = errors.New("session is not active")

	// ErrStoreTimeout -> gangguan transient ke store setelah retry habis.
	ErrStoreTimeout = errors.New("store operation timed out")
)

// ErrTokenInvalid dibungkus oleh semua alasan kegagalan validasi token.
// Gateway cukup cek errors.Is(err, ErrTokenInvalid) dan balas denial
// generik; alasan detail hanya untuk log internal.
var ErrTokenInvalid = errors.New("token invalid")

type TokenError struct {
	Reason string
}

const (
	TokenNotFound      = "not_found"
	TokenRevoked       = "revoked"
	TokenSessionClosed = "session_closed"
	TokenExpired       = "expired"
)

func (e *TokenError) Error() string {
	return "token invalid: " + e.Reason
}

func (e *TokenError) Unwrap() error {
	return ErrTokenInvalid
}
