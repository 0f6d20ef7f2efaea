package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teampayal/cafe-pos/models"
	"github.com/teampayal/cafe-pos/utils"
)

// SessionService -> state machine okupansi meja:
//
//	available --seat--> occupied --beginCheckout--> billing --close--> available
//
// Transisi pada meja yang sama diserialisasi lewat mutex per meja PLUS
// conditional update di baris tabel, jadi dua staff yang seat meja yang
// sama bersamaan tidak akan dua-duanya sukses. Meja berbeda tidak saling
// memblokir.
type SessionService struct {
	DB     *gorm.DB
	Tokens *TokenService

	tableLocks sync.Map // tableID -> *sync.Mutex
}

func NewSessionService(db *gorm.DB, tokens *TokenService) *SessionService {
	return &SessionService{DB: db, Tokens: tokens}
}

func (ss *SessionService) lockTable(tableID uint) func() {
	v, _ := ss.tableLocks.LoadOrStore(tableID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Seat -> staff mendudukkan customer: available -> occupied + buat session
// aktif baru. ErrTableConflict kalau meja tidak available (double-seat).
func (ss *SessionService) Seat(ctx context.Context, tableID uint) (*models.Session, error) {
	unlock := ss.lockTable(tableID)
	defer unlock()

	session := models.Session{
		ID:      uuid.NewString(),
		TableID: tableID,
		Status:  models.SessionActive,
	}

	err := withStoreRetry(ctx, func(ctx context.Context) error {
		return ss.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var table models.Table
			if err := tx.First(&table, tableID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTableNotFound
				}
				return err
			}

			// Conditional update: hanya menang kalau status masih available
			res := tx.Model(&models.Table{}).
				Where("id = ? AND status = ?", tableID, models.TableAvailable).
				Update("status", models.TableOccupied)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrTableConflict
			}

			return tx.Create(&session).Error
		})
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Session %s opened at table %d", session.ID, tableID)
	return &session, nil
}

// BeginCheckout -> occupied -> billing. ErrInvalidState kalau tidak ada
// session aktif atau meja belum occupied.
func (ss *SessionService) BeginCheckout(ctx context.Context, tableID uint) (*models.Session, error) {
	unlock := ss.lockTable(tableID)
	defer unlock()

	var session models.Session
	err := withStoreRetry(ctx, func(ctx context.Context) error {
		return ss.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("table_id = ? AND status = ?", tableID, models.SessionActive).
				First(&session).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInvalidState
				}
				return err
			}

			res := tx.Model(&models.Table{}).
				Where("id = ? AND status = ?", tableID, models.TableOccupied).
				Update("status", models.TableBilling)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInvalidState
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Table %d entered billing (session %s)", tableID, session.ID)
	return &session, nil
}

// CloseSession -> tutup session aktif (dari billing, atau occupied untuk
// override staff), revoke semua token-nya, dan kembalikan meja ke
// available. Idempotent: menutup meja yang sudah tertutup bukan error,
// cukup no-op, supaya retry dari staff aman.
func (ss *SessionService) CloseSession(ctx context.Context, tableID uint) error {
	unlock := ss.lockTable(tableID)
	defer unlock()

	closed := false
	err := withStoreRetry(ctx, func(ctx context.Context) error {
		return ss.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var session models.Session
			if err := tx.Where("table_id = ? AND status = ?", tableID, models.SessionActive).
				First(&session).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					var table models.Table
					if err := tx.First(&table, tableID).Error; err != nil {
						if errors.Is(err, gorm.ErrRecordNotFound) {
							return ErrTableNotFound
						}
						return err
					}
					// Tidak ada session aktif -> no-op
					return nil
				}
				return err
			}

			now := time.Now()
			if err := tx.Model(&models.Session{}).
				Where("id = ? AND status = ?", session.ID, models.SessionActive).
				Updates(map[string]interface{}{
					"status":    models.SessionClosed,
					"closed_at": &now,
				}).Error; err != nil {
				return err
			}

			// Penutupan session adalah event invalidasi yang otoritatif;
			// flag revoked di token hanya penanda sekunder.
			if err := ss.Tokens.revokeAllTx(tx, session.ID); err != nil {
				return err
			}

			res := tx.Model(&models.Table{}).
				Where("id = ? AND status IN ?", tableID,
					[]string{models.TableOccupied, models.TableBilling}).
				Update("status", models.TableAvailable)
			if res.Error != nil {
				return res.Error
			}

			closed = true
			return nil
		})
	})
	if err != nil {
		return err
	}

	if closed {
		utils.InfoLogger.Printf("Session closed at table %d, tokens revoked", tableID)
	}
	return nil
}

// CurrentSession -> session aktif di meja, atau ErrSessionNotFound.
func (ss *SessionService) CurrentSession(ctx context.Context, tableID uint) (*models.Session, error) {
	var session models.Session
	err := withStoreRetry(ctx, func(ctx context.Context) error {
		if err := ss.DB.WithContext(ctx).
			Where("table_id = ? AND status = ?", tableID, models.SessionActive).
			First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}
