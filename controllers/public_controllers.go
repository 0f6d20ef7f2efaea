package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/teampayal/cafe-pos/floor"
	"github.com/teampayal/cafe-pos/models"
	"github.com/teampayal/cafe-pos/services"
	"github.com/teampayal/cafe-pos/utils"
)

// PublicController -> gateway self-order untuk client anonim pemegang
// capability token. Aksi yang diizinkan terbatas: lihat menu, buat order,
// lihat status order sendiri. Aksi lain ditolak apa pun tokennya.
type PublicController struct {
	DB     *gorm.DB
	Tokens *services.TokenService
}

func NewPublicController(db *gorm.DB, tokens *services.TokenService) *PublicController {
	return &PublicController{DB: db, Tokens: tokens}
}

// respondDenied -> denial generik. Alasan (not_found/revoked/expired/
// session_closed) sengaja TIDAK dibedakan ke client supaya tidak jadi
// oracle buat menebak token; detailnya cukup masuk log.
func respondDenied(c *gin.Context, err error) {
	var tokenErr *services.TokenError
	if errors.As(err, &tokenErr) {
		utils.InfoLogger.Printf("Public access denied (%s) from %s", tokenErr.Reason, c.ClientIP())
	}
	utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid or expired session"))
}

// resolve memvalidasi token path dan mengembalikan binding session->meja.
func (pc *PublicController) resolve(c *gin.Context) (*services.Validation, bool) {
	val, err := pc.Tokens.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, services.ErrTokenInvalid) {
			respondDenied(c, err)
		} else {
			respondServiceError(c, err)
		}
		return nil, false
	}
	return val, true
}

// ResolveSession -> scan QR: token -> info meja + konteks menu.
func (pc *PublicController) ResolveSession(c *gin.Context) {
	val, ok := pc.resolve(c)
	if !ok {
		return
	}

	var table models.Table
	if err := pc.DB.First(&table, val.TableID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var categories []models.MenuCategory
	pc.DB.Find(&categories)

	utils.RespondJSON(c, http.StatusOK, "Session resolved", gin.H{
		"session_id": val.SessionID,
		"table": gin.H{
			"id":           table.ID,
			"table_number": table.TableNumber,
			"capacity":     table.Capacity,
		},
		"categories": categories,
	})
}

// PlaceOrder -> customer membuat order lewat token. table_id atau
// session_id apa pun di body DIABAIKAN; binding hasil validasi token yang
// menentukan, supaya body tidak bisa dipakai menembak meja lain.
func (pc *PublicController) PlaceOrder(c *gin.Context) {
	val, ok := pc.resolve(c)
	if !ok {
		return
	}

	type ItemReq struct {
		MenuID   uint   `json:"menu_id" binding:"required"`
		Quantity int    `json:"quantity" binding:"required,min=1"`
		Notes    string `json:"notes"`
	}
	var body struct {
		Items []ItemReq `json:"items" binding:"required,min=1"`
		Notes string    `json:"notes"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order := models.Order{
		SessionID: val.SessionID,
		TableID:   val.TableID, // dari token, bukan dari body
		Status:    models.OrderPending,
		Notes:     body.Notes,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var total float64
		for _, item := range body.Items {
			var menu models.Menu
			if err := tx.First(&menu, item.MenuID).Error; err != nil {
				// menu tidak dikenal -> skip item, bukan gagal total
				continue
			}
			total += float64(item.Quantity) * menu.Price

			orderItem := models.OrderItem{
				OrderID:   order.ID,
				MenuID:    menu.ID,
				Quantity:  item.Quantity,
				Price:     menu.Price,
				Notes:     item.Notes,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
		}

		order.TotalAmount = total
		return tx.Model(&order).Update("total_amount", total).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := pc.DB.Preload("OrderItems").First(&order, order.ID).Error; err == nil {
		floor.BroadcastOrderCreate(order)
	}

	utils.InfoLogger.Printf("Self-order %d placed for session %s (table %d)", order.ID, val.SessionID, val.TableID)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// ListOrders -> customer melihat status order milik session-nya sendiri.
func (pc *PublicController) ListOrders(c *gin.Context) {
	val, ok := pc.resolve(c)
	if !ok {
		return
	}

	var orders []models.Order
	if err := pc.DB.Preload("OrderItems").
		Where("session_id = ?", val.SessionID).
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}
