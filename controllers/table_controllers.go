package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/teampayal/cafe-pos/floor"
	"github.com/teampayal/cafe-pos/models"
	"github.com/teampayal/cafe-pos/services"
	"github.com/teampayal/cafe-pos/utils"
)

type TableController struct {
	DB       *gorm.DB
	Sessions *services.SessionService
	Tokens   *services.TokenService
}

func NewTableController(db *gorm.DB, sessions *services.SessionService, tokens *services.TokenService) *TableController {
	return &TableController{DB: db, Sessions: sessions, Tokens: tokens}
}

// CreateTable -> menambahkan meja baru
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
		Capacity    int    `json:"capacity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		Status:      models.TableAvailable,
	}
	if table.Capacity <= 0 {
		table.Capacity = 2
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	floor.BroadcastMessage(floor.Message{
		Event: floor.EventTableCreate,
		Data: map[string]interface{}{
			"table": table,
			"stats": tc.getFloorStats(),
		},
	})

	utils.InfoLogger.Printf("New table created: %s", table.TableNumber)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> menampilkan seluruh meja
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail satu meja
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// DeleteTable -> menghapus meja. Meja dengan session aktif tidak boleh
// dihapus supaya tidak ada session yatim.
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table

	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if table.Status != models.TableAvailable {
		utils.RespondError(c, http.StatusConflict, fmt.Errorf("table has an active session"))
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	floor.BroadcastMessage(floor.Message{
		Event: floor.EventTableDelete,
		Data: map[string]interface{}{
			"table_id": table.ID,
			"stats":    tc.getFloorStats(),
		},
	})

	utils.InfoLogger.Printf("Table %d deleted", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": table.ID})
}

// SeatTable -> staff mendudukkan customer: buka session baru di meja.
// 409 kalau meja masih dipakai (mencegah double-seat).
func (tc *TableController) SeatTable(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	session, err := tc.Sessions.Seat(c.Request.Context(), tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	floor.BroadcastSessionOpen(*session)
	utils.RespondJSON(c, http.StatusCreated, "Table seated", session)
}

// BeginCheckout -> meja masuk tahap billing.
func (tc *TableController) BeginCheckout(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	session, err := tc.Sessions.BeginCheckout(c.Request.Context(), tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.broadcastTable(tableID)
	utils.RespondJSON(c, http.StatusOK, "Checkout started", session)
}

// CloseTable -> tutup session dan kembalikan meja ke available.
// Idempotent: menutup meja yang sudah tertutup tetap 200.
func (tc *TableController) CloseTable(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	if err := tc.Sessions.CloseSession(c.Request.Context(), tableID); err != nil {
		respondServiceError(c, err)
		return
	}

	floor.BroadcastSessionClose(tableID, "")
	tc.broadcastTable(tableID)
	utils.RespondJSON(c, http.StatusOK, "Table closed", gin.H{"table_id": tableID})
}

// IssueToken -> buat token self-order baru untuk session aktif di meja,
// misal customer minta QR baru setelah reload.
func (tc *TableController) IssueToken(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	session, err := tc.Sessions.CurrentSession(c.Request.Context(), tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	token, err := tc.Tokens.Issue(c.Request.Context(), session.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Token issued", gin.H{
		"token":      token.Token,
		"session_id": token.SessionID,
		"expires_at": token.ExpiresAt,
		"qr_url":     fmt.Sprintf("/public/session/%s", token.Token),
	})
}

// GetActiveSession -> session aktif di meja (untuk floor page staff)
func (tc *TableController) GetActiveSession(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	session, err := tc.Sessions.CurrentSession(c.Request.Context(), tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active session", session)
}

func parseTableID(c *gin.Context) (uint, bool) {
	var id uint
	if _, err := fmt.Sscanf(c.Param("table_id"), "%d", &id); err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid table id"))
		return 0, false
	}
	return id, true
}

func (tc *TableController) broadcastTable(tableID uint) {
	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err == nil {
		floor.BroadcastTableUpdate(table)
	}
}

// getFloorStats menghitung statistik okupansi untuk floor dashboard
func (tc *TableController) getFloorStats() map[string]interface{} {
	var availableCount, occupiedCount, billingCount int64

	tc.DB.Model(&models.Table{}).Where("status = ?", models.TableAvailable).Count(&availableCount)
	tc.DB.Model(&models.Table{}).Where("status = ?", models.TableOccupied).Count(&occupiedCount)
	tc.DB.Model(&models.Table{}).Where("status = ?", models.TableBilling).Count(&billingCount)

	return map[string]interface{}{
		"available": availableCount,
		"occupied":  occupiedCount,
		"billing":   billingCount,
		"total":     availableCount + occupiedCount + billingCount,
	}
}
