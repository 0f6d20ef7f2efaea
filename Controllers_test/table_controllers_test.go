package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/teampayal/cafe-pos/controllers"
	"github.com/teampayal/cafe-pos/models"
	"github.com/teampayal/cafe-pos/services"
	"github.com/teampayal/cafe-pos/utils"
)

// setupTestDB -> SQLite in-memory per test, semua model core
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Table{},
		&models.Session{},
		&models.AccessToken{},
		&models.MenuCategory{},
		&models.Menu{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupTableRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	tokenSvc := services.NewTokenService(db)
	sessionSvc := services.NewSessionService(db, tokenSvc)
	tableCtrl := controllers.NewTableController(db, sessionSvc, tokenSvc)

	router.GET("/tables", tableCtrl.GetAllTables)
	router.POST("/tables", tableCtrl.CreateTable)
	router.POST("/tables/:table_id/seat", tableCtrl.SeatTable)
	router.POST("/tables/:table_id/checkout", tableCtrl.BeginCheckout)
	router.POST("/tables/:table_id/close", tableCtrl.CloseTable)
	router.POST("/tables/:table_id/token", tableCtrl.IssueToken)
	router.GET("/tables/:table_id/session", tableCtrl.GetActiveSession)
	return router
}

func doJSON(r *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response
}

func TestGetAllTables(t *testing.T) {
	db := setupTestDB(t)
	db.Create(&models.Table{TableNumber: "A1", Capacity: 2, Status: models.TableAvailable})
	db.Create(&models.Table{TableNumber: "B1", Capacity: 4, Status: models.TableOccupied})

	router := setupTableRouter(db)
	w := doJSON(router, "GET", "/tables", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, "List of tables", response["message"])
	data := response["data"].([]interface{})
	assert.GreaterOrEqual(t, len(data), 2)
}

func TestSeatTableEndpoint(t *testing.T) {
	db := setupTestDB(t)
	table := models.Table{TableNumber: "A1", Capacity: 2, Status: models.TableAvailable}
	db.Create(&table)

	router := setupTableRouter(db)
	url := fmt.Sprintf("/tables/%d/seat", table.ID)

	w := doJSON(router, "POST", url, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	response := decodeResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(table.ID), data["table_id"])
	assert.Equal(t, models.SessionActive, data["status"])

	// Double-seat -> 409
	w = doJSON(router, "POST", url, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckoutRequiresOccupiedTable(t *testing.T) {
	db := setupTestDB(t)
	table := models.Table{TableNumber: "A1", Capacity: 2, Status: models.TableAvailable}
	db.Create(&table)

	router := setupTableRouter(db)
	w := doJSON(router, "POST", fmt.Sprintf("/tables/%d/checkout", table.ID), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCloseTableIdempotentEndpoint(t *testing.T) {
	db := setupTestDB(t)
	table := models.Table{TableNumber: "A1", Capacity: 2, Status: models.TableAvailable}
	db.Create(&table)

	router := setupTableRouter(db)
	seatURL := fmt.Sprintf("/tables/%d/seat", table.ID)
	closeURL := fmt.Sprintf("/tables/%d/close", table.ID)

	assert.Equal(t, http.StatusCreated, doJSON(router, "POST", seatURL, nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(router, "POST", closeURL, nil).Code)
	// Close kedua kali tetap 200, bukan error
	assert.Equal(t, http.StatusOK, doJSON(router, "POST", closeURL, nil).Code)
}

func TestIssueTokenEndpoint(t *testing.T) {
	db := setupTestDB(t)
	table := models.Table{TableNumber: "A1", Capacity: 2, Status: models.TableAvailable}
	db.Create(&table)

	router := setupTableRouter(db)
	assert.Equal(t, http.StatusCreated,
		doJSON(router, "POST", fmt.Sprintf("/tables/%d/seat", table.ID), nil).Code)

	w := doJSON(router, "POST", fmt.Sprintf("/tables/%d/token", table.ID), nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	response := decodeResponse(t, w)
	data := response["data"].(map[string]interface{})
	token := data["token"].(string)
	assert.Len(t, token, 43)
	assert.Equal(t, "/public/session/"+token, data["qr_url"])

	// Tanpa session aktif, issue token -> 404
	other := models.Table{TableNumber: "B1", Capacity: 2, Status: models.TableAvailable}
	db.Create(&other)
	w = doJSON(router, "POST", fmt.Sprintf("/tables/%d/token", other.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
