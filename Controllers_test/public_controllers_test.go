package Controllers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/teampayal/cafe-pos/controllers"
	"github.com/teampayal/cafe-pos/models"
	"github.com/teampayal/cafe-pos/services"
)

type publicFixture struct {
	router   *gin.Engine
	db       *gorm.DB
	sessions *services.SessionService
	tokens   *services.TokenService
	table    models.Table
	menu     models.Menu
}

func setupPublicFixture(t *testing.T) *publicFixture {
	t.Helper()
	db := setupTestDB(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	tokenSvc := services.NewTokenService(db)
	sessionSvc := services.NewSessionService(db, tokenSvc)
	publicCtrl := controllers.NewPublicController(db, tokenSvc)

	router.GET("/public/session/:token", publicCtrl.ResolveSession)
	router.GET("/public/session/:token/orders", publicCtrl.ListOrders)
	router.POST("/public/session/:token/orders", publicCtrl.PlaceOrder)

	category := models.MenuCategory{Name: "Coffee"}
	db.Create(&category)
	menu := models.Menu{CategoryID: category.ID, Name: "Espresso", Price: 25000, Stock: 10}
	db.Create(&menu)

	table := models.Table{TableNumber: "A1", Capacity: 2, Status: models.TableAvailable}
	db.Create(&table)

	return &publicFixture{
		router:   router,
		db:       db,
		sessions: sessionSvc,
		tokens:   tokenSvc,
		table:    table,
		menu:     menu,
	}
}

func (f *publicFixture) seatAndIssue(t *testing.T) (*models.Session, string) {
	t.Helper()
	session, err := f.sessions.Seat(context.Background(), f.table.ID)
	assert.NoError(t, err)
	token, err := f.tokens.Issue(context.Background(), session.ID)
	assert.NoError(t, err)
	return session, token.Token
}

func TestResolveSession(t *testing.T) {
	f := setupPublicFixture(t)
	session, token := f.seatAndIssue(t)

	w := doJSON(f.router, "GET", "/public/session/"+token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, session.ID, data["session_id"])
	tableData := data["table"].(map[string]interface{})
	assert.Equal(t, float64(f.table.ID), tableData["id"])
	assert.Equal(t, "A1", tableData["table_number"])
}

// Denial selalu seragam: token tak dikenal, malformed, dan token dari
// session yang sudah ditutup menghasilkan respons yang identik, supaya
// client tidak bisa membedakan (oracle untuk menebak token).
func TestUniformDenial(t *testing.T) {
	f := setupPublicFixture(t)
	_, token := f.seatAndIssue(t)
	assert.NoError(t, f.sessions.CloseSession(context.Background(), f.table.ID))

	closedW := doJSON(f.router, "GET", "/public/session/"+token, nil)
	unknownW := doJSON(f.router, "GET", "/public/session/AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", nil)
	malformedW := doJSON(f.router, "GET", "/public/session/garbage", nil)

	for _, w := range []int{closedW.Code, unknownW.Code, malformedW.Code} {
		assert.Equal(t, http.StatusUnauthorized, w)
	}
	assert.Equal(t, unknownW.Body.String(), closedW.Body.String())
	assert.Equal(t, unknownW.Body.String(), malformedW.Body.String())
}

func TestPlaceOrder(t *testing.T) {
	f := setupPublicFixture(t)
	session, token := f.seatAndIssue(t)

	payload := map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_id": f.menu.ID, "quantity": 2, "notes": "less sugar"},
		},
	}
	w := doJSON(f.router, "POST", fmt.Sprintf("/public/session/%s/orders", token), payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	assert.NoError(t, f.db.Preload("OrderItems").First(&order, "session_id = ?", session.ID).Error)
	assert.Equal(t, f.table.ID, order.TableID)
	assert.Equal(t, 2*f.menu.Price, order.TotalAmount)
	assert.Len(t, order.OrderItems, 1)
}

// Property: table_id di body DIABAIKAN. Order selalu jatuh ke meja yang
// terikat ke token, bukan meja yang diklaim client.
func TestPlaceOrderIgnoresBodyTableID(t *testing.T) {
	f := setupPublicFixture(t)
	session, token := f.seatAndIssue(t)

	victim := models.Table{TableNumber: "Z9", Capacity: 2, Status: models.TableAvailable}
	f.db.Create(&victim)

	payload := map[string]interface{}{
		"table_id":   victim.ID, // percobaan tamper
		"session_id": "fake-session",
		"items": []map[string]interface{}{
			{"menu_id": f.menu.ID, "quantity": 1},
		},
	}
	w := doJSON(f.router, "POST", fmt.Sprintf("/public/session/%s/orders", token), payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	assert.NoError(t, f.db.First(&order, "session_id = ?", session.ID).Error)
	assert.Equal(t, f.table.ID, order.TableID, "order must reference the token's table")
	assert.NotEqual(t, victim.ID, order.TableID)
}

func TestPlaceOrderAfterClose(t *testing.T) {
	f := setupPublicFixture(t)
	_, token := f.seatAndIssue(t)
	assert.NoError(t, f.sessions.CloseSession(context.Background(), f.table.ID))

	payload := map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_id": f.menu.ID, "quantity": 1},
		},
	}
	w := doJSON(f.router, "POST", fmt.Sprintf("/public/session/%s/orders", token), payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestListOwnOrders(t *testing.T) {
	f := setupPublicFixture(t)
	session, token := f.seatAndIssue(t)

	// Order milik session lain tidak boleh kelihatan
	otherTable := models.Table{TableNumber: "B2", Capacity: 2, Status: models.TableAvailable}
	f.db.Create(&otherTable)
	otherSession := models.Session{ID: "other-session-id", TableID: otherTable.ID, Status: models.SessionActive}
	f.db.Create(&otherSession)
	f.db.Create(&models.Order{SessionID: otherSession.ID, TableID: otherTable.ID, Status: models.OrderPending})

	f.db.Create(&models.Order{SessionID: session.ID, TableID: f.table.ID, Status: models.OrderPending})

	w := doJSON(f.router, "GET", fmt.Sprintf("/public/session/%s/orders", token), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)
	first := data[0].(map[string]interface{})
	assert.Equal(t, session.ID, first["session_id"])
}
