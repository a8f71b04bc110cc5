package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/claridapp/clarid/app/models"
	"github.com/claridapp/clarid/internal/pkg/payments"
)

const testWebhookSecret = "test-secret"

func newWebhookTestApp(t *testing.T, secret string) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.CreditTransaction{}))

	controller := NewWebhookController(payments.NewServiceFromDB(db), secret)

	app := fiber.New()
	app.All("/webhooks/kiwify", controller.HandleKiwifyWebhook)
	return app, db
}

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func purchasePayload(t *testing.T, orderID, email, productID string) []byte {
	t.Helper()

	raw, err := json.Marshal(map[string]interface{}{
		"event":    "purchase_approved",
		"order_id": orderID,
		"customer": map[string]string{"email": email, "name": "Buyer"},
		"product":  map[string]interface{}{"id": productID, "name": productID, "price": 49.9},
		"payment":  map[string]string{"method": "pix", "status": "paid"},
	})
	require.NoError(t, err)
	return raw
}

func decodeResult(t *testing.T, resp *http.Response) payments.Result {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result payments.Result
	require.NoError(t, json.Unmarshal(body, &result))
	return result
}

func TestWebhookPreflight(t *testing.T) {
	app, _ := newWebhookTestApp(t, testWebhookSecret)

	req := httptest.NewRequest(http.MethodOptions, "/webhooks/kiwify", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "x-kiwify-signature")
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	app, _ := newWebhookTestApp(t, testWebhookSecret)

	req := httptest.NewRequest(http.MethodGet, "/webhooks/kiwify", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestWebhookInvalidSignature(t *testing.T) {
	app, db := newWebhookTestApp(t, testWebhookSecret)
	require.NoError(t, db.Create(&models.User{
		Name: "Buyer", Email: "buyer@example.com", Password: "hashed",
		Status: models.STATUS_ACTIVE, Credits: 5, Tier: models.TierFree,
	}).Error)

	body := purchasePayload(t, "ord_1", "buyer@example.com", "prod_50_creditos")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/kiwify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-kiwify-signature", signBody(body, "wrong-secret"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Nothing may change on a rejected delivery.
	var user models.User
	require.NoError(t, db.Where("email = ?", "buyer@example.com").First(&user).Error)
	assert.Equal(t, 5, user.Credits)

	var txCount int64
	require.NoError(t, db.Model(&models.CreditTransaction{}).Count(&txCount).Error)
	assert.Equal(t, int64(0), txCount)
}

func TestWebhookMissingSignature(t *testing.T) {
	app, _ := newWebhookTestApp(t, testWebhookSecret)

	body := purchasePayload(t, "ord_1", "buyer@example.com", "prod_50_creditos")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/kiwify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebhookPurchaseDelivery(t *testing.T) {
	app, db := newWebhookTestApp(t, testWebhookSecret)
	require.NoError(t, db.Create(&models.User{
		Name: "Buyer", Email: "buyer@example.com", Password: "hashed",
		Status: models.STATUS_ACTIVE, Credits: 5, Tier: models.TierFree,
	}).Error)

	body := purchasePayload(t, "ord_1", "buyer@example.com", "prod_50_creditos")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/kiwify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-kiwify-signature", signBody(body, testWebhookSecret))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decodeResult(t, resp)
	assert.True(t, result.Success)
	assert.Equal(t, "50 créditos adicionados com sucesso", result.Message)
	assert.Equal(t, float64(55), result.Data["new_balance"])
}

func TestWebhookDeclaredFailureStillOK(t *testing.T) {
	app, _ := newWebhookTestApp(t, testWebhookSecret)

	// No matching account: the result reports failure, but the provider must
	// not retry, so the transport answer is 200.
	body := purchasePayload(t, "ord_1", "nobody@example.com", "prod_50_creditos")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/kiwify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-kiwify-signature", signBody(body, testWebhookSecret))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decodeResult(t, resp)
	assert.False(t, result.Success)
}

func TestWebhookInsecureModeSkipsVerification(t *testing.T) {
	app, db := newWebhookTestApp(t, "")
	require.NoError(t, db.Create(&models.User{
		Name: "Buyer", Email: "buyer@example.com", Password: "hashed",
		Status: models.STATUS_ACTIVE, Credits: 0, Tier: models.TierFree,
	}).Error)

	body := purchasePayload(t, "ord_1", "buyer@example.com", "prod_10_creditos")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/kiwify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeResult(t, resp).Success)
}

func TestWebhookMalformedPayload(t *testing.T) {
	app, _ := newWebhookTestApp(t, testWebhookSecret)

	body := []byte(`{"order_id":"ord_1"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/kiwify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-kiwify-signature", signBody(body, testWebhookSecret))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
