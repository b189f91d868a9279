package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mobile_sale/internal/auth"
	"mobile_sale/internal/cart"
	"mobile_sale/internal/invoice"
	"mobile_sale/internal/middleware"
	"mobile_sale/internal/repository"
	"mobile_sale/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// newTestRouter wires the full route surface over a local backend in a
// temporary directory, with caching disabled
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend, err := store.NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	repo := repository.NewRepository(backend, true)
	carts := cart.NewManager(repo)
	renderer := invoice.New("")
	creds, err := auth.ParseCredentials("sale01:1234,sale02:1234,manager:admin")
	require.NoError(t, err)

	r := gin.New()
	r.POST("/login", LoginHandler(creds, testSecret))
	authed := r.Group("/")
	authed.Use(middleware.JWTAuthMiddleware(testSecret, nil))
	authed.POST("/logout", LogoutHandler(nil, carts))
	authed.POST("/customers", AddCustomerHandler(repo, nil))
	authed.GET("/customers", ListCustomersHandler(repo, nil))
	authed.POST("/products", AddProductHandler(repo, nil))
	authed.GET("/products", ListProductsHandler(repo, nil))
	authed.POST("/cart/lines", AddCartLineHandler(carts))
	authed.GET("/cart", GetCartHandler(carts))
	authed.DELETE("/cart", ClearCartHandler(carts))
	authed.POST("/orders", SubmitOrderHandler(carts, repo, renderer, nil))
	authed.GET("/orders", ListOrdersHandler(repo, nil))
	authed.GET("/orders/export", ExportOrdersHandler(repo))
	authed.GET("/orders/:order_id/invoice", InvoiceHandler(repo, renderer))
	authed.GET("/orders/:order_id/email", EmailLinkHandler(repo))
	return r
}

// do runs one JSON request against the router
func do(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// login returns a session token for the given user
func login(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/login", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code)
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/login", "", gin.H{"username": "sale01", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/login", "", gin.H{"username": "sale01"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/customers", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/customers", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderScenario(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "sale01", "1234")

	// sale01 adds a customer and a product
	w := do(t, r, http.MethodPost, "/customers", token, gin.H{"name": "ACME", "address": "123 Main"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/products", token, gin.H{"sku": "WID-1", "name": "Widget", "price": 100})
	require.Equal(t, http.StatusCreated, w.Code)

	// Three widgets in the cart
	w = do(t, r, http.MethodPost, "/cart/lines", token, gin.H{"product": "Widget", "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	var cartResp struct {
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cartResp))
	require.InDelta(t, 300.0, cartResp.Total, 1e-9)

	// Submit the cart
	w = do(t, r, http.MethodPost, "/orders", token, gin.H{"customer": "ACME", "note": "first order"})
	require.Equal(t, http.StatusCreated, w.Code)
	var submitResp struct {
		Order struct {
			OrderID  string  `json:"order_id"`
			Customer string  `json:"customer"`
			Total    float64 `json:"total"`
			Owner    string  `json:"owner"`
		} `json:"order"`
		InvoicePDF string `json:"invoice_pdf"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitResp))
	require.Equal(t, "ORD-001", submitResp.Order.OrderID)
	require.Equal(t, "ACME", submitResp.Order.Customer)
	require.Equal(t, "sale01", submitResp.Order.Owner)
	require.InDelta(t, 300.0, submitResp.Order.Total, 1e-9)

	// The inline invoice decodes to a PDF document
	doc, err := base64.StdEncoding.DecodeString(submitResp.InvoicePDF)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(doc), "%PDF-"))

	// The cart is now empty
	w = do(t, r, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"total":0`)

	// sale02 sees neither the customer nor the order
	token2 := login(t, r, "sale02", "1234")
	w = do(t, r, http.MethodGet, "/customers", token2, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "ACME")
	w = do(t, r, http.MethodGet, "/orders", token2, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "ORD-001")

	// sale02 does see the shared catalog
	w = do(t, r, http.MethodGet, "/products", token2, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Widget")

	// sale01 sees the order in history
	w = do(t, r, http.MethodGet, "/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ORD-001")
}

func TestSubmitEmptyCartRejected(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "sale01", "1234")

	w := do(t, r, http.MethodPost, "/customers", token, gin.H{"name": "ACME"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/orders", token, gin.H{"customer": "ACME"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// The order dataset was not mutated
	w = do(t, r, http.MethodGet, "/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "ORD-")
}

func TestSubmitUnknownCustomerRejected(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "sale01", "1234")

	w := do(t, r, http.MethodPost, "/products", token, gin.H{"sku": "WID-1", "name": "Widget", "price": 100})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/cart/lines", token, gin.H{"product": "Widget", "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	// Missing selection blocks submission
	w = do(t, r, http.MethodPost, "/orders", token, gin.H{"note": "no customer"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// A customer owned by someone else is invisible here
	token2 := login(t, r, "sale02", "1234")
	w = do(t, r, http.MethodPost, "/customers", token2, gin.H{"name": "Globex"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/orders", token, gin.H{"customer": "Globex"})
	require.Equal(t, http.StatusNotFound, w.Code)

	// The cart survives the failed submissions
	w = do(t, r, http.MethodGet, "/cart", token, nil)
	require.Contains(t, w.Body.String(), "Widget")
}

func TestThaiCustomerSurvivesFallbackRendering(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "sale01", "1234")

	w := do(t, r, http.MethodPost, "/customers", token, gin.H{"name": "บริษัท ก จำกัด", "address": "123 กทม."})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/products", token, gin.H{"sku": "A-001", "name": "สินค้า A", "price": 100})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/cart/lines", token, gin.H{"product": "สินค้า A", "quantity": 10})
	require.Equal(t, http.StatusOK, w.Code)

	// Rendering degrades without the font asset but submission succeeds
	w = do(t, r, http.MethodPost, "/orders", token, gin.H{"customer": "บริษัท ก จำกัด"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "invoice_pdf")

	// The stored record keeps the original, unmodified customer name
	w = do(t, r, http.MethodGet, "/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "บริษัท ก จำกัด")
	require.NotContains(t, w.Body.String(), "font missing")
}

func TestOrderExportAndDocuments(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "sale01", "1234")

	w := do(t, r, http.MethodPost, "/customers", token, gin.H{"name": "ACME", "address": "123 Main"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/products", token, gin.H{"sku": "WID-1", "name": "Widget", "price": 100})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/cart/lines", token, gin.H{"product": "Widget", "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodPost, "/orders", token, gin.H{"customer": "ACME"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Delimited-text export of this owner's history
	w = do(t, r, http.MethodGet, "/orders/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, w.Body.String(), "ORD-001")

	// Invoice re-render on demand
	w = do(t, r, http.MethodGet, "/orders/ORD-001/invoice", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	// Email compose link references the order id and total
	w = do(t, r, http.MethodGet, "/orders/ORD-001/email", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var emailResp struct {
		Mailto string `json:"mailto"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &emailResp))
	require.True(t, strings.HasPrefix(emailResp.Mailto, "mailto:?subject="))
	require.Contains(t, emailResp.Mailto, "ORD-001")
	require.Contains(t, emailResp.Mailto, "300.00")

	// Another owner cannot fetch these documents
	token2 := login(t, r, "sale02", "1234")
	w = do(t, r, http.MethodGet, "/orders/ORD-001/invoice", token2, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogoutDropsCart(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "sale01", "1234")

	w := do(t, r, http.MethodPost, "/products", token, gin.H{"sku": "WID-1", "name": "Widget", "price": 100})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/cart/lines", token, gin.H{"product": "Widget", "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// A fresh session starts with an empty cart
	token = login(t, r, "sale01", "1234")
	w = do(t, r, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "Widget")
}
