package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"petstore/internal/config"
	"petstore/internal/database"
	"petstore/internal/handlers"
	"petstore/internal/middleware"
	"petstore/internal/models"
	"petstore/internal/recommend"
	"petstore/internal/repositories"
	"petstore/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGenerator answers every prompt with a fixed response.
type fakeGenerator struct {
	response string
	err      error
}

func (g *fakeGenerator) Generate(ctx context.Context, systemInstructions []string, prompt string) (string, error) {
	return g.response, g.err
}

type testApp struct {
	app  *fiber.App
	repo repositories.ProductRepository
}

// setupApp builds a Fiber app backed by an in-memory SQLite database.
// A nil generator leaves recommendations disabled.
func setupApp(t *testing.T, generator recommend.Generator) *testApp {
	t.Helper()

	db, err := database.Open(config.DriverSQLite, "file::memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	logger := zap.NewNop()
	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, nil, logger)
	selector := services.NewCandidateSelector(productRepo)

	recommender := recommend.NewRecommender(selector, generator, logger)

	app := fiber.New()
	app.Use(middleware.RequestTimeout(5 * time.Second))

	handlers.NewHealthHandler(productRepo, false, recommender.Enabled()).RegisterRoutes(app)
	apiV1 := app.Group("/api/v1")
	handlers.NewProductHandler(productService, selector, logger).RegisterRoutes(apiV1)
	handlers.NewRecommendationHandler(recommender, logger).RegisterRoutes(apiV1)

	return &testApp{app: app, repo: productRepo}
}

func (ta *testApp) seed(t *testing.T, products ...models.Product) []models.Product {
	t.Helper()
	for i := range products {
		require.NoError(t, ta.repo.Create(context.Background(), &products[i]))
	}
	return products
}

func (ta *testApp) do(t *testing.T, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ta.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func kibble() models.Product {
	return models.Product{Name: "Kibble", Description: "Dry food for adult dogs", Quantity: 5, Price: 9.99, Active: true}
}

func TestHealth(t *testing.T) {
	ta := setupApp(t, nil)

	resp, body := ta.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["database_status"])
}

func TestProductCreateAndGet(t *testing.T) {
	ta := setupApp(t, nil)

	resp, created := ta.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":        "Kibble",
		"description": "Dry food for adult dogs",
		"quantity":    5,
		"price":       9.99,
		"active":      true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Kibble", created["name"])
	id := int64(created["id"].(float64))
	assert.NotZero(t, id)

	resp, got := ta.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, got)

	resp, _ = ta.do(t, http.MethodGet, "/api/v1/products/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductCreateValidation(t *testing.T) {
	ta := setupApp(t, nil)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing name", map[string]interface{}{"quantity": 1, "price": 1.0, "active": true}},
		{"missing quantity", map[string]interface{}{"name": "Kibble", "price": 1.0, "active": true}},
		{"negative quantity", map[string]interface{}{"name": "Kibble", "quantity": -1, "price": 1.0, "active": true}},
		{"zero price", map[string]interface{}{"name": "Kibble", "quantity": 1, "price": 0, "active": true}},
		{"missing active", map[string]interface{}{"name": "Kibble", "quantity": 1, "price": 1.0}},
		{"malformed json", `{"name": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := ta.do(t, http.MethodPost, "/api/v1/products", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	products, err := ta.repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductListOrderedByID(t *testing.T) {
	ta := setupApp(t, nil)
	seeded := ta.seed(t, kibble(), models.Product{Name: "Catnip", Quantity: 0, Price: 3.5, Active: false})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Equal(t, seeded, products)
}

func TestProductUpdateIsPartial(t *testing.T) {
	ta := setupApp(t, nil)
	p := ta.seed(t, kibble())[0]
	path := fmt.Sprintf("/api/v1/products/%d", p.ID)

	resp, body := ta.do(t, http.MethodPut, path, map[string]interface{}{"price": 12.5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 12.5, body["price"])
	assert.Equal(t, "Kibble", body["name"])
	assert.Equal(t, float64(5), body["quantity"])
	assert.Equal(t, true, body["active"])

	resp, body = ta.do(t, http.MethodPut, path, `{"price": null}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["errors"], "price")

	resp, _ = ta.do(t, http.MethodPut, path, map[string]interface{}{"quantity": -3})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ta.do(t, http.MethodPut, "/api/v1/products/9999", map[string]interface{}{"price": 1.0})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	current, err := ta.repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.5, current.Price)
	assert.Equal(t, 5, current.Quantity)
}

func TestProductDeactivate(t *testing.T) {
	ta := setupApp(t, nil)
	p := ta.seed(t, kibble())[0]
	path := fmt.Sprintf("/api/v1/products/%d", p.ID)

	for i := 0; i < 2; i++ {
		resp, _ := ta.do(t, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	resp, body := ta.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["active"])

	resp, _ = ta.do(t, http.MethodDelete, "/api/v1/products/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductSell(t *testing.T) {
	ta := setupApp(t, nil)
	p := ta.seed(t, kibble())[0]
	sellPath := fmt.Sprintf("/api/v1/products/%d/sell", p.ID)

	resp, body := ta.do(t, http.MethodPost, sellPath, models.SellRequest{Quantity: 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["quantity"])

	resp, body = ta.do(t, http.MethodPost, sellPath, models.SellRequest{Quantity: 3})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, float64(2), body["available"])

	resp, _ = ta.do(t, http.MethodPost, sellPath, models.SellRequest{Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ta.do(t, http.MethodPost, "/api/v1/products/9999/sell", models.SellRequest{Quantity: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ta.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", p.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = ta.do(t, http.MethodPost, sellPath, models.SellRequest{Quantity: 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Nil(t, body["available"])

	current, err := ta.repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, current.Quantity)
}

func TestProductSellConcurrent(t *testing.T) {
	ta := setupApp(t, nil)
	p := kibble()
	p.Quantity = 10
	p = ta.seed(t, p)[0]
	sellPath := fmt.Sprintf("/api/v1/products/%d/sell", p.ID)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[int]int{}
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, sellPath, bytes.NewBufferString(`{"quantity": 1}`))
			req.Header.Set("Content-Type", "application/json")
			resp, err := ta.app.Test(req, -1)
			if err != nil {
				return
			}
			resp.Body.Close()
			mu.Lock()
			statuses[resp.StatusCode]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, statuses[http.StatusOK])
	assert.Equal(t, 10, statuses[http.StatusConflict])

	current, err := ta.repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, current.Quantity)
}

func TestProductRestock(t *testing.T) {
	ta := setupApp(t, nil)
	p := ta.seed(t, kibble())[0]
	path := fmt.Sprintf("/api/v1/products/%d/stock", p.ID)

	resp, body := ta.do(t, http.MethodPut, path, map[string]interface{}{"quantity": 40})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(40), body["quantity"])

	resp, _ = ta.do(t, http.MethodPut, path, map[string]interface{}{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ta.do(t, http.MethodPut, path, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInvalidProductID(t *testing.T) {
	ta := setupApp(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/products/abc"},
		{http.MethodPut, "/api/v1/products/abc"},
		{http.MethodDelete, "/api/v1/products/abc"},
		{http.MethodPost, "/api/v1/products/abc/sell"},
		{http.MethodPut, "/api/v1/products/abc/stock"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp, body := ta.do(t, tc.method, tc.path, map[string]interface{}{"quantity": 1})
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Product ID must be a non-negative integer", body["message"])
		})
	}
}

func TestCandidates(t *testing.T) {
	ta := setupApp(t, nil)

	resp, _ := ta.do(t, http.MethodGet, "/api/v1/products/candidates", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	seeded := ta.seed(t,
		kibble(),
		models.Product{Name: "Empty", Quantity: 0, Price: 1, Active: true},
		models.Product{Name: "Retired", Quantity: 4, Price: 1, Active: false},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/candidates", nil)
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	require.Len(t, products, 1)
	assert.Equal(t, seeded[0].ID, products[0].ID)
}

func TestRecommendation(t *testing.T) {
	description := map[string]string{"description": "a twelve year old labrador with stiff joints"}

	t.Run("disabled", func(t *testing.T) {
		ta := setupApp(t, nil)
		resp, _ := ta.do(t, http.MethodPost, "/api/v1/recommendation", description)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("empty description", func(t *testing.T) {
		ta := setupApp(t, &fakeGenerator{})
		resp, _ := ta.do(t, http.MethodPost, "/api/v1/recommendation", map[string]string{"description": ""})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("picks a candidate", func(t *testing.T) {
		generator := &fakeGenerator{}
		ta := setupApp(t, generator)
		p := ta.seed(t, kibble())[0]
		generator.response = fmt.Sprintf(`{"product_id": %d, "name": "whatever", "reason": "gentle on old joints"}`, p.ID)

		resp, body := ta.do(t, http.MethodPost, "/api/v1/recommendation", description)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(p.ID), body["product_id"])
		assert.Equal(t, "Kibble", body["name"])
		assert.Equal(t, "gentle on old joints", body["reason"])
	})

	t.Run("no candidates", func(t *testing.T) {
		ta := setupApp(t, &fakeGenerator{response: `{}`})
		resp, _ := ta.do(t, http.MethodPost, "/api/v1/recommendation", description)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("generator failure", func(t *testing.T) {
		ta := setupApp(t, &fakeGenerator{err: errors.New("upstream 503")})
		ta.seed(t, kibble())
		resp, body := ta.do(t, http.MethodPost, "/api/v1/recommendation", description)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Contains(t, body["recommendation_error"], "upstream 503")
	})

	t.Run("unknown product", func(t *testing.T) {
		ta := setupApp(t, &fakeGenerator{response: `{"product_id": 9999, "name": "Ghost", "reason": "none"}`})
		ta.seed(t, kibble())
		resp, _ := ta.do(t, http.MethodPost, "/api/v1/recommendation", description)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}
