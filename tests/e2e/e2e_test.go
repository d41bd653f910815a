//go:build integration

package e2e

// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// These tests:
//   T-E2E-1: Apply price → margin reclassified + immutable audit row
//   T-E2E-2: Bulk adjustment with partial success
//   T-E2E-3: Pending update approve is exactly-once (second approve → 409)
//   T-E2E-4: Public price check reflects ledger writes (cache invalidation)
//   T-E2E-5: Margin risk worklist splits urgent SKUs

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/config"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/infra"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/middleware"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/router"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/worker"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key"

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// mintToken issues a short-lived JWT the way the upstream identity service
// would. The engine only validates tokens, it never issues them.
func mintToken(t *testing.T, username, role string) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID:   "00000000-0000-0000-0000-000000000001",
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server     *httptest.Server
	db         *gorm.DB
	adminToken string
	merchToken string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	// Start Postgres container
	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("pricing_test"),
		tcPostgres.WithUsername("pricing"),
		tcPostgres.WithPassword("pricing"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Start Redis container
	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                8000,
		Env:                 "test",
		WorkerPoolSize:      1,
		DatabaseURL:         pgURL,
		RedisURL:            rdURL,
		JWTSecret:           testSecret,
		JWTExpirationHours:  8,
		CompetitorFeedURL:   "http://localhost:9999", // unused in e2e tests
		RiskCacheTTLMinutes: 1,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	feedCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)

	r := router.New(cfg, db, rdb, feedCB, dispatcher)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{
		server:     srv,
		db:         db,
		adminToken: mintToken(t, "admin@e2e.test", middleware.RoleAdmin),
		merchToken: mintToken(t, "merch@e2e.test", middleware.RoleMerchandiser),
	}
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// seedSku inserts a catalog row directly — onboarding is out of the engine's
// surface, so tests write the table the way the catalog service would.
func seedSku(t *testing.T, db *gorm.DB, code, cost, selling string) *model.Sku {
	t.Helper()
	costD := mustDec(cost)
	sellingD := mustDec(selling)
	margin := sellingD.Sub(costD).Div(sellingD).Mul(mustDec("100")).Round(2)
	status := model.MarginHealthy
	switch {
	case margin.LessThan(mustDec("10")):
		status = model.MarginCritical
	case margin.LessThan(mustDec("15")):
		status = model.MarginWarning
	}
	sku := &model.Sku{
		Code:         code,
		Name:         "E2E " + code,
		Category:     "grains",
		Cost:         costD,
		BasePrice:    sellingD,
		SellingPrice: sellingD,
		MarginPct:    margin,
		MarginStatus: status,
		Active:       true,
	}
	require.NoError(t, db.Create(sku).Error)
	return sku
}

// ── Tests ────────────────────────────────────────────────────────────────────

// T-E2E-1: Apply price recomputes margin and records the audit row
func TestE2E_ApplyPriceCycle(t *testing.T) {
	env := setupTestEnv(t)
	sku := seedSku(t, env.db, "E2E-0001", "10", "20")

	resp := do(t, env.server, "PATCH", "/v1/skus/"+sku.ID.String()+"/price",
		jsonBody(t, map[string]any{"selling_price": "11.11"}), env.merchToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated struct {
		SellingPrice string `json:"selling_price"`
		MarginPct    string `json:"margin_pct"`
		MarginStatus string `json:"margin_status"`
	}
	decodeJSON(t, resp, &updated)
	assert.Equal(t, "9.99", updated.MarginPct)
	assert.Equal(t, model.MarginCritical, updated.MarginStatus)

	// Immutable audit trail
	histResp := do(t, env.server, "GET", "/v1/skus/"+sku.ID.String()+"/price-changes", nil, env.merchToken)
	require.Equal(t, http.StatusOK, histResp.StatusCode)
	var hist struct {
		Data []struct {
			SellingBefore string `json:"selling_before"`
			SellingAfter  string `json:"selling_after"`
			Source        string `json:"source"`
		} `json:"data"`
		Total int64 `json:"total"`
	}
	decodeJSON(t, histResp, &hist)
	require.Equal(t, int64(1), hist.Total)
	assert.Equal(t, "20", hist.Data[0].SellingBefore)
	assert.Equal(t, "11.11", hist.Data[0].SellingAfter)
	assert.Equal(t, "manual", hist.Data[0].Source)
}

// T-E2E-2: Bulk adjustment skips invalid items and applies the rest
func TestE2E_BulkPartialSuccess(t *testing.T) {
	env := setupTestEnv(t)
	ok := seedSku(t, env.db, "E2E-0002", "10", "20")
	noCost := seedSku(t, env.db, "E2E-0003", "0", "20")
	require.NoError(t, env.db.Model(noCost).Update("margin_pct", decimal.Zero).Error)

	resp := do(t, env.server, "POST", "/v1/prices/bulk",
		jsonBody(t, map[string]any{
			"kind":              "target_margin",
			"target_margin_pct": "40",
			"sku_ids":           []string{ok.ID.String(), noCost.ID.String()},
		}), env.merchToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		Attempted int `json:"attempted"`
		Applied   int `json:"applied"`
		Skipped   []struct {
			SkuID  string `json:"sku_id"`
			Reason string `json:"reason"`
		} `json:"skipped"`
	}
	decodeJSON(t, resp, &result)
	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, noCost.ID.String(), result.Skipped[0].SkuID)

	var reloaded model.Sku
	require.NoError(t, env.db.First(&reloaded, "id = ?", ok.ID).Error)
	assert.Equal(t, "16.67", reloaded.SellingPrice.StringFixed(2))
}

// T-E2E-3: Approve is exactly-once
func TestE2E_ApproveExactlyOnce(t *testing.T) {
	env := setupTestEnv(t)
	sku := seedSku(t, env.db, "E2E-0004", "60", "100")

	propResp := do(t, env.server, "POST", "/v1/pending-updates",
		jsonBody(t, map[string]any{
			"sku_id":    sku.ID.String(),
			"new_price": "80",
			"source":    "manual",
		}), env.merchToken)
	require.Equal(t, http.StatusCreated, propResp.StatusCode)
	var pending struct {
		ID           string `json:"id"`
		MarginImpact string `json:"margin_impact"`
	}
	decodeJSON(t, propResp, &pending)
	assert.Equal(t, "-15.00", pending.MarginImpact)

	// Merchandisers cannot resolve
	forbidden := do(t, env.server, "POST", "/v1/pending-updates/"+pending.ID+"/approve", nil, env.merchToken)
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)

	first := do(t, env.server, "POST", "/v1/pending-updates/"+pending.ID+"/approve", nil, env.adminToken)
	require.Equal(t, http.StatusOK, first.StatusCode)

	second := do(t, env.server, "POST", "/v1/pending-updates/"+pending.ID+"/approve", nil, env.adminToken)
	assert.Equal(t, http.StatusConflict, second.StatusCode)

	// Exactly one ledger write through the approval
	var count int64
	require.NoError(t, env.db.Model(&model.PriceChange{}).Where("sku_id = ?", sku.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var reloaded model.Sku
	require.NoError(t, env.db.First(&reloaded, "id = ?", sku.ID).Error)
	assert.Equal(t, "80.00", reloaded.SellingPrice.StringFixed(2))
}

// T-E2E-4: Public price check tracks ledger writes
func TestE2E_PriceCheckCacheInvalidation(t *testing.T) {
	env := setupTestEnv(t)
	sku := seedSku(t, env.db, "E2E-0005", "10", "20")

	// First lookup populates the cache; no token required
	resp := do(t, env.server, "GET", "/v1/price-check/E2E-0005", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var check struct {
		SellingPrice string `json:"selling_price"`
	}
	decodeJSON(t, resp, &check)
	assert.Equal(t, "20", check.SellingPrice)

	// A ledger write must invalidate the cached price
	patch := do(t, env.server, "PATCH", "/v1/skus/"+sku.ID.String()+"/price",
		jsonBody(t, map[string]any{"selling_price": "18"}), env.merchToken)
	require.Equal(t, http.StatusOK, patch.StatusCode)

	resp = do(t, env.server, "GET", "/v1/price-check/E2E-0005", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &check)
	assert.Equal(t, "18", check.SellingPrice)
}

// T-E2E-5: Margin risk worklist
func TestE2E_MarginRisk(t *testing.T) {
	env := setupTestEnv(t)
	seedSku(t, env.db, "E2E-0006", "10", "20")  // healthy
	seedSku(t, env.db, "E2E-0007", "87", "100") // warning
	seedSku(t, env.db, "E2E-0008", "97", "100") // critical + urgent

	resp := do(t, env.server, "GET", "/v1/margin-risk", nil, env.merchToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var risk struct {
		Urgent []struct {
			Code string `json:"code"`
		} `json:"urgent"`
		Other []struct {
			Code string `json:"code"`
		} `json:"other"`
		Total int `json:"total"`
	}
	decodeJSON(t, resp, &risk)
	assert.Equal(t, 2, risk.Total)
	require.Len(t, risk.Urgent, 1)
	assert.Equal(t, "E2E-0008", risk.Urgent[0].Code)
	require.Len(t, risk.Other, 1)
	assert.Equal(t, "E2E-0007", risk.Other[0].Code)
}
