package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-armando18/cart-pricing/internal/config"
	"github.com/Victor-armando18/cart-pricing/pkg/engine"
)

const testPack = `{"version":"v1.0","conditions":[
	{"name":"Discount","type":"discount","target":"cart@cart_subtotal/aggregate","value":"-10%","order":1},
	{"name":"Tax","type":"tax","target":"cart@cart_subtotal/aggregate","value":"8%","order":2}
]}`

func testServer(t *testing.T) *echo.Echo {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v1.0_conditions.json"), []byte(testPack), 0o644))

	cfg := config.Default()
	cfg.RulesDir = dir
	return newServer(engine.NewService(cfg, engine.WithLogger(zerolog.Nop())))
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const cartBody = `{"cart":{"id":"cart-1","items":[{"sku":"A","price":50,"quantity":2}]}}`

func TestPrice(t *testing.T) {
	rec := do(testServer(t), http.MethodPost, "/carts/price", cartBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Total  float64 `json:"total"`
		Ledger struct {
			Phases map[string]struct {
				FinalAmount float64 `json:"final_amount"`
			} `json:"phases"`
		} `json:"ledger"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.InDelta(t, 97.2, res.Total, 1e-9)
	assert.Len(t, res.Ledger.Phases, 10)
	assert.InDelta(t, 97.2, res.Ledger.Phases["cart_subtotal"].FinalAmount, 1e-9)
}

func TestPrice_Errors(t *testing.T) {
	e := testServer(t)

	rec := do(e, http.MethodPost, "/carts/price", `{"cart":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/carts/price", `{"cart":{"id":"c"},"pack_version":"v7"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/carts/price", `{"cart":{"id":"c"},"conditions":[{"name":"x","target":"subtotal","value":"1"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReprice(t *testing.T) {
	body := `{"request":` + cartBody + `,"patch":[{"op":"replace","path":"/items/0/quantity","value":4}]}`
	rec := do(testServer(t), http.MethodPatch, "/carts/price", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		ServerDelta bool           `json:"server_delta"`
		MergePatch  map[string]any `json:"merge_patch"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.ServerDelta)
	assert.InDelta(t, 194.4, res.MergePatch["total"], 1e-9)

	bad := `{"request":` + cartBody + `,"patch":[{"op":"remove","path":"/nope"}]}`
	rec = do(testServer(t), http.MethodPatch, "/carts/price", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestParseTarget(t *testing.T) {
	e := testServer(t)

	rec := do(e, http.MethodGet, "/targets/parse?dsl="+url.QueryEscape("ITEMS:sku=ABC@Item_Discount/Per-Item"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		DSL    string         `json:"dsl"`
		Target map[string]any `json:"target"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "items:sku=ABC@item_discount/per-item", res.DSL)
	assert.Equal(t, "items", res.Target["scope"])

	rec = do(e, http.MethodGet, "/targets/parse?dsl=subtotal", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartConditions(t *testing.T) {
	e := testServer(t)

	rec := do(e, http.MethodPut, "/carts/cart-1/conditions",
		`[{"name":"Shipping","type":"shipping","target":"cart@shipping/aggregate","value":"+5"}]`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/carts/cart-1/conditions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"target":"cart@shipping/aggregate"`)

	rec = do(e, http.MethodPost, "/carts/price", cartBody)
	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.InDelta(t, 102.2, res.Total, 1e-9)

	rec = do(e, http.MethodDelete, "/carts/cart-1/conditions", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(e, http.MethodGet, "/carts/cart-1/conditions", "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(e, http.MethodPut, "/carts/cart-1/conditions", `[{"name":"bad","target":"cart@tax/aggregate","value":"ten"}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsAndHealth(t *testing.T) {
	e := testServer(t)
	do(e, http.MethodPost, "/carts/price", cartBody)

	rec := do(e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cart_pricing_runs_total{outcome="ok"} 1`)

	rec = do(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/packs", "")
	assert.JSONEq(t, `{"versions":["v1.0"]}`, rec.Body.String())
}
