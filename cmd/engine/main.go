package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Victor-armando18/cart-pricing/internal/config"
	"github.com/Victor-armando18/cart-pricing/internal/domain"
	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
	"github.com/Victor-armando18/cart-pricing/pkg/engine"
)

type PatchRequest struct {
	Request domain.PricingRequest `json:"request"`
	Patch   []map[string]any      `json:"patch"`
}

func main() {
	cfg, err := config.Load(os.Getenv("CART_PRICING_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	svc := engine.NewService(cfg)
	defer svc.Close()

	e := newServer(svc)
	log.Info().Str("addr", cfg.Addr()).Str("rules_dir", cfg.RulesDir).Msg("cart pricing engine listening")
	if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newServer(svc *engine.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions, http.MethodGet},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
	}))

	e.POST("/carts/price", handlePrice(svc))
	e.PATCH("/carts/price", handleReprice(svc))
	e.GET("/targets/parse", handleParseTarget)
	e.GET("/packs", handleListPacks(svc))

	e.PUT("/carts/:id/conditions", handleSaveConditions(svc))
	e.GET("/carts/:id/conditions", handleLoadConditions(svc))
	e.DELETE("/carts/:id/conditions", handleDeleteConditions(svc))

	if h := svc.MetricsHandler(); h != nil {
		e.GET("/metrics", echo.WrapHandler(h))
	}
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return e
}

func handlePrice(svc *engine.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req domain.PricingRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid pricing request"})
		}
		result, err := svc.Price(c.Request().Context(), req)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

func handleReprice(svc *engine.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req PatchRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid patch request"})
		}
		patch, err := json.Marshal(req.Patch)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		result, err := svc.Reprice(c.Request().Context(), req.Request, patch)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

func handleParseTarget(c echo.Context) error {
	dsl := c.QueryParam("dsl")
	t, err := target.Parse(dsl)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"dsl":    t.DSL(),
		"target": t,
	})
}

func handleListPacks(svc *engine.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		versions, err := svc.PackVersions()
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{"versions": versions})
	}
}

func handleSaveConditions(svc *engine.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var defs []condition.Definition
		if err := c.Bind(&defs); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid condition list"})
		}
		if err := svc.Store().Save(c.Request().Context(), c.Param("id"), defs); err != nil {
			return errorJSON(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func handleLoadConditions(svc *engine.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		defs, err := svc.Store().Load(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorJSON(c, err)
		}
		conditions, err := condition.FromDefinitions(defs)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, conditions)
	}
}

func handleDeleteConditions(svc *engine.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := svc.Store().Delete(c.Request().Context(), c.Param("id")); err != nil {
			return errorJSON(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func errorJSON(c echo.Context, err error) error {
	return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrParse), errors.Is(err, domain.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPackNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidPatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
