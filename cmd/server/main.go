package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/napolitain/bag-optimizer/internal/converter"
	"github.com/napolitain/bag-optimizer/internal/loader"
	"github.com/napolitain/bag-optimizer/internal/models"
	"github.com/napolitain/bag-optimizer/internal/solver/optimizer"
)

var (
	port       = flag.Int("port", 8080, "The server port")
	dataDir    = flag.String("data", "data", "Path to data directory")
	configFile = flag.String("config", "", "Path to YAML config file")
)

// planServer plans inventories posted by bots
type planServer struct {
	cfg    *models.Config
	dex    *models.Pokedex
	logger *slog.Logger
}

func (s *planServer) registerRoutes(h *server.Hertz) {
	h.GET("/healthz", s.healthz)
	h.POST("/api/optimizer/plan", s.plan)
}

func (s *planServer) healthz(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

// plan optimizes the inventory snapshot in the request body
func (s *planServer) plan(c context.Context, ctx *app.RequestContext) {
	inv, err := loader.ParseInventory(ctx.Request.Body(), s.dex)
	if err != nil {
		code := "invalid_inventory"
		if errors.Is(err, models.ErrUnknownSpecies) {
			code = "unknown_species"
		}
		writeError(ctx, consts.StatusBadRequest, code, err.Error())
		return
	}

	plan, err := optimizer.New(s.cfg, s.dex, s.logger).Optimize(inv)
	if err != nil {
		s.logger.Error("Optimization failed", "error", err)
		writeError(ctx, consts.StatusInternalServerError, "optimize_failed", err.Error())
		return
	}

	dto, err := converter.PlanToDTO(plan)
	if err != nil {
		writeError(ctx, consts.StatusInternalServerError, "optimize_failed", err.Error())
		return
	}

	s.logger.Info("Planned inventory",
		"pokemon", len(inv.Creatures),
		"transfers", len(dto.Transfers),
		"evolutions", len(dto.Evolutions),
		"upgrades", len(dto.Upgrades))
	ctx.JSON(consts.StatusOK, dto)
}

func writeError(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, converter.NewError(code, message))
}

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := models.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = models.LoadConfig(*configFile)
		if err != nil {
			logger.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
	}

	dex, err := loader.LoadPokedex(*dataDir)
	if err != nil {
		logger.Error("Failed to load pokedex", "error", err)
		os.Exit(1)
	}
	logger.Info("Loaded pokedex", "species", len(dex.SpeciesIDs()))

	h := server.Default(server.WithHostPorts(fmt.Sprintf(":%d", *port)))
	(&planServer{cfg: cfg, dex: dex, logger: logger}).registerRoutes(h)

	logger.Info("HTTP server listening", "port", *port)
	h.Spin()
}
