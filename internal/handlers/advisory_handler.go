package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"advisory-service/internal/dataset"
	"advisory-service/internal/models"
	"advisory-service/internal/services"
)

type AdvisoryHandler struct {
	predictor       *services.PredictorService
	strategyService *services.StrategyService
	store           *dataset.Store
}

func NewAdvisoryHandler(predictor *services.PredictorService, strategyService *services.StrategyService, store *dataset.Store) *AdvisoryHandler {
	return &AdvisoryHandler{
		predictor:       predictor,
		strategyService: strategyService,
		store:           store,
	}
}

func (h *AdvisoryHandler) RegisterRoutes(app *fiber.App) {
	publicGr := app.Group("advisory/public/api/v1")

	publicGr.Post("/predict", h.PredictCrops)
	publicGr.Post("/confidence", h.ConfidenceScore)
	publicGr.Post("/confidence/validate", h.ValidateConfidence)
	publicGr.Post("/strategies", h.GenerateStrategies)
	publicGr.Post("/success-rate", h.HistoricalSuccessRate)
	publicGr.Get("/fertilizers", h.FertilizerRecommendations)
	publicGr.Get("/dataset/status", h.DatasetStatus)
}

func (h *AdvisoryHandler) PredictCrops(c fiber.Ctx) error {
	var profile models.VillageProfile
	if err := c.Bind().Body(&profile); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	recommendations, err := h.predictor.PredictOptimalCrops(profile)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientData) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"village":         profile.Village,
		"recommendations": recommendations,
	})
}

func (h *AdvisoryHandler) ConfidenceScore(c fiber.Ctx) error {
	var profile models.VillageProfile
	if err := c.Bind().Body(&profile); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	confidence, err := h.predictor.CalculateConfidenceScore(profile)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientData) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"confidence": confidence})
}

func (h *AdvisoryHandler) ValidateConfidence(c fiber.Ctx) error {
	var profile models.VillageProfile
	if err := c.Bind().Body(&profile); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	report, err := h.predictor.ValidatePredictionConfidence(profile)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientData) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(report)
}

func (h *AdvisoryHandler) GenerateStrategies(c fiber.Ctx) error {
	var profile models.VillageProfile
	if err := c.Bind().Body(&profile); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	plan, err := h.strategyService.GenerateInvestmentPlan(c.Context(), profile)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientData) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(plan)
}

type successRateRequest struct {
	Strategy models.InvestmentStrategy `json:"strategy"`
	Profile  models.VillageProfile     `json:"profile"`
}

func (h *AdvisoryHandler) HistoricalSuccessRate(c fiber.Ctx) error {
	var req successRateRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if len(req.Strategy.Crops) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "strategy.crops is required")
	}

	rate := h.predictor.GetHistoricalSuccessRate(req.Strategy, req.Profile)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success_rate": rate})
}

func (h *AdvisoryHandler) FertilizerRecommendations(c fiber.Ctx) error {
	crop := c.Query("crop")
	soil := c.Query("soil")
	if crop == "" {
		return fiber.NewError(fiber.StatusBadRequest, "crop query parameter is required")
	}

	fertilizers := h.predictor.GetFertilizerRecommendations(crop, soil)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"fertilizers": fertilizers})
}

func (h *AdvisoryHandler) DatasetStatus(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"loaded": h.store.Loaded(),
		"counts": h.store.Counts(),
	})
}
