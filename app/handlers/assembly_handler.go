// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"time"

	"github.com/fieldserve/estimator/app/dto"
	"github.com/fieldserve/estimator/app/middleware"
	businessflow "github.com/fieldserve/estimator/business_flow"
	"github.com/fieldserve/estimator/utils"
	"github.com/gofiber/fiber/v3"
)

// AssemblyHandlerInterface defines the contract for assembly pricing handlers.
type AssemblyHandlerInterface interface {
	Price(c fiber.Ctx) error
	ApplyRules(c fiber.Ctx) error
}

// AssemblyHandler handles assembly pricing requests.
type AssemblyHandler struct {
	flow businessflow.AssemblyPricingFlow
}

// NewAssemblyHandler creates a new assembly handler.
func NewAssemblyHandler(flow businessflow.AssemblyPricingFlow) *AssemblyHandler {
	return &AssemblyHandler{
		flow: flow,
	}
}

func (h *AssemblyHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AssemblyHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Price prices an assembly.
// @Summary Price an assembly
// @Description Compute material and labor pricing for one assembly
// @Tags Assemblies
// @Produce json
// @Param uuid path string true "Assembly UUID"
// @Success 200 {object} dto.APIResponse{data=dto.PriceAssemblyResponse} "Priced"
// @Failure 404 {object} dto.APIResponse "Assembly not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/assemblies/{uuid}/price [post]
func (h *AssemblyHandler) Price(c fiber.Ctx) error {
	assemblyUUID := c.Params("uuid")
	if assemblyUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Assembly UUID is required", "MISSING_UUID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	start := time.Now()
	res, err := h.flow.PriceAssembly(h.createRequestContext(c, "/api/v1/assemblies/:uuid/price"), assemblyUUID, metadata)
	if err != nil {
		middleware.RecordPricingPass("assembly", "error", time.Since(start))
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "ASSEMBLY_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, "Assembly not found", be.Code, be.Error())
			case "NO_JOB_TYPE", "SETTINGS_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Assembly cannot be priced", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to price assembly", "ASSEMBLY_PRICE_FAILED", nil)
	}
	middleware.RecordPricingPass("assembly", "ok", time.Since(start))

	return h.SuccessResponse(c, fiber.StatusOK, "Assembly priced successfully", res)
}

// ApplyRules runs the admin rule pass over an assembly.
// @Summary Apply admin rules to an assembly
// @Description Evaluate admin job type rules against the assembly's expected metrics and lock the matched job type
// @Tags Assemblies
// @Produce json
// @Param uuid path string true "Assembly UUID"
// @Success 200 {object} dto.APIResponse{data=dto.PriceAssemblyResponse} "Evaluated"
// @Failure 404 {object} dto.APIResponse "Assembly not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/assemblies/{uuid}/apply-rules [post]
func (h *AssemblyHandler) ApplyRules(c fiber.Ctx) error {
	assemblyUUID := c.Params("uuid")
	if assemblyUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Assembly UUID is required", "MISSING_UUID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	start := time.Now()
	res, err := h.flow.ApplyAdminRules(h.createRequestContext(c, "/api/v1/assemblies/:uuid/apply-rules"), assemblyUUID, metadata)
	if err != nil {
		middleware.RecordPricingPass("assembly", "error", time.Since(start))
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "ASSEMBLY_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, "Assembly not found", be.Code, be.Error())
			case "NO_JOB_TYPE", "SETTINGS_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Assembly cannot be evaluated", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to apply admin rules", "APPLY_RULES_FAILED", nil)
	}
	middleware.RecordPricingPass("assembly", "ok", time.Since(start))

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

func (h *AssemblyHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *AssemblyHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
