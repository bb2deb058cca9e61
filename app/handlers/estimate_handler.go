// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"time"

	"github.com/fieldserve/estimator/app/dto"
	"github.com/fieldserve/estimator/app/middleware"
	businessflow "github.com/fieldserve/estimator/business_flow"
	"github.com/fieldserve/estimator/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// EstimateHandlerInterface defines the contract for estimate pricing handlers.
type EstimateHandlerInterface interface {
	Price(c fiber.Ctx) error
	ApplyRules(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// EstimateHandler handles estimate pricing requests.
type EstimateHandler struct {
	pricingFlow businessflow.EstimatePricingFlow
	exportFlow  businessflow.EstimateExportFlow
	validator   *validator.Validate
}

// NewEstimateHandler creates a new estimate handler.
func NewEstimateHandler(pricingFlow businessflow.EstimatePricingFlow, exportFlow businessflow.EstimateExportFlow) *EstimateHandler {
	return &EstimateHandler{
		pricingFlow: pricingFlow,
		exportFlow:  exportFlow,
		validator:   validator.New(),
	}
}

func (h *EstimateHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *EstimateHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Price prices one option of an estimate.
// @Summary Price an estimate option
// @Description Compute material, labor, discount, and fee pricing for an estimate option
// @Tags Estimates
// @Accept json
// @Produce json
// @Param uuid path string true "Estimate UUID"
// @Param request body dto.PriceEstimateRequest false "Option selection"
// @Success 200 {object} dto.APIResponse{data=dto.PriceEstimateResponse} "Priced"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Estimate not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/estimates/{uuid}/price [post]
func (h *EstimateHandler) Price(c fiber.Ctx) error {
	estimateUUID := c.Params("uuid")
	if estimateUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Estimate UUID is required", "MISSING_UUID", nil)
	}

	var req dto.PriceEstimateRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
		if err := h.validator.Struct(&req); err != nil {
			var validationErrors []string
			for _, e := range err.(validator.ValidationErrors) {
				validationErrors = append(validationErrors, getValidationErrorMessage(e))
			}
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
		}
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	start := time.Now()
	res, err := h.pricingFlow.PriceEstimate(h.createRequestContext(c, "/api/v1/estimates/:uuid/price"), estimateUUID, &req, metadata)
	if err != nil {
		middleware.RecordPricingPass("estimate", "error", time.Since(start))
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "ESTIMATE_NOT_FOUND", "OPTION_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, "Estimate not found", be.Code, be.Error())
			case "NO_ACTIVE_OPTION", "NO_JOB_TYPE", "SETTINGS_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Estimate cannot be priced", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to price estimate", "ESTIMATE_PRICE_FAILED", nil)
	}
	middleware.RecordPricingPass("estimate", "ok", time.Since(start))

	return h.SuccessResponse(c, fiber.StatusOK, "Estimate priced successfully", res)
}

// ApplyRules runs the admin rule pass over an estimate's active option.
// @Summary Apply admin rules to an estimate
// @Description Evaluate admin job type rules against the estimate's expected metrics and lock the matched job type
// @Tags Estimates
// @Produce json
// @Param uuid path string true "Estimate UUID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplyAdminRulesResponse} "Evaluated"
// @Failure 404 {object} dto.APIResponse "Estimate not found"
// @Failure 409 {object} dto.APIResponse "Estimate not editable"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/estimates/{uuid}/apply-rules [post]
func (h *EstimateHandler) ApplyRules(c fiber.Ctx) error {
	estimateUUID := c.Params("uuid")
	if estimateUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Estimate UUID is required", "MISSING_UUID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	start := time.Now()
	res, err := h.pricingFlow.ApplyAdminRules(h.createRequestContext(c, "/api/v1/estimates/:uuid/apply-rules"), estimateUUID, metadata)
	if err != nil {
		middleware.RecordPricingPass("estimate", "error", time.Since(start))
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "ESTIMATE_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, "Estimate not found", be.Code, be.Error())
			case "ESTIMATE_NOT_EDITABLE":
				return h.ErrorResponse(c, fiber.StatusConflict, "Estimate is not editable", be.Code, be.Error())
			case "NO_ACTIVE_OPTION", "NO_JOB_TYPE", "SETTINGS_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Estimate cannot be evaluated", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to apply admin rules", "APPLY_RULES_FAILED", nil)
	}
	middleware.RecordPricingPass("estimate", "ok", time.Since(start))

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// Export downloads the estimate as an Excel workbook.
// @Summary Export an estimate to Excel
// @Description Download an Excel workbook with one priced sheet per option
// @Tags Estimates
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param uuid path string true "Estimate UUID"
// @Success 200 {file} binary "Workbook"
// @Failure 404 {object} dto.APIResponse "Estimate not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/estimates/{uuid}/export [get]
func (h *EstimateHandler) Export(c fiber.Ctx) error {
	estimateUUID := c.Params("uuid")
	if estimateUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Estimate UUID is required", "MISSING_UUID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	filename, data, err := h.exportFlow.ExportEstimate(h.createRequestContext(c, "/api/v1/estimates/:uuid/export"), estimateUUID, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			if be.Code == "ESTIMATE_NOT_FOUND" {
				return h.ErrorResponse(c, fiber.StatusNotFound, "Estimate not found", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export estimate", "ESTIMATE_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	return c.Send(data)
}

func (h *EstimateHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *EstimateHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
