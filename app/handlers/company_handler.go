// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/fieldserve/estimator/app/dto"
	businessflow "github.com/fieldserve/estimator/business_flow"
	"github.com/fieldserve/estimator/utils"
	"github.com/gofiber/fiber/v3"
)

// CompanyHandlerInterface defines the contract for company dashboard handlers.
type CompanyHandlerInterface interface {
	TechCost(c fiber.Ctx) error
	RequiredRevenue(c fiber.Ctx) error
}

// CompanyHandler handles company capacity and revenue requests.
type CompanyHandler struct {
	flow businessflow.TechCostFlow
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(flow businessflow.TechCostFlow) *CompanyHandler {
	return &CompanyHandler{
		flow: flow,
	}
}

func (h *CompanyHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CompanyHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// TechCost returns the capacity and cost breakdown for a company.
// @Summary Tech cost breakdown
// @Description Compute overhead, capacity, and loaded labor rate for a company under one job type
// @Tags Companies
// @Produce json
// @Param uuid path string true "Company settings UUID"
// @Param job_type_id query int false "Job type ID, default job type when omitted"
// @Success 200 {object} dto.APIResponse{data=dto.TechCostResponse} "Computed"
// @Failure 404 {object} dto.APIResponse "Company not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/companies/{uuid}/tech-cost [get]
func (h *CompanyHandler) TechCost(c fiber.Ctx) error {
	companyUUID := c.Params("uuid")
	if companyUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Company UUID is required", "MISSING_UUID", nil)
	}

	jobTypeID, err := parseJobTypeID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job_type_id", "INVALID_JOB_TYPE_ID", err.Error())
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.TechCost(h.createRequestContext(c, "/api/v1/companies/:uuid/tech-cost"), companyUUID, jobTypeID, metadata)
	if err != nil {
		return h.techCostError(c, err, "Failed to compute tech cost", "TECH_COST_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// RequiredRevenue returns the required revenue targets for a company.
// @Summary Required revenue
// @Description Compute the hourly and monthly revenue targets for a company under one job type
// @Tags Companies
// @Produce json
// @Param uuid path string true "Company settings UUID"
// @Param job_type_id query int false "Job type ID, default job type when omitted"
// @Success 200 {object} dto.APIResponse{data=dto.RequiredRevenueResponse} "Computed"
// @Failure 404 {object} dto.APIResponse "Company not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/companies/{uuid}/required-revenue [get]
func (h *CompanyHandler) RequiredRevenue(c fiber.Ctx) error {
	companyUUID := c.Params("uuid")
	if companyUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Company UUID is required", "MISSING_UUID", nil)
	}

	jobTypeID, err := parseJobTypeID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job_type_id", "INVALID_JOB_TYPE_ID", err.Error())
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.RequiredRevenue(h.createRequestContext(c, "/api/v1/companies/:uuid/required-revenue"), companyUUID, jobTypeID, metadata)
	if err != nil {
		return h.techCostError(c, err, "Failed to compute required revenue", "REQUIRED_REVENUE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

func (h *CompanyHandler) techCostError(c fiber.Ctx, err error, message, fallbackCode string) error {
	if be, ok := err.(*businessflow.BusinessError); ok {
		switch be.Code {
		case "SETTINGS_NOT_FOUND", "JOB_TYPE_NOT_FOUND":
			return h.ErrorResponse(c, fiber.StatusNotFound, be.Message, be.Code, be.Error())
		case "JOB_TYPE_DISABLED", "NO_DEFAULT_JOB_TYPE":
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, be.Message, be.Code, be.Error())
		}
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, message, fallbackCode, nil)
}

func parseJobTypeID(c fiber.Ctx) (*uint, error) {
	raw := c.Query("job_type_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, err
	}
	v := uint(id)
	return &v, nil
}

func (h *CompanyHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *CompanyHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
