// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"time"

	"github.com/fieldserve/estimator/app/dto"
	businessflow "github.com/fieldserve/estimator/business_flow"
	"github.com/fieldserve/estimator/utils"
	"github.com/gofiber/fiber/v3"
)

// JobTypeHandlerInterface defines the contract for job type handlers.
type JobTypeHandlerInterface interface {
	List(c fiber.Ctx) error
	SetDefault(c fiber.Ctx) error
}

// JobTypeHandler handles job type requests.
type JobTypeHandler struct {
	flow businessflow.JobTypeFlow
}

// NewJobTypeHandler creates a new job type handler.
func NewJobTypeHandler(flow businessflow.JobTypeFlow) *JobTypeHandler {
	return &JobTypeHandler{
		flow: flow,
	}
}

func (h *JobTypeHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *JobTypeHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// List lists a company's job types.
// @Summary List job types
// @Description List every job type configured for a company
// @Tags Job Types
// @Produce json
// @Param uuid path string true "Company settings UUID"
// @Success 200 {object} dto.APIResponse{data=dto.ListJobTypesResponse} "Retrieved"
// @Failure 404 {object} dto.APIResponse "Company not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/companies/{uuid}/job-types [get]
func (h *JobTypeHandler) List(c fiber.Ctx) error {
	companyUUID := c.Params("uuid")
	if companyUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Company UUID is required", "MISSING_UUID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.ListJobTypes(h.createRequestContext(c, "/api/v1/companies/:uuid/job-types"), companyUUID, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			if be.Code == "SETTINGS_NOT_FOUND" {
				return h.ErrorResponse(c, fiber.StatusNotFound, "Company not found", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list job types", "JOB_TYPES_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Job types retrieved", res)
}

// SetDefault flags a job type as the company default.
// @Summary Set default job type
// @Description Make one job type the company default, clearing the flag on all others
// @Tags Job Types
// @Produce json
// @Param uuid path string true "Job type UUID"
// @Success 200 {object} dto.APIResponse{data=dto.SetDefaultJobTypeResponse} "Updated"
// @Failure 404 {object} dto.APIResponse "Job type not found"
// @Failure 422 {object} dto.APIResponse "Job type disabled"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/job-types/{uuid}/default [put]
func (h *JobTypeHandler) SetDefault(c fiber.Ctx) error {
	jobTypeUUID := c.Params("uuid")
	if jobTypeUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Job type UUID is required", "MISSING_UUID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.SetDefaultJobType(h.createRequestContext(c, "/api/v1/job-types/:uuid/default"), jobTypeUUID, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "JOB_TYPE_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, "Job type not found", be.Code, be.Error())
			case "JOB_TYPE_DISABLED":
				return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Job type is disabled", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to set default job type", "SET_DEFAULT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Default job type updated", res)
}

func (h *JobTypeHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *JobTypeHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
