package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"reelforge/api-gateway/models"
	"reelforge/api-gateway/utils"
)

// GetJobStatus retrieves the status of a pipeline job row.
// GET /api/v1/jobs/:jobId
func (h *ApplicationHandler) GetJobStatus(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid job ID format")
	}

	var jobRows []models.PipelineJob
	body, _, err := h.DB.From("pipeline_jobs").
		Select("*", "", false).
		Eq("id", jobID.String()).
		Limit(1, "").
		Execute()
	if err != nil {
		h.Logger.Errorf("Error fetching job %s: %v", jobID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Could not retrieve job status: %v", err))
	}

	if err := json.Unmarshal(body, &jobRows); err != nil {
		h.Logger.Errorf("Error unmarshalling job %s: %v. Body: %s", jobID, err, string(body))
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process job data")
	}

	if len(jobRows) == 0 {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
	}

	job := jobRows[0]
	h.Logger.Infof("Successfully retrieved status for job %s: %s", jobID, job.Status)
	return utils.RespondWithJSON(c, fiber.StatusOK, job)
}
