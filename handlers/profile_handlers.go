package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"reelforge/api-gateway/config"
	"reelforge/api-gateway/models"
)

// ProfileSuccessResponse defines the structure for a successful profile response.
type ProfileSuccessResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Data    models.Profile `json:"data"`
}

// ErrorResponse defines a common structure for error responses.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// GetProfile handles retrieving the caller's profile row.
func GetProfile(c *fiber.Ctx) error {
	userID := authedUser(c)
	log.Printf("Received request to get profile for user %s", userID)

	var profiles []models.Profile
	body, _, err := config.SupabaseClient.From("profiles").
		Select("*", "", false).
		Eq("id", userID.String()).
		Execute()
	if err != nil {
		log.Printf("Error fetching profile %s from Supabase: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Status:  "error",
			Message: fmt.Sprintf("Could not retrieve profile: %v", err),
		})
	}

	if err := json.Unmarshal(body, &profiles); err != nil {
		log.Printf("Error unmarshalling profile data for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Status:  "error",
			Message: "Could not process profile data",
		})
	}

	if len(profiles) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Status:  "error",
			Message: "Profile not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(ProfileSuccessResponse{
		Status:  "success",
		Message: "Profile retrieved successfully",
		Data:    profiles[0],
	})
}

// UpdateProfile handles partially updating the caller's profile. Only the
// display name is user-editable; plan changes arrive via the billing webhook.
func UpdateProfile(c *fiber.Ctx) error {
	userID := authedUser(c)
	log.Printf("Received request to update profile for user %s", userID)

	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing profile update payload for user %s: %v", userID, err)
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Status:  "error",
			Message: fmt.Sprintf("Invalid request body: %v", err),
		})
	}

	dbUpdateData := make(map[string]interface{})

	if val, exists := payload["full_name"]; exists {
		if val == nil {
			dbUpdateData["full_name"] = nil
		} else if nameStr, typeOK := val.(string); typeOK {
			dbUpdateData["full_name"] = nameStr
		} else {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Status: "error", Message: "'full_name' field must be a string or null"})
		}
	}

	dbUpdateData["updated_at"] = time.Now()

	var results []models.Profile
	body, _, err := config.SupabaseClient.From("profiles").
		Update(dbUpdateData, "representation", "").
		Eq("id", userID.String()).
		Execute()
	if err != nil {
		log.Printf("Error updating profile %s in Supabase: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Status:  "error",
			Message: fmt.Sprintf("Could not update profile: %v", err),
		})
	}

	if err := json.Unmarshal(body, &results); err != nil || len(results) == 0 {
		log.Printf("Error unmarshalling updated profile for user %s: %v", userID, err)
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Status:  "error",
			Message: "Profile not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(ProfileSuccessResponse{
		Status:  "success",
		Message: "Profile updated successfully",
		Data:    results[0],
	})
}
