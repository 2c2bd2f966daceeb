package handlers

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"reelforge/api-gateway/config"
	"reelforge/api-gateway/models"
)

// ListTemplates returns the system templates the wizard's template step offers.
func ListTemplates(c *fiber.Ctx) error {
	log.Println("Received request to list templates")

	var templates []models.Template
	body, _, err := config.SupabaseClient.From("templates").
		Select("*", "", false).
		Eq("is_system_template", "true").
		Execute()
	if err != nil {
		log.Printf("Error fetching templates from Supabase: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Status:  "error",
			Message: fmt.Sprintf("Could not retrieve templates: %v", err),
		})
	}

	if err := json.Unmarshal(body, &templates); err != nil {
		log.Printf("Error unmarshalling templates data: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Status:  "error",
			Message: "Could not process templates data",
		})
	}

	if templates == nil {
		templates = []models.Template{}
	}

	log.Printf("Successfully fetched %d templates", len(templates))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Templates retrieved successfully",
		"data":    templates,
	})
}
