package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"reelforge/api-gateway/billing"
	"reelforge/api-gateway/middleware"
	"reelforge/api-gateway/utils"
)

// CreateCheckoutRequest is the payload for starting a plan upgrade.
type CreateCheckoutRequest struct {
	SuccessURL string `json:"success_url" validate:"required,url"`
	CancelURL  string `json:"cancel_url" validate:"required,url"`
}

// CreateCheckout starts a Stripe checkout session for the pro plan and
// returns the hosted URL the browser redirects to.
func (h *ApplicationHandler) CreateCheckout(c *fiber.Ctx) error {
	userID := authedUser(c)
	email, _ := c.Locals(middleware.UserEmailKey).(string)

	payload := new(CreateCheckoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Validation failed: %v", utils.FormatValidationErrors(err)))
	}

	checkoutURL, err := h.Billing.CreateCheckoutSession(userID.String(), email, payload.SuccessURL, payload.CancelURL)
	if err != nil {
		h.Logger.Errorf("Error creating checkout session for user %s: %v", userID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not create checkout session")
	}

	h.Logger.Infof("Created checkout session for user %s", userID)
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"checkout_url": checkoutURL})
}

// StripeWebhook ingests billing events from Stripe and keeps the profile's
// plan column in sync. Unhandled event types are acknowledged and dropped.
func (h *ApplicationHandler) StripeWebhook(c *fiber.Ctx) error {
	event, err := h.Billing.VerifyEvent(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		h.Logger.Warnf("Rejected webhook with invalid signature: %v", err)
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid webhook signature")
	}

	update, err := h.Billing.HandleEvent(event)
	if err != nil {
		h.Logger.Errorf("Error handling billing event %s: %v", event.Type, err)
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Could not process billing event")
	}
	if update == nil {
		return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"handled": false})
	}

	if err := h.applyPlanUpdate(update); err != nil {
		h.Logger.Errorf("Error applying plan update (%+v): %v", update, err)
		// 500 so Stripe retries the delivery.
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not apply plan update")
	}

	h.Logger.WithFields(map[string]interface{}{
		"event_type": event.Type,
		"plan":       update.Plan,
	}).Info("Applied billing plan update")
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"handled": true})
}

// applyPlanUpdate writes the new plan to the profile row, addressed by user
// id when the event carried one, otherwise by Stripe customer id.
func (h *ApplicationHandler) applyPlanUpdate(update *billing.PlanUpdate) error {
	updates := map[string]interface{}{
		"plan":       update.Plan,
		"updated_at": time.Now(),
	}
	if update.CustomerID != "" {
		updates["stripe_customer_id"] = update.CustomerID
	}

	query := h.DB.From("profiles").Update(updates, "", "exact")
	switch {
	case update.UserID != "":
		if _, err := uuid.Parse(update.UserID); err != nil {
			return fmt.Errorf("event carried invalid user id %q", update.UserID)
		}
		query = query.Eq("id", update.UserID)
	case update.CustomerID != "":
		query = query.Eq("stripe_customer_id", update.CustomerID)
	default:
		return fmt.Errorf("plan update carries neither user id nor customer id")
	}

	_, count, err := query.Execute()
	if err != nil {
		return fmt.Errorf("database update failed: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("no profile matched plan update")
	}
	return nil
}
