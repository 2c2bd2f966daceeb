// Package billing wraps the Stripe surface of the product: checkout session
// creation for upgrades and webhook ingestion that keeps the profile's plan
// column in sync with the subscription state.
package billing

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/webhook"
)

// Plans as stored in the profiles table.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

type Service struct {
	webhookSecret string
	proPriceID    string
}

// New configures the Stripe SDK. The secret key is process-global in
// stripe-go, so New should be called once at startup.
func New(secretKey, webhookSecret, proPriceID string) *Service {
	stripe.Key = secretKey
	return &Service{webhookSecret: webhookSecret, proPriceID: proPriceID}
}

// CreateCheckoutSession starts a subscription checkout for the pro plan and
// returns the hosted checkout URL the browser should redirect to. The user id
// travels as the client reference so the webhook can attribute the purchase.
func (s *Service) CreateCheckoutSession(userID, email, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.proPriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(userID),
		CustomerEmail:     stripe.String(email),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// PlanUpdate is the outcome of a billing webhook event that changes a user's
// plan. UserID is set when the event carries a client reference; otherwise
// the caller resolves the user through CustomerID.
type PlanUpdate struct {
	UserID     string
	CustomerID string
	Plan       string
}

// VerifyEvent checks the webhook signature and parses the event payload.
func (s *Service) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
}

// HandleEvent maps a verified Stripe event to a plan change. Events that do
// not affect the plan return nil.
func (s *Service) HandleEvent(event stripe.Event) (*PlanUpdate, error) {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("parse checkout session: %w", err)
		}
		update := &PlanUpdate{UserID: sess.ClientReferenceID, Plan: PlanPro}
		if sess.Customer != nil {
			update.CustomerID = sess.Customer.ID
		}
		return update, nil

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("parse subscription: %w", err)
		}
		update := &PlanUpdate{Plan: PlanFree}
		if sub.Customer != nil {
			update.CustomerID = sub.Customer.ID
		}
		return update, nil
	}

	return nil, nil
}
