package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents a user profile row. The ID mirrors the Supabase auth
// user id; Plan is kept in sync by the Stripe webhook.
type Profile struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	FullName         *string   `json:"full_name,omitempty"` // Nullable TEXT
	Plan             string    `json:"plan"`
	StripeCustomerID *string   `json:"stripe_customer_id,omitempty"`
	VideosCreated    int       `json:"videos_created"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
