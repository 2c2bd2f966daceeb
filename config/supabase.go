package config

import (
	"fmt"
	"log"

	supa "github.com/supabase-community/supabase-go"
)

var SupabaseClient *supa.Client

// supabaseProjectURL keeps the URL the client was built with so handlers can
// turn relative signed-URL paths into absolute ones.
var supabaseProjectURL string

// InitSupabase initializes the shared Supabase client. The service key is
// required: profile and video rows live behind row-level security and the
// service tier bypasses it deliberately.
func InitSupabase(cfg *Config) error {
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")
	}

	client, err := supa.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
	if err != nil {
		return fmt.Errorf("error initializing Supabase client: %w", err)
	}

	SupabaseClient = client
	supabaseProjectURL = cfg.SupabaseURL
	log.Println("Supabase client initialized successfully.")
	return nil
}

// GetSupabaseURL returns the Supabase project URL the client was initialized with.
func GetSupabaseURL() string {
	return supabaseProjectURL
}
