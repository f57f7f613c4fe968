package config

// Built-in remote row store identity. The key is an anon-role API key; the
// row store enforces its own row-level rules. Kept as compile-time constants
// so every install talks to the same licenses table.
const (
	BuiltinRemoteBaseURL = "https://xjkqmzpyfwlenchjuisv.supabase.co"
	BuiltinRemoteAPIKey  = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.madaris-anon-key"
)

// applyBuiltins fills the remote identity when neither file nor environment
// provided one.
func (c *Config) applyBuiltins() {
	if c.Remote.BaseURL == "" {
		c.Remote.BaseURL = BuiltinRemoteBaseURL
	}
	if c.Remote.APIKey == "" {
		c.Remote.APIKey = BuiltinRemoteAPIKey
	}
}
