package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"auth": map[string]any{
			"maxActiveSessions": 5,
			"refreshTokenTTL":   "720h",
		},
		"secretKey": map[string]any{
			"access": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "AUTH_MAXACTIVESESSIONS", want: "auth.maxActiveSessions"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestAuthConfigDefaults(t *testing.T) {
	cfg := &AuthConfig{}
	cfg.applyDefaults()

	if cfg.MaxActiveSessions != defaultMaxActiveSessions {
		t.Fatalf("MaxActiveSessions = %d, want %d", cfg.MaxActiveSessions, defaultMaxActiveSessions)
	}
	if cfg.AccessTokenTTL != defaultAccessTokenTTL {
		t.Fatalf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, defaultAccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != defaultRefreshTokenTTL {
		t.Fatalf("RefreshTokenTTL = %v, want %v", cfg.RefreshTokenTTL, defaultRefreshTokenTTL)
	}
	if cfg.ResetTokenTTL != defaultResetTokenTTL {
		t.Fatalf("ResetTokenTTL = %v, want %v", cfg.ResetTokenTTL, defaultResetTokenTTL)
	}
}
