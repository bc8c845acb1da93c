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
		"pubsub": map[string]any{
			"topicId": "",
		},
		"secretKey": map[string]any{
			"access": "",
		},
		"realtime": map[string]any{
			"viewportDebounce": "500ms",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "PUBSUB_TOPICID", want: "pubsub.topicId"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "REALTIME_VIEWPORTDEBOUNCE", want: "realtime.viewportDebounce"},
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

func TestCanonicalizeEnvKey_RealtimeSections(t *testing.T) {
	existing := map[string]any{
		"websocket": map[string]any{
			"allowedOrigins": []any{},
			"sendBuffer":     256,
		},
		"expiry": map[string]any{
			"startupDelay": "5s",
		},
		"pubsub": map[string]any{
			"pushAudience": "",
		},
		"realtime": map[string]any{
			"maxViewportCells": 10000,
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "WEBSOCKET_ALLOWEDORIGINS", want: "websocket.allowedOrigins"},
		{envKey: "WEBSOCKET_SENDBUFFER", want: "websocket.sendBuffer"},
		{envKey: "EXPIRY_STARTUPDELAY", want: "expiry.startupDelay"},
		{envKey: "PUBSUB_PUSHAUDIENCE", want: "pubsub.pushAudience"},
		{envKey: "REALTIME_MAXVIEWPORTCELLS", want: "realtime.maxViewportCells"},
		// Unknown leaves keep the raw lowercase segment under a known parent.
		{envKey: "REALTIME_HOTDEAL_WINDOW", want: "realtime.hotdeal.window"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}
