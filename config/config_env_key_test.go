package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"mapbox": map[string]any{
			"accessToken": "",
		},
		"mapLibrary": map[string]any{
			"pollInterval": "150ms",
			"maxAttempts":  40,
		},
		"storage": map[string]any{
			"photoIndexKey": "nearby_photos_v1",
		},
		"pubsub": map[string]any{
			"topicId": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "MAPBOX_ACCESSTOKEN", want: "mapbox.accessToken"},
		{envKey: "MAPLIBRARY_POLLINTERVAL", want: "mapLibrary.pollInterval"},
		{envKey: "MAPLIBRARY_MAXATTEMPTS", want: "mapLibrary.maxAttempts"},
		{envKey: "STORAGE_PHOTOINDEXKEY", want: "storage.photoIndexKey"},
		{envKey: "PUBSUB_TOPICID", want: "pubsub.topicId"},
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

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, "8MB", cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, "https://api.mapbox.com", cfg.Mapbox.BaseURL)
	assert.Equal(t, "restaurant", cfg.Search.DefaultCategory)
	assert.Equal(t, 12, cfg.Search.DefaultLimit)
	assert.Equal(t, 18, cfg.Search.UILimit)
	assert.Equal(t, 150*time.Millisecond, cfg.MapLibrary.PollInterval)
	assert.Equal(t, 40, cfg.MapLibrary.MaxAttempts)
	assert.Equal(t, []float64{0, 20}, cfg.MapLibrary.InitialCenter)
	assert.Equal(t, LocationProviderDevice, cfg.Location.Provider)
	assert.True(t, cfg.Location.HighAccuracy)
	assert.Equal(t, 10*time.Second, cfg.Location.MaximumAge)
	assert.Equal(t, 12*time.Second, cfg.Location.Timeout)
	assert.Equal(t, StorageDriverBlob, cfg.Storage.Driver)
	assert.Equal(t, "nearby_photos_v1", cfg.Storage.PhotoIndexKey)
	assert.Equal(t, 256, cfg.QRCode.Size)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		MapLibrary: &MapLibraryConfig{PollInterval: 200 * time.Millisecond, MaxAttempts: 60},
		Location:   &LocationConfig{Provider: LocationProviderFixed, Timeout: time.Second},
	}
	cfg.ApplyDefaults()

	assert.Equal(t, 200*time.Millisecond, cfg.MapLibrary.PollInterval)
	assert.Equal(t, 60, cfg.MapLibrary.MaxAttempts)
	assert.Equal(t, LocationProviderFixed, cfg.Location.Provider)
	assert.Equal(t, time.Second, cfg.Location.Timeout)
	assert.False(t, cfg.Location.HighAccuracy)
}
