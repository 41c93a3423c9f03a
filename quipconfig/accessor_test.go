package quipconfig_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/petabytecl/quip/quipconfig"
	cfgviper "github.com/petabytecl/quip/quipconfig/viper"
)

// =============================================================================
// Test Get[T]
// =============================================================================

func TestGet_String_ReturnsValue(t *testing.T) {
	backend := cfgviper.New()
	backend.Set("host", "localhost")
	mgr := quipconfig.NewWithBackend(backend)

	result := quipconfig.Get[string](mgr, "host")
	assert.Equal(t, "localhost", result)
}

func TestGet_Int_ReturnsValue(t *testing.T) {
	backend := cfgviper.New()
	backend.Set("port", 8080)
	mgr := quipconfig.NewWithBackend(backend)

	result := quipconfig.Get[int](mgr, "port")
	assert.Equal(t, 8080, result)
}

func TestGet_Bool_ReturnsValue(t *testing.T) {
	backend := cfgviper.New()
	backend.Set("debug", true)
	mgr := quipconfig.NewWithBackend(backend)

	result := quipconfig.Get[bool](mgr, "debug")
	assert.True(t, result)
}

func TestGet_Float64_ReturnsValue(t *testing.T) {
	backend := cfgviper.New()
	backend.Set("rate", 1.5)
	mgr := quipconfig.NewWithBackend(backend)

	result := quipconfig.Get[float64](mgr, "rate")
	assert.Equal(t, 1.5, result)
}

func TestGet_MissingKey_ReturnsZeroValue(t *testing.T) {
	backend := cfgviper.New()
	mgr := quipconfig.NewWithBackend(backend)

	strResult := quipconfig.Get[string](mgr, "missing")
	assert.Equal(t, "", strResult)

	intResult := quipconfig.Get[int](mgr, "missing")
	assert.Equal(t, 0, intResult)

	boolResult := quipconfig.Get[bool](mgr, "missing")
	assert.False(t, boolResult)
}

func TestGet_TypeMismatch_ReturnsZeroValue(t *testing.T) {
	backend := cfgviper.New()
	backend.Set("port", "not-a-number") // String instead of int
	mgr := quipconfig.NewWithBackend(backend)

	result := quipconfig.Get[int](mgr, "port")
	assert.Equal(t, 0, result)
}

// =============================================================================
// Test GetOr[T]
// =============================================================================

func TestGetOr_MissingKey_ReturnsFallback(t *testing.T) {
	backend := cfgviper.New()
	mgr := quipconfig.NewWithBackend(backend)

	result := quipconfig.GetOr(mgr, "missing", "default")
	assert.Equal(t, "default", result)

	intResult := quipconfig.GetOr(mgr, "missing", 8080)
	assert.Equal(t, 8080, intResult)
}

func TestGetOr_TypeMismatch_ReturnsFallback(t *testing.T) {
	backend := cfgviper.New()
	backend.Set("port", "not-a-number")
	mgr := quipconfig.NewWithBackend(backend)

	result := quipconfig.GetOr(mgr, "port", 8080)
	assert.Equal(t, 8080, result)
}

func TestGetOr_ValuePresent_ReturnsValue(t *testing.T) {
	backend := cfgviper.New()
	backend.Set("host", "prodhost")
	mgr := quipconfig.NewWithBackend(backend)

	result := quipconfig.GetOr(mgr, "host", "default")
	assert.Equal(t, "prodhost", result)
}

func TestGetOr_Duration_Works(t *testing.T) {
	backend := cfgviper.New()
	backend.Set("timeout", 30*time.Second)
	mgr := quipconfig.NewWithBackend(backend)

	result := quipconfig.GetOr(mgr, "timeout", 10*time.Second)
	assert.Equal(t, 30*time.Second, result)

	// Missing key returns fallback
	result = quipconfig.GetOr(mgr, "other_timeout", 10*time.Second)
	assert.Equal(t, 10*time.Second, result)
}

// =============================================================================
// Test MustGet[T]
// =============================================================================

func TestMustGet_ValuePresent_ReturnsValue(t *testing.T) {
	backend := cfgviper.New()
	backend.Set("host", "localhost")
	mgr := quipconfig.NewWithBackend(backend)

	result := quipconfig.MustGet[string](mgr, "host")
	assert.Equal(t, "localhost", result)
}

func TestMustGet_MissingKey_Panics(t *testing.T) {
	backend := cfgviper.New()
	mgr := quipconfig.NewWithBackend(backend)

	assert.Panics(t, func() {
		quipconfig.MustGet[string](mgr, "missing")
	})
}

func TestMustGet_TypeMismatch_Panics(t *testing.T) {
	backend := cfgviper.New()
	backend.Set("port", "not-a-number")
	mgr := quipconfig.NewWithBackend(backend)

	assert.Panics(t, func() {
		quipconfig.MustGet[int](mgr, "port")
	})
}

// =============================================================================
// Test with nested keys
// =============================================================================

func TestGet_NestedKey_Works(t *testing.T) {
	backend := cfgviper.New()
	backend.Set("database.host", "dbhost")
	backend.Set("database.port", 5432)
	mgr := quipconfig.NewWithBackend(backend)

	host := quipconfig.Get[string](mgr, "database.host")
	assert.Equal(t, "dbhost", host)

	port := quipconfig.Get[int](mgr, "database.port")
	assert.Equal(t, 5432, port)
}

func TestGetOr_NestedKey_Works(t *testing.T) {
	backend := cfgviper.New()
	mgr := quipconfig.NewWithBackend(backend)

	// Missing nested key returns fallback
	host := quipconfig.GetOr(mgr, "database.host", "localhost")
	assert.Equal(t, "localhost", host)
}
