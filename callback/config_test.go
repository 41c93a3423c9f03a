package callback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petabytecl/quip/callback"
)

func TestNewDefaultsToShow(t *testing.T) {
	cfg := callback.New()
	assert.Equal(t, callback.Show, cfg.Backtraces())
}

func TestHideBacktracesThenShow(t *testing.T) {
	cfg := callback.New().HideBacktraces()
	assert.Equal(t, callback.Hide, cfg.Backtraces())

	cfg = cfg.ShowBacktraces()
	assert.Equal(t, callback.Show, cfg.Backtraces())
}

func TestInstallDefaultsToCapture(t *testing.T) {
	callback.Install(callback.New())
	assert.True(t, callback.ShouldCaptureBacktraces())
}

func TestInstallHideStopsCapture(t *testing.T) {
	callback.Install(callback.New().HideBacktraces())
	defer callback.Install(callback.New())

	assert.False(t, callback.ShouldCaptureBacktraces())
}
