package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptionDefaults(t *testing.T) {
	var o Options
	assert.Equal(t, DefaultAppName, o.appName())
	assert.Equal(t, DefaultTimeout, o.timeout())
	assert.Empty(t, o.hints())

	o = Options{AppName: "other", Timeout: time.Second}
	assert.Equal(t, "other", o.appName())
	assert.Equal(t, time.Second, o.timeout())
}

func TestHints(t *testing.T) {
	o := Options{Category: "transfer.complete", IconPath: "/tmp/p.png"}
	assert.Equal(t, map[string]string{
		"category":   "transfer.complete",
		"image-path": "/tmp/p.png",
	}, o.hints())
}
