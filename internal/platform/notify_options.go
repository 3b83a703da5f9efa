// Package platform delivers desktop notifications through whatever the
// host offers: the freedesktop session bus on linux, osascript on macOS
// and toast notifications on windows.
package platform

import "time"

const (
	DefaultAppName = "imgedit"
	DefaultTimeout = 5 * time.Second
)

// Options configures how a notification is displayed on the host platform.
type Options struct {
	AppName string
	// IconPath points to an image shown next to the message where the
	// platform supports it. For edited images this is a preview.
	IconPath string
	// Category is a freedesktop notification category such as
	// "transfer.complete". Other platforms ignore it.
	Category string
	Timeout  time.Duration
}

func (o Options) appName() string {
	if o.AppName == "" {
		return DefaultAppName
	}
	return o.AppName
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// hints returns the freedesktop hint map. The preview is passed both as
// the icon and as image-path so servers that show large images use it.
func (o Options) hints() map[string]string {
	h := map[string]string{}
	if o.Category != "" {
		h["category"] = o.Category
	}
	if o.IconPath != "" {
		h["image-path"] = o.IconPath
	}
	return h
}
