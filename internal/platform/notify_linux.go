//go:build linux

package platform

import (
	"github.com/godbus/dbus/v5"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"
)

// Notify calls org.freedesktop.Notifications.Notify on the session bus.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	hints := map[string]dbus.Variant{}
	for k, v := range opts.hints() {
		hints[k] = dbus.MakeVariant(v)
	}
	return conn.Object(busName, objectPath).Call(busName+".Notify", 0,
		opts.appName(), uint32(0), opts.IconPath, title, body, []string{},
		hints, int32(opts.timeout().Milliseconds())).Err
}
