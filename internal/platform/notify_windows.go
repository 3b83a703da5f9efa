//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"strings"
)

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// toastScript builds the PowerShell that shows a WinRT toast. With a
// preview the image template is used and its src points at the file.
func toastScript(title, body string, opts Options) string {
	kind := "ToastText02"
	if opts.IconPath != "" {
		kind = "ToastImageAndText02"
	}
	var b strings.Builder
	b.WriteString("[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=Windows Runtime] > $null; ")
	fmt.Fprintf(&b, "$t = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::%s); ", kind)
	b.WriteString(`$texts = $t.GetElementsByTagName("text"); `)
	fmt.Fprintf(&b, "$texts.Item(0).AppendChild($t.CreateTextNode(%s)) > $null; ", psQuote(title))
	fmt.Fprintf(&b, "$texts.Item(1).AppendChild($t.CreateTextNode(%s)) > $null; ", psQuote(body))
	if opts.IconPath != "" {
		fmt.Fprintf(&b, `$t.GetElementsByTagName("image").Item(0).SetAttribute("src", %s); `, psQuote(opts.IconPath))
	}
	fmt.Fprintf(&b, "[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(%s).Show([Windows.UI.Notifications.ToastNotification]::new($t));", psQuote(opts.appName()))
	return b.String()
}

// Notify shows a toast through PowerShell.
func Notify(title, body string, opts Options) error {
	return exec.Command("powershell.exe", "-NoProfile", "-Command", toastScript(title, body, opts)).Run()
}
