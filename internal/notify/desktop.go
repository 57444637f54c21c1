package notify

import "github.com/gen2brain/beeep"

// DesktopDeliverer shows toast notifications through beeep. Delivery fails
// on hosts without a supported notification daemon; callers treat that as a
// degraded but working state.
type DesktopDeliverer struct{}

// NewDesktopDeliverer builds the desktop channel.
func NewDesktopDeliverer(appName string) *DesktopDeliverer {
	if appName != "" {
		beeep.AppName = appName
	}
	return &DesktopDeliverer{}
}

// Name identifies the channel in logs.
func (d *DesktopDeliverer) Name() string { return "desktop" }

// Deliver shows the toast.
func (d *DesktopDeliverer) Deliver(title, message string) error {
	return beeep.Notify(title, message, "")
}
