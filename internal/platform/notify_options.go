// Package platform sends desktop notifications through the host's native
// notification service.
package platform

// AppName identifies wall to the notification service.
const AppName = "wall"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath points to an image shown beside the notification where the
	// platform supports it.
	IconPath string
}
