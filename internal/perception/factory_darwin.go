//go:build darwin

package perception

// macOS active-window and lock-state detection is grounded on
// original_source/backend/perception/platforms/macos/active_window.py, which
// uses NSWorkspace and the CoreGraphics event tap APIs via a Python
// bridge. The examples pack carries no cgo/Cocoa binding for either, so this
// bundle wires the interfaces honestly rather than fabricating bindings.
func init() {
	newPlatformBundle = func() (*Bundle, error) {
		return &Bundle{
			Hooks:  unsupportedHookSource{platform: "darwin"},
			Window: unsupportedWindowDriver{platform: "darwin"},
			Screen: unsupportedScreenCapturer{platform: "darwin"},
			Lock:   unsupportedLockObserver{platform: "darwin"},
		}, nil
	}
}
