//go:build windows

package perception

// Windows active-window and lock-state detection is grounded on
// original_source/backend/perception/platforms/windows/active_window.py,
// which uses the Win32 user32/dwmapi APIs via a Python bridge. No syscall
// binding for those APIs ships in this module's dependency pack, so this
// bundle wires the interfaces honestly rather than hand-rolling a syscall
// layer that nothing in the corpus demonstrates.
func init() {
	newPlatformBundle = func() (*Bundle, error) {
		return &Bundle{
			Hooks:  unsupportedHookSource{platform: "windows"},
			Window: unsupportedWindowDriver{platform: "windows"},
			Screen: unsupportedScreenCapturer{platform: "windows"},
			Lock:   unsupportedLockObserver{platform: "windows"},
		}, nil
	}
}
