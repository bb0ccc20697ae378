package perception

import (
	"context"
	"fmt"
	"runtime"
)

// Bundle is the full set of per-platform capturers the Coordinator needs:
// a hook source feeding keyboard/mouse, an active-window reader, a screen
// capturer, and a lock observer.
type Bundle struct {
	Hooks      HookSource
	Window     ActiveWindowDriver
	Screen     ScreenCapturer
	Lock       LockObserver
}

// NewBundle resolves the platform-specific implementations registered by
// the os-tagged factory files in this package (factory_linux.go,
// factory_darwin.go, factory_windows.go). Returns an error naming the
// platform when none is registered.
func NewBundle() (*Bundle, error) {
	if newPlatformBundle == nil {
		return nil, fmt.Errorf("perception: no platform bundle registered for %s", runtime.GOOS)
	}
	return newPlatformBundle()
}

// newPlatformBundle is populated by exactly one os-tagged init() in this
// package, matching the factory pattern in original_source's
// perception/factory.py.
var newPlatformBundle func() (*Bundle, error)

// unsupportedHookSource satisfies HookSource on platforms that have no
// wired input-hook library yet; Subscribe returns immediately with an
// error rather than silently producing nothing.
type unsupportedHookSource struct{ platform string }

func (s unsupportedHookSource) Subscribe(ctx context.Context, fn func(Event)) error {
	return fmt.Errorf("perception: keyboard/mouse hooks not implemented for %s", s.platform)
}

type unsupportedWindowDriver struct{ platform string }

func (d unsupportedWindowDriver) ActiveWindow(ctx context.Context) (ActiveWindowInfo, error) {
	return ActiveWindowInfo{}, fmt.Errorf("perception: active-window driver not implemented for %s", d.platform)
}

func (d unsupportedWindowDriver) Monitors(ctx context.Context) ([]MonitorInfo, error) {
	return nil, fmt.Errorf("perception: monitor enumeration not implemented for %s", d.platform)
}

type unsupportedScreenCapturer struct{ platform string }

func (c unsupportedScreenCapturer) Capture(ctx context.Context, monitorIndex int) ([]byte, error) {
	return nil, fmt.Errorf("perception: screen capture not implemented for %s", c.platform)
}

func (c unsupportedScreenCapturer) MonitorCount(ctx context.Context) (int, error) {
	return 0, fmt.Errorf("perception: monitor enumeration not implemented for %s", c.platform)
}

type unsupportedLockObserver struct{ platform string }

func (o unsupportedLockObserver) Start(ctx context.Context, onLock, onUnlock func()) error {
	return fmt.Errorf("perception: screen-lock observer not implemented for %s", o.platform)
}
