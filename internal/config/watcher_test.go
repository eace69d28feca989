package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startLiveWatcher(t *testing.T, path string, opts ...WatcherOption[LiveConfig]) *Watcher[LiveConfig] {
	t.Helper()
	opts = append([]WatcherOption[LiveConfig]{WithDebounce[LiveConfig](50 * time.Millisecond)}, opts...)
	w := NewConfigWatcher(path, LoadLiveConfig, newTestLogger(), opts...)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("watcher.Stop failed: %v", err)
		}
	})
	// let the watch loop settle
	time.Sleep(100 * time.Millisecond)
	return w
}

func TestConfigWatcher_BasicReload(t *testing.T) {
	path := writeConfig(t, "[blink]\nenabled = false\n")

	received := make(chan LiveConfig, 1)
	w := startLiveWatcher(t, path)
	w.OnReload(func(cfg LiveConfig) { received <- cfg })

	if err := os.WriteFile(path, []byte("[blink]\nenabled = true\ncontrol = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-received:
		if cfg.BlinkEnabled == nil || !*cfg.BlinkEnabled {
			t.Errorf("BlinkEnabled = %v, want true", cfg.BlinkEnabled)
		}
		if cfg.BlinkControl == nil || *cfg.BlinkControl != 4 {
			t.Errorf("BlinkControl = %v, want 4", cfg.BlinkControl)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestConfigWatcher_RenameReplace(t *testing.T) {
	path := writeConfig(t, "[device]\nmaster_intensity = 15\n")

	received := make(chan LiveConfig, 1)
	w := startLiveWatcher(t, path)
	w.OnReload(func(cfg LiveConfig) { received <- cfg })

	tmp := filepath.Join(filepath.Dir(path), ".config.toml.swp")
	if err := os.WriteFile(tmp, []byte("[device]\nmaster_intensity = 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-received:
		if cfg.MasterIntensity == nil || *cfg.MasterIntensity != 6 {
			t.Errorf("MasterIntensity = %v, want 6", cfg.MasterIntensity)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload after rename")
	}
}

func TestConfigWatcher_IgnoresSiblings(t *testing.T) {
	path := writeConfig(t, "[blink]\nenabled = false\n")

	var calls atomic.Int32
	w := startLiveWatcher(t, path)
	w.OnReload(func(LiveConfig) { calls.Add(1) })

	other := filepath.Join(filepath.Dir(path), "other.toml")
	if err := os.WriteFile(other, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("handler called %d times for unrelated file", n)
	}
}

func TestConfigWatcher_MultipleHandlersAndUnsubscribe(t *testing.T) {
	path := writeConfig(t, "[device]\nmaster_intensity = 1\n")

	var first, second atomic.Int32
	done := make(chan struct{}, 4)
	w := startLiveWatcher(t, path)
	unsubscribe := w.OnReload(func(LiveConfig) { first.Add(1); done <- struct{}{} })
	w.OnReload(func(LiveConfig) { second.Add(1); done <- struct{}{} })

	if err := os.WriteFile(path, []byte("[device]\nmaster_intensity = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for range 2 {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for handlers")
		}
	}

	unsubscribe()
	if err := os.WriteFile(path, []byte("[device]\nmaster_intensity = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for second reload")
	}
	time.Sleep(100 * time.Millisecond)

	if first.Load() != 1 {
		t.Errorf("unsubscribed handler called %d times, want 1", first.Load())
	}
	if second.Load() != 2 {
		t.Errorf("remaining handler called %d times, want 2", second.Load())
	}
}

func TestConfigWatcher_ErrorHandler(t *testing.T) {
	path := writeConfig(t, "[blink]\nenabled = true\n")

	errs := make(chan error, 1)
	configs := make(chan LiveConfig, 1)
	w := startLiveWatcher(t, path, WithErrorHandler[LiveConfig](func(err error) { errs <- err }))
	w.OnReload(func(cfg LiveConfig) { configs <- cfg })

	if err := os.WriteFile(path, []byte("[blink\nenabled = "), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-errs:
	case <-configs:
		t.Fatal("config handler should not be called on error")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
}

func TestConfigWatcher_Debounce(t *testing.T) {
	path := writeConfig(t, "[device]\nmaster_intensity = 1\n")

	var calls atomic.Int32
	last := make(chan int, 8)
	w := startLiveWatcher(t, path, WithDebounce[LiveConfig](200*time.Millisecond))
	w.OnReload(func(cfg LiveConfig) {
		calls.Add(1)
		if cfg.MasterIntensity != nil {
			last <- *cfg.MasterIntensity
		}
	})

	for i := 2; i <= 6; i++ {
		content := []byte("[device]\nmaster_intensity = " + string(rune('0'+i)) + "\n")
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case v := <-last:
		if v != 6 {
			t.Errorf("MasterIntensity = %d, want 6", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for debounced reload")
	}
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("handler called %d times, want 1", n)
	}
}

func TestConfigWatcher_StopIsClean(t *testing.T) {
	path := writeConfig(t, "[blink]\nenabled = false\n")
	w := NewConfigWatcher(path, LoadLiveConfig, newTestLogger())
	if err := w.Stop(); err != nil {
		t.Errorf("Stop before Start = %v, want nil", err)
	}

	w = NewConfigWatcher(path, LoadLiveConfig, newTestLogger())
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop = %v", err)
	}
}
