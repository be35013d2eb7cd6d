package systemd

import "testing"

func TestGetListenersWithoutActivation(t *testing.T) {
	t.Setenv("LISTEN_PID", "")
	t.Setenv("LISTEN_FDS", "")

	listeners, err := GetListeners()
	if err != nil {
		t.Fatalf("GetListeners() error = %v", err)
	}
	if listeners.Activated {
		t.Error("expected no socket activation")
	}
	if listeners.HTTP != nil || listeners.Metrics != nil {
		t.Error("expected nil listeners")
	}
}

func TestNotifyWithoutSocketIsNoop(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")

	if IsSystemdService() {
		t.Error("IsSystemdService() = true without NOTIFY_SOCKET")
	}
	if err := NotifyReady(); err != nil {
		t.Errorf("NotifyReady() error = %v", err)
	}
	if err := NotifyStopping(); err != nil {
		t.Errorf("NotifyStopping() error = %v", err)
	}
	if got := WatchdogInterval(); got != 0 {
		t.Errorf("WatchdogInterval() = %v, want 0", got)
	}
}
