package tabs

import "testing"

type recordingNotifier struct {
	shown  []string
	closed int
}

func (n *recordingNotifier) DisplayShown(description string) { n.shown = append(n.shown, description) }
func (n *recordingNotifier) DisplayClosed()                  { n.closed++ }

func TestShowAndClose(t *testing.T) {
	t.Parallel()

	n := &recordingNotifier{}
	d := New(n, nil)

	d.Show("c major scale")
	if !d.Open() {
		t.Fatalf("expected open after show")
	}
	if len(n.shown) != 1 || n.shown[0] != "c major scale" {
		t.Fatalf("unexpected shown events: %v", n.shown)
	}

	d.Close()
	if d.Open() {
		t.Fatalf("expected closed")
	}
	if n.closed != 1 {
		t.Fatalf("expected one close event, got %d", n.closed)
	}

	// Closing an already-closed display emits nothing.
	d.Close()
	if n.closed != 1 {
		t.Fatalf("redundant close must be silent, got %d", n.closed)
	}
}

func TestShowFromBackendReportsOpen(t *testing.T) {
	t.Parallel()

	n := &recordingNotifier{}
	backendOpens := 0
	d := New(n, func() { backendOpens++ })

	d.ShowFromBackend("a minor pentatonic")
	if backendOpens != 1 {
		t.Fatalf("expected backend-open callback, got %d", backendOpens)
	}
	if !d.Open() || len(n.shown) != 1 {
		t.Fatalf("backend show must also open the display")
	}

	// Voice-path shows never touch the callback.
	d.Show("e blues scale")
	if backendOpens != 1 {
		t.Fatalf("voice show must not report a backend open, got %d", backendOpens)
	}
}
