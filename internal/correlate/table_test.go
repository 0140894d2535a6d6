package correlate

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testTable(timeout time.Duration) *Table {
	return NewTable(timeout, zerolog.Nop())
}

func TestResolveOutOfOrder(t *testing.T) {
	table := testTable(time.Second)

	ids := []string{"req-1", "req-2", "req-3"}
	chans := make([]<-chan Outcome, len(ids))
	for i, id := range ids {
		chans[i] = table.Register(id)
	}

	// Deliver responses in reverse order; each channel must still receive
	// the payload matching its own id.
	for i := len(ids) - 1; i >= 0; i-- {
		payload := json.RawMessage(fmt.Sprintf(`{"seq":%d}`, i))
		if !table.Resolve(ids[i], payload) {
			t.Fatalf("Resolve(%s) = false, want true", ids[i])
		}
	}

	for i, ch := range chans {
		select {
		case out := <-ch:
			if out.Err != nil {
				t.Fatalf("request %d rejected: %v", i, out.Err)
			}
			want := fmt.Sprintf(`{"seq":%d}`, i)
			if string(out.Result) != want {
				t.Errorf("request %d got %s, want %s", i, out.Result, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("request %d never settled", i)
		}
	}

	if table.Len() != 0 {
		t.Errorf("table has %d entries after all settled, want 0", table.Len())
	}
}

func TestTimeoutFiresExactlyOnce(t *testing.T) {
	table := testTable(20 * time.Millisecond)
	ch := table.Register("slow")

	select {
	case out := <-ch:
		var timeoutErr *TimeoutError
		if !errors.As(out.Err, &timeoutErr) {
			t.Fatalf("expected TimeoutError, got %v", out.Err)
		}
		if timeoutErr.ID != "slow" {
			t.Errorf("timeout carries id %q, want %q", timeoutErr.ID, "slow")
		}
	case <-time.After(time.Second):
		t.Fatal("request never timed out")
	}

	// A response arriving after expiry is a silent no-op.
	if table.Resolve("slow", json.RawMessage(`{}`)) {
		t.Error("Resolve after timeout = true, want false")
	}
	if table.Len() != 0 {
		t.Errorf("table has %d entries, want 0", table.Len())
	}
}

func TestRejectUnknownIDIsNoOp(t *testing.T) {
	table := testTable(time.Second)
	if table.Reject("never-registered", errors.New("boom")) {
		t.Error("Reject of unknown id = true, want false")
	}
}

func TestResolveWinsOverReject(t *testing.T) {
	table := testTable(time.Second)
	ch := table.Register("once")

	if !table.Resolve("once", json.RawMessage(`"ok"`)) {
		t.Fatal("first Resolve = false, want true")
	}
	if table.Reject("once", errors.New("late")) {
		t.Error("Reject after Resolve = true, want false")
	}

	out := <-ch
	if out.Err != nil || string(out.Result) != `"ok"` {
		t.Errorf("got (%s, %v), want (\"ok\", nil)", out.Result, out.Err)
	}
}

func TestExtendKeepsRequestAlive(t *testing.T) {
	table := testTable(50 * time.Millisecond)
	ch := table.Register("long-scan")

	// Keep extending past the original deadline, as progress updates do.
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		if !table.Extend("long-scan") {
			t.Fatalf("Extend failed on iteration %d", i)
		}
	}

	if !table.Resolve("long-scan", json.RawMessage(`"done"`)) {
		t.Fatal("Resolve after extensions = false, want true")
	}
	out := <-ch
	if out.Err != nil {
		t.Fatalf("request rejected despite extensions: %v", out.Err)
	}
}

func TestFailAllRejectsEverything(t *testing.T) {
	table := testTable(time.Minute)

	chans := make([]<-chan Outcome, 5)
	for i := range chans {
		chans[i] = table.Register(fmt.Sprintf("req-%d", i))
	}

	n := table.FailAll(&ConnectionLostError{Reason: "socket closed"})
	if n != 5 {
		t.Errorf("FailAll rejected %d requests, want 5", n)
	}

	for i, ch := range chans {
		out := <-ch
		var lost *ConnectionLostError
		if !errors.As(out.Err, &lost) {
			t.Errorf("request %d got %v, want ConnectionLostError", i, out.Err)
		}
	}
	if table.Len() != 0 {
		t.Errorf("table has %d entries after FailAll, want 0", table.Len())
	}
}

func TestDefaultTimeoutApplied(t *testing.T) {
	table := NewTable(0, zerolog.Nop())
	if table.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", table.timeout, DefaultTimeout)
	}
}
