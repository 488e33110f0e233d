package runtime

import (
	"strings"
	"testing"
	"time"
)

func TestChannelSendThenReceiveTwice(t *testing.T) {
	ch := NewChannel("jobs", 5)
	if err := ch.Send("payload"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	first := ch.Receive(50 * time.Millisecond)
	if !first.Success || first.Value != "payload" {
		t.Fatalf("first receive should succeed immediately: %#v", first)
	}

	start := time.Now()
	second := ch.Receive(50 * time.Millisecond)
	if second.Success {
		t.Fatalf("second receive should time out: %#v", second)
	}
	if !strings.Contains(second.Error, "timeout") {
		t.Fatalf("expected timeout failure, got %q", second.Error)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("receive returned before the timeout elapsed (%s)", elapsed)
	}
}

func TestChannelDirectHandoff(t *testing.T) {
	ch := NewChannel("jobs", 1)
	got := make(chan *Result, 1)
	go func() {
		got <- ch.Receive(time.Second)
	}()
	// Let the receiver park before sending.
	time.Sleep(20 * time.Millisecond)
	if err := ch.Send("direct"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	res := <-got
	if !res.Success || res.Value != "direct" {
		t.Fatalf("expected handoff to parked receiver: %#v", res)
	}
	if ch.Len() != 0 {
		t.Fatalf("handoff should bypass the buffer")
	}
}

func TestChannelBufferOverflow(t *testing.T) {
	ch := NewChannel("jobs", 2)
	if err := ch.Send(1.0); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := ch.Send(2.0); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	err := ch.Send(3.0)
	if err == nil || !strings.Contains(err.Error(), "buffer full") {
		t.Fatalf("expected buffer full error, got %v", err)
	}
}

func TestChannelCloseWakesReceivers(t *testing.T) {
	ch := NewChannel("jobs", 1)
	got := make(chan *Result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			got <- ch.Receive(time.Second)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	ch.Close()
	for i := 0; i < 2; i++ {
		res := <-got
		if res.Success {
			t.Fatalf("closed channel should wake receivers with a failure: %#v", res)
		}
		if !strings.Contains(res.Error, "closed") {
			t.Fatalf("unexpected failure %q", res.Error)
		}
	}
	if err := ch.Send("late"); err == nil {
		t.Fatalf("send to a closed channel should fail")
	}
	if !ch.Closed() {
		t.Fatalf("closed flag should be permanent")
	}
}

func TestChannelCommands(t *testing.T) {
	r, _ := newTestRuntime(t)
	if _, err := r.Execute(NewCommand("make_channel", map[string]any{"name": "pipe", "size": 2.0})); err != nil {
		t.Fatalf("channel create failed: %v", err)
	}
	if _, err := r.Execute(NewCommand("bhejo", map[string]any{"channel": "pipe", "value": "hello"})); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	value, err := r.Execute(NewCommand("pakdo", map[string]any{"channel": "pipe", "timeout": 0.1}))
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	res, ok := value.(*Result)
	if !ok || !res.Success || res.Value != "hello" {
		t.Fatalf("unexpected receive result %#v", value)
	}

	_, err = r.Execute(NewCommand("send", map[string]any{"channel": "missing", "value": 1.0}))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected channel-not-found error, got %v", err)
	}
}
