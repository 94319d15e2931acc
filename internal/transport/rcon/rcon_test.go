package rcon

import (
	"context"
	"errors"
	"testing"
)

type fakeConsole struct {
	got    []string
	fail   bool
	closed bool
}

func (f *fakeConsole) Execute(cmd string) (string, error) {
	if f.fail {
		return "", errors.New("connection reset")
	}
	f.got = append(f.got, cmd)
	return "  ok \n", nil
}

func (f *fakeConsole) Close() error {
	f.closed = true
	return nil
}

func TestExecuteStripsSlash(t *testing.T) {
	fc := &fakeConsole{}
	c := newClient(fc, 1000, nil)

	resp, err := c.Execute(context.Background(), "/fill 0 -60 0 8 -60 6 cobblestone")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("response = %q", resp)
	}
	if len(fc.got) != 1 || fc.got[0] != "fill 0 -60 0 8 -60 6 cobblestone" {
		t.Fatalf("sent = %v", fc.got)
	}

	st := c.Stats()
	if st.SentTotal != 1 || st.FailedTotal != 0 {
		t.Fatalf("stats = %+v", st)
	}
	if st.BlocksTotal != 9*1*7 {
		t.Fatalf("blocks = %d, want 63", st.BlocksTotal)
	}
}

func TestExecuteFailureCounts(t *testing.T) {
	fc := &fakeConsole{fail: true}
	c := newClient(fc, 1000, nil)
	if _, err := c.Execute(context.Background(), "setblock 0 0 0 stone"); err == nil {
		t.Fatalf("expected execute error")
	}
	if st := c.Stats(); st.FailedTotal != 1 || st.SentTotal != 0 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestExecuteHonorsContext(t *testing.T) {
	fc := &fakeConsole{}
	c := newClient(fc, 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	// drain the initial token, then cancel so the second send cannot wait
	if _, err := c.Execute(ctx, "setblock 0 0 0 stone"); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	cancel()
	if _, err := c.Execute(ctx, "setblock 0 1 0 stone"); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestClose(t *testing.T) {
	fc := &fakeConsole{}
	c := newClient(fc, 10, nil)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !fc.closed {
		t.Fatalf("underlying console not closed")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestBlocksIn(t *testing.T) {
	cases := []struct {
		cmd  string
		want int64
	}{
		{"/fill 0 -60 0 8 -56 6 oak_planks", 9 * 5 * 7},
		{"/fill 8 -60 6 0 -60 0 stone", 63},
		{"setblock 4 -59 0 oak_door[half=lower]", 1},
		{"/setblock 0 0 0 stone", 1},
		{"/fill 1 2 3 oak_planks", 0},
		{"/fill a b c d e f stone", 0},
		{"say hello", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := BlocksIn(tc.cmd); got != tc.want {
			t.Errorf("BlocksIn(%q) = %d, want %d", tc.cmd, got, tc.want)
		}
	}
}
