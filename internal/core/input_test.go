package core

import "testing"

func TestInputFrame(t *testing.T) {
	f := NewInputFrame()
	if !f.Empty() {
		t.Fatal("new frame should be empty")
	}

	f.Set(ActionLeft)
	f.Set(ActionHardDrop)
	if !f.Has(ActionLeft) || !f.Has(ActionHardDrop) || f.Has(ActionRight) {
		t.Errorf("frame = %v", f.Actions)
	}

	c := f.Clone()
	f.Clear()
	if !f.Empty() {
		t.Error("Clear should empty the frame")
	}
	if !c.Has(ActionLeft) {
		t.Error("clone should be independent")
	}
}

func TestZeroInputFrame(t *testing.T) {
	var f InputFrame
	if f.Has(ActionPause) {
		t.Error("zero frame has no actions")
	}
	f.Set(ActionPause)
	if !f.Has(ActionPause) {
		t.Error("Set on a zero frame should allocate")
	}
}

func TestMultiInputFrame(t *testing.T) {
	m := NewMultiInputFrame()
	if !m.Player2().Empty() {
		t.Error("missing player should read as empty")
	}

	p2 := NewInputFrame()
	p2.Set(ActionRotateCW)
	m.SetPlayer(Player2, p2)
	if !m.Player2().Has(ActionRotateCW) || m.Player1().Has(ActionRotateCW) {
		t.Error("frames should be kept per player")
	}
	if Player1.Opponent() != Player2 || Player2.Opponent() != Player1 {
		t.Error("Opponent should swap sides")
	}
}

func TestActionString(t *testing.T) {
	tests := map[Action]string{
		ActionNone:     "None",
		ActionHardDrop: "HardDrop",
		ActionPause:    "Pause",
		Action(99):     "Unknown",
	}
	for a, want := range tests {
		if got := a.String(); got != want {
			t.Errorf("Action(%d).String() = %q, expected %q", int(a), got, want)
		}
	}
}
