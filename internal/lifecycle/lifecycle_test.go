package lifecycle

import "testing"

func TestCanTransition_LegalMoves(t *testing.T) {
	legal := []struct {
		from, to Status
	}{
		{StatusNew, StatusReady},
		{StatusReady, StatusSent},
		{StatusReady, StatusInvalid},
		{StatusSent, StatusReplied},
	}
	for _, tc := range legal {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be legal", tc.from, tc.to)
		}
	}
}

func TestCanTransition_SentIsMonotonic(t *testing.T) {
	for _, to := range []Status{StatusNew, StatusReady, StatusInvalid} {
		if CanTransition(StatusSent, to) {
			t.Errorf("SENT must not move back to %s", to)
		}
	}
	if !CanTransition(StatusSent, StatusReplied) {
		t.Fatal("SENT -> REPLIED must be legal")
	}
}

func TestCanTransition_TerminalStatesHaveNoExits(t *testing.T) {
	for _, terminal := range []Status{StatusInvalid, StatusReplied} {
		if !IsTerminal(terminal) {
			t.Errorf("expected %s to be terminal", terminal)
		}
		for _, to := range Canonical() {
			if to != terminal && CanTransition(terminal, to) {
				t.Errorf("%s must not move to %s", terminal, to)
			}
		}
	}
}

func TestCanTransition_SelfMoveIsAlwaysLegal(t *testing.T) {
	for _, s := range Canonical() {
		if !CanTransition(s, s) {
			t.Errorf("self move %s -> %s must be legal", s, s)
		}
	}
}

func TestParse_CaseInsensitive(t *testing.T) {
	cases := map[string]Status{
		"new":     StatusNew,
		"Ready":   StatusReady,
		" SENT ":  StatusSent,
		"invalid": StatusInvalid,
		"REPLIED": StatusReplied,
	}
	for raw, want := range cases {
		got, ok := Parse(raw)
		if !ok || got != want {
			t.Errorf("Parse(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}

	if _, ok := Parse("open"); ok {
		t.Error("Parse must reject statuses outside the canonical vocabulary")
	}
}

func TestForNewLead(t *testing.T) {
	if got := ForNewLead(true); got != StatusReady {
		t.Errorf("lead with email should start READY, got %s", got)
	}
	if got := ForNewLead(false); got != StatusNew {
		t.Errorf("lead without email should start NEW, got %s", got)
	}
}
