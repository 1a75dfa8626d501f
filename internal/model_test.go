package internal

import (
	"slices"
	"strings"
	"testing"

	"redlight_tui/internal/config"
	"redlight_tui/internal/history"
	"redlight_tui/internal/round"
	"redlight_tui/internal/sound"
	"redlight_tui/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
)

type memoryStore struct {
	records []history.Record
}

func (s *memoryStore) Create(rec *history.Record) error {
	s.records = append([]history.Record{*rec}, s.records...)
	return nil
}

func (s *memoryStore) GetAll() ([]history.Record, error) {
	return slices.Clone(s.records), nil
}

func (s *memoryStore) Delete(id string) error {
	s.records = slices.DeleteFunc(s.records, func(r history.Record) bool { return r.ID == id })
	return nil
}

type recordingPlayer struct {
	cues []sound.Cue
}

func (p *recordingPlayer) Play(c sound.Cue) {
	p.cues = append(p.cues, c)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (*Model, *memoryStore, *recordingPlayer) {
	t.Helper()
	store := &memoryStore{}
	player := &recordingPlayer{}
	m, err := NewModel(config.DefaultConfig(), store, player)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m, store, player
}

func TestModel_StartAndShout(t *testing.T) {
	m, _, player := newTestModel(t)
	if !strings.Contains(m.View(), "WAITING") {
		t.Error("start view should show the idle light")
	}

	m.Update(runes("s"))
	if !m.Controller.Begun() || m.Controller.Phase() != timer.Green {
		t.Fatalf("round not started: phase %s", m.Controller.Phase())
	}
	if !slices.Equal(player.cues, []sound.Cue{sound.CueGreenLight}) {
		t.Errorf("cues %v, want green light", player.cues)
	}
	if !strings.Contains(m.View(), "GREEN LIGHT") {
		t.Error("main view should show the green light")
	}

	start := m.Track.Position
	m.Update(runes("m"))
	m.Update(MsgTick{})
	if m.Track.Position <= start {
		t.Errorf("shouting on green should move the player, position %v", m.Track.Position)
	}
}

func TestModel_PauseStopsMovement(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(runes("s"))
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if !m.Controller.Paused() {
		t.Fatal("space should pause")
	}

	m.Update(runes("m"))
	m.Update(MsgTick{})
	if m.Track.Position != m.Track.Start {
		t.Errorf("player moved while paused: %v", m.Track.Position)
	}
	if !strings.Contains(m.View(), "Paused") {
		t.Error("view should show the pause notice")
	}

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if m.Controller.Paused() {
		t.Error("second space should resume")
	}
}

func TestModel_HiddenSubjectDoesNotMove(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(runes("v"))
	m.Update(runes("s"))
	m.Update(runes("m"))
	m.Update(MsgTick{})
	if m.Track.Position != m.Track.Start {
		t.Errorf("hidden player moved to %v", m.Track.Position)
	}
	if m.Controller.Last().Notice != round.NoticeShowYourself {
		t.Errorf("notice %v, want show yourself", m.Controller.Last().Notice)
	}
}

func TestModel_WinIsRecordedAndReset(t *testing.T) {
	m, store, player := newTestModel(t)
	m.Update(runes("s"))
	m.Track.Position = m.Track.FinishLine + 1
	m.Update(MsgTick{})

	if m.Controller.Outcome() != round.Won {
		t.Fatalf("outcome %s, want won", m.Controller.Outcome())
	}
	if len(store.records) != 1 || !store.records[0].Won() {
		t.Fatalf("stored %+v", store.records)
	}
	if m.LastRound == nil || m.LastRound.ID != store.records[0].ID {
		t.Error("LastRound should match the stored record")
	}
	if player.cues[len(player.cues)-1] != sound.CueWin {
		t.Errorf("last cue %s, want win", player.cues[len(player.cues)-1])
	}
	if !strings.Contains(m.View(), "YOU WIN") {
		t.Error("result view should announce the win")
	}

	m.Update(MsgTick{})
	if len(store.records) != 1 {
		t.Errorf("round saved %d times", len(store.records))
	}

	m.Update(runes("h"))
	if !m.ShowHistory || len(m.History) != 1 {
		t.Fatalf("history view %v with %d records", m.ShowHistory, len(m.History))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.ShowHistory {
		t.Error("esc should close history")
	}

	m.Update(runes("r"))
	if m.Controller.Begun() || m.Controller.Phase() != timer.Initial {
		t.Errorf("reset left phase %s", m.Controller.Phase())
	}
	if m.Track.Position != m.Track.Start {
		t.Errorf("reset left position %v", m.Track.Position)
	}
}

func TestModel_UnfocusedTerminalReadsNeutral(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(runes("s"))
	m.Update(runes("m"))
	m.Update(tea.BlurMsg{})
	m.Update(MsgTick{})

	if m.Track.Position != m.Track.Start {
		t.Errorf("player moved while unfocused: %v", m.Track.Position)
	}
	if m.Controller.Last().Notice != round.NoticeShowYourself {
		t.Errorf("notice %v, want show yourself", m.Controller.Last().Notice)
	}
	if !strings.Contains(m.View(), "unfocused") {
		t.Error("view should say input is lost")
	}

	m.Update(tea.FocusMsg{})
	m.Update(runes("m"))
	m.Update(MsgTick{})
	if m.Track.Position <= m.Track.Start {
		t.Errorf("player should move again after focus, position %v", m.Track.Position)
	}
}

func TestModel_DeleteFromHistory(t *testing.T) {
	m, store, _ := newTestModel(t)
	store.records = []history.Record{{ID: "a", Outcome: "won"}, {ID: "b", Outcome: "lost_timeout"}}

	m.Update(runes("h"))
	m.Update(runes("j"))
	m.Update(runes("d"))
	if len(store.records) != 1 || store.records[0].ID != "a" {
		t.Fatalf("store %+v, want only a", store.records)
	}
	if len(m.History) != 1 || m.HistoryScroll != 0 {
		t.Errorf("history %d records, scroll %d", len(m.History), m.HistoryScroll)
	}

	m.Update(runes("d"))
	m.Update(runes("d"))
	if len(store.records) != 0 || len(m.History) != 0 {
		t.Errorf("store %+v, history %+v", store.records, m.History)
	}
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
