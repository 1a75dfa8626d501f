package internal

import (
	"errors"
	"fmt"
	"log"
	"time"

	"redlight_tui/internal/config"
	"redlight_tui/internal/history"
	"redlight_tui/internal/round"
	"redlight_tui/internal/sensor"
	"redlight_tui/internal/sound"

	tea "github.com/charmbracelet/bubbletea"
)

type MsgTick struct{}

// RoundStore is where finished rounds are recorded.
type RoundStore interface {
	Create(rec *history.Record) error
	GetAll() ([]history.Record, error)
	Delete(id string) error
}

type Model struct {
	Controller *round.Controller
	Track      *round.Track
	Input      *sensor.Keyboard
	Sound      sound.Player
	store      RoundStore

	// source is what ticks read; it drops to sensor.Neutral while the
	// terminal is unfocused since key presses can't reach us.
	source  sensor.Source
	Focused bool

	Err       error
	LastRound *history.Record
	StartedAt time.Time

	// History viewer state
	ShowHistory   bool
	HistoryScroll int
	History       []history.Record

	Quitting bool
}

func NewModel(cfg *config.Config, store RoundStore, player sound.Player) (*Model, error) {
	if player == nil {
		player = sound.Nop{}
	}
	m := &Model{
		Sound: player,
		store: store,
		Input: sensor.NewKeyboard(cfg.Input.ShoutLevel, cfg.Input.Hold, cfg.Input.PitchHz, nil),
	}
	m.setFocus(true)

	rc := cfg.Round()
	ctrl, err := round.New(rc, round.WithObserver(m.onEvent))
	if err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}
	m.Controller = ctrl
	m.Track = round.NewTrack(rc.StartPosition, rc.FinishLinePosition)
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		m.tick()
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.FocusMsg:
		m.setFocus(true)
		return m, nil
	case tea.BlurMsg:
		m.setFocus(false)
		return m, nil
	case tea.WindowSizeMsg:
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	if m.Quitting {
		return ""
	}

	if m.ShowHistory {
		return m.historyView()
	}

	if !m.Controller.Begun() {
		return m.startView()
	}

	if m.Controller.Outcome().Terminal() {
		return m.resultView()
	}

	return m.mainView()
}

// tick samples the input and feeds one frame into the controller.
func (m *Model) tick() {
	if !m.Controller.Begun() || m.Controller.Paused() || m.Controller.Outcome().Terminal() {
		return
	}
	res, err := m.Controller.Tick(m.signals())
	if err != nil {
		log.Printf("tick: %v", err)
		return
	}
	m.Track.Advance(res.Displacement)
	if res.Outcome.Terminal() {
		m.saveRound()
	}
}

func (m *Model) setFocus(focused bool) {
	m.Focused = focused
	if focused {
		m.source = m.Input
		return
	}
	m.Input.Silence()
	m.source = sensor.Neutral{}
}

// signals reads the active source. A neutral sample means no movement and no
// visible subject, so the round can neither advance nor be lost to it.
func (m *Model) signals() round.Signals {
	s := round.Neutral()
	s.FinishReached = m.Track.Reached()
	sample := m.source.Sample()
	s.MovementIntensity = sample.Intensity
	s.PitchHz = sample.PitchHz
	s.SubjectVisible = sample.Visible
	return s
}

func (m *Model) onEvent(e round.Event) {
	log.Printf("event: %s", e)
	if cue, ok := sound.ForEvent(e); ok {
		m.Sound.Play(cue)
	}
}

func (m *Model) saveRound() {
	rec := history.NewRecord(m.Controller, m.Track, m.StartedAt)
	m.LastRound = rec
	if m.store == nil {
		return
	}
	if err := m.store.Create(rec); err != nil {
		m.Err = fmt.Errorf("failed to save round: %w", err)
		log.Printf("history: %v", err)
	}
}

func (m *Model) StartRound() error {
	if err := m.Controller.Begin(); err != nil {
		return err
	}
	m.StartedAt = time.Now()
	m.Err = nil
	return nil
}

func (m *Model) TogglePause() error {
	if m.Controller.Paused() {
		return m.Controller.Resume()
	}
	m.Input.Silence()
	return m.Controller.Pause()
}

func (m *Model) ResetRound() {
	m.Controller.Reset()
	m.Track.Reset()
	m.Input.Silence()
	m.LastRound = nil
	m.StartedAt = time.Time{}
}

func (m *Model) loadHistory() {
	if m.store == nil {
		m.History = nil
		return
	}
	records, err := m.store.GetAll()
	if err != nil {
		m.Err = fmt.Errorf("failed to load history: %w", err)
		m.History = nil
		return
	}
	m.History = records
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ShowHistory {
		return m.handleHistoryInput(msg)
	}

	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		m.Quitting = true
		return m, tea.Quit
	case "up", "k":
		m.Input.PitchUp()
		return m, nil
	case "down", "j":
		m.Input.PitchDown()
		return m, nil
	case "v":
		m.Input.ToggleVisible()
		return m, nil
	}

	switch {
	case !m.Controller.Begun():
		switch key {
		case "s", "enter":
			if err := m.StartRound(); err != nil {
				m.Err = err
			}
		case "h":
			m.openHistory()
		}
	case m.Controller.Outcome().Terminal():
		switch key {
		case "r", "enter":
			m.ResetRound()
		case "h":
			m.openHistory()
		}
	default:
		switch key {
		case " ":
			if err := m.TogglePause(); err != nil && !errors.Is(err, round.ErrRoundOver) {
				m.Err = err
			}
		case "m", "right", "l":
			if !m.Controller.Paused() {
				m.Input.Press()
			}
		}
	}
	return m, nil
}

func (m *Model) openHistory() {
	m.loadHistory()
	m.ShowHistory = true
	m.HistoryScroll = 0
}

func (m *Model) handleHistoryInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc", "h":
		m.ShowHistory = false
		m.History = nil
	case "up", "k":
		if m.HistoryScroll > 0 {
			m.HistoryScroll--
		}
	case "d", "x":
		m.deleteHistoryEntry()
	case "down", "j":
		maxScroll := len(m.History) - 1
		if maxScroll < 0 {
			maxScroll = 0
		}
		if m.HistoryScroll < maxScroll {
			m.HistoryScroll++
		}
	}
	return m, nil
}

// deleteHistoryEntry removes the record at the top of the visible page.
func (m *Model) deleteHistoryEntry() {
	if m.store == nil || m.HistoryScroll >= len(m.History) {
		return
	}
	rec := m.History[m.HistoryScroll]
	if err := m.store.Delete(rec.ID); err != nil {
		m.Err = fmt.Errorf("failed to delete round: %w", err)
		return
	}
	m.loadHistory()
	m.HistoryScroll = min(m.HistoryScroll, max(len(m.History)-1, 0))
}
