package internal

import (
	"fmt"
	"strings"
	"time"

	"redlight_tui/internal/history"
	"redlight_tui/internal/round"
	"redlight_tui/internal/timer"

	"github.com/charmbracelet/lipgloss"
)

const (
	screenWidth = 80
	trackWidth  = 60
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	lightStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Align(lipgloss.Center)

	greenLightStyle = lightStyle.
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("82"))

	redLightStyle = lightStyle.
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("160"))

	amberLightStyle = lightStyle.
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("214"))

	idleLightStyle = lightStyle.
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("238"))

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	loseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	logHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	logTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func noticeText(res round.Result) string {
	s := res.Signals
	switch res.Notice {
	case round.NoticeStart:
		return "Press 's' to start, space to pause"
	case round.NoticeGreenLight:
		return "Green Light!"
	case round.NoticeMakeNoise:
		return "Make noise to move forward!"
	case round.NoticeMoving:
		return fmt.Sprintf("Moving! Volume: %.2f, Pitch: %.0f Hz", s.MovementIntensity, s.PitchHz)
	case round.NoticePrepareRed:
		return "Get ready for Red Light..."
	case round.NoticeRedLight:
		return "Red Light! Stay silent!"
	case round.NoticeShowYourself:
		return "Make sure your upper body is visible to the camera"
	case round.NoticePaused:
		return "Paused. Press space to resume."
	case round.NoticeResumed:
		return "Resumed!"
	case round.NoticeWon:
		return "Congratulations! You won."
	case round.NoticeTimeUp:
		return "Time's up! You lost."
	case round.NoticeViolation:
		return fmt.Sprintf("You lost: you made noise (Volume: %.2f, Pitch: %.0f Hz)", s.MovementIntensity, s.PitchHz)
	}
	return ""
}

func lightBanner(p timer.Phase) string {
	switch p {
	case timer.Green:
		return greenLightStyle.Render("GREEN LIGHT")
	case timer.Red:
		return redLightStyle.Render("RED LIGHT")
	case timer.TransitionToRed:
		return amberLightStyle.Render("GET READY")
	}
	return idleLightStyle.Render("WAITING")
}

func (m *Model) trackView() string {
	pos := int(m.Track.Progress() * float64(trackWidth-1))
	var sb strings.Builder
	sb.WriteString("|")
	for i := range trackWidth {
		if i == pos {
			sb.WriteString("@")
		} else {
			sb.WriteString(".")
		}
	}
	sb.WriteString("| FINISH")
	return sb.String()
}

func (m *Model) inputView() string {
	if !m.Focused {
		return inactiveStyle.Render("Input lost: terminal unfocused, no movement is read")
	}
	sample := m.source.Sample()
	camera := "visible"
	if !sample.Visible {
		camera = "hidden"
	}
	meter := int(sample.Intensity * 100)
	if meter > 20 {
		meter = 20
	}
	return fmt.Sprintf("Mic [%-20s] pitch %.0f Hz   Camera: %s",
		strings.Repeat("#", meter), m.Input.Pitch(), camera)
}

func (m *Model) errorLine() string {
	if m.Err == nil {
		return ""
	}
	return "\n" + errorStyle.Render("Error: "+m.Err.Error())
}

func (m *Model) startView() string {
	body := titleStyle.Render("Red Light, Green Light") + "\n\n" +
		lightBanner(timer.Initial) + "\n\n" +
		fmt.Sprintf("Round time: %s", timerDisplayStyle.Render(formatDuration(m.Controller.RemainingRound()))) + "\n\n" +
		noticeStyle.Render(noticeText(m.Controller.Last())) + "\n\n" +
		m.inputView() +
		m.errorLine() + "\n\n" +
		helpStyle.Render("Start: s | History: h | Camera: v | Pitch: Up/Down | Quit: q")

	return lipgloss.Place(
		screenWidth, 24,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(70).Render(body),
	)
}

func (m *Model) mainView() string {
	c := m.Controller
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(screenWidth).Render("Red Light, Green Light"))
	sb.WriteString("\n\n")

	phaseTime := formatSeconds(c.RemainingPhase())
	if c.Phase() == timer.TransitionToRed {
		phaseTime = formatSeconds(c.RemainingTransition())
	}
	status := lipgloss.JoinHorizontal(lipgloss.Top,
		lightBanner(c.Phase()),
		"  ",
		fmt.Sprintf("Light: %s   Round: %s",
			timerDisplayStyle.Render(phaseTime),
			timerDisplayStyle.Render(formatDuration(c.RemainingRound()))),
	)
	sb.WriteString(status)
	sb.WriteString("\n\n")
	sb.WriteString(boxStyle.Render(m.trackView()))
	sb.WriteString("\n")
	sb.WriteString(inactiveStyle.Render(fmt.Sprintf("Position %.0f / %.0f", m.Track.Position, m.Track.FinishLine)))
	sb.WriteString("\n\n")
	sb.WriteString(noticeStyle.Render(noticeText(c.Last())))
	sb.WriteString("\n\n")
	sb.WriteString(m.inputView())
	sb.WriteString(m.errorLine())
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Shout: m/Right | Pause: Space | Pitch: Up/Down | Camera: v | Quit: q"))

	return sb.String()
}

func (m *Model) resultView() string {
	c := m.Controller
	var headline string
	if c.Outcome() == round.Won {
		headline = winStyle.Render("YOU WIN")
	} else {
		headline = loseStyle.Render("GAME OVER")
	}

	var sb strings.Builder
	sb.WriteString(headline)
	sb.WriteString("\n\n")
	sb.WriteString(noticeText(c.Last()))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Played: %s of %s\n", formatSeconds(c.Played()), formatDuration(c.RoundDuration())))
	sb.WriteString(fmt.Sprintf("Distance: %.0f (%.0f%%)\n", m.Track.Distance(), m.Track.Progress()*100))
	sb.WriteString(m.errorLine())
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Play again: r | History: h | Quit: q"))

	return lipgloss.Place(
		screenWidth, 24,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(60).Render(sb.String()),
	)
}

func (m *Model) historyView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(screenWidth).Render("Round History"))
	sb.WriteString("\n\n")

	if len(m.History) == 0 {
		sb.WriteString(inactiveStyle.Render("No rounds played yet."))
	} else {
		sb.WriteString(logHeaderStyle.Render(fmt.Sprintf("%-14s  %-15s  %8s  %8s", "When", "Outcome", "Played", "Distance")))
		sb.WriteString("\n")
		const pageSize = 15
		end := min(m.HistoryScroll+pageSize, len(m.History))
		for _, rec := range m.History[m.HistoryScroll:end] {
			sb.WriteString(formatRecord(rec))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Scroll: Up/Down | Delete: d | Back: Esc/h"))
	return sb.String()
}

func formatRecord(rec history.Record) string {
	outcome := loseStyle.Render(fmt.Sprintf("%-15s", rec.Outcome))
	if rec.Won() {
		outcome = winStyle.Render(fmt.Sprintf("%-15s", rec.Outcome))
	}
	return fmt.Sprintf("%s  %s  %8s  %8.0f",
		logTimeStyle.Render(rec.EndedAt.Local().Format("Jan 02 15:04")),
		outcome,
		formatSeconds(rec.Played),
		rec.Distance,
	)
}
