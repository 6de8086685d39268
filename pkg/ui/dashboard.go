package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	appevents "github.com/rescp17/mailingDashboard/internal/app_events"
	uploadEvent "github.com/rescp17/mailingDashboard/internal/app_events/upload"
	"github.com/rescp17/mailingDashboard/internal/style"
	"github.com/rescp17/mailingDashboard/internal/util"
	"github.com/rescp17/mailingDashboard/pkg/filePicker"
	"github.com/rescp17/mailingDashboard/pkg/mailing"
	"github.com/rescp17/mailingDashboard/pkg/upload"
)

const zoneWidth = 44

func (m *model) handleAppMessage(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case uploadEvent.SessionUpdatedMsg:
		if cur, ok := m.sessions[msg.Snapshot.Region]; ok && msg.Snapshot.Version < cur.Version {
			slog.Debug("Dropping stale session snapshot", "region", msg.Snapshot.Region,
				"version", msg.Snapshot.Version, "current", cur.Version)
			return m.listenForAppMessages(), true
		}
		m.sessions[msg.Snapshot.Region] = msg.Snapshot
		if m.dropping && msg.Snapshot.Region == m.focused() && !msg.Snapshot.Dragging {
			// The session left drop mode on its own, e.g. after a drop.
			m.dropping = false
			m.dropBuffer = nil
		}
		return m.listenForAppMessages(), true
	case uploadEvent.NotificationMsg:
		m.toasts.Push(msg.Notification)
		return m.listenForAppMessages(), true
	case uploadEvent.StatusUpdatedMsg:
		m.statuses[msg.Status.Region] = msg.Status
		delete(m.pollErrs, msg.Status.Region)
		m.refreshTable()
		return m.listenForAppMessages(), true
	case uploadEvent.CostsUpdatedMsg:
		costs := msg.Costs
		m.costs = &costs
		m.costsErr = ""
		return m.listenForAppMessages(), true
	case uploadEvent.PollFailedMsg:
		if msg.Region == "" {
			m.costsErr = msg.Err.Error()
		} else {
			m.pollErrs[msg.Region] = msg.Err.Error()
			m.refreshTable()
		}
		return m.listenForAppMessages(), true
	case appevents.AppErrorMsg:
		slog.Error("App error", "error", msg.Err)
		m.appErr = msg.Err
		return m.listenForAppMessages(), true
	}
	return nil, false
}

func (m model) updatePicking(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case filePicker.FileChosenMsg:
		m.picking = false
		return m, m.sendEvent(uploadEvent.SelectFileMsg{Region: m.focused(), Path: msg.Path})
	case filePicker.CancelledMsg:
		m.picking = false
		return m, nil
	}
	newPicker, cmd := m.picker.Update(msg)
	m.picker = newPicker.(filePicker.Model)
	return m, cmd
}

// updateDropping treats the terminal as a drop target: a bracketed paste is
// dropped at once, typed text is dropped on enter.
func (m model) updateDropping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	region := m.focused()
	switch {
	case msg.Paste:
		m.dropping = false
		m.dropBuffer = nil
		return m, m.sendEvent(uploadEvent.DropMsg{Region: region, Path: string(msg.Runes)})
	case key.Matches(msg, m.keys.Leave):
		m.dropping = false
		m.dropBuffer = nil
		return m, m.sendEvent(uploadEvent.DragLeaveMsg{Region: region})
	case msg.Type == tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case msg.Type == tea.KeyEnter:
		path := string(m.dropBuffer)
		m.dropping = false
		m.dropBuffer = nil
		return m, m.sendEvent(uploadEvent.DropMsg{Region: region, Path: path})
	case msg.Type == tea.KeyBackspace:
		if len(m.dropBuffer) > 0 {
			m.dropBuffer = m.dropBuffer[:len(m.dropBuffer)-1]
		}
	case msg.Type == tea.KeySpace:
		m.dropBuffer = append(m.dropBuffer, ' ')
	case msg.Type == tea.KeyRunes:
		m.dropBuffer = append(m.dropBuffer, msg.Runes...)
	}
	return m, nil
}

func (m model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	region := m.focused()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextZone):
		m.focus = (m.focus + 1) % len(m.regions)
	case key.Matches(msg, m.keys.PrevZone):
		m.focus = (m.focus + len(m.regions) - 1) % len(m.regions)
	case key.Matches(msg, m.keys.Open):
		if m.sessions[region].Phase.InFlight() {
			return m, nil
		}
		m.picking = true
		return m, m.picker.Init()
	case key.Matches(msg, m.keys.Drop):
		if m.sessions[region].Phase.InFlight() {
			return m, nil
		}
		m.dropping = true
		m.dropBuffer = nil
		return m, m.sendEvent(uploadEvent.DragEnterMsg{Region: region})
	case key.Matches(msg, m.keys.Submit):
		return m, m.sendEvent(uploadEvent.SubmitMsg{Region: region})
	case key.Matches(msg, m.keys.Reset):
		return m, m.sendEvent(uploadEvent.ResetMsg{Region: region})
	case key.Matches(msg, m.keys.Refresh):
		return m, m.sendEvent(uploadEvent.RefreshMsg{})
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *model) refreshTable() {
	rows := make([]table.Row, 0, len(m.regions))
	for _, region := range m.regions {
		status, ok := m.statuses[region]
		state := "waiting"
		switch {
		case m.pollErrs[region] != "":
			state = "unreachable"
		case ok && status.Online():
			state = "online"
		case ok:
			state = "idle"
		}
		rows = append(rows, table.Row{
			string(region), status.MailingLabel(), status.ProgressLabel(), status.ChannelsLabel(), state,
		})
	}
	m.table.SetRows(rows)
}

func (m model) dashboardView() string {
	var s strings.Builder
	s.WriteString(style.TitleStyle.Render("Mailing upload") + "\n\n")

	zones := make([]string, 0, len(m.regions))
	for i, region := range m.regions {
		zones = append(zones, m.zoneView(m.sessions[region], i == m.focus))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, zones...) + "\n")

	s.WriteString(style.BaseStyle.Render(m.table.View()) + "\n")
	s.WriteString(m.costsView() + "\n")

	if m.appErr != nil {
		s.WriteString(style.ErrorStyle.Render("Error: "+m.appErr.Error()) + "\n")
	}
	for _, n := range m.toasts.Items() {
		s.WriteString(style.ToastStyle(n.Level).Render(n.Message) + "\n")
	}

	s.WriteString("\n" + m.help.View(m.keys))
	return s.String()
}

func (m model) zoneView(snap upload.Snapshot, focused bool) string {
	var lines []string
	title := fmt.Sprintf("%s · %s", snap.Region, snap.Region.DisplayName())
	lines = append(lines, style.ZoneTitleStyle.Render(title))

	switch snap.Phase {
	case upload.PhaseEmpty:
		lines = append(lines, style.MutedStyle.Render("No file selected"))
	case upload.PhaseSelected:
		lines = append(lines, m.fileLine(snap), "Ready to upload")
	case upload.PhaseEncoding:
		lines = append(lines, m.fileLine(snap), m.spinner.View()+" Preparing file...")
	case upload.PhaseSubmitting:
		lines = append(lines, m.fileLine(snap), m.spinner.View()+" Sending to the dialer...")
	case upload.PhaseSucceeded, upload.PhaseFailed:
		lines = append(lines, m.fileLine(snap))
		lines = append(lines, outcomeLines(snap.Outcome)...)
	}

	if snap.ValidationMessage != "" {
		lines = append(lines, style.ErrorStyle.Render(snap.ValidationMessage))
	}
	if snap.Busy && !snap.Phase.InFlight() {
		lines = append(lines, style.MutedStyle.Render("Previous upload still finishing..."))
	}
	if focused && m.dropping {
		lines = append(lines, style.HighlightFontStyle.Render("Drop or paste a "+m.extension+" path, esc to cancel"))
		lines = append(lines, "> "+string(m.dropBuffer))
	}

	return style.ZoneStyle(snap.Phase, focused, snap.Dragging).
		Width(zoneWidth).
		Render(strings.Join(lines, "\n"))
}

func outcomeLines(outcome mailing.Result) []string {
	switch o := outcome.(type) {
	case mailing.Success:
		lines := []string{style.SuccessStyle.Render("Uploaded")}
		if o.Reference != "" {
			lines = append(lines, "Reference: "+style.HighlightFontStyle.Render(o.Reference))
		}
		if o.Message != "" {
			lines = append(lines, util.PadRight(o.Message, zoneWidth-4))
		}
		return lines
	case mailing.Failure:
		return []string{
			style.ErrorStyle.Render(fmt.Sprintf("Failed (%s): %s", o.Kind, o.Message)),
			style.MutedStyle.Render("enter to retry, r to clear"),
		}
	default:
		return nil
	}
}

func (m model) fileLine(snap upload.Snapshot) string {
	name := util.PadRight(snap.FileName, zoneWidth-14)
	return name + " " + util.FormatSize(snap.FileSize)
}

func (m model) costsView() string {
	switch {
	case m.costsErr != "":
		return style.ErrorStyle.Render("Costs unavailable: " + m.costsErr)
	case m.costs == nil:
		return style.MutedStyle.Render("Loading costs...")
	}
	c := m.costs
	return style.CostsStyle.Render(fmt.Sprintf("Balance %s | Today %s | Week %s | Updated %s",
		c.Balance.Or("-"), c.DailyCost.Or("-"), c.WeeklyCost.Or("-"), c.CollectedAt.Or("-")))
}

func (m model) pickerView() string {
	region := m.focused()
	return fmt.Sprintf("Region: %s\n%s\n",
		style.HighlightFontStyle.Render(fmt.Sprintf("%s · %s", region, region.DisplayName())),
		m.picker.View())
}
