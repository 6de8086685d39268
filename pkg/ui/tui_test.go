package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rescp17/mailingDashboard/api"
	appevents "github.com/rescp17/mailingDashboard/internal/app_events"
	uploadEvent "github.com/rescp17/mailingDashboard/internal/app_events/upload"
	"github.com/rescp17/mailingDashboard/pkg/filePicker"
	"github.com/rescp17/mailingDashboard/pkg/mailing"
	"github.com/rescp17/mailingDashboard/pkg/notify"
	"github.com/rescp17/mailingDashboard/pkg/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	ui       chan tea.Msg
	events   chan appevents.AppEvent
	sessions []upload.Snapshot
}

func newFakeController() *fakeController {
	return &fakeController{
		ui:     make(chan tea.Msg, 8),
		events: make(chan appevents.AppEvent, 8),
		sessions: []upload.Snapshot{
			{Region: mailing.RegionMG, Phase: upload.PhaseEmpty},
			{Region: mailing.RegionSP, Phase: upload.PhaseEmpty},
		},
	}
}

func (f *fakeController) UIMessages() <-chan tea.Msg           { return f.ui }
func (f *fakeController) AppEvents() chan<- appevents.AppEvent { return f.events }
func (f *fakeController) Sessions() []upload.Snapshot          { return f.sessions }

func newTestModel(t *testing.T) (model, *fakeController) {
	t.Helper()
	fc := newFakeController()
	return InitialModel(fc, Options{ToastTTL: 5 * time.Second}), fc
}

func step(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(model)
	require.True(t, ok)
	return updated, cmd
}

// runCmd executes cmd and returns the event it sent to the app, if any.
func runCmd(t *testing.T, fc *fakeController, cmd tea.Cmd) appevents.AppEvent {
	t.Helper()
	require.NotNil(t, cmd)
	cmd()
	select {
	case ev := <-fc.events:
		return ev
	default:
		t.Fatal("expected an app event")
		return nil
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialModelSeedsSessions(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, mailing.RegionMG, m.focused())
	assert.Len(t, m.sessions, 2)
	assert.Contains(t, m.View(), "No file selected")
	assert.Contains(t, m.View(), "Minas Gerais")
}

func TestTabSwitchesRegion(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, mailing.RegionSP, m.focused())
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, mailing.RegionMG, m.focused())
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, mailing.RegionSP, m.focused())
}

func TestKeysSendEventsForFocusedRegion(t *testing.T) {
	m, fc := newTestModel(t)
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})

	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, uploadEvent.SubmitMsg{Region: mailing.RegionSP}, runCmd(t, fc, cmd))

	_, cmd = step(t, m, keyRunes("r"))
	assert.Equal(t, uploadEvent.ResetMsg{Region: mailing.RegionSP}, runCmd(t, fc, cmd))

	_, cmd = step(t, m, keyRunes("f"))
	assert.Equal(t, uploadEvent.RefreshMsg{}, runCmd(t, fc, cmd))
}

func TestDropModeWithPaste(t *testing.T) {
	m, fc := newTestModel(t)

	m, cmd := step(t, m, keyRunes("d"))
	assert.True(t, m.dropping)
	assert.Equal(t, uploadEvent.DragEnterMsg{Region: mailing.RegionMG}, runCmd(t, fc, cmd))

	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/tmp/lista_mg.csv"), Paste: true})
	assert.False(t, m.dropping)
	assert.Equal(t, uploadEvent.DropMsg{Region: mailing.RegionMG, Path: "/tmp/lista_mg.csv"}, runCmd(t, fc, cmd))
}

func TestDropModeWithTypedPath(t *testing.T) {
	m, fc := newTestModel(t)
	m, cmd := step(t, m, keyRunes("d"))
	runCmd(t, fc, cmd)

	m, _ = step(t, m, keyRunes("a"))
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = step(t, m, keyRunes("bx"))
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = step(t, m, keyRunes(".csv"))
	assert.Contains(t, m.View(), "> a b.csv")

	_, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, uploadEvent.DropMsg{Region: mailing.RegionMG, Path: "a b.csv"}, runCmd(t, fc, cmd))
}

func TestEscLeavesDropMode(t *testing.T) {
	m, fc := newTestModel(t)
	m, cmd := step(t, m, keyRunes("d"))
	runCmd(t, fc, cmd)

	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.dropping)
	assert.Equal(t, uploadEvent.DragLeaveMsg{Region: mailing.RegionMG}, runCmd(t, fc, cmd))
}

func TestDropModeIgnoredWhileSubmitting(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = step(t, m, uploadEvent.SessionUpdatedMsg{Snapshot: upload.Snapshot{
		Region: mailing.RegionMG, Phase: upload.PhaseSubmitting, FileName: "lista_mg.csv",
	}})

	m, cmd := step(t, m, keyRunes("d"))
	assert.Nil(t, cmd)
	assert.False(t, m.dropping)

	m, cmd = step(t, m, keyRunes("o"))
	assert.Nil(t, cmd)
	assert.False(t, m.picking)
}

func TestPickerSelectsFileForFocusedRegion(t *testing.T) {
	m, fc := newTestModel(t)
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m, _ = step(t, m, keyRunes("o"))
	require.True(t, m.picking)
	assert.Contains(t, m.View(), "São Paulo")

	m, cmd := step(t, m, filePicker.FileChosenMsg{Path: "/data/lista_sp.csv"})
	assert.False(t, m.picking)
	assert.Equal(t, uploadEvent.SelectFileMsg{Region: mailing.RegionSP, Path: "/data/lista_sp.csv"}, runCmd(t, fc, cmd))
}

func TestPickerCancel(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = step(t, m, keyRunes("o"))
	m, cmd := step(t, m, filePicker.CancelledMsg{})
	assert.Nil(t, cmd)
	assert.False(t, m.picking)
}

func TestSessionUpdatesRenderPhases(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := step(t, m, uploadEvent.SessionUpdatedMsg{Snapshot: upload.Snapshot{
		Region: mailing.RegionMG, Phase: upload.PhaseSucceeded, FileName: "lista_mg.csv", FileSize: 10,
		Reference: "42", Outcome: mailing.Success{Reference: "42"},
	}})
	assert.NotNil(t, cmd, "model keeps listening for app messages")
	view := m.View()
	assert.Contains(t, view, "lista_mg.csv")
	assert.Contains(t, view, "Reference: 42")

	m, _ = step(t, m, uploadEvent.SessionUpdatedMsg{Snapshot: upload.Snapshot{
		Region: mailing.RegionSP, Phase: upload.PhaseFailed, FileName: "lista_sp.csv",
		LastError: "dialer offline", Outcome: mailing.Failure{Kind: mailing.KindDomain, Message: "dialer offline"},
	}})
	assert.Contains(t, m.View(), "Failed (domain): dialer offline")

	m, _ = step(t, m, uploadEvent.SessionUpdatedMsg{Snapshot: upload.Snapshot{
		Region: mailing.RegionSP, Phase: upload.PhaseEmpty, ValidationMessage: "invalid format",
	}})
	assert.Contains(t, m.View(), "invalid format")
}

func TestStaleSessionUpdateIgnored(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = step(t, m, uploadEvent.SessionUpdatedMsg{Snapshot: upload.Snapshot{
		Region: mailing.RegionMG, Phase: upload.PhaseEmpty, Version: 5,
	}})
	m, cmd := step(t, m, uploadEvent.SessionUpdatedMsg{Snapshot: upload.Snapshot{
		Region: mailing.RegionMG, Phase: upload.PhaseEncoding, FileName: "lista_mg.csv", Version: 3,
	}})
	assert.NotNil(t, cmd, "model keeps listening for app messages")
	assert.Equal(t, upload.PhaseEmpty, m.sessions[mailing.RegionMG].Phase)
	assert.NotContains(t, m.View(), "lista_mg.csv")

	m, _ = step(t, m, uploadEvent.SessionUpdatedMsg{Snapshot: upload.Snapshot{
		Region: mailing.RegionMG, Phase: upload.PhaseSelected, FileName: "nova.csv", Version: 6,
	}})
	assert.Equal(t, upload.PhaseSelected, m.sessions[mailing.RegionMG].Phase)
}

func TestBusySessionShowsPendingUpload(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = step(t, m, uploadEvent.SessionUpdatedMsg{Snapshot: upload.Snapshot{
		Region: mailing.RegionMG, Phase: upload.PhaseSelected, FileName: "nova.csv", Busy: true,
	}})
	assert.Contains(t, m.View(), "Previous upload still finishing")

	m, _ = step(t, m, uploadEvent.SessionUpdatedMsg{Snapshot: upload.Snapshot{
		Region: mailing.RegionMG, Phase: upload.PhaseSelected, FileName: "nova.csv",
	}})
	assert.NotContains(t, m.View(), "Previous upload still finishing")
}

func TestToastsExpire(t *testing.T) {
	m, _ := newTestModel(t)
	n := notify.New(mailing.RegionMG, notify.LevelSuccess, "Mailing MG uploaded successfully")

	m, _ = step(t, m, uploadEvent.NotificationMsg{Notification: n})
	assert.Contains(t, m.View(), "Mailing MG uploaded successfully")

	m, cmd := step(t, m, toastTickMsg(n.At.Add(10*time.Second)))
	assert.NotNil(t, cmd)
	assert.Equal(t, 0, m.toasts.Len())
	assert.NotContains(t, m.View(), "Mailing MG uploaded successfully")
}

func TestStatusAndCostsUpdates(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = step(t, m, uploadEvent.StatusUpdatedMsg{Status: api.StatusSnapshot{
		Region: mailing.RegionMG, Name: "MAILING_DISCADOR_OUTUBRO", Progress: "35%", Channels: "12",
	}})
	m, _ = step(t, m, uploadEvent.PollFailedMsg{Region: mailing.RegionSP, Err: errors.New("timeout")})

	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"MG", "OUTUBRO", "35%", "12", "online"}, []string(rows[0]))
	assert.Equal(t, "unreachable", rows[1][4])

	assert.Contains(t, m.View(), "Loading costs")
	m, _ = step(t, m, uploadEvent.CostsUpdatedMsg{Costs: api.CostSnapshot{Balance: "1500.00"}})
	assert.Contains(t, m.View(), "Balance 1500.00")

	m, _ = step(t, m, uploadEvent.PollFailedMsg{Err: errors.New("bad gateway")})
	assert.Contains(t, m.View(), "Costs unavailable: bad gateway")
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := step(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
}

func TestListenForAppMessages(t *testing.T) {
	m, fc := newTestModel(t)
	want := uploadEvent.NotificationMsg{Notification: notify.New(mailing.RegionSP, notify.LevelInfo, "hi")}
	fc.ui <- want
	assert.Equal(t, want, m.listenForAppMessages()())
}
