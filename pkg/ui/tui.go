package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rescp17/mailingDashboard/api"
	appevents "github.com/rescp17/mailingDashboard/internal/app_events"
	"github.com/rescp17/mailingDashboard/internal/style"
	"github.com/rescp17/mailingDashboard/pkg/filePicker"
	"github.com/rescp17/mailingDashboard/pkg/mailing"
	"github.com/rescp17/mailingDashboard/pkg/notify"
	"github.com/rescp17/mailingDashboard/pkg/upload"
)

const (
	maxToasts        = 4
	toastTickSpacing = time.Second
)

type toastTickMsg time.Time

// Options tune the dashboard model.
type Options struct {
	Extension string
	ToastTTL  time.Duration
}

type model struct {
	appController AppController
	keys          keyMap
	help          help.Model
	spinner       spinner.Model
	table         table.Model
	picker        filePicker.Model
	picking       bool
	dropping      bool
	dropBuffer    []rune
	regions       []mailing.Region
	focus         int
	sessions      map[mailing.Region]upload.Snapshot
	statuses      map[mailing.Region]api.StatusSnapshot
	pollErrs      map[mailing.Region]string
	costs         *api.CostSnapshot
	costsErr      string
	toasts        notify.Toasts
	appErr        error
	extension     string
	width         int
	quitting      bool
}

var columns = []table.Column{
	{Title: "Region", Width: 8},
	{Title: "Mailing", Width: 28},
	{Title: "Progress", Width: 10},
	{Title: "Channels", Width: 10},
	{Title: "State", Width: 22},
}

// InitialModel builds the dashboard around controller. The controller must
// already be running.
func InitialModel(controller AppController, opts Options) model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows([]table.Row{}),
		table.WithFocused(false),
		table.WithHeight(len(mailing.Regions())+1),
	)
	t.SetStyles(style.NewTableStyles())

	if opts.Extension == "" {
		opts.Extension = upload.DefaultExtension
	}

	m := model{
		appController: controller,
		keys:          defaultKeys,
		help:          help.New(),
		spinner:       style.NewSpinner(),
		table:         t,
		picker:        filePicker.New(opts.Extension),
		regions:       mailing.Regions(),
		sessions:      make(map[mailing.Region]upload.Snapshot),
		statuses:      make(map[mailing.Region]api.StatusSnapshot),
		pollErrs:      make(map[mailing.Region]string),
		toasts:        notify.NewToasts(maxToasts, opts.ToastTTL),
		extension:     opts.Extension,
	}
	for _, s := range controller.Sessions() {
		m.sessions[s.Region] = s
	}
	m.refreshTable()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForAppMessages(), toastTick())
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if m.picking {
		return m.pickerView()
	}
	return m.dashboardView()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, processed := m.handleAppMessage(msg); processed {
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		newPicker, _ := m.picker.Update(msg)
		m.picker = newPicker.(filePicker.Model)
		return m, nil
	case toastTickMsg:
		m.toasts.Expire(time.Time(msg))
		return m, toastTick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.picking {
		return m.updatePicking(msg)
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.dropping {
			return m.updateDropping(keyMsg)
		}
		return m.updateDashboard(keyMsg)
	}
	return m, nil
}

// listenForAppMessages is a command that listens for messages from the app controller.
func (m model) listenForAppMessages() tea.Cmd {
	ch := m.appController.UIMessages()
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// sendEvent delivers event from a command goroutine, never from Update itself.
func (m model) sendEvent(event appevents.AppEvent) tea.Cmd {
	ch := m.appController.AppEvents()
	return func() tea.Msg {
		ch <- event
		return nil
	}
}

func toastTick() tea.Cmd {
	return tea.Tick(toastTickSpacing, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

func (m model) focused() mailing.Region {
	return m.regions[m.focus]
}
