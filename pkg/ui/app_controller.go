package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	appevents "github.com/rescp17/mailingDashboard/internal/app_events"
	"github.com/rescp17/mailingDashboard/pkg/upload"
)

// AppController defines the contract between the UI and the backend application logic.
type AppController interface {
	// UIMessages returns a read-only channel for receiving messages from the backend to the UI.
	UIMessages() <-chan tea.Msg

	// AppEvents returns a write-only channel for the UI to send events to the backend.
	AppEvents() chan<- appevents.AppEvent

	// Sessions returns the current state of every region, used to seed the view.
	Sessions() []upload.Snapshot
}
