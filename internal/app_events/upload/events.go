package upload

import (
	"github.com/rescp17/mailingDashboard/api"
	appevents "github.com/rescp17/mailingDashboard/internal/app_events"
	"github.com/rescp17/mailingDashboard/pkg/mailing"
	"github.com/rescp17/mailingDashboard/pkg/notify"
	uploadpkg "github.com/rescp17/mailingDashboard/pkg/upload"
)

// --- App Events (from TUI to App) ---

// SelectFileMsg is sent when the operator picks a file for a region, either in
// the picker or by typing its path.
type SelectFileMsg struct {
	appevents.Event
	Region mailing.Region
	Path   string
}

// DragEnterMsg is sent when the region's zone enters drop mode.
type DragEnterMsg struct {
	appevents.Event
	Region mailing.Region
}

// DragLeaveMsg is sent when drop mode is left without a drop.
type DragLeaveMsg struct {
	appevents.Event
	Region mailing.Region
}

// DropMsg is sent when a path is dropped (pasted) onto a zone.
type DropMsg struct {
	appevents.Event
	Region mailing.Region
	Path   string
}

// SubmitMsg asks the App to submit the region's selected file.
type SubmitMsg struct {
	appevents.Event
	Region mailing.Region
}

// ResetMsg clears the region's session.
type ResetMsg struct {
	appevents.Event
	Region mailing.Region
}

// RefreshMsg asks for an immediate status and cost fetch.
type RefreshMsg struct {
	appevents.Event
}

var (
	_ appevents.AppEvent = SelectFileMsg{}
	_ appevents.AppEvent = DragEnterMsg{}
	_ appevents.AppEvent = DragLeaveMsg{}
	_ appevents.AppEvent = DropMsg{}
	_ appevents.AppEvent = SubmitMsg{}
	_ appevents.AppEvent = ResetMsg{}
	_ appevents.AppEvent = RefreshMsg{}
)

// --- UI Messages (from App to TUI) ---

// SessionUpdatedMsg carries the latest state of one region's session.
type SessionUpdatedMsg struct {
	appevents.UIMessage
	Snapshot uploadpkg.Snapshot
}

// NotificationMsg carries a toast.
type NotificationMsg struct {
	appevents.UIMessage
	Notification notify.Notification
}

// StatusUpdatedMsg carries a polled dialer status.
type StatusUpdatedMsg struct {
	appevents.UIMessage
	Status api.StatusSnapshot
}

// CostsUpdatedMsg carries polled account costs.
type CostsUpdatedMsg struct {
	appevents.UIMessage
	Costs api.CostSnapshot
}

// PollFailedMsg reports a failed status or cost fetch. Region is empty for costs.
type PollFailedMsg struct {
	appevents.UIMessage
	Region mailing.Region
	Err    error
}

var (
	_ appevents.AppUIMessage = SessionUpdatedMsg{}
	_ appevents.AppUIMessage = NotificationMsg{}
	_ appevents.AppUIMessage = StatusUpdatedMsg{}
	_ appevents.AppUIMessage = CostsUpdatedMsg{}
	_ appevents.AppUIMessage = PollFailedMsg{}
)
