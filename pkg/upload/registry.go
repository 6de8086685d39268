package upload

import (
	"fmt"

	"github.com/rescp17/mailingDashboard/pkg/mailing"
)

// Registry holds one independent controller per region.
type Registry struct {
	controllers map[mailing.Region]*Controller
}

// NewRegistry creates an empty session for every known region. Options are
// applied to each controller; observers receive snapshots of every region.
func NewRegistry(encoder Encoder, submitter Submitter, opts ...Option) *Registry {
	r := &Registry{controllers: make(map[mailing.Region]*Controller)}
	for _, region := range mailing.Regions() {
		r.controllers[region] = New(region, encoder, submitter, opts...)
	}
	return r
}

// Get returns the controller for region.
func (r *Registry) Get(region mailing.Region) (*Controller, error) {
	c, ok := r.controllers[region]
	if !ok {
		return nil, fmt.Errorf("no upload session for region %q", region)
	}
	return c, nil
}

// Snapshots returns the state of every region in display order.
func (r *Registry) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(r.controllers))
	for _, region := range mailing.Regions() {
		out = append(out, r.controllers[region].Snapshot())
	}
	return out
}
