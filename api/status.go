package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rescp17/mailingDashboard/pkg/mailing"
)

const mailingNamePrefix = "MAILING_DISCADOR_"

// StatusSnapshot is the dialer state of one region as returned by GET /api/status/{region}.
type StatusSnapshot struct {
	Region   mailing.Region `json:"-"`
	Name     string         `json:"nome"`
	Progress string         `json:"progresso"`
	Channels FlexString     `json:"saidas"`
	ID       *string        `json:"id,omitempty"`
	At       time.Time      `json:"-"`
}

// Online reports whether a mailing is currently loaded on the dialer.
func (s StatusSnapshot) Online() bool {
	return s.Name != ""
}

// MailingLabel is the mailing name without the dialer's fixed prefix.
func (s StatusSnapshot) MailingLabel() string {
	if s.Name == "" {
		return "---"
	}
	return strings.TrimPrefix(s.Name, mailingNamePrefix)
}

// ProgressLabel defaults to 0% when the dialer reports nothing.
func (s StatusSnapshot) ProgressLabel() string {
	if s.Progress == "" {
		return "0%"
	}
	return s.Progress
}

// ChannelsLabel defaults to 0 when the dialer reports nothing.
func (s StatusSnapshot) ChannelsLabel() string {
	if s.Channels == "" {
		return "0"
	}
	return string(s.Channels)
}

// CostSnapshot is the account balance as returned by GET /api/custos/.
type CostSnapshot struct {
	Balance     FlexString `json:"saldo_atual"`
	DailyCost   FlexString `json:"custo_diario"`
	WeeklyCost  FlexString `json:"custo_semanal"`
	CollectedAt FlexString `json:"data_coleta"`
	At          time.Time  `json:"-"`
}

// FlexString accepts either a JSON string or a JSON number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

// Or returns fallback when the value is empty.
func (f FlexString) Or(fallback string) string {
	if f == "" {
		return fallback
	}
	return string(f)
}

// Status fetches the current dialer status of region.
func (c *Client) Status(ctx context.Context, region mailing.Region) (StatusSnapshot, error) {
	if !region.Valid() {
		return StatusSnapshot{}, fmt.Errorf("unknown region %q", region)
	}
	var snap StatusSnapshot
	if err := c.getJSON(ctx, "/api/status/"+string(region), &snap); err != nil {
		return StatusSnapshot{}, fmt.Errorf("fetch status %s: %w", region, err)
	}
	snap.Region = region
	snap.At = time.Now()
	return snap, nil
}

// Costs fetches the current balance and costs.
func (c *Client) Costs(ctx context.Context) (CostSnapshot, error) {
	var snap CostSnapshot
	if err := c.getJSON(ctx, "/api/custos/", &snap); err != nil {
		return CostSnapshot{}, fmt.Errorf("fetch costs: %w", err)
	}
	snap.At = time.Now()
	return snap, nil
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return fmt.Errorf("gateway responded with non-OK status: %s", resp.Status)
	}
	if err := json.Unmarshal(resp.Body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
