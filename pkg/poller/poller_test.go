package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rescp17/mailingDashboard/api"
	"github.com/rescp17/mailingDashboard/pkg/mailing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu        sync.Mutex
	statusErr error
	block     chan struct{}
	statuses  map[mailing.Region]int
	costs     int
}

func (f *fakeSource) Status(ctx context.Context, region mailing.Region) (api.StatusSnapshot, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = map[mailing.Region]int{}
	}
	f.statuses[region]++
	if f.statusErr != nil {
		return api.StatusSnapshot{}, f.statusErr
	}
	return api.StatusSnapshot{Region: region, Name: "MAILING_DISCADOR_" + string(region)}, nil
}

func (f *fakeSource) Costs(ctx context.Context) (api.CostSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.costs++
	return api.CostSnapshot{Balance: "R$ 10,00"}, nil
}

type collector struct {
	mu      sync.Mutex
	updates []Update
}

func (c *collector) add(u Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, u)
}

func (c *collector) snapshot() []Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Update(nil), c.updates...)
}

func TestRunFetchesImmediatelyAndStops(t *testing.T) {
	src := &fakeSource{}
	col := &collector{}
	p := New(src, Config{StatusInterval: time.Hour, CostsInterval: time.Hour}, col.add, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return len(col.snapshot()) == 3 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}

	var regions []mailing.Region
	costs := 0
	for _, u := range col.snapshot() {
		if u.Status != nil {
			regions = append(regions, u.Region)
			assert.Equal(t, u.Region, u.Status.Region)
		}
		if u.Costs != nil {
			costs++
		}
	}
	assert.ElementsMatch(t, []mailing.Region{mailing.RegionMG, mailing.RegionSP}, regions)
	assert.Equal(t, 1, costs)
}

func TestFetchStatusDeliversErrors(t *testing.T) {
	src := &fakeSource{statusErr: errors.New("gateway responded with non-OK status: 500")}
	col := &collector{}
	p := New(src, Config{}, col.add, nil)

	p.FetchStatus(context.Background(), mailing.RegionSP)

	updates := col.snapshot()
	require.Len(t, updates, 1)
	assert.Equal(t, mailing.RegionSP, updates[0].Region)
	assert.Error(t, updates[0].Err)
	assert.Nil(t, updates[0].Status)
}

func TestFetchStatusSkipsOverlappingTick(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	col := &collector{}
	p := New(src, Config{}, col.add, nil)

	first := make(chan struct{})
	go func() {
		p.FetchStatus(context.Background(), mailing.RegionMG)
		close(first)
	}()
	require.Eventually(t, func() bool { return p.guard.IsBusy("status:MG") }, time.Second, 5*time.Millisecond)

	p.FetchStatus(context.Background(), mailing.RegionMG)
	assert.Empty(t, col.snapshot(), "overlapping fetch is skipped silently")

	close(src.block)
	<-first
	assert.Len(t, col.snapshot(), 1)
}

func TestNewAppliesDefaults(t *testing.T) {
	p := New(&fakeSource{}, Config{}, nil, nil)
	assert.Equal(t, DefaultStatusInterval, p.cfg.StatusInterval)
	assert.Equal(t, DefaultCostsInterval, p.cfg.CostsInterval)
	assert.Equal(t, mailing.Regions(), p.cfg.Regions)
}

func TestRefreshFetchesEverything(t *testing.T) {
	src := &fakeSource{}
	col := &collector{}
	p := New(src, Config{}, col.add, nil)

	p.Refresh(context.Background())

	assert.Len(t, col.snapshot(), 3)
	assert.Equal(t, 1, src.costs)
	assert.Equal(t, 1, src.statuses[mailing.RegionMG])
	assert.Equal(t, 1, src.statuses[mailing.RegionSP])
}
