package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"catalog-cli/internal/model"
	"catalog-cli/internal/session"

	"golang.org/x/sync/errgroup"
)

// DashboardData is one consistent snapshot of the dashboard.
type DashboardData struct {
	Overview model.CatalogOverview `json:"overview" yaml:"overview"`
	Pending  []model.PendingItem   `json:"pending" yaml:"pending"`
	LoadedAt time.Time             `json:"loadedAt" yaml:"loadedAt"`
}

type Dashboard struct {
	client API
	sess   session.Session
	log    *slog.Logger

	mu      sync.Mutex
	data    DashboardData
	loaded  bool
	lastErr error
}

func NewDashboard(client API, sess session.Session, logger *slog.Logger) *Dashboard {
	return &Dashboard{client: client, sess: sess, log: logger.With("page", "dashboard")}
}

// Fetch loads catalog stats and the user's pending items in parallel.
// Either failing fails the whole load.
func (d *Dashboard) Fetch(ctx context.Context) (DashboardData, error) {
	var out DashboardData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ov, err := d.client.CatalogStats(gctx, d.sess)
		if err != nil {
			return err
		}
		out.Overview = ov
		return nil
	})
	g.Go(func() error {
		items, err := d.client.MyPendingItems(gctx, d.sess, model.StatusPendingApproval, d.sess.User.ID)
		if err != nil {
			return err
		}
		out.Pending = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return DashboardData{}, err
	}
	out.LoadedAt = time.Now()
	return out, nil
}

// Apply records a Fetch outcome. A failure keeps the previous snapshot.
func (d *Dashboard) Apply(data DashboardData, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.lastErr = err
		d.log.Warn("dashboard load failed", slog.String("error", err.Error()))
		return
	}
	d.data = data
	d.loaded = true
	d.lastErr = nil
}

func (d *Dashboard) Refresh(ctx context.Context) error {
	data, err := d.Fetch(ctx)
	d.Apply(data, err)
	return err
}

func (d *Dashboard) Data() DashboardData {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data
}

func (d *Dashboard) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

func (d *Dashboard) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}
