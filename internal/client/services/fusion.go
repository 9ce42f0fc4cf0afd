package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/agrisense/internal/client/client"
	"github.com/dmitrijs2005/agrisense/internal/client/models"
	"github.com/dmitrijs2005/agrisense/internal/client/repositories/snapshots"
	"github.com/dmitrijs2005/agrisense/internal/common"
	"github.com/dmitrijs2005/agrisense/internal/logging"
	"github.com/dmitrijs2005/agrisense/internal/ndvi"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

const (
	pathDashboard = "/fusion/dashboard"
	pathAdvisory  = "/fusion/advisory/"
)

// ErrCropRequired is returned by Advisory for a blank crop.
var ErrCropRequired = errors.New("crop is required")

// ProfileSource yields the current user's profile. AuthService implements it.
type ProfileSource interface {
	Me(ctx context.Context) (*models.User, error)
}

// Overview is the dashboard and advisory for one crop, fetched together.
// Each half carries its own error.
type Overview struct {
	Crop         string
	Dashboard    *models.Dashboard
	DashboardErr error
	Advisory     *models.Advisory
	AdvisoryErr  error
}

// CachedDashboard is a dashboard served from the local snapshot store.
type CachedDashboard struct {
	Dashboard *models.Dashboard
	FetchedAt time.Time
}

type FusionService interface {
	Dashboard(ctx context.Context, crop string) (*models.Dashboard, error)
	Advisory(ctx context.Context, crop string) (*models.Advisory, error)
	PreferredCrop(ctx context.Context) string
	Overview(ctx context.Context, crop string) (*Overview, error)
	CropHealth(d *models.Dashboard, crop string) ndvi.Summary
	CachedDashboard(ctx context.Context, crop string) (*CachedDashboard, error)
}

type fusionService struct {
	client    client.Client
	profiles  ProfileSource
	snapshots snapshots.Repository
	log       logging.Logger
	now       func() time.Time
}

// NewFusionService builds the Fusion Engine service. snaps may be nil, in
// which case dashboards are not kept for offline use.
func NewFusionService(c client.Client, profiles ProfileSource, snaps snapshots.Repository, log logging.Logger) FusionService {
	return &fusionService{client: c, profiles: profiles, snapshots: snaps, log: log, now: time.Now}
}

func (f *fusionService) Dashboard(ctx context.Context, crop string) (*models.Dashboard, error) {
	path := pathDashboard
	crop = strings.TrimSpace(crop)
	if crop != "" {
		path += "?" + url.Values{"crop": {crop}}.Encode()
	}

	var raw json.RawMessage
	if err := f.client.Invoke(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	d, err := decodeDashboard(raw)
	if err != nil {
		return nil, fmt.Errorf("load dashboard: %w", client.NewClientError(err))
	}

	if f.snapshots != nil {
		key := snapshotKey(crop)
		if err := f.snapshots.Save(ctx, key, raw, f.now()); err != nil {
			f.log.Warn(ctx, "cannot store dashboard snapshot", "crop", key, "error", err)
		}
	}
	return d, nil
}

// AllCropsSnapshot keys the snapshot of an unfiltered dashboard, so it
// never shadows a single crop's data.
const AllCropsSnapshot = "all"

func snapshotKey(crop string) string {
	if crop = strings.TrimSpace(crop); crop != "" {
		return crop
	}
	return AllCropsSnapshot
}

func decodeDashboard(raw []byte) (*models.Dashboard, error) {
	var d models.Dashboard
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode dashboard: %w", err)
		}
	}
	d.Normalize()
	return &d, nil
}

// CachedDashboard returns the last stored dashboard for crop, or
// client.ErrLocalDataNotAvailable.
func (f *fusionService) CachedDashboard(ctx context.Context, crop string) (*CachedDashboard, error) {
	if f.snapshots == nil {
		return nil, client.ErrLocalDataNotAvailable
	}
	s, err := f.snapshots.Get(ctx, snapshotKey(crop))
	if errors.Is(err, common.ErrorNotFound) {
		return nil, client.ErrLocalDataNotAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	d, err := decodeDashboard(s.Payload)
	if err != nil {
		return nil, err
	}
	return &CachedDashboard{Dashboard: d, FetchedAt: s.FetchedAt}, nil
}

func (f *fusionService) Advisory(ctx context.Context, crop string) (*models.Advisory, error) {
	crop = strings.TrimSpace(crop)
	if crop == "" {
		return nil, client.NewClientError(ErrCropRequired)
	}
	var a models.Advisory
	if err := f.client.Invoke(ctx, http.MethodGet, pathAdvisory+url.PathEscape(strings.ToLower(crop)), nil, &a); err != nil {
		return nil, fmt.Errorf("load advisory for %s: %w", crop, err)
	}
	a.Normalize()
	return &a, nil
}

// PreferredCrop is the crop from the user's profile. Failures are logged
// and yield common.DefaultCrop.
func (f *fusionService) PreferredCrop(ctx context.Context) string {
	if f.profiles == nil {
		return common.DefaultCrop
	}
	u, err := f.profiles.Me(ctx)
	if err != nil {
		f.log.Debug(ctx, "preferred crop unavailable, using default", "error", err)
		return common.DefaultCrop
	}
	if c := strings.TrimSpace(u.Crop); c != "" {
		return strings.ToLower(c)
	}
	return common.DefaultCrop
}

// Overview fetches the dashboard and the advisory for crop concurrently.
// The returned error is non-nil only when both halves failed.
func (f *fusionService) Overview(ctx context.Context, crop string) (*Overview, error) {
	if strings.TrimSpace(crop) == "" {
		crop = f.PreferredCrop(ctx)
	}
	ov := &Overview{Crop: crop}

	var g errgroup.Group
	g.Go(func() error {
		ov.Dashboard, ov.DashboardErr = f.Dashboard(ctx, crop)
		return nil
	})
	g.Go(func() error {
		ov.Advisory, ov.AdvisoryErr = f.Advisory(ctx, crop)
		return nil
	})
	_ = g.Wait()

	if ov.DashboardErr != nil && ov.AdvisoryErr != nil {
		return ov, errors.Join(ov.DashboardErr, ov.AdvisoryErr)
	}
	return ov, nil
}

// CropHealth summarises the crop-health card for crop. A crop missing from
// the dashboard yields a summary built from the dashboard-wide history only.
func (f *fusionService) CropHealth(d *models.Dashboard, crop string) ndvi.Summary {
	if d == nil {
		return ndvi.Summarize(nil, nil, nil)
	}
	h, ok := d.Health(crop)
	if !ok {
		return ndvi.Summarize(nil, nil, samples(d.NDVIHistory))
	}
	return ndvi.Summarize(h.NDVI, h.NDVIChange, samples(h.History))
}

func samples(in []models.NDVISample) []ndvi.Sample {
	out := make([]ndvi.Sample, len(in))
	for i, s := range in {
		out[i] = ndvi.Sample{Timestamp: s.Date, NDVI: s.NDVI}
	}
	return out
}
