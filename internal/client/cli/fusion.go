package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/agrisense/internal/client/client"
)

var nowFn = time.Now

func (a *App) cropArg(ctx context.Context, args []string) string {
	if c := joinArgs(args); c != "" {
		return strings.ToLower(c)
	}
	return a.fusion.PreferredCrop(ctx)
}

// Dashboard shows the Fusion Engine dashboard for a crop (default: the
// profile crop). When the backend cannot be reached the last stored
// snapshot is shown instead.
func (a *App) Dashboard(ctx context.Context, args []string) error {
	crop := a.cropArg(ctx, args)

	d, err := a.fusion.Dashboard(ctx, crop)
	if err == nil {
		a.setMode(ModeOnline)
		a.renderDashboard(d, crop)
		return nil
	}
	if !errors.Is(err, client.ErrUnreachable) {
		return err
	}

	a.setMode(ModeOffline)
	cached, cerr := a.fusion.CachedDashboard(ctx, crop)
	if cerr != nil {
		if !errors.Is(cerr, client.ErrLocalDataNotAvailable) {
			a.log.Warn(ctx, "cannot read dashboard snapshot", "crop", crop, "error", cerr)
		}
		return err
	}
	a.printf("Offline: showing data saved %s.\n", since(cached.FetchedAt, nowFn()))
	a.renderDashboard(cached.Dashboard, crop)
	return nil
}

func (a *App) Advisory(ctx context.Context, args []string) error {
	if _, err := requireArg(args, "advisory <crop>"); err != nil {
		return err
	}
	ad, err := a.fusion.Advisory(ctx, joinArgs(args))
	if err != nil {
		return err
	}
	a.renderAdvisory(ad)
	return nil
}

// Overview loads the dashboard and the advisory together and shows
// whichever arrived.
func (a *App) Overview(ctx context.Context, args []string) error {
	crop := a.cropArg(ctx, args)

	ov, err := a.fusion.Overview(ctx, crop)
	if err != nil {
		return err
	}
	if ov.Dashboard != nil {
		a.renderDashboard(ov.Dashboard, ov.Crop)
	} else {
		a.printf("Dashboard unavailable: %s\n", client.Message(ov.DashboardErr))
	}
	a.println()
	if ov.Advisory != nil {
		a.renderAdvisory(ov.Advisory)
	} else {
		a.printf("Advisory unavailable: %s\n", client.Message(ov.AdvisoryErr))
	}
	return nil
}
