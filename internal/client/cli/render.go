package cli

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/dmitrijs2005/agrisense/internal/client/models"
	"github.com/dmitrijs2005/agrisense/internal/ndvi"
)

const notAvailable = "n/a"

// clean makes user-generated text safe to print: markup is stripped, then
// entities are decoded and terminal control characters dropped.
func (a *App) clean(s string) string {
	s = html.UnescapeString(a.policy.Sanitize(s))
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func num(v *float64, format string) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf(format, *v)
}

func signed(v *float64, format string) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("%+"+strings.TrimPrefix(format, "%"), *v)
}

func (a *App) renderDashboard(d *models.Dashboard, crop string) {
	w := d.Weather
	a.printf("Weather %s\n", a.clean(w.Location))
	a.printf("  Temperature %s°C  Humidity %s%%  Rainfall %smm  Wind %skm/h\n",
		num(w.Temperature, "%.1f"), num(w.Humidity, "%.0f"), num(w.Rainfall, "%.1f"), num(w.WindSpeed, "%.1f"))

	if p, ok := d.Price(crop); ok {
		a.printf("Market  %s: %s %s (%s%%, %s)\n", crop, num(p.Price, "%.0f"), p.Unit, signed(p.ChangePercent, "%.1f"), p.Trend)
	} else {
		a.printf("Market  %s: %s\n", crop, notAvailable)
	}

	h, _ := d.Health(crop)
	a.renderHealth(a.fusion.CropHealth(d, crop), h)

	if s := d.Summary; s != nil {
		a.printf("Alerts  %d total, %d high priority, %d crops monitored\n", s.TotalAlerts, s.HighPriorityCount, s.CropsMonitored)
	}
	for _, al := range d.Alerts {
		a.printf("  [%s] %s (%s, confidence %s)\n", al.Level, a.clean(al.Title), al.Type, num(al.Confidence, "%.2f"))
	}
	if d.Timestamp != "" {
		a.printf("Updated %s\n", d.Timestamp)
	}
}

func (a *App) renderHealth(s ndvi.Summary, h models.CropHealth) {
	a.printf("Health  NDVI %s (%s)  change %s (%s)", num(s.Latest, "%.2f"), s.Level, signed(s.Change, "%.3f"), s.Trend)
	if bar := ndvi.Bar(s.Points); bar != "" {
		a.printf("  %s", bar)
	}
	a.println()
	if h.CropStage != "" || h.SoilMoisture != nil {
		a.printf("        stage %s  soil moisture %s%%\n", orNA(h.CropStage), num(h.SoilMoisture, "%.0f"))
	}
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func (a *App) renderAdvisory(ad *models.Advisory) {
	a.printf("Advisory for %s: priority %s, rule score %s\n", a.clean(ad.Crop), ad.Priority, num(ad.RuleScore, "%.2f"))
	a.printf("  %s\n", a.clean(ad.Analysis))
	if len(ad.FiredRules) > 0 {
		a.printf("  Rules: %s\n", strings.Join(ad.FiredRules, ", "))
	}
	for i, r := range ad.Recommendations {
		a.printf("  %d. [%s] %s: %s", i+1, r.Priority, a.clean(r.Title), a.clean(r.Desc))
		if r.Timeline != "" {
			a.printf(" (%s)", r.Timeline)
		}
		a.println()
	}
}

func (a *App) renderPosts(posts []models.Post) {
	if len(posts) == 0 {
		a.println("No posts yet.")
		return
	}
	for _, p := range posts {
		a.renderPost(p)
	}
}

func (a *App) renderPost(p models.Post) {
	liked := ""
	if p.IsLiked {
		liked = " ♥"
	}
	meta := []string{}
	for _, m := range []string{p.Crop, p.Category, p.Region} {
		if m != "" {
			meta = append(meta, a.clean(m))
		}
	}
	a.printf("#%d %s", p.ID, a.clean(p.AuthorName))
	if len(meta) > 0 {
		a.printf(" [%s]", strings.Join(meta, ", "))
	}
	if p.CreatedAt != "" {
		a.printf(" %s", p.CreatedAt)
	}
	a.println()
	a.printf("  %s\n", strings.ReplaceAll(a.clean(p.Content), "\n", "\n  "))
	if p.ImageURL != "" {
		a.printf("  image: %s\n", a.clean(p.ImageURL))
	}
	a.printf("  %d likes%s, %d comments\n", p.Likes(), liked, p.Comments())
}

func (a *App) renderComments(list []models.Comment) {
	if len(list) == 0 {
		a.println("No comments yet.")
		return
	}
	for _, c := range list {
		a.printf("  %s: %s\n", a.clean(c.AuthorName), a.clean(c.Content))
	}
}

func (a *App) renderContributors(list []models.Contributor) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].PostsCount > list[j].PostsCount })
	for i, c := range list {
		a.printf("%d. %s (%d posts)\n", i+1, a.clean(c.Name), c.PostsCount)
	}
}

func since(t time.Time, now time.Time) string {
	d := now.Sub(t).Round(time.Minute)
	if d < time.Minute {
		return "just now"
	}
	return d.String() + " ago"
}
