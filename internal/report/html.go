package report

import (
	"context"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/inat-tools/rarities/internal/model"
	"github.com/inat-tools/rarities/pkg/inat"
)

// ReportHTML is the name of the rendered page inside the output dir.
const ReportHTML = "report.html"

const (
	taxonPageBase       = "https://www.inaturalist.org/taxa/"
	observationPageBase = "https://www.inaturalist.org/observations/"
)

// MediaSource is the slice of the API client the renderer uses to decorate
// rows with photos. A nil source renders the page without images; a failed
// lookup degrades the same way.
type MediaSource interface {
	TaxaByIDs(ctx context.Context, ids []int64) ([]inat.Taxon, error)
	ObservationsByIDs(ctx context.Context, ids []int64) ([]inat.Observation, error)
}

// HTMLRenderer writes the report as one self-contained page.
type HTMLRenderer struct {
	media   MediaSource
	printer *message.Printer
}

func NewHTMLRenderer(media MediaSource) *HTMLRenderer {
	return &HTMLRenderer{
		media:   media,
		printer: message.NewPrinter(language.English),
	}
}

// Write renders the page to dir/report.html.
func (h *HTMLRenderer) Write(ctx context.Context, rep *model.Report, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "report: creating output dir %s", dir)
	}

	view := h.buildView(ctx, rep)

	path := filepath.Join(dir, ReportHTML)
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if err := reportTemplate.Execute(f, view); err != nil {
		return eris.Wrapf(err, "report: render %s", path)
	}
	return nil
}

type reportView struct {
	Login        string
	Name         string
	RunID        string
	Generated    string
	SpeciesTotal string
	ScannedNew   string
	CacheHits    string
	Least        []rowView
	Oldest       []rowView
}

type rowView struct {
	Position       int
	DisplayName    string
	Scientific     string
	Rank           string
	TaxonURL       string
	PhotoURL       string
	UserCount      string
	GlobalCount    string
	ObservedAt     string
	ObservationURL string
	Observer       string
	NeverSeen      bool
}

func (h *HTMLRenderer) buildView(ctx context.Context, rep *model.Report) reportView {
	taxonPhotos, obsPhotos := h.lookupPhotos(ctx, rep)

	view := reportView{
		Login:        rep.UserLogin,
		Name:         rep.UserName,
		RunID:        rep.RunID,
		Generated:    rep.GeneratedAt.Format("2 Jan 2006 15:04 MST"),
		SpeciesTotal: h.printer.Sprintf("%d", rep.SpeciesTotal),
		ScannedNew:   h.printer.Sprintf("%d", rep.ScannedNew),
		CacheHits:    h.printer.Sprintf("%d", rep.CacheHits),
	}
	for i, r := range rep.LeastObserved {
		view.Least = append(view.Least, h.buildRow(i+1, r, taxonPhotos[r.Species.TaxonID]))
	}
	for i, r := range rep.OldestSeen {
		photo := obsPhotos[r.Recency.ObservationID]
		if photo == "" {
			photo = taxonPhotos[r.Species.TaxonID]
		}
		view.Oldest = append(view.Oldest, h.buildRow(i+1, r, photo))
	}
	return view
}

func (h *HTMLRenderer) buildRow(pos int, r model.EnrichedRecord, photoURL string) rowView {
	row := rowView{
		Position:    pos,
		DisplayName: r.Species.DisplayName(),
		Scientific:  r.Species.Name,
		Rank:        r.Species.Rank,
		TaxonURL:    taxonPageBase + formatID(r.Species.TaxonID),
		PhotoURL:    photoURL,
		UserCount:   h.printer.Sprintf("%d", r.Species.UserCount),
		GlobalCount: h.printer.Sprintf("%d", r.GlobalCount),
		NeverSeen:   r.Recency.Empty(),
	}
	if r.Recency.ObservedAt != "" {
		row.ObservedAt = formatDay(r.Recency.ObservedAt)
	}
	if r.Recency.ObservationID != 0 {
		row.ObservationURL = observationPageBase + formatID(r.Recency.ObservationID)
	}
	row.Observer = r.Recency.ObserverLogin
	return row
}

// lookupPhotos resolves a display photo per taxon and per linked
// observation in two batched requests. Any failure just means fewer images.
func (h *HTMLRenderer) lookupPhotos(ctx context.Context, rep *model.Report) (map[int64]string, map[int64]string) {
	if h.media == nil {
		return nil, nil
	}

	taxonSet := map[int64]struct{}{}
	obsSet := map[int64]struct{}{}
	for _, r := range append(append([]model.EnrichedRecord{}, rep.LeastObserved...), rep.OldestSeen...) {
		taxonSet[r.Species.TaxonID] = struct{}{}
		if r.Recency.ObservationID != 0 {
			obsSet[r.Recency.ObservationID] = struct{}{}
		}
	}

	taxonPhotos := map[int64]string{}
	if ids := sortedIDs(taxonSet); len(ids) > 0 {
		taxa, err := h.media.TaxaByIDs(ctx, ids)
		if err != nil {
			zap.L().Warn("report: taxon photo lookup failed", zap.Error(err))
		}
		for _, t := range taxa {
			if t.DefaultPhoto != nil {
				taxonPhotos[t.ID] = t.DefaultPhoto.DisplayURL()
			}
		}
	}

	obsPhotos := map[int64]string{}
	if ids := sortedIDs(obsSet); len(ids) > 0 {
		obs, err := h.media.ObservationsByIDs(ctx, ids)
		if err != nil {
			zap.L().Warn("report: observation photo lookup failed", zap.Error(err))
		}
		for _, o := range obs {
			if len(o.Photos) > 0 {
				obsPhotos[o.ID] = o.Photos[0].DisplayURL()
			}
		}
	}
	return taxonPhotos, obsPhotos
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// formatDay renders a normalized timestamp as a calendar day.
func formatDay(observedAt string) string {
	ts, err := time.Parse(time.RFC3339, observedAt)
	if err != nil {
		return observedAt
	}
	return ts.UTC().Format("2 Jan 2006")
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Rarity report for {{.Login}}</title>
<style>
body { font-family: Georgia, serif; margin: 2rem auto; max-width: 72rem; color: #22301f; background: #f7f6f1; }
h1 { font-weight: normal; }
h1 .login { color: #4a7c42; }
p.meta { color: #6b7263; font-size: 0.9rem; }
h2 { margin-top: 2.5rem; border-bottom: 2px solid #4a7c42; padding-bottom: 0.3rem; font-weight: normal; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th { text-align: left; font-size: 0.8rem; text-transform: uppercase; letter-spacing: 0.05em; color: #6b7263; padding: 0.4rem 0.6rem; }
td { padding: 0.5rem 0.6rem; border-top: 1px solid #e0ddd2; vertical-align: middle; }
td.pos { color: #6b7263; width: 2rem; }
td.count { text-align: right; font-variant-numeric: tabular-nums; }
td.never { color: #a08c3a; font-style: italic; }
img.thumb { width: 48px; height: 48px; object-fit: cover; border-radius: 4px; }
a { color: #2f5d8a; text-decoration: none; }
a:hover { text-decoration: underline; }
.sci { font-style: italic; color: #6b7263; font-size: 0.9rem; }
</style>
</head>
<body>
<h1>Rarity report <span class="login">@{{.Login}}</span>{{if .Name}} ({{.Name}}){{end}}</h1>
<p class="meta">Generated {{.Generated}} &middot; {{.SpeciesTotal}} species &middot; {{.ScannedNew}} newly scanned &middot; {{.CacheHits}} from cache &middot; run {{.RunID}}</p>

<h2>Least observed worldwide</h2>
<table>
<tr><th></th><th></th><th>Species</th><th>Your obs</th><th>Global obs</th><th>Last seen by others</th><th>Observer</th></tr>
{{range .Least}}<tr>
<td class="pos">{{.Position}}</td>
<td>{{if .PhotoURL}}<img class="thumb" src="{{.PhotoURL}}" alt="">{{end}}</td>
<td><a href="{{.TaxonURL}}">{{.DisplayName}}</a><br><span class="sci">{{.Scientific}}</span></td>
<td class="count">{{.UserCount}}</td>
<td class="count">{{.GlobalCount}}</td>
{{if .NeverSeen}}<td class="never" colspan="2">no other observer found</td>{{else}}<td>{{if .ObservationURL}}<a href="{{.ObservationURL}}">{{.ObservedAt}}</a>{{else}}{{.ObservedAt}}{{end}}</td>
<td>{{.Observer}}</td>{{end}}
</tr>
{{end}}</table>

<h2>Longest since anyone else saw it</h2>
<table>
<tr><th></th><th></th><th>Species</th><th>Last seen by others</th><th>Observer</th><th>Your obs</th><th>Global obs</th></tr>
{{range .Oldest}}<tr>
<td class="pos">{{.Position}}</td>
<td>{{if .PhotoURL}}<img class="thumb" src="{{.PhotoURL}}" alt="">{{end}}</td>
<td><a href="{{.TaxonURL}}">{{.DisplayName}}</a><br><span class="sci">{{.Scientific}}</span></td>
<td>{{if .ObservationURL}}<a href="{{.ObservationURL}}">{{.ObservedAt}}</a>{{else}}{{.ObservedAt}}{{end}}</td>
<td>{{.Observer}}</td>
<td class="count">{{.UserCount}}</td>
<td class="count">{{.GlobalCount}}</td>
</tr>
{{end}}</table>
</body>
</html>
`))
