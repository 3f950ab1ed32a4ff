package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/raysh454/codeprobe/internal/logging"
	"github.com/raysh454/codeprobe/internal/model"
	"github.com/raysh454/codeprobe/internal/report"
	"github.com/raysh454/codeprobe/internal/session"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

type similarView struct {
	Similarity string
	Lines      []report.DiffLine
}

type dashboardView struct {
	Endpoint  EndpointResponse
	State     session.Snapshot
	Result    *model.AnalysisResult
	Summary   model.Summary
	Framework string
	Similar   []similarView
}

func newDashboardView(ep EndpointResponse, snap session.Snapshot) dashboardView {
	v := dashboardView{Endpoint: ep, State: snap, Result: snap.Result}
	if snap.Result == nil {
		return v
	}
	if snap.Summary != nil {
		v.Summary = *snap.Summary
	} else {
		v.Summary = model.Summarize(snap.Result)
	}
	v.Framework = report.FrameworkLabel(snap.Result)
	for _, b := range snap.Result.DuplicateCode.SimilarBlocks {
		v.Similar = append(v.Similar, similarView{
			Similarity: report.Percent(b.Similarity),
			Lines:      report.BlockDiff(b.Block1, b.Block2),
		})
	}
	return v
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view := newDashboardView(s.endpointResponse(), s.orchestrator.Tracker().Snapshot())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, view); err != nil {
		s.logger.Error("rendering dashboard", logging.Field{Key: "error", Value: err.Error()})
	}
}
