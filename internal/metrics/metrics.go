package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	importsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nginxforge_imports_total",
		Help: "Total number of configuration imports",
	})
	generatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nginxforge_generates_total",
		Help: "Total number of configuration generations",
	})
	lintRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nginxforge_lint_runs_total",
		Help: "Total number of lint runs",
	})
	fixesAppliedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nginxforge_fixes_applied_total",
		Help: "Total number of lint fixes applied",
	})
	deploysTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nginxforge_deploys_total",
		Help: "Total number of site deploys by outcome",
	}, []string{"outcome"})
	siteHealthScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nginxforge_site_health_score",
		Help: "Most recent lint health score per site",
	}, []string{"site"})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(importsTotal, generatesTotal, lintRunsTotal,
		fixesAppliedTotal, deploysTotal, siteHealthScore)
}

// IncImport increments the import counter.
func IncImport() { importsTotal.Inc() }

// IncGenerate increments the generation counter.
func IncGenerate() { generatesTotal.Inc() }

// IncLintRun increments the lint run counter.
func IncLintRun() { lintRunsTotal.Inc() }

// AddFixesApplied adds to the applied fix counter.
func AddFixesApplied(n int) { fixesAppliedTotal.Add(float64(n)) }

// IncDeploy increments the deploy counter for the given outcome.
func IncDeploy(outcome string) { deploysTotal.WithLabelValues(outcome).Inc() }

// SetSiteHealthScore records the latest lint score for a site.
func SetSiteHealthScore(site string, score int) {
	siteHealthScore.WithLabelValues(site).Set(float64(score))
}
