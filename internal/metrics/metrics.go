package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"RiskSentinel/internal/model"
)

var (
	PanelsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "risksentinel_panels_total", Help: "Risk panels built"},
		[]string{"symbol"},
	)
	FetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "risksentinel_fetch_errors_total", Help: "Failed history fetches"},
		[]string{"symbol"},
	)
	IndicatorLevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "risksentinel_indicator_level", Help: "Indicator level (0 low, 1 elevated, 2 high)"},
		[]string{"symbol", "indicator"},
	)
	RiskTemperature = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "risksentinel_risk_temperature", Help: "Composite risk temperature 0-100"},
		[]string{"symbol"},
	)
	PanelSeverity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "risksentinel_panel_severity", Help: "Panel severity (0 normal, 1 elevated, 2 high-risk)"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(PanelsTotal, FetchErrorsTotal, IndicatorLevel, RiskTemperature, PanelSeverity)
}

// ObservePanel exports one freshly built panel. Indicators missing from the
// panel have their level series removed.
func ObservePanel(p *model.Panel) {
	PanelsTotal.WithLabelValues(p.Symbol).Inc()
	PanelSeverity.WithLabelValues(p.Symbol).Set(float64(p.Severity))
	for _, name := range model.PanelOrder {
		r, ok := p.Get(name)
		if !ok {
			IndicatorLevel.DeleteLabelValues(p.Symbol, name)
			continue
		}
		IndicatorLevel.WithLabelValues(p.Symbol, name).Set(float64(r.Level))
		if name == model.NameTemperature && r.Metric != nil {
			RiskTemperature.WithLabelValues(p.Symbol).Set(*r.Metric)
		}
	}
}

// ObserveFetchError counts a failed collection for symbol.
func ObserveFetchError(symbol string) {
	FetchErrorsTotal.WithLabelValues(symbol).Inc()
}

// Serve exposes /metrics on addr in the background and returns the server for shutdown.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("metrics server listening")
	return srv
}
