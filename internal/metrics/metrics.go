// Package metrics holds Prometheus instruments describing the resolved
// settings.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanizio/storefront/internal/config"
)

var (
	SettingsInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_settings_info",
			Help: "Constant 1, labelled with the active settings.",
		},
		[]string{"profile", "db_driver", "storage_backend", "debug"})

	SettingsResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_settings_resolve_total",
			Help: "Settings resolutions by outcome.",
		},
		[]string{"outcome"})

	SecretGenerated = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_secret_generated",
			Help: "1 when the signing secret was generated at startup.",
		})

	DatabaseMaxAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_database_conn_max_age_seconds",
			Help: "Connection reuse window applied to the pool.",
		})
)

func init() {
	prometheus.MustRegister(
		SettingsInfo,
		SettingsResolveTotal,
		SecretGenerated,
		DatabaseMaxAgeSeconds,
	)
}

// ObserveSnapshot records a successful resolution.
func ObserveSnapshot(snap *config.Snapshot) {
	SettingsResolveTotal.WithLabelValues("ok").Inc()

	SettingsInfo.Reset()
	SettingsInfo.WithLabelValues(
		snap.Profile.String(),
		string(snap.Database.Driver),
		string(snap.Storage.Backend),
		strconv.FormatBool(snap.Debug),
	).Set(1)

	if snap.SecretGenerated {
		SecretGenerated.Set(1)
	} else {
		SecretGenerated.Set(0)
	}
	DatabaseMaxAgeSeconds.Set(float64(snap.Database.MaxAge))
}

// ObserveResolveError records a failed resolution by error kind.
func ObserveResolveError(err error) {
	outcome := "error"
	if ce, ok := config.IsConfigError(err); ok {
		switch ce.Kind {
		case config.MissingRequiredValue:
			outcome = "missing_required"
		case config.MalformedValue:
			outcome = "malformed"
		}
	}
	SettingsResolveTotal.WithLabelValues(outcome).Inc()
}
