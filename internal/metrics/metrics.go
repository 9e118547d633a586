package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parser_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	RawMessagesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parser_raw_messages_total",
			Help: "Total number of raw messages stored, by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)
	VacanciesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parser_vacancies_total",
			Help: "Total number of vacancy records stored, by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)
	ParsingErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parser_parsing_errors_total",
			Help: "Total number of messages parsed with missing fields.",
		},
		[]string{"channel"},
	)
	FetchedPagesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parser_fetched_pages_total",
			Help: "Total number of detail page fetches, by status code.",
		},
		[]string{"status"},
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parser_run_duration_seconds",
			Help:    "Duration of each ingestion run in seconds.",
			Buckets: []float64{10, 60, 300, 900, 1800, 3600},
		},
	)
)

func StartMetricsServer(port int) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(RawMessagesCounter)
	prometheus.MustRegister(VacanciesCounter)
	prometheus.MustRegister(ParsingErrorsCounter)
	prometheus.MustRegister(FetchedPagesCounter)
	prometheus.MustRegister(RunDuration)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), nil))
	}()
}
