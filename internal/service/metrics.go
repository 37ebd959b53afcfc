package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sergis_author_registrations_total",
		Help: "Total number of successful author registrations.",
	})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sergis_author_logins_total",
		Help: "Total number of login attempts by status.",
	}, []string{"status"})

	gameSavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sergis_game_saves_total",
		Help: "Total number of saved game documents.",
	})

	gamePreviewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sergis_game_previews_total",
		Help: "Total number of stored game previews.",
	})

	gamePublishesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sergis_game_publishes_total",
		Help: "Total number of published games by access level.",
	}, []string{"access"})
)
