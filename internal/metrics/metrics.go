package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Domain metrics
	RecipesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_recipes_created_total",
			Help: "Total number of recipes created",
		},
	)

	SocialEdges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_social_edges_total",
			Help: "Follow, favorite and shopping cart edge mutations",
		},
		[]string{"kind", "action"}, // kind: follow|favorite|shopping_cart, action: add|remove
	)

	ShoppingListDownloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "Total number of shopping list downloads",
		},
	)

	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_storage_operations_total",
			Help: "Object storage operations by result",
		},
		[]string{"operation", "result"},
	)
)

func RecordSocialEdge(kind, action string) {
	SocialEdges.WithLabelValues(kind, action).Inc()
}

func RecordStorage(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	StorageOperations.WithLabelValues(operation, result).Inc()
}
