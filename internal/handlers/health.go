package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"vehicle-match-engine/internal/services/catalog"
)

// ServiceName is reported by the health check.
const ServiceName = "vehicle-match-engine"

// Checker pings one dependency.
type Checker func(ctx context.Context) error

// HealthHandler handles health check requests.
type HealthHandler struct {
	database Checker
	cache    Checker
	catalog  *catalog.Snapshot
}

// NewHealthHandler creates a health handler. Nil checkers are reported as not configured.
func NewHealthHandler(database, cache Checker, snapshot *catalog.Snapshot) *HealthHandler {
	return &HealthHandler{
		database: database,
		cache:    cache,
		catalog:  snapshot,
	}
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Stage     string `json:"stage"`
	Database  string `json:"database,omitempty"`
	Cache     string `json:"cache,omitempty"`
	Vehicles  int    `json:"vehicles"`
}

// Check probes every dependency and returns the report with its HTTP status.
func (h *HealthHandler) Check(ctx context.Context) (HealthResponse, int) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   ServiceName,
		Version:   getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		Stage:     getEnvOrDefault("STAGE", "unknown"),
	}

	response.Database = probe(ctx, h.database, &response.Status)
	response.Cache = probe(ctx, h.cache, &response.Status)

	if h.catalog != nil {
		response.Vehicles = h.catalog.Len()
	}
	// An empty catalog cannot rank anything.
	if response.Vehicles == 0 {
		response.Status = "degraded"
	}

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	return response, statusCode
}

func probe(ctx context.Context, check Checker, status *string) string {
	if check == nil {
		return "not configured"
	}
	if err := check(ctx); err != nil {
		*status = "degraded"
		return "disconnected"
	}
	return "connected"
}

// Handle processes health check requests.
func (h *HealthHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{
		"Access-Control-Allow-Origin": "*",
		"Content-Type":                "application/json",
	}

	response, statusCode := h.Check(ctx)
	return jsonResponse(headers, statusCode, response)
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
