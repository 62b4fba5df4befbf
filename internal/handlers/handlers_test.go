package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-match-engine/internal/handlers"
	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/catalog"
	"vehicle-match-engine/internal/services/profiles"
	s3service "vehicle-match-engine/internal/services/s3"
	"vehicle-match-engine/internal/services/scoring"
	"vehicle-match-engine/internal/services/ses"
)

func fixtureVehicles() []models.Vehicle {
	return []models.Vehicle{
		{ID: 1, Name: "Corolla", Trim: "LE", Year: 2025, Price: 22000, BodyType: models.BodyTypeSedan, FuelType: models.FuelTypeGas},
		{ID: 2, Name: "Prius", Trim: "XLE", Year: 2025, Price: 32000, BodyType: models.BodyTypeHatchback, FuelType: models.FuelTypeHybrid, MPGCity: 57, MPGHighway: 56},
		{ID: 3, Name: "RAV4", Trim: "Prime", Year: 2025, Price: 44000, BodyType: models.BodyTypeSUV, FuelType: models.FuelTypePlugInHybrid},
		{ID: 4, Name: "bZ4X", Trim: "Limited", Year: 2025, Price: 49000, BodyType: models.BodyTypeSUV, FuelType: models.FuelTypeEV},
		{ID: 5, Name: "Sequoia", Trim: "Capstone", Year: 2025, Price: 82000, BodyType: models.BodyTypeSUV, FuelType: models.FuelTypeHybrid},
	}
}

func newRanker(repo profiles.Repository) *handlers.Ranker {
	return handlers.NewRanker(
		scoring.NewEngine(scoring.WithJitter(false)),
		catalog.NewSnapshot(fixtureVehicles()),
		repo,
	)
}

func decode(t *testing.T, body string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), v))
}

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("empty catalog is degraded", func(t *testing.T) {
		h := handlers.NewHealthHandler(nil, nil, catalog.NewSnapshot(nil))
		resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{})
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body handlers.HealthResponse
		decode(t, resp.Body, &body)
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "not configured", body.Database)
		assert.Equal(t, handlers.ServiceName, body.Service)
	})

	t.Run("all dependencies up", func(t *testing.T) {
		h := handlers.NewHealthHandler(ok, ok, catalog.NewSnapshot(fixtureVehicles()))
		report, status := h.Check(context.Background())
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "healthy", report.Status)
		assert.Equal(t, "connected", report.Database)
		assert.Equal(t, "connected", report.Cache)
		assert.Equal(t, 5, report.Vehicles)
	})

	t.Run("database down", func(t *testing.T) {
		h := handlers.NewHealthHandler(down, ok, catalog.NewSnapshot(fixtureVehicles()))
		report, status := h.Check(context.Background())
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "disconnected", report.Database)
		assert.Equal(t, "connected", report.Cache)
	})
}

func TestRankHandler(t *testing.T) {
	store := profiles.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), &models.UserProfile{UserID: "u1", FuelPreference: "ev", BodyTypePreference: "suv"}))
	h := handlers.NewRankHandler(newRanker(store))

	call := func(method, body string) events.APIGatewayProxyResponse {
		resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: method, Body: body})
		require.NoError(t, err)
		return resp
	}

	t.Run("preflight", func(t *testing.T) {
		resp := call(http.MethodOptions, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "POST,OPTIONS", resp.Headers["Access-Control-Allow-Methods"])
	})

	t.Run("wrong method", func(t *testing.T) {
		assert.Equal(t, http.StatusMethodNotAllowed, call(http.MethodGet, "").StatusCode)
	})

	t.Run("invalid body", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, call(http.MethodPost, "{").StatusCode)
	})

	t.Run("unknown user", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, call(http.MethodPost, `{"user_id":"ghost"}`).StatusCode)
	})

	t.Run("inline profile", func(t *testing.T) {
		resp := call(http.MethodPost, `{"profile":{"fuel_preference":"hybrid"},"limit":2}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body handlers.RankResponse
		decode(t, resp.Body, &body)
		assert.Equal(t, 4, body.Matched, "default filters drop vehicles over the price slider")
		require.Len(t, body.Results, 2)
		assert.GreaterOrEqual(t, body.Results[0].Score, body.Results[1].Score)
		for _, r := range body.Results {
			assert.Equal(t, r.Vehicle.Price, r.Estimate.Price)
			assert.Positive(t, r.Estimate.MonthlyPayment)
		}
	})

	t.Run("stored profile", func(t *testing.T) {
		resp := call(http.MethodPost, `{"user_id":"u1","filters":{"priceMin":0,"priceMax":80000,"bodyTypes":["SUV"]}}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body handlers.RankResponse
		decode(t, resp.Body, &body)
		assert.Equal(t, "u1", body.UserID)
		assert.Equal(t, 2, body.Matched)
		require.NotEmpty(t, body.Results)
		assert.Equal(t, "bZ4X", body.Results[0].Vehicle.Name, "the EV matches both stored preferences")
	})

	t.Run("empty body ranks an empty profile", func(t *testing.T) {
		resp := call(http.MethodPost, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body handlers.RankResponse
		decode(t, resp.Body, &body)
		assert.Len(t, body.Results, 4)
		for _, r := range body.Results {
			assert.GreaterOrEqual(t, r.Score, models.MinCompatibilityScore)
			assert.LessOrEqual(t, r.Score, models.MaxCompatibilityScore)
		}
	})
}

type fakeStore struct {
	objects  map[string][]byte
	uploads  map[string][]byte
	moved    map[string]string
	downErr  error
	moveErr  error
	uploadCT string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects: make(map[string][]byte),
		uploads: make(map[string][]byte),
		moved:   make(map[string]string),
	}
}

func (f *fakeStore) DownloadFile(_ context.Context, key string) ([]byte, error) {
	if f.downErr != nil {
		return nil, f.downErr
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (f *fakeStore) UploadFile(_ context.Context, key string, data []byte, contentType string) error {
	f.uploads[key] = data
	f.uploadCT = contentType
	return nil
}

func (f *fakeStore) MoveFile(_ context.Context, src, dst string) error {
	if f.moveErr != nil {
		return f.moveErr
	}
	f.moved[src] = dst
	return nil
}

func s3Event(key string) events.S3Event {
	return events.S3Event{Records: []events.S3EventRecord{{
		S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: "vehicle-catalog-test"},
			Object: events.S3Object{Key: key},
		},
	}}}
}

const lineup = `[
  {"id": 1, "name": "Camry", "trim": "LE", "year": 2025, "price": 28400, "bodyType": "Sedan", "fuelType": "Hybrid"},
  {"id": 2, "name": 42}
]`

func TestCatalogImportHandler(t *testing.T) {
	normalizer, err := catalog.NewNormalizer()
	require.NoError(t, err)

	t.Run("imports and archives", func(t *testing.T) {
		store := newFakeStore()
		store.objects["uploads/toyota lineup.json"] = []byte(lineup)
		h := handlers.NewCatalogImportHandler(store, normalizer, "normalized")

		result, err := h.Handle(context.Background(), s3Event("uploads/toyota%20lineup.json"))
		require.NoError(t, err)

		assert.Equal(t, "Catalog imported successfully", result.Message)
		assert.NotEmpty(t, result.BatchID)
		assert.Equal(t, 1, result.Vehicles)
		assert.Equal(t, 1, result.Rejected)
		assert.Len(t, result.Errors, 1)
		assert.Equal(t, "normalized/toyota lineup.json", result.NormalizedKey)

		var vehicles []models.Vehicle
		require.NoError(t, json.Unmarshal(store.uploads[result.NormalizedKey], &vehicles))
		require.Len(t, vehicles, 1)
		assert.Equal(t, "Camry", vehicles[0].Name)
		assert.Equal(t, "application/json", store.uploadCT)

		assert.Equal(t, "processed/uploads/toyota lineup.json", store.moved["uploads/toyota lineup.json"])
	})

	t.Run("normalized output imports again unchanged", func(t *testing.T) {
		store := newFakeStore()
		store.objects["uploads/a.json"] = []byte(lineup)
		h := handlers.NewCatalogImportHandler(store, normalizer, "normalized/")

		first, err := h.Import(context.Background(), "uploads/a.json")
		require.NoError(t, err)

		store.objects["uploads/b.json"] = store.uploads[first.NormalizedKey]
		second, err := h.Import(context.Background(), "uploads/b.json")
		require.NoError(t, err)
		assert.Equal(t, 1, second.Vehicles)
		assert.Zero(t, second.Rejected)
		assert.JSONEq(t, string(store.uploads[first.NormalizedKey]), string(store.uploads[second.NormalizedKey]))
	})

	t.Run("archive failure is not fatal", func(t *testing.T) {
		store := newFakeStore()
		store.objects["uploads/a.json"] = []byte(lineup)
		store.moveErr = errors.New("access denied")
		h := handlers.NewCatalogImportHandler(store, normalizer, "normalized/")

		result, err := h.Import(context.Background(), "uploads/a.json")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Vehicles)
	})

	t.Run("empty document", func(t *testing.T) {
		store := newFakeStore()
		store.objects["uploads/empty.json"] = []byte(`[]`)
		h := handlers.NewCatalogImportHandler(store, normalizer, "normalized/")

		result, err := h.Import(context.Background(), "uploads/empty.json")
		require.NoError(t, err)
		assert.Equal(t, "No vehicles found in document", result.Message)
		assert.Empty(t, store.uploads)
		assert.Empty(t, store.moved)
	})

	t.Run("non JSON object is skipped", func(t *testing.T) {
		store := newFakeStore()
		h := handlers.NewCatalogImportHandler(store, normalizer, "normalized/")

		result, err := h.Handle(context.Background(), s3Event("uploads/readme.txt"))
		require.NoError(t, err)
		assert.Equal(t, "Skipped non-JSON object", result.Message)
	})

	t.Run("download failure", func(t *testing.T) {
		store := newFakeStore()
		store.downErr = errors.New("timeout")
		h := handlers.NewCatalogImportHandler(store, normalizer, "normalized/")

		_, err := h.Handle(context.Background(), s3Event("uploads/a.json"))
		require.Error(t, err)
	})

	t.Run("no records", func(t *testing.T) {
		h := handlers.NewCatalogImportHandler(newFakeStore(), normalizer, "normalized/")
		result, err := h.Handle(context.Background(), events.S3Event{})
		require.NoError(t, err)
		assert.Equal(t, "No records to process", result.Message)
	})
}

type fakePresigner struct {
	err  error
	keys []string
}

func (f *fakePresigner) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ int) (*s3service.PresignedURLResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.keys = append(f.keys, key)
	return &s3service.PresignedURLResult{URL: "https://s3.test/" + key, Key: key}, nil
}

func TestPresignedURLHandler(t *testing.T) {
	request := func(filename string) events.APIGatewayProxyRequest {
		return events.APIGatewayProxyRequest{
			HTTPMethod:            http.MethodGet,
			QueryStringParameters: map[string]string{"filename": filename},
		}
	}

	t.Run("json upload", func(t *testing.T) {
		presigner := &fakePresigner{}
		h := handlers.NewPresignedURLHandler(presigner, "uploads")

		resp, err := h.Handle(context.Background(), request("lineup 2025.json"))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body handlers.PresignedURLResponse
		decode(t, resp.Body, &body)
		assert.True(t, strings.HasPrefix(body.S3Key, "uploads/"))
		assert.True(t, strings.HasSuffix(body.S3Key, "_lineup2025.json"))
		assert.Equal(t, "https://s3.test/"+body.S3Key, body.UploadURL)
		assert.Equal(t, 3600, body.ExpiresIn)
	})

	t.Run("rejects other extensions", func(t *testing.T) {
		h := handlers.NewPresignedURLHandler(&fakePresigner{}, "uploads/")
		resp, err := h.Handle(context.Background(), request("lineup.csv"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("presign failure", func(t *testing.T) {
		h := handlers.NewPresignedURLHandler(&fakePresigner{err: errors.New("no credentials")}, "uploads/")
		resp, err := h.Handle(context.Background(), request("lineup.json"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

type fakeMailer struct {
	sent []ses.RecommendationParams
}

func (f *fakeMailer) SendRecommendations(_ context.Context, params ses.RecommendationParams) (*ses.SendEmailResult, error) {
	if params.UserEmail == "" {
		return nil, ses.ErrNoRecipient
	}
	f.sent = append(f.sent, params)
	return &ses.SendEmailResult{MessageID: "msg-1"}, nil
}

func TestRecommendationHandler(t *testing.T) {
	mailer := &fakeMailer{}
	h := handlers.NewRecommendationHandler(newRanker(profiles.NewMemoryStore()), mailer, "https://dealer.test/inventory")

	post := func(body string) events.APIGatewayProxyResponse {
		resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Body: body})
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, http.StatusBadRequest, post(`not json`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(`{}`).StatusCode)
	assert.Equal(t, http.StatusNotFound, post(`{"user_id":"ghost"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(`{"profile":{"name":"Sam"}}`).StatusCode, "no email address")

	resp := post(`{"profile":{"name":"Sam","fuel_preference":"hybrid"},"email":"sam@example.com"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.RecommendationResponse
	decode(t, resp.Body, &body)
	assert.Equal(t, "msg-1", body.MessageID)
	assert.Equal(t, "sam@example.com", body.Email)
	assert.Len(t, body.Vehicles, ses.DefaultTopMatches)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Sam", mailer.sent[0].UserName)
	assert.Equal(t, "https://dealer.test/inventory", mailer.sent[0].DashboardURL)
}
