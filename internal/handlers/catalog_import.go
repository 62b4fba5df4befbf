package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vehicle-match-engine/internal/services/catalog"
	"vehicle-match-engine/internal/utils"
)

const (
	// ArchivePrefix receives raw documents once they have been imported.
	ArchivePrefix = "processed/"

	maxReportedErrors = 10
)

// CatalogStore is the part of the S3 service the import needs.
type CatalogStore interface {
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	UploadFile(ctx context.Context, key string, data []byte, contentType string) error
	MoveFile(ctx context.Context, sourceKey, destKey string) error
}

// CatalogImportHandler normalizes raw catalog documents dropped into the bucket.
type CatalogImportHandler struct {
	store            CatalogStore
	normalizer       *catalog.Normalizer
	normalizedPrefix string
	logger           *zap.Logger
}

// NewCatalogImportHandler creates an import handler writing snapshots under normalizedPrefix.
func NewCatalogImportHandler(store CatalogStore, normalizer *catalog.Normalizer, normalizedPrefix string) *CatalogImportHandler {
	if normalizedPrefix != "" && !strings.HasSuffix(normalizedPrefix, "/") {
		normalizedPrefix += "/"
	}
	return &CatalogImportHandler{
		store:            store,
		normalizer:       normalizer,
		normalizedPrefix: normalizedPrefix,
		logger:           utils.Named("catalog-import"),
	}
}

// CatalogImportResult is the result of importing one catalog document.
type CatalogImportResult struct {
	Message       string   `json:"message"`
	BatchID       string   `json:"batch_id,omitempty"`
	Key           string   `json:"key,omitempty"`
	NormalizedKey string   `json:"normalized_key,omitempty"`
	Vehicles      int      `json:"vehicles"`
	Rejected      int      `json:"rejected"`
	Errors        []string `json:"errors,omitempty"`
}

// Handle processes S3 events for uploaded catalog documents.
func (h *CatalogImportHandler) Handle(ctx context.Context, s3Event events.S3Event) (CatalogImportResult, error) {
	if len(s3Event.Records) == 0 {
		return CatalogImportResult{Message: "No records to process"}, nil
	}

	record := s3Event.Records[0]
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return CatalogImportResult{}, fmt.Errorf("failed to decode S3 key: %w", err)
	}

	if !strings.EqualFold(path.Ext(key), ".json") {
		h.logger.Info("Skipping non-JSON object", utils.String("key", key))
		return CatalogImportResult{Message: "Skipped non-JSON object", Key: key}, nil
	}

	return h.Import(ctx, key)
}

// Import normalizes the document at key, uploads the snapshot and archives the raw file.
func (h *CatalogImportHandler) Import(ctx context.Context, key string) (CatalogImportResult, error) {
	batchID := uuid.New().String()
	logger := h.logger.With(utils.String("batchID", batchID), utils.String("key", key))
	logger.Info("Importing catalog document")

	data, err := h.store.DownloadFile(ctx, key)
	if err != nil {
		logger.Error("Failed to download catalog document", utils.Error(err))
		return CatalogImportResult{}, fmt.Errorf("failed to download catalog document: %w", err)
	}

	name := path.Base(key)
	vehicles, normErrs := h.normalizer.Normalize(catalog.Document{Name: name, Data: data})
	result := CatalogImportResult{
		BatchID:  batchID,
		Key:      key,
		Vehicles: len(vehicles),
		Rejected: len(normErrs),
		Errors:   errorStrings(normErrs),
	}

	if len(vehicles) == 0 {
		result.Message = "No vehicles found in document"
		return result, nil
	}

	body, err := json.Marshal(vehicles)
	if err != nil {
		return CatalogImportResult{}, fmt.Errorf("failed to encode normalized catalog: %w", err)
	}

	result.NormalizedKey = h.normalizedPrefix + name
	if err := h.store.UploadFile(ctx, result.NormalizedKey, body, "application/json"); err != nil {
		logger.Error("Failed to upload normalized catalog", utils.Error(err))
		return CatalogImportResult{}, fmt.Errorf("failed to upload normalized catalog: %w", err)
	}

	logger.Info("Normalized catalog document",
		utils.Int("vehicles", result.Vehicles),
		utils.Int("rejected", result.Rejected),
		utils.String("normalizedKey", result.NormalizedKey))

	if err := h.store.MoveFile(ctx, key, ArchivePrefix+key); err != nil {
		logger.Warn("Failed to archive file", utils.Error(err))
	}

	result.Message = "Catalog imported successfully"
	return result, nil
}

func errorStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, 0, min(len(errs), maxReportedErrors))
	for _, e := range errs {
		if len(out) == maxReportedErrors {
			break
		}
		out = append(out, e.Error())
	}
	return out
}
