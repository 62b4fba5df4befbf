package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	s3service "vehicle-match-engine/internal/services/s3"
	"vehicle-match-engine/internal/utils"
)

// ErrNotJSON is returned for upload names without a .json extension.
var ErrNotJSON = errors.New("only JSON catalog files are allowed")

const (
	uploadExpiryMinutes = 60
	maxFilenameLength   = 100
)

// Presigner issues upload URLs for catalog documents.
type Presigner interface {
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiryMinutes int) (*s3service.PresignedURLResult, error)
}

// PresignedURLHandler hands out upload URLs for raw catalog documents.
type PresignedURLHandler struct {
	presigner Presigner
	rawPrefix string
	logger    *zap.Logger
}

// NewPresignedURLHandler creates a handler placing uploads under rawPrefix.
func NewPresignedURLHandler(presigner Presigner, rawPrefix string) *PresignedURLHandler {
	if rawPrefix != "" && !strings.HasSuffix(rawPrefix, "/") {
		rawPrefix += "/"
	}
	return &PresignedURLHandler{
		presigner: presigner,
		rawPrefix: rawPrefix,
		logger:    utils.Named("presign"),
	}
}

// PresignedURLResponse is the response structure for presigned URL requests.
type PresignedURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	S3Key     string `json:"s3Key"`
	ExpiresIn int    `json:"expiresIn"`
}

// UploadKey returns the object key for an uploaded catalog file.
func (h *PresignedURLHandler) UploadKey(filename string, now time.Time) string {
	return h.rawPrefix + now.UTC().Format("2006/01/02") + "/" + uuid.New().String() + "_" + sanitizeFilename(filename)
}

// Presign validates filename and returns an upload URL for it.
func (h *PresignedURLHandler) Presign(ctx context.Context, filename string) (*PresignedURLResponse, error) {
	if filename == "" {
		filename = "catalog_" + uuid.New().String()[:8] + ".json"
	}
	if !strings.EqualFold(path.Ext(filename), ".json") {
		return nil, ErrNotJSON
	}

	key := h.UploadKey(filename, time.Now())
	presigned, err := h.presigner.GeneratePresignedUploadURL(ctx, key, "application/json", uploadExpiryMinutes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	h.logger.Info("Generated presigned URL", utils.String("s3Key", key))
	return &PresignedURLResponse{
		UploadURL: presigned.URL,
		S3Key:     presigned.Key,
		ExpiresIn: uploadExpiryMinutes * 60,
	}, nil
}

// Handle processes the API Gateway request for generating presigned URLs.
func (h *PresignedURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("GET,OPTIONS")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers), nil
	}

	resp, err := h.Presign(ctx, request.QueryStringParameters["filename"])
	if errors.Is(err, ErrNotJSON) {
		return errorResponse(headers, http.StatusBadRequest, "Only JSON catalog files are allowed")
	}
	if err != nil {
		h.logger.Error("Failed to generate presigned URL", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to generate upload URL")
	}
	return jsonResponse(headers, http.StatusOK, resp)
}

// sanitizeFilename keeps letters, digits, dots, dashes and underscores.
func sanitizeFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := b.String()
	if len(safe) > maxFilenameLength {
		safe = safe[:maxFilenameLength]
	}
	return safe
}
