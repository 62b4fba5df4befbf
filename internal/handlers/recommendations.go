package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/inventory"
	"vehicle-match-engine/internal/services/ses"
	"vehicle-match-engine/internal/utils"
)

// Mailer sends the top matches email.
type Mailer interface {
	SendRecommendations(ctx context.Context, params ses.RecommendationParams) (*ses.SendEmailResult, error)
}

// RecommendationRequest asks for a shopper's top matches to be emailed.
type RecommendationRequest struct {
	UserID   string              `json:"user_id,omitempty"`
	Profile  *models.UserProfile `json:"profile,omitempty"`
	Email    string              `json:"email,omitempty"`
	UserName string              `json:"user_name,omitempty"`
	Filters  *inventory.Filters  `json:"filters,omitempty"`
	Top      int                 `json:"top,omitempty"`
}

// RecommendationResponse reports a sent email.
type RecommendationResponse struct {
	Message   string   `json:"message"`
	UserID    string   `json:"user_id,omitempty"`
	Email     string   `json:"email"`
	MessageID string   `json:"message_id"`
	Vehicles  []string `json:"vehicles"`
}

// RecommendationHandler ranks the catalog for a shopper and emails the best matches.
type RecommendationHandler struct {
	ranker       *Ranker
	mailer       Mailer
	dashboardURL string
	logger       *zap.Logger
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(ranker *Ranker, mailer Mailer, dashboardURL string) *RecommendationHandler {
	return &RecommendationHandler{
		ranker:       ranker,
		mailer:       mailer,
		dashboardURL: dashboardURL,
		logger:       utils.Named("recommendations"),
	}
}

// Send ranks, renders and sends the email.
func (h *RecommendationHandler) Send(ctx context.Context, req RecommendationRequest, source string) (*RecommendationResponse, error) {
	results, profile, err := h.ranker.RankAll(ctx, RankRequest{
		Profile: req.Profile,
		UserID:  req.UserID,
		Filters: req.Filters,
	}, source)
	if err != nil {
		return nil, err
	}

	recipient := *profile
	if req.Email != "" {
		recipient.Email = strings.TrimSpace(req.Email)
	}
	if req.UserName != "" {
		recipient.Name = req.UserName
	}

	params := ses.BuildRecommendationParams(&recipient, results, h.dashboardURL, req.Top)
	sent, err := h.mailer.SendRecommendations(ctx, params)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Sent recommendations",
		utils.String("user_id", recipient.UserID),
		utils.Int("matches", len(params.Matches)),
		utils.String("messageId", sent.MessageID))

	vehicles := make([]string, 0, len(params.Matches))
	for _, m := range params.Matches {
		vehicles = append(vehicles, m.Vehicle)
	}
	return &RecommendationResponse{
		Message:   fmt.Sprintf("Sent %d matches", len(params.Matches)),
		UserID:    recipient.UserID,
		Email:     params.UserEmail,
		MessageID: sent.MessageID,
		Vehicles:  vehicles,
	}, nil
}

// Handle processes API Gateway requests to email recommendations.
func (h *RecommendationHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("POST,OPTIONS")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers), nil
	}

	var req RecommendationRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, "Invalid JSON in request body")
	}
	if req.UserID == "" && req.Profile == nil {
		return errorResponse(headers, http.StatusBadRequest, "Missing required field: user_id or profile")
	}

	resp, err := h.Send(ctx, req, "lambda")
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return errorResponse(headers, http.StatusNotFound, "No profile stored for this user")
	case errors.Is(err, ses.ErrNoRecipient):
		return errorResponse(headers, http.StatusBadRequest, "Profile has no email address")
	case err != nil:
		h.logger.Error("Failed to send recommendations", utils.String("user_id", req.UserID), utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to send recommendations")
	}

	return jsonResponse(headers, http.StatusOK, resp)
}
