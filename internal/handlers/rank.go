package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/catalog"
	"vehicle-match-engine/internal/services/financing"
	"vehicle-match-engine/internal/services/inventory"
	"vehicle-match-engine/internal/services/metrics"
	"vehicle-match-engine/internal/services/profiles"
	"vehicle-match-engine/internal/services/scoring"
	"vehicle-match-engine/internal/utils"
)

// DefaultRankLimit caps a ranking response when the request sets no limit.
const DefaultRankLimit = 20

// ErrProfileNotFound is returned when a user id has no stored profile and no inline one.
var ErrProfileNotFound = errors.New("profile not found")

// RankRequest asks for the catalog ranked against a profile. An inline profile
// is laid over the stored one when both are given.
type RankRequest struct {
	Profile *models.UserProfile `json:"profile,omitempty"`
	UserID  string              `json:"user_id,omitempty"`
	Filters *inventory.Filters  `json:"filters,omitempty"`
	Limit   int                 `json:"limit,omitempty"`
}

// RankedVehicle is one ranking entry with its payment estimate.
type RankedVehicle struct {
	models.CompatibilityResult
	Estimate financing.Estimate `json:"estimate"`
}

// RankResponse lists the best matches. Matched counts every vehicle that passed the filters.
type RankResponse struct {
	UserID  string          `json:"user_id,omitempty"`
	Matched int             `json:"matched"`
	Results []RankedVehicle `json:"results"`
}

// Ranker resolves profiles and ranks the active catalog.
type Ranker struct {
	engine   *scoring.Engine
	catalog  *catalog.Snapshot
	profiles profiles.Repository
}

// NewRanker creates a ranker. repo may be nil when only inline profiles are ranked.
func NewRanker(engine *scoring.Engine, snapshot *catalog.Snapshot, repo profiles.Repository) *Ranker {
	if engine == nil {
		engine = scoring.NewEngine()
	}
	return &Ranker{engine: engine, catalog: snapshot, profiles: repo}
}

// Rank scores the filtered catalog for the request's profile and keeps the best
// Limit entries with their payment estimates. source labels the metrics.
func (r *Ranker) Rank(ctx context.Context, req RankRequest, source string) (*RankResponse, error) {
	results, profile, err := r.RankAll(ctx, req, source)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultRankLimit
	}
	top := inventory.Top(results, limit)

	ranked := make([]RankedVehicle, 0, len(top))
	for _, res := range top {
		ranked = append(ranked, RankedVehicle{
			CompatibilityResult: res,
			Estimate:            financing.ForProfile(res.Vehicle.Price, profile),
		})
	}

	return &RankResponse{
		UserID:  profile.UserID,
		Matched: len(results),
		Results: ranked,
	}, nil
}

// RankAll returns every filtered vehicle in ranked order along with the resolved profile.
func (r *Ranker) RankAll(ctx context.Context, req RankRequest, source string) ([]models.CompatibilityResult, *models.UserProfile, error) {
	start := time.Now()
	defer metrics.ObserveRank(source, start)

	profile, err := r.resolveProfile(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	filters := inventory.DefaultFilters()
	if req.Filters != nil {
		filters = *req.Filters
	}
	return inventory.Ranked(r.engine, profile, r.catalog.Vehicles(), filters), profile, nil
}

func (r *Ranker) resolveProfile(ctx context.Context, req RankRequest) (*models.UserProfile, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		if req.Profile == nil {
			return &models.UserProfile{}, nil
		}
		return req.Profile, nil
	}

	var stored *models.UserProfile
	if r.profiles != nil {
		p, err := r.profiles.Load(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		stored = p
	}
	if stored == nil {
		if req.Profile == nil {
			return nil, ErrProfileNotFound
		}
		stored = &models.UserProfile{}
	}

	merged := stored.Merge(req.Profile)
	merged.UserID = userID
	return &merged, nil
}

// RankHandler serves ranking requests from API Gateway.
type RankHandler struct {
	ranker *Ranker
	logger *zap.Logger
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(ranker *Ranker) *RankHandler {
	return &RankHandler{ranker: ranker, logger: utils.Named("rank")}
}

// Handle processes the API Gateway ranking request.
func (h *RankHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("POST,OPTIONS")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers), nil
	}
	if request.HTTPMethod != http.MethodPost {
		return errorResponse(headers, http.StatusMethodNotAllowed, "Use POST")
	}

	var req RankRequest
	if strings.TrimSpace(request.Body) != "" {
		if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
			return errorResponse(headers, http.StatusBadRequest, "Invalid request body")
		}
	}

	resp, err := h.ranker.Rank(ctx, req, "lambda")
	if errors.Is(err, ErrProfileNotFound) {
		return errorResponse(headers, http.StatusNotFound, "No profile stored for this user")
	}
	if err != nil {
		h.logger.Error("Ranking failed", utils.String("user_id", req.UserID), utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to rank vehicles")
	}

	h.logger.Info("Ranked catalog",
		utils.String("user_id", resp.UserID),
		utils.Int("matched", resp.Matched),
		utils.Int("returned", len(resp.Results)))

	return jsonResponse(headers, http.StatusOK, resp)
}
