package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/catalog"
	"vehicle-match-engine/internal/services/inventory"
	"vehicle-match-engine/internal/services/profiles"
	"vehicle-match-engine/internal/services/quiz"
	"vehicle-match-engine/internal/services/reviews"
	"vehicle-match-engine/internal/services/ses"
	"vehicle-match-engine/internal/utils"
)

const maxBodyBytes = 1 << 20

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CatalogLoader reads and normalizes the configured catalog sources.
type CatalogLoader func(ctx context.Context) ([]models.Vehicle, []error)

// QuizRequest carries quiz answers and, optionally, the user they belong to.
type QuizRequest struct {
	UserID  string             `json:"user_id,omitempty"`
	Answers quiz.Answers       `json:"answers"`
	Filters *inventory.Filters `json:"filters,omitempty"`
	Limit   int                `json:"limit,omitempty"`
}

// QuizResponse is the profile the answers produced and the ranking for it.
type QuizResponse struct {
	Profile models.UserProfile `json:"profile"`
	Saved   bool               `json:"saved"`
	Ranking *RankResponse      `json:"ranking"`
}

// ReloadResponse summarizes a catalog reload.
type ReloadResponse struct {
	Vehicles int      `json:"vehicles"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

// API is the HTTP surface of the engine. Optional collaborators left nil
// make their endpoints answer 503.
type API struct {
	Health          *HealthHandler
	Ranker          *Ranker
	Catalog         *catalog.Snapshot
	Reviews         *reviews.Library
	Profiles        profiles.Repository
	Recommendations *RecommendationHandler
	Uploads         *PresignedURLHandler
	LoadCatalog     CatalogLoader

	logger *zap.Logger
}

// Routes registers every endpoint on a new mux.
func (a *API) Routes() *http.ServeMux {
	if a.logger == nil {
		a.logger = utils.Named("api")
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/api/health", a.healthHandler)

	mux.HandleFunc("/api/profiles", a.profilesHandler)
	mux.HandleFunc("/api/profiles/new", a.newProfileHandler)

	mux.HandleFunc("/api/vehicles", a.vehiclesHandler)
	mux.HandleFunc("/api/vehicles/reviews", a.reviewsHandler)
	mux.HandleFunc("/api/rank", a.rankHandler)
	mux.HandleFunc("/api/quiz", a.quizHandler)

	mux.HandleFunc("/api/recommendations/email", a.emailHandler)

	mux.HandleFunc("/api/catalog/reload", a.reloadHandler)
	mux.HandleFunc("/api/catalog/upload-url", a.uploadURLHandler)

	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (a *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	if a.Health == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: ServiceName})
		return
	}
	report, status := a.Health.Check(r.Context())
	writeJSON(w, status, report)
}

func (a *API) profilesHandler(w http.ResponseWriter, r *http.Request) {
	if a.Profiles == nil {
		writeError(w, http.StatusServiceUnavailable, "Profile store not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if userID == "" {
			writeError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		profile, err := a.Profiles.Load(r.Context(), userID)
		if err != nil {
			a.logger.Error("Failed to load profile", utils.String("user_id", userID), utils.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to load profile")
			return
		}
		if profile == nil {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeJSON(w, http.StatusOK, Response{Success: true, Data: profile})

	case http.MethodPost:
		var profile models.UserProfile
		if !decodeBody(w, r, &profile) {
			return
		}
		if strings.TrimSpace(profile.UserID) == "" {
			profile.UserID = profiles.NewUserID()
		}
		if err := a.Profiles.Save(r.Context(), &profile); err != nil {
			if isValidationError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			a.logger.Error("Failed to save profile", utils.String("user_id", profile.UserID), utils.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to save profile")
			return
		}
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Profile saved",
			Data:    map[string]string{"user_id": profile.UserID},
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *API) newProfileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    map[string]string{"user_id": profiles.NewUserID()},
	})
}

// vehiclesHandler lists the filtered inventory. With a user_id the list is in
// compatibility order, otherwise in catalog order.
func (a *API) vehiclesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	filters := inventory.FiltersFromQuery(q)

	userID := strings.TrimSpace(q.Get("user_id"))
	if userID == "" || a.Ranker == nil {
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    inventory.Apply(a.Catalog.Vehicles(), filters),
		})
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	resp, err := a.Ranker.Rank(r.Context(), RankRequest{UserID: userID, Filters: &filters, Limit: limit}, "http")
	if !a.writeRankError(w, userID, err) {
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: resp})
}

func (a *API) rankHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.Ranker == nil {
		writeError(w, http.StatusServiceUnavailable, "Ranking not configured")
		return
	}

	var req RankRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := a.Ranker.Rank(r.Context(), req, "http")
	if !a.writeRankError(w, req.UserID, err) {
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: resp})
}

// quizHandler turns answers into a profile, saves it when a user id is given,
// and ranks the catalog for it.
func (a *API) quizHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.Ranker == nil {
		writeError(w, http.StatusServiceUnavailable, "Ranking not configured")
		return
	}

	var req QuizRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := r.Context()
	answered := quiz.ToProfile(req.Answers)
	profile := answered
	saved := false

	if userID := strings.TrimSpace(req.UserID); userID != "" && a.Profiles != nil {
		stored, err := a.Profiles.Load(ctx, userID)
		if err != nil {
			a.logger.Warn("Failed to load profile for quiz", utils.String("user_id", userID), utils.Error(err))
		}
		base := models.UserProfile{UserID: userID}
		if stored != nil {
			base = *stored
		}
		profile = base.Merge(&answered)
		profile.UserID = userID

		if err := a.Profiles.Save(ctx, &profile); err != nil {
			a.logger.Warn("Failed to save quiz profile", utils.String("user_id", userID), utils.Error(err))
		} else {
			saved = true
		}
	}

	ranking, err := a.Ranker.Rank(ctx, RankRequest{Profile: &profile, Filters: req.Filters, Limit: req.Limit}, "http")
	if !a.writeRankError(w, req.UserID, err) {
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    QuizResponse{Profile: profile, Saved: saved, Ranking: ranking},
	})
}

func (a *API) emailHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.Recommendations == nil {
		writeError(w, http.StatusServiceUnavailable, "Email not configured")
		return
	}

	var req RecommendationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" && req.Profile == nil {
		writeError(w, http.StatusBadRequest, "user_id or profile is required")
		return
	}

	resp, err := a.Recommendations.Send(r.Context(), req, "http")
	switch {
	case errors.Is(err, ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "Profile not found")
	case errors.Is(err, ses.ErrNoRecipient):
		writeError(w, http.StatusBadRequest, "Profile has no email address")
	case err != nil:
		a.logger.Error("Failed to send recommendations", utils.String("user_id", req.UserID), utils.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to send recommendations")
	default:
		writeJSON(w, http.StatusOK, Response{Success: true, Message: resp.Message, Data: resp})
	}
}

// reloadHandler replaces the active catalog. A reload that yields no vehicles
// keeps the current catalog.
func (a *API) reloadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.LoadCatalog == nil {
		writeError(w, http.StatusServiceUnavailable, "Catalog sources not configured")
		return
	}

	vehicles, errs := a.LoadCatalog(r.Context())
	for _, err := range errs {
		a.logger.Warn("Catalog reload problem", utils.Error(err))
	}

	resp := ReloadResponse{Vehicles: len(vehicles), Rejected: len(errs), Errors: errorStrings(errs)}
	if len(vehicles) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   "Reload produced no vehicles, keeping the current catalog",
			Data:    resp,
		})
		return
	}

	a.Catalog.Replace(vehicles)
	a.logger.Info("Catalog reloaded", utils.Int("vehicles", len(vehicles)), utils.Int("rejected", len(errs)))
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Catalog reloaded", Data: resp})
}

func (a *API) uploadURLHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.Uploads == nil {
		writeError(w, http.StatusServiceUnavailable, "S3 uploads not configured")
		return
	}

	resp, err := a.Uploads.Presign(r.Context(), r.URL.Query().Get("filename"))
	if errors.Is(err, ErrNotJSON) {
		writeError(w, http.StatusBadRequest, "Only JSON catalog files are allowed")
		return
	}
	if err != nil {
		a.logger.Error("Failed to generate presigned URL", utils.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate upload URL")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: resp})
}

// reviewsHandler summarizes the reviews of one vehicle, chosen by name or by catalog id.
func (a *API) reviewsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.Reviews == nil {
		writeError(w, http.StatusServiceUnavailable, "Reviews not configured")
		return
	}

	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("name"))
	if rawID := strings.TrimSpace(q.Get("id")); rawID != "" && name == "" {
		id, err := strconv.Atoi(rawID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "id must be a number")
			return
		}
		v, ok := a.Catalog.Find(id)
		if !ok {
			writeError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		name = v.Name
	}
	if name == "" {
		writeError(w, http.StatusBadRequest, "name or id is required")
		return
	}

	analysis := a.Reviews.Analyze(name)
	if analysis == nil {
		writeError(w, http.StatusNotFound, "No reviews found")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: analysis})
}

// writeRankError reports err, if any, and returns whether the caller may continue.
func (a *API) writeRankError(w http.ResponseWriter, userID string, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "Profile not found")
	default:
		a.logger.Error("Ranking failed", utils.String("user_id", userID), utils.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to rank vehicles")
	}
	return false
}

func isValidationError(err error) bool {
	return errors.Is(err, models.ErrEmptyUserID) ||
		errors.Is(err, models.ErrInvalidEmail) ||
		errors.Is(err, models.ErrInvalidLoanTerm) ||
		errors.Is(err, models.ErrInvalidIncome) ||
		errors.Is(err, profiles.ErrNilProfile)
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Error: message})
}

// writeJSON encodes before writing the header so an unencodable payload
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		utils.GetLogger().Error("Failed to encode response", utils.Int("status", status), utils.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(Response{Success: false, Error: "Failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
