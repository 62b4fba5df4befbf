package ses

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/financing"
)

// ErrNoRecipient is returned when the profile has no email address.
var ErrNoRecipient = errors.New("profile has no email address")

// DefaultTopMatches is how many vehicles the email lists.
const DefaultTopMatches = 3

// RecommendationParams contains data for the recommendations email
type RecommendationParams struct {
	UserName     string
	UserEmail    string
	Matches      []MatchInfo
	DashboardURL string
}

// MatchInfo is one ranked vehicle in the email.
type MatchInfo struct {
	Vehicle        string
	Price          int
	MonthlyPayment float64
	Score          float64
	Explanation    string
}

// BuildRecommendationParams takes the first top results, which must already be ranked.
func BuildRecommendationParams(profile *models.UserProfile, results []models.CompatibilityResult, dashboardURL string, top int) RecommendationParams {
	if top <= 0 {
		top = DefaultTopMatches
	}
	if top > len(results) {
		top = len(results)
	}

	matches := make([]MatchInfo, 0, top)
	for _, r := range results[:top] {
		matches = append(matches, MatchInfo{
			Vehicle:        strings.TrimSpace(fmt.Sprintf("%d %s %s", r.Vehicle.Year, r.Vehicle.Name, r.Vehicle.Trim)),
			Price:          r.Vehicle.Price,
			MonthlyPayment: financing.ForProfile(r.Vehicle.Price, profile).MonthlyPayment,
			Score:          r.Score,
			Explanation:    r.Explanation,
		})
	}

	var name, email string
	if profile != nil {
		name, email = profile.Name, profile.Email
	}
	if name == "" {
		name = "there"
	}
	return RecommendationParams{
		UserName:     name,
		UserEmail:    email,
		Matches:      matches,
		DashboardURL: dashboardURL,
	}
}

func recommendationSubject(params RecommendationParams) string {
	return fmt.Sprintf("Hi %s, here are your top %d vehicle matches", params.UserName, len(params.Matches))
}

const recommendationsHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, Helvetica, sans-serif; line-height: 1.5; color: #222; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #eb0a1e; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .card { border: 1px solid #e5e5e5; border-radius: 8px; padding: 16px; margin: 12px 0; }
        .score { float: right; background: #1a7f37; color: white; padding: 4px 10px; border-radius: 16px; font-weight: bold; }
        .muted { color: #666; font-size: 13px; }
        .cta { display: inline-block; background: #222; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Your top vehicle matches</h1>
        <p>Hi {{.UserName}}, these vehicles fit your needs best.</p>
    </div>
    {{range .Matches}}
    <div class="card">
        <span class="score">{{printf "%.1f" .Score}}%</span>
        <h3>{{.Vehicle}}</h3>
        <p>${{commas .Price}} &middot; about ${{printf "%.0f" .MonthlyPayment}}/mo</p>
        <p class="muted">{{.Explanation}}</p>
    </div>
    {{end}}
    {{if .DashboardURL}}
    <p><a href="{{.DashboardURL}}" class="cta">See all matches</a></p>
    {{end}}
</body>
</html>`

var recommendationsTemplate = template.Must(template.New("recommendations").
	Funcs(template.FuncMap{"commas": commas}).
	Parse(recommendationsHTML))

func renderRecommendationsHTML(params RecommendationParams) (string, error) {
	var buf bytes.Buffer
	if err := recommendationsTemplate.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderRecommendationsText(params RecommendationParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\n", params.UserName)
	b.WriteString("Here are the vehicles that fit your needs best:\n\n")
	for i, m := range params.Matches {
		fmt.Fprintf(&b, "%d. %s (%.1f%% match)\n", i+1, m.Vehicle, m.Score)
		fmt.Fprintf(&b, "   Price: $%s, about $%.0f/mo\n", commas(m.Price), m.MonthlyPayment)
		if m.Explanation != "" {
			fmt.Fprintf(&b, "   %s\n", m.Explanation)
		}
		b.WriteString("\n")
	}
	if params.DashboardURL != "" {
		fmt.Fprintf(&b, "See all matches: %s\n\n", params.DashboardURL)
	}
	return b.String()
}

// commas formats 56000 as "56,000".
func commas(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
