package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/scoring"
)

type explainOutput struct {
	Vehicle     models.Vehicle    `json:"vehicle"`
	Explanation string            `json:"explanation"`
	Breakdown   scoring.Breakdown `json:"breakdown"`
}

func newExplainCmd() *cobra.Command {
	o := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "explain VEHICLE",
		Short: "Show the per-rule score breakdown for one vehicle",
		Long:  "VEHICLE is a catalog id or a model name, optionally followed by a trim (\"RAV4 XLE\").",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd.Context(), cmd.OutOrStdout(), o, strings.Join(args, " "))
		},
	}
	o.bind(cmd)
	return cmd
}

func runExplain(ctx context.Context, out io.Writer, o *rankOptions, query string) error {
	profile, err := readProfile(o)
	if err != nil {
		return err
	}

	s, err := openSession(ctx, o)
	if err != nil {
		return err
	}
	defer s.closer()

	if o.userID != "" {
		stored, err := s.profiles.Load(ctx, o.userID)
		if err != nil {
			return err
		}
		if stored == nil && profile == nil {
			return fmt.Errorf("no profile stored for %s", o.userID)
		}
		base := models.UserProfile{UserID: o.userID}
		merged := base.Merge(stored)
		merged = merged.Merge(profile)
		profile = &merged
	}
	if profile == nil {
		profile = &models.UserProfile{}
	}

	vehicle, ok := findVehicle(s.snapshot.Vehicles(), query)
	if !ok {
		return fmt.Errorf("vehicle %q not found in catalog", query)
	}

	b := s.engine.Explain(profile, &vehicle)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(explainOutput{Vehicle: vehicle, Explanation: b.Explanation(), Breakdown: b})
}

// findVehicle matches an id, "Name Trim" or the first vehicle named Name.
func findVehicle(vehicles []models.Vehicle, query string) (models.Vehicle, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	var byName *models.Vehicle
	for i := range vehicles {
		v := &vehicles[i]
		if fmt.Sprint(v.ID) == q || strings.ToLower(v.Name+" "+v.Trim) == q {
			return *v, true
		}
		if byName == nil && strings.ToLower(v.Name) == q {
			byName = v
		}
	}
	if byName != nil {
		return *byName, true
	}
	return models.Vehicle{}, false
}
