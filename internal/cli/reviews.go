package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vehicle-match-engine/internal/services/reviews"
	"vehicle-match-engine/internal/utils"
)

func newReviewsCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "reviews VEHICLE",
		Short: "Summarize owner reviews for a model",
		Long:  "Prints the keyword sentiment, strengths, weaknesses, themes and average rating of the reviews matching VEHICLE.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				cfg, err := loadConfig("")
				if err != nil {
					return err
				}
				path = cfg.ReviewsPath
			}

			lib, err := reviews.Open(path, utils.Named("reviews"))
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			analysis := lib.Analyze(name)
			if analysis == nil {
				return fmt.Errorf("no reviews for %q in %s", name, path)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(analysis)
		},
	}
	cmd.Flags().StringVarP(&path, "reviews", "r", "", "review export (default $REVIEWS_PATH)")
	return cmd
}
