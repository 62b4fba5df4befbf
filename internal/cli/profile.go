package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vehicle-match-engine/internal/app"
	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/database"
	"vehicle-match-engine/internal/services/profiles"
	"vehicle-match-engine/internal/utils"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Create, inspect and import shopper profiles",
	}
	cmd.AddCommand(newProfileNewCmd(), newProfileShowCmd(), newProfileValidateCmd(), newProfileImportCmd())
	return cmd
}

func newProfileNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Print a fresh user id",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), profiles.NewUserID())
		},
	}
}

func openProfiles(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig("")
	if err != nil {
		return nil, err
	}
	// Profile commands never touch the catalog bucket.
	cfg.S3Bucket = ""
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := a.OpenProfiles(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show USER_ID",
		Short: "Print the stored profile of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openProfiles(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.Profiles.Load(ctx, args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("no profile stored for %s", args[0])
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
}

func newProfileValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check the structure of a profile CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			result, err := utils.ValidateCSVStructure(string(data))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("%s is not a valid profile file", args[0])
			}
			return nil
		},
	}
}

// importSummary reports a profile CSV import.
type importSummary struct {
	Parsed   int      `json:"parsed"`
	Imported int      `json:"imported"`
	Backend  string   `json:"backend"`
	Errors   []string `json:"errors,omitempty"`
}

func newProfileImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import profile records from a CSV file",
		Long:  "Rows are written to PostgreSQL in one transaction when PROFILE_BACKEND=postgres, otherwise through the profile stores.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			a, err := openProfiles(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var bulk bulkWriter
			if a.DB != nil {
				bulk = database.NewProfileRepository(a.DB)
			}
			summary, err := importProfiles(ctx, string(data), bulk, a.Profiles)
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), summary)
		},
	}
}

// bulkWriter writes many record rows at once.
type bulkWriter interface {
	BulkUpsert(ctx context.Context, profiles []*models.UserProfile) (int, []error, error)
}

// importProfiles parses content and stores every valid row. bulk may be nil.
func importProfiles(ctx context.Context, content string, bulk bulkWriter, repo profiles.Repository) (*importSummary, error) {
	parsed, parseErrs := utils.NewProfileCSVCodec().ParseProfiles(content)
	if len(parsed) == 0 {
		if len(parseErrs) > 0 {
			return nil, errors.Join(parseErrs...)
		}
		return nil, utils.ErrNoDataRows
	}

	summary := &importSummary{Parsed: len(parsed), Backend: "stores"}
	errs := parseErrs

	if bulk != nil {
		summary.Backend = "postgres"
		n, rowErrs, err := bulk.BulkUpsert(ctx, parsed)
		if err != nil {
			return nil, err
		}
		summary.Imported = n
		errs = append(errs, rowErrs...)
	} else {
		for _, p := range parsed {
			if err := repo.Save(ctx, p); err != nil {
				errs = append(errs, fmt.Errorf("user %s: %w", p.UserID, err))
				continue
			}
			summary.Imported++
		}
	}

	for _, e := range errs {
		summary.Errors = append(summary.Errors, e.Error())
	}
	return summary, nil
}

func writeSummary(out io.Writer, summary *importSummary) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
