package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vehicle-match-engine/internal/app"
	"vehicle-match-engine/internal/handlers"
	"vehicle-match-engine/internal/services/catalog"
	"vehicle-match-engine/internal/utils"
)

var errNoS3 = errors.New("S3 is not configured, set S3_BUCKET and AWS credentials")

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Normalize, upload and import vehicle catalogs",
	}
	cmd.AddCommand(newNormalizeCmd(), newUploadCmd(), newImportCmd())
	return cmd
}

func newNormalizeCmd() *cobra.Command {
	var catalogDir, outFile string

	cmd := &cobra.Command{
		Use:   "normalize [FILE...]",
		Short: "Normalize catalog documents into the flat vehicle format",
		Long:  "Reads the given JSON files, or every *.json file of the catalog directory, and writes the merged vehicle list.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outFile, err)
				}
				defer f.Close()
				out = f
			}
			return runNormalize(cmd.Context(), out, catalogDir, args)
		},
	}

	cmd.Flags().StringVarP(&catalogDir, "catalog", "c", "", "catalog directory (default CATALOG_DIR)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write to a file instead of stdout")
	return cmd
}

// fileSource reads an explicit list of files.
type fileSource []string

func (s fileSource) Documents(ctx context.Context) ([]catalog.Document, error) {
	docs := make([]catalog.Document, 0, len(s))
	for _, p := range s {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file %s: %w", p, err)
		}
		docs = append(docs, catalog.Document{Name: filepath.Base(p), Data: data})
	}
	return docs, nil
}

func runNormalize(ctx context.Context, out io.Writer, catalogDir string, files []string) error {
	var source catalog.Source = fileSource(files)
	if len(files) == 0 {
		cfg, err := loadConfig(catalogDir)
		if err != nil {
			return err
		}
		source = catalog.DirSource{Dir: cfg.CatalogDir}
	}

	normalizer, err := catalog.NewNormalizer(catalog.WithLogger(utils.Named("catalog")))
	if err != nil {
		return err
	}
	vehicles, errs := catalog.Load(ctx, normalizer, source)
	logger := utils.GetLogger()
	for _, e := range errs {
		logger.Warn("Rejected", utils.Error(e))
	}
	if len(vehicles) == 0 {
		return errNoVehicles
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(vehicles); err != nil {
		return fmt.Errorf("failed to write vehicles: %w", err)
	}
	logger.Info("Catalog normalized",
		utils.Int("vehicles", len(vehicles)),
		utils.Int("rejected", len(errs)))
	return nil
}

// openS3 returns an app whose S3 service is configured.
func openS3(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig("")
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if a.S3 == nil {
		return nil, errNoS3
	}
	return a, nil
}

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a raw catalog document for the import function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			a, err := openS3(ctx)
			if err != nil {
				return err
			}

			key := a.Config.CatalogRawPrefix + filepath.Base(args[0])
			if err := a.S3.UploadFile(ctx, key, data, "application/json"); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded s3://%s/%s\n", a.S3.Bucket(), key)
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import KEY",
		Short: "Normalize an uploaded catalog object, as the import function does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openS3(ctx)
			if err != nil {
				return err
			}

			h := handlers.NewCatalogImportHandler(a.S3, a.Normalizer, a.Config.CatalogNormalizedPrefix)
			result, err := h.Import(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
