package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/labbcb/brave-upload/internal/audit"
	"github.com/labbcb/brave-upload/internal/brave"
	"github.com/labbcb/brave-upload/internal/normalize"
	"github.com/labbcb/brave-upload/internal/pipeline"
	"github.com/labbcb/brave-upload/internal/vcf"
)

const sampleCountTag = normalize.TagNS

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brave-upload <vcf-file>",
		Short: "Upload VCF variants to a BraVE server",
		Long: "brave-upload normalizes each record of a VCF file into a catalog " +
			"variant and submits it to a BraVE server. Processing is sequential " +
			"and fail-fast: the first error aborts the run.",
		Example: `  brave-upload --dataset mydata --assembly GRCh38 --password s3cret input.vcf
  brave-upload --dataset mydata --assembly GRCh38 --dryrun --debug input.vcf.gz
  cat input.vcf | brave-upload --dataset mydata --assembly GRCh38 --dont-filter -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0])
		},
	}

	flags := cmd.Flags()
	flags.String("host", "http://localhost:8080", "URL to BraVE server")
	flags.String("dataset", "", "Dataset name")
	flags.String("assembly", "", "Genome assembly version")
	flags.String("username", "admin", "User name")
	flags.String("password", "", "Password")
	flags.Bool("dont-filter", false, "Don't filter variants by FILTER column")
	flags.Bool("dryrun", false, "Just check VCF without connecting to server")
	flags.Bool("debug", false, "Print variant data to stderr")
	flags.Bool("disable-ssl", false, "Disable SSL certificate verification")
	flags.Bool("clnsig-first", false, "Keep only the first CLNSIG value instead of joining all")
	flags.String("audit-db", "", "Write a submission log to this DuckDB file")

	cobra.OnInitialize(initConfig)
	viper.BindPFlags(flags)

	return cmd
}

// initConfig wires the optional ~/.brave-upload.yaml config file and the
// BRAVE_UPLOAD_* environment variables into viper.
func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".brave-upload")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("BRAVE_UPLOAD")
	viper.AutomaticEnv()
	viper.ReadInConfig()
}

func run(ctx context.Context, path string) error {
	dataset := viper.GetString("dataset")
	assembly := viper.GetString("assembly")
	if dataset == "" {
		return fmt.Errorf("--dataset is required")
	}
	if assembly == "" {
		return fmt.Errorf("--assembly is required")
	}

	logger, err := newLogger(viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	reader, err := vcf.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	header := reader.Header()
	norm := normalize.New(normalize.Config{
		DatasetID:       dataset,
		AssemblyID:      assembly,
		TotalSamples:    header.SampleCount(),
		HasSampleCount:  header.HasInfo(sampleCountTag),
		ClnsigFirstOnly: viper.GetBool("clnsig-first"),
	})

	doFilter := !viper.GetBool("dont-filter")
	dryrun := viper.GetBool("dryrun")

	var submitter pipeline.Submitter
	if !dryrun {
		submitter = brave.NewClient(brave.ClientOptions{
			Host:       viper.GetString("host"),
			Username:   viper.GetString("username"),
			Password:   viper.GetString("password"),
			DisableSSL: viper.GetBool("disable-ssl"),
		})
	}

	p := pipeline.New(norm, submitter, pipeline.Options{
		Filter: doFilter,
		DryRun: dryrun,
	})
	p.SetLogger(logger)

	if auditPath := viper.GetString("audit-db"); auditPath != "" {
		store, err := audit.Open(auditPath)
		if err != nil {
			return err
		}
		defer store.Close()
		p.SetRecorder(store)
		logger.Info("audit log enabled", zap.String("path", filepath.Clean(auditPath)))
	}

	summary, runErr := p.Run(ctx, reader)
	if runErr != nil {
		return runErr
	}

	fmt.Printf("Total variants: %d\n", summary.Total)
	if doFilter {
		fmt.Printf("Passed variants: %d\n", summary.Passed)
	}
	return nil
}

// newLogger builds a stderr logger: debug level in debug mode, warnings
// and up otherwise.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return cfg.Build()
}
