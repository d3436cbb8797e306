package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/build"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/cache"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/company"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/config"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/directory"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/fetch"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/parse"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/progress"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/report"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/schema"
)

type buildFlags struct {
	limit         int
	output        string
	noCache       bool
	skipDirectory bool
}

// newBuildCmd creates the 'build' subcommand, the whole pipeline from
// slug discovery to the static output tree.
func newBuildCmd() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Crawl the directory and build the static JSON API",
		Long: `Discovers company slugs from the sitemap, fetches each profile page
(cache-aware, rate-limited), parses records, merges directory metadata,
validates the batch against the company schema, and writes the static
JSON output tree. Exits non-zero if any record fails validation.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			if flags.output == "" {
				flags.output = cfg.Build.OutputDir
			}
			if !cmd.Flags().Changed("limit") {
				flags.limit = cfg.Build.Limit
			}
			return runBuild(cmd.Context(), cfg, flags, logger)
		},
	}
	cmd.Flags().IntVar(&flags.limit, "limit", 50, "max companies to process (0 = all)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable content caching (re-fetch everything)")
	cmd.Flags().BoolVar(&flags.skipDirectory, "skip-directory", false, "skip directory stage/id enrichment")
	return cmd
}

func runBuild(ctx context.Context, cfg config.Config, flags buildFlags, logger *zap.Logger) error {
	client := fetch.NewClient(cfg.ClientConfig(), logger)

	logger.Info("discovering company slugs from sitemap")
	discovery := fetch.NewSlugDiscovery(client, cfg.Source.SitemapURL, cfg.Source.CompanyURLPrefix, logger)
	slugs, err := discovery.Slugs(ctx)
	if err != nil {
		return err
	}
	if flags.limit > 0 && len(slugs) > flags.limit {
		slugs = slugs[:flags.limit]
	}
	logger.Info("processing companies", zap.Int("count", len(slugs)))

	var entries map[string]company.DirectoryEntry
	if !flags.skipDirectory {
		logger.Info("fetching directory data for stage enrichment")
		entries, err = directory.NewFetcher(client, cfg.Source.DirectoryURL, logger).FetchAll(ctx)
		if err != nil {
			return err
		}
	}

	var pageCache fetch.PageCache
	if !flags.noCache {
		c, err := cache.Open(cfg.Cache.Dir, logger)
		if err != nil {
			return err
		}
		pageCache = c
	}

	tracker := progress.NewTracker(len(slugs), logger)
	fetcher := fetch.NewPageFetcher(client, pageCache, tracker, cfg.Source.ProfileBaseURL, logger)
	pages := fetcher.FetchAll(ctx, slugs)
	logger.Info("pages fetched",
		zap.Int("pages", len(pages)),
		zap.Int("cache_hits", tracker.Counters().CacheHits),
		zap.Int("failed", tracker.Counters().Failed))

	// Per-item parse failures drop the record and keep the batch going.
	companies := make([]*company.Company, 0, len(pages))
	for _, slug := range slugs {
		html, ok := pages[slug]
		if !ok {
			continue
		}
		record, err := parse.Company(slug, html)
		if err != nil {
			logger.Error("parse failed", zap.String("slug", slug), zap.Error(err))
			continue
		}
		companies = append(companies, record)
	}
	logger.Info("companies parsed", zap.Int("count", len(companies)))

	if len(entries) > 0 {
		directory.Merge(companies, entries, logger)
	}

	validator, err := schema.NewValidator(logger)
	if err != nil {
		return err
	}
	invalid, err := validator.Validate(companies)
	if err != nil {
		return err
	}
	if len(invalid) > 0 {
		return fmt.Errorf("schema validation failed for %d records, aborting build", len(invalid))
	}

	report.Completeness(companies, logger)

	if err := build.NewBuilder(flags.output, logger).Build(companies); err != nil {
		return err
	}
	logger.Info("done",
		zap.Int("companies", len(companies)),
		zap.String("output", flags.output))
	return nil
}
