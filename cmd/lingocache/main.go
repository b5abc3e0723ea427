// Command lingocache administers a local translation cache: statistics,
// clears, offline model management, and one-off translations.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/lingocache"
	"github.com/ZaguanLabs/lingocache/offline"
)

func main() {
	root := &cobra.Command{
		Use:     "lingocache",
		Short:   "Translation cache and offline-model store",
		Version: lingocache.FullVersion(),
	}

	root.AddCommand(
		newStatsCmd(),
		newClearCmd(),
		newModelsCmd(),
		newTranslateCmd(),
		newExportCmd(),
		newImportCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openService builds a Service from the optional config file. The CLI
// never talks to a remote provider; it administers the local tiers.
func openService(configPath string) (*lingocache.Service, error) {
	opts := []lingocache.Option{}
	if configPath != "" {
		cfg, err := lingocache.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, lingocache.WithConfig(cfg))
	}
	return lingocache.New(nil, opts...)
}

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			stats := svc.Statistics()
			fmt.Printf("Valid entries:   %d\n", stats.ValidCount)
			fmt.Printf("Expired entries: %d\n", stats.ExpiredCount)
			fmt.Printf("Total entries:   %d\n", stats.TotalCount)
			fmt.Printf("Hit rate:        %.2f\n", stats.HitRate)
			fmt.Printf("Memory bytes:    %d\n", stats.MemoryBytes)
			fmt.Printf("Disk bytes:      %d\n", stats.DiskBytes)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}

func newClearCmd() *cobra.Command {
	var (
		configPath string
		language   string
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached translations",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			if language != "" {
				svc.ClearCacheForLanguage(language)
				fmt.Printf("Cleared cached translations for %s.\n", language)
				return nil
			}
			svc.ClearCache()
			fmt.Println("Cleared all cached translations.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&language, "lang", "", "only clear entries for this target language")
	return cmd
}

func newModelsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage installed offline models",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List installed offline model languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			langs := svc.InstalledLanguages()
			if len(langs) == 0 {
				fmt.Println("No offline models installed.")
				return nil
			}
			for _, lang := range langs {
				fmt.Printf("%s\t%s\n", lang, lingocache.GetLanguageName(lang))
			}
			return nil
		},
	}

	installCmd := &cobra.Command{
		Use:   "install <model.json>",
		Short: "Install an offline model from a local model file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var model offline.Model
			if err := json.Unmarshal(payload, &model); err != nil {
				return fmt.Errorf("parsing model file: %w", err)
			}
			if model.SizeBytes == 0 {
				model.SizeBytes = int64(len(payload))
			}

			svc, err := openService(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			if err := svc.InstallModel(model, payload); err != nil {
				return err
			}
			fmt.Printf("Installed offline model %s->%s (version %s).\n",
				model.SourceLanguage, model.TargetLanguage, model.Version)
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <language>",
		Short: "Uninstall the offline model for a language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			if err := svc.RemoveLanguageModel(args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed offline model for %s.\n", args[0])
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.AddCommand(listCmd, installCmd, removeCmd)
	return cmd
}

func newTranslateCmd() *cobra.Command {
	var (
		configPath string
		from       string
		to         string
	)

	cmd := &cobra.Command{
		Use:   "translate <text>",
		Short: "Translate text from the cache or an installed offline model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			result, err := svc.Translate(cmd.Context(), args[0], from, to)
			if err != nil {
				return err
			}
			fmt.Println(result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&from, "from", "en", "source language code")
	cmd.Flags().StringVar(&to, "to", "", "target language code")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newExportCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export valid cache entries to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			if err := svc.ExportCache(args[0], nil); err != nil {
				return err
			}
			fmt.Printf("Exported cache to %s.\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}

func newImportCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import cache entries from a JSON export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			result, err := svc.ImportCache(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d entries (%d skipped).\n", result.Imported, result.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}
