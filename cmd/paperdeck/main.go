package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"paperdeck/internal/collect"
	"paperdeck/internal/config"
	"paperdeck/internal/digest"
	"paperdeck/internal/fetch"
	"paperdeck/internal/filter"
	"paperdeck/internal/paper"
	"paperdeck/internal/schedule"
	"paperdeck/internal/server"
	"paperdeck/internal/sync"
	"paperdeck/internal/tagstore"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "paperdeck",
	Short:   "Daily arXiv paper viewer",
	Long:    "Paperdeck fetches daily arXiv paper batches and serves a local viewer with search, read-later, and topic stars.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(readlaterCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(starCmd)
	rootCmd.AddCommand(unstarCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(digestCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("paperdeck", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/paperdeck/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure arXiv categories, search chips, and sync.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show paper data and tag status",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := openSource().Index(cmd.Context())
		if err != nil {
			fmt.Printf("Paper index: unavailable (%v)\n", err)
		} else {
			total := 0
			for _, e := range entries {
				total += e.Count
			}
			fmt.Printf("Paper days: %d (%d papers)\n", len(entries), total)
			for _, e := range entries {
				fmt.Printf("  %s: %d\n", e.Date, e.Count)
			}
		}

		readLater, err := store.ReadLater()
		if err != nil {
			return err
		}
		topics, err := store.Topics()
		if err != nil {
			return err
		}
		fmt.Printf("\nRead later: %d\n", len(readLater))
		fmt.Printf("Topics: %d\n", len(topics))
		for _, name := range topics {
			stars, _ := store.StarsFor(name)
			fmt.Printf("  %s: %d starred\n", name, len(stars))
		}
		fmt.Printf("\nTag database: %s\n", store.Path())
		return nil
	},
}

// --- fetch command ---

var (
	fetchDate  string
	fetchWatch bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch today's papers from the arXiv API",
	RunE: func(cmd *cobra.Command, args []string) error {
		collector := collect.NewCollector(cfg)

		runOnce := func(ctx context.Context) error {
			date := fetchDate
			if date == "" {
				date = collect.Today()
			}
			fmt.Printf("Fetching papers for %s...\n", date)
			result, err := collector.Run(ctx, date)
			if err != nil {
				return err
			}
			fmt.Printf("  Found: %d  Saved: %d  Duplicates: %d  Pruned: %d\n",
				result.TotalFound, result.Saved, result.Duplicates, result.Pruned)
			for cat, n := range result.Categories {
				fmt.Printf("  %s: %d\n", cat, n)
			}
			return nil
		}

		if err := runOnce(cmd.Context()); err != nil {
			return err
		}
		if !fetchWatch {
			return nil
		}

		runner, err := schedule.New(cfg.Fetch.Schedule, func() {
			if err := runOnce(context.Background()); err != nil {
				log.Printf("Scheduled fetch: %v", err)
			}
		})
		if err != nil {
			return err
		}

		fmt.Printf("Watching on schedule %q. Press Ctrl+C to stop.\n", cfg.Fetch.Schedule)
		runner.Start()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		runner.Stop()
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDate, "date", "", "Fetch papers for this UTC date (default today)")
	fetchCmd.Flags().BoolVar(&fetchWatch, "watch", false, "Keep running and fetch on the configured schedule")
}

// --- search command ---

var (
	searchDays      int
	searchDate      string
	searchTitleOnly bool
	searchReadLater bool
	searchStarred   bool
	searchTopic     string
	searchCats      []string
	searchChips     []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search loaded papers from the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		loader := paper.NewLoader(openSource())
		var batch []paper.Day
		if searchDate != "" {
			batch = loader.LoadDates(cmd.Context(), []string{searchDate})
		} else {
			days := searchDays
			if days <= 0 {
				days = cfg.Papers.Days
			}
			batch, err = loader.LoadDays(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("loading papers: %w", err)
			}
		}
		papers := paper.Flatten(batch)

		tags, err := store.Snapshot()
		if err != nil {
			return err
		}

		chips := make([]string, 0, len(searchChips))
		for _, chip := range searchChips {
			chips = append(chips, strings.ToLower(chip))
		}

		f := filter.Filter{
			Terms:         filter.ExtractTerms(strings.Join(args, " ")),
			Chips:         chips,
			Categories:    searchCats,
			TitleOnly:     searchTitleOnly,
			ReadLaterOnly: searchReadLater,
			StarredOnly:   searchStarred,
			Topic:         searchTopic,
		}
		matched := filter.Apply(f, papers, tags)

		if len(matched) == 0 {
			fmt.Println("No papers match.")
			return nil
		}
		for _, group := range digest.Group(matched, tags) {
			fmt.Printf("\n%s (%d)\n", group.Display, len(group.Entries))
			for _, e := range group.Entries {
				marks := ""
				if e.InReadLater {
					marks += " [read later]"
				}
				for _, topic := range e.StarredTopics {
					marks += fmt.Sprintf(" [*%s]", topic)
				}
				fmt.Printf("  %s%s\n", e.Title, marks)
				if e.Link != "" {
					fmt.Printf("    %s\n", e.Link)
				}
			}
		}
		fmt.Printf("\n%d papers\n", len(matched))
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchDays, "days", 0, "Days to search (default from config)")
	searchCmd.Flags().StringVar(&searchDate, "date", "", "Search a single day (ISO date)")
	searchCmd.Flags().StringSliceVar(&searchChips, "chip", nil, "Additional required keywords (repeatable)")
	searchCmd.Flags().BoolVar(&searchTitleOnly, "title-only", false, "Match titles only")
	searchCmd.Flags().BoolVar(&searchReadLater, "read-later", false, "Only read-later papers")
	searchCmd.Flags().BoolVar(&searchStarred, "starred", false, "Only starred papers")
	searchCmd.Flags().StringVar(&searchTopic, "topic", "", "Only papers starred in this topic")
	searchCmd.Flags().StringSliceVar(&searchCats, "cat", nil, "Restrict to arXiv categories (repeatable)")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web viewer",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(cfg, store, openSource(), newSyncer(store), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- readlater commands ---

var readlaterCmd = &cobra.Command{
	Use:   "readlater",
	Short: "Manage the read-later list",
}

var readlaterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List read-later papers",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		identities, err := store.ReadLater()
		if err != nil {
			return err
		}
		if len(identities) == 0 {
			fmt.Println("Read-later list is empty.")
			return nil
		}
		for _, id := range identities {
			fmt.Println(id)
		}
		return nil
	},
}

var readlaterAddCmd = &cobra.Command{
	Use:   "add [identity]",
	Short: "Add a paper to read later",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.AddReadLater(args[0]); err != nil {
			return err
		}
		fmt.Printf("Added to read later: %s\n", args[0])
		return nil
	},
}

var readlaterRemoveCmd = &cobra.Command{
	Use:   "remove [identity]",
	Short: "Remove a paper from read later",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.RemoveReadLater(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed from read later: %s\n", args[0])
		return nil
	},
}

var readlaterToggleCmd = &cobra.Command{
	Use:   "toggle [identity]",
	Short: "Toggle a paper's read-later state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		added, err := store.ToggleReadLater(args[0])
		if err != nil {
			return err
		}
		if added {
			fmt.Printf("Added to read later: %s\n", args[0])
		} else {
			fmt.Printf("Removed from read later: %s\n", args[0])
		}
		return nil
	},
}

func init() {
	readlaterCmd.AddCommand(readlaterListCmd)
	readlaterCmd.AddCommand(readlaterAddCmd)
	readlaterCmd.AddCommand(readlaterRemoveCmd)
	readlaterCmd.AddCommand(readlaterToggleCmd)
}

// --- topics commands ---

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Manage star topics",
}

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List topics with star counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		names, err := store.Topics()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No topics defined. Add one with: paperdeck topics add")
			return nil
		}
		for _, name := range names {
			stars, _ := store.StarsFor(name)
			fmt.Printf("  %s (%d starred)\n", name, len(stars))
		}
		return nil
	},
}

var topicsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.AddTopic(args[0]); err != nil {
			return err
		}
		fmt.Printf("Added topic: %s\n", args[0])
		return nil
	},
}

var topicsRenameCmd = &cobra.Command{
	Use:   "rename [old] [new]",
	Short: "Rename a topic, carrying its stars",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.RenameTopic(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Renamed topic %q to %q\n", args[0], args[1])
		return nil
	},
}

var topicsDeleteCmd = &cobra.Command{
	Use:     "delete [name]",
	Aliases: []string{"remove"},
	Short:   "Delete a topic and its stars",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteTopic(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted topic: %s\n", args[0])
		return nil
	},
}

func init() {
	topicsCmd.AddCommand(topicsListCmd)
	topicsCmd.AddCommand(topicsAddCmd)
	topicsCmd.AddCommand(topicsRenameCmd)
	topicsCmd.AddCommand(topicsDeleteCmd)
}

// --- star / unstar commands ---

var starCmd = &cobra.Command{
	Use:   "star [topic] [identity]",
	Short: "Star a paper in a topic",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Star(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Starred in %q: %s\n", args[0], args[1])
		return nil
	},
}

var unstarCmd = &cobra.Command{
	Use:   "unstar [topic] [identity]",
	Short: "Remove a paper's star from a topic",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Unstar(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Unstarred in %q: %s\n", args[0], args[1])
		return nil
	},
}

// --- export / import commands ---

var (
	exportTopic     string
	exportReadLater bool
	exportOut       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tags as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var data []byte
		switch {
		case exportReadLater:
			data, err = store.ExportReadLater()
		case exportTopic != "":
			data, err = store.ExportTopic(exportTopic)
		default:
			data, err = store.ExportAllJSON()
		}
		if err != nil {
			return err
		}

		if exportOut == "" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		fmt.Printf("Exported to %s\n", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportTopic, "topic", "", "Export one topic's stars as a bare array")
	exportCmd.Flags().BoolVar(&exportReadLater, "read-later", false, "Export the read-later list as a bare array")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to a file instead of stdout")
}

var importTopic string

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import tags from a JSON export (additive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading import file: %w", err)
		}

		if err := store.Import(data, tagstore.Dest{Topic: importTopic}); err != nil {
			return err
		}
		fmt.Println("Import complete.")
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importTopic, "topic", "", "Import a bare identity array into this topic (default read later)")
}

// --- read command ---

var readCmd = &cobra.Command{
	Use:   "read [identity-or-url]",
	Short: "Fetch and print a paper's abstract page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := fetch.AbsURL(args[0])
		fetcher := fetch.NewAbstractFetcher(15 * time.Second)
		abstract, err := fetcher.Fetch(url)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", url, err)
		}

		if abstract.Title != "" {
			fmt.Println(abstract.Title)
			fmt.Println(strings.Repeat("=", len(abstract.Title)))
		}
		fmt.Println(abstract.Text)
		return nil
	},
}

// --- digest command ---

var (
	digestDays int
	digestDate string
	digestOut  string
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Print recent papers as a markdown digest",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		loader := paper.NewLoader(openSource())
		var batch []paper.Day
		if digestDate != "" {
			batch = loader.LoadDates(cmd.Context(), []string{digestDate})
		} else {
			days := digestDays
			if days <= 0 {
				days = cfg.Papers.Days
			}
			batch, err = loader.LoadDays(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("loading papers: %w", err)
			}
		}

		tags, err := store.Snapshot()
		if err != nil {
			return err
		}

		doc := digest.Markdown(digest.Group(paper.Flatten(batch), tags))
		if digestOut == "" {
			fmt.Print(doc)
			return nil
		}
		if err := os.WriteFile(digestOut, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("writing digest: %w", err)
		}
		fmt.Printf("Wrote digest to %s\n", digestOut)
		return nil
	},
}

func init() {
	digestCmd.Flags().IntVar(&digestDays, "days", 0, "Days to include (default from config)")
	digestCmd.Flags().StringVar(&digestDate, "date", "", "Digest a single day (ISO date)")
	digestCmd.Flags().StringVarP(&digestOut, "out", "o", "", "Write to a file instead of stdout")
}

// --- shared helpers ---

func openStore() (*tagstore.Store, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return tagstore.Open(filepath.Join(dataDir, "paperdeck.db"))
}

func openSource() paper.Source {
	if cfg.Papers.BaseURL != "" {
		return paper.NewHTTPSource(cfg.Papers.BaseURL)
	}
	return paper.NewDirSource(cfg.Papers.Dir)
}

func newSyncer(store *tagstore.Store) *sync.Client {
	if !cfg.Sync.Enabled {
		return nil
	}
	return sync.New(cfg.Sync.Endpoint, store)
}
