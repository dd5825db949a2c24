// Command assetdesk runs the asset management portal: an HTTP API over the
// in-memory application store, with sqlite persistence for the activity
// feed, layout configuration and snapshots.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/assetdesk/assetdesk/internal/activity"
	"github.com/assetdesk/assetdesk/internal/config"
	"github.com/assetdesk/assetdesk/internal/event"
	"github.com/assetdesk/assetdesk/internal/eventbus"
	"github.com/assetdesk/assetdesk/internal/export"
	"github.com/assetdesk/assetdesk/internal/fetch"
	"github.com/assetdesk/assetdesk/internal/handler"
	"github.com/assetdesk/assetdesk/internal/layout"
	"github.com/assetdesk/assetdesk/internal/lifecycle"
	"github.com/assetdesk/assetdesk/internal/persist"
	"github.com/assetdesk/assetdesk/internal/registry"
	"github.com/assetdesk/assetdesk/internal/server"
	"github.com/assetdesk/assetdesk/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "assetdesk",
	Short: "Asset, license and hardware management portal",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portal HTTP server",
	RunE:  runServe,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a snapshot of the demo dataset to the export directory",
	RunE:  runExport,
}

var validateLayoutCmd = &cobra.Command{
	Use:   "validate-layout [file]",
	Short: "Validate a layout document against the schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidateLayout,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateLayoutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildStore assembles the engine, store and demo data for commands that
// need application state without the full server.
func buildStore(cfg config.Config, publish store.Publisher) (*store.Store, error) {
	engine := &lifecycle.Engine{Separator: cfg.IDSeparator}
	opts := []store.Option{}
	if publish != nil {
		opts = append(opts, store.WithPublisher(publish))
	}
	s := store.New(engine, opts...)

	res, err := fetch.Load(context.Background(), fetch.NewMockSource())
	if err != nil {
		return nil, fmt.Errorf("loading data: %w", err)
	}
	s.Load(res.Users, res.Families, res.Assets, res.Requests, res.Vendors)
	return s, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	picklists, err := config.LoadPicklists(cfg.PicklistPath)
	if err != nil {
		return err
	}
	reg := registry.New(picklists)

	db, err := persist.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	actStore := activity.NewSQLiteStore(db)
	if err := actStore.CreateTable(ctx); err != nil {
		return fmt.Errorf("creating activity schema: %w", err)
	}
	perStore := persist.NewStore(db)
	if err := perStore.CreateTables(ctx); err != nil {
		return fmt.Errorf("creating persistence schema: %w", err)
	}

	bus := eventbus.New(256)
	stream := handler.NewEventStream()
	bus.Subscribe("activity-indexer", activity.NewIndexer(actStore))
	bus.Subscribe("event-stream", stream)
	bus.Start(ctx)

	s, err := buildStore(cfg, func(evt event.DomainEvent) {
		bus.Publish(ctx, evt)
	})
	if err != nil {
		return err
	}

	if saved, ok, err := perStore.LoadLayoutConfig(ctx); err != nil {
		log.Printf("layout configuration load failed, using defaults: %v", err)
	} else if ok {
		if err := s.ReplaceLayoutConfig(saved); err != nil {
			log.Printf("persisted layout configuration rejected, using defaults: %v", err)
		}
	}

	return server.Run(ctx, server.Config{
		Addr:      cfg.Addr,
		Store:     s,
		Registry:  reg,
		Activity:  actStore,
		Persist:   perStore,
		Events:    stream,
		ExportDir: cfg.ExportDir,
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	s, err := buildStore(cfg, nil)
	if err != nil {
		return err
	}
	path, err := export.WriteFile(cfg.ExportDir, s.Snapshot())
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func runValidateLayout(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if err := layout.ValidateDocument(raw); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	fmt.Printf("%s: valid\n", args[0])
	return nil
}
