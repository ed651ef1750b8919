package main

import (
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"sharefind/internal/config"
	"sharefind/internal/directory"
	"sharefind/internal/domain"
	"sharefind/internal/eventbus"
	"sharefind/internal/sharee"
	"sharefind/internal/ui"
)

func main() {
	app := &cli.App{
		Name:   "sharefind",
		Usage:  "Typeahead search for share recipients on Nextcloud-compatible servers",
		Before: setupLogging,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "Server base URL, e.g. https://cloud.example.com",
			},
			&cli.StringFlag{
				Name:  "user",
				Usage: "Account name to authenticate as",
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "App password or token",
			},
			&cli.BoolFlag{
				Name:  "global",
				Usage: "Search the federated/global directory",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file",
				Value: "sharefind.log",
			},
		},
		Action: runUI,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a single sharee search and print the results",
				ArgsUsage: "<text>",
				Action:    runSearch,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "item-type",
						Usage: "Kind of item being shared (file or folder)",
						Value: "file",
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Result page to request",
						Value: 1,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging redirects the standard logger to a file so log lines don't
// tear up the terminal UI.
func setupLogging(c *cli.Context) error {
	logFile, err := os.OpenFile(c.String("log-file"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
		return nil
	}
	log.SetOutput(logFile)
	return nil
}

// loadConfig merges defaults, the config file and command line flags
func loadConfig(c *cli.Context, bus eventbus.EventBus) (*config.Config, error) {
	configSvc := config.NewConfigServiceWithBus(bus)

	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = configSvc.LoadFromPath(path)
	} else {
		cfg, err = configSvc.Load()
	}
	if err != nil {
		return nil, err
	}

	if server := c.String("server"); server != "" {
		cfg.ServerURL = server
	}
	if user := c.String("user"); user != "" {
		cfg.Username = user
	}
	if password := c.String("password"); password != "" {
		cfg.AppPassword = password
	}
	if c.Bool("global") {
		cfg.GlobalLookup = true
	}

	if cfg.ServerURL == "" || cfg.Username == "" || cfg.AppPassword == "" {
		return nil, fmt.Errorf("server, user and password must be set via config file or flags")
	}

	return cfg, nil
}

// runUI starts the interactive typeahead
func runUI(c *cli.Context) error {
	bus := eventbus.New()
	defer bus.Stop()

	cfg, err := loadConfig(c, bus)
	if err != nil {
		return err
	}

	session := directory.NewSession(cfg.ServerURL, cfg.Username, cfg.AppPassword)
	client := directory.NewClient(session)

	model := sharee.NewModel(bus, client, sharee.Options{
		DebounceInterval: time.Duration(cfg.DebounceMs) * time.Millisecond,
		PageSize:         cfg.PageSize,
	})
	defer model.Close()

	model.SetSession(session)
	if cfg.GlobalLookup {
		model.SetLookupMode(domain.GlobalSearch)
	}

	uiModel := ui.NewModel(model, cfg.ServerURL)
	p := tea.NewProgram(uiModel, tea.WithAltScreen())

	// Forward bus events to the UI
	eventChan := make(chan eventbus.DomainEvent, 100)
	forwardEvent := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			log.Println("Event channel full, dropping event")
		}
	}
	for _, eventType := range []eventbus.EventType{
		eventbus.EventFetchStateChanged,
		eventbus.EventResultsReady,
		eventbus.EventSearchError,
	} {
		bus.Subscribe(eventType, forwardEvent)
	}

	go func() {
		for event := range eventChan {
			p.Send(ui.EventMsg{Event: event})
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}

// runSearch issues one sharee search without the interactive UI
func runSearch(c *cli.Context) error {
	text := c.Args().First()
	if text == "" {
		return fmt.Errorf("usage: sharefind search <text>")
	}

	bus := eventbus.New()
	defer bus.Stop()
	cfg, err := loadConfig(c, bus)
	if err != nil {
		return err
	}

	session := directory.NewSession(cfg.ServerURL, cfg.Username, cfg.AppPassword)
	client := directory.NewClient(session)

	results, err := client.Sharees(c.Context, directory.SearchOptions{
		Search:   text,
		ItemType: c.String("item-type"),
		Page:     c.Int("page"),
		PerPage:  cfg.PageSize,
		Lookup:   cfg.GlobalLookup,
	})
	if err != nil {
		return err
	}

	sharees := sharee.Merge(results, nil)
	if len(sharees) == 0 {
		fmt.Println("no recipients found")
		return nil
	}

	for _, s := range sharees {
		fmt.Printf("%-8s %-40s %s\n", s.Type, s.Format(), s.ShareWith)
	}
	return nil
}
