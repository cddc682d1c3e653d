package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mberthelot/valet/pkg/agent"
	"github.com/mberthelot/valet/pkg/config"
	"github.com/mberthelot/valet/pkg/install"
	"github.com/mberthelot/valet/pkg/interaction"
	"github.com/mberthelot/valet/pkg/llm"
	"github.com/mberthelot/valet/pkg/logging"
	"github.com/mberthelot/valet/pkg/ui"
)

const version = "0.1.0"

func main() {
	// Check for subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "install":
			os.Exit(runInstall())
		case "doctor":
			runDoctor()
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "version", "--version", "-v":
			fmt.Println("Valet v" + version)
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	// Default: run the interactive assistant
	if err := runInteractive(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInteractive() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	log, err := logging.New(dir)
	if err != nil {
		return err
	}
	defer log.Sync()

	client, err := llm.NewClient(llm.Options{
		Provider: cfg.Provider.Name,
		Model:    cfg.Provider.Model,
		Address:  cfg.Provider.Address,
	}, log)
	if err != nil {
		return err
	}

	if cfg.Provider.IsLocal && !llm.Reachable(cfg.Provider.Address) {
		fmt.Fprintf(os.Stderr, "Warning: provider at %s is not answering; responses may fail.\n",
			cfg.Provider.Address)
	}

	team, err := agent.BuildTeam(agent.TeamOptions{
		Client:       client,
		AgentName:    cfg.AgentName,
		Personality:  cfg.Personality,
		Workspace:    cfg.Workspace,
		SearxAddress: cfg.SearxAddress,
		Log:          log,
	})
	if err != nil {
		return err
	}
	defer team.Close()

	u := ui.New()
	u.DrawBanner(version, cfg.Provider.Name, cfg.Provider.Model, cfg.Workspace)

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	it, err := interaction.New(interaction.Options{
		Team:               team,
		UI:                 u,
		BaseDir:            dir,
		CWD:                cwd,
		SaveSession:        cfg.SaveSession,
		RecoverLastSession: cfg.RecoverLastSession,
		Log:                log,
	})
	if err != nil {
		return err
	}
	return it.Run(context.Background())
}

func runInstall() int {
	dir, err := config.Dir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	log, err := logging.New(dir)
	if err != nil {
		log = logging.Nop()
	}
	return install.New(os.Stdout, log).Execute(context.Background())
}

func runDoctor() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Provider:   %s (%s)\n", cfg.Provider.Name, cfg.Provider.Model)
	fmt.Printf("Address:    %s\n", cfg.Provider.Address)
	fmt.Printf("Workspace:  %s\n", cfg.Workspace)
	fmt.Printf("Search:     %s\n", cfg.SearxAddress)

	if cfg.Provider.IsLocal {
		if llm.Reachable(cfg.Provider.Address) {
			fmt.Println("Provider reachability: ok")
		} else {
			fmt.Println("Provider reachability: NOT answering")
		}
	} else {
		fmt.Println("Provider reachability: skipped (cloud provider)")
	}

	if llm.Reachable(cfg.SearxAddress) {
		fmt.Println("Web search (SearxNG):  ok")
	} else {
		fmt.Println("Web search (SearxNG):  NOT answering, browser agent will be degraded")
	}
}

func printHelp() {
	fmt.Println(`Valet - Local Multi-Agent Assistant

Usage:
  valet                   Start an interactive session
  valet install           Install native dependencies (audio, media)
  valet doctor            Check provider and search reachability
  valet help              Show this help message
  valet version           Show version

Configuration lives in ~/.valet/config.yaml. Environment overrides:
  VALET_PROVIDER, VALET_MODEL, VALET_ADDRESS, VALET_PERSONALITY, VALET_WORKSPACE

Cloud providers read API keys from OPENAI_API_KEY / DEEPSEEK_API_KEY.`)
}
