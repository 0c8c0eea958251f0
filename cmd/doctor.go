package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/sweeper/internal/config"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("sweeper doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND, defaults in effect)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	fmt.Printf("  Site:     %s (qualifying view %s)\n", cfg.Site.URL, cfg.Site.HomePath)
	if cfg.Site.Identity != "" {
		fmt.Printf("  Identity: %s (pinned)\n", cfg.Site.Identity)
	} else {
		fmt.Println("  Identity: detected from the page at runtime")
	}

	fmt.Print("  Chrome:   ")
	if path, ok := launcher.LookPath(); ok {
		fmt.Printf("%s (OK)\n", path)
	} else {
		fmt.Println("NOT FOUND; rod will download a managed build on first run")
	}

	if cfg.Gateway.Enabled {
		fmt.Printf("  Gateway:  ws://%s/ws , http://%s/status\n", cfg.Gateway.Addr, cfg.Gateway.Addr)
	} else {
		fmt.Println("  Gateway:  disabled")
	}
	if cfg.Tracing.Endpoint != "" {
		fmt.Printf("  Tracing:  %s (%s)\n", cfg.Tracing.Endpoint, protocolOrDefault(cfg.Tracing.Protocol))
	} else {
		fmt.Println("  Tracing:  disabled")
	}
}

func protocolOrDefault(p string) string {
	if p == "" {
		return "grpc"
	}
	return p
}
