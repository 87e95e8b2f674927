// shophub-tui is the terminal storefront. It loads the catalog the same way
// the HTTP server does and keeps the cart for the lifetime of the program.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drstein77/shophub/internal/app"
	"github.com/drstein77/shophub/internal/catalog"
	"github.com/drstein77/shophub/internal/config"
	"github.com/drstein77/shophub/internal/logger"
	"github.com/drstein77/shophub/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	option := config.NewOptions()
	option.ParseFlags()

	// Logs must not reach the terminal while the alternate screen is active.
	log := logger.Nop()
	if option.LogFile() != "" {
		l, err := logger.NewLogger(option.LogLevel(), option.LogFile())
		if err != nil {
			return err
		}
		log = l
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, keeper, err := app.NewSource(ctx, option, log)
	if err != nil {
		return err
	}
	if keeper != nil {
		defer keeper.Close()
	}

	store := catalog.NewStore(source, log.Named("catalog"))
	defer store.Close()

	program := tea.NewProgram(tui.NewModel(ctx, store), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
