package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"keepsake/internal/config"
	"keepsake/internal/keeper"
	"keepsake/internal/logging"
)

// App binds the keeper service to the interactive loop.
type App struct {
	config *config.Config
	svc    *keeper.Service
	log    logging.Logger
	reader *bufio.Reader

	watchOnce sync.Once
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	svc, err := keeper.New(ctx, c, log)
	if err != nil {
		return nil, err
	}
	return &App{
		config: c,
		svc:    svc,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// Run seeds the views from the local mirror, starts the loop, and
// shuts the service down when the loop ends.
func (a *App) Run(ctx context.Context) {
	fmt.Println("Keepsake (type 'help' for commands)")

	if err := a.svc.LoadMirror(ctx); err != nil {
		a.log.Warn(ctx, "local mirror unavailable", "error", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.svc.Close(closeCtx); err != nil {
		a.log.Warn(ctx, "shutdown incomplete", "error", err)
	}
}

func (a *App) isUnlocked() bool {
	return a.svc.Unlocked()
}

func (a *App) status() string {
	if a.isUnlocked() {
		return "(unlocked) "
	}
	return "(locked) "
}

// startWatch begins live polling once, after the first successful
// unlock; polling a locked backend would only produce 401 noise.
func (a *App) startWatch(ctx context.Context) {
	a.watchOnce.Do(func() {
		go a.svc.Watch(ctx)
	})
}
