package cli

import (
	"context"
	"fmt"
	"time"
)

// Milestones handles the milestone subcommands:
//
//	milestones              list milestones in order
//	milestones seed         create the default set (empty collection only)
//	milestones reach <id>   mark a milestone as reached
func (a *App) Milestones(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.milestoneList()
	}

	switch args[0] {
	case "seed":
		if err := a.svc.SeedMilestones(ctx); err != nil {
			a.log.Error(ctx, "seed milestones failed", "error", err)
			return err
		}
		return a.milestoneList()
	case "reach":
		if len(args) != 2 {
			fmt.Println("Usage: milestones reach <id>")
			return nil
		}
		return a.milestoneReach(ctx, args[1])
	default:
		fmt.Println("Unknown milestones subcommand:", args[0])
		return nil
	}
}

func (a *App) milestoneList() error {
	milestones := a.svc.Milestones.Snapshot()
	if len(milestones) == 0 {
		fmt.Println("No milestones yet. Try 'milestones seed'.")
		return nil
	}
	for _, m := range milestones {
		mark := " "
		if m.IsReached {
			mark = "x"
		}
		fmt.Printf("[%s] %s  %s  (%s)\n", mark, m.Date, m.Title, m.ID)
	}
	return nil
}

func (a *App) milestoneReach(ctx context.Context, id string) error {
	m, ok := a.svc.Milestones.Get(id)
	if !ok {
		fmt.Println("No such milestone:", id)
		return nil
	}
	m.IsReached = true
	if _, err := a.svc.Milestones.Update(ctx, m); err != nil {
		a.log.Error(ctx, "reach milestone failed", "error", err)
		return err
	}
	return a.milestoneList()
}

// Countdown prints the running "together for" counter and the time
// left until the next unreached milestone.
func (a *App) Countdown(ctx context.Context) error {
	now := time.Now()

	elapsed := a.svc.Elapsed(now)
	fmt.Printf("Together for %d days, %d hours, %d minutes, %d seconds (since %s)\n",
		elapsed.Days, elapsed.Hours, elapsed.Minutes, elapsed.Seconds, a.svc.StartDate())

	next, left, ok := a.svc.Countdown(now)
	if !ok {
		fmt.Println("Every milestone reached. Add a new one!")
		return nil
	}
	fmt.Printf("%s in %d days, %d hours, %d minutes, %d seconds (%s)\n",
		next.Title, left.Days, left.Hours, left.Minutes, left.Seconds, next.Date)
	return nil
}

// Gallery lists every stored media object with a temporary signed URL.
func (a *App) Gallery(ctx context.Context) error {
	items, err := a.svc.Gallery(ctx)
	if err != nil {
		a.log.Error(ctx, "gallery failed", "error", err)
		return err
	}
	if len(items) == 0 {
		fmt.Println("No media yet.")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%s\n  %s\n", item.Key, item.URL)
	}
	return nil
}
