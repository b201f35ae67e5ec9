package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"keepsake/internal/authgate"
)

// getSimpleText, getSecret and getLines are indirections used to
// facilitate testing. They point to interactive input helpers and can
// be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getSecret     = GetSecret
	getLines      = GetLines
)

// sleepFn is a test seam for the post-unlock pause.
var sleepFn = time.Sleep

// unlockDelay is the fixed pause after a successful unlock before the
// app advances; the one transition not triggered by the user.
const unlockDelay = time.Second

// Login prompts for the shared secret without echo and unlocks the
// gate. On success it pauses briefly, pulls fresh data, and starts
// live polling. A wrong secret leaves the gate locked.
func (a *App) Login(ctx context.Context) error {
	secret, err := getSecret(os.Stdout)
	if err != nil {
		return err
	}
	defer wipeBytes(secret)

	if err := a.svc.Unlock(string(secret)); err != nil {
		if errors.Is(err, authgate.ErrWrongSecret) {
			fmt.Println("That's not our date. Try again?")
			return nil
		}
		a.log.Error(ctx, "unlock failed", "error", err)
		return err
	}

	fmt.Println("Welcome back!")
	sleepFn(unlockDelay)

	if err := a.svc.Refresh(ctx); err != nil {
		a.log.Warn(ctx, "initial refresh failed, showing mirrored data", "error", err)
	}
	a.startWatch(ctx)
	return nil
}

// Logout locks the gate. Mirrored data stays on disk.
func (a *App) Logout(ctx context.Context) error {
	a.svc.Lock()
	fmt.Println("Locked.")
	return nil
}

// Refresh re-fetches every collection from the backend.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.svc.Refresh(ctx); err != nil {
		a.log.Error(ctx, "refresh failed", "error", err)
		return err
	}
	fmt.Println("Up to date.")
	return nil
}
