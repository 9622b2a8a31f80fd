// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/similigh/mirror-bot/internal/integrations/webhook"
	"github.com/similigh/mirror-bot/internal/log"
)

// fatalHandler reports an unrecoverable fault and terminates the process
// after a delay so the notification can be delivered.
type fatalHandler struct {
	notifier webhook.Notifier
	delay    time.Duration
	exit     func(code int)
	sleep    func(d time.Duration)
}

func newFatalHandler(notifier webhook.Notifier, delay time.Duration) *fatalHandler {
	return &fatalHandler{
		notifier: notifier,
		delay:    delay,
		exit:     os.Exit,
		sleep:    time.Sleep,
	}
}

// Handle notifies, waits and exits with status 1.
func (f *fatalHandler) Handle(err error) {
	log.Error("Fatal error, exiting", "error", err, "delay", f.delay)

	ctx, cancel := context.WithTimeout(context.Background(), f.delay+time.Second)
	f.notifier.Notify(ctx, fmt.Sprintf("Mirror-Bot stopped on a fatal error:\n%v", err))
	cancel()

	f.sleep(f.delay)
	f.exit(1)
}

// recoverFatal routes a panic in the calling goroutine to the handler.
func (f *fatalHandler) recoverFatal() {
	if r := recover(); r != nil {
		f.Handle(fmt.Errorf("panic: %v", r))
	}
}
