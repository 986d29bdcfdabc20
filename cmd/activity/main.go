package main

import (
	"context"
	"time"

	"github.com/niksmo/ecom-admin/config"
	"github.com/niksmo/ecom-admin/internal/app"
	"github.com/niksmo/ecom-admin/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext(context.Background())
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	activity := app.NewActivity(sigCtx, cfg)

	activity.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	activity.Close(ctx)
}
