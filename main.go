package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"

	"github.com/mixwatch/mixwatch/backend"
)

func main() {
	configPath := flag.String("config", "mixwatch.yml", "path to the configuration file")
	baseURL := flag.String("api", "", "override the configured API base URL")
	flag.Parse()
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed loading config: %v", err)
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mutator := stream.NewMutator(appCtx, time.Second)
	client := backend.NewClient(cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout)
	ds, err := backend.NewDatasource(appCtx, mutator, client, cfg.API.CacheTTL, cfg.Model.SpendSteps, cfg.Model.CredibleInterval)
	if err != nil {
		log.Fatalf("failed creating datasource: %v", err)
	}
	bundle := backend.NewBundle(mutator, client, ds)

	go func() {
		w := app.NewWindow(
			app.Title("Mixwatch"),
			app.Size(unit.Dp(1100), unit.Dp(760)),
		)
		if err := loop(appCtx, w, bundle); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func loop(ctx context.Context, w *app.Window, bundle backend.Bundle) error {
	ws := backend.NewWindowState(ctx, bundle, w)
	expl := explorer.NewExplorer(w)
	ui := NewUI(ws, expl)
	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}
