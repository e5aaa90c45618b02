package backend

import (
	"context"

	"gioui.org/app"
	"git.sr.ht/~gioverse/skel/stream"
)

type WindowState struct {
	Bundle
	Controller *stream.Controller
}

func NewWindowState(ctx context.Context, bundle Bundle, win *app.Window) WindowState {
	return WindowState{
		Bundle:     bundle,
		Controller: stream.NewController(ctx, win.Invalidate),
	}
}

type Bundle struct {
	Datasource *Datasource
	Scenario   *Scenario
}

func NewBundle(mutator *stream.Mutator, client *Client, ds *Datasource) Bundle {
	return Bundle{
		Datasource: ds,
		Scenario:   NewScenario(mutator, client),
	}
}
