package backend

import (
	"context"
	"fmt"

	"git.sr.ht/~gioverse/skel/stream"
)

// Scenario runs budget-shift simulations against the model. Each
// distinct request gets its own mutation keyed by its parameters, so
// re-running the same shift reuses the finished result instead of
// hitting the API again.
type Scenario struct {
	pool   *stream.MutationPool[string, ScenarioRun]
	client *Client
}

func NewScenario(mutator *stream.Mutator, client *Client) *Scenario {
	return &Scenario{
		pool:   stream.NewMutationPool[string, ScenarioRun](mutator),
		client: client,
	}
}

type ScenarioRun struct {
	Request ScenarioRequest
	Result  *ScenarioResponse
	Running bool
	Err     error
}

func scenarioKey(req ScenarioRequest) string {
	return fmt.Sprintf("%s>%s@%g", req.SourceChannel, req.TargetChannel, req.ShiftRatio)
}

func (s *Scenario) Run(req ScenarioRequest) (mutation *stream.Mutation[ScenarioRun], isNew bool) {
	return stream.Mutate(s.pool, scenarioKey(req), func(ctx context.Context) (values <-chan ScenarioRun) {
		out := make(chan ScenarioRun)
		go func() {
			defer close(out)
			current := ScenarioRun{
				Request: req,
				Running: true,
			}
			select {
			case out <- current:
			case <-ctx.Done():
				return
			}
			resp, err := s.client.SimulateShift(ctx, req)
			current.Running = false
			if err != nil {
				current.Err = err
			} else {
				current.Result = resp
			}
			select {
			case out <- current:
			case <-ctx.Done():
			}
		}()
		return out
	})
}
