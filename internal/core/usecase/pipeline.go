package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
)

// Stage is one step of the product search pipeline. Stages run in a fixed
// order, each appending to the shared state; a returned error aborts the run.
type Stage interface {
	Name() string
	Run(ctx context.Context, state *domain.PipelineState) error
}

// StageObserver receives per-stage wall-clock durations.
type StageObserver func(stage string, elapsed time.Duration)

// Pipeline executes the product search stages sequentially. There is no
// stage skipping: degradation happens inside a stage, never around it.
type Pipeline struct {
	stages   []Stage
	observer StageObserver
}

func NewPipeline(observer StageObserver, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, observer: observer}
}

func (p *Pipeline) Run(ctx context.Context, query domain.Query, topK int) (*domain.PipelineState, error) {
	state := &domain.PipelineState{RawQuery: query, TopK: topK}
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return state, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}

		started := time.Now()
		err := stage.Run(ctx, state)
		if p.observer != nil {
			p.observer(stage.Name(), time.Since(started))
		}
		if err != nil {
			return state, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
	}
	return state, nil
}
