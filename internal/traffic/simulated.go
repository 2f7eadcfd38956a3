package traffic

import (
	"context"
	"sync"
	"time"

	"github.com/jaswdr/faker"

	"github.com/witnessmenow/bridge-traffic-display/internal/models"
)

const (
	simBaselineSec   = 840 // ~14 minute crossing
	simBaselineNoise = 60
	simMaxCongestion = 600
	simDriftStep     = 90
)

// SimulatedProvider generates plausible travel times so the display runs
// end-to-end without a credential. Congestion drifts between samples instead
// of jumping, which makes the color changes look like a real rush hour.
type SimulatedProvider struct {
	mu         sync.Mutex
	fake       faker.Faker
	congestion int
}

func NewSimulatedProvider() *SimulatedProvider {
	return &SimulatedProvider{fake: faker.New()}
}

func (p *SimulatedProvider) Sample(_ context.Context, route models.Route) (models.TrafficSample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.congestion += p.fake.IntBetween(-simDriftStep, simDriftStep)
	if p.congestion < 0 {
		p.congestion = 0
	}
	if p.congestion > simMaxCongestion {
		p.congestion = simMaxCongestion
	}

	without := simBaselineSec + p.fake.IntBetween(-simBaselineNoise, simBaselineNoise)
	with := without + p.congestion

	return models.NewTrafficSample(route, without, with, time.Now()), nil
}
