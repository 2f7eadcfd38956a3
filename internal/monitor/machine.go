package monitor

import (
	"github.com/anggasct/fluo"
)

// Loop states. The monitor is IDLE between deadlines, POLLING for the single
// synchronous request, and RENDERING while an animation drains one frame per
// tick.
const (
	stateIdle      = "idle"
	statePolling   = "polling"
	stateRendering = "rendering"
)

const (
	eventPollDue       = "poll_due"
	eventPollOK        = "poll_ok"
	eventPollFailed    = "poll_failed"
	eventRenderDue     = "render_due"
	eventFrame         = "frame"
	eventAnimationDone = "animation_done"
)

// buildMachine wires the tick-driven loop machine. Every event is injected
// from Tick; transitions carry the monitor's actions.
func (m *Monitor) buildMachine() fluo.Machine {
	def := fluo.NewMachine().
		State(stateIdle).Initial().
		To(statePolling).On(eventPollDue).Do(m.pollAction).
		To(stateRendering).On(eventRenderDue).Do(m.twinkleAction).
		State(statePolling).
		To(stateRendering).On(eventPollOK).Do(m.sweepAction).
		To(stateIdle).On(eventPollFailed).
		State(stateRendering).
		ToSelf().On(eventFrame).Do(m.frameAction).
		To(stateIdle).On(eventAnimationDone).
		Build()

	return def.CreateInstance()
}
