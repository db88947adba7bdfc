package orchestrator

import (
	"github.com/skillsenselab/healthcore/component"
	"github.com/skillsenselab/healthcore/dashboard"
	"github.com/skillsenselab/healthcore/errors"
	"github.com/skillsenselab/healthcore/event"
	"github.com/skillsenselab/healthcore/logger"
)

// SubscriberRegistrar is the piece of the bus the dispatcher needs.
type SubscriberRegistrar interface {
	Register(sub event.Subscriber) error
	Unregister(id string) bool
}

const dispatcherSubscriberID = "health-dispatcher"

// Dispatcher forwards the canonical health observation stream from the bus
// into the dashboard. It subscribes to health-update events only: state
// changes and recoveries reach the dashboard through the health observation
// they cause, which keeps one bus event equal to one dashboard observation.
type Dispatcher struct {
	bus  SubscriberRegistrar
	dash *dashboard.Dashboard
	log  *logger.Logger
}

// NewDispatcher creates a dispatcher wired to the bus and dashboard.
func NewDispatcher(bus SubscriberRegistrar, dash *dashboard.Dashboard) *Dispatcher {
	return &Dispatcher{
		bus:  bus,
		dash: dash,
		log:  logger.GetGlobalLogger().WithComponent("dispatcher"),
	}
}

// Start registers the bus subscription.
func (d *Dispatcher) Start() error {
	return d.bus.Register(event.Subscriber{
		ID:      dispatcherSubscriberID,
		Filters: event.ReasonFilter(event.ReasonHealthUpdate),
		Handler: d.handle,
	})
}

// Stop removes the bus subscription.
func (d *Dispatcher) Stop() {
	d.bus.Unregister(dispatcherSubscriberID)
}

func (d *Dispatcher) handle(e event.Event) error {
	id, ok := e.Payload[event.KeyComponent].(string)
	if !ok || id == "" {
		return errors.InvalidInput(event.KeyComponent, "missing or not a string")
	}
	raw, ok := e.Payload[event.KeyState].(string)
	if !ok {
		return errors.InvalidInput(event.KeyState, "missing or not a string")
	}
	state, err := component.ParseState(raw)
	if err != nil {
		d.log.Warn("dropping health event with unknown state", logger.Fields(
			logger.FieldComponent, id,
			logger.FieldState, raw,
			logger.FieldEventID, e.ID,
		))
		return err
	}

	d.dash.Observe(id, state)
	return nil
}
