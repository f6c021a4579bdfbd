package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmorenov/cajadesk/internal/database/testutil"
)

func newTestConfigService(t *testing.T) *ConfigService {
	t.Helper()

	_, settings := testutil.MustOpenSettings(t)
	svc, err := NewConfigService(settings)
	require.NoError(t, err)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

type recordingIndicator struct {
	events []Event
}

func (r *recordingIndicator) Flash(ev Event) { r.events = append(r.events, ev) }

type recordingCues struct {
	kinds []string
}

func (r *recordingCues) Cue(kind string) { r.kinds = append(r.kinds, kind) }

func TestBusDomainHandlersRunBeforeWildcard(t *testing.T) {
	bus := NewBus(newTestConfigService(t))

	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "wildcard-1") })
	bus.Subscribe(DomainRequest, func(Event) { order = append(order, "domain-1") })
	bus.Subscribe(DomainRequest, func(Event) { order = append(order, "domain-2") })
	bus.SubscribeAll(func(Event) { order = append(order, "wildcard-2") })

	bus.Publish(Event{Domain: DomainRequest, Action: ActionCreate})

	require.Equal(t, []string{"domain-1", "domain-2", "wildcard-1", "wildcard-2"}, order)
}

func TestBusHandlersForOtherDomainsNotInvoked(t *testing.T) {
	bus := NewBus(newTestConfigService(t))

	called := false
	bus.Subscribe(DomainPrinter, func(Event) { called = true })

	bus.Publish(Event{Domain: DomainUser, Action: ActionUpdate})

	require.False(t, called)
}

func TestBusDisabledDomainDropsEventEntirely(t *testing.T) {
	config := newTestConfigService(t)
	domains := []Domain{DomainNotification}
	_, err := config.Update(context.Background(), ConfigPatch{EnabledDomains: &domains})
	require.NoError(t, err)

	indicator := &recordingIndicator{}
	cues := &recordingCues{}
	bus := NewBus(config, WithIndicator(indicator), WithCuePlayer(cues))

	var delivered []Event
	bus.SubscribeAll(func(ev Event) { delivered = append(delivered, ev) })

	bus.Publish(Event{Domain: DomainPrinter, Action: ActionUpdate})

	require.Empty(t, delivered)
	require.Empty(t, indicator.events)
	require.Empty(t, cues.kinds)

	bus.Publish(Event{Domain: DomainNotification, Action: ActionCreate})
	require.Len(t, delivered, 1)
	require.Len(t, indicator.events, 1)
	require.Equal(t, []string{"notification"}, cues.kinds)
}

func TestBusUnsubscribeIsIdempotent(t *testing.T) {
	bus := NewBus(newTestConfigService(t))

	var first, second int
	unsubscribe := bus.Subscribe(DomainRequest, func(Event) { first++ })
	bus.Subscribe(DomainRequest, func(Event) { second++ })

	unsubscribe()
	unsubscribe()
	unsubscribe()

	bus.Publish(Event{Domain: DomainRequest, Action: ActionCreate})

	require.Zero(t, first)
	require.Equal(t, 1, second)
}

func TestBusUnsubscribeDuringDispatchAffectsNextPublishOnly(t *testing.T) {
	bus := NewBus(newTestConfigService(t))

	var calls []string
	var unsubscribeSecond func()
	bus.Subscribe(DomainRequest, func(Event) {
		calls = append(calls, "first")
		unsubscribeSecond()
	})
	unsubscribeSecond = bus.Subscribe(DomainRequest, func(Event) {
		calls = append(calls, "second")
	})

	bus.Publish(Event{Domain: DomainRequest, Action: ActionCreate})
	require.Equal(t, []string{"first", "second"}, calls)

	bus.Publish(Event{Domain: DomainRequest, Action: ActionCreate})
	require.Equal(t, []string{"first", "second", "first"}, calls)
}

func TestBusPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewBus(newTestConfigService(t))

	var delivered int
	bus.Subscribe(DomainRequest, func(Event) { panic("boom") })
	bus.Subscribe(DomainRequest, func(Event) { delivered++ })
	bus.SubscribeAll(func(Event) { delivered++ })

	require.NotPanics(t, func() {
		bus.Publish(Event{Domain: DomainRequest, Action: ActionCreate})
	})
	require.Equal(t, 2, delivered)
}

func TestBusSideEffectsHonourConfigFlags(t *testing.T) {
	config := newTestConfigService(t)
	off := false
	_, err := config.Update(context.Background(), ConfigPatch{
		ShowVisualIndicator: &off,
		PlaySound:           &off,
	})
	require.NoError(t, err)

	indicator := &recordingIndicator{}
	cues := &recordingCues{}
	bus := NewBus(config, WithIndicator(indicator), WithCuePlayer(cues))

	bus.Publish(Event{Domain: DomainSystem, Action: ActionUpdate})

	require.Empty(t, indicator.events)
	require.Empty(t, cues.kinds)
}

func TestBusNilHandlerSubscriptionIsNoop(t *testing.T) {
	bus := NewBus(newTestConfigService(t))

	require.NotPanics(t, func() {
		unsubscribe := bus.Subscribe(DomainRequest, nil)
		unsubscribe()
		unsubscribe = bus.SubscribeAll(nil)
		unsubscribe()
		bus.Publish(Event{Domain: DomainRequest, Action: ActionCreate})
	})
}
