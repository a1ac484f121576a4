// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	json "github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	natsserver "github.com/nats-io/nats-server/v2/server"

	"github.com/aurastream/corehub/internal/cache"
	"github.com/aurastream/corehub/internal/logging"
	"github.com/aurastream/corehub/internal/metrics"
)

const activityTopic = "activity.logged"

// dedupCapacity and dedupTTL bound the redelivery-dedup cache: JetStream's
// at-least-once delivery can redeliver a message after an ack is lost in
// flight, which would otherwise double-apply a derived update.
const (
	dedupCapacity = 10000
	dedupTTL      = 10 * time.Minute
)

// EventBus fans a logged activity event out to the three derived-aggregate
// updaters concurrently, matching §5's "concurrently via independent
// transactions" requirement, using an embedded NATS JetStream broker and
// Watermill for the publish/subscribe plumbing.
type EventBus struct {
	natsServer *natsserver.Server
	publisher  message.Publisher
	router     *message.Router

	store *BadgerStore
	dedup *cache.BloomLRU
}

type activityEnvelope struct {
	UID   string        `json:"uid"`
	Event ActivityEvent `json:"event"`
}

// NewEventBus starts an embedded NATS server and wires a Watermill
// publisher/router pair with three independent handlers, one per derived
// update.
func NewEventBus(store *BadgerStore) (*EventBus, error) {
	opts := &natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1, // OS-assigned, in-process only
		JetStream: true,
		NoLog:     true,
		NoSigs:    true,
	}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("profile: start embedded nats: %w", err)
	}
	go srv.Start()
	if !srv.ReadyForConnections(5 * time.Second) {
		return nil, fmt.Errorf("profile: embedded nats not ready")
	}

	url := srv.ClientURL()
	logger := watermill.NopLogger{}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:       url,
		Marshaler: &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{AutoProvision: true},
	}, logger)
	if err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("profile: create publisher: %w", err)
	}

	bus := &EventBus{
		natsServer: srv,
		publisher:  pub,
		store:      store,
		dedup:      cache.NewBloomLRU(dedupCapacity, dedupTTL, 0.01),
	}

	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("profile: create router: %w", err)
	}

	for name, handler := range map[string]func(ActivityEvent, string){
		"song-aggregate-updater":  func(e ActivityEvent, uid string) { store.updateSongAggregate(uid, e) },
		"search-history-updater":  func(e ActivityEvent, uid string) { store.updateSearchHistory(uid, e) },
		"projection-updater":      func(e ActivityEvent, uid string) { store.updateProjections(uid, e) },
	} {
		sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
			URL:              url,
			QueueGroupPrefix: name,
			SubscribersCount: 1,
			AckWaitTimeout:   30 * time.Second,
			Unmarshaler:      &wmNats.NATSMarshaler{},
			JetStream: wmNats.JetStreamConfig{
				AutoProvision: true,
				DurablePrefix: name,
			},
			NatsOptions: []natsgo.Option{},
		}, logger)
		if err != nil {
			srv.Shutdown()
			return nil, fmt.Errorf("profile: create subscriber %s: %w", name, err)
		}
		handler := handler
		router.AddNoPublisherHandler(name, activityTopic, sub, func(msg *message.Message) error {
			dedupKey := name + ":" + msg.UUID
			if bus.dedup.IsDuplicate(dedupKey) {
				metrics.NATSMessagesDeduplicated.Inc()
				return nil
			}

			var env activityEnvelope
			if err := json.Unmarshal(msg.Payload, &env); err != nil {
				logging.Warn().Err(err).Str("handler", name).Msg("profile: event bus decode failed")
				return nil
			}
			handler(env.Event, env.UID)
			return nil
		})
	}

	go func() {
		if err := router.Run(context.Background()); err != nil {
			logging.Error().Err(err).Msg("profile: event bus router stopped")
		}
	}()

	bus.router = router
	return bus, nil
}

// Publish fans the event out asynchronously; the caller's AppendActivity
// has already durably written the activity log entry before calling this.
func (b *EventBus) Publish(uid string, event ActivityEvent) error {
	payload, err := json.Marshal(activityEnvelope{UID: uid, Event: event})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return b.publisher.Publish(activityTopic, msg)
}

// Close stops the router, publisher, and embedded NATS server.
func (b *EventBus) Close() error {
	if b.router != nil {
		_ = b.router.Close()
	}
	if b.publisher != nil {
		_ = b.publisher.Close()
	}
	if b.natsServer != nil {
		b.natsServer.Shutdown()
	}
	return nil
}
