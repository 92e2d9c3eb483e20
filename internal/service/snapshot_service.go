package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/entity"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/pkg/logger"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/contract"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/events"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/snapshot"
)

// ISnapshotService materializes the read-only dataset the resolver runs
// against. It is the snapshot.Source for the alias-index cache and the
// consumer of refresh announcements from the ingestion pipeline.
type ISnapshotService interface {
	snapshot.Source
	Reload(ctx context.Context) error
	NotifyRefreshed(ctx context.Context, version string) error
	HandleBusEvent(ctx context.Context, event events.Event) error
	Consume(ctx context.Context) error
	OnReload(fn func())
}

type refreshMessage struct {
	Version string `json:"version"`
}

type snapshotService struct {
	fieldRepo contract.FieldRepository
	farmRepo  contract.FarmRepository
	towerRepo contract.TowerRepository
	binRepo   contract.BinRepository
	metaRepo  contract.SnapshotMetaRepository

	pubSub    *gochannel.GoChannel
	topicName string
	log       logger.ILogger

	mu       sync.RWMutex
	current  *snapshot.Snapshot
	onReload []func()
}

func NewSnapshotService(
	fieldRepo contract.FieldRepository,
	farmRepo contract.FarmRepository,
	towerRepo contract.TowerRepository,
	binRepo contract.BinRepository,
	metaRepo contract.SnapshotMetaRepository,
	pubSub *gochannel.GoChannel,
	topicName string,
	log logger.ILogger,
) ISnapshotService {
	return &snapshotService{
		fieldRepo: fieldRepo,
		farmRepo:  farmRepo,
		towerRepo: towerRepo,
		binRepo:   binRepo,
		metaRepo:  metaRepo,
		pubSub:    pubSub,
		topicName: topicName,
		log:       log,
	}
}

// Current returns the materialized snapshot, loading it on first touch.
func (ss *snapshotService) Current(ctx context.Context) (*snapshot.Snapshot, error) {
	ss.mu.RLock()
	snap := ss.current
	ss.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	if err := ss.Reload(ctx); err != nil {
		return nil, err
	}
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.current, nil
}

// OnReload registers a hook run after every successful reload. Used to drop
// the cached alias index without the cache having to poll.
func (ss *snapshotService) OnReload(fn func()) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.onReload = append(ss.onReload, fn)
}

// Reload pulls all four collections and the version tag from the backing
// store and swaps in a fresh snapshot. Inactive rows are included; the
// resolver decides whether they participate.
func (ss *snapshotService) Reload(ctx context.Context) error {
	fields, err := ss.fieldRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load fields: %w", err)
	}
	farms, err := ss.farmRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load farms: %w", err)
	}
	towers, err := ss.towerRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load towers: %w", err)
	}
	bins, err := ss.binRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load bins: %w", err)
	}
	version, err := ss.metaRepo.LatestVersion(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot version: %w", err)
	}

	collections := map[string]snapshot.Collection{
		CollectionFields: fieldCollection(fields),
		CollectionFarms:  farmCollection(farms),
		CollectionTowers: towerCollection(towers),
		CollectionBins:   binCollection(bins),
	}
	snap := snapshot.New(version, collections)

	ss.mu.Lock()
	ss.current = snap
	hooks := make([]func(), len(ss.onReload))
	copy(hooks, ss.onReload)
	ss.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	ss.log.Info("snapshot", "snapshot reloaded", map[string]interface{}{
		"version": snap.Version,
		"fields":  len(fields),
		"farms":   len(farms),
		"towers":  len(towers),
		"bins":    len(bins),
	})
	return nil
}

// NotifyRefreshed publishes a refresh announcement onto the in-process bus.
// The NATS bridge calls this; tests and admin tooling can too.
func (ss *snapshotService) NotifyRefreshed(ctx context.Context, version string) error {
	payload, err := json.Marshal(refreshMessage{Version: version})
	if err != nil {
		return err
	}
	return ss.pubSub.Publish(ss.topicName, message.NewMessage(uuid.New().String(), payload))
}

// Consume starts the refresh-topic worker. Each announcement triggers a full
// reload; a failed reload is Nacked so the bus redelivers.
func (ss *snapshotService) Consume(ctx context.Context) error {
	messages, err := ss.pubSub.Subscribe(ctx, ss.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ss.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ss *snapshotService) processMessage(ctx context.Context, msg *message.Message) {
	var payload refreshMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		ss.log.Warn("snapshot", "dropping malformed refresh message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	if err := ss.Reload(ctx); err != nil {
		ss.log.Error("snapshot", "reload after refresh announcement failed", map[string]interface{}{
			"version": payload.Version, "error": err.Error(),
		})
		msg.Nack()
		return
	}
	msg.Ack()
}

// HandleBusEvent adapts ingestion-pipeline events from the external bus into
// refresh announcements on the in-process topic.
func (ss *snapshotService) HandleBusEvent(ctx context.Context, event events.Event) error {
	if event.EventType() != events.SnapshotRefreshedType {
		return nil
	}
	version, _ := event.Payload()["version"].(string)
	return ss.NotifyRefreshed(ctx, version)
}

func fieldCollection(rows []*entity.Field) snapshot.Collection {
	coll := make(snapshot.Collection, len(rows))
	for _, r := range rows {
		coll[r.Id] = snapshot.Fields{
			"name":         r.Name,
			"display_name": r.DisplayName,
			"status":       r.Status,
		}
	}
	return coll
}

func farmCollection(rows []*entity.Farm) snapshot.Collection {
	coll := make(snapshot.Collection, len(rows))
	for _, r := range rows {
		coll[r.Id] = snapshot.Fields{
			"name":         r.Name,
			"display_name": r.DisplayName,
			"status":       r.Status,
		}
	}
	return coll
}

func towerCollection(rows []*entity.Tower) snapshot.Collection {
	coll := make(snapshot.Collection, len(rows))
	for _, r := range rows {
		coll[r.Id] = snapshot.Fields{
			"name":         r.Name,
			"display_name": r.DisplayName,
			"status":       r.Status,
		}
	}
	return coll
}

func binCollection(rows []*entity.Bin) snapshot.Collection {
	coll := make(snapshot.Collection, len(rows))
	for _, r := range rows {
		coll[r.Id] = snapshot.Fields{
			"name":         r.Name,
			"display_name": r.DisplayName,
			"status":       r.Status,
		}
	}
	return coll
}
