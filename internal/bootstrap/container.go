package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/config"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/controller"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/pkg/logger"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/implementation"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/memory"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/service"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/answers"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/convo"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/escalate"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/llm/ollama"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/matching"
	pktNats "github.com/dkillam05/farmvista-copilot-sub001/pkg/nats"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/snapshot"
)

const snapshotRefreshTopic = "snapshot.refreshed"

type Container struct {
	// Controllers
	CopilotController  controller.ICopilotController
	SnapshotController controller.ISnapshotController

	// Background services (exposed for main.go to run)
	SnapshotService service.ISnapshotService

	// Infrastructure handles main.go may need to close
	NatsSubscriber *pktNats.Subscriber
	Logger         logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Repositories
	numeric := matching.NumericPrefixed{service.CollectionFields: true}
	fieldRepo := implementation.NewFieldRepository(db)
	farmRepo := implementation.NewFarmRepository(db)
	towerRepo := implementation.NewTowerRepository(db)
	binRepo := implementation.NewBinRepository(db)
	metaRepo := implementation.NewSnapshotMetaRepository(db)
	candidateSource := implementation.NewGormCandidateSource(db, numeric)

	// 4. Snapshot pipeline and the alias index on top of it
	snapshotService := service.NewSnapshotService(
		fieldRepo, farmRepo, towerRepo, binRepo, metaRepo,
		pubSub, snapshotRefreshTopic, sysLogger,
	)
	indexCache := snapshot.NewCache(snapshotService, numeric)
	snapshotService.OnReload(indexCache.Invalidate)

	resolver := matching.NewResolver(indexCache, candidateSource, matching.Policy{
		HighThreshold:   cfg.Matching.HighThreshold,
		MediumThreshold: cfg.Matching.MediumThreshold,
		MinMargin:       cfg.Matching.MinMargin,
		ClarifyFloor:    cfg.Matching.ClarifyFloor,
		MaxCandidates:   cfg.Matching.MaxCandidates,
	})

	// 5. Conversation memory, backend per config
	var bucketRepo convo.BucketRepository
	if cfg.Memory.Backend == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		bucketRepo = memory.NewRedisBucketRepository(rdb, cfg.Memory.TTL)
		log.Printf("[INFO] Using Memory Backend: REDIS")
	} else {
		bucketRepo = memory.NewBucketRepository(cfg.Memory.TTL)
		log.Printf("[INFO] Using Memory Backend: IN-PROCESS")
	}
	store := convo.NewMemoryStore(bucketRepo, cfg.Memory.TTL)

	// 6. Escalation (optional)
	var escalator *escalate.Escalator
	if cfg.Ai.EscalationEnabled {
		llmProvider := ollama.NewProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.LLMModel)
		escalator = escalate.New(llmProvider, escalate.Config{
			Timeout:    cfg.Ai.EscalationTimeout,
			RatePerMin: cfg.Ai.RatePerMin,
		}, sysLogger)
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	} else {
		log.Printf("[INFO] Escalation disabled; weak matches fall back to no-match")
	}

	// 7. Domain answer handlers
	registry := answers.NewRegistry(
		answers.NewFieldHandler(fieldRepo, farmRepo),
		answers.NewFarmHandler(farmRepo, fieldRepo),
		answers.NewTowerHandler(towerRepo),
		answers.NewBinHandler(binRepo),
	)

	copilotService := service.NewCopilotService(
		resolver, store, registry, escalator, cfg.Matching.PageSize, sysLogger,
	)

	// 8. External bus bridge
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		natsSub = nil
	} else {
		if err := natsSub.SubscribeSnapshotRefreshed(context.Background(), snapshotService.HandleBusEvent); err != nil {
			log.Printf("[WARN] Failed to subscribe to snapshot refresh events: %v", err)
		}
	}

	// 9. Controllers
	copilotController := controller.NewCopilotController(copilotService)
	snapshotController := controller.NewSnapshotController(snapshotService)

	return &Container{
		CopilotController:  copilotController,
		SnapshotController: snapshotController,
		SnapshotService:    snapshotService,
		NatsSubscriber:     natsSub,
		Logger:             sysLogger,
	}
}
