package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nethra1406/whatsappbot/configs"
	"github.com/nethra1406/whatsappbot/internal/adapter/cache"
	httpadapter "github.com/nethra1406/whatsappbot/internal/adapter/http"
	"github.com/nethra1406/whatsappbot/internal/adapter/http/middleware"
	"github.com/nethra1406/whatsappbot/internal/adapter/kafka"
	"github.com/nethra1406/whatsappbot/internal/adapter/queue"
	"github.com/nethra1406/whatsappbot/internal/adapter/repo"
	"github.com/nethra1406/whatsappbot/internal/adapter/whatsapp"
	"github.com/nethra1406/whatsappbot/internal/dialog"
	domain "github.com/nethra1406/whatsappbot/internal/entity"
	"github.com/nethra1406/whatsappbot/internal/logging"
	"github.com/nethra1406/whatsappbot/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	log := logging.Init(cfg.App.Name, cfg.App.LogFile)
	log.Info("starting up")

	// init mongo
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := mongoClient.Database(cfg.Mongo.Database)

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	// repos + idempotency
	orderRepo := repo.NewMongoOrderRepo(db)
	vendorRepo := repo.NewMongoVendorRepo(db)
	if err := orderRepo.EnsureIndexes(ctx); err != nil {
		return nil, nil, err
	}
	if err := vendorRepo.EnsureIndexes(ctx); err != nil {
		return nil, nil, err
	}
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)

	// outbound channel: direct Cloud API client, optionally fronted by the
	// rabbit queue when a broker URL is configured
	waClient := whatsapp.NewClient(cfg.WhatsApp.PhoneNumberID, cfg.WhatsApp.Token, cfg.WhatsApp.BaseURL)
	var sender usecase.Sender = waClient
	var amqpConn *amqp.Connection
	if cfg.Rabbit.URL != "" {
		amqpConn, err = amqp.Dial(cfg.Rabbit.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		ch, err := amqpConn.Channel()
		if err != nil {
			return nil, nil, fmt.Errorf("open rabbitmq channel: %w", err)
		}
		qs, err := queue.NewRabbitSender(ch)
		if err != nil {
			return nil, nil, fmt.Errorf("set up outbound queue: %w", err)
		}
		sender = qs

		// drain the queue back into the Cloud API; failed deliveries are
		// dropped, not requeued (at-most-once channel)
		consumeCh, err := amqpConn.Channel()
		if err != nil {
			return nil, nil, fmt.Errorf("open consume channel: %w", err)
		}
		h := queue.NewSendTextHandler(waClient)
		router := queue.NewRouter(consumeCh, queue.WithPrefetch(50), queue.WithRequeue(false))
		router.Register(queue.QueueName, queue.JSONHandler[usecase.OutboundMsg]{HandleFunc: h.HandleSend})
		if err := router.Start(); err != nil {
			return nil, nil, fmt.Errorf("start outbound consumer: %w", err)
		}
	}

	// lifecycle events (optional)
	var events usecase.EventPublisher = usecase.NopEvents{}
	var kafkaProducer interface{ Close() error }
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			return nil, nil, fmt.Errorf("init kafka producer: %w", err)
		}
		events = kafka.NewOrderEvents(producer, cfg.Kafka.TopicEvents)
		kafkaProducer = producer
	}

	// core: use cases + dialog
	placeUC := usecase.NewPlaceOrder(orderRepo, idem, events, sender, cfg.Access.Vendors)
	claimUC := usecase.NewClaimOrder(orderRepo, vendorRepo, events, sender)

	catalog := domain.NewCatalog(cfg.Catalog.Prices)
	sessions := dialog.NewManager(cfg.Session.IdleTTL)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	if cfg.Session.SweepInterval > 0 {
		sessions.StartSweeper(sweepCtx, cfg.Session.SweepInterval)
	}
	engine := dialog.NewEngine(sessions, catalog, cfg.Catalog.MenuHeader, placeUC, sender)

	// handlers + router
	wh := httpadapter.NewWebhookHandler(engine, claimUC, sender, cfg.WhatsApp.VerifyToken,
		cfg.Access.Customers, cfg.Access.Vendors)
	oh := httpadapter.NewOrderHandler(orderRepo)
	th := httpadapter.NewTokenHandler(cfg)
	authz := middleware.NewAuthz(cfg)
	router := httpadapter.NewRouter(wh, oh, th, authz, cfg.WhatsApp.AppSecret)

	cleanup := func() {
		stopSweep()
		if kafkaProducer != nil {
			_ = kafkaProducer.Close()
		}
		if amqpConn != nil {
			_ = amqpConn.Close()
		}
		_ = rdb.Close()
		_ = mongoClient.Disconnect(context.Background())
	}

	return &App{Router: router}, cleanup, nil
}
