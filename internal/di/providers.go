package di

import (
	"github.com/google/wire"

	domrepo "github.com/frontboat/agent-gmx-sub000/internal/domain/repository"
	domsvc "github.com/frontboat/agent-gmx-sub000/internal/domain/service"
	"github.com/frontboat/agent-gmx-sub000/internal/handler/api"
	internalrepo "github.com/frontboat/agent-gmx-sub000/internal/repository"
	"github.com/frontboat/agent-gmx-sub000/internal/services/analytics"
	"github.com/frontboat/agent-gmx-sub000/internal/services/cache"
	"github.com/frontboat/agent-gmx-sub000/internal/services/strategy"
	"github.com/frontboat/agent-gmx-sub000/internal/usecase"
	pkgch "github.com/frontboat/agent-gmx-sub000/pkg/clickhouse"
	"github.com/frontboat/agent-gmx-sub000/pkg/config"
	xhttp "github.com/frontboat/agent-gmx-sub000/pkg/http"
	pkgkafka "github.com/frontboat/agent-gmx-sub000/pkg/kafka"
	"github.com/frontboat/agent-gmx-sub000/pkg/logger"
	"github.com/frontboat/agent-gmx-sub000/pkg/metrics"
	"github.com/frontboat/agent-gmx-sub000/pkg/server"
)

// ProviderSet wires the whole application graph.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideSnapshotStore,
	ProvideTrackingStore,
	ProvidePublisher,
	ProvideArchive,
	ProvideTracker,
	ProvideStatsCalculator,
	ProvideRegimeClassifier,
	ProvideTransitionLog,
	ProvideStrategies,
	ProvideAnalyzer,
	ProvideCache,
	ProvideHandler,
	ProvideScheduler,
	server.New,
)

func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

func ProvideSnapshotStore(cfg *config.Config, l *logger.Logger) domrepo.SnapshotStore {
	return internalrepo.NewFileSnapshotStore(cfg.Engine.SnapshotPath, l)
}

func ProvideTrackingStore(cfg *config.Config) domrepo.TrackingStore {
	return internalrepo.NewFileTrackingStore(cfg.Engine.TrackingPath)
}

func ProvidePublisher(cfg *config.Config) (domrepo.SignalPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, err
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic), nil
}

func ProvideArchive(cfg *config.Config, l *logger.Logger) (domrepo.OutcomeArchive, error) {
	if !cfg.ClickHouse.Enabled {
		return internalrepo.NoopArchive{}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, 0, 0),
	)
	if err != nil {
		return nil, err
	}
	return internalrepo.NewCHOutcomeArchive(client, l), nil
}

func ProvideTracker(
	store domrepo.TrackingStore,
	archive domrepo.OutcomeArchive,
	m domrepo.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.SignalTracker {
	return usecase.NewSignalTracker(store, archive, m, l, cfg.Engine.TrackHorizon, cfg.Engine.MaxTracked)
}

func ProvideStatsCalculator(cfg *config.Config) *analytics.StatsCalculator {
	return analytics.NewStatsCalculator(
		cfg.Engine.SampleSize,
		cfg.Engine.MinCompleted,
		cfg.Engine.TrackHorizon,
		cfg.Engine.MatchTolerance,
	)
}

func ProvideRegimeClassifier(cfg *config.Config) *analytics.RegimeClassifier {
	return analytics.NewRegimeClassifier(cfg.Engine.DriftEpsilon)
}

func ProvideTransitionLog(l *logger.Logger) *analytics.TransitionLog {
	return analytics.NewTransitionLog(l)
}

func ProvideStrategies(cfg *config.Config) []domsvc.Strategy {
	return []domsvc.Strategy{
		strategy.NewRegimeStrategy(cfg.Engine.ContrarianTau, cfg.Engine.BandEpsilon),
		strategy.NewPercentileStrategy(),
	}
}

func ProvideAnalyzer(
	snapshots domrepo.SnapshotStore,
	tracker *usecase.SignalTracker,
	stats *analytics.StatsCalculator,
	classifier *analytics.RegimeClassifier,
	transitions *analytics.TransitionLog,
	strategies []domsvc.Strategy,
	publisher domrepo.SignalPublisher,
	m domrepo.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.Analyzer {
	return usecase.NewAnalyzer(snapshots, tracker, stats, classifier, transitions, strategies, publisher, m, l,
		usecase.AnalyzerConfig{
			BufferCapacity: cfg.Engine.BufferCapacity,
			MergeWindow:    cfg.Engine.MergeWindow,
			TrackHorizon:   cfg.Engine.TrackHorizon,
			DefaultStrat:   cfg.Engine.DefaultStrategy,
		})
}

func ProvideCache(cfg *config.Config) cache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return cache.NewTTLCache()
}

func ProvideHandler(l *logger.Logger, analyzer *usecase.Analyzer, c cache.BytesCache, cfg *config.Config) xhttp.Handler {
	return api.NewAnalysisHandler(l, analyzer, c, cfg.Cache.TTL)
}

func ProvideScheduler(analyzer *usecase.Analyzer, cfg *config.Config, l *logger.Logger) *usecase.Scheduler {
	return usecase.NewScheduler(analyzer, cfg.Symbols, cfg.Scheduler.Interval, l)
}
