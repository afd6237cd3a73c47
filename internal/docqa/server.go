// Package docqasvc provides the DocQA Service server implementation.
package docqasvc

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/docqa/internal/docqa/biz"
	"github.com/kart-io/docqa/internal/docqa/handler"
	"github.com/kart-io/docqa/internal/docqa/router"
	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/pkg/component/milvus"
	rediscomp "github.com/kart-io/docqa/pkg/component/redis"
	"github.com/kart-io/docqa/pkg/infra/app"
	"github.com/kart-io/docqa/pkg/llm"
	"github.com/kart-io/docqa/pkg/middleware"
	cacheopts "github.com/kart-io/docqa/pkg/options/cache"
	docqaopts "github.com/kart-io/docqa/pkg/options/docqa"
	llmopts "github.com/kart-io/docqa/pkg/options/llm"
	logopts "github.com/kart-io/docqa/pkg/options/logger"
	milvusopts "github.com/kart-io/docqa/pkg/options/milvus"
	httpopts "github.com/kart-io/docqa/pkg/options/server/http"
	httpserver "github.com/kart-io/docqa/pkg/server/http"

	// 导入 LLM 供应商以自动注册
	_ "github.com/kart-io/docqa/pkg/llm/ollama"
	_ "github.com/kart-io/docqa/pkg/llm/openai"
)

// Name is the name of the application.
const Name = "docqa-server"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	DocQAOptions     *docqaopts.Options
	CacheOptions     *cacheopts.Options
}

// Server represents the DocQA server.
type Server struct {
	httpSrv      *httpserver.Server
	gatewayClose func()
	redisClose   func()
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	// 1. 初始化日志
	cfg.LogOptions.AddInitialField("service.name", Name)
	cfg.LogOptions.AddInitialField("service.version", app.GetVersion())
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting DocQA service...")

	// 2. 初始化 Milvus 客户端和向量存储
	milvusClient, err := milvus.New(cfg.MilvusOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize milvus: %w", err)
	}
	vectorStore := store.NewMilvusStore(milvusClient)
	logger.Info("Vector store initialized")

	// 3. 初始化 Redis 客户端（问答缓存和 Embedding 缓存共用）
	var redisClient *goredis.Client
	var queryCache *biz.QueryCache
	var redisClose func()
	if cfg.CacheOptions.Enabled {
		redisOpts := cfg.CacheOptions.Redis
		if redisOpts == nil {
			logger.Warn("Cache is enabled but no Redis configuration provided in CacheOptions")
		} else {
			redisComponent, err := rediscomp.New(ctx, redisOpts)
			if err != nil {
				logger.Warnw("failed to connect to redis, cache will be disabled", "error", err.Error())
			} else {
				redisClient = redisComponent.Client()
				queryCache = biz.NewQueryCache(redisClient, &biz.QueryCacheConfig{
					Enabled:   true,
					TTL:       cfg.CacheOptions.TTL,
					KeyPrefix: cfg.CacheOptions.KeyPrefix + "query:",
				})
				redisClose = func() { _ = redisComponent.Close() }
				logger.Infow("Redis cache initialized",
					"host", redisOpts.Host,
					"port", redisOpts.Port,
					"ttl", cfg.CacheOptions.TTL,
				)
			}
		}
	} else {
		logger.Info("Cache is disabled")
	}

	// 4. 初始化 LLM 供应商
	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	if redisClient != nil {
		embedProvider = llm.NewCachedEmbeddingProvider(embedProvider, redisClient, nil)
	}
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.Model,
	)

	chatProvider, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("Chat provider initialized",
		"provider", cfg.ChatOptions.Provider,
		"model", cfg.ChatOptions.Model,
	)

	// 5. 初始化索引网关并确保集合存在
	gatewayConfig := &biz.IndexGatewayConfig{
		Collection:   cfg.DocQAOptions.Collection,
		EmbeddingDim: cfg.DocQAOptions.EmbeddingDim,
	}
	gateway, err := biz.NewIndexGateway(vectorStore, embedProvider, gatewayConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize index gateway: %w", err)
	}
	if err := gateway.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}
	logger.Infow("Index gateway initialized", "collection", cfg.DocQAOptions.Collection)

	// 6. 初始化 Biz 层
	docqaService := biz.NewDocQAService(gateway, embedProvider, chatProvider, queryCache, &biz.ServiceConfig{
		IngesterConfig: &biz.IngesterConfig{
			ChunkSize:    cfg.DocQAOptions.ChunkSize,
			ChunkOverlap: cfg.DocQAOptions.ChunkOverlap,
			UploadDir:    cfg.DocQAOptions.UploadDir,
		},
		GatewayConfig:   gatewayConfig,
		AssemblerConfig: &biz.AssemblerConfig{TopN: cfg.DocQAOptions.ContextTopN},
		GeneratorConfig: &biz.GeneratorConfig{
			Temperature: cfg.DocQAOptions.Temperature,
			MaxTokens:   cfg.DocQAOptions.MaxTokens,
		},
		TopK:          cfg.DocQAOptions.TopK,
		SnippetLength: cfg.DocQAOptions.SnippetLength,
	})
	logger.Infow("DocQA service initialized",
		"cache.enabled", queryCache != nil,
		"chunk_size", cfg.DocQAOptions.ChunkSize,
		"chunk_overlap", cfg.DocQAOptions.ChunkOverlap,
		"top_k", cfg.DocQAOptions.TopK,
	)

	// 7. 初始化 Handler 和 HTTP 服务器
	docqaHandler := handler.NewDocQAHandler(docqaService)

	httpSrv := httpserver.NewServer(cfg.HTTPOptions,
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)
	router.Register(httpSrv.Engine(), docqaHandler)

	logger.Info("DocQA service is ready")
	return &Server{
		httpSrv:      httpSrv,
		gatewayClose: func() { _ = gateway.Close(context.Background()) },
		redisClose:   redisClose,
	}, nil
}

// Run starts the server and blocks until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if s.gatewayClose != nil {
			s.gatewayClose()
		}
		if s.redisClose != nil {
			s.redisClose()
		}
	}()
	return s.httpSrv.Start(ctx)
}
