package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-attempt/internal/app"
	"quiz-attempt/internal/config"
	"quiz-attempt/internal/infra/file"
	"quiz-attempt/internal/infra/memory"
	redisstore "quiz-attempt/internal/infra/redis"
	transport "quiz-attempt/internal/transport/http"
)

// runtime holds the collaborators every subcommand needs.
type runtime struct {
	cfg    config.Config
	log    *slog.Logger
	client *transport.QuizClient
	store  app.JoinerStore
	redis  *redis.Client
}

func newRuntime(configPath, serverOverride string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(serverOverride); v != "" {
		cfg.Service.BaseURL = v
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	httpClient := &http.Client{Timeout: config.Duration(cfg.Service.Timeout, 10*time.Second)}

	rt := &runtime{
		cfg:    cfg,
		log:    logger,
		client: transport.NewQuizClient(cfg.Service.BaseURL, httpClient),
	}
	store, err := rt.newStore()
	if err != nil {
		return nil, err
	}
	rt.store = store
	return rt, nil
}

func (rt *runtime) newStore() (app.JoinerStore, error) {
	ttl := config.Duration(rt.cfg.Store.TTL, 24*time.Hour)
	switch rt.cfg.Store.Driver {
	case "memory":
		return memory.NewJoinerStore(), nil
	case "redis":
		rt.redis = redis.NewClient(&redis.Options{
			Addr:     rt.cfg.Redis.Addr,
			Password: rt.cfg.Redis.Password,
			DB:       rt.cfg.Redis.DB,
		})
		return redisstore.NewJoinerStore(rt.redis, rt.cfg.Store.Session, ttl), nil
	case "file", "":
		path := rt.cfg.Store.Path
		if path == "" {
			path = file.DefaultPath()
		}
		return file.NewJoinerStore(path, ttl), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", rt.cfg.Store.Driver)
	}
}

func (rt *runtime) attemptConfig() app.AttemptConfig {
	return app.AttemptConfig{
		PollInterval:       config.Duration(rt.cfg.Attempt.PollInterval, 0),
		TickInterval:       config.Duration(rt.cfg.Attempt.TickInterval, 0),
		ViolationThreshold: rt.cfg.Attempt.ViolationThreshold,
		ForcedSubmitDelay:  config.Duration(rt.cfg.Attempt.ForcedSubmitDelay, 0),
	}
}

func (rt *runtime) describe(err error) error {
	return transport.DescribeError(err, rt.cfg.Service.BaseURL)
}

func (rt *runtime) Close() {
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			rt.log.Warn("close redis", "err", err)
		}
	}
}
