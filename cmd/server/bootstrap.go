package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/praxiscrm/praxis/internal/access"
	"github.com/praxiscrm/praxis/internal/api"
	"github.com/praxiscrm/praxis/internal/app"
	"github.com/praxiscrm/praxis/internal/app/maintenance"
	"github.com/praxiscrm/praxis/internal/cache"
	"github.com/praxiscrm/praxis/internal/database"
	"github.com/praxiscrm/praxis/internal/permissions"
	"github.com/praxiscrm/praxis/internal/services"
	"github.com/praxiscrm/praxis/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Redis     cache.Store
	AccessSvc *access.Service
	AuditSvc  *services.AuditService
	Cleaner   *maintenance.Cleaner
	Router    *gin.Engine
}

// bootstrapRuntime initialises the database, caches, services, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if err := permissions.Sync(ctx, stack.DB); err != nil {
		return nil, fmt.Errorf("sync permission registry: %w", err)
	}

	dbStore := cache.NewDatabaseStore(stack.DB)

	decisionStore := cache.Store(dbStore)
	if cfg.Cache.Redis.Enabled {
		client, redisErr := cache.NewRedisClient(cache.RedisConfig{
			Address:  cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Timeout:  cfg.Cache.Redis.Timeout,
		})
		if redisErr != nil {
			log.Warn("redis unavailable; falling back to database-backed cache", zap.Error(redisErr))
		} else {
			stack.Redis = client
			decisionStore = client
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	checker, err := permissions.NewChecker(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise permission checker: %w", err)
	}

	billingSvc, err := services.NewBillingService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise billing service: %w", err)
	}

	stack.AuditSvc, err = services.NewAuditService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}

	stack.AccessSvc, err = access.NewService(stack.DB, decisionStore, checker, billingSvc,
		access.WithDecisionTTL(cfg.Access.DecisionTTL),
		access.WithAudit(stack.AuditSvc),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise access service: %w", err)
	}

	userSvc, err := services.NewUserService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise user service: %w", err)
	}

	if cfg.Maintenance.Enabled {
		stack.Cleaner = maintenance.NewCleaner(dbStore, stack.AuditSvc,
			maintenance.WithCacheSchedule(cfg.Maintenance.CacheSchedule),
			maintenance.WithAuditSchedule(cfg.Maintenance.AuditSchedule),
			maintenance.WithAuditRetentionDays(cfg.Maintenance.AuditRetentionDays),
		)
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	stack.Router, err = api.NewRouter(stack.DB, stack.AccessSvc, userSvc)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown releases resources held by the stack in reverse init order.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if rc, ok := s.Redis.(*cache.RedisClient); ok && rc != nil {
		_ = rc.Close()
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = cfg.Database.Postgres.Password
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = cfg.Database.MySQL.Password
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("access underlying database handle failed", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("close database failed", zap.Error(err))
	}
}
