package svc

import (
	"context"
	"log"
	"time"

	"mintvault/internal/config"
	"mintvault/internal/contract"
	"mintvault/internal/model"
	"mintvault/internal/vault"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ContractResolver resolves a contract address to its callable interface,
// following proxies to the implementation.
type ContractResolver interface {
	Resolve(ctx context.Context, address string) (*contract.Info, error)
}

// ChainExecutor submits mint calls and reconciles previously submitted ones.
type ChainExecutor interface {
	ExecuteMint(ctx context.Context, call *contract.MintCall) (*contract.MintResult, error)
	ConfirmMint(ctx context.Context, txHash, fallbackTokenId string) (*contract.MintResult, error)
}

// MintQueue schedules deferred mint executions by scheduled-mint id.
type MintQueue interface {
	Push(id string, delay time.Duration)
	Remove(id string)
}

type ServiceContext struct {
	Config config.Config
	DB     *gorm.DB

	NftsDao           model.NftsDao
	WalletsDao        model.WalletsDao
	TransactionsDao   model.TransactionsDao
	ScheduledMintsDao model.ScheduledMintsDao

	Vault    *vault.Vault
	Resolver ContractResolver
	Executor ChainExecutor
	// Jobs 由 main 在路由装配后注入（执行回调依赖 logic 层）
	Jobs MintQueue
}

func NewServiceContext(c config.Config) *ServiceContext {
	// 重新从配置文件读取 DSN
	db, err := initDB(c.Postgres.DSN)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	v, err := vault.New(c.Vault.EncryptionKey)
	if err != nil {
		log.Fatalf("failed to init key vault: %v", err)
	}

	return &ServiceContext{
		Config:            c,
		DB:                db,
		NftsDao:           model.NewNftsDao(db),
		WalletsDao:        model.NewWalletsDao(db),
		TransactionsDao:   model.NewTransactionsDao(db),
		ScheduledMintsDao: model.NewScheduledMintsDao(db),
		Vault:             v,
	}
}

// Transact 在一个数据库事务中运行 fn，fn 收到的 ServiceContext 副本里
// 所有 DAO 都绑定到该事务。DB 为空时（单测注入 mock DAO）直接透传。
func (s *ServiceContext) Transact(ctx context.Context, fn func(s *ServiceContext) error) error {
	if s.DB == nil {
		return fn(s)
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := *s
		txCtx.DB = tx
		txCtx.NftsDao = model.NewNftsDao(tx)
		txCtx.WalletsDao = model.NewWalletsDao(tx)
		txCtx.TransactionsDao = model.NewTransactionsDao(tx)
		txCtx.ScheduledMintsDao = model.NewScheduledMintsDao(tx)
		return fn(&txCtx)
	})
}

func initDB(dsn string) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}
