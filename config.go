package shardcursor

import (
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/shardcursor/internal/router"
	"github.com/dreamware/shardcursor/internal/sqlerr"
	"github.com/dreamware/shardcursor/internal/worker"
)

// defaultRestartBackoff is the fixed delay a shard worker's supervisor
// waits before retrying after a fatal error, unless Config overrides it.
const defaultRestartBackoff = 3 * time.Second

// Config configures a Handle. One SQLite file is opened per entry in
// DBPaths, so len(DBPaths) is the shard count.
type Config struct {
	// DBPaths is the per-shard SQLite file path, in shard-index order.
	// ":memory:" is accepted for ephemeral/test shards.
	DBPaths []string

	// ShardingTable and ShardingColumn name the single table and column
	// that internal/router inspects to route single-row INSERTs to one
	// shard instead of fanning them out.
	ShardingTable  string
	ShardingColumn string

	// ShardOf maps a sharding key to a shard index in [0, len(DBPaths)).
	// Required.
	ShardOf func(key int64) int

	// Logger receives structured worker/coordinator diagnostics. A no-op
	// logger is used if nil.
	Logger *zap.Logger

	// RestartBackoff is the fixed delay before a crashed shard worker is
	// restarted. Defaults to 3s.
	RestartBackoff time.Duration
}

// Handle is a sharded SQLite connection pool: one internal/worker.Worker
// per shard, reached through Prepare/Execute/Query.
type Handle struct {
	workers []*worker.Worker
	cfg     Config
	logger  *zap.Logger
}

// Open spawns one supervised shard worker per DBPaths entry.
func Open(cfg Config) (*Handle, error) {
	if len(cfg.DBPaths) == 0 {
		return nil, sqlerr.Wrap(sqlerr.ErrEngineError, "Config.DBPaths must name at least one shard")
	}
	if cfg.ShardOf == nil {
		return nil, sqlerr.Wrap(sqlerr.ErrEngineError, "Config.ShardOf is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	backoff := cfg.RestartBackoff
	if backoff <= 0 {
		backoff = defaultRestartBackoff
	}

	workers := make([]*worker.Worker, len(cfg.DBPaths))
	for i, path := range cfg.DBPaths {
		workers[i] = worker.Spawn(i, path, logger, backoff)
	}

	return &Handle{workers: workers, cfg: cfg, logger: logger}, nil
}

// Shards reports the number of shards this Handle manages.
func (h *Handle) Shards() int { return len(h.workers) }

// Close stops every shard worker. It does not wait for in-flight
// requests to finish; callers should Close their Stmts first.
func (h *Handle) Close() error {
	for _, w := range h.workers {
		w.Close()
	}
	return nil
}

func (h *Handle) routerConfig() router.Config {
	return router.Config{
		ShardingTable:  h.cfg.ShardingTable,
		ShardingColumn: h.cfg.ShardingColumn,
		NumShards:      len(h.workers),
		ShardOf:        h.cfg.ShardOf,
	}
}
