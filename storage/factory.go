package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/ruteri/royalty-registry/interfaces"
)

// StoreFactory creates royalty stores from URI strings.
type StoreFactory struct {
	log *slog.Logger
}

// NewStoreFactory creates a new factory instance.
func NewStoreFactory(logger *slog.Logger) *StoreFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreFactory{
		log: logger,
	}
}

// StoreFor creates a store from a location URI.
//
// Supported schemes:
//   - memory:// - In-process map, lost on restart
//   - sqlite:///absolute/path.db, sqlite://./relative/path.db - SQLite database
//   - file:// - Alias of sqlite://
//   - redis://[user:pass@]host:port/db?prefix=name - Redis server
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (sf *StoreFactory) StoreFor(uri string) (interfaces.RoyaltyStore, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidStoreURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "memory":
		sf.log.Debug("Creating memory store")
		return NewMemoryStore(), nil
	case "sqlite", "file":
		return sf.createSQLiteStore(u)
	case "redis", "rediss":
		return sf.createRedisStore(u)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", interfaces.ErrInvalidStoreURI, u.Scheme)
	}
}

// createSQLiteStore creates a SQLite store.
// URI format: sqlite:///absolute/path.db or sqlite://./relative/path.db
func (sf *StoreFactory) createSQLiteStore(u *url.URL) (interfaces.RoyaltyStore, error) {
	sf.log.Debug("Creating sqlite store", slog.String("uri", u.String()))

	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path in %s", interfaces.ErrInvalidStoreURI, u.String())
	}

	return OpenSQLiteStore(path, sf.log)
}

// createRedisStore creates a Redis store.
// URI format: redis://[user:pass@]host:port/db?prefix=name
// The prefix parameter is consumed here; the remaining URI is handed to go-redis.
func (sf *StoreFactory) createRedisStore(u *url.URL) (interfaces.RoyaltyStore, error) {
	query := u.Query()
	prefix := query.Get("prefix")
	query.Del("prefix")

	clean := *u
	clean.RawQuery = query.Encode()

	sf.log.Debug("Creating redis store", slog.String("host", u.Host), slog.String("prefix", prefix))

	opts, err := redis.ParseURL(clean.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidStoreURI, err)
	}

	return NewRedisStore(redis.NewClient(opts), prefix, sf.log), nil
}
