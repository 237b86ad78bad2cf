package database

import (
	"context"
	"fmt"
	"time"

	"musicbot/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/valkey-io/valkey-go"
)

// Valkey database indexes, one per cache category.
const (
	// GENERAL_CACHE_INDEX (DB 0) holds rendered responses such as the trending text.
	GENERAL_CACHE_INDEX = iota

	// SESSION_CACHE_INDEX (DB 1) holds per chat conversation state and
	// search results awaiting a selection.
	SESSION_CACHE_INDEX

	// USER_CACHE_INDEX (DB 2) holds users and their themes.
	USER_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 3) carries pub/sub traffic for web jobs.
	EVENTS_CACHE_INDEX

	// CLIENT_API_CACHE_INDEX (DB 4) caches catalog and lyrics responses.
	CLIENT_API_CACHE_INDEX
)

var cacheIndexNames = map[int]string{
	GENERAL_CACHE_INDEX:    "General",
	SESSION_CACHE_INDEX:    "Session",
	USER_CACHE_INDEX:       "User",
	EVENTS_CACHE_INDEX:     "Events",
	CLIENT_API_CACHE_INDEX: "ClientAPI",
}

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.Errorf("failed to initialize cache database", "address or port is empty")
	}
	initAddress := []string{fmt.Sprintf("%s:%d", address, port)}

	clients := make(map[int]CacheClient, len(cacheIndexNames))
	for index, name := range cacheIndexNames {
		client, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: initAddress,
			SelectDB:    index,
		})
		if err != nil {
			for _, created := range clients {
				created.Close()
			}
			return log.Err("failed to create valkey client", err, "cache", name)
		}
		clients[index] = client
	}

	s.Cache = Cache{
		General:   clients[GENERAL_CACHE_INDEX],
		Session:   clients[SESSION_CACHE_INDEX],
		User:      clients[USER_CACHE_INDEX],
		Events:    clients[EVENTS_CACHE_INDEX],
		ClientAPI: clients[CLIENT_API_CACHE_INDEX],
	}

	if config.DatabaseCacheReset != -1 {
		go clearCacheDB(config.DatabaseCacheReset, s.Cache)
	}

	return nil
}

func (c Cache) byIndex(index int) (CacheClient, bool) {
	switch index {
	case GENERAL_CACHE_INDEX:
		return c.General, c.General != nil
	case SESSION_CACHE_INDEX:
		return c.Session, c.Session != nil
	case USER_CACHE_INDEX:
		return c.User, c.User != nil
	case EVENTS_CACHE_INDEX:
		return c.Events, c.Events != nil
	case CLIENT_API_CACHE_INDEX:
		return c.ClientAPI, c.ClientAPI != nil
	default:
		return nil, false
	}
}

func clearCacheDB(index int, cacheDB Cache) {
	log := logger.New("database").File("cache.database").Function("clearCacheDB")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, ok := cacheDB.byIndex(index)
	if !ok {
		log.Warn("Invalid cache database index", "index", index)
		return
	}

	dbName := cacheIndexNames[index]
	if err := client.Do(ctx, client.B().Flushdb().Build()).Error(); err != nil {
		log.Er("Failed to clear cache database", err, "index", index, "dbName", dbName)
		return
	}

	log.Info("Successfully cleared cache database", "index", index, "dbName", dbName)
}
