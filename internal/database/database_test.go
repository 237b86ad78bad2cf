package database

import (
	"testing"
	"time"

	"musicbot/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheConstants(t *testing.T) {
	assert.Equal(t, 0, GENERAL_CACHE_INDEX)
	assert.Equal(t, 1, SESSION_CACHE_INDEX)
	assert.Equal(t, 2, USER_CACHE_INDEX)
	assert.Equal(t, 3, EVENTS_CACHE_INDEX)
	assert.Equal(t, 4, CLIENT_API_CACHE_INDEX)
	assert.Len(t, cacheIndexNames, 5)
}

func TestDB_StructCreation(t *testing.T) {
	log := logger.New("test")

	db := &DB{log: log}

	assert.NotNil(t, db)
	assert.Nil(t, db.SQL)
	assert.NoError(t, db.Close())
}

func TestCache_ByIndex(t *testing.T) {
	_, ok := Cache{}.byIndex(SESSION_CACHE_INDEX)
	assert.False(t, ok)

	_, ok = Cache{}.byIndex(99)
	assert.False(t, ok)
}

func TestCacheBuilder_Keys(t *testing.T) {
	id := uuid.MustParse("0190a5b8-0000-7000-8000-000000000001")

	tests := []struct {
		name    string
		builder *CacheBuilder
		want    string
	}{
		{name: "string key", builder: NewCacheBuilder(nil, "trending"), want: "trending"},
		{name: "uuid key", builder: NewCacheBuilder(nil, id), want: id.String()},
		{name: "telegram id with hash", builder: NewCacheBuilder(nil, int64(12345)).WithHash("chat_state"), want: "chat_state:12345"},
		{name: "empty hash ignored", builder: NewCacheBuilder(nil, "k").WithHash(""), want: "k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.builder.Key())
		})
	}
}

func TestCacheBuilder_ValidationErrors(t *testing.T) {
	err := NewCacheBuilder(nil, "key").WithValue("v").WithTTL(time.Minute).Set()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")

	found, err := NewCacheBuilder(nil, "key").Get(&struct{}{})
	assert.False(t, found)
	assert.Error(t, err)

	err = NewCacheBuilder(nil, "key").WithStruct(make(chan int)).Set()
	assert.Error(t, err)
}

func TestMigrationModels(t *testing.T) {
	modelList := MigrationModels()
	require.Len(t, modelList, 5)
	assert.IsType(t, &models.User{}, modelList[0])
}
