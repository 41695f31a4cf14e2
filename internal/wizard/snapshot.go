package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"connect-workers/internal/common/database"
)

// SnapshotKey identifies one user's in-progress wizard.
type SnapshotKey struct {
	WizardKind string `json:"wizardKind"`
	Role       string `json:"role"`
	UserID     string `json:"userId"`
}

// String renders the key as "{wizardKind}_{role}_{userId}".
func (k SnapshotKey) String() string {
	return k.WizardKind + "_" + k.Role + "_" + k.UserID
}

// keyPartEscaper keeps the separator out of each part, so distinct keys never
// share a storage id.
var keyPartEscaper = strings.NewReplacer("%", "%25", "_", "%5F")

// StorageID is String with "%" and "_" percent-escaped inside each part.
func (k SnapshotKey) StorageID() string {
	return keyPartEscaper.Replace(k.WizardKind) + "_" +
		keyPartEscaper.Replace(k.Role) + "_" +
		keyPartEscaper.Replace(k.UserID)
}

func (k SnapshotKey) IsZero() bool {
	return k == SnapshotKey{}
}

// Snapshot is the persisted resume point of a session.
type Snapshot struct {
	Step int             `json:"step"`
	Data json.RawMessage `json:"data"`
}

// KVStore is the storage medium behind snapshots.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// SnapshotStore saves and loads session snapshots on a KVStore. Writes are
// last-write-wins; concurrent sessions for the same key are not reconciled.
type SnapshotStore struct {
	kv     KVStore
	prefix string
}

func NewSnapshotStore(kv KVStore, prefix string) *SnapshotStore {
	return &SnapshotStore{kv: kv, prefix: prefix}
}

func (s *SnapshotStore) storageKey(key SnapshotKey) string {
	return s.prefix + key.StorageID()
}

func (s *SnapshotStore) Save(ctx context.Context, key SnapshotKey, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.kv.Set(ctx, s.storageKey(key), raw)
}

// Load returns nil without error when no snapshot exists.
func (s *SnapshotStore) Load(ctx context.Context, key SnapshotKey) (*Snapshot, error) {
	raw, found, err := s.kv.Get(ctx, s.storageKey(key))
	if err != nil || !found {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return &snap, nil
}

func (s *SnapshotStore) Clear(ctx context.Context, key SnapshotKey) error {
	return s.kv.Delete(ctx, s.storageKey(key))
}

// RedisKV stores snapshots in Redis with an optional expiry.
type RedisKV struct {
	client *database.RedisClient
	ttl    time.Duration
}

func NewRedisKV(client *database.RedisClient, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return r.client.GetBytes(ctx, key)
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.client.SetBytes(ctx, key, value, r.ttl)
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key)
}

// MemoryKV is an in-process KVStore for tests and the CLI.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
