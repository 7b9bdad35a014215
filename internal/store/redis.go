package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis"

	"github.com/tombowditch/ptpb/internal/paste"
)

const (
	pasteKeyPrefix = "pb_paste_"
	idKeyPrefix    = "pb_id_"
)

// RedisStore implements Store using Redis. Each paste is a hash keyed by
// uuid, with one string key per id pointing back at the uuid. Sunsets map
// to key expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed store and verifies connectivity.
func NewRedis(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping().Result(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// ParseRedisURI splits a "host:port" address for the rate limiter, which
// takes them separately. Missing parts default to localhost:6379.
func ParseRedisURI(uri string) (host string, port int) {
	host = "localhost"
	port = 6379

	if uri == "" {
		return
	}

	h, p, found := strings.Cut(uri, ":")
	if h != "" {
		host = h
	}
	if found {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	return
}

// Close releases the Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Get retrieves a paste by any of its ids.
func (s *RedisStore) Get(id string) (*paste.Paste, error) {
	uuid, err := s.client.Get(idKeyPrefix + id).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.Lookup(uuid)
}

// Lookup retrieves a paste by uuid.
func (s *RedisStore) Lookup(uuid string) (*paste.Paste, error) {
	fields, err := s.client.HGetAll(pasteKeyPrefix + uuid).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return decodePaste(uuid, fields), nil
}

// Create claims every id with SETNX before writing the paste hash.
// Returns false, releasing what it claimed, if any id is taken.
func (s *RedisStore) Create(p *paste.Paste) (bool, error) {
	var claimed []string
	for _, id := range p.IDs() {
		key := idKeyPrefix + id
		ok, err := s.client.SetNX(key, p.UUID, 0).Result()
		if err != nil || !ok {
			s.release(claimed)
			return false, err
		}
		claimed = append(claimed, key)
	}

	if err := s.write(p, claimed); err != nil {
		s.release(claimed)
		return false, err
	}
	return true, nil
}

// Update rewrites an existing paste.
func (s *RedisStore) Update(p *paste.Paste) error {
	n, err := s.client.Exists(pasteKeyPrefix + p.UUID).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return s.write(p, idKeys(p))
}

// Delete removes a paste and its ids.
func (s *RedisStore) Delete(uuid string) error {
	p, err := s.Lookup(uuid)
	if err != nil {
		return err
	}
	keys := append(idKeys(p), pasteKeyPrefix+uuid)
	return s.client.Del(keys...).Err()
}

func (s *RedisStore) write(p *paste.Paste, ids []string) error {
	key := pasteKeyPrefix + p.UUID
	pipe := s.client.TxPipeline()
	pipe.HMSet(key, encodePaste(p))
	for _, k := range append(ids, key) {
		if p.ExpiresAt.IsZero() {
			pipe.Persist(k)
		} else {
			pipe.ExpireAt(k, p.ExpiresAt)
		}
	}
	_, err := pipe.Exec()
	return err
}

func (s *RedisStore) release(keys []string) {
	if len(keys) > 0 {
		s.client.Del(keys...)
	}
}

func idKeys(p *paste.Paste) []string {
	ids := p.IDs()
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = idKeyPrefix + id
	}
	return keys
}

func encodePaste(p *paste.Paste) map[string]interface{} {
	expires := ""
	if !p.ExpiresAt.IsZero() {
		expires = p.ExpiresAt.Format(time.RFC3339Nano)
	}
	return map[string]interface{}{
		"short":        p.Short,
		"long":         p.Long,
		"label":        p.Label,
		"body":         string(p.Body),
		"content_type": p.ContentType,
		"private":      strconv.FormatBool(p.Private),
		"created":      p.Created.Format(time.RFC3339Nano),
		"expires":      expires,
	}
}

func decodePaste(uuid string, f map[string]string) *paste.Paste {
	p := &paste.Paste{
		UUID:        uuid,
		Short:       f["short"],
		Long:        f["long"],
		Label:       f["label"],
		Body:        []byte(f["body"]),
		ContentType: f["content_type"],
	}
	p.Private, _ = strconv.ParseBool(f["private"])
	p.Created, _ = time.Parse(time.RFC3339Nano, f["created"])
	if f["expires"] != "" {
		p.ExpiresAt, _ = time.Parse(time.RFC3339Nano, f["expires"])
	}
	return p
}
