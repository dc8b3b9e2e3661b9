package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/webforge-app/webforge-backend/internal/content/domain"
	"github.com/webforge-app/webforge-backend/internal/content/query"
)

const (
	projectKeyPrefix  = "webforge:project:"  // JSON document: webforge:project:{id}
	templateKeyPrefix = "webforge:template:" // JSON document: webforge:template:{id}
	projectOrderKey   = "webforge:projects"  // list of project ids in insertion order
	templateOrderKey  = "webforge:templates" // list of template ids in insertion order

	// maxTxAttempts bounds optimistic transaction retries for unversioned writes.
	maxTxAttempts = 3
)

// RedisStore keeps every entity as a JSON document plus an insertion-order
// list per collection. Single-document writes run in WATCH/MULTI transactions.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) InsertProject(ctx context.Context, p domain.Project) (*domain.Project, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := domain.NewID(domain.ProjectIDPrefix)
		if err != nil {
			return nil, err
		}
		p.ID = id

		err = s.insert(ctx, projectKey(id), projectOrderKey, id, toProjectDoc(p))
		if err == nil {
			return &p, nil
		}
		if errors.Is(err, errIDTaken) {
			continue
		}
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return nil, fmt.Errorf("failed to generate unique project id")
}

func (s *RedisStore) FindProjects(ctx context.Context, f query.ProjectFilter) ([]domain.Project, error) {
	docs, err := s.loadAll(ctx, projectOrderKey, projectKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}

	out := make([]domain.Project, 0, len(docs))
	for _, doc := range docs {
		var d projectDoc
		if err := json.Unmarshal(doc, &d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal project: %w", err)
		}
		if p := d.project(); f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *RedisStore) FindProjectByID(ctx context.Context, id string) (*domain.Project, error) {
	var d projectDoc
	if err := s.get(ctx, s.client, projectKey(id), &d); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	p := d.project()
	return &p, nil
}

func (s *RedisStore) UpdateProject(ctx context.Context, p domain.Project, expectedVersion int64) (*domain.Project, error) {
	key := projectKey(p.ID)
	var updated domain.Project

	txf := func(tx *redis.Tx) error {
		var d projectDoc
		if err := s.get(ctx, tx, key, &d); err != nil {
			if errors.Is(err, redis.Nil) {
				return fmt.Errorf("project %q: %w", p.ID, domain.ErrNotFound)
			}
			return err
		}
		cur := d.project()
		if cur.OwnerID != p.OwnerID {
			return fmt.Errorf("project %q: %w", p.ID, domain.ErrNotFound)
		}
		if expectedVersion != 0 && cur.Version != expectedVersion {
			return fmt.Errorf("project %q: %w", p.ID, domain.ErrConflict)
		}

		updated = cur
		updated.Name = p.Name
		updated.Status = p.Status
		updated.Content = p.Content
		if p.LastEdited.After(cur.LastEdited) {
			updated.LastEdited = p.LastEdited
		}
		updated.Version = cur.Version + 1

		data, err := json.Marshal(toProjectDoc(updated))
		if err != nil {
			return fmt.Errorf("failed to marshal project: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxAttempts; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return &updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Someone else wrote the document between WATCH and EXEC.
			if expectedVersion != 0 {
				return nil, fmt.Errorf("project %q: %w", p.ID, domain.ErrConflict)
			}
			continue
		}
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return nil, fmt.Errorf("update project: %w", redis.TxFailedErr)
}

func (s *RedisStore) DeleteProject(ctx context.Context, id, ownerID string) (bool, error) {
	key := projectKey(id)
	deleted := false

	txf := func(tx *redis.Tx) error {
		var cur projectDoc
		if err := s.get(ctx, tx, key, &cur); err != nil {
			if errors.Is(err, redis.Nil) {
				deleted = false
				return nil
			}
			return err
		}
		if cur.OwnerID != ownerID {
			deleted = false
			return nil
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.LRem(ctx, projectOrderKey, 0, id)
			return nil
		})
		deleted = err == nil
		return err
	}

	for i := 0; i < maxTxAttempts; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return deleted, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return false, fmt.Errorf("delete project: %w", err)
	}
	return false, fmt.Errorf("delete project: %w", redis.TxFailedErr)
}

func (s *RedisStore) InsertTemplate(ctx context.Context, t domain.Template) (*domain.Template, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := domain.NewID(domain.TemplateIDPrefix)
		if err != nil {
			return nil, err
		}
		t.ID = id

		err = s.insert(ctx, templateKey(id), templateOrderKey, id, t)
		if err == nil {
			return &t, nil
		}
		if errors.Is(err, errIDTaken) {
			continue
		}
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return nil, fmt.Errorf("failed to generate unique template id")
}

func (s *RedisStore) FindTemplates(ctx context.Context, pred query.Predicate) ([]domain.Template, error) {
	docs, err := s.loadAll(ctx, templateOrderKey, templateKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("find templates: %w", err)
	}

	out := make([]domain.Template, 0, len(docs))
	for _, doc := range docs {
		var t domain.Template
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal template: %w", err)
		}
		if pred.Match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *RedisStore) FindTemplateByID(ctx context.Context, id string) (*domain.Template, error) {
	var t domain.Template
	if err := s.get(ctx, s.client, templateKey(id), &t); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("template %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find template: %w", err)
	}
	return &t, nil
}

var errIDTaken = errors.New("id already taken")

// projectDoc is the stored form of a Project. Content is held as a JSON
// string so its bytes are never re-encoded.
type projectDoc struct {
	ID         string        `json:"_id"`
	Name       string        `json:"name"`
	OwnerID    string        `json:"ownerId"`
	Status     domain.Status `json:"status"`
	LastEdited time.Time     `json:"lastEdited"`
	Content    *string       `json:"content"`
	Version    int64         `json:"version"`
}

func toProjectDoc(p domain.Project) projectDoc {
	d := projectDoc{
		ID:         p.ID,
		Name:       p.Name,
		OwnerID:    p.OwnerID,
		Status:     p.Status,
		LastEdited: p.LastEdited,
		Version:    p.Version,
	}
	if p.Content != nil {
		content := string(p.Content)
		d.Content = &content
	}
	return d
}

func (d projectDoc) project() domain.Project {
	p := domain.Project{
		ID:         d.ID,
		Name:       d.Name,
		OwnerID:    d.OwnerID,
		Status:     d.Status,
		LastEdited: d.LastEdited,
		Version:    d.Version,
	}
	if d.Content != nil {
		p.Content = json.RawMessage(*d.Content)
	}
	return p
}

// insert stores doc under key and appends id to the order list, atomically,
// unless key already exists.
func (s *RedisStore) insert(ctx context.Context, key, orderKey, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return errIDTaken
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.RPush(ctx, orderKey, id)
			return nil
		})
		return err
	}, key)
}

// loadAll returns the raw documents listed in orderKey, in list order.
// Ids whose document is gone are skipped.
func (s *RedisStore) loadAll(ctx context.Context, orderKey, keyPrefix string) ([][]byte, error) {
	ids, err := s.client.LRange(ctx, orderKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + id
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	docs := make([][]byte, 0, len(vals))
	for _, v := range vals {
		if str, ok := v.(string); ok {
			docs = append(docs, []byte(str))
		}
	}
	return docs, nil
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) get(ctx context.Context, c getter, key string, dst any) error {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func projectKey(id string) string {
	return projectKeyPrefix + id
}

func templateKey(id string) string {
	return templateKeyPrefix + id
}
