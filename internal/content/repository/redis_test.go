package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webforge-app/webforge-backend/internal/content/domain"
	"github.com/webforge-app/webforge-backend/internal/content/query"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())

	store := NewRedisStore(client)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func newProject(name, owner string) domain.Project {
	return domain.Project{
		Name:       name,
		OwnerID:    owner,
		Status:     domain.StatusDraft,
		LastEdited: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
		Version:    1,
	}
}

func TestRedisStore_InsertAndFindProjects(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	a, err := store.InsertProject(ctx, newProject("Alpha", "alice"))
	require.NoError(t, err)
	b, err := store.InsertProject(ctx, newProject("Beta", "bob"))
	require.NoError(t, err)
	c, err := store.InsertProject(ctx, newProject("Gamma", "alice"))
	require.NoError(t, err)

	assert.Regexp(t, `^prj_[0-9a-z]{16}$`, a.ID)
	assert.True(t, mr.Exists(projectKeyPrefix+a.ID))

	all, err := store.FindProjects(ctx, query.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	mine, err := store.FindProjects(ctx, query.ProjectFilter{OwnerID: "alice"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Alpha", mine[0].Name)
	assert.Equal(t, "Gamma", mine[1].Name)

	got, err := store.FindProjectByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.OwnerID)
	assert.Equal(t, int64(1), got.Version)
}

func TestRedisStore_FindProjectsEmpty(t *testing.T) {
	store, _ := setupTestRedis(t)

	out, err := store.FindProjects(context.Background(), query.ProjectFilter{})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestRedisStore_FindProjectByIDMissing(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.FindProjectByID(context.Background(), "prj_nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_UpdateProject(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	orig, err := store.InsertProject(ctx, newProject("Site", "alice"))
	require.NoError(t, err)

	t.Run("applies and bumps version", func(t *testing.T) {
		next := *orig
		next.Name = "Renamed"
		next.Status = domain.StatusPublished
		next.Content = json.RawMessage(`{"pages":[{"title":"Home"}]}`)
		next.LastEdited = orig.LastEdited.Add(time.Minute)

		out, err := store.UpdateProject(ctx, next, 1)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", out.Name)
		assert.Equal(t, domain.StatusPublished, out.Status)
		assert.Equal(t, int64(2), out.Version)
		assert.JSONEq(t, `{"pages":[{"title":"Home"}]}`, string(out.Content))

		stored, err := store.FindProjectByID(ctx, orig.ID)
		require.NoError(t, err)
		assert.Equal(t, *out, *stored)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		next := *orig
		next.Name = "Late"
		_, err := store.UpdateProject(ctx, next, 1)
		assert.ErrorIs(t, err, domain.ErrConflict)

		stored, err := store.FindProjectByID(ctx, orig.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", stored.Name)
	})

	t.Run("unversioned update is last write wins", func(t *testing.T) {
		next := *orig
		next.Name = "Whatever"
		out, err := store.UpdateProject(ctx, next, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(3), out.Version)
	})

	t.Run("lastEdited never moves backwards", func(t *testing.T) {
		before, err := store.FindProjectByID(ctx, orig.ID)
		require.NoError(t, err)

		next := *before
		next.LastEdited = before.LastEdited.Add(-time.Hour)
		out, err := store.UpdateProject(ctx, next, 0)
		require.NoError(t, err)
		assert.Equal(t, before.LastEdited, out.LastEdited)
	})

	t.Run("other owner sees not found", func(t *testing.T) {
		next := *orig
		next.OwnerID = "mallory"
		_, err := store.UpdateProject(ctx, next, 0)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		next := newProject("Ghost", "alice")
		next.ID = "prj_missing"
		_, err := store.UpdateProject(ctx, next, 0)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRedisStore_DeleteProject(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	p, err := store.InsertProject(ctx, newProject("Doomed", "alice"))
	require.NoError(t, err)

	ok, err := store.DeleteProject(ctx, p.ID, "mallory")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists(projectKeyPrefix+p.ID))

	ok, err = store.DeleteProject(ctx, p.ID, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, mr.Exists(projectKeyPrefix+p.ID))

	ok, err = store.DeleteProject(ctx, p.ID, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := store.FindProjects(ctx, query.ProjectFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRedisStore_Templates(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	seed := []domain.Template{
		{Name: "Minimal Portfolio", Description: "Clean portfolio", Category: "Portfolio", CreatedAt: created},
		{Name: "E-Shop Pro", Description: "Online store", Category: "E-commerce", CreatedAt: created},
		{Name: "Tech Blog", Description: "Modern blogging template", Category: "Blog", CreatedAt: created},
	}
	var ids []string
	for _, tpl := range seed {
		out, err := store.InsertTemplate(ctx, tpl)
		require.NoError(t, err)
		assert.Regexp(t, `^tpl_[0-9a-z]{16}$`, out.ID)
		ids = append(ids, out.ID)
	}

	all, err := store.FindTemplates(ctx, query.Predicate{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Minimal Portfolio", all[0].Name)
	assert.Equal(t, "Tech Blog", all[2].Name)

	blogs, err := store.FindTemplates(ctx, query.Build(query.TemplateFilter{Category: "Blog", Search: "BLOG"}))
	require.NoError(t, err)
	require.Len(t, blogs, 1)
	assert.Equal(t, ids[2], blogs[0].ID)

	none, err := store.FindTemplates(ctx, query.Build(query.TemplateFilter{Category: "blog"}))
	require.NoError(t, err)
	assert.Empty(t, none)

	got, err := store.FindTemplateByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "E-Shop Pro", got.Name)
	assert.Equal(t, created, got.CreatedAt)

	_, err = store.FindTemplateByID(ctx, "tpl_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_SkipsDanglingOrderEntries(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	p, err := store.InsertProject(ctx, newProject("Kept", "alice"))
	require.NoError(t, err)
	_, err = mr.Push(projectOrderKey, "prj_dangling")
	require.NoError(t, err)

	all, err := store.FindProjects(ctx, query.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, p.ID, all[0].ID)
}

func TestRedisStore_Ping(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}

func TestRedisStore_ContentStoredVerbatim(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	p := newProject("Spaced", "alice")
	p.Content = json.RawMessage(`{"b": [1, 2],  "a": 1}`)
	created, err := store.InsertProject(ctx, p)
	require.NoError(t, err)

	got, err := store.FindProjectByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)
	assert.Equal(t, `{"b": [1, 2],  "a": 1}`, string(got.Content))

	bare, err := store.InsertProject(ctx, newProject("Bare", "alice"))
	require.NoError(t, err)
	got, err = store.FindProjectByID(ctx, bare.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Content)
	assert.Equal(t, *bare, *got)

	next := *got
	next.Content = json.RawMessage(`[ 3,2,1 ]`)
	updated, err := store.UpdateProject(ctx, next, 0)
	require.NoError(t, err)
	all, err := store.FindProjects(ctx, query.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, *updated, all[1])
	assert.Equal(t, `[ 3,2,1 ]`, string(all[1].Content))
}
