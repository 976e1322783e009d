//go:build integration

package board

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/navidved/bulletin/internal/db"
	"github.com/navidved/bulletin/internal/identity"
	"github.com/navidved/bulletin/internal/member"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	pool  *pgxpool.Pool
	alice = identity.Of("a@example.com")
)

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("board"),
		postgres.WithUsername("board"),
		postgres.WithPassword("board"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("failed to obtain connection string: %s", err)
	}
	if err := db.Migrate(url); err != nil {
		log.Fatalf("failed to migrate: %s", err)
	}
	pool, err = db.Connect(ctx, url)
	if err != nil {
		log.Fatalf("failed to connect to postgres container: %s", err)
	}

	code := m.Run()

	pool.Close()
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func resetTables(t *testing.T) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`TRUNCATE post_likes, comments, post_files, posts, members RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func seedMember(t *testing.T, email, nick string) {
	t.Helper()
	_, err := member.NewRepository(pool).Create(context.Background(), email, nick, "x")
	require.NoError(t, err)
}

func TestRepository_SaveAndFind(t *testing.T) {
	resetTables(t)
	seedMember(t, "a@example.com", "alice")
	ctx := context.Background()
	repo := NewRepository(pool)

	saved, err := repo.Save(ctx, Post{Title: "hello", Content: "world", Author: "a@example.com"})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.False(t, saved.InsertedAt.IsZero())

	revised, err := repo.Save(ctx, saved.Revise("hi", "there"))
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", revised.Author)

	got, err := repo.FindDetail(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Title)
	assert.Equal(t, "alice", got.Writer)

	_, err = repo.FindByID(ctx, saved.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteByID(ctx, saved.ID+100), ErrNotFound)
}

func TestRepository_FindPage(t *testing.T) {
	resetTables(t)
	seedMember(t, "a@example.com", "alice")
	ctx := context.Background()
	repo := NewRepository(pool)

	for _, title := range []string{"go tips", "rust tips", "100% go", "cooking"} {
		_, err := repo.Save(ctx, Post{Title: title, Content: "body", Author: "a@example.com"})
		require.NoError(t, err)
	}

	page, err := repo.FindPage(ctx, "GO", 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "100% go", page.Items[0].Title)
	assert.Equal(t, 1, page.TotalPages)

	page, err = repo.FindPage(ctx, "100%", 0, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = repo.FindPage(ctx, "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.TotalPages)
}

func TestService_Postgres(t *testing.T) {
	resetTables(t)
	seedMember(t, "a@example.com", "alice")
	ctx := context.Background()

	blobs := newRecordingBlobs()
	svc := NewService(
		NewRepository(pool),
		NewAttachments(NewAttachmentRepository(pool), blobs, "ns"),
		childTable{"comments"},
		childTable{"post_likes"},
		member.NewRepository(pool),
		db.NewTransactor(pool),
		Options{ImagePrefix: "http://cdn/"},
	)

	id, err := svc.Create(ctx, "title", "content", []*File{newFile("b.png", "b"), newFile("a.png", "a")}, alice)
	require.NoError(t, err)

	detail, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []FileDescriptor{
		{Name: "a.png", Path: "http://cdn/ns/1/a.png"},
		{Name: "b.png", Path: "http://cdn/ns/1/b.png"},
	}, detail.Files)

	require.NoError(t, svc.DeleteByID(ctx, id, alice))
	_, err = svc.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	var files int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM post_files`).Scan(&files))
	assert.Zero(t, files)
}

// childTable purges a child table directly so the test stays inside this package.
type childTable struct{ name string }

func (c childTable) DeleteByPostID(ctx context.Context, postID int64) error {
	_, err := db.Executor(ctx, pool).Exec(ctx, `DELETE FROM `+c.name+` WHERE post_id = $1`, postID)
	return err
}
