package board

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/navidved/bulletin/internal/member"
)

// fakeDB is an in-memory stand-in for the relational side. RunInTx snapshots
// every table and restores it when fn fails, like a rolled back transaction.
type fakeDB struct {
	mu       sync.Mutex
	nextID   int64
	posts    map[int64]Post
	files    map[int64][]string
	comments map[int64]int
	likes    map[int64]int
	members  map[string]*member.Member

	// failOn makes the named operation return an error.
	failOn map[string]error

	pageCalls []pageCall
}

type pageCall struct {
	keyword       string
	offset, limit int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		posts:    map[int64]Post{},
		files:    map[int64][]string{},
		comments: map[int64]int{},
		likes:    map[int64]int{},
		members:  map[string]*member.Member{},
		failOn:   map[string]error{},
	}
}

func (f *fakeDB) addMember(email, nick string) {
	f.members[email] = &member.Member{Email: email, NickName: nick}
}

func (f *fakeDB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	posts := maps.Clone(f.posts)
	files := map[int64][]string{}
	for k, v := range f.files {
		files[k] = slices.Clone(v)
	}
	comments := maps.Clone(f.comments)
	likes := maps.Clone(f.likes)
	nextID := f.nextID
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.posts, f.files, f.comments, f.likes, f.nextID = posts, files, comments, likes, nextID
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeDB) fail(op string) error {
	return f.failOn[op]
}

// PostStore

type fakePosts struct{ db *fakeDB }

func (p fakePosts) Save(_ context.Context, post Post) (Post, error) {
	if err := p.db.fail("save"); err != nil {
		return Post{}, err
	}
	if post.ID == 0 {
		p.db.nextID++
		post.ID = p.db.nextID
		post.InsertedAt = time.Now()
		p.db.posts[post.ID] = post
		return post, nil
	}
	stored, ok := p.db.posts[post.ID]
	if !ok {
		return Post{}, ErrNotFound
	}
	stored.Title, stored.Content = post.Title, post.Content
	p.db.posts[post.ID] = stored
	return stored, nil
}

func (p fakePosts) FindByID(_ context.Context, id int64) (Post, error) {
	post, ok := p.db.posts[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return post, nil
}

func (p fakePosts) FindDetail(_ context.Context, id int64) (Detail, error) {
	post, ok := p.db.posts[id]
	if !ok {
		return Detail{}, ErrNotFound
	}
	writer := ""
	if m := p.db.members[post.Author]; m != nil {
		writer = m.NickName
	}
	return Detail{
		ID: post.ID, Title: post.Title, Content: post.Content, Author: post.Author, Writer: writer,
		InsertedAt: post.InsertedAt, NumberOfComments: p.db.comments[id], NumberOfLikes: p.db.likes[id],
	}, nil
}

func (p fakePosts) DeleteByID(_ context.Context, id int64) error {
	if _, ok := p.db.posts[id]; !ok {
		return ErrNotFound
	}
	delete(p.db.posts, id)
	return nil
}

func (p fakePosts) FindPage(_ context.Context, keyword string, offset, limit int) (Page, error) {
	p.db.pageCalls = append(p.db.pageCalls, pageCall{keyword, offset, limit})
	var ids []int64
	for id, post := range p.db.posts {
		if keyword == "" || strings.Contains(post.Title, keyword) || strings.Contains(post.Content, keyword) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	items := []Summary{}
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		post := p.db.posts[ids[i]]
		items = append(items, Summary{ID: post.ID, Title: post.Title, NumberOfFiles: len(p.db.files[post.ID])})
	}
	return Page{Items: items, TotalPages: totalPages(len(ids), limit)}, nil
}

// AttachmentStore

type fakeFiles struct{ db *fakeDB }

func (a fakeFiles) Insert(_ context.Context, postID int64, name string) error {
	if err := a.db.fail("insertFile"); err != nil {
		return err
	}
	if !slices.Contains(a.db.files[postID], name) {
		a.db.files[postID] = append(a.db.files[postID], name)
	}
	return nil
}

func (a fakeFiles) DeleteByCompositeID(_ context.Context, postID int64, name string) error {
	a.db.files[postID] = slices.DeleteFunc(a.db.files[postID], func(n string) bool { return n == name })
	return nil
}

func (a fakeFiles) DeleteByPostID(_ context.Context, postID int64) error {
	delete(a.db.files, postID)
	return nil
}

func (a fakeFiles) FindByPostID(_ context.Context, postID int64) ([]Attachment, error) {
	var out []Attachment
	for _, name := range a.db.files[postID] {
		out = append(out, Attachment{PostID: postID, Name: name})
	}
	return out, nil
}

func (a fakeFiles) ListFileNamesByPostID(_ context.Context, postID int64) ([]string, error) {
	return slices.Clone(a.db.files[postID]), nil
}

// ChildPurger for comments and likes

type fakeChildren struct {
	db    *fakeDB
	table func(*fakeDB) map[int64]int
	op    string
}

func (c fakeChildren) DeleteByPostID(_ context.Context, postID int64) error {
	if err := c.db.fail(c.op); err != nil {
		return err
	}
	delete(c.table(c.db), postID)
	return nil
}

// MemberLookup

type fakeMembers struct{ db *fakeDB }

func (m fakeMembers) GetByEmail(_ context.Context, email string) (*member.Member, error) {
	mem, ok := m.db.members[email]
	if !ok {
		return nil, member.ErrNotFound
	}
	return mem, nil
}

// recordingBlobs is a storage.Storage that records every call and can fail per key.
type recordingBlobs struct {
	mu      sync.Mutex
	calls   []string
	objects map[string][]byte
	failFor map[string]error
}

func newRecordingBlobs() *recordingBlobs {
	return &recordingBlobs{objects: map[string][]byte{}, failFor: map[string]error{}}
}

func (b *recordingBlobs) Upload(_ context.Context, key string, r io.Reader, size int64, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "put "+key)
	if err := b.failFor[key]; err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch for %s", key)
	}
	b.objects[key] = data
	return nil
}

func (b *recordingBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "delete "+key)
	if err := b.failFor[key]; err != nil {
		return err
	}
	delete(b.objects, key)
	return nil
}

var errBlob = errors.New("blob backend unavailable")

const (
	testNamespace = "prj3/board"
	testPrefix    = "https://cdn.example.com/"
)

type fixture struct {
	db    *fakeDB
	blobs *recordingBlobs
	svc   *Service
}

func newFixture() *fixture {
	fdb := newFakeDB()
	fdb.addMember("author@example.com", "author")
	fdb.addMember("other@example.com", "other")
	blobs := newRecordingBlobs()
	svc := NewService(
		fakePosts{fdb},
		NewAttachments(fakeFiles{fdb}, blobs, testNamespace),
		fakeChildren{db: fdb, table: func(d *fakeDB) map[int64]int { return d.comments }, op: "deleteComments"},
		fakeChildren{db: fdb, table: func(d *fakeDB) map[int64]int { return d.likes }, op: "deleteLikes"},
		fakeMembers{fdb},
		fdb,
		Options{ImagePrefix: testPrefix},
	)
	return &fixture{db: fdb, blobs: blobs, svc: svc}
}

func newFile(name, content string) *File {
	return &File{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: "application/octet-stream",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte(content))), nil
		},
	}
}
