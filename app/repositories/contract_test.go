package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"board/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repoFactory returns a fresh, empty pair of repositories sharing one store.
type repoFactory func(t *testing.T) (PostRepository, CommentRepository)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seedPost(t *testing.T, posts PostRepository, title, body, author string, age int) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:     title,
		Body:      body,
		Author:    author,
		CreatedAt: baseTime.Add(time.Duration(age) * time.Hour),
	}
	require.NoError(t, posts.Create(context.Background(), post))
	return post
}

func seedComment(t *testing.T, comments CommentRepository, post *models.Post, content, author string, age int) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		Content:   content,
		Author:    author,
		CreatedAt: baseTime.Add(time.Duration(age) * time.Minute),
	}
	require.NoError(t, comment.SetPost(post))
	require.NoError(t, comments.Create(context.Background(), comment))
	return comment
}

func titles(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func runPostRepositoryContract(t *testing.T, newRepos repoFactory) {
	ctx := context.Background()

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		posts, _ := newRepos(t)
		post := &models.Post{Title: "Hello", Body: "World", Author: "alice"}
		require.NoError(t, posts.Create(ctx, post))
		assert.Greater(t, post.ID, int64(0))
		assert.False(t, post.CreatedAt.IsZero())
		assert.True(t, post.UpdatedAt.Equal(post.CreatedAt))

		second := &models.Post{Title: "Again", Body: "World", Author: "alice"}
		require.NoError(t, posts.Create(ctx, second))
		assert.NotEqual(t, post.ID, second.ID)

		found, err := posts.FindByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hello", found.Title)
		assert.Equal(t, "World", found.Body)
		assert.Equal(t, "alice", found.Author)
	})

	t.Run("missing post", func(t *testing.T) {
		posts, _ := newRepos(t)
		_, err := posts.FindByID(ctx, 404)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = posts.FindByIDWithComments(ctx, 404)
		assert.ErrorIs(t, err, ErrNotFound)
		exists, err := posts.ExistsByID(ctx, 404)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("find all pages newest first", func(t *testing.T) {
		posts, _ := newRepos(t)
		for i := 0; i < 5; i++ {
			seedPost(t, posts, fmt.Sprintf("post %d", i), "body", "alice", i)
		}

		page, err := posts.FindAll(ctx, NewPageRequest(0, 2))
		require.NoError(t, err)
		assert.Equal(t, int64(5), page.TotalElements)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 0, page.Number)
		assert.Equal(t, 2, page.Size)
		assert.Equal(t, []string{"post 4", "post 3"}, titles(page.Content))

		last, err := posts.FindAll(ctx, NewPageRequest(2, 2))
		require.NoError(t, err)
		assert.Equal(t, []string{"post 0"}, titles(last.Content))

		beyond, err := posts.FindAll(ctx, NewPageRequest(7, 2))
		require.NoError(t, err)
		assert.Empty(t, beyond.Content)
		assert.NotNil(t, beyond.Content)
		assert.Equal(t, int64(5), beyond.TotalElements)
	})

	t.Run("page far beyond the end", func(t *testing.T) {
		posts, _ := newRepos(t)
		seedPost(t, posts, "only", "body", "alice", 0)

		for _, req := range []PageRequest{
			NewPageRequest(100000000000000000, 100),
			{Page: 100000000000000000, Size: 100},
		} {
			page, err := posts.FindAll(ctx, req)
			require.NoError(t, err)
			assert.Empty(t, page.Content)
			assert.Equal(t, int64(1), page.TotalElements)
			assert.Equal(t, 1, page.TotalPages)

			page, err = posts.SearchByKeyword(ctx, "only", req)
			require.NoError(t, err)
			assert.Empty(t, page.Content)
			assert.Equal(t, int64(1), page.TotalElements)
		}
	})

	t.Run("find all with explicit sort", func(t *testing.T) {
		posts, _ := newRepos(t)
		seedPost(t, posts, "banana", "body", "bob", 0)
		seedPost(t, posts, "apple", "body", "carol", 1)
		seedPost(t, posts, "cherry", "body", "alice", 2)

		byTitle, err := ParseOrder("title", "ASC")
		require.NoError(t, err)
		page, err := posts.FindAll(ctx, NewPageRequest(0, 10, byTitle))
		require.NoError(t, err)
		assert.Equal(t, []string{"apple", "banana", "cherry"}, titles(page.Content))

		byAuthor, err := ParseOrder("author", "DESC")
		require.NoError(t, err)
		page, err = posts.FindAll(ctx, NewPageRequest(0, 10, byAuthor))
		require.NoError(t, err)
		assert.Equal(t, []string{"apple", "banana", "cherry"}, titles(page.Content))
	})

	t.Run("empty store", func(t *testing.T) {
		posts, _ := newRepos(t)
		page, err := posts.FindAll(ctx, NewPageRequest(0, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(0), page.TotalElements)
		assert.Equal(t, 0, page.TotalPages)
		assert.Empty(t, page.Content)
	})

	t.Run("find by author", func(t *testing.T) {
		posts, _ := newRepos(t)
		seedPost(t, posts, "one", "body", "alice", 0)
		seedPost(t, posts, "two", "body", "bob", 1)
		seedPost(t, posts, "three", "body", "alice", 2)

		page, err := posts.FindByAuthor(ctx, "alice", NewPageRequest(0, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.TotalElements)
		assert.Equal(t, []string{"three", "one"}, titles(page.Content))
	})

	t.Run("search by keyword", func(t *testing.T) {
		posts, _ := newRepos(t)
		seedPost(t, posts, "Go Generics", "type parameters", "alice", 0)
		seedPost(t, posts, "Lunch", "a note about GOlang", "bob", 1)
		seedPost(t, posts, "Cooking", "pasta", "carol", 2)
		seedPost(t, posts, "100% done", "literal percent", "dave", 3)
		seedPost(t, posts, "snake_case", "literal underscore", "erin", 4)

		tests := []struct {
			keyword string
			want    []string
		}{
			{"go", []string{"Lunch", "Go Generics"}},
			{"PASTA", []string{"Cooking"}},
			{"%", []string{"100% done"}},
			{"_", []string{"snake_case"}},
			{"nothing here", []string{}},
		}
		for _, tt := range tests {
			t.Run(tt.keyword, func(t *testing.T) {
				page, err := posts.SearchByKeyword(ctx, tt.keyword, NewPageRequest(0, 10))
				require.NoError(t, err)
				assert.Equal(t, tt.want, titles(page.Content))
				assert.Equal(t, int64(len(tt.want)), page.TotalElements)
			})
		}
	})

	t.Run("comment counts on list", func(t *testing.T) {
		posts, comments := newRepos(t)
		quiet := seedPost(t, posts, "quiet", "body", "alice", 0)
		busy := seedPost(t, posts, "busy", "body", "alice", 1)
		seedComment(t, comments, busy, "first", "bob", 0)
		seedComment(t, comments, busy, "second", "carol", 1)

		page, err := posts.FindAll(ctx, NewPageRequest(0, 10))
		require.NoError(t, err)
		require.Len(t, page.Content, 2)
		assert.Equal(t, busy.ID, page.Content[0].ID)
		assert.Equal(t, int64(2), page.Content[0].CommentCount)
		assert.Equal(t, quiet.ID, page.Content[1].ID)
		assert.Equal(t, int64(0), page.Content[1].CommentCount)
	})

	t.Run("find with comments", func(t *testing.T) {
		posts, comments := newRepos(t)
		post := seedPost(t, posts, "detail", "body", "alice", 0)
		other := seedPost(t, posts, "other", "body", "alice", 1)
		seedComment(t, comments, post, "later", "bob", 5)
		seedComment(t, comments, post, "earlier", "carol", 1)
		seedComment(t, comments, other, "elsewhere", "dave", 0)

		found, err := posts.FindByIDWithComments(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, found.Comments, 2)
		assert.Equal(t, "earlier", found.Comments[0].Content)
		assert.Equal(t, "later", found.Comments[1].Content)
		assert.Equal(t, int64(2), found.CommentCount)
		for _, c := range found.Comments {
			assert.Equal(t, post.ID, c.PostRef())
		}
	})

	t.Run("update", func(t *testing.T) {
		posts, _ := newRepos(t)
		post := seedPost(t, posts, "old", "old body", "alice", 0)
		post.ApplyUpdate("new", "new body", baseTime.Add(48*time.Hour))
		require.NoError(t, posts.Update(ctx, post))

		found, err := posts.FindByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "new", found.Title)
		assert.Equal(t, "new body", found.Body)
		assert.Equal(t, "alice", found.Author)
		assert.True(t, found.UpdatedAt.After(found.CreatedAt))

		missing := &models.Post{ID: 999, Title: "x", Body: "y", Author: "z"}
		assert.ErrorIs(t, posts.Update(ctx, missing), ErrNotFound)
	})

	t.Run("delete cascades comments", func(t *testing.T) {
		posts, comments := newRepos(t)
		post := seedPost(t, posts, "doomed", "body", "alice", 0)
		keep := seedPost(t, posts, "kept", "body", "alice", 1)
		c := seedComment(t, comments, post, "gone", "bob", 0)
		kc := seedComment(t, comments, keep, "stays", "bob", 1)

		require.NoError(t, posts.Delete(ctx, post.ID))

		_, err := posts.FindByID(ctx, post.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = comments.GetByID(ctx, c.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = comments.GetByID(ctx, kc.ID)
		assert.NoError(t, err)

		assert.ErrorIs(t, posts.Delete(ctx, post.ID), ErrNotFound)
	})
}

func runCommentRepositoryContract(t *testing.T, newRepos repoFactory) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		posts, comments := newRepos(t)
		post := seedPost(t, posts, "post", "body", "alice", 0)
		comment := &models.Comment{Content: "Nice post!", Author: "bob"}
		require.NoError(t, comment.SetPost(post))
		require.NoError(t, comments.Create(ctx, comment))
		assert.Greater(t, comment.ID, int64(0))
		assert.False(t, comment.CreatedAt.IsZero())

		found, err := comments.GetByID(ctx, comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "Nice post!", found.Content)
		assert.Equal(t, "bob", found.Author)
		assert.Equal(t, post.ID, found.PostID)
		assert.Equal(t, post.ID, found.PostRef())
	})

	t.Run("create on missing post", func(t *testing.T) {
		posts, comments := newRepos(t)
		comment := &models.Comment{Content: "orphan", Author: "bob", PostID: 42}
		assert.ErrorIs(t, comments.Create(ctx, comment), ErrNotFound)

		exists, err := posts.ExistsByID(ctx, 42)
		require.NoError(t, err)
		assert.False(t, exists, "saving a comment must not create its post")
	})

	t.Run("create does not write back the post", func(t *testing.T) {
		posts, comments := newRepos(t)
		post := seedPost(t, posts, "original", "body", "alice", 0)
		post.Title = "changed in memory"
		comment := &models.Comment{Content: "hi", Author: "bob"}
		require.NoError(t, comment.SetPost(post))
		require.NoError(t, comments.Create(ctx, comment))

		stored, err := posts.FindByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", stored.Title)
	})

	t.Run("list by post in creation order", func(t *testing.T) {
		posts, comments := newRepos(t)
		post := seedPost(t, posts, "post", "body", "alice", 0)
		seedComment(t, comments, post, "b", "bob", 2)
		seedComment(t, comments, post, "a", "bob", 1)

		list, err := comments.ListByPost(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "a", list[0].Content)
		assert.Equal(t, "b", list[1].Content)

		empty, err := comments.ListByPost(ctx, 12345)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("list by author", func(t *testing.T) {
		posts, comments := newRepos(t)
		p1 := seedPost(t, posts, "p1", "body", "alice", 0)
		p2 := seedPost(t, posts, "p2", "body", "alice", 1)
		seedComment(t, comments, p1, "one", "bob", 0)
		seedComment(t, comments, p2, "two", "bob", 1)
		seedComment(t, comments, p2, "three", "carol", 2)

		list, err := comments.ListByAuthor(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "one", list[0].Content)
		assert.Equal(t, "two", list[1].Content)
	})

	t.Run("update keeps owner", func(t *testing.T) {
		posts, comments := newRepos(t)
		post := seedPost(t, posts, "post", "body", "alice", 0)
		comment := seedComment(t, comments, post, "before", "bob", 0)

		comment.Content = "after"
		comment.Touch(baseTime.Add(time.Hour))
		require.NoError(t, comments.Update(ctx, comment))

		found, err := comments.GetByID(ctx, comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "after", found.Content)
		assert.Equal(t, post.ID, found.PostID)

		missing := &models.Comment{ID: 999, Content: "x", Author: "y", PostID: post.ID}
		assert.ErrorIs(t, comments.Update(ctx, missing), ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		posts, comments := newRepos(t)
		post := seedPost(t, posts, "post", "body", "alice", 0)
		comment := seedComment(t, comments, post, "bye", "bob", 0)

		require.NoError(t, comments.Delete(ctx, comment.ID))
		_, err := comments.GetByID(ctx, comment.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, comments.Delete(ctx, comment.ID), ErrNotFound)

		exists, err := posts.ExistsByID(ctx, post.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
