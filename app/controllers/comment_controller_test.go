package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"board/app/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentController(t *testing.T) {
	t.Run("create and list comments", func(t *testing.T) {
		env := setupTestEnv(t)
		post := env.seedPost(t, "Post", "body", "alice")
		target := fmt.Sprintf("/posts/%d/comments", post.ID)

		w := env.do(http.MethodPost, target, `{"content":"Nice post!","author":"bob"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		var created dto.CommentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Nice post!", created.Content)
		assert.Equal(t, post.ID, created.PostID)

		w = env.do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusOK, w.Code)
		var list []dto.CommentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
	})

	t.Run("comment JSON uses postId", func(t *testing.T) {
		env := setupTestEnv(t)
		post := env.seedPost(t, "Post", "body", "alice")
		w := env.do(http.MethodPost, fmt.Sprintf("/posts/%d/comments", post.ID), `{"content":"hi","author":"bob"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		assert.Equal(t, float64(post.ID), raw["postId"])
		assert.Contains(t, raw, "createdAt")
		assert.Contains(t, raw, "updatedAt")
	})

	t.Run("comment on missing post", func(t *testing.T) {
		env := setupTestEnv(t)
		w := env.do(http.MethodPost, "/posts/77/comments", `{"content":"hi","author":"bob"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(http.MethodGet, "/posts/77/comments", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("comment validation", func(t *testing.T) {
		env := setupTestEnv(t)
		post := env.seedPost(t, "Post", "body", "alice")
		w := env.do(http.MethodPost, fmt.Sprintf("/posts/%d/comments", post.ID), `{"content":"","author":""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Contains(t, resp.Errors, "content")
		assert.Contains(t, resp.Errors, "author")
	})

	t.Run("show edit delete comment", func(t *testing.T) {
		env := setupTestEnv(t)
		post := env.seedPost(t, "Post", "body", "alice")
		w := env.do(http.MethodPost, fmt.Sprintf("/posts/%d/comments", post.ID), `{"content":"before","author":"bob"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		var created dto.CommentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		target := fmt.Sprintf("/comments/%d", created.ID)

		w = env.do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do(http.MethodPut, target, `{"content":"after"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		var updated dto.CommentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "after", updated.Content)
		assert.Equal(t, post.ID, updated.PostID)

		w = env.do(http.MethodDelete, target, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = env.do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, fmt.Sprintf("comment %d not found", created.ID), decodeError(t, w).Message)
	})

	t.Run("comments by author", func(t *testing.T) {
		env := setupTestEnv(t)
		post := env.seedPost(t, "Post", "body", "alice")
		env.do(http.MethodPost, fmt.Sprintf("/posts/%d/comments", post.ID), `{"content":"one","author":"bob"}`)
		env.do(http.MethodPost, fmt.Sprintf("/posts/%d/comments", post.ID), `{"content":"two","author":"carol"}`)

		w := env.do(http.MethodGet, "/comments?author=bob", "")
		assert.Equal(t, http.StatusOK, w.Code)
		var list []dto.CommentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "one", list[0].Content)

		w = env.do(http.MethodGet, "/comments", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
