package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPost(t *testing.T) {
	now := time.Date(2021, 6, 1, 13, 45, 0, 0, time.UTC)

	p := NewPost("  Hello  ", "**hi**\n", now)

	assert.Equal(t, now.Unix(), p.ID)
	assert.Equal(t, "2021-06-01", p.Date)
	assert.Equal(t, "Hello", p.Title)
	assert.Equal(t, "**hi**\n", p.Content)
	assert.Empty(t, p.Edit)
	assert.False(t, p.Edited())
}

func TestPostEdited(t *testing.T) {
	p := &Post{ID: 1, Date: "2021-01-01", Edit: "2021-02-01"}
	assert.True(t, p.Edited())
	assert.Equal(t, "posts", p.TableName())
}
