package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"

	"github.com/d60-Lab/birdnest/internal/markdown"
	"github.com/d60-Lab/birdnest/internal/model"
	"github.com/d60-Lab/birdnest/internal/view"
	"github.com/d60-Lab/birdnest/pkg/response"
)

// Feed 订阅源
// @Summary RSS/Atom 订阅
// @Description 最新 feed.limit 篇文章，format=atom 时输出 Atom
// @Tags 文章
// @Produce xml
// @Param format query string false "rss 或 atom" Enums(rss, atom)
// @Success 200 {string} string "订阅 XML"
// @Failure 500 {string} string ""
// @Router /feed [get]
func (h *Handler) Feed(c *gin.Context) {
	posts, err := h.posts.Latest(c.Request.Context(), h.feed.Limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	feed := h.buildFeed(posts)

	var (
		body        string
		contentType string
	)
	if c.Query("format") == "atom" {
		body, err = feed.ToAtom()
		contentType = "application/atom+xml; charset=utf-8"
	} else {
		body, err = feed.ToRss()
		contentType = "application/rss+xml; charset=utf-8"
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Cached(c, contentType, []byte(body), view.ETag([]byte(body)))
}

func (h *Handler) buildFeed(posts []*model.Post) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       h.feed.Title,
		Link:        &feeds.Link{Href: h.baseURL + "/"},
		Description: h.feed.Description,
		Id:          h.baseURL + "/",
	}

	for _, post := range posts {
		link := h.baseURL + "/post/" + strconv.FormatInt(post.ID, 10)
		item := &feeds.Item{
			Title:       post.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Created:     parseDate(post.Date),
			Description: string(markdown.Render(post.Content)),
		}
		if post.Edited() {
			item.Updated = parseDate(post.Edit)
		}
		feed.Items = append(feed.Items, item)

		if item.Created.After(feed.Created) {
			feed.Created = item.Created
		}
		if item.Updated.After(feed.Updated) {
			feed.Updated = item.Updated
		}
	}
	return feed
}

// parseDate 日期异常时返回零值，订阅源中省略该字段
func parseDate(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
