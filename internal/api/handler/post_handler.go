package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/birdnest/internal/markdown"
	"github.com/d60-Lab/birdnest/internal/repository"
	"github.com/d60-Lab/birdnest/internal/view"
	"github.com/d60-Lab/birdnest/pkg/response"
)

type postForm struct {
	OTP     string `form:"otp" binding:"required,modhex"`
	Title   string `form:"title"`
	Content string `form:"content"`
}

type deleteForm struct {
	OTP string `form:"otp" binding:"required,modhex"`
}

var errMissingFields = errors.New("title and content are required")

// bindPostForm 绑定文章表单；title 和 content 必须出现，允许为空
func (h *Handler) bindPostForm(c *gin.Context) (postForm, bool) {
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		h.rejectForm(c, err)
		return form, false
	}
	_, hasTitle := c.GetPostForm("title")
	_, hasContent := c.GetPostForm("content")
	if !hasTitle || !hasContent {
		h.rejectForm(c, errMissingFields)
		return form, false
	}
	return form, true
}

// ListPosts 文章列表
// @Summary 文章列表
// @Description 按日期倒序列出全部文章
// @Tags 文章
// @Produce html
// @Success 200 {string} string "HTML 页面"
// @Success 304 {string} string "未修改"
// @Failure 500 {string} string ""
// @Router / [get]
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	h.render(c, view.PagePosts, view.Page{Posts: posts})
}

// ShowPost 文章详情
// @Summary 查看文章
// @Description content 按 markdown 渲染为 HTML，也可通过 /{id} 访问
// @Tags 文章
// @Produce html
// @Param id path int true "文章 ID"
// @Success 200 {string} string "HTML 页面"
// @Failure 404 {string} string ""
// @Failure 500 {string} string ""
// @Router /post/{id} [get]
func (h *Handler) ShowPost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrPostNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	h.render(c, view.PagePost, view.Page{
		Title:   post.Title,
		Post:    post,
		Content: markdown.Render(post.Content),
	})
}

// NewForm 新建表单
// @Summary 新建文章表单
// @Tags 文章
// @Produce html
// @Success 200 {string} string "HTML 页面"
// @Router /new [get]
func (h *Handler) NewForm(c *gin.Context) {
	h.render(c, view.PageNew, view.Page{Title: "new"})
}

// CreatePost 新建文章
// @Summary 新建文章
// @Description 校验 OTP 后创建，id 为当前 Unix 秒
// @Tags 文章
// @Accept x-www-form-urlencoded
// @Produce plain
// @Param otp formData string true "YubiKey OTP"
// @Param title formData string true "标题"
// @Param content formData string true "markdown 正文"
// @Success 200 {string} string "=)"
// @Failure 400 {string} string ""
// @Failure 500 {string} string ""
// @Router /new [post]
func (h *Handler) CreatePost(c *gin.Context) {
	form, ok := h.bindPostForm(c)
	if !ok || !h.authorize(c, form.OTP) {
		return
	}
	if _, err := h.posts.Create(c.Request.Context(), form.Title, form.Content); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c)
}

// EditForm 编辑表单
// @Summary 编辑文章表单
// @Tags 文章
// @Produce html
// @Param id path int true "文章 ID"
// @Success 200 {string} string "HTML 页面"
// @Failure 404 {string} string ""
// @Failure 500 {string} string ""
// @Router /post/{id}/edit [get]
func (h *Handler) EditForm(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrPostNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	h.render(c, view.PageEdit, view.Page{Title: post.Title, Post: post})
}

// UpdatePost 编辑文章
// @Summary 编辑文章
// @Description 校验 OTP 后覆盖 title/content 并记录编辑日期；不检查文章是否存在，不存在时不会新建
// @Tags 文章
// @Accept x-www-form-urlencoded
// @Produce plain
// @Param id path int true "文章 ID"
// @Param otp formData string true "YubiKey OTP"
// @Param title formData string true "标题"
// @Param content formData string true "markdown 正文"
// @Success 200 {string} string "=)"
// @Failure 400 {string} string ""
// @Failure 500 {string} string ""
// @Router /post/{id}/edit [post]
func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	form, ok := h.bindPostForm(c)
	if !ok || !h.authorize(c, form.OTP) {
		return
	}
	if err := h.posts.Update(c.Request.Context(), id, form.Title, form.Content); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c)
}

// DeleteForm 删除确认
// @Summary 删除确认表单
// @Tags 文章
// @Produce html
// @Param id path int true "文章 ID"
// @Success 200 {string} string "HTML 页面"
// @Router /post/{id}/delete [get]
func (h *Handler) DeleteForm(c *gin.Context) {
	h.render(c, view.PageDelete, view.Page{Title: "delete"})
}

// DeletePost 删除文章
// @Summary 删除文章
// @Description 校验 OTP 后删除，重复删除不报错
// @Tags 文章
// @Accept x-www-form-urlencoded
// @Produce plain
// @Param id path int true "文章 ID"
// @Param otp formData string true "YubiKey OTP"
// @Success 200 {string} string "=)"
// @Failure 400 {string} string ""
// @Failure 500 {string} string ""
// @Router /post/{id}/delete [post]
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	var form deleteForm
	if err := c.ShouldBind(&form); err != nil {
		h.rejectForm(c, err)
		return
	}
	if !h.authorize(c, form.OTP) {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c)
}
