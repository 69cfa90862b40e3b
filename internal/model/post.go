package model

import (
	"strings"
	"time"
)

// DateLayout 文章日期格式 YYYY-MM-DD
const DateLayout = "2006-01-02"

// Post 博客文章。ID 为创建时的 Unix 秒，同时作为分区键和 URL 路径段
type Post struct {
	ID      int64  `json:"id" yaml:"id" dynamodbav:"id" gorm:"primaryKey;autoIncrement:false"`
	Date    string `json:"date" yaml:"date" dynamodbav:"date" gorm:"type:varchar(10);not null;index:idx_post_date"`
	Edit    string `json:"edit,omitempty" yaml:"edit,omitempty" dynamodbav:"edit,omitempty" gorm:"type:varchar(10)"`
	Title   string `json:"title" yaml:"title" dynamodbav:"title" gorm:"type:text;not null"`
	Content string `json:"content" yaml:"content" dynamodbav:"content" gorm:"type:text;not null"`
}

func (Post) TableName() string { return "posts" }

// NewPost 按创建时间生成 ID 与日期，标题去除首尾空白，内容原样保存
func NewPost(title, content string, now time.Time) *Post {
	return &Post{
		ID:      now.Unix(),
		Date:    now.Format(DateLayout),
		Title:   strings.TrimSpace(title),
		Content: content,
	}
}

// Edited 是否编辑过
func (p *Post) Edited() bool { return p.Edit != "" }
