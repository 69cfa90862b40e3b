package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/d60-Lab/birdnest/internal/model"
)

var (
	faint = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

// FormatPostListItem 一行一篇：id、日期、标题
func FormatPostListItem(p *model.Post) string {
	line := fmt.Sprintf("  %s  %s  %s", faint(p.ID), p.Date, bold(p.Title))
	if p.Edited() {
		line += " " + faint("(edited "+p.Edit+")")
	}
	return line + "\n"
}

func FormatPostHeader(p *model.Post) string {
	var sb strings.Builder
	sb.WriteString(bold(p.Title) + "\n")
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("ID:"), faint(p.ID)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Date:"), faint(p.Date)))
	if p.Edited() {
		sb.WriteString(fmt.Sprintf("%s %s\n", faint("Edited:"), faint(p.Edit)))
	}
	return sb.String()
}

// FormatPostContent 终端渲染 markdown，渲染失败时原样返回
func FormatPostContent(content string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

func Success(msg string) string { return green("✓ ") + msg }
func Failure(msg string) string { return red("✗ ") + msg }
