package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/d60-Lab/birdnest/internal/app"
	"github.com/d60-Lab/birdnest/internal/model"
	"github.com/d60-Lab/birdnest/internal/service"
	"github.com/d60-Lab/birdnest/internal/ui"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "在终端管理文章",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "按日期倒序列出文章",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := app.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		posts, err := service.NewPostService(store.Posts).List(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(posts) == 0 {
			fmt.Fprintln(out, "no posts")
			return nil
		}
		for _, p := range posts {
			fmt.Fprint(out, ui.FormatPostListItem(p))
		}
		return nil
	},
}

var postsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "渲染显示一篇文章",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		store, err := app.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		post, err := store.Posts.Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get post %d: %w", id, err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, ui.FormatPostHeader(post))
		fmt.Fprint(out, ui.FormatPostContent(post.Content))
		return nil
	},
}

var postsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "导出全部文章为 YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		store, err := app.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		posts, err := service.NewPostService(store.Posts).List(cmd.Context())
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return writePosts(w, posts)
	},
}

var postsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "从 YAML 导入文章，id 相同则覆盖",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		posts, err := readPosts(f)
		if err != nil {
			return err
		}

		store, err := app.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		for _, p := range posts {
			if err := store.Posts.Put(cmd.Context(), p); err != nil {
				return fmt.Errorf("put post %d: %w", p.ID, err)
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("imported %d posts", len(posts))))
		return nil
	},
}

func writePosts(w io.Writer, posts []*model.Post) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(posts); err != nil {
		return err
	}
	return enc.Close()
}

func readPosts(r io.Reader) ([]*model.Post, error) {
	var posts []*model.Post
	if err := yaml.NewDecoder(r).Decode(&posts); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	for _, p := range posts {
		if p.ID == 0 || p.Date == "" {
			return nil, fmt.Errorf("post %q is missing id or date", p.Title)
		}
	}
	return posts, nil
}

func init() {
	postsExportCmd.Flags().StringP("output", "o", "", "输出文件，默认标准输出")
	postsCmd.AddCommand(postsListCmd, postsShowCmd, postsExportCmd, postsImportCmd)
	rootCmd.AddCommand(postsCmd)
}
