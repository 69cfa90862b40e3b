package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/d60-Lab/birdnest/internal/app"
	"github.com/d60-Lab/birdnest/internal/model"
	"github.com/d60-Lab/birdnest/internal/repository"
	"github.com/d60-Lab/birdnest/internal/service"
)

type benchOptions struct {
	table string
	posts int
	reads int
}

func (o benchOptions) validate() error {
	if o.posts < 1 {
		return fmt.Errorf("--posts must be at least 1, got %d", o.posts)
	}
	if o.reads < 0 {
		return fmt.Errorf("--reads must not be negative, got %d", o.reads)
	}
	return nil
}

var benchOpts benchOptions

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "在独立表上压测当前存储后端的读写延迟",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := benchOpts.validate(); err != nil {
			return err
		}
		c := *cfg
		c.Store.Table = benchOpts.table

		store, err := app.OpenStore(cmd.Context(), &c)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.InitSchema(cmd.Context()); err != nil {
			return err
		}
		return runBench(cmd.Context(), cmd.OutOrStdout(), store.Posts, c.Store.Backend, benchOpts)
	},
}

type benchResult struct {
	name      string
	durations []time.Duration
}

func runBench(ctx context.Context, out io.Writer, repo repository.PostRepository, backend string, opts benchOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]int64, opts.posts)

	put := benchResult{name: "put"}
	for i := range ids {
		p := model.NewPost(fmt.Sprintf("bench %d", i), "**bench** body", base.Add(time.Duration(i)*time.Hour))
		ids[i] = p.ID
		start := time.Now()
		if err := repo.Put(ctx, p); err != nil {
			return err
		}
		put.durations = append(put.durations, time.Since(start))
	}
	defer func() {
		for _, id := range ids {
			_ = repo.Delete(ctx, id)
		}
	}()

	rnd := rand.New(rand.NewSource(42))
	get := benchResult{name: "get"}
	update := benchResult{name: "update"}
	for i := 0; i < opts.reads; i++ {
		id := ids[rnd.Intn(len(ids))]
		start := time.Now()
		if _, err := repo.Get(ctx, id); err != nil {
			return err
		}
		get.durations = append(get.durations, time.Since(start))

		if i%10 == 0 {
			start = time.Now()
			if err := repo.Update(ctx, id, "2021-01-01", "bench edited", "body"); err != nil {
				return err
			}
			update.durations = append(update.durations, time.Since(start))
		}
	}

	svc := service.NewPostService(repo)
	list := benchResult{name: "list (sorted)"}
	for i := 0; i < opts.reads/100+1; i++ {
		start := time.Now()
		if _, err := svc.List(ctx); err != nil {
			return err
		}
		list.durations = append(list.durations, time.Since(start))
	}

	fmt.Fprintf(out, "Post store latency (%s, %d posts, %d reads)\n", backend, opts.posts, opts.reads)
	for _, r := range []benchResult{put, get, update, list} {
		fmt.Fprintf(out, "%-14s n=%-6d avg=%v p95=%v p99=%v\n",
			r.name, len(r.durations), avg(r.durations), pct(r.durations, 0.95), pct(r.durations, 0.99))
	}
	return nil
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func init() {
	benchCmd.Flags().StringVar(&benchOpts.table, "table", "posts_bench", "压测使用的表，结束后清理写入的数据")
	benchCmd.Flags().IntVar(&benchOpts.posts, "posts", 1000, "写入文章数")
	benchCmd.Flags().IntVar(&benchOpts.reads, "reads", 5000, "随机读取次数")
	rootCmd.AddCommand(benchCmd)
}
