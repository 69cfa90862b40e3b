package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/d60-Lab/birdnest/internal/model"
)

// badgerPostRepository 本地嵌入式 KV，value 为 JSON，key 为 <table>/<id>
type badgerPostRepository struct {
	db     *badger.DB
	prefix []byte
}

// OpenBadger 打开 badger；path 为空时使用内存模式（测试用）
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

func NewBadgerPostRepository(db *badger.DB, table string) PostRepository {
	if table == "" {
		table = model.Post{}.TableName()
	}
	return &badgerPostRepository{db: db, prefix: []byte(table + "/")}
}

func (r *badgerPostRepository) key(id int64) []byte {
	return append(append([]byte{}, r.prefix...), strconv.FormatInt(id, 10)...)
}

func (r *badgerPostRepository) List(ctx context.Context) ([]*model.Post, error) {
	res := []*model.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = r.prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var post model.Post
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &post)
			}); err != nil {
				return err
			}
			res = append(res, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *badgerPostRepository) Get(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(r.key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &post)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *badgerPostRepository) Put(ctx context.Context, post *model.Post) error {
	val, err := json.Marshal(post)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(r.key(post.ID), val)
	})
}

func (r *badgerPostRepository) Update(ctx context.Context, id int64, edit, title, content string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(r.key(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var post model.Post
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &post)
		}); err != nil {
			return err
		}
		post.Edit, post.Title, post.Content = edit, title, content
		val, err := json.Marshal(&post)
		if err != nil {
			return err
		}
		return txn.Set(r.key(id), val)
	})
}

func (r *badgerPostRepository) Delete(ctx context.Context, id int64) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(r.key(id))
	})
}
