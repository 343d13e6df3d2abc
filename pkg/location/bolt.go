package location

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/vango-dev/vldom/internal/errors"
)

const (
	bucketHistory = "history"
	bucketMeta    = "meta"
	keyCursor     = "cursor"
)

// Entry is one stored history entry.
type Entry struct {
	Seq     uint64
	Path    string
	Current bool
}

// Bolt is a history stack persisted in a bbolt file, so a restarted
// process resumes at the path it left. The current path is cached in
// memory; writes go through to the file.
type Bolt struct {
	db    *bolt.DB
	watch watchers

	mu      sync.Mutex
	cursor  uint64
	current string
}

// OpenBolt opens or creates the history file at path.
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.New("E146").WithDetail(path).Wrap(err)
	}
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.New("E146").WithDetail(path).Wrap(err)
	}

	b := &Bolt{db: db, current: "/"}
	err = db.Update(func(tx *bolt.Tx) error {
		hist, err := tx.CreateBucketIfNotExists([]byte(bucketHistory))
		if err != nil {
			return err
		}
		meta, err := tx.CreateBucketIfNotExists([]byte(bucketMeta))
		if err != nil {
			return err
		}
		if v := meta.Get([]byte(keyCursor)); v != nil {
			b.cursor = unmarshalSeq(v)
			if p := hist.Get(v); p != nil {
				b.current = string(p)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.New("E146").WithDetail(path).Wrap(err)
	}
	return b, nil
}

// Close closes the file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Path returns the current entry, "/" for an empty history.
func (b *Bolt) Path() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// SetPath pushes path, discarding entries after the current one.
func (b *Bolt) SetPath(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cursor != 0 && b.current == path {
		return nil
	}

	var seq uint64
	err := b.db.Update(func(tx *bolt.Tx) error {
		hist := tx.Bucket([]byte(bucketHistory))
		c := hist.Cursor()
		var stale [][]byte
		for k, _ := c.Seek(marshalSeq(b.cursor + 1)); k != nil; k, _ = c.Next() {
			stale = append(stale, k)
		}
		for _, k := range stale {
			if err := hist.Delete(k); err != nil {
				return err
			}
		}

		var err error
		seq, err = hist.NextSequence()
		if err != nil {
			return err
		}
		if err := hist.Put(marshalSeq(seq), []byte(path)); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketMeta)).Put([]byte(keyCursor), marshalSeq(seq))
	})
	if err != nil {
		return errors.New("E146").Wrap(err)
	}
	b.cursor = seq
	b.current = path
	return nil
}

// ReplacePath overwrites the current entry, or pushes one into an empty
// history.
func (b *Bolt) ReplacePath(path string) error {
	b.mu.Lock()
	if b.cursor == 0 {
		b.mu.Unlock()
		return b.SetPath(path)
	}
	defer b.mu.Unlock()

	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketHistory)).Put(marshalSeq(b.cursor), []byte(path))
	})
	if err != nil {
		return errors.New("E146").Wrap(err)
	}
	b.current = path
	return nil
}

// Back moves to the previous entry.
func (b *Bolt) Back() (bool, error) {
	return b.move(false)
}

// Forward moves to the next entry.
func (b *Bolt) Forward() (bool, error) {
	return b.move(true)
}

func (b *Bolt) move(forward bool) (bool, error) {
	b.mu.Lock()
	var moved bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketHistory)).Cursor()
		k, _ := c.Seek(marshalSeq(b.cursor))
		if k == nil || unmarshalSeq(k) != b.cursor {
			return nil
		}
		var v []byte
		if forward {
			k, v = c.Next()
		} else {
			k, v = c.Prev()
		}
		if k == nil {
			return nil
		}
		if err := tx.Bucket([]byte(bucketMeta)).Put([]byte(keyCursor), k); err != nil {
			return err
		}
		b.cursor = unmarshalSeq(k)
		b.current = string(v)
		moved = true
		return nil
	})
	b.mu.Unlock()

	if err != nil {
		return false, errors.New("E146").Wrap(err)
	}
	if moved {
		b.watch.notify()
	}
	return moved, nil
}

// Entries returns every stored entry, oldest first.
func (b *Bolt) Entries() ([]Entry, error) {
	b.mu.Lock()
	cursor := b.cursor
	b.mu.Unlock()

	var entries []Entry
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketHistory)).ForEach(func(k, v []byte) error {
			seq := unmarshalSeq(k)
			entries = append(entries, Entry{Seq: seq, Path: string(v), Current: seq == cursor})
			return nil
		})
	})
	if err != nil {
		return nil, errors.New("E146").Wrap(err)
	}
	return entries, nil
}

// Clear removes every entry.
func (b *Bolt) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketHistory, bucketMeta} {
			if err := tx.DeleteBucket([]byte(name)); err != nil {
				return err
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.New("E146").Wrap(err)
	}
	b.cursor = 0
	b.current = "/"
	return nil
}

// Watch registers fn to run after Back or Forward moves.
func (b *Bolt) Watch(fn func()) {
	b.watch.add(fn)
}

func marshalSeq(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
