package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/bgdnvk/hrassist/internal/agent/model"
)

const keyPrefix = "conv:"

// BadgerConfig selects where conversations are kept on disk.
type BadgerConfig struct {
	Path     string
	InMemory bool
	TTL      time.Duration
	Logger   *slog.Logger
}

// Badger is a Store backed by an embedded Badger database, so conversations
// survive a restart. Entries carry a Badger TTL and are also checked against
// LastUpdated on read.
type Badger struct {
	db  *badger.DB
	ttl time.Duration
	now func() time.Time
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent session store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create session directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &Badger{db: db, ttl: cfg.TTL, now: time.Now}, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

func (b *Badger) Get(_ context.Context, userID string) (model.Conversation, bool, error) {
	var conv model.Conversation
	found := false
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		conv, found, err = b.read(txn, userID)
		return err
	})
	if err != nil {
		return model.Conversation{}, false, fmt.Errorf("read conversation %s: %w", userID, err)
	}
	return conv, found, nil
}

func (b *Badger) Update(_ context.Context, userID string, patch Patch) (model.Conversation, error) {
	var conv model.Conversation
	err := b.db.Update(func(txn *badger.Txn) error {
		current, found, err := b.read(txn, userID)
		if err != nil {
			return err
		}
		if !found {
			current = model.Conversation{UserID: userID}
		}
		conv = Apply(current, patch, b.now())

		data, err := json.Marshal(conv)
		if err != nil {
			return err
		}
		entry := badger.NewEntry([]byte(keyPrefix+userID), data)
		if b.ttl > 0 {
			entry = entry.WithTTL(b.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return model.Conversation{}, fmt.Errorf("update conversation %s: %w", userID, err)
	}
	return conv, nil
}

func (b *Badger) Reset(_ context.Context, userID string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + userID))
	})
	if err != nil {
		return fmt.Errorf("reset conversation %s: %w", userID, err)
	}
	return nil
}

func (b *Badger) read(txn *badger.Txn, userID string) (model.Conversation, bool, error) {
	item, err := txn.Get([]byte(keyPrefix + userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return model.Conversation{}, false, nil
	}
	if err != nil {
		return model.Conversation{}, false, err
	}

	var conv model.Conversation
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &conv)
	}); err != nil {
		return model.Conversation{}, false, err
	}
	if expired(conv, b.ttl, b.now()) {
		return model.Conversation{}, false, nil
	}
	if conv.History == nil {
		conv.History = []model.HistoryEntry{}
	}
	return conv, true, nil
}
