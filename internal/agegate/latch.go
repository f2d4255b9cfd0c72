package agegate

import (
	"context"
	"sync"
)

// 年齢確認フラグの保存媒体。カートと同じセッションスコープ（TTLは実装側）。
type FlagStore interface {
	Get(ctx context.Context, sessionID string) (bool, error)
	Set(ctx context.Context, sessionID string) error
}

// セッション単位の年齢確認ラッチ。初期値はfalse、Verifyで一度だけtrueになる。
// 「いいえ」は状態を変更しない（退出先の案内はハンドラの仕事）。
type Latch struct {
	flags FlagStore
}

// DI
func NewLatch(flags FlagStore) *Latch {
	return &Latch{flags: flags}
}

func (l *Latch) IsVerified(ctx context.Context, sessionID string) (bool, error) {
	return l.flags.Get(ctx, sessionID)
}

func (l *Latch) Verify(ctx context.Context, sessionID string) error {
	return l.flags.Set(ctx, sessionID)
}

// メモリ上のFlagStore実装。テストとローカル開発用。
type MemoryFlagStore struct {
	mu       sync.Mutex
	verified map[string]bool
}

func NewMemoryFlagStore() *MemoryFlagStore {
	return &MemoryFlagStore{verified: map[string]bool{}}
}

func (m *MemoryFlagStore) Get(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.verified[sessionID], nil
}

func (m *MemoryFlagStore) Set(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.verified[sessionID] = true
	return nil
}
