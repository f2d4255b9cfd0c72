package cart

import (
	"context"
	"sync"
)

// 状態変更の通知先。変更が適用された直後に同期で呼ばれる。
type Observer func(State)

// Store はカート状態の唯一の変更窓口。
// DIで明示的に生成し、sessionIDをキーに毎回Storageへ書き出す。
// 1つの変更が完了するまで次の変更は観測されない（mutexで直列化）。
type Store struct {
	mu        sync.Mutex
	sessionID string
	storage   Storage
	state     State
	observers []Observer
}

// DI
func NewStore(sessionID string, storage Storage) *Store {
	return &Store{
		sessionID: sessionID,
		storage:   storage,
	}
}

// 変更通知の購読を登録（例：ヘッダのバッジ表示）
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers = append(s.observers, fn)
}

// Storageから状態を復元。保存が無ければ空のまま。
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, found, err := s.storage.Load(ctx, s.sessionID)
	if err != nil {
		return err
	}
	if !found {
		s.state = State{}
		return nil
	}

	s.state = st
	return nil
}

// カートに追加。同一商品は数量を+1、無ければ数量1で末尾に足す。
// 在庫チェックはしない（表示側の責務）。
func (s *Store) Add(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.state.Items {
		if s.state.Items[i].ProductID == p.ID {
			s.state.Items[i].Quantity++
			found = true
			break
		}
	}

	if !found {
		s.state.Items = append(s.state.Items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Price:     p.Price,
			Quantity:  1,
		})
	}

	return s.persistAndNotify(ctx)
}

// 明細を削除。無ければ何もしない（エラーにしない）。
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.removeLocked(productID) {
		return nil
	}

	return s.persistAndNotify(ctx)
}

// 数量をそのまま設定（加算ではない）。
// 0以下はRemoveと同じ扱い。未知のIDは何もしない。
func (s *Store) UpdateQuantity(ctx context.Context, productID string, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		if !s.removeLocked(productID) {
			return nil
		}
		return s.persistAndNotify(ctx)
	}

	for i := range s.state.Items {
		if s.state.Items[i].ProductID == productID {
			s.state.Items[i].Quantity = qty
			return s.persistAndNotify(ctx)
		}
	}

	return nil
}

// 無条件に空にする
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	return s.persistAndNotify(ctx)
}

// 現在の状態のコピー
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.clone()
}

func (s *Store) Items() []Item {
	return s.State().Items
}

func (s *Store) TotalItems() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.TotalItems()
}

func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.TotalPrice()
}

// 呼び出し側がmuを保持していること
func (s *Store) removeLocked(productID string) bool {
	for i := range s.state.Items {
		if s.state.Items[i].ProductID == productID {
			s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
			return true
		}
	}
	return false
}

// 変更適用後の保存と通知。
// 保存に失敗してもメモリ上の状態はそのまま（エラーは呼び出し側へ返す）。
func (s *Store) persistAndNotify(ctx context.Context) error {
	saveErr := s.storage.Save(ctx, s.sessionID, s.state)

	snapshot := s.state.clone()
	for _, fn := range s.observers {
		fn(snapshot)
	}

	return saveErr
}
