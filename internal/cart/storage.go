package cart

import "context"

// セッション単位でカート状態を保存する媒体。
// リロードをまたいで生き、セッション終了で消える（TTLは実装側の責務）。
type Storage interface {
	//保存済み状態を取得。無ければ found=false（エラーではない）
	Load(ctx context.Context, sessionID string) (State, bool, error)

	//状態を丸ごと保存（毎回上書き）
	Save(ctx context.Context, sessionID string, state State) error

	//保存済み状態を破棄
	Delete(ctx context.Context, sessionID string) error
}
