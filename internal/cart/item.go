package cart

// カートに入れる時点の商品スナップショット。
// 追加後にカタログ側で価格が変わっても、カート内の価格は変えない。
type Product struct {
	ID       string
	Name     string
	Category string
	Price    int64
}

// カートの明細1行。
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

// カートの全状態。ItemsはProductIDで一意。
// 合計は保存せず、常にItemsから再計算する。
type State struct {
	Items []Item `json:"items"`
}

// 数量の合計
func (s State) TotalItems() int64 {
	var n int64 = 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// 金額の合計（price × quantity）
func (s State) TotalPrice() int64 {
	var total int64 = 0
	for _, it := range s.Items {
		total += it.Price * it.Quantity
	}
	return total
}

// 明細のコピーを返す（呼び出し側に内部sliceを触らせない）
func (s State) clone() State {
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	return State{Items: items}
}
