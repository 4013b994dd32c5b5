package bench

import (
	"fmt"
	"time"

	"github.com/m-lab/rendersim/pkg/bench1/model"
	"github.com/m-lab/rendersim/pkg/bench1/spec"
)

type cachedItem struct {
	product Product
	item    Item
}

// Renderer renders the filtered product list under one optimization
// strategy. Its caches live as long as the Renderer, so a new Renderer is a
// cold mount.
type Renderer struct {
	strategy model.Strategy

	// memo-list state: the inputs of the last filter and its output.
	lastProducts []Product
	lastQuery    Query
	filtered     []Product
	hasList      bool

	// memo-items state, by product ID.
	items map[int]cachedItem

	// FilterCalls counts the products tested against a query.
	FilterCalls int
	// ItemRenders counts the items actually rendered.
	ItemRenders int
}

// NewRenderer returns a cold Renderer for strategy s.
func NewRenderer(s model.Strategy) *Renderer {
	return &Renderer{
		strategy: s,
		items:    map[int]cachedItem{},
	}
}

func (r *Renderer) memoList() bool {
	return r.strategy == model.StrategyMemoList || r.strategy == model.StrategyMemoBoth
}

func (r *Renderer) memoItems() bool {
	return r.strategy == model.StrategyMemoItems || r.strategy == model.StrategyMemoBoth
}

// Render runs one render pass over products.
func (r *Renderer) Render(products []Product, q Query) []Item {
	list := r.filter(products, q)
	out := make([]Item, 0, len(list))
	for _, p := range list {
		if r.memoItems() {
			if c, ok := r.items[p.ID]; ok && c.product == p {
				out = append(out, c.item)
				continue
			}
		}
		it := r.renderItem(p)
		if r.memoItems() {
			r.items[p.ID] = cachedItem{product: p, item: it}
		}
		out = append(out, it)
	}
	return out
}

func (r *Renderer) filter(products []Product, q Query) []Product {
	if r.memoList() && r.hasList && q == r.lastQuery && sameSlice(products, r.lastProducts) {
		return r.filtered
	}
	var list []Product
	for _, p := range products {
		r.FilterCalls++
		Spin(spec.FilterCostIterations)
		if q.match(p) {
			list = append(list, p)
		}
	}
	if r.memoList() {
		r.lastProducts, r.lastQuery, r.filtered, r.hasList = products, q, list, true
	}
	return list
}

func (r *Renderer) renderItem(p Product) Item {
	r.ItemRenders++
	return Item{
		ProductID: p.ID,
		Label:     fmt.Sprintf("%s $%.2f", p.Name, p.Price),
		Checksum:  Spin(spec.ItemCostIterations),
	}
}

// sameSlice reports whether a and b are the same slice, not just equal ones.
func sameSlice(a, b []Product) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// Mount renders products with a cold Renderer for passes render passes and
// returns the wall-clock time from mount to commit.
func Mount(s model.Strategy, products []Product, q Query, passes int) time.Duration {
	start := time.Now()
	r := NewRenderer(s)
	for i := 0; i < passes; i++ {
		r.Render(products, q)
	}
	return time.Since(start)
}
