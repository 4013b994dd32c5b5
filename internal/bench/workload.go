package bench

import (
	"fmt"
	"math/rand"
)

var categories = []string{"books", "games", "garden", "kitchen", "music", "tools"}

// Product is one entry of the synthetic dataset.
type Product struct {
	ID       int
	Name     string
	Category string
	Price    float64
	InStock  bool
}

// GenerateProducts returns n products. The same seed always yields the same
// products.
func GenerateProducts(n int, seed int64) []Product {
	r := rand.New(rand.NewSource(seed))
	products := make([]Product, n)
	for i := range products {
		c := categories[r.Intn(len(categories))]
		products[i] = Product{
			ID:       i,
			Name:     fmt.Sprintf("%s item %03d", c, i),
			Category: c,
			Price:    5 + r.Float64()*495,
			InStock:  r.Intn(4) != 0,
		}
	}
	return products
}

// Query filters products. Zero fields match everything.
type Query struct {
	Category    string
	MaxPrice    float64
	InStockOnly bool
}

// DefaultQuery keeps most of the dataset, so rendering dominates the cost.
var DefaultQuery = Query{MaxPrice: 450}

func (q Query) match(p Product) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.MaxPrice > 0 && p.Price > q.MaxPrice {
		return false
	}
	return !q.InStockOnly || p.InStock
}

// Item is the rendered form of a product.
type Item struct {
	ProductID int
	Label     string
	Checksum  uint64
}

// Spin burns a fixed amount of CPU and returns a value depending on every
// iteration, so the loop cannot be optimized away.
func Spin(iterations int) uint64 {
	x := uint64(iterations) | 1
	for i := 0; i < iterations; i++ {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
	}
	return x
}
