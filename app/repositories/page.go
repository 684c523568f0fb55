package repositories

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"board/app/models"
)

// Page size limits. ConfigurePaging adjusts them at startup.
var (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ConfigurePaging sets the page size used when none is requested and the
// largest page size served. Non-positive values keep the current limits.
func ConfigurePaging(defaultSize, maxSize int) {
	if maxSize > 0 {
		MaxPageSize = maxSize
	}
	if defaultSize > 0 {
		DefaultPageSize = defaultSize
	}
	if DefaultPageSize > MaxPageSize {
		DefaultPageSize = MaxPageSize
	}
}

// sortColumns maps the sortable API field names to their column names.
var sortColumns = map[string]string{
	"id":        "id",
	"title":     "title",
	"author":    "author",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// Order is a single sort key.
type Order struct {
	Field string
	Desc  bool
}

// Column returns the storage column for the order field.
func (o Order) Column() string {
	return sortColumns[o.Field]
}

// DefaultSort orders newest posts first.
var DefaultSort = []Order{{Field: "createdAt", Desc: true}}

// ParseOrder builds an Order from an API field name and an ASC/DESC direction.
// An empty direction means descending.
func ParseOrder(field, direction string) (Order, error) {
	if _, ok := sortColumns[field]; !ok {
		return Order{}, fmt.Errorf("%w: unknown field %q", ErrInvalidSort, field)
	}
	switch strings.ToUpper(direction) {
	case "", "DESC":
		return Order{Field: field, Desc: true}, nil
	case "ASC":
		return Order{Field: field}, nil
	default:
		return Order{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidSort, direction)
	}
}

// PageRequest selects one page of an ordered collection. Page is 0-based.
type PageRequest struct {
	Page int
	Size int
	Sort []Order
}

// NewPageRequest clamps page and size into their valid ranges. Page is capped
// so that its offset fits in an int.
func NewPageRequest(page, size int, sort ...Order) PageRequest {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page > math.MaxInt/size {
		page = math.MaxInt / size
	}
	return PageRequest{Page: page, Size: size, Sort: sort}
}

// Offset is the number of elements before the requested page. It saturates
// at math.MaxInt instead of overflowing.
func (r PageRequest) Offset() int {
	if r.Page <= 0 || r.Size <= 0 {
		return 0
	}
	if r.Page > math.MaxInt/r.Size {
		return math.MaxInt
	}
	return r.Page * r.Size
}

// Orders returns the effective sort keys, always ending with id so that
// paging is stable.
func (r PageRequest) Orders() []Order {
	orders := r.Sort
	if len(orders) == 0 {
		orders = DefaultSort
	}
	out := make([]Order, 0, len(orders)+1)
	for _, o := range orders {
		out = append(out, o)
		if o.Field == "id" {
			return out
		}
	}
	return append(out, Order{Field: "id", Desc: orders[0].Desc})
}

// Page is one page of results together with the totals of the whole collection.
type Page[T any] struct {
	Content       []T
	TotalElements int64
	TotalPages    int
	Number        int
	Size          int
}

// NewPage builds a page for req out of content and the total element count.
func NewPage[T any](content []T, total int64, req PageRequest) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        req.Page,
		Size:          req.Size,
	}
}

// MatchesKeyword reports whether keyword occurs in the title or body of post,
// ignoring case.
func MatchesKeyword(post *models.Post, keyword string) bool {
	k := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(post.Title), k) ||
		strings.Contains(strings.ToLower(post.Body), k)
}

// PagePosts sorts posts in memory and cuts out the requested page.
// Stores without a query planner use it.
func PagePosts(posts []models.Post, req PageRequest) Page[models.Post] {
	SortPosts(posts, req.Orders())

	total := int64(len(posts))
	start := req.Offset()
	if start > len(posts) {
		start = len(posts)
	}
	end := start + max(req.Size, 0)
	if end > len(posts) {
		end = len(posts)
	}
	content := make([]models.Post, end-start)
	copy(content, posts[start:end])
	return NewPage(content, total, req)
}

// SortPosts sorts posts by orders.
func SortPosts(posts []models.Post, orders []Order) {
	sort.SliceStable(posts, func(i, j int) bool {
		for _, o := range orders {
			c := comparePosts(&posts[i], &posts[j], o.Field)
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func comparePosts(a, b *models.Post, field string) int {
	switch field {
	case "id":
		return compareInt64(a.ID, b.ID)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "author":
		return strings.Compare(a.Author, b.Author)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SortComments orders comments oldest first.
func SortComments(comments []models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if c := comments[i].CreatedAt.Compare(comments[j].CreatedAt); c != 0 {
			return c < 0
		}
		return comments[i].ID < comments[j].ID
	})
}
