package schedule

import (
	"container/heap"

	"github.com/phrazzld/mdquiz/internal/domain"
)

// Queue is a minimum-priority queue of cards under an Ordering. The queue
// owns the working set of card values for the duration of one run; a
// reviewed card's successor is pushed back while the original is discarded.
//
// Queue is not safe for concurrent use; the review loop is single-threaded.
type Queue struct {
	inner cardHeap
}

// NewQueue creates an empty queue ordered by ord.
func NewQueue(ord *Ordering) *Queue {
	return &Queue{
		inner: cardHeap{ordering: ord},
	}
}

// Len returns the number of queued cards.
func (q *Queue) Len() int {
	return len(q.inner.cards)
}

// Push inserts a card in O(log n).
func (q *Queue) Push(card *domain.Card) {
	heap.Push(&q.inner, card)
}

// PopMin removes and returns the lowest-ordered card. The second return is
// false when the queue is empty.
func (q *Queue) PopMin() (*domain.Card, bool) {
	if len(q.inner.cards) == 0 {
		return nil, false
	}
	card := heap.Pop(&q.inner).(*domain.Card)
	return card, true
}

// cardHeap adapts the ordering to container/heap.
type cardHeap struct {
	ordering *Ordering
	cards    []*domain.Card
}

func (h *cardHeap) Len() int { return len(h.cards) }

func (h *cardHeap) Less(i, j int) bool {
	return h.ordering.Less(h.cards[i], h.cards[j])
}

func (h *cardHeap) Swap(i, j int) {
	h.cards[i], h.cards[j] = h.cards[j], h.cards[i]
}

func (h *cardHeap) Push(x any) {
	h.cards = append(h.cards, x.(*domain.Card))
}

func (h *cardHeap) Pop() any {
	last := len(h.cards) - 1
	card := h.cards[last]
	h.cards[last] = nil
	h.cards = h.cards[:last]
	return card
}
