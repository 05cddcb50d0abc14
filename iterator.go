package catchapi

import (
	"context"
	"iter"

	"github.com/catchnotes/catchapi.go/pkg/constants"
)

// NoteIterator walks every note of an account with the offset/limit
// protocol. It makes a single pass; create a new one to rescan.
//
//	it := user.Notes()
//	for it.Next(ctx) {
//		fmt.Println(it.Note().Text)
//	}
//	if err := it.Err(); err != nil {
//		return err
//	}
type NoteIterator struct {
	user     *User
	pageSize int
	offset   int
	// total is -1 until the first page reports a count.
	total int

	buf   []*Note
	cur   *Note
	err   error
	empty bool
}

// Notes returns an iterator over all notes, fetched 100 at a time.
func (u *User) Notes() *NoteIterator {
	return u.NotesWithPageSize(constants.IteratorPageSize)
}

// NotesWithPageSize returns an iterator fetching size notes per request.
func (u *User) NotesWithPageSize(size int) *NoteIterator {
	if size <= 0 {
		size = constants.IteratorPageSize
	}
	return &NoteIterator{user: u, pageSize: size, total: -1}
}

// Next advances to the next note, fetching a page when the buffer is empty.
// It returns false when the notes are exhausted or a request failed.
func (it *NoteIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	for len(it.buf) == 0 {
		if it.exhausted() {
			it.cur = nil
			return false
		}
		if err := it.nextBatch(ctx); err != nil {
			it.err = err
			it.cur = nil
			return false
		}
	}
	it.cur = it.buf[0]
	it.buf = it.buf[1:]
	return true
}

// Note returns the note Next advanced to.
func (it *NoteIterator) Note() *Note {
	return it.cur
}

// Err returns the error that stopped the iteration, if any.
func (it *NoteIterator) Err() error {
	return it.err
}

// Total returns the note count reported by the server, or -1 before the
// first page.
func (it *NoteIterator) Total() int {
	return it.total
}

// All returns the remaining notes as a sequence. A failure is yielded once
// as the last element.
func (it *NoteIterator) All(ctx context.Context) iter.Seq2[*Note, error] {
	return func(yield func(*Note, error) bool) {
		for it.Next(ctx) {
			if !yield(it.Note(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func (it *NoteIterator) exhausted() bool {
	return it.empty || (it.total >= 0 && it.offset >= it.total)
}

func (it *NoteIterator) nextBatch(ctx context.Context) error {
	limit := it.pageSize
	if it.total >= 0 {
		limit = min(it.total-it.offset, it.pageSize)
	}

	p, err := it.user.fetchPage(ctx, it.offset, limit)
	if err != nil {
		return err
	}

	if p.count != nil {
		it.total = *p.count
	}
	it.offset += it.pageSize
	if p.received == 0 {
		it.empty = true
	}
	it.buf = p.notes
	return nil
}
