package pagination

import (
	"context"
	"fmt"
	"iter"
	"path"

	"github.com/Sternrassler/idalon-client/pkg/logging"
	"github.com/rs/zerolog"
)

// state is the paginator's position in its Idle -> Fetching -> Idle|Exhausted cycle.
type state int

const (
	stateIdle state = iota
	stateFetching
	stateExhausted
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateFetching:
		return "fetching"
	case stateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Paginator lazily walks the pages of a resource collection.
//
// A Paginator belongs to a single consumer; it is not safe for concurrent use.
// The pages it yields are independent values and may be handed to other goroutines.
type Paginator[T Model[F], F any, PF Paginable[F]] struct {
	transport Transport
	filters   F
	state     state
	err       error
	resource  string
	logger    zerolog.Logger
}

// Paginate returns a paginator starting at the page encoded in filters.
// filters is copied; the caller's value is never modified.
func Paginate[T Model[F], F any, PF Paginable[F]](transport Transport, filters F) *Paginator[T, F, PF] {
	return NewPaginator[T, F, PF](transport, filters)
}

// NewPaginator creates a paginator in the idle state.
func NewPaginator[T Model[F], F any, PF Paginable[F]](transport Transport, filters F) *Paginator[T, F, PF] {
	var model T
	resource := path.Base(model.ResourceURL().Path)

	return &Paginator[T, F, PF]{
		transport: transport,
		filters:   filters,
		state:     stateIdle,
		resource:  resource,
		logger:    logging.NewLogger(logging.ComponentPaginator).With().Str("resource", resource).Logger(),
	}
}

// Next fetches the next page.
// It returns false once the sequence has ended: after an empty page, after a failed request,
// or on the call following the page that reached the reported total. No request is issued
// once the sequence has ended.
func (p *Paginator[T, F, PF]) Next(ctx context.Context) (*Collection[T], bool) {
	if p.state == stateExhausted {
		return nil, false
	}

	// The request works on a copy; the stored cursor only moves after a successful response.
	p.state = stateFetching
	request := p.filters
	requested := PF(&request).Page()

	// A non-positive page size never moves the cursor.
	if size := PF(&request).PageSize(); size <= 0 {
		var model T
		p.fail(failed(&RequestError{
			Kind: ErrorKindFetch,
			URL:  model.ResourceURL().String(),
			Err:  fmt.Errorf("%w: page size %d", ErrInvalidFilters, size),
		}), requested)
		return nil, false
	}

	page, err := FindMany[T](ctx, p.transport, request)
	if err != nil {
		p.fail(err, requested)
		return nil, false
	}

	cursor := PF(&p.filters)
	cursor.SetPage(cursor.Page() + 1)

	if len(page.Items) == 0 {
		p.finish("empty")
		p.logger.Debug().Int("page", requested).Msg("Empty page - pagination complete")
		return nil, false
	}

	// Items the server should have delivered up to the end of the previous page.
	polled := (cursor.Page() - 1) * cursor.PageSize()

	p.state = stateIdle
	if page.Total <= polled {
		p.finish("total")
	}

	pagesTotal.WithLabelValues(p.resource).Inc()
	p.logger.Debug().
		Int("page", requested).
		Int("items", len(page.Items)).
		Int("total", page.Total).
		Stringer("state", p.state).
		Msg("Page fetched")

	return page, true
}

// All returns an iterator over the remaining pages.
// Breaking out of the loop leaves the paginator where it stopped; a later call resumes there.
func (p *Paginator[T, F, PF]) All(ctx context.Context) iter.Seq[*Collection[T]] {
	return func(yield func(*Collection[T]) bool) {
		for {
			page, ok := p.Next(ctx)
			if !ok || !yield(page) {
				return
			}
		}
	}
}

// Err returns the error that ended the sequence, or nil if it ended because pages ran out.
func (p *Paginator[T, F, PF]) Err() error {
	return p.err
}

// Done reports whether the sequence has ended.
func (p *Paginator[T, F, PF]) Done() bool {
	return p.state == stateExhausted
}

// Filters returns a copy of the stored filters, i.e. the cursor of the next request.
func (p *Paginator[T, F, PF]) Filters() F {
	return p.filters
}

func (p *Paginator[T, F, PF]) fail(err error, page int) {
	from := p.state
	p.err = err
	p.finish("error")
	p.logger.Warn().
		Err(err).
		Int("page", page).
		Str("error_kind", string(KindOf(err))).
		Stringer("state", from).
		Msg("Page fetch failed - ending pagination")
}

func (p *Paginator[T, F, PF]) finish(reason string) {
	p.state = stateExhausted
	paginationEndTotal.WithLabelValues(p.resource, reason).Inc()
}
