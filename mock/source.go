package mock

import (
	"context"

	"github.com/fwojciec/wpmirror"
)

var _ wpmirror.Source = (*Source)(nil)

// Source is a mock implementation of wpmirror.Source.
type Source struct {
	VerifyFn    func(ctx context.Context) error
	FetchPageFn func(ctx context.Context, kind wpmirror.Kind, opts wpmirror.FetchOptions) (*wpmirror.RemotePage, error)
}

func (s *Source) Verify(ctx context.Context) error {
	return s.VerifyFn(ctx)
}

func (s *Source) FetchPage(ctx context.Context, kind wpmirror.Kind, opts wpmirror.FetchOptions) (*wpmirror.RemotePage, error) {
	return s.FetchPageFn(ctx, kind, opts)
}
