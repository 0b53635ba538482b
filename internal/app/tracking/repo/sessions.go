package repo

import (
	"context"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
)

// SpannerSession is a read-only snapshot used for the loads of one unit of
// work.
type SpannerSession struct {
	id     string
	txn    *spanner.ReadOnlyTransaction
	closed bool
}

func (s *SpannerSession) ID() string { return s.id }

func (s *SpannerSession) IsClosed() bool { return s.closed }

func (s *SpannerSession) Close() error {
	if !s.closed {
		s.txn.Close()
		s.closed = true
	}
	return nil
}

// SpannerSessions opens SpannerSessions over a client.
type SpannerSessions struct {
	client *spanner.Client
}

var _ contracts.SessionOpener = (*SpannerSessions)(nil)

func NewSpannerSessions(client *spanner.Client) *SpannerSessions {
	return &SpannerSessions{client: client}
}

func (s *SpannerSessions) OpenSession(_ context.Context) (contracts.Session, error) {
	return &SpannerSession{id: uuid.NewString(), txn: s.client.ReadOnlyTransaction()}, nil
}
