package register_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ghufronakbar/hasmart-pos/internal/backend"
	"github.com/ghufronakbar/hasmart-pos/internal/common"
	"github.com/ghufronakbar/hasmart-pos/internal/document"
	"github.com/ghufronakbar/hasmart-pos/internal/register"
)

type stubBackend struct {
	mu      sync.Mutex
	creates int
	updates int
	deletes int
	nextID  int64
	err     error
	block   chan struct{}
	entered chan struct{}
	members map[string]backend.Member
}

func (s *stubBackend) CreateDocument(ctx context.Context, kind document.Kind, payload document.Payload) (int64, error) {
	if s.block != nil {
		s.entered <- struct{}{}
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	return s.nextID, nil
}

func (s *stubBackend) UpdateDocument(ctx context.Context, kind document.Kind, id int64, payload document.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	return s.err
}

func (s *stubBackend) DeleteDocument(ctx context.Context, kind document.Kind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	return s.err
}

func (s *stubBackend) MemberByCode(ctx context.Context, code string) (backend.Member, error) {
	member, ok := s.members[code]
	if !ok {
		return backend.Member{}, backend.ErrMemberNotFound
	}
	return member, nil
}

func fillDoc(doc *document.Document) {
	doc.Header.CounterpartyCode = "MBR-0042"
	doc.Header.Branch = "JKT-01"
	doc.Lines = append(doc.Lines, document.LineView{
		Line: document.Line{ItemID: 10, VariantID: 1, Qty: 2, UnitPrice: decimal.NewFromInt(3000)},
	})
}

func TestSubmitCreatesDocument(t *testing.T) {
	stub := &stubBackend{}
	session := register.NewSession(document.KindSale, stub, stub, zerolog.Nop())
	fillDoc(session.Doc)

	id, err := session.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	require.Equal(t, 1, stub.creates)
}

func TestSubmitBlockedByValidation(t *testing.T) {
	stub := &stubBackend{}
	session := register.NewSession(document.KindSale, stub, stub, zerolog.Nop())

	_, err := session.Submit(context.Background())
	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)
	require.Zero(t, stub.creates, "invalid documents never reach the backend")
}

func TestSubmitRequiresVerifiedMember(t *testing.T) {
	stub := &stubBackend{members: map[string]backend.Member{"MBR-0042": {ID: 7, Code: "MBR-0042", Name: "Budi"}}}
	session := register.NewSession(document.KindSell, stub, stub, zerolog.Nop())
	fillDoc(session.Doc)

	_, err := session.Submit(context.Background())
	require.ErrorIs(t, err, register.ErrMemberRequired)

	require.NoError(t, session.VerifyMember(context.Background(), "MBR-0042"))
	require.Equal(t, "MBR-0042", session.Doc.Header.CounterpartyCode)

	_, err = session.Submit(context.Background())
	require.NoError(t, err)
}

func TestVerifyMemberNotFoundLeavesSessionUnchanged(t *testing.T) {
	stub := &stubBackend{members: map[string]backend.Member{}}
	session := register.NewSession(document.KindSell, stub, stub, zerolog.Nop())

	err := session.VerifyMember(context.Background(), "nobody")
	require.ErrorIs(t, err, backend.ErrMemberNotFound)
	require.Nil(t, session.Member())
}

func TestConfirmCash(t *testing.T) {
	stub := &stubBackend{}
	session := register.NewSession(document.KindSale, stub, stub, zerolog.Nop())
	fillDoc(session.Doc) // grand total 6,000

	_, err := session.ConfirmCash(decimal.NewFromInt(5000))
	require.ErrorIs(t, err, register.ErrInsufficientCash)

	change, err := session.ConfirmCash(decimal.NewFromInt(10000))
	require.NoError(t, err)
	require.True(t, change.Equal(decimal.NewFromInt(4000)))
}

func TestDuplicateSubmitRejectedWhileInFlight(t *testing.T) {
	stub := &stubBackend{block: make(chan struct{}), entered: make(chan struct{})}
	session := register.NewSession(document.KindSale, stub, stub, zerolog.Nop())
	fillDoc(session.Doc)

	done := make(chan error, 1)
	go func() {
		_, err := session.Submit(context.Background())
		done <- err
	}()
	<-stub.entered

	_, second := session.Submit(context.Background())
	require.ErrorIs(t, second, register.ErrSubmissionInFlight)

	close(stub.block)
	require.NoError(t, <-done)
}

func TestLateCompletionAfterCloseIsNoop(t *testing.T) {
	stub := &stubBackend{block: make(chan struct{}), entered: make(chan struct{})}
	session := register.NewSession(document.KindSale, stub, stub, zerolog.Nop())
	fillDoc(session.Doc)

	done := make(chan error, 1)
	go func() {
		_, err := session.Submit(context.Background())
		done <- err
	}()
	<-stub.entered

	session.Close()
	close(stub.block)
	require.ErrorIs(t, <-done, register.ErrSessionClosed)

	_, err := session.Submit(context.Background())
	require.ErrorIs(t, err, register.ErrSessionClosed)
}

func TestEditModeUpdatesInsteadOfCreates(t *testing.T) {
	stub := &stubBackend{}
	session := register.NewSession(document.KindPurchaseReturn, stub, stub, zerolog.Nop())
	fillDoc(session.Doc)
	session.Doc.EditMode = true
	session.DocumentID = 77

	id, err := session.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(77), id)
	require.Equal(t, 1, stub.updates)
	require.Zero(t, stub.creates)
}

func TestDiscardDeletesDocument(t *testing.T) {
	stub := &stubBackend{}
	session := register.NewSession(document.KindSale, stub, stub, zerolog.Nop())

	require.NoError(t, session.Discard(context.Background(), 9))
	require.Equal(t, 1, stub.deletes)
}

func TestFailedSubmitPreservesBuffer(t *testing.T) {
	stub := &stubBackend{err: common.NewAppError(common.CodeBackend, "boom", nil)}
	session := register.NewSession(document.KindSale, stub, stub, zerolog.Nop())
	fillDoc(session.Doc)

	_, err := session.Submit(context.Background())
	require.Error(t, err)
	require.Len(t, session.Doc.Lines, 1, "edit buffer survives a failed submit for retry")

	stub.err = nil
	_, err = session.Submit(context.Background())
	require.NoError(t, err)
}
