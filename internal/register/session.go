package register

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ghufronakbar/hasmart-pos/internal/backend"
	"github.com/ghufronakbar/hasmart-pos/internal/document"
)

var (
	// ErrSubmissionInFlight rejects a duplicate submit while one is outstanding.
	ErrSubmissionInFlight = errors.New("register: submission already in flight")
	// ErrSessionClosed is returned once the edit buffer has been discarded.
	ErrSessionClosed = errors.New("register: session closed")
	// ErrMemberRequired blocks member-gated kinds until the counterparty is verified.
	ErrMemberRequired = errors.New("register: member not verified")
	// ErrInsufficientCash blocks payment when received cash is below the grand total.
	ErrInsufficientCash = errors.New("register: received cash below grand total")
)

// Submitter covers the document write operations of the backend client.
type Submitter interface {
	CreateDocument(ctx context.Context, kind document.Kind, payload document.Payload) (int64, error)
	UpdateDocument(ctx context.Context, kind document.Kind, id int64, payload document.Payload) error
	DeleteDocument(ctx context.Context, kind document.Kind, id int64) error
}

// MemberVerifier resolves counterparty codes.
type MemberVerifier interface {
	MemberByCode(ctx context.Context, code string) (backend.Member, error)
}

// Session owns one document edit buffer from open to submit or discard. Each
// session is independent; the backend is the sole point of consistency for
// persisted documents.
type Session struct {
	Doc     *document.Document
	Backend Submitter
	Members MemberVerifier
	Logger  zerolog.Logger

	// DocumentID is set for edit-mode sessions reopening an existing document.
	DocumentID int64

	member   *backend.Member
	inFlight atomic.Bool
	closed   atomic.Bool
}

// NewSession opens an edit buffer for a fresh document of the given kind.
func NewSession(kind document.Kind, submitter Submitter, members MemberVerifier, logger zerolog.Logger) *Session {
	return &Session{Doc: document.New(kind), Backend: submitter, Members: members, Logger: logger}
}

// Member returns the verified counterparty, if any.
func (s *Session) Member() *backend.Member {
	return s.member
}

// VerifyMember resolves the counterparty code and attaches it to the
// document header. Lookup failures leave the session unchanged.
func (s *Session) VerifyMember(ctx context.Context, code string) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	code = strings.TrimSpace(code)
	member, err := s.Members.MemberByCode(ctx, code)
	if err != nil {
		return err
	}
	if s.closed.Load() {
		// dialog closed while the lookup was outstanding; drop the result
		return ErrSessionClosed
	}
	s.member = &member
	s.Doc.Header.CounterpartyCode = member.Code
	return nil
}

// ConfirmCash enforces the payment precondition and returns the change due.
func (s *Session) ConfirmCash(received decimal.Decimal) (decimal.Decimal, error) {
	grand := s.Doc.Summary().GrandTotal
	if received.LessThan(grand) {
		return decimal.Zero, ErrInsufficientCash
	}
	return received.Sub(grand), nil
}

// Submit validates the document and sends it to the backend. Only one
// submission may be in flight per session; a completion arriving after Close
// is discarded. The edit buffer is preserved on failure so the user can
// retry without re-entering data.
func (s *Session) Submit(ctx context.Context) (int64, error) {
	if s.closed.Load() {
		return 0, ErrSessionClosed
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return 0, ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	if s.Doc.Kind.Config().RequiresMember && s.member == nil {
		return 0, ErrMemberRequired
	}
	if err := s.Doc.Validate(); err != nil {
		return 0, err
	}

	payload := s.Doc.Payload()
	var (
		id  int64
		err error
	)
	if s.Doc.EditMode && s.DocumentID > 0 {
		id = s.DocumentID
		err = s.Backend.UpdateDocument(ctx, s.Doc.Kind, s.DocumentID, payload)
	} else {
		id, err = s.Backend.CreateDocument(ctx, s.Doc.Kind, payload)
	}
	if err != nil {
		return 0, err
	}
	if s.closed.Load() {
		// late completion after dialog close; nothing left to update
		return id, ErrSessionClosed
	}
	s.Logger.Info().Str("kind", s.Doc.Kind.String()).Int64("document_id", id).Msg("document_submitted")
	return id, nil
}

// Discard deletes a previously created document through the cancellation flow.
func (s *Session) Discard(ctx context.Context, id int64) error {
	return s.Backend.DeleteDocument(ctx, s.Doc.Kind, id)
}

// Close discards the edit buffer. Any in-flight completion becomes a no-op.
func (s *Session) Close() {
	s.closed.Store(true)
}
