package submission

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vrroom/booking-bff/internal/domain/booking"
	"github.com/vrroom/booking-bff/internal/domain/pricing"
	"github.com/vrroom/booking-bff/internal/pkg/backend"
	"github.com/vrroom/booking-bff/internal/pkg/tokenstore"
)

// ErrSubmissionInProgress is returned when a session is already being submitted.
var ErrSubmissionInProgress = booking.ErrSubmissionInProgress

const (
	messageSuccess = "Your booking has been confirmed"
	messageFailed  = "Booking failed. Please try again."
	messageLogin   = "Your session has expired. Please log in again."
)

// Status is the kind of outcome of a submission.
type Status string

const (
	StatusSuccess      Status = "success"
	StatusValidation   Status = "validation"
	StatusFailed       Status = "failed"
	StatusUnauthorized Status = "unauthorized"
)

// Level of a user notification.
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notification is the message shown to the user after a submission.
type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Outcome is the semantic result of a submission.
type Outcome struct {
	Status       Status           `json:"status"`
	Notification Notification     `json:"notification"`
	Redirect     string           `json:"redirect,omitempty"`
	External     bool             `json:"external"`
	Missing      []string         `json:"missing,omitempty"`
	Booking      *backend.Booking `json:"booking,omitempty"`
	Session      *booking.Session `json:"-"`
}

// SessionGuard brackets a submission on the session store.
type SessionGuard interface {
	BeginSubmit(ctx context.Context, id string) (*booking.Session, error)
	CompleteSubmit(ctx context.Context, id string) (*booking.Session, error)
	AbortSubmit(ctx context.Context, id string) (*booking.Session, error)
	Config() pricing.Config
}

// BookingCreator places bookings on the backend.
type BookingCreator interface {
	CreateBooking(ctx context.Context, req backend.CreateBookingRequest) (*backend.CreateBookingResponse, error)
}

// Paths are the in-app destinations after a submission.
type Paths struct {
	Calendar   string
	MyBookings string
	Login      string
}

// Adapter submits booking sessions to the backend.
type Adapter struct {
	sessions SessionGuard
	bookings BookingCreator
	tokens   tokenstore.Store
	paths    Paths
}

// NewAdapter creates a submission adapter.
func NewAdapter(sessions SessionGuard, bookings BookingCreator, tokens tokenstore.Store, paths Paths) *Adapter {
	return &Adapter{sessions: sessions, bookings: bookings, tokens: tokens, paths: paths}
}

// releaseTimeout bounds the store writes that settle a submission. They run
// on a context detached from the caller so a cancelled request still
// releases the guard.
const releaseTimeout = 5 * time.Second

// Submit sends the session to the backend. The returned error is set only
// when the submission could not start (unknown session, submission already
// in flight); every other result is reported through the Outcome.
func (a *Adapter) Submit(ctx context.Context, sessionID string) (*Outcome, error) {
	session, err := a.sessions.BeginSubmit(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	settled := false
	defer func() {
		if settled {
			return
		}
		if _, err := a.settle(ctx, sessionID, a.sessions.AbortSubmit); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to release submission guard")
		}
	}()

	req, err := BuildRequest(session, a.sessions.Config())
	if err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		settled = true
		kept, abortErr := a.settle(ctx, sessionID, a.sessions.AbortSubmit)
		if abortErr != nil {
			return nil, abortErr
		}
		return &Outcome{
			Status:       StatusValidation,
			Notification: Notification{Level: LevelError, Message: "Please complete: " + strings.Join(verr.Missing, ", ")},
			Missing:      verr.Missing,
			Session:      kept,
		}, nil
	}

	resp, err := a.bookings.CreateBooking(ctx, req)
	if err != nil {
		settled = true
		return a.failed(ctx, sessionID, err)
	}

	settled = true
	reset, err := a.settle(ctx, sessionID, a.sessions.CompleteSubmit)
	if err != nil {
		// The booking exists; only the local reset failed.
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to reset session after booking")
	}

	out := &Outcome{
		Status:       StatusSuccess,
		Notification: Notification{Level: LevelSuccess, Message: messageSuccess},
		Booking:      &resp.Booking,
		Session:      reset,
	}
	switch {
	case resp.PaymentURL != "":
		out.Redirect, out.External = resp.PaymentURL, true
	case session.Embedded:
		out.Redirect = a.paths.Calendar
	default:
		out.Redirect = a.paths.MyBookings
	}

	log.Info().
		Str("session_id", sessionID).
		Str("booking_id", resp.Booking.ID).
		Int64("total", req.TotalPrice).
		Bool("external_payment", out.External).
		Msg("Booking submitted")
	return out, nil
}

func (a *Adapter) failed(ctx context.Context, sessionID string, err error) (*Outcome, error) {
	kept, abortErr := a.settle(ctx, sessionID, a.sessions.AbortSubmit)
	if abortErr != nil {
		return nil, abortErr
	}

	if errors.Is(err, backend.ErrUnauthorized) {
		invCtx, cancel := detached(ctx)
		defer cancel()
		if invErr := a.tokens.Invalidate(invCtx, sessionID); invErr != nil {
			log.Warn().Err(invErr).Str("session_id", sessionID).Msg("Failed to invalidate token")
		}
		log.Info().Str("session_id", sessionID).Msg("Submission rejected as unauthorized")
		return &Outcome{
			Status:       StatusUnauthorized,
			Notification: Notification{Level: LevelError, Message: messageLogin},
			Redirect:     a.paths.Login,
			Session:      kept,
		}, nil
	}

	message := backend.MessageOf(err)
	if message == "" {
		message = messageFailed
	}
	log.Warn().Err(err).Str("session_id", sessionID).Msg("Booking submission failed")
	return &Outcome{
		Status:       StatusFailed,
		Notification: Notification{Level: LevelError, Message: message},
		Session:      kept,
	}, nil
}

// settle runs a guard transition on a context that outlives the request.
func (a *Adapter) settle(ctx context.Context, sessionID string, fn func(context.Context, string) (*booking.Session, error)) (*booking.Session, error) {
	sctx, cancel := detached(ctx)
	defer cancel()
	return fn(sctx, sessionID)
}

func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
}
