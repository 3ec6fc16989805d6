package wizard

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/vrroom/booking-bff/internal/domain/booking"
	"github.com/vrroom/booking-bff/internal/domain/submission"
	"github.com/vrroom/booking-bff/internal/pkg/response"
	"github.com/vrroom/booking-bff/internal/pkg/validator"
)

// Snapshotter renders a session with its totals.
type Snapshotter interface {
	Snapshot(session *booking.Session) *booking.SessionResponse
}

// Handler exposes the flow under a session route.
type Handler struct {
	flow     *Flow
	snapshot Snapshotter
}

// NewHandler creates a flow handler.
func NewHandler(flow *Flow, snapshot Snapshotter) *Handler {
	return &Handler{flow: flow, snapshot: snapshot}
}

// Resolve handles GET /sessions/{id}/flow?<deep link>
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	session, err := h.flow.Resolve(r.Context(), chi.URLParam(r, "id"), r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, h.render(session, r.URL.Query(), nil))
}

// Action handles POST /sessions/{id}/flow/{action}. The request's query
// string is the client's current URL; parameters not owned by the flow are
// carried into the returned query.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	var (
		session *booking.Session
		err     error
	)
	switch chi.URLParam(r, "action") {
	case "select-slot":
		var req SelectSlotRequest
		if !validator.DecodeAndValidate(w, r, &req) {
			return
		}
		session, err = h.flow.SelectSlot(ctx, id, req.Date, req.Time, req.Rooms)
	case "choose-game":
		var req ChooseGameRequest
		if !validator.DecodeAndValidate(w, r, &req) {
			return
		}
		session, err = h.flow.ChooseGame(ctx, id, req.GameID)
	case "continue":
		session, err = h.flow.Continue(ctx, id)
	case "back":
		session, err = h.flow.Back(ctx, id)
	case "clear-game":
		session, err = h.flow.ClearGame(ctx, id)
	case "submit":
		h.submit(w, r, id)
		return
	default:
		response.NotFound(w, "Unknown flow action")
		return
	}

	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, h.render(session, r.URL.Query(), nil))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, id string) {
	outcome, err := h.flow.Submit(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	session := outcome.Session
	if session == nil {
		if session, err = h.flow.sessions.Get(r.Context(), id); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	response.OK(w, h.render(session, r.URL.Query(), outcome))
}

func (h *Handler) render(session *booking.Session, current url.Values, outcome *submission.Outcome) FlowResponse {
	return FlowResponse{
		Step:    session.Step,
		Query:   StateFromSession(session, current).Query().Encode(),
		Session: h.snapshot.Snapshot(session),
		Outcome: outcome,
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrStepIncomplete):
		response.Error(w, http.StatusUnprocessableEntity, "STEP_INCOMPLETE", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, err.Error())
	default:
		booking.WriteError(w, r, err)
	}
}

