package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/tabsplit/internal/auth"
	"github.com/mmynk/tabsplit/internal/ledger"
	"github.com/mmynk/tabsplit/internal/middleware"
	"github.com/mmynk/tabsplit/internal/storage"
	"github.com/mmynk/tabsplit/pkg/api"
)

// BillService serves bill sessions over Connect.
type BillService struct {
	store      storage.Store
	jwtManager *auth.JWTManager
}

// NewBillService creates a new BillService with the given session store and token manager.
func NewBillService(store storage.Store, jwtManager *auth.JWTManager) *BillService {
	return &BillService{store: store, jwtManager: jwtManager}
}

// Handler returns the path prefix and HTTP handler serving every BillService procedure.
// CreateSession is open; every other procedure requires a session token.
func (s *BillService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	open := append([]connect.HandlerOption{
		connect.WithCodec(api.Codec{}),
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	}, opts...)
	authed := append([]connect.HandlerOption{
		connect.WithCodec(api.Codec{}),
		connect.WithInterceptors(middleware.LoggingInterceptor(), middleware.RequireSession(s.jwtManager)),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(api.CreateSessionProcedure, connect.NewUnaryHandler(api.CreateSessionProcedure, s.CreateSession, open...))
	mux.Handle(api.DeleteSessionProcedure, connect.NewUnaryHandler(api.DeleteSessionProcedure, s.DeleteSession, authed...))
	mux.Handle(api.RefreshSessionProcedure, connect.NewUnaryHandler(api.RefreshSessionProcedure, s.RefreshSession, authed...))

	commands := map[string]http.Handler{
		api.GetSnapshotProcedure: connect.NewUnaryHandler(api.GetSnapshotProcedure,
			command(s, func(l *ledger.Store, _ *api.GetSnapshotRequest) (ledger.Snapshot, error) {
				return l.Snapshot(), nil
			}), authed...),
		api.AddParticipantProcedure: connect.NewUnaryHandler(api.AddParticipantProcedure,
			command(s, func(l *ledger.Store, m *api.AddParticipantRequest) (ledger.Snapshot, error) {
				return l.AddParticipant(m.Name), nil
			}), authed...),
		api.RenameParticipantProcedure: connect.NewUnaryHandler(api.RenameParticipantProcedure,
			command(s, func(l *ledger.Store, m *api.RenameParticipantRequest) (ledger.Snapshot, error) {
				return l.RenameParticipant(m.ParticipantID, m.Name), nil
			}), authed...),
		api.RemoveParticipantProcedure: connect.NewUnaryHandler(api.RemoveParticipantProcedure,
			command(s, func(l *ledger.Store, m *api.RemoveParticipantRequest) (ledger.Snapshot, error) {
				return l.RemoveParticipant(m.ParticipantID), nil
			}), authed...),
		api.RemoveParticipantsProcedure: connect.NewUnaryHandler(api.RemoveParticipantsProcedure,
			command(s, func(l *ledger.Store, m *api.RemoveParticipantsRequest) (ledger.Snapshot, error) {
				return l.RemoveParticipants(m.ParticipantIDs), nil
			}), authed...),
		api.AddItemProcedure: connect.NewUnaryHandler(api.AddItemProcedure,
			command(s, func(l *ledger.Store, m *api.AddItemRequest) (ledger.Snapshot, error) {
				return l.AddItem(m.Name), nil
			}), authed...),
		api.RenameItemProcedure: connect.NewUnaryHandler(api.RenameItemProcedure,
			command(s, func(l *ledger.Store, m *api.RenameItemRequest) (ledger.Snapshot, error) {
				return l.RenameItem(m.ItemID, m.Name), nil
			}), authed...),
		api.RemoveItemProcedure: connect.NewUnaryHandler(api.RemoveItemProcedure,
			command(s, func(l *ledger.Store, m *api.RemoveItemRequest) (ledger.Snapshot, error) {
				return l.RemoveItem(m.ItemID), nil
			}), authed...),
		api.RemoveItemsProcedure: connect.NewUnaryHandler(api.RemoveItemsProcedure,
			command(s, func(l *ledger.Store, m *api.RemoveItemsRequest) (ledger.Snapshot, error) {
				return l.RemoveItems(m.ItemIDs), nil
			}), authed...),
		api.SetPriceProcedure: connect.NewUnaryHandler(api.SetPriceProcedure,
			command(s, func(l *ledger.Store, m *api.SetPriceRequest) (ledger.Snapshot, error) {
				return l.SetPrice(m.ItemID, m.Price), nil
			}), authed...),
		api.ToggleConsumerProcedure: connect.NewUnaryHandler(api.ToggleConsumerProcedure,
			command(s, func(l *ledger.Store, m *api.ToggleConsumerRequest) (ledger.Snapshot, error) {
				return l.ToggleConsumer(m.ItemID, m.ParticipantID), nil
			}), authed...),
		api.SetTotalPortionsProcedure: connect.NewUnaryHandler(api.SetTotalPortionsProcedure,
			command(s, func(l *ledger.Store, m *api.SetTotalPortionsRequest) (ledger.Snapshot, error) {
				return l.SetTotalPortions(m.ItemID, m.TotalPortions), nil
			}), authed...),
		api.SetMemberPortionProcedure: connect.NewUnaryHandler(api.SetMemberPortionProcedure,
			command(s, func(l *ledger.Store, m *api.SetMemberPortionRequest) (ledger.Snapshot, error) {
				return l.SetMemberPortion(m.ItemID, m.ParticipantID, m.Portions)
			}), authed...),
		api.SetDiscountExemptProcedure: connect.NewUnaryHandler(api.SetDiscountExemptProcedure,
			command(s, func(l *ledger.Store, m *api.SetDiscountExemptRequest) (ledger.Snapshot, error) {
				return l.SetDiscountExempt(m.ItemID, m.Exempt), nil
			}), authed...),
		api.SetDiscountPercentProcedure: connect.NewUnaryHandler(api.SetDiscountPercentProcedure,
			command(s, func(l *ledger.Store, m *api.SetDiscountPercentRequest) (ledger.Snapshot, error) {
				return l.SetDiscountPercent(m.Percent), nil
			}), authed...),
	}
	for procedure, handler := range commands {
		mux.Handle(procedure, handler)
	}

	return "/" + api.ServiceName + "/", mux
}

// CreateSession starts a new bill and issues the token that grants access to it.
func (s *BillService) CreateSession(ctx context.Context, req *connect.Request[api.CreateSessionRequest]) (*connect.Response[api.CreateSessionResponse], error) {
	initial := ledger.NewState()
	if req.Msg.Seed {
		initial = ledger.Starter()
	}

	session, err := s.store.CreateSession(ctx, initial)
	if err != nil {
		slog.Error("CreateSession failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(session.ID)
	if err != nil {
		slog.Error("CreateSession: failed to issue token", "session_id", session.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Session created", "session_id", session.ID, "seeded", req.Msg.Seed)

	resp := connect.NewResponse(&api.CreateSessionResponse{
		SessionID: session.ID,
		Token:     token,
		Snapshot:  toSnapshot(session.Ledger.Snapshot()),
	})
	resp.Header().Set(middleware.SessionHeader, session.ID)
	return resp, nil
}

// DeleteSession discards the caller's bill.
func (s *BillService) DeleteSession(ctx context.Context, _ *connect.Request[api.DeleteSessionRequest]) (*connect.Response[api.DeleteSessionResponse], error) {
	sessionID := middleware.GetSessionID(ctx)
	if sessionID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return nil, storageError(err)
	}

	resp := connect.NewResponse(&api.DeleteSessionResponse{})
	resp.Header().Set(middleware.SessionHeader, sessionID)
	return resp, nil
}

// RefreshSession issues a new token for the caller's session. The store's TTL
// slides with every access while a token's lifetime is fixed at issue, so
// active clients call this to keep access for as long as the session lives.
func (s *BillService) RefreshSession(ctx context.Context, _ *connect.Request[api.RefreshSessionRequest]) (*connect.Response[api.RefreshSessionResponse], error) {
	sessionID := middleware.GetSessionID(ctx)
	if sessionID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, storageError(err)
	}

	token, err := s.jwtManager.Generate(sessionID)
	if err != nil {
		slog.Error("RefreshSession: failed to issue token", "session_id", sessionID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp := connect.NewResponse(&api.RefreshSessionResponse{Token: token})
	resp.Header().Set(middleware.SessionHeader, sessionID)
	return resp, nil
}

// command adapts a ledger mutation to a unary handler that resolves the
// caller's session and answers with the fresh snapshot.
func command[Req any](s *BillService, apply func(*ledger.Store, *Req) (ledger.Snapshot, error)) func(context.Context, *connect.Request[Req]) (*connect.Response[api.Snapshot], error) {
	return func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[api.Snapshot], error) {
		sessionID := middleware.GetSessionID(ctx)
		if sessionID == "" {
			return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
		}

		session, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			return nil, storageError(err)
		}

		snap, err := apply(session.Ledger, req.Msg)
		if err != nil {
			if errors.Is(err, ledger.ErrUnsatisfiablePortions) {
				return nil, connect.NewError(connect.CodeFailedPrecondition, err)
			}
			return nil, connect.NewError(connect.CodeInternal, err)
		}

		resp := connect.NewResponse(toSnapshot(snap))
		resp.Header().Set(middleware.SessionHeader, sessionID)
		return resp, nil
	}
}

func storageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		slog.Error("Session store failed", "error", err)
		return connect.NewError(connect.CodeInternal, fmt.Errorf("session store: %w", err))
	}
}
