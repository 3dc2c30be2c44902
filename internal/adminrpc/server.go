package adminrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/thurbox/thurbox/internal/store"
	"github.com/thurbox/thurbox/internal/thurerr"
	"github.com/thurbox/thurbox/internal/types"
)

// Server dispatches one line-delimited request at a time against the
// shared store. It holds no session/backend state of its own: restart
// only rewrites the store row, and since the sync poller watches the
// shared-state file rather than the database, a running TUI instance
// is not told about it. This matches spec.md's note that the RPC surface "shares
// the same store and must observe the same invariants" rather than
// owning a parallel copy of runtime state.
type Server struct {
	store *store.Store
	log   *slog.Logger
}

func NewServer(st *store.Store, log *slog.Logger) *Server {
	return &Server{store: st, log: log}
}

// Serve reads one JSON request per line from r and writes one JSON
// response per line to w until r is exhausted or ctx is cancelled,
// mirroring the newline-delimited-JSON connection loop used for the
// daemon protocol elsewhere in this codebase's reference material.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			_ = enc.Encode(Response{Error: &ErrorPayload{Kind: string(thurerr.ValidationFailed), Message: err.Error()}})
			continue
		}
		resp := s.handle(ctx, req)
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (s *Server) handle(ctx context.Context, req Request) Response {
	result, err := s.dispatch(ctx, req)
	if err != nil {
		s.log.Warn("adminrpc call failed", "method", req.Method, "err", err)
		return Response{ID: req.ID, Error: errPayload(err)}
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return Response{ID: req.ID, Error: &ErrorPayload{Kind: string(thurerr.ValidationFailed), Message: err.Error()}}
	}
	return Response{ID: req.ID, Result: raw}
}

func errPayload(err error) *ErrorPayload {
	var te *thurerr.Error
	if errors.As(err, &te) {
		return &ErrorPayload{Kind: string(te.Kind), Message: te.Detail}
	}
	return &ErrorPayload{Kind: string(thurerr.StoreUnavailable), Message: err.Error()}
}

func (s *Server) dispatch(ctx context.Context, req Request) (any, error) {
	switch req.Method {
	case MethodListProjects:
		return s.store.ListProjects(ctx, false)

	case MethodGetProject:
		var p idParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, thurerr.Validation("params", err.Error())
		}
		return s.store.GetProject(ctx, types.ProjectId(p.ID))

	case MethodCreateProject:
		var p types.Project
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, thurerr.Validation("params", err.Error())
		}
		if p.ID == "" {
			p.ID = types.NewProjectId()
		}
		if err := s.store.CreateProject(ctx, &p); err != nil {
			return nil, err
		}
		return p, nil

	case MethodUpdateProject:
		var p types.Project
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, thurerr.Validation("params", err.Error())
		}
		if err := s.store.UpdateProject(ctx, &p); err != nil {
			return nil, err
		}
		return p, nil

	case MethodDeleteProject:
		var p idParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, thurerr.Validation("params", err.Error())
		}
		if err := s.store.SoftDeleteProject(ctx, types.ProjectId(p.ID)); err != nil {
			return nil, err
		}
		return okResult, nil

	case MethodListRoles:
		var p idParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, thurerr.Validation("params", err.Error())
		}
		return s.store.ListRoles(ctx, types.ProjectId(p.ID))

	case MethodSetRoles:
		var p rolesParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, thurerr.Validation("params", err.Error())
		}
		if err := s.store.SetRoles(ctx, types.ProjectId(p.ProjectID), p.Roles); err != nil {
			return nil, err
		}
		return okResult, nil

	case MethodListMCPServers:
		var p idParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, thurerr.Validation("params", err.Error())
		}
		return s.store.ListMCPServers(ctx, types.ProjectId(p.ID))

	case MethodSetMCPServers:
		var p mcpParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, thurerr.Validation("params", err.Error())
		}
		if err := s.store.SetMCPServers(ctx, types.ProjectId(p.ProjectID), p.Servers); err != nil {
			return nil, err
		}
		return okResult, nil

	case MethodListSessions:
		var p listSessionsParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, thurerr.Validation("params", err.Error())
		}
		return s.store.ListSessions(ctx, types.ProjectId(p.ProjectID))

	case MethodGetSession:
		var p idParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, thurerr.Validation("params", err.Error())
		}
		return s.store.GetSession(ctx, types.SessionId(p.ID))

	case MethodDeleteSession:
		var p idParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, thurerr.Validation("params", err.Error())
		}
		if err := s.store.SoftDeleteSession(ctx, types.SessionId(p.ID)); err != nil {
			return nil, err
		}
		return okResult, nil

	case MethodRestartSession:
		var p idParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, thurerr.Validation("params", err.Error())
		}
		id := types.SessionId(p.ID)
		if err := s.store.UpdateSessionStatus(ctx, id, types.Starting()); err != nil {
			return nil, err
		}
		return okResult, nil

	case MethodAuditLog:
		var p auditParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, thurerr.Validation("params", err.Error())
		}
		limit := p.Limit
		if limit <= 0 {
			limit = 100
		}
		return s.store.ListAuditLog(ctx, p.EntityType, p.EntityID, limit)

	default:
		return nil, thurerr.New(thurerr.ValidationFailed, "unknown method "+req.Method, nil)
	}
}

var okResult = struct {
	OK bool `json:"ok"`
}{OK: true}

type idParams struct {
	ID string `json:"id"`
}

type rolesParams struct {
	ProjectID string       `json:"project_id"`
	Roles     []types.Role `json:"roles"`
}

type mcpParams struct {
	ProjectID string            `json:"project_id"`
	Servers   []types.McpServer `json:"servers"`
}

type listSessionsParams struct {
	ProjectID string `json:"project_id"`
}

type auditParams struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Limit      int    `json:"limit"`
}
