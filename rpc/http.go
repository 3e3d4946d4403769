package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"payslab/native/common"
	"payslab/native/escrow"
	"payslab/native/reputation"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

const (
	codeTradeNotFound    = -32022
	codeUnauthorized     = -32023
	codeInvalidState     = -32024
	codeIdentityUsed     = -32026
	codeNotVerified      = -32027
	codeInvalidMilestone = -32028
	codeTransferFailed   = -32029
	codeReentrancy       = -32030
	codeFeeTooHigh       = -32031
)

// Server exposes the settlement engine's entry points over JSON-RPC 2.0. A
// single mutex serializes state-changing calls, matching the execution model
// the engine assumes.
type Server struct {
	mu         sync.Mutex
	engine     *escrow.Engine
	reputation *reputation.Engine
}

func NewServer(engine *escrow.Engine, rep *reputation.Engine) *Server {
	return &Server{engine: engine, reputation: rep}
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	return http.ListenAndServe(addr, mux)
}

// Handler returns the request handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	return mux
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, nil, codeInvalidRequest, "invalid_request", "POST required")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "parse_error", err.Error())
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "parse_error", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "invalid_request", "unsupported jsonrpc version")
		return
	}
	handler, ok := s.route(req.Method)
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method_not_found", req.Method)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	handler(w, &req)
}

func (s *Server) route(method string) (func(http.ResponseWriter, *RPCRequest), bool) {
	switch method {
	case "payslab_verifyUser":
		return s.handleVerifyUser, true
	case "payslab_isUserVerified":
		return s.handleIsUserVerified, true
	case "payslab_getUserProfile":
		return s.handleGetUserProfile, true
	case "payslab_getReputationScore":
		return s.handleGetReputationScore, true
	case "payslab_createTrade":
		return s.handleCreateTrade, true
	case "payslab_fundTrade":
		return s.handleFundTrade, true
	case "payslab_markShipped":
		return s.handleMarkShipped, true
	case "payslab_confirmDelivery":
		return s.handleConfirmDelivery, true
	case "payslab_completeQualityInspection":
		return s.handleCompleteQualityInspection, true
	case "payslab_disputeTrade":
		return s.handleDisputeTrade, true
	case "payslab_cancelTrade":
		return s.handleCancelTrade, true
	case "payslab_getTrade":
		return s.handleGetTrade, true
	case "payslab_addInspector":
		return s.handleAddInspector, true
	case "payslab_removeInspector":
		return s.handleRemoveInspector, true
	case "payslab_updatePlatformFee":
		return s.handleUpdatePlatformFee, true
	case "payslab_updateFeeCollector":
		return s.handleUpdateFeeCollector, true
	case "payslab_getPlatformConfig":
		return s.handleGetPlatformConfig, true
	default:
		return nil, false
	}
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

// writeEngineError maps the engine's error taxonomy onto JSON-RPC codes.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	switch {
	case errors.Is(err, escrow.ErrTradeNotFound):
		writeError(w, http.StatusNotFound, id, codeTradeNotFound, "not_found", err.Error())
	case errors.Is(err, escrow.ErrUnauthorized):
		writeError(w, http.StatusForbidden, id, codeUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, escrow.ErrInvalidState):
		writeError(w, http.StatusConflict, id, codeInvalidState, "invalid_state", err.Error())
	case errors.Is(err, reputation.ErrIdentityUsed), errors.Is(err, reputation.ErrAlreadyVerified):
		writeError(w, http.StatusConflict, id, codeIdentityUsed, "already_used", err.Error())
	case errors.Is(err, escrow.ErrNotVerified):
		writeError(w, http.StatusForbidden, id, codeNotVerified, "not_verified", err.Error())
	case errors.Is(err, escrow.ErrInvalidMilestone):
		writeError(w, http.StatusConflict, id, codeInvalidMilestone, "invalid_milestone", err.Error())
	case errors.Is(err, escrow.ErrTransferFailed):
		writeError(w, http.StatusConflict, id, codeTransferFailed, "transfer_failed", err.Error())
	case errors.Is(err, common.ErrReentrancy):
		writeError(w, http.StatusConflict, id, codeReentrancy, "reentrancy_detected", err.Error())
	case errors.Is(err, escrow.ErrFeeTooHigh):
		writeError(w, http.StatusBadRequest, id, codeFeeTooHigh, "fee_too_high", err.Error())
	case errors.Is(err, common.ErrModulePaused):
		writeError(w, http.StatusServiceUnavailable, id, codeServerError, "module_paused", err.Error())
	case errors.Is(err, reputation.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, id, codeTradeNotFound, "not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, id, codeServerError, "server_error", err.Error())
	}
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(RPCResponse{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	})
}
