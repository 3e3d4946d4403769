package rpc

import (
	"net/http"

	"payslab/core/types"
	"payslab/native/reputation"
)

type verifyUserParams struct {
	Caller        string `json:"caller"`
	IdentityToken string `json:"identityToken"`
}

type accountParams struct {
	Address string `json:"address"`
}

type profileJSON struct {
	Address          string `json:"address"`
	IsVerified       bool   `json:"isVerified"`
	TotalTrades      uint64 `json:"totalTrades"`
	SuccessfulTrades uint64 `json:"successfulTrades"`
	ReputationScore  uint64 `json:"reputationScore"`
	JoinedAt         int64  `json:"joinedAt"`
}

func profileToJSON(p *reputation.UserProfile) *profileJSON {
	return &profileJSON{
		Address:          types.FormatAddress(p.Address),
		IsVerified:       p.IsVerified,
		TotalTrades:      p.TotalTrades,
		SuccessfulTrades: p.SuccessfulTrades,
		ReputationScore:  p.ReputationScore,
		JoinedAt:         p.JoinedAt,
	}
}

func (s *Server) handleVerifyUser(w http.ResponseWriter, req *RPCRequest) {
	var params verifyUserParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := types.ParseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	profile, err := s.reputation.Verify(caller, params.IdentityToken)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, profileToJSON(profile))
}

func (s *Server) handleIsUserVerified(w http.ResponseWriter, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	addr, err := types.ParseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	verified, err := s.reputation.IsVerified(addr)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, verified)
}

func (s *Server) handleGetUserProfile(w http.ResponseWriter, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	addr, err := types.ParseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	profile, ok, err := s.reputation.Profile(addr)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeTradeNotFound, "not_found", "unknown account")
		return
	}
	writeResult(w, req.ID, profileToJSON(profile))
}

func (s *Server) handleGetReputationScore(w http.ResponseWriter, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	addr, err := types.ParseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	score, err := s.reputation.ReputationOf(addr)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, score)
}
