package rpc

import (
	"math/big"
	"net/http"
	"strings"

	"payslab/core/types"
	"payslab/native/escrow"
)

type tradeCreateParams struct {
	Buyer              string `json:"buyer"`
	Seller             string `json:"seller"`
	TotalAmount        string `json:"totalAmount"`
	DeliveryDeadline   int64  `json:"deliveryDeadline"`
	QualityStandards   string `json:"qualityStandards,omitempty"`
	InspectionRequired bool   `json:"inspectionRequired"`
}

type tradeIDParams struct {
	ID uint64 `json:"id"`
}

type tradeActorParams struct {
	ID     uint64 `json:"id"`
	Caller string `json:"caller"`
}

type tradeShipParams struct {
	ID             uint64 `json:"id"`
	Caller         string `json:"caller"`
	TrackingNumber string `json:"trackingNumber"`
}

type tradeInspectParams struct {
	ID     uint64 `json:"id"`
	Caller string `json:"caller"`
	Result string `json:"result"`
}

type tradeDisputeParams struct {
	ID     uint64 `json:"id"`
	Caller string `json:"caller"`
	Reason string `json:"reason,omitempty"`
}

type inspectorParams struct {
	Caller    string `json:"caller"`
	Inspector string `json:"inspector"`
}

type platformFeeParams struct {
	Caller string `json:"caller"`
	FeeBps uint32 `json:"feeBps"`
}

type feeCollectorParams struct {
	Caller    string `json:"caller"`
	Collector string `json:"collector"`
}

type tradeCreateResult struct {
	ID uint64 `json:"id"`
}

type tradeJSON struct {
	ID                 uint64 `json:"id"`
	Buyer              string `json:"buyer"`
	Seller             string `json:"seller"`
	TotalAmount        string `json:"totalAmount"`
	DepositAmount      string `json:"depositAmount"`
	ShipmentAmount     string `json:"shipmentAmount"`
	DeliveryAmount     string `json:"deliveryAmount"`
	Status             string `json:"status"`
	InspectionStatus   string `json:"inspectionStatus"`
	InspectionRequired bool   `json:"inspectionRequired"`
	Inspector          string `json:"inspector,omitempty"`
	TrackingNumber     string `json:"trackingNumber,omitempty"`
	QualityStandards   string `json:"qualityStandards,omitempty"`
	CreatedAt          int64  `json:"createdAt"`
	DeliveryDeadline   int64  `json:"deliveryDeadline"`
}

type platformConfigJSON struct {
	Owner          string `json:"owner"`
	FeeCollector   string `json:"feeCollector"`
	PlatformFeeBps uint32 `json:"platformFeeBps"`
	MaxFeeBps      uint32 `json:"maxFeeBps"`
}

func tradeToJSON(t *escrow.Trade) *tradeJSON {
	out := &tradeJSON{
		ID:                 t.ID,
		Buyer:              types.FormatAddress(t.Buyer),
		Seller:             types.FormatAddress(t.Seller),
		TotalAmount:        t.TotalAmount.String(),
		DepositAmount:      t.DepositAmount.String(),
		ShipmentAmount:     t.ShipmentAmount.String(),
		DeliveryAmount:     t.DeliveryAmount.String(),
		Status:             t.Status.String(),
		InspectionStatus:   t.InspectionStatus.String(),
		InspectionRequired: t.InspectionRequired,
		TrackingNumber:     string(t.TrackingNumber),
		QualityStandards:   string(t.QualityStandards),
		CreatedAt:          t.CreatedAt,
		DeliveryDeadline:   t.DeliveryDeadline,
	}
	if t.Inspector != ([20]byte{}) {
		out.Inspector = types.FormatAddress(t.Inspector)
	}
	return out
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, req *RPCRequest) {
	var params tradeCreateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	buyer, err := types.ParseAddress(params.Buyer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	seller, err := types.ParseAddress(params.Seller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	total, ok := new(big.Int).SetString(strings.TrimSpace(params.TotalAmount), 10)
	if !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", "totalAmount must be a base-10 integer")
		return
	}
	trade, err := s.engine.CreateTrade(buyer, seller, total, params.DeliveryDeadline, []byte(params.QualityStandards), params.InspectionRequired)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, tradeCreateResult{ID: trade.ID})
}

func (s *Server) handleFundTrade(w http.ResponseWriter, req *RPCRequest) {
	s.handleTradeAction(w, req, s.engine.FundTrade)
}

func (s *Server) handleConfirmDelivery(w http.ResponseWriter, req *RPCRequest) {
	s.handleTradeAction(w, req, s.engine.ConfirmDelivery)
}

func (s *Server) handleCancelTrade(w http.ResponseWriter, req *RPCRequest) {
	s.handleTradeAction(w, req, s.engine.CancelTrade)
}

func (s *Server) handleTradeAction(w http.ResponseWriter, req *RPCRequest, action func(uint64, [20]byte) error) {
	var params tradeActorParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := types.ParseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := action(params.ID, caller); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleMarkShipped(w http.ResponseWriter, req *RPCRequest) {
	var params tradeShipParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := types.ParseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.engine.MarkShipped(params.ID, caller, []byte(params.TrackingNumber)); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleCompleteQualityInspection(w http.ResponseWriter, req *RPCRequest) {
	var params tradeInspectParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := types.ParseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	var result escrow.InspectionStatus
	switch strings.ToLower(strings.TrimSpace(params.Result)) {
	case "passed":
		result = escrow.InspectionPassed
	case "failed":
		result = escrow.InspectionFailed
	default:
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", "result must be passed or failed")
		return
	}
	if err := s.engine.CompleteQualityInspection(params.ID, caller, result); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleDisputeTrade(w http.ResponseWriter, req *RPCRequest) {
	var params tradeDisputeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := types.ParseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.engine.DisputeTrade(params.ID, caller, params.Reason); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleGetTrade(w http.ResponseWriter, req *RPCRequest) {
	var params tradeIDParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	trade, ok, err := s.engine.GetTrade(params.ID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeTradeNotFound, "not_found", "unknown trade id")
		return
	}
	writeResult(w, req.ID, tradeToJSON(trade))
}

func (s *Server) handleAddInspector(w http.ResponseWriter, req *RPCRequest) {
	s.handleInspectorChange(w, req, s.engine.AddInspector)
}

func (s *Server) handleRemoveInspector(w http.ResponseWriter, req *RPCRequest) {
	s.handleInspectorChange(w, req, s.engine.RemoveInspector)
}

func (s *Server) handleInspectorChange(w http.ResponseWriter, req *RPCRequest, change func(caller, inspector [20]byte) error) {
	var params inspectorParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := types.ParseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	inspector, err := types.ParseAddress(params.Inspector)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := change(caller, inspector); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleUpdatePlatformFee(w http.ResponseWriter, req *RPCRequest) {
	var params platformFeeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := types.ParseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.engine.UpdatePlatformFee(caller, params.FeeBps); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleUpdateFeeCollector(w http.ResponseWriter, req *RPCRequest) {
	var params feeCollectorParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := types.ParseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	collector, err := types.ParseAddress(params.Collector)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.engine.UpdateFeeCollector(caller, collector); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleGetPlatformConfig(w http.ResponseWriter, req *RPCRequest) {
	owner, collector, feeBps, err := s.engine.PlatformConfig()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, platformConfigJSON{
		Owner:          types.FormatAddress(owner),
		FeeCollector:   types.FormatAddress(collector),
		PlatformFeeBps: feeBps,
		MaxFeeBps:      escrow.MaxPlatformFeeBps,
	})
}
