package state

var (
	accountPrefix     = []byte("account/")
	tradePrefix       = []byte("escrow/trade/")
	tradeSeqKeyBytes  = []byte("escrow/trade-seq")
	platformOwnerKey  = []byte("escrow/params/owner")
	feeCollectorKey   = []byte("escrow/params/fee-collector")
	platformFeeKey    = []byte("escrow/params/fee-bps")
	inspectorPrefix   = []byte("escrow/inspector/")
	modulePausePrefix = []byte("params/paused/")
)
