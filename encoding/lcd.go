package encoding

// BroadcastMode selects how long the node holds the broadcast request.
type BroadcastMode string

const (
	BroadcastSync  BroadcastMode = "sync"
	BroadcastAsync BroadcastMode = "async"
	BroadcastBlock BroadcastMode = "block"
)

// AccountInfo is the subset of the auth account the deployer needs.
type AccountInfo struct {
	Address       string `json:"address"`
	AccountNumber uint64 `json:"account_number,string"`
	Sequence      uint64 `json:"sequence,string"`
}

// BroadcastResult is the node's answer to POST /txs. A non-zero Code means the
// transaction was rejected.
type BroadcastResult struct {
	Height    string  `json:"height"`
	TxHash    string  `json:"txhash"`
	Code      uint32  `json:"code,omitempty"`
	Codespace string  `json:"codespace,omitempty"`
	RawLog    string  `json:"raw_log"`
	Logs      []TxLog `json:"logs,omitempty"`
	GasWanted string  `json:"gas_wanted,omitempty"`
	GasUsed   string  `json:"gas_used,omitempty"`
}

func (r BroadcastResult) IsError() bool {
	return r.Code != 0
}

// TxInfo is a settled transaction as returned by GET /txs/{hash}.
type TxInfo struct {
	Height    string  `json:"height"`
	TxHash    string  `json:"txhash"`
	Code      uint32  `json:"code,omitempty"`
	Codespace string  `json:"codespace,omitempty"`
	RawLog    string  `json:"raw_log"`
	Logs      []TxLog `json:"logs"`
	GasWanted string  `json:"gas_wanted,omitempty"`
	GasUsed   string  `json:"gas_used,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
}

type TxLog struct {
	MsgIndex int     `json:"msg_index"`
	Log      string  `json:"log"`
	Events   []Event `json:"events"`
}

type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Attribute returns the value of the first attribute with the given key.
func (e Event) Attribute(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
