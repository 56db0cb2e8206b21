package hyperliquid

// Action structs are signed as msgpack and sent as JSON. Field order is
// part of the signature and must not change.

type orderAction struct {
	Type     string      `msgpack:"type" json:"type"`
	Orders   []orderWire `msgpack:"orders" json:"orders"`
	Grouping string      `msgpack:"grouping" json:"grouping"`
}

type orderWire struct {
	Asset      int           `msgpack:"a" json:"a"`
	IsBuy      bool          `msgpack:"b" json:"b"`
	LimitPx    string        `msgpack:"p" json:"p"`
	Size       string        `msgpack:"s" json:"s"`
	ReduceOnly bool          `msgpack:"r" json:"r"`
	OrderType  orderTypeWire `msgpack:"t" json:"t"`
	Cloid      string        `msgpack:"c,omitempty" json:"c,omitempty"`
}

type orderTypeWire struct {
	Limit limitWire `msgpack:"limit" json:"limit"`
}

type limitWire struct {
	Tif string `msgpack:"tif" json:"tif"`
}

type cancelAction struct {
	Type    string       `msgpack:"type" json:"type"`
	Cancels []cancelWire `msgpack:"cancels" json:"cancels"`
}

type cancelWire struct {
	Asset int    `msgpack:"a" json:"a"`
	Oid   uint64 `msgpack:"o" json:"o"`
}

type updateLeverageAction struct {
	Type     string `msgpack:"type" json:"type"`
	Asset    int    `msgpack:"asset" json:"asset"`
	IsCross  bool   `msgpack:"isCross" json:"isCross"`
	Leverage uint32 `msgpack:"leverage" json:"leverage"`
}
