package ws

// Gate.io spot websocket channels and events.
const (
	channelBookTicker = "spot.book_ticker"
	channelLogin      = "spot.login"
	channelPing       = "spot.ping"
	channelPong       = "spot.pong"
	channelOrderPlace = "spot.order_place"

	eventSubscribe = "subscribe"
	eventUpdate    = "update"
	eventAPI       = "api"
)

type subscribeRequest struct {
	Time    int64    `json:"time"`
	Channel string   `json:"channel"`
	Event   string   `json:"event"`
	Payload []string `json:"payload"`
}

type loginRequest struct {
	Time    int64        `json:"time"`
	Channel string       `json:"channel"`
	Event   string       `json:"event"`
	Payload loginPayload `json:"payload"`
}

type loginPayload struct {
	APIKey    string `json:"api_key"`
	Signature string `json:"signature"`
	Timestamp string `json:"timestamp"`
	ReqID     string `json:"req_id"`
}

type pingRequest struct {
	Time    int64  `json:"time"`
	Channel string `json:"channel"`
}

type orderPlaceRequest struct {
	Time    int64        `json:"time"`
	Channel string       `json:"channel"`
	Event   string       `json:"event"`
	Payload orderPayload `json:"payload"`
}

type orderPayload struct {
	ReqID    string     `json:"req_id"`
	ReqParam orderParam `json:"req_param"`
}

type orderParam struct {
	CurrencyPair string `json:"currency_pair"`
	Side         string `json:"side"`
	Type         string `json:"type"`
	Amount       string `json:"amount"`
	Price        string `json:"price"`
	TimeInForce  string `json:"time_in_force"`
}

// bookTickerResult is the inner result of a spot.book_ticker update.
type bookTickerResult struct {
	Symbol  string `json:"s"`
	Bid     string `json:"b"`
	BidSize string `json:"B"`
	Ask     string `json:"a"`
	AskSize string `json:"A"`
	TimeMs  int64  `json:"t"`
}
