package marketdata

// Currency is one entry of the upstream currency metadata table.
type Currency struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Precision int    `json:"precision"`
	Kind      string `json:"_type"` // "crypto" or "fiat"
}

// Offer is one open, unmatched order as delivered upstream. Monetary fields
// are integer-scaled in the currency's own precision; Date is unix
// milliseconds. The offer set is replaced wholesale on each refresh.
type Offer struct {
	ID                     string  `json:"id"`
	Date                   int64   `json:"date"`
	CurrencyPair           string  `json:"currencyPair"`
	Direction              string  `json:"direction"`
	PrimaryMarketDirection string  `json:"primaryMarketDirection"`
	Price                  float64 `json:"price"`
	MinAmount              float64 `json:"minAmount"`
	PrimaryMarketPrice     float64 `json:"primaryMarketPrice"`
	PrimaryMarketAmount    float64 `json:"primaryMarketAmount"`
	PrimaryMarketVolume    float64 `json:"primaryMarketVolume"`
	PaymentMethod          string  `json:"paymentMethod"`
}

// Trade is one completed trade as delivered upstream. TradeDate is unix
// milliseconds. The market key is derived at insert time from the currency
// pair and never serialized back out.
type Trade struct {
	Currency                 string  `json:"currency"`
	CurrencyPair             string  `json:"currencyPair"`
	Direction                string  `json:"direction"`
	PrimaryMarketDirection   string  `json:"primaryMarketDirection"`
	OfferID                  string  `json:"offerId"`
	OfferAmount              float64 `json:"offerAmount"`
	PaymentMethod            string  `json:"paymentMethod"`
	TradeDate                int64   `json:"tradeDate"`
	PrimaryMarketTradePrice  float64 `json:"primaryMarketTradePrice"`
	PrimaryMarketTradeAmount float64 `json:"primaryMarketTradeAmount"`
	PrimaryMarketTradeVolume float64 `json:"primaryMarketTradeVolume"`

	market string `json:"-"`
}

// Depth is the sorted open-offer price lists for one market, rendered as
// 8-decimal BTC strings. Buys descend, sells ascend.
type Depth struct {
	Buys  []string `json:"buys"`
	Sells []string `json:"sells"`
}

// OfferView is the renormalized projection of one open offer.
type OfferView struct {
	OfferID       string  `json:"offer_id"`
	OfferDate     int64   `json:"offer_date"`
	Direction     string  `json:"direction"`
	MinAmount     string  `json:"min_amount"`
	Amount        string  `json:"amount"`
	Price         string  `json:"price"`
	Volume        string  `json:"volume"`
	PaymentMethod string  `json:"payment_method"`
	OfferFeeTxID  *string `json:"offer_fee_txid"`
}

// OfferBook holds one market's offer views per side. A side the caller did
// not ask for stays nil.
type OfferBook struct {
	Buys  []OfferView `json:"buys"`
	Sells []OfferView `json:"sells"`
}

// Market describes one tradable pair against BTC.
type Market struct {
	Pair       string `json:"pair"`
	LName      string `json:"lname"`
	RName      string `json:"rname"`
	LSymbol    string `json:"lsymbol"`
	RSymbol    string `json:"rsymbol"`
	LPrecision int    `json:"lprecision"`
	RPrecision int    `json:"rprecision"`
	LType      string `json:"ltype"`
	RType      string `json:"rtype"`
	Name       string `json:"name"`
}

// TradeView is the renormalized projection of one trade. Market is only set
// on whole-set queries.
type TradeView struct {
	Direction     string `json:"direction"`
	Price         string `json:"price"`
	Amount        string `json:"amount"`
	Volume        string `json:"volume"`
	PaymentMethod string `json:"payment_method"`
	TradeID       string `json:"trade_id"`
	TradeDate     int64  `json:"trade_date"`
	Market        string `json:"market,omitempty"`
}

// Ticker is one market's 24-hour price summary. Buy and sell are nil when no
// matching open offer exists in the window.
type Ticker struct {
	Last        string  `json:"last"`
	High        string  `json:"high"`
	Low         string  `json:"low"`
	VolumeLeft  string  `json:"volume_left"`
	VolumeRight string  `json:"volume_right"`
	Buy         *string `json:"buy"`
	Sell        *string `json:"sell"`
}

// Candle is one OHLC aggregation bucket rendered for the API.
type Candle struct {
	PeriodStart int64  `json:"period_start"`
	Open        string `json:"open"`
	Close       string `json:"close"`
	High        string `json:"high"`
	Low         string `json:"low"`
	Avg         string `json:"avg"`
	VolumeRight string `json:"volume_right"`
	VolumeLeft  string `json:"volume_left"`
}

// VolumeView is one volume-only aggregation bucket rendered for the API.
type VolumeView struct {
	PeriodStart int64  `json:"period_start"`
	NumTrades   int    `json:"num_trades"`
	Volume      string `json:"volume"`
}
