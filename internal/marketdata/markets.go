package marketdata

import (
	"sort"

	"github.com/bisq-network/bsqindex/internal/aggregation"
)

// GetDepth returns the order-book depth for one market: open-offer prices
// per side as 8-decimal BTC strings, buys descending and sells ascending.
func (s *Store) GetDepth(market string) Depth {
	currencyPair := currencyPairOf(market)

	s.mu.RLock()
	var buyPrices, sellPrices []float64
	for _, offer := range s.offers {
		if offer.CurrencyPair != currencyPair {
			continue
		}
		switch offer.PrimaryMarketDirection {
		case "BUY":
			buyPrices = append(buyPrices, offer.Price)
		case "SELL":
			sellPrices = append(sellPrices, offer.Price)
		}
	}
	s.mu.RUnlock()

	sort.Sort(sort.Reverse(sort.Float64Slice(buyPrices)))
	sort.Float64s(sellPrices)

	depth := Depth{
		Buys:  make([]string, 0, len(buyPrices)),
		Sells: make([]string, 0, len(sellPrices)),
	}
	for _, price := range buyPrices {
		depth.Buys = append(depth.Buys, aggregation.FormatBTC(price))
	}
	for _, price := range sellPrices {
		depth.Sells = append(depth.Sells, aggregation.FormatBTC(price))
	}
	return depth
}

// GetOffers returns the renormalized offer views for one market. Direction
// "buy" or "sell" restricts to one side; empty selects both. Buys sort by
// price descending, sells ascending.
func (s *Store) GetOffers(market, direction string) OfferBook {
	currencyPair := currencyPairOf(market)

	s.mu.RLock()
	var buys, sells []Offer
	for _, offer := range s.offers {
		if offer.CurrencyPair != currencyPair {
			continue
		}
		switch offer.PrimaryMarketDirection {
		case "BUY":
			if direction == "" || direction == "buy" {
				buys = append(buys, offer)
			}
		case "SELL":
			if direction == "" || direction == "sell" {
				sells = append(sells, offer)
			}
		}
	}
	index := s.currencyIndex
	s.mu.RUnlock()

	sort.SliceStable(buys, func(i, j int) bool { return buys[i].Price > buys[j].Price })
	sort.SliceStable(sells, func(i, j int) bool { return sells[i].Price < sells[j].Price })

	book := OfferBook{}
	if direction == "" || direction == "buy" {
		book.Buys = make([]OfferView, 0, len(buys))
		for _, offer := range buys {
			book.Buys = append(book.Buys, offerView(offer, market, index))
		}
	}
	if direction == "" || direction == "sell" {
		book.Sells = make([]OfferView, 0, len(sells))
		for _, offer := range sells {
			book.Sells = append(book.Sells, offerView(offer, market, index))
		}
	}
	return book
}

// offerView renormalizes one offer against the currency precision table.
// Unknown legs fall back to 8 decimals.
func offerView(offer Offer, market string, index map[string]Currency) OfferView {
	left, right, _ := splitPair(currencyPairOf(market))

	leftPrecision, rightPrecision := 8, 8
	if currency, ok := index[left]; ok {
		leftPrecision = currency.Precision
	}
	if currency, ok := index[right]; ok {
		rightPrecision = currency.Precision
	}

	price := offer.PrimaryMarketPrice * aggregation.ScaleFactor(rightPrecision)
	amount := offer.PrimaryMarketAmount * aggregation.ScaleFactor(leftPrecision)
	volume := offer.PrimaryMarketVolume * aggregation.ScaleFactor(rightPrecision)

	return OfferView{
		OfferID:       offer.ID,
		OfferDate:     offer.Date,
		Direction:     offer.PrimaryMarketDirection,
		MinAmount:     aggregation.FormatBTC(offer.MinAmount),
		Amount:        aggregation.FormatBTC(amount),
		Price:         aggregation.FormatBTC(price),
		Volume:        aggregation.FormatBTC(volume),
		PaymentMethod: offer.PaymentMethod,
	}
}

// GetMarkets returns the tradable pairs: every active currency crossed with
// BTC, excluding BTC against itself. Fiat currencies quote as BTC/FIAT with
// the fiat currency's own precision on the right leg; cryptos quote as
// CRYPTO/BTC with 8 decimals on both legs.
func (s *Store) GetMarkets() map[string]Market {
	all := s.GetCurrencies("all")
	active := s.GetCurrencies("active")

	btcName := bitcoinCurrency.Name
	if btc, ok := all["BTC"]; ok {
		btcName = btc.Name
	}

	markets := make(map[string]Market, len(active))
	for code, currency := range active {
		if code == "BTC" {
			continue
		}
		isFiat := currency.Kind == "fiat"

		market := Market{LPrecision: 8}
		if isFiat {
			market.LSymbol, market.RSymbol = "BTC", code
			market.LName, market.RName = btcName, currency.Name
			market.LType, market.RType = "crypto", "fiat"
			market.RPrecision = currency.Precision
		} else {
			market.LSymbol, market.RSymbol = code, "BTC"
			market.LName, market.RName = currency.Name, btcName
			market.LType, market.RType = currency.Kind, "crypto"
			market.RPrecision = 8
		}
		market.Pair = MarketKey(market.LSymbol + "/" + market.RSymbol)
		market.Name = market.LName + "/" + market.RName

		markets[market.Pair] = market
	}
	return markets
}
