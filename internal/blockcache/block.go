package blockcache

// Block is one BSQ block as served by the daemon. Exactly one block per
// height is kept in the cache; blocks chain through PreviousBlockHash.
type Block struct {
	Height            int           `json:"height"`
	Time              int64         `json:"time"`
	Hash              string        `json:"hash"`
	PreviousBlockHash string        `json:"previousBlockHash"`
	Txs               []Transaction `json:"txs"`
}

// Transaction is a BSQ transaction. Once indexed it is owned by exactly one
// block.
type Transaction struct {
	TxVersion         string   `json:"txVersion"`
	ID                string   `json:"id"`
	BlockHeight       int      `json:"blockHeight"`
	BlockHash         string   `json:"blockHash"`
	Time              int64    `json:"time"`
	Inputs            []Input  `json:"inputs"`
	Outputs           []Output `json:"outputs"`
	TxType            string   `json:"txType"`
	TxTypeDisplay     string   `json:"txTypeDisplayString"`
	BurntFee          int64    `json:"burntFee"`
	InvalidatedBsq    int64    `json:"invalidatedBsq"`
	UnlockBlockHeight int      `json:"unlockBlockHeight"`
}

// Input spends a previous transaction output.
type Input struct {
	SpendingTxOutputIndex int    `json:"spendingTxOutputIndex"`
	SpendingTxID          string `json:"spendingTxId"`
	BsqAmount             int64  `json:"bsqAmount"`
	IsVerified            bool   `json:"isVerified"`
	Address               string `json:"address"`
	Time                  int64  `json:"time"`
}

// Output is a transaction output. LockTime is only meaningful for lockup
// output types.
type Output struct {
	TxVersion           string `json:"txVersion"`
	BsqAmount           int64  `json:"bsqAmount"`
	BtcAmount           int64  `json:"btcAmount"`
	Height              int    `json:"height"`
	IsVerified          bool   `json:"isVerified"`
	BurntFee            int64  `json:"burntFee"`
	Address             string `json:"address"`
	Time                int64  `json:"time"`
	TxOutputType        string `json:"txOutputType"`
	TxOutputTypeDisplay string `json:"txOutputTypeDisplayString"`
	TxID                string `json:"txId"`
	Index               int    `json:"index"`
	LockTime            int    `json:"lockTime"`
	IsUnspent           bool   `json:"isUnspent"`
	OpReturn            string `json:"opReturn,omitempty"`
}

// Stats are the aggregate chain statistics. Minted and Burnt arrive from
// the daemon in centi-BSQ and are divided by 100 on ingest. The derived
// price fields are computed from the latest BSQ reference price.
type Stats struct {
	Minted        float64 `json:"minted"`
	Burnt         float64 `json:"burnt"`
	Addresses     int     `json:"addresses"`
	UnspentTxos   int     `json:"unspent_txos"`
	SpentTxos     int     `json:"spent_txos"`
	Height        int     `json:"height"`
	GenesisHeight int     `json:"genesisHeight"`
	BsqPrice      float64 `json:"_bsqPrice"`
	UsdPrice      float64 `json:"_usdPrice"`
	MarketCap     float64 `json:"_marketCap"`
}
