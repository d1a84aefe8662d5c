package model

import "time"

const EnvelopeVersion = "v1"

type Envelope struct {
	Version  string       `json:"version"`
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *ErrorBody   `json:"error"`
	Warnings []string     `json:"warnings,omitempty"`
	Meta     EnvelopeMeta `json:"meta"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Reason  string `json:"revert_reason,omitempty"`
}

type EnvelopeMeta struct {
	RequestID   string    `json:"request_id"`
	Timestamp   time.Time `json:"timestamp"`
	Command     string    `json:"command"`
	BlockNumber uint64    `json:"block_number"`
	ChainID     int64     `json:"chain_id,omitempty"`
}

// AmountInfo pairs a base-unit amount with its decimal rendering.
type AmountInfo struct {
	BaseUnits string `json:"base_units"`
	Decimal   string `json:"decimal"`
	Decimals  uint8  `json:"decimals"`
}

type TokenBalance struct {
	Symbol  string     `json:"symbol"`
	Address string     `json:"address"`
	Amount  AmountInfo `json:"amount"`
}

type AccountInfo struct {
	Index   int        `json:"index"`
	Address string     `json:"address"`
	Balance AmountInfo `json:"balance"`
	Nonce   uint64     `json:"nonce"`
	Wallet  string     `json:"wallet,omitempty"`
}

type WalletInfo struct {
	Address   string         `json:"address"`
	Owner     string         `json:"owner"`
	Router    string         `json:"router"`
	ChefV1    string         `json:"master_chef_v1"`
	ChefV2    string         `json:"master_chef_v2"`
	Balance   AmountInfo     `json:"balance"`
	Tokens    []TokenBalance `json:"tokens"`
	Positions []FarmPosition `json:"positions,omitempty"`
}

type FarmPosition struct {
	Wallet   string     `json:"wallet"`
	TokenA   string     `json:"token_a"`
	TokenB   string     `json:"token_b"`
	Pair     string     `json:"pair"`
	Version  uint8      `json:"version"`
	PID      uint64     `json:"pid"`
	Staked   AmountInfo `json:"staked"`
	Pending  AmountInfo `json:"pending_sushi"`
	Deployed bool       `json:"deployed"`
}

type FarmInfo struct {
	TokenA        string `json:"token_a"`
	TokenB        string `json:"token_b"`
	Pair          string `json:"pair"`
	Version       uint8  `json:"version"`
	PID           uint64 `json:"pid"`
	Chef          string `json:"chef"`
	AllocPoint    string `json:"alloc_point"`
	TotalStakedLP string `json:"total_staked_lp"`
}

type NetworkInfo struct {
	ChainID       int64          `json:"chain_id"`
	BlockNumber   uint64         `json:"block_number"`
	Timestamp     uint64         `json:"timestamp"`
	StatePath     string         `json:"state_path"`
	SushiFactory  string         `json:"sushi_factory"`
	SushiRouter   string         `json:"sushi_router"`
	MasterChefV1  string         `json:"master_chef_v1"`
	MasterChefV2  string         `json:"master_chef_v2"`
	WalletFactory string         `json:"wallet_factory"`
	Wallets       uint64         `json:"wallets"`
	Tokens        []TokenInfo    `json:"tokens"`
	Farms         []FarmInfo     `json:"farms"`
}

type TokenInfo struct {
	Symbol      string     `json:"symbol"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	TotalSupply AmountInfo `json:"total_supply"`
}

type BlockInfo struct {
	Number     uint64 `json:"number"`
	Hash       string `json:"hash"`
	ParentHash string `json:"parent_hash"`
	Timestamp  uint64 `json:"timestamp"`
}

type LogEntry struct {
	Address     string   `json:"address"`
	Event       string   `json:"event,omitempty"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	Fields      any      `json:"fields,omitempty"`
	BlockNumber uint64   `json:"block_number"`
	TxHash      string   `json:"tx_hash"`
	Index       uint     `json:"log_index"`
}
