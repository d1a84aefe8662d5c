package app

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ggonzalez94/sushi-wallet/internal/contracts/amm"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/erc20"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/masterchef"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/wallet"
	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/model"
)

// knownABIs are searched in order; the first event with a matching name or
// topic wins. ERC-20 and pair Transfer events share a signature.
var knownABIs = []abi.ABI{
	wallet.ABI,
	wallet.FactoryABI,
	masterchef.V2ABI,
	masterchef.V1ABI,
	amm.PairABI,
	amm.FactoryABI,
	erc20.ABI,
}

func eventByName(name string) (abi.Event, bool) {
	for _, contractABI := range knownABIs {
		if event, ok := contractABI.Events[name]; ok {
			return event, true
		}
	}
	for _, contractABI := range knownABIs {
		for _, event := range contractABI.Events {
			if strings.EqualFold(event.Name, name) {
				return event, true
			}
		}
	}
	return abi.Event{}, false
}

func eventByTopic(topic common.Hash) (*abi.Event, bool) {
	for _, contractABI := range knownABIs {
		if event, err := contractABI.EventByID(topic); err == nil {
			return event, true
		}
	}
	return nil, false
}

// topicQuery builds the positional topic filter for an optional event name
// followed by indexed argument values. An empty value matches anything.
func topicQuery(eventName string, values []string) ([][]common.Hash, error) {
	var query [][]common.Hash
	if strings.TrimSpace(eventName) != "" {
		event, ok := eventByName(strings.TrimSpace(eventName))
		if !ok {
			return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("unknown event %q", eventName))
		}
		query = append(query, []common.Hash{event.ID})
	} else if len(values) > 0 {
		query = append(query, nil)
	}
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			query = append(query, nil)
			continue
		}
		topic, err := parseTopic(raw)
		if err != nil {
			return nil, err
		}
		query = append(query, []common.Hash{topic})
	}
	return query, nil
}

// parseTopic accepts a 32 byte hash or a 20 byte address, which is left padded.
func parseTopic(raw string) (common.Hash, error) {
	buf, err := hexutil.Decode(raw)
	if err != nil {
		return common.Hash{}, clierr.Wrap(clierr.CodeUsage, fmt.Sprintf("invalid topic %q", raw), err)
	}
	switch len(buf) {
	case common.HashLength, common.AddressLength:
		return common.BytesToHash(buf), nil
	default:
		return common.Hash{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("topic %q must be 20 or 32 bytes", raw))
	}
}

func logEntry(log types.Log) model.LogEntry {
	entry := model.LogEntry{
		Address:     log.Address.Hex(),
		Topics:      make([]string, 0, len(log.Topics)),
		Data:        hexutil.Encode(log.Data),
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		Index:       log.Index,
	}
	for _, topic := range log.Topics {
		entry.Topics = append(entry.Topics, topic.Hex())
	}
	if len(log.Topics) == 0 {
		return entry
	}
	event, ok := eventByTopic(log.Topics[0])
	if !ok {
		return entry
	}
	entry.Event = event.Name
	fields := map[string]any{}
	if err := event.Inputs.NonIndexed().UnpackIntoMap(fields, log.Data); err != nil {
		return entry
	}
	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if err := abi.ParseTopicsIntoMap(fields, indexed, log.Topics[1:]); err != nil {
		return entry
	}
	entry.Fields = stringifyFields(fields)
	return entry
}

// stringifyFields renders decoded values so big integers keep full precision
// in JSON.
func stringifyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for name, value := range fields {
		switch v := value.(type) {
		case common.Address:
			out[name] = v.Hex()
		case common.Hash:
			out[name] = v.Hex()
		case fmt.Stringer:
			out[name] = v.String()
		default:
			out[name] = v
		}
	}
	return out
}
