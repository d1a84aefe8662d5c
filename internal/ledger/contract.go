package ledger

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Contract is the Go implementation behind a deployed address. Instances are
// stateless handles; all state lives in the ledger under the contract address.
type Contract interface {
	OnCreate(cc *Context, args []any) error
	Invoke(cc *Context, method string, args []any) ([]any, error)
}

// Receiver is implemented by contracts that accept plain value transfers.
type Receiver interface {
	Receive(cc *Context) error
}

// Class binds a contract implementation to the ABI used to dispatch calls.
type Class struct {
	Name string
	ABI  abi.ABI
	New  func(addr common.Address) Contract
}

// MustABI parses an ABI definition and panics on malformed input.
func MustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("parse abi: %v", err))
	}
	return parsed
}

// constructorArgs normalises constructor arguments through the ABI so the
// contract sees the same Go types it would receive from calldata.
func constructorArgs(class Class, args []any) ([]any, error) {
	inputs := class.ABI.Constructor.Inputs
	if len(inputs) == 0 {
		if len(args) != 0 {
			return nil, fmt.Errorf("%s: constructor takes no arguments", class.Name)
		}
		return nil, nil
	}
	packed, err := inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("%s: pack constructor: %w", class.Name, err)
	}
	return inputs.Unpack(packed)
}
