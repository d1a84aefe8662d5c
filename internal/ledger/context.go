package ledger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const maxCallDepth = 64

// execEnv is shared by every frame of one transaction or read-only call.
type execEnv struct {
	chain  *Chain
	header *types.Header
	origin common.Address
}

func (env *execEnv) call(from, to common.Address, value *big.Int, data []byte, depth int) ([]byte, error) {
	if depth > maxCallDepth {
		return nil, Revert("max call depth exceeded")
	}
	state := env.chain.state
	sn := state.Snapshot()
	out, err := env.run(from, to, value, data, depth)
	if err != nil {
		state.Revert(sn)
		return nil, err
	}
	state.Commit(sn)
	return out, nil
}

func (env *execEnv) run(from, to common.Address, value *big.Int, data []byte, depth int) ([]byte, error) {
	chain := env.chain
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() > 0 {
		if err := chain.move(from, to, value); err != nil {
			return nil, err
		}
	}
	class, ok := chain.classAt(to)
	if !ok {
		return nil, nil
	}
	contract := class.New(to)
	cc := &Context{env: env, self: to, from: from, value: value, depth: depth}
	if len(data) == 0 {
		receiver, ok := contract.(Receiver)
		if !ok {
			return nil, Revert("")
		}
		return nil, receiver.Receive(cc)
	}
	if len(data) < 4 {
		return nil, Revert("")
	}
	method, err := class.ABI.MethodById(data[:4])
	if err != nil {
		return nil, Revert("")
	}
	if value.Sign() > 0 && !method.IsPayable() {
		return nil, Revert("")
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, Revert("")
	}
	results, err := contract.Invoke(cc, method.Name, args)
	if err != nil {
		return nil, err
	}
	out, err := method.Outputs.Pack(results...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: pack outputs: %w", class.Name, method.Name, err)
	}
	return out, nil
}

func (env *execEnv) create(deployer, addr common.Address, className string, args []any, depth int) error {
	chain := env.chain
	class, ok := chain.classes[className]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClass, className)
	}
	if _, exists := chain.classAt(addr); exists {
		return Revert("contract address collision")
	}
	normalized, err := constructorArgs(class, args)
	if err != nil {
		return err
	}
	state := chain.state
	sn := state.Snapshot()
	state.Set(accountKey(tagCode, addr), []byte(className))
	cc := &Context{env: env, self: addr, from: deployer, value: new(big.Int), depth: depth}
	if err := class.New(addr).OnCreate(cc, normalized); err != nil {
		state.Revert(sn)
		return err
	}
	state.Commit(sn)
	return nil
}

// Context is the view a contract has of the chain while it executes.
type Context struct {
	env   *execEnv
	self  common.Address
	from  common.Address
	value *big.Int
	depth int
}

func (cc *Context) Self() common.Address   { return cc.self }
func (cc *Context) From() common.Address   { return cc.from }
func (cc *Context) Origin() common.Address { return cc.env.origin }

// Value is the native amount attached to the current call.
func (cc *Context) Value() *big.Int {
	return new(big.Int).Set(cc.value)
}

func (cc *Context) BlockNumber() uint64 {
	return cc.env.header.Number.Uint64()
}

func (cc *Context) Timestamp() uint64 {
	return cc.env.header.Time
}

func (cc *Context) Data(key []byte) []byte {
	return cc.env.chain.state.Get(storageKey(cc.self, key))
}

func (cc *Context) SetData(key []byte, value []byte) {
	cc.env.chain.state.Set(storageKey(cc.self, key), value)
}

func (cc *Context) BigData(key []byte) *big.Int {
	return new(big.Int).SetBytes(cc.Data(key))
}

// SetBigData stores a non-negative integer.
func (cc *Context) SetBigData(key []byte, value *big.Int) {
	if value == nil || value.Sign() == 0 {
		cc.SetData(key, nil)
		return
	}
	cc.SetData(key, value.Bytes())
}

// IntData reads a signed integer stored by SetIntData.
func (cc *Context) IntData(key []byte) *big.Int {
	raw := cc.Data(key)
	if len(raw) == 0 {
		return new(big.Int)
	}
	out := new(big.Int).SetBytes(raw[1:])
	if raw[0] == 1 {
		out.Neg(out)
	}
	return out
}

func (cc *Context) SetIntData(key []byte, value *big.Int) {
	if value == nil || value.Sign() == 0 {
		cc.SetData(key, nil)
		return
	}
	sign := byte(0)
	if value.Sign() < 0 {
		sign = 1
	}
	cc.SetData(key, append([]byte{sign}, new(big.Int).Abs(value).Bytes()...))
}

func (cc *Context) AddressData(key []byte) common.Address {
	return common.BytesToAddress(cc.Data(key))
}

func (cc *Context) SetAddressData(key []byte, addr common.Address) {
	if addr == (common.Address{}) {
		cc.SetData(key, nil)
		return
	}
	cc.SetData(key, addr.Bytes())
}

func (cc *Context) StringData(key []byte) string {
	return string(cc.Data(key))
}

func (cc *Context) SetStringData(key []byte, value string) {
	cc.SetData(key, []byte(value))
}

// Balance returns the native balance of addr.
func (cc *Context) Balance(addr common.Address) *big.Int {
	return cc.env.chain.balance(addr)
}

// Transfer sends native currency from the executing contract, running the
// receiver hook when the recipient is a contract.
func (cc *Context) Transfer(to common.Address, amount *big.Int) error {
	_, err := cc.env.call(cc.self, to, amount, nil, cc.depth+1)
	return err
}

// Exec calls method on the contract at to with the executing contract as
// sender and returns the unpacked outputs.
func (cc *Context) Exec(to common.Address, method string, args ...any) ([]any, error) {
	class, ok := cc.env.chain.classAt(to)
	if !ok {
		return nil, Revertf("call to non-contract %s", to.Hex())
	}
	data, err := class.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: pack: %w", class.Name, method, err)
	}
	out, err := cc.env.call(cc.self, to, nil, data, cc.depth+1)
	if err != nil {
		return nil, err
	}
	results, err := class.ABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: unpack: %w", class.Name, method, err)
	}
	return results, nil
}

// Deploy creates a contract at the address derived from the executing
// contract and its nonce.
func (cc *Context) Deploy(className string, args ...any) (common.Address, error) {
	chain := cc.env.chain
	nonce := chain.nonce(cc.self)
	addr := crypto.CreateAddress(cc.self, nonce)
	chain.setNonce(cc.self, nonce+1)
	if err := cc.env.create(cc.self, addr, className, args, cc.depth+1); err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

// Deploy2 creates a new contract at the CREATE2 address derived from the
// executing contract, salt and initCodeHash.
func (cc *Context) Deploy2(className string, salt [32]byte, initCodeHash common.Hash, args ...any) (common.Address, error) {
	addr := crypto.CreateAddress2(cc.self, salt, initCodeHash.Bytes())
	if err := cc.env.create(cc.self, addr, className, args, cc.depth+1); err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

// Emit records an event declared in the executing contract's ABI. Arguments
// follow the declaration order, indexed or not.
func (cc *Context) Emit(name string, args ...any) error {
	class, ok := cc.env.chain.classAt(cc.self)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoCode, cc.self.Hex())
	}
	event, ok := class.ABI.Events[name]
	if !ok {
		return fmt.Errorf("%s: unknown event %s", class.Name, name)
	}
	if len(args) != len(event.Inputs) {
		return fmt.Errorf("%s.%s: want %d arguments, got %d", class.Name, name, len(event.Inputs), len(args))
	}
	topics := []common.Hash{event.ID}
	var plain []any
	for i, input := range event.Inputs {
		if !input.Indexed {
			plain = append(plain, args[i])
			continue
		}
		topic, err := abi.MakeTopics([]any{args[i]})
		if err != nil {
			return fmt.Errorf("%s.%s: topic %s: %w", class.Name, name, input.Name, err)
		}
		topics = append(topics, topic[0][0])
	}
	data, err := event.Inputs.NonIndexed().Pack(plain...)
	if err != nil {
		return fmt.Errorf("%s.%s: pack: %w", class.Name, name, err)
	}
	cc.env.chain.state.AddLog(&types.Log{Address: cc.self, Topics: topics, Data: data})
	return nil
}
