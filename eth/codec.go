package eth

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Function describes one callable function of a contract interface.
type Function struct {
	Name      string
	Signature string // canonical, e.g. "setGreeting(string)"
	Selector  [4]byte
	Inputs    []string
	Outputs   []string
	ReadOnly  bool
}

// ContractInterface maps function names to their selectors and types.
// It is built once and safe for concurrent use.
type ContractInterface struct {
	abi abi.ABI
}

// NewContractInterface wraps a parsed ABI.
func NewContractInterface(parsed abi.ABI) *ContractInterface {
	return &ContractInterface{abi: parsed}
}

// ParseContractInterface parses a JSON ABI string.
func ParseContractInterface(abiJSON string) (*ContractInterface, error) {
	return LoadContractInterface(strings.NewReader(abiJSON))
}

// LoadContractInterface reads a JSON ABI.
func LoadContractInterface(r io.Reader) (*ContractInterface, error) {
	parsed, err := abi.JSON(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}
	return NewContractInterface(parsed), nil
}

// MustParseContractInterface is like ParseContractInterface but panics on error.
func MustParseContractInterface(abiJSON string) *ContractInterface {
	ci, err := ParseContractInterface(abiJSON)
	if err != nil {
		panic(err)
	}
	return ci
}

// ABI returns the underlying go-ethereum ABI.
func (ci *ContractInterface) ABI() abi.ABI {
	return ci.abi
}

// Function returns the description of the named function.
func (ci *ContractInterface) Function(name string) (Function, bool) {
	m, ok := ci.abi.Methods[name]
	if !ok {
		return Function{}, false
	}
	fn := Function{
		Name:      name,
		Signature: m.Sig,
		Inputs:    argumentTypes(m.Inputs),
		Outputs:   argumentTypes(m.Outputs),
		ReadOnly:  m.IsConstant(),
	}
	copy(fn.Selector[:], m.ID)
	return fn, true
}

// Selector returns the 4-byte selector of the named function.
func (ci *ContractInterface) Selector(name string) ([4]byte, error) {
	fn, ok := ci.Function(name)
	if !ok {
		return [4]byte{}, &EncodingError{Function: name, Err: ErrFunctionNotFound}
	}
	return fn.Selector, nil
}

// Functions returns the function names in sorted order.
func (ci *ContractInterface) Functions() []string {
	names := make([]string, 0, len(ci.abi.Methods))
	for name := range ci.abi.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EncodeCall returns the selector of name followed by the packed args.
func (ci *ContractInterface) EncodeCall(name string, args ...any) ([]byte, error) {
	if _, ok := ci.abi.Methods[name]; !ok {
		return nil, &EncodingError{Function: name, Err: ErrFunctionNotFound}
	}
	data, err := ci.abi.Pack(name, args...)
	if err != nil {
		return nil, &EncodingError{Function: name, Err: err}
	}
	return data, nil
}

// EncodeConstructor packs constructor arguments, to be appended to bytecode.
func (ci *ContractInterface) EncodeConstructor(args ...any) ([]byte, error) {
	if len(args) > 0 && len(ci.abi.Constructor.Inputs) == 0 {
		return nil, &EncodingError{Function: "constructor", Err: fmt.Errorf("interface declares no constructor inputs, got %d arguments", len(args))}
	}
	data, err := ci.abi.Pack("", args...)
	if err != nil {
		return nil, &EncodingError{Function: "constructor", Err: err}
	}
	return data, nil
}

// DecodeResult unpacks the return data of name into ordered values.
func (ci *ContractInterface) DecodeResult(name string, data []byte) ([]any, error) {
	method, ok := ci.abi.Methods[name]
	if !ok {
		return nil, &DecodingError{Function: name, Length: len(data), Err: ErrFunctionNotFound}
	}
	values, err := ci.abi.Unpack(name, data)
	if err != nil {
		return nil, &DecodingError{Function: name, Length: len(data), Err: err}
	}
	// Unpack ignores bytes past the last slot it reads.
	encoded, err := method.Outputs.Pack(values...)
	if err != nil {
		return nil, &DecodingError{Function: name, Length: len(data), Err: err}
	}
	if len(encoded) != len(data) {
		return nil, &DecodingError{Function: name, Length: len(data), Err: fmt.Errorf("%w: want %d bytes", ErrLengthMismatch, len(encoded))}
	}
	return values, nil
}

func argumentTypes(args abi.Arguments) []string {
	types := make([]string, len(args))
	for i, arg := range args {
		types[i] = arg.Type.String()
	}
	return types
}
