// Package artifact loads compiled contract artifacts produced by Hardhat or Foundry.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/nando-os/ghost-rpc/eth"
)

// Artifact is a contract interface together with its creation bytecode.
type Artifact struct {
	Name      string
	Interface *eth.ContractInterface
	Bytecode  []byte
}

type rawArtifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
}

// Load reads an artifact file.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return a, nil
}

// Parse decodes artifact JSON. Hardhat stores the bytecode as a hex string,
// Foundry as {"object": "0x..."}.
func Parse(data []byte) (*Artifact, error) {
	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON: %w", err)
	}
	if len(raw.ABI) == 0 {
		return nil, errors.New("artifact has no abi")
	}
	iface, err := eth.ParseContractInterface(string(raw.ABI))
	if err != nil {
		return nil, err
	}
	code, err := parseBytecode(raw.Bytecode)
	if err != nil {
		return nil, err
	}
	return &Artifact{Name: raw.ContractName, Interface: iface, Bytecode: code}, nil
}

func parseBytecode(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return nil, errors.New("artifact has no bytecode")
	}
	var hexCode string
	if err := json.Unmarshal(raw, &hexCode); err != nil {
		var foundry struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &foundry); err != nil {
			return nil, fmt.Errorf("unrecognised bytecode format: %w", err)
		}
		hexCode = foundry.Object
	}
	if !strings.HasPrefix(hexCode, "0x") {
		hexCode = "0x" + hexCode
	}
	code, err := hexutil.Decode(hexCode)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}
	if len(code) == 0 {
		return nil, errors.New("artifact bytecode is empty (abstract contract or interface?)")
	}
	return code, nil
}
