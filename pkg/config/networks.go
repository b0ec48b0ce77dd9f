package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// DefaultNetwork is used when ETH_NETWORK is not set.
const DefaultNetwork = "testnet"

// Network is a named JSON-RPC endpoint and the chain it serves.
type Network struct {
	Name    string `toml:"-"`
	RPCURL  string `toml:"rpc_url"`
	ChainID int64  `toml:"chain_id"`
}

// Networks maps network names to their settings.
type Networks map[string]Network

// DefaultNetworks returns the built-in presets.
func DefaultNetworks() Networks {
	return Networks{
		"mainnet":    {Name: "mainnet", RPCURL: "https://mainnet.hashio.io/api", ChainID: 295},
		"testnet":    {Name: "testnet", RPCURL: "https://testnet.hashio.io/api", ChainID: 296},
		"previewnet": {Name: "previewnet", RPCURL: "https://previewnet.hashio.io/api", ChainID: 297},
		"local":      {Name: "local", RPCURL: "http://localhost:7546", ChainID: 298},
	}
}

// Merge returns n with the entries of other added or replaced.
func (n Networks) Merge(other Networks) Networks {
	out := make(Networks, len(n)+len(other))
	for name, network := range n {
		out[name] = network
	}
	for name, network := range other {
		out[name] = network
	}
	return out
}

type networksFile struct {
	Networks map[string]Network `toml:"networks"`
}

// LoadNetworks reads network definitions from a TOML file of the form
//
//	[networks.local]
//	rpc_url = "http://localhost:8545"
//	chain_id = 31337
func LoadNetworks(path string) (Networks, error) {
	var file networksFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to read networks file %s: %w", path, err)
	}
	out := make(Networks, len(file.Networks))
	for name, network := range file.Networks {
		if network.RPCURL == "" {
			return nil, fmt.Errorf("network %q in %s has no rpc_url", name, path)
		}
		network.Name = name
		out[name] = network
	}
	return out, nil
}
