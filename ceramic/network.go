package ceramic

import (
	"fmt"
	"strings"
)

type NetworkKind int

const (
	Mainnet NetworkKind = iota
	TestnetClay
	DevUnstable
	Local
	InMemory
)

var networkNames = []string{"mainnet", "testnet-clay", "dev-unstable", "local", "in-memory"}

// Network identifies the ceramic network an event belongs to,
// local networks are further split by LocalID
type Network struct {
	Kind    NetworkKind
	LocalID uint32
}

func ParseNetwork(name string, localID uint32) (Network, error) {
	for i, n := range networkNames {
		if n == strings.ToLower(name) {
			return Network{Kind: NetworkKind(i), LocalID: localID}, nil
		}
	}
	return Network{}, fmt.Errorf("unknown network: %s", name)
}

func (n Network) String() string {
	if n.Kind == Local {
		return fmt.Sprintf("local(%d)", n.LocalID)
	}
	return networkNames[n.Kind]
}

// ID is the numeric network id carried in event ids
func (n Network) ID() uint64 {
	switch n.Kind {
	case Mainnet:
		return 0x00
	case TestnetClay:
		return 0x01
	case DevUnstable:
		return 0x02
	case Local:
		return 0x01_0000_0000 + uint64(n.LocalID)
	default:
		return 0xff
	}
}
