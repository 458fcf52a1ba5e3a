// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis seeds a fresh instance: initial asset balances and
// the reward token metadata, loaded from a yaml file.
package genesis

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/stakepoint/stakepoint/stakepoint"
	"github.com/stakepoint/stakepoint/state"
	"github.com/stakepoint/stakepoint/token"
)

// Allocation is one initial balance grant.
type Allocation struct {
	Address hexAddress `yaml:"address"`
	Balance uint64     `yaml:"balance"`
}

// Genesis is the seed description of an instance.
type Genesis struct {
	Allocations []Allocation   `yaml:"allocations"`
	RewardToken token.Metadata `yaml:"rewardToken"`
}

// Load reads a genesis from yaml.
func Load(r io.Reader) (*Genesis, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var g Genesis
	if err := dec.Decode(&g); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &g, nil
}

// LoadFile reads a genesis from the yaml file at path.
func LoadFile(path string) (*Genesis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open genesis file")
	}
	defer f.Close()
	return Load(f)
}

// Dev returns the built-in development genesis.
func Dev() *Genesis {
	return &Genesis{
		RewardToken: token.Metadata{
			Name:   "Reward Token",
			Symbol: "REWARD",
		},
	}
}

var appliedKey = stakepoint.Keccak256([]byte("genesis-applied"))

// Apply seeds st and tok and commits. A reopened instance is left
// untouched.
func (g *Genesis) Apply(st *state.State, tok *token.Token) error {
	raw, err := st.GetRawStorage(appliedKey)
	if err != nil {
		return err
	}
	if len(raw) != 0 {
		return nil
	}
	st.SetRawStorage(appliedKey, []byte{1})
	for _, alloc := range g.Allocations {
		st.SetBalance(stakepoint.Address(alloc.Address), alloc.Balance)
	}
	if g.RewardToken.Name != "" {
		if err := tok.RegisterMetadata(g.RewardToken); err != nil && err != token.ErrMetadataExists {
			return err
		}
	}
	return st.Commit()
}

// hexAddress parses a 0x-prefixed address from yaml.
type hexAddress stakepoint.Address

func (a *hexAddress) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := stakepoint.ParseAddress(s)
	if err != nil {
		return errors.Wrap(err, "genesis address")
	}
	*a = hexAddress(*parsed)
	return nil
}
