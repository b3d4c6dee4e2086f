package authority

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ruteri/royalty-registry/interfaces"
	"gopkg.in/yaml.v3"
)

// StaticAuthority resolves administrators from a fixed table.
// It backs development deployments without an RPC node and tests.
type StaticAuthority struct {
	mutex  sync.RWMutex
	admins map[interfaces.Address]interfaces.Address
}

// NewStaticAuthority creates an authority from an asset -> administrator table.
// The table is copied.
func NewStaticAuthority(admins map[interfaces.Address]interfaces.Address) *StaticAuthority {
	copied := make(map[interfaces.Address]interfaces.Address, len(admins))
	for asset, admin := range admins {
		copied[asset] = admin
	}
	return &StaticAuthority{admins: copied}
}

type staticFile struct {
	Assets map[string]string `yaml:"assets"`
}

// LoadStaticAuthority reads a YAML table of the form
//
//	assets:
//	  "0x4dfc2bEbc82201515e6b5C21e0FA7A7eEC06aAe5": "0x73316d4224263496201c3420b36cdda9c0249574"
func LoadStaticAuthority(r io.Reader) (*StaticAuthority, error) {
	var file staticFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode static authority: %w", err)
	}

	admins := make(map[interfaces.Address]interfaces.Address, len(file.Assets))
	for assetHex, adminHex := range file.Assets {
		asset, err := interfaces.ParseAddress(assetHex)
		if err != nil {
			return nil, fmt.Errorf("invalid asset: %w", err)
		}
		admin, err := interfaces.ParseAddress(adminHex)
		if err != nil {
			return nil, fmt.Errorf("invalid administrator of %s: %w", assetHex, err)
		}
		admins[asset] = admin
	}

	return &StaticAuthority{admins: admins}, nil
}

// LoadStaticAuthorityFile reads a YAML table from path.
func LoadStaticAuthorityFile(path string) (*StaticAuthority, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadStaticAuthority(f)
}

// SetAdministrator assigns or transfers the administration of an asset.
func (s *StaticAuthority) SetAdministrator(asset, admin interfaces.Address) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.admins[asset] = admin
}

// ResolveAdministrator returns the administrator from the table.
func (s *StaticAuthority) ResolveAdministrator(ctx context.Context, asset interfaces.Address) (interfaces.Address, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	admin, ok := s.admins[asset]
	if !ok || admin == interfaces.NullAddress {
		return interfaces.NullAddress, fmt.Errorf("%w: %s", interfaces.ErrAdministratorNotFound, asset.Hex())
	}
	return admin, nil
}
