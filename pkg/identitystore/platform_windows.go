//go:build windows

package identitystore

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/windows/registry"
)

const (
	cryptographyPath = `SOFTWARE\Microsoft\Cryptography`
	machineGUIDName  = "MachineGuid"
)

// Platform returns the MachineGuid store.
func Platform() Store { return registryStore{} }

type registryStore struct{}

func (registryStore) Info() Info {
	return Info{
		Location:  `HKEY_LOCAL_MACHINE\` + cryptographyPath,
		ValueName: machineGUIDName,
		BackupExt: "reg",
	}
}

// Open opens the 64-bit view of the key so a 32-bit build still reaches
// the value other software reads.
func (s registryStore) Open(_ context.Context) (Key, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, cryptographyPath,
		registry.QUERY_VALUE|registry.SET_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry key %q: %w", cryptographyPath, err)
	}
	return &registryKey{key: k, info: s.Info()}, nil
}

type registryKey struct {
	key  registry.Key
	info Info
}

func (k *registryKey) Read() (string, error) {
	v, _, err := k.key.GetStringValue(k.info.ValueName)
	if errors.Is(err, registry.ErrNotExist) {
		return "", ErrValueNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", k.info.ValueName, err)
	}
	return v, nil
}

func (k *registryKey) Write(value string) error {
	if err := k.key.SetStringValue(k.info.ValueName, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", k.info.ValueName, err)
	}
	return nil
}

func (k *registryKey) Export(ctx context.Context, path string) error {
	return runReg(ctx, "export", k.info.Location, path, "/y")
}

func (k *registryKey) Import(ctx context.Context, path string) error {
	return runReg(ctx, "import", path)
}

func (k *registryKey) Close() error {
	return k.key.Close()
}

func runReg(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "reg.exe", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("reg.exe %s failed: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
