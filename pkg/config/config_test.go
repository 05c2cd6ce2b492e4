package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
apiVersion: fleetbot/v1
kind: Fleet
metadata:
  name: mainnet
  labels:
    env: prod
spec:
  store:
    persistentPath: /var/lib/fleetbot/persistent.db
    temporaryPath: /var/lib/fleetbot/temporary.db
  plugins:
    dir: /var/lib/fleetbot/plugins
  agents:
    chainRegistry:
      chains: ["cosmoshub", "osmosis"]
      gitPull: true
    validators:
      chains: ["cosmoshub"]
      continueKeyPrefix: validators_cursor
    fraudDetection:
      unixSocketPath: /run/fleetbot/fraud.sock
    dummy:
      enabled: true
`

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesEnvelopeAndAgents(t *testing.T) {
	path := writeManifest(t, sampleManifest)

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fleetbot/v1", m.APIVersion)
	assert.Equal(t, "mainnet", m.Metadata.Name)
	assert.Equal(t, "prod", m.Metadata.Labels["env"])

	require.NotNil(t, m.Spec.Agents.ChainRegistry)
	assert.Equal(t, []string{"cosmoshub", "osmosis"}, m.Spec.Agents.ChainRegistry.Chains)
	assert.True(t, m.Spec.Agents.ChainRegistry.GitPull)

	require.NotNil(t, m.Spec.Agents.Validators)
	assert.Equal(t, "validators_cursor", m.Spec.Agents.Validators.ContinueKeyPrefix)

	require.NotNil(t, m.Spec.Agents.FraudDetection)
	assert.Equal(t, "/run/fleetbot/fraud.sock", m.Spec.Agents.FraudDetection.UnixSocketPath)

	require.NotNil(t, m.Spec.Agents.Dummy)
	assert.True(t, m.Spec.Agents.Dummy.Enabled)

	assert.Nil(t, m.Spec.Agents.Pool)
}

func TestLoadRejectsWrongKind(t *testing.T) {
	path := writeManifest(t, "apiVersion: fleetbot/v1\nkind: Service\nmetadata:\n  name: x\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
