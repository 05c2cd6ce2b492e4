// Package config loads the YAML manifest that describes which agents a
// fleetd process should run and how each one is tuned, following the same
// apiVersion/kind/metadata/spec envelope the teacher's apply command reads.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the top-level envelope every fleetbot config file carries.
type Manifest struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

// Metadata names the fleet this manifest configures.
type Metadata struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

// Spec is the fleet's configuration body.
type Spec struct {
	Store   StoreSpec   `yaml:"store"`
	Plugins PluginsSpec `yaml:"plugins"`
	Agents  AgentsSpec  `yaml:"agents"`
}

// StoreSpec locates the two bbolt databases the runtime opens.
type StoreSpec struct {
	PersistentPath string `yaml:"persistentPath"`
	TemporaryPath  string `yaml:"temporaryPath"`
}

// PluginsSpec configures the plugin host.
type PluginsSpec struct {
	Dir string `yaml:"dir"`
}

// AgentsSpec holds one config block per cataloged agent kind, each
// optional: a kind the manifest omits is left nil. Load only parses these
// blocks; it does not start, select or tune any agent from them.
type AgentsSpec struct {
	ChainRegistry  *ChainRegistryConfig  `yaml:"chainRegistry,omitempty"`
	Params         *ParamsConfig         `yaml:"params,omitempty"`
	TallyResults   *TallyResultsConfig   `yaml:"tallyResults,omitempty"`
	ProposalFetch  *ProposalFetchConfig  `yaml:"proposalFetch,omitempty"`
	ProposalView   *ProposalViewConfig   `yaml:"proposalView,omitempty"`
	Validators     *ValidatorsConfig     `yaml:"validators,omitempty"`
	Pool           *PoolConfig           `yaml:"pool,omitempty"`
	FraudDetection *FraudDetectionConfig `yaml:"fraudDetection,omitempty"`
	Dummy          *DummyConfig          `yaml:"dummy,omitempty"`
}

// ChainRegistryConfig configures the chain-registry agent. Update interval
// and initial retry delay are fixed by the agent, not user-configurable,
// matching the original implementation's hardcoded defaults.
type ChainRegistryConfig struct {
	Chains      []string `yaml:"chains"`
	GitPath     string   `yaml:"gitPath,omitempty"`
	JSONPath    string   `yaml:"jsonPath,omitempty"`
	GitPull     bool     `yaml:"gitPull,omitempty"`
	SyncSeconds int64    `yaml:"syncIntervalSeconds,omitempty"`
}

// ParamsConfig configures the governance-params agent.
type ParamsConfig struct {
	Chains     []string `yaml:"chains"`
	ParamTypes []string `yaml:"paramTypes"`
}

// TallyResultsConfig configures the tally-results agent.
type TallyResultsConfig struct {
	Chains            []string `yaml:"chains"`
	ContinueKeyPrefix string   `yaml:"continueKeyPrefix,omitempty"`
}

// ProposalFetchConfig configures the proposal-fetch agent.
type ProposalFetchConfig struct {
	Chains            []string `yaml:"chains"`
	ContinueKeyPrefix string   `yaml:"continueKeyPrefix,omitempty"`
}

// ProposalViewConfig configures the proposal-view agent. It has no tunable
// options of its own; the store it watches is wired by the plugin, not the
// manifest.
type ProposalViewConfig struct{}

// ValidatorsConfig configures the validators agent.
type ValidatorsConfig struct {
	Chains            []string `yaml:"chains"`
	ContinueKeyPrefix string   `yaml:"continueKeyPrefix,omitempty"`
}

// PoolConfig configures the staking-pool agent.
type PoolConfig struct {
	Chains []string `yaml:"chains"`
}

// FraudDetectionConfig configures the fraud-detection agent.
type FraudDetectionConfig struct {
	UnixSocketPath string `yaml:"unixSocketPath,omitempty"`
	CSVFilePath    string `yaml:"csvFilePath,omitempty"`
}

// DummyConfig enables the reference dummy agent, useful for smoke-testing
// a fleet install without wiring any real chain data.
type DummyConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads and parses a manifest from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if m.Kind != "Fleet" {
		return nil, fmt.Errorf("config: unsupported kind %q, expected \"Fleet\"", m.Kind)
	}
	return &m, nil
}
