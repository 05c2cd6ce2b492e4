// Package config defines and loads the YAML manifest fleetd reads for its
// store paths and plugin directory; the manifest also carries per-agent
// config blocks, which are parsed but not applied to any agent.
package config
