package storage

import "fitsyncd/internal/providers"

// NewRemoteProbe adapts the remote store's health check into the probe the
// connectivity monitor polls.
func NewRemoteProbe(remote RemoteStoreInterface) providers.ProbeFunc {
	return remote.Probe
}
