// FILE: pkg/markers/reconcile.go

package markers

// DiffResult lists how a remote listing differs from the local mirror.
type DiffResult struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// Empty reports whether the two sides already agree on the set of IDs.
func (d DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Diff compares the local mirror against a fresh remote listing by ID.
// Added holds IDs only present remotely, Removed those only present locally.
// Both keep the order of their source slice.
func Diff(local, remote []Marker) DiffResult {
	localIDs := make(map[string]struct{}, len(local))
	for _, m := range local {
		localIDs[m.ID] = struct{}{}
	}
	remoteIDs := make(map[string]struct{}, len(remote))
	for _, m := range remote {
		remoteIDs[m.ID] = struct{}{}
	}

	var result DiffResult
	for _, m := range remote {
		if _, ok := localIDs[m.ID]; !ok {
			result.Added = append(result.Added, m.ID)
		}
	}
	for _, m := range local {
		if _, ok := remoteIDs[m.ID]; !ok {
			result.Removed = append(result.Removed, m.ID)
		}
	}
	return result
}
