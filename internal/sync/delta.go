package sync

// StateDelta is what changed between two SharedState snapshots,
// computed by ComputeDelta: added/removed/updated set comparison,
// tombstone-aware, plus a max()-mergeable counter.
type StateDelta struct {
	AddedProjects   []SharedProject
	RemovedProjects []string
	UpdatedProjects []SharedProject

	AddedSessions   []SharedSession
	RemovedSessions []string
	UpdatedSessions []SharedSession

	SessionCounter uint64
}

// IsEmpty reports whether the delta carries no observable change.
func (d StateDelta) IsEmpty() bool {
	return len(d.AddedProjects) == 0 && len(d.RemovedProjects) == 0 && len(d.UpdatedProjects) == 0 &&
		len(d.AddedSessions) == 0 && len(d.RemovedSessions) == 0 && len(d.UpdatedSessions) == 0
}

// ComputeDelta diffs old against new: entries present only in new are
// "added", present only in old are "removed", present in both but with
// a different UpdatedAt are "updated". Tombstoned records in new are
// excluded from added/updated and instead reported as removed, so a
// delete propagates the same way whether or not the deleting instance
// is still running when the observer polls.
func ComputeDelta(old, new SharedState) StateDelta {
	var d StateDelta
	d.SessionCounter = new.SessionCounter

	oldP := indexProjects(old.Projects)
	newP := indexProjects(new.Projects)
	for id, np := range newP {
		op, existed := oldP[id]
		switch {
		case np.Tombstone:
			if existed && !op.Tombstone {
				d.RemovedProjects = append(d.RemovedProjects, id)
			}
		case !existed:
			d.AddedProjects = append(d.AddedProjects, np)
		case op.UpdatedAt != np.UpdatedAt:
			d.UpdatedProjects = append(d.UpdatedProjects, np)
		}
	}
	for id, op := range oldP {
		if _, stillThere := newP[id]; !stillThere && !op.Tombstone {
			d.RemovedProjects = append(d.RemovedProjects, id)
		}
	}

	oldS := indexSessions(old.Sessions)
	newS := indexSessions(new.Sessions)
	for id, ns := range newS {
		os, existed := oldS[id]
		switch {
		case ns.Tombstone:
			if existed && !os.Tombstone {
				d.RemovedSessions = append(d.RemovedSessions, id)
			}
		case !existed:
			d.AddedSessions = append(d.AddedSessions, ns)
		case os.UpdatedAt != ns.UpdatedAt:
			d.UpdatedSessions = append(d.UpdatedSessions, ns)
		}
	}
	for id, os := range oldS {
		if _, stillThere := newS[id]; !stillThere && !os.Tombstone {
			d.RemovedSessions = append(d.RemovedSessions, id)
		}
	}

	return d
}

func indexProjects(ps []SharedProject) map[string]SharedProject {
	m := make(map[string]SharedProject, len(ps))
	for _, p := range ps {
		m[p.ID] = p
	}
	return m
}

func indexSessions(ss []SharedSession) map[string]SharedSession {
	m := make(map[string]SharedSession, len(ss))
	for _, s := range ss {
		m[s.ID] = s
	}
	return m
}

// MergeRecord applies the last-writer-wins-by-updated_at conflict
// policy: b wins ties and later timestamps, a wins strictly earlier
// ones from b.
func MergeRecord(a, b Record) Record {
	if b.UpdatedAt >= a.UpdatedAt {
		return b
	}
	return a
}

// MergeCounter merges two instance-scoped counters with max(), per
// §4.6's "counters merge with max()" rule.
func MergeCounter(local, remote uint64) uint64 {
	if remote > local {
		return remote
	}
	return local
}
