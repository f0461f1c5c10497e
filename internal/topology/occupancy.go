package topology

import (
	"slices"

	"github.com/MRamiBalles/epicurves/internal/domain/agent"
)

// occupancy is a location -> agents multimap. Agents at a location keep
// their arrival order so neighbor scans are deterministic.
type occupancy[K comparable] struct {
	at    map[K][]agent.ID
	where map[agent.ID]K
}

func newOccupancy[K comparable]() occupancy[K] {
	return occupancy[K]{
		at:    make(map[K][]agent.ID),
		where: make(map[agent.ID]K),
	}
}

func (o *occupancy[K]) place(id agent.ID, k K) {
	o.at[k] = append(o.at[k], id)
	o.where[id] = k
}

// remove drops id from k. It reports false if id was not at k.
func (o *occupancy[K]) remove(id agent.ID, k K) bool {
	ids := o.at[k]
	i := slices.Index(ids, id)
	if i < 0 {
		return false
	}
	ids = slices.Delete(ids, i, i+1)
	if len(ids) == 0 {
		delete(o.at, k)
	} else {
		o.at[k] = ids
	}
	delete(o.where, id)
	return true
}

// move relocates id from one location to another. The index is left
// untouched if id is not at from.
func (o *occupancy[K]) move(id agent.ID, from, to K) bool {
	if !o.remove(id, from) {
		return false
	}
	o.place(id, to)
	return true
}

// occupants returns a copy of the agents at k.
func (o *occupancy[K]) occupants(k K) []agent.ID {
	return slices.Clone(o.at[k])
}

// locate returns where id currently is.
func (o *occupancy[K]) locate(id agent.ID) (K, bool) {
	k, ok := o.where[id]
	return k, ok
}

func (o *occupancy[K]) count() int {
	return len(o.where)
}
