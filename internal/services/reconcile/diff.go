package reconcile

// Result holds the changes needed to converge on the desired selection
type Result struct {
	ToAdd    Set
	ToRemove Set
}

// Empty reports whether no change is needed
func (r Result) Empty() bool {
	return r.ToAdd.Len() == 0 && r.ToRemove.Len() == 0
}

// Diff returns desired minus current as toAdd and current minus desired as
// toRemove. Neither input is modified.
func Diff(desired, current Set) (toAdd, toRemove Set) {
	toAdd = make(Set)
	toRemove = make(Set)
	for id := range desired {
		if !current.Has(id) {
			toAdd.Add(id)
		}
	}
	for id := range current {
		if !desired.Has(id) {
			toRemove.Add(id)
		}
	}
	return toAdd, toRemove
}

// Compute is Diff wrapped in a Result
func Compute(desired, current Set) Result {
	toAdd, toRemove := Diff(desired, current)
	return Result{ToAdd: toAdd, ToRemove: toRemove}
}

// Apply returns current with toAdd added and toRemove taken away
func Apply(current, toAdd, toRemove Set) Set {
	next := current.Clone()
	for id := range toAdd {
		next.Add(id)
	}
	for id := range toRemove {
		next.Remove(id)
	}
	return next
}
