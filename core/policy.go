package core

// Owned is any record access-controlled by creator/owner ids. Authorization
// checks are centralized here rather than duplicated in each feature service.
type Owned interface {
	Creator() string
	Owners() []string
}

// CanEdit reports whether actorID may modify the record: it must be the
// creator and appear in the owner list.
func CanEdit(o Owned, actorID string) bool {
	if o.Creator() != actorID {
		return false
	}
	for _, id := range o.Owners() {
		if id == actorID {
			return true
		}
	}
	return false
}

// CanDelete reports whether actorID may remove the record: creators only.
func CanDelete(o Owned, actorID string) bool {
	return o.Creator() == actorID
}
