package core

// PublishStatus gates record mutability: only PRIVATE records may still be
// edited or deleted.
type PublishStatus string

const (
	PublishPrivate PublishStatus = "PRIVATE"
	PublishForSale PublishStatus = "PUBLISHED_FOR_SALE"
	PublishForRent PublishStatus = "PUBLISHED_FOR_RENT"
	PublishForBoth PublishStatus = "PUBLISHED_FOR_BOTH"
)

func (p PublishStatus) Editable() bool { return p == PublishPrivate }

func (p PublishStatus) Valid() bool {
	switch p {
	case PublishPrivate, PublishForSale, PublishForRent, PublishForBoth:
		return true
	}
	return false
}

// RecordStatus is the coarse lifecycle state of courses and lessons.
type RecordStatus string

const (
	StatusDraft     RecordStatus = "DRAFT"
	StatusCompleted RecordStatus = "COMPLETED"
	StatusArchived  RecordStatus = "ARCHIVED"
)
