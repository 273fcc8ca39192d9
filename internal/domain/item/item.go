package item

import (
	"strings"
	"time"
)

// Status is the review state of a curated item.
type Status string

const (
	// StatusPending marks an item awaiting review.
	StatusPending Status = "pending"
	// StatusApproved marks an item accepted by a reviewer.
	StatusApproved Status = "approved"
	// StatusRejected marks an item rejected by a reviewer.
	StatusRejected Status = "rejected"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Reference is a supporting source attached to an item.
type Reference struct {
	url     string
	title   string
	excerpt string
}

// NewReference creates a reference.
func NewReference(url, title, excerpt string) Reference {
	return Reference{url: url, title: title, excerpt: excerpt}
}

// URL returns the reference URL.
func (r Reference) URL() string { return r.url }

// Title returns the reference title.
func (r Reference) Title() string { return r.title }

// Excerpt returns the quoted text of the reference.
func (r Reference) Excerpt() string { return r.excerpt }

// Item is a curated question/answer document.
// Tags are namespaced as "group:value" and matched on the full string.
type Item struct {
	id              string
	status          Status
	dataset         string
	question        string
	answer          string
	manualTags      []string
	computedTags    []string
	reviewedAt      *time.Time
	updatedAt       time.Time
	totalReferences int
	references      []Reference
}

// Reconstruct rebuilds an Item from storage without validation.
func Reconstruct(
	id string, status Status, dataset, question, answer string,
	manualTags, computedTags []string,
	reviewedAt *time.Time, updatedAt time.Time,
	totalReferences int, references []Reference,
) Item {
	return Item{
		id:              id,
		status:          status,
		dataset:         dataset,
		question:        question,
		answer:          answer,
		manualTags:      manualTags,
		computedTags:    computedTags,
		reviewedAt:      reviewedAt,
		updatedAt:       updatedAt,
		totalReferences: totalReferences,
		references:      references,
	}
}

// ID returns the unique item identifier.
func (i *Item) ID() string { return i.id }

// Status returns the review status.
func (i *Item) Status() Status { return i.status }

// Dataset returns the dataset the item belongs to.
func (i *Item) Dataset() string { return i.dataset }

// Question returns the question text.
func (i *Item) Question() string { return i.question }

// Answer returns the answer text.
func (i *Item) Answer() string { return i.answer }

// ManualTags returns reviewer-assigned tags.
func (i *Item) ManualTags() []string { return i.manualTags }

// ComputedTags returns pipeline-derived tags.
func (i *Item) ComputedTags() []string { return i.computedTags }

// ReviewedAt returns the review timestamp, nil if never reviewed.
func (i *Item) ReviewedAt() *time.Time { return i.reviewedAt }

// UpdatedAt returns the last modification timestamp.
func (i *Item) UpdatedAt() time.Time { return i.updatedAt }

// TotalReferences returns the stored reference count.
func (i *Item) TotalReferences() int { return i.totalReferences }

// References returns the attached references.
func (i *Item) References() []Reference { return i.references }

// HasAnswer reports whether the answer is non-empty after trimming whitespace.
func (i *Item) HasAnswer() bool {
	return strings.TrimSpace(i.answer) != ""
}

// TagSet returns the union of manual and computed tags.
func (i *Item) TagSet() map[string]struct{} {
	set := make(map[string]struct{}, len(i.manualTags)+len(i.computedTags))
	for _, t := range i.manualTags {
		set[t] = struct{}{}
	}
	for _, t := range i.computedTags {
		set[t] = struct{}{}
	}
	return set
}

// TagCount returns the size of the union of manual and computed tags.
func (i *Item) TagCount() int {
	return len(i.TagSet())
}

// HasTag reports whether tag is present in either tag list.
// Matching is on the full "group:value" string.
func (i *Item) HasTag(tag string) bool {
	for _, t := range i.manualTags {
		if t == tag {
			return true
		}
	}
	for _, t := range i.computedTags {
		if t == tag {
			return true
		}
	}
	return false
}

// AnyRefURLContains reports whether any reference URL contains sub.
// foldCase selects case-insensitive containment; default matching is case-sensitive.
func (i *Item) AnyRefURLContains(sub string, foldCase bool) bool {
	if foldCase {
		sub = strings.ToLower(sub)
	}
	for _, r := range i.references {
		url := r.url
		if foldCase {
			url = strings.ToLower(url)
		}
		if strings.Contains(url, sub) {
			return true
		}
	}
	return false
}

// MatchesKeyword reports whether kw appears as a substring in any of the
// item's text fields: question, answer, reference titles and excerpts.
// Matching folds case.
func (i *Item) MatchesKeyword(kw string) bool {
	kw = strings.ToLower(kw)
	if strings.Contains(strings.ToLower(i.question), kw) {
		return true
	}
	if strings.Contains(strings.ToLower(i.answer), kw) {
		return true
	}
	for _, r := range i.references {
		if strings.Contains(strings.ToLower(r.title), kw) {
			return true
		}
		if strings.Contains(strings.ToLower(r.excerpt), kw) {
			return true
		}
	}
	return false
}
