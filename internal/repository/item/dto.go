package item

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	domitem "github.com/curatehq/curator/internal/domain/item"
)

// Hash field names for stored items. reviewed_missing is a 0/1 flag kept
// alongside reviewed_at so native ordering can push never-reviewed items
// after all reviewed ones in either direction.
const (
	fieldID              = "id"
	fieldStatus          = "status"
	fieldDataset         = "dataset"
	fieldQuestion        = "question"
	fieldAnswer          = "answer"
	fieldManualTags      = "manual_tags"
	fieldComputedTags    = "computed_tags"
	fieldReviewedAt      = "reviewed_at"
	fieldReviewedMissing = "reviewed_missing"
	fieldUpdatedAt       = "updated_at"
	fieldTotalRefs       = "total_references"
	fieldReferences      = "references"
)

const tagSeparator = ","

// loadFields is every field the engine reads back from the store.
var loadFields = []string{
	fieldID, fieldStatus, fieldDataset, fieldQuestion, fieldAnswer,
	fieldManualTags, fieldComputedTags,
	fieldReviewedAt, fieldReviewedMissing, fieldUpdatedAt,
	fieldTotalRefs, fieldReferences,
}

// refDoc is the JSON shape of one stored reference.
type refDoc struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
}

// buildHashFields converts a domain Item into a flat map[string]string for HSET.
func buildHashFields(it *domitem.Item) map[string]string {
	m := map[string]string{
		fieldID:           it.ID(),
		fieldStatus:       string(it.Status()),
		fieldDataset:      it.Dataset(),
		fieldQuestion:     it.Question(),
		fieldAnswer:       it.Answer(),
		fieldManualTags:   strings.Join(it.ManualTags(), tagSeparator),
		fieldComputedTags: strings.Join(it.ComputedTags(), tagSeparator),
		fieldUpdatedAt:    strconv.FormatInt(it.UpdatedAt().UnixMilli(), 10),
		fieldTotalRefs:    strconv.Itoa(it.TotalReferences()),
	}

	if r := it.ReviewedAt(); r != nil {
		m[fieldReviewedAt] = strconv.FormatInt(r.UnixMilli(), 10)
		m[fieldReviewedMissing] = "0"
	} else {
		m[fieldReviewedAt] = "0"
		m[fieldReviewedMissing] = "1"
	}

	if refs := it.References(); len(refs) > 0 {
		docs := make([]refDoc, len(refs))
		for i, r := range refs {
			docs[i] = refDoc{URL: r.URL(), Title: r.Title(), Excerpt: r.Excerpt()}
		}
		if data, err := json.Marshal(docs); err == nil {
			m[fieldReferences] = string(data)
		}
	}

	return m
}

// parseHashFields converts a flat hash map back into a domain Item.
func parseHashFields(m map[string]string) domitem.Item {
	var reviewedAt *time.Time
	if m[fieldReviewedMissing] != "1" {
		if ms, err := strconv.ParseInt(m[fieldReviewedAt], 10, 64); err == nil && ms > 0 {
			t := time.UnixMilli(ms).UTC()
			reviewedAt = &t
		}
	}

	var updatedAt time.Time
	if ms, err := strconv.ParseInt(m[fieldUpdatedAt], 10, 64); err == nil {
		updatedAt = time.UnixMilli(ms).UTC()
	}

	totalRefs, _ := strconv.Atoi(m[fieldTotalRefs])

	var references []domitem.Reference
	if raw := m[fieldReferences]; raw != "" {
		var docs []refDoc
		if err := json.Unmarshal([]byte(raw), &docs); err == nil {
			references = make([]domitem.Reference, len(docs))
			for i, d := range docs {
				references[i] = domitem.NewReference(d.URL, d.Title, d.Excerpt)
			}
		}
	}

	return domitem.Reconstruct(
		m[fieldID],
		domitem.Status(m[fieldStatus]),
		m[fieldDataset],
		m[fieldQuestion],
		m[fieldAnswer],
		splitTags(m[fieldManualTags]),
		splitTags(m[fieldComputedTags]),
		reviewedAt,
		updatedAt,
		totalRefs,
		references,
	)
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, tagSeparator)
}
