package db

// FilterBuilder is a fluent builder for native-safe filter expressions.
type FilterBuilder struct {
	expr FilterExpr
}

// NewFilter starts building a filter expression.
func NewFilter() *FilterBuilder {
	return &FilterBuilder{}
}

// Equal adds an exact-match predicate. Empty values are skipped so callers
// can chain optional filters without branching.
func (b *FilterBuilder) Equal(field, value string) *FilterBuilder {
	if value != "" {
		b.expr.conds = append(b.expr.conds, FilterCond{Field: field, Value: value, Op: OpEqual})
	}
	return b
}

// Prefix adds a prefix-match predicate. Empty prefixes are skipped.
func (b *FilterBuilder) Prefix(field, prefix string) *FilterBuilder {
	if prefix != "" {
		b.expr.conds = append(b.expr.conds, FilterCond{Field: field, Value: prefix, Op: OpPrefix})
	}
	return b
}

// Build returns the filter expression.
func (b *FilterBuilder) Build() FilterExpr {
	return b.expr
}

// IndexBuilder is a fluent builder for FT index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an FT index definition over hash documents.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Tag adds a TAG field to the index.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldTag})
	return b
}

// SortableTag adds a TAG field with SORTABLE.
func (b *IndexBuilder) SortableTag(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldTag, Sortable: true})
	return b
}

// Numeric adds a NUMERIC field to the index.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldNumeric})
	return b
}

// SortableNumeric adds a NUMERIC field with SORTABLE.
func (b *IndexBuilder) SortableNumeric(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldNumeric, Sortable: true})
	return b
}

// Text adds a TEXT field to the index.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldText})
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
