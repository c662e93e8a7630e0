// Package schema declares the fixed, ordered feature layout a model is
// trained against. The order is load-bearing: scaler statistics and the
// expanded matrix columns are indexed by it, and the same order must be
// reproduced at inference time.
package schema

// FieldKind tags how a feature column is consumed during preparation.
type FieldKind string

const (
	Numeric     FieldKind = "numeric"
	Categorical FieldKind = "categorical"
)

// Field is one declared input feature.
type Field struct {
	Name string    `json:"name" yaml:"name"`
	Kind FieldKind `json:"kind" yaml:"kind"`
}

// FeatureSchema is the ordered list of input features for one task.
type FeatureSchema struct {
	Fields []Field `json:"fields"`
}

// New builds a schema from numeric feature names followed by optional
// categorical names, preserving the given order.
func New(numeric []string, categorical ...string) FeatureSchema {
	fields := make([]Field, 0, len(numeric)+len(categorical))
	for _, n := range numeric {
		fields = append(fields, Field{Name: n, Kind: Numeric})
	}
	for _, c := range categorical {
		fields = append(fields, Field{Name: c, Kind: Categorical})
	}
	return FeatureSchema{Fields: fields}
}

// Names returns the declared feature names in schema order.
func (s FeatureSchema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// NumericNames returns only the numeric feature names, in schema order.
func (s FeatureSchema) NumericNames() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Kind == Numeric {
			names = append(names, f.Name)
		}
	}
	return names
}

// CategoricalNames returns only the categorical feature names, in schema order.
func (s FeatureSchema) CategoricalNames() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Kind == Categorical {
			names = append(names, f.Name)
		}
	}
	return names
}

// Len reports the number of declared features (before categorical expansion).
func (s FeatureSchema) Len() int { return len(s.Fields) }
