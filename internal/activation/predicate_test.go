// Package activation_test tests predicate evaluation over answers and active feature ids.
// Related: internal/activation/predicate.go, internal/activation/equality.go
// Tags: activation, predicates, equals, includesValue, and, or, not
package activation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapAnswers map[string]any

func (m mapAnswers) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func TestEvaluate_NilPredicateIsTrue(t *testing.T) {
	t.Parallel()
	assert.True(t, Evaluate(nil, mapAnswers{}, nil))
}

func TestEvaluate_MissingKeyIsFalse(t *testing.T) {
	t.Parallel()

	answers := mapAnswers{"other": "x"}
	preds := map[string]Predicate{
		"equals":         Equals("missing", "x"),
		"equals bool":    Equals("missing", false),
		"equals nil":     Equals("missing", nil),
		"includesValue":  IncludesValue("missing", "x"),
		"and of missing": And(Equals("missing", 1)),
		"or of missing":  Or(IncludesValue("missing", "a"), Equals("missing", "b")),
	}

	for name, p := range preds {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.NotPanics(t, func() {
				assert.False(t, Evaluate(p, answers, nil))
			})
		})
	}
}

func TestEvaluate_NilAnswers(t *testing.T) {
	t.Parallel()
	assert.False(t, Evaluate(Equals("x", true), nil, nil))
	assert.True(t, Evaluate(Not(Equals("x", true)), nil, nil))
}

func TestEquals(t *testing.T) {
	t.Parallel()

	answers := mapAnswers{
		"enableDevX":       true,
		"databaseProvider": "postgresql",
		"port":             3000,
		"ratio":            0.5,
		"apiFeatures":      []any{"graphql", "rest"},
	}

	tests := map[string]struct {
		key   string
		value any
		want  bool
	}{
		"bool match":                {key: "enableDevX", value: true, want: true},
		"bool mismatch":             {key: "enableDevX", value: false, want: false},
		"bool vs string":            {key: "enableDevX", value: "true", want: false},
		"string match":              {key: "databaseProvider", value: "postgresql", want: true},
		"string mismatch":           {key: "databaseProvider", value: "mysql", want: false},
		"int match":                 {key: "port", value: 3000, want: true},
		"int vs float64 same value": {key: "port", value: float64(3000), want: true},
		"int vs string":             {key: "port", value: "3000", want: false},
		"float match":               {key: "ratio", value: 0.5, want: true},
		"list shallow equal":        {key: "apiFeatures", value: []any{"graphql", "rest"}, want: true},
		"list typed slice equal":    {key: "apiFeatures", value: []string{"graphql", "rest"}, want: true},
		"list different order":      {key: "apiFeatures", value: []any{"rest", "graphql"}, want: false},
		"list vs scalar":            {key: "apiFeatures", value: "graphql", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Evaluate(Equals(tt.key, tt.value), answers, nil))
		})
	}
}

func TestIncludesValue(t *testing.T) {
	t.Parallel()

	answers := mapAnswers{
		"apiFeatures":       []any{"graphql", "websockets"},
		"projectWorkspaces": []string{"frontend", "backend"},
		"ports":             []any{3000, 4000},
		"scalar":            "graphql",
		"empty":             []any{},
	}

	tests := map[string]struct {
		key   string
		value any
		want  bool
	}{
		"present":             {key: "apiFeatures", value: "graphql", want: true},
		"absent from list":    {key: "apiFeatures", value: "rest", want: false},
		"typed string slice":  {key: "projectWorkspaces", value: "backend", want: true},
		"numeric element":     {key: "ports", value: float64(4000), want: true},
		"scalar not a list":   {key: "scalar", value: "graphql", want: false},
		"empty list":          {key: "empty", value: "graphql", want: false},
		"type mismatch value": {key: "ports", value: "3000", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Evaluate(IncludesValue(tt.key, tt.value), answers, nil))
		})
	}
}

func TestBooleanCombinators(t *testing.T) {
	t.Parallel()

	answers := mapAnswers{"a": true, "b": false}
	yes := Equals("a", true)
	no := Equals("b", true)

	tests := map[string]struct {
		pred Predicate
		want bool
	}{
		"empty and is vacuously true": {pred: And(), want: true},
		"empty or is vacuously false": {pred: Or(), want: false},
		"and all true":                {pred: And(yes, yes), want: true},
		"and one false":               {pred: And(yes, no), want: false},
		"or one true":                 {pred: Or(no, yes), want: true},
		"or all false":                {pred: Or(no, no), want: false},
		"not true":                    {pred: Not(yes), want: false},
		"not false":                   {pred: Not(no), want: true},
		"not of missing key":          {pred: Not(Equals("missing", true)), want: true},
		"nested":                      {pred: And(Or(no, yes), Not(no)), want: true},
		"not nil operand":             {pred: Not(nil), want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Evaluate(tt.pred, answers, nil))
		})
	}
}

// panicPredicate fails the test if evaluated; used to prove short-circuiting.
type panicPredicate struct{}

func (panicPredicate) Eval(Env) bool  { panic("evaluated past short circuit") }
func (panicPredicate) String() string { return "panic" }

func TestShortCircuit(t *testing.T) {
	t.Parallel()

	answers := mapAnswers{"a": true}
	assert.NotPanics(t, func() {
		assert.False(t, Evaluate(And(Equals("a", false), panicPredicate{}), answers, nil))
		assert.True(t, Evaluate(Or(Equals("a", true), panicPredicate{}), answers, nil))
	})
}

func TestFeatureActive(t *testing.T) {
	t.Parallel()

	active := NewIDSet("prisma")
	assert.True(t, Evaluate(FeatureActive("prisma"), nil, active))
	assert.False(t, Evaluate(FeatureActive("tailwind"), nil, active))
	assert.False(t, Evaluate(FeatureActive("prisma"), nil, nil))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		pred    Predicate
		wantErr error
	}{
		"nil is valid":           {pred: nil},
		"valid tree":             {pred: And(Equals("a", 1), Or(Not(FeatureActive("x"))))},
		"empty equals key":       {pred: Equals("", 1), wantErr: ErrInvalidPredicate},
		"empty includes key":     {pred: IncludesValue("", 1), wantErr: ErrInvalidPredicate},
		"nil child in and":       {pred: And(Equals("a", 1), nil), wantErr: ErrInvalidPredicate},
		"nil operand in not":     {pred: Not(nil), wantErr: ErrInvalidPredicate},
		"empty feature id":       {pred: FeatureActive(""), wantErr: ErrInvalidPredicate},
		"foreign predicate type": {pred: panicPredicate{}, wantErr: ErrUnknownPredicate},
		"foreign type nested":    {pred: Or(panicPredicate{}), wantErr: ErrUnknownPredicate},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tt.pred)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRefsAndKeys(t *testing.T) {
	t.Parallel()

	p := And(Equals("enableDevX", true), Or(FeatureActive("prisma"), Not(IncludesValue("apiFeatures", "graphql"))))
	assert.Equal(t, []string{"prisma"}, FeatureRefs(p))
	assert.Equal(t, []string{"enableDevX", "apiFeatures"}, Keys(p))
	assert.Nil(t, FeatureRefs(nil))
}

func TestString(t *testing.T) {
	t.Parallel()

	p := And(Equals("db", "postgresql"), Not(FeatureActive("x")), Or())
	assert.Equal(t, `and(equals(db, "postgresql"), not(featureActive(x)), or())`, p.String())
}

func TestIDSet(t *testing.T) {
	t.Parallel()

	s := NewIDSet("b", "a")
	clone := s.Clone()
	clone.Add("c")

	assert.Equal(t, []string{"a", "b"}, s.Sorted())
	assert.Equal(t, []string{"a", "b", "c"}, clone.Sorted())
}
