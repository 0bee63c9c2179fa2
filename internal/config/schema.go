package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golobby/cast"
)

// ValueKind is the type a configuration value must parse as.
type ValueKind string

const (
	KindBool   ValueKind = "bool"
	KindInt    ValueKind = "int"
	KindString ValueKind = "string"
	KindEnum   ValueKind = "enum"
)

// KeySchema describes one configuration key. Range and choice rules come
// from the validate tag on the matching Configuration field, so `config set`
// and config loading reject the same values.
type KeySchema struct {
	Key         string
	Kind        ValueKind
	Default     any
	Description string
	Choices     []string
	rule        string
}

var keySchemas = []KeySchema{
	{Key: "catalog_dir", Kind: KindString, Default: "",
		Description: "Directory of extra feature descriptors (*.yaml) loaded after the built-in catalog"},
	{Key: "templates_dir", Kind: KindString, Default: "",
		Description: "Template tree used instead of the bundled templates"},
	{Key: "state_dir", Kind: KindString, Default: ProjectDirName,
		Description: "Project-relative directory for run state, answers and history"},
	{Key: "shell", Kind: KindString, Default: "sh",
		Description: "Shell used to run stage scripts (invoked with -c)"},
	{Key: "script_timeout", Kind: KindInt, Default: 600,
		Description: "Timeout in seconds for each stage script (0 disables)"},
	{Key: "max_retries", Kind: KindInt, Default: 3,
		Description: "Maximum attempts per stage across resumed runs"},
	{Key: "show_progress", Kind: KindBool, Default: true,
		Description: "Show stage progress spinners"},
	{Key: "non_interactive", Kind: KindBool, Default: false,
		Description: "Never prompt; unanswered prompts take their defaults"},
	{Key: "max_history_entries", Kind: KindInt, Default: 500,
		Description: "Maximum number of run history entries to retain"},
	{Key: "log_level", Kind: KindEnum, Default: "warn",
		Description: "Minimum level of diagnostic log output"},
	{Key: "log_format", Kind: KindEnum, Default: "console",
		Description: "Diagnostic log encoding"},
}

var (
	// KnownKeys indexes every configuration key by name.
	KnownKeys = map[string]KeySchema{}
	// KnownKeyOrder lists the keys in display order.
	KnownKeyOrder []string

	valueValidator = validator.New()
)

func init() {
	rules := fieldRules(reflect.TypeOf(Configuration{}))
	for _, s := range keySchemas {
		s.rule = rules[s.Key]
		if s.Kind == KindEnum {
			s.Choices = oneOf(s.rule)
		}
		KnownKeys[s.Key] = s
		KnownKeyOrder = append(KnownKeyOrder, s.Key)
	}
}

// fieldRules maps koanf key names to validate tags.
func fieldRules(t reflect.Type) map[string]string {
	rules := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := strings.Split(f.Tag.Get("koanf"), ",")[0]
		if key != "" {
			rules[key] = f.Tag.Get("validate")
		}
	}
	return rules
}

func oneOf(rule string) []string {
	for _, part := range strings.Split(rule, ",") {
		if choices, ok := strings.CutPrefix(part, "oneof="); ok {
			return strings.Fields(choices)
		}
	}
	return nil
}

// ErrUnknownKey is returned for keys outside KnownKeys.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema looks up key in KnownKeys.
func GetKeySchema(key string) (KeySchema, error) {
	s, ok := KnownKeys[key]
	if !ok {
		return KeySchema{}, ErrUnknownKey{Key: key}
	}
	return s, nil
}

// ValidateValue parses value as the kind key expects and checks it against
// the key's rule. The returned value is ready to be written to JSON.
func ValidateValue(key, value string) (any, error) {
	s, err := GetKeySchema(key)
	if err != nil {
		return nil, err
	}
	parsed, err := s.parse(value)
	if err != nil {
		return nil, err
	}
	if s.rule == "" {
		return parsed, nil
	}
	if err := valueValidator.Var(parsed, s.rule); err != nil {
		return nil, s.ruleError(value, err)
	}
	return parsed, nil
}

func (s KeySchema) parse(value string) (any, error) {
	switch s.Kind {
	case KindBool:
		// Only the literals; cast would also take 1, t and F.
		if value != "true" && value != "false" {
			return nil, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
		}
		return cast.FromString(value, cast.Bool)
	case KindInt:
		n, err := cast.FromString(value, cast.Int)
		if err != nil {
			return nil, fmt.Errorf("invalid integer: %q", value)
		}
		return n, nil
	default:
		return value, nil
	}
}

func (s KeySchema) ruleError(value string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	if fe.Tag() == "oneof" {
		return fmt.Errorf("invalid value: %q (valid options: %s)", value, strings.Join(s.Choices, ", "))
	}
	return fmt.Errorf("invalid value: %q (%s %s)", value, s.Key, describeRule(fe))
}

// Value returns the field of c tagged with koanf key.
func (c *Configuration) Value(key string) (any, bool) {
	v := reflect.ValueOf(c).Elem()
	for i := 0; i < v.NumField(); i++ {
		if strings.Split(v.Type().Field(i).Tag.Get("koanf"), ",")[0] == key {
			return v.Field(i).Interface(), true
		}
	}
	return nil, false
}
