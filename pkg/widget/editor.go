package widget

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/signboard/pkg/errors"
)

// Editor is the editable view of one instance config.
type Editor interface {
	// Fields lists the editable fields with their current values.
	Fields() []Field

	// Set parses value for key and, when valid, reports the change
	// through the onChange callback the editor was built with.
	Set(key, value string) error
}

// Capability is a heavyweight editing resource (a map picker, an embed
// preview) that must be released when its editor goes away.
type Capability interface {
	Close() error
}

// Loader is implemented by editors whose capability loads asynchronously.
// Load may block; Attach is only called if the editor is still open when
// Load returns.
type Loader interface {
	Load(ctx context.Context) (Capability, error)
	Attach(c Capability)
}

// FieldKind selects how a field value is parsed.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
	FieldBool
	FieldChoice
	FieldList // "|"-separated strings
)

func (k FieldKind) String() string {
	switch k {
	case FieldNumber:
		return "number"
	case FieldBool:
		return "bool"
	case FieldChoice:
		return "choice"
	case FieldList:
		return "list"
	default:
		return "text"
	}
}

// Field is one editable value as shown to the operator.
type Field struct {
	Key     string
	Label   string
	Help    string
	Kind    FieldKind
	Value   string
	Choices []string
}

// FieldSpec declares a form field.
type FieldSpec struct {
	Key     string
	Label   string
	Help    string
	Kind    FieldKind
	Choices []string

	// Validate optionally rejects a raw value before it is parsed.
	Validate func(raw string) error
}

// Form is a declarative Editor over a fixed set of fields.
// Widgets with plain key/value settings build their editor from a Form.
type Form struct {
	cfg      Config
	onChange func(Config)
	specs    []FieldSpec
}

// NewForm creates a form editor over a copy of cfg.
func NewForm(cfg Config, onChange func(Config), specs ...FieldSpec) *Form {
	if onChange == nil {
		onChange = func(Config) {}
	}
	return &Form{cfg: cfg.Clone(), onChange: onChange, specs: specs}
}

// Fields implements Editor.
func (f *Form) Fields() []Field {
	out := make([]Field, 0, len(f.specs))
	for _, s := range f.specs {
		out = append(out, Field{
			Key:     s.Key,
			Label:   s.Label,
			Help:    s.Help,
			Kind:    s.Kind,
			Value:   formatValue(f.cfg[s.Key], s.Kind),
			Choices: s.Choices,
		})
	}
	return out
}

// Set implements Editor.
func (f *Form) Set(key, raw string) error {
	idx := slices.IndexFunc(f.specs, func(s FieldSpec) bool { return s.Key == key })
	if idx < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unknown field %q", key)
	}
	spec := f.specs[idx]
	if spec.Validate != nil {
		if err := spec.Validate(raw); err != nil {
			return err
		}
	}
	v, err := parseValue(spec, raw)
	if err != nil {
		return err
	}
	patch := Config{key: v}
	f.cfg = f.cfg.Merge(patch)
	f.onChange(patch)
	return nil
}

// Patch applies a multi-key patch directly, bypassing field parsing.
// Editors with capabilities use it to set several keys from one pick.
func (f *Form) Patch(patch Config) {
	f.cfg = f.cfg.Merge(patch)
	f.onChange(patch.Clone())
}

// Value returns the form's current value for key.
func (f *Form) Value(key string) any {
	return f.cfg[key]
}

func parseValue(spec FieldSpec, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch spec.Kind {
	case FieldNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a number", spec.Label, raw)
		}
		return n, nil
	case FieldBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not true/false", spec.Label, raw)
		}
		return b, nil
	case FieldChoice:
		if !slices.Contains(spec.Choices, raw) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not one of %s", spec.Label, raw, strings.Join(spec.Choices, ", "))
		}
		return raw, nil
	case FieldList:
		items := splitList(raw)
		out := make([]any, len(items))
		for i, s := range items {
			out[i] = s
		}
		return out, nil
	default:
		return raw, nil
	}
}

func formatValue(v any, kind FieldKind) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = fmt.Sprint(item)
		}
		if kind == FieldList {
			return strings.Join(parts, " | ")
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
