package main

import (
	"fmt"
	"strings"

	"github.com/kbukum/lazyseq/config"
	"github.com/kbukum/lazyseq/validation"
	"github.com/kbukum/lazyseq/value"
)

// fieldPathPattern matches a dotted path with no empty segments.
const fieldPathPattern = `^[^.]+(\.[^.]+)*$`

// Config is the seqq configuration document.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Query                QueryConfig `yaml:"query" mapstructure:"query"`
}

// QueryConfig describes one query: where elements come from, the
// non-terminal steps applied to them and the terminal that produces output.
type QueryConfig struct {
	Input    string `yaml:"input" mapstructure:"input" jsonschema:"description=JSON array file; empty or - reads stdin"`
	Terminal string `yaml:"terminal" mapstructure:"terminal" validate:"omitempty,oneof=to_array count sum average min max first last single element_at" jsonschema:"enum=to_array,enum=count,enum=sum,enum=average,enum=min,enum=max,enum=first,enum=last,enum=single,enum=element_at"`
	Index    int    `yaml:"index" mapstructure:"index" jsonschema:"description=position used by element_at"`
	Field    string `yaml:"field" mapstructure:"field" jsonschema:"description=selector path for sum/average/min/max and predicate path for count/first/last/single"`
	Steps    []Step `yaml:"steps" mapstructure:"steps" validate:"dive"`
	Pretty   bool   `yaml:"pretty" mapstructure:"pretty"`
}

// Step is one non-terminal operator.
type Step struct {
	Op     string `yaml:"op" mapstructure:"op" validate:"required,oneof=distinct except cast of_type skip take append prepend select where" jsonschema:"enum=distinct,enum=except,enum=cast,enum=of_type,enum=skip,enum=take,enum=append,enum=prepend,enum=select,enum=where"`
	Field  string `yaml:"field" mapstructure:"field" jsonschema:"description=dotted path into object elements"`
	Count  int    `yaml:"count" mapstructure:"count" validate:"gte=0"`
	Kind   string `yaml:"kind" mapstructure:"kind"`
	Values []any  `yaml:"values" mapstructure:"values"`
	Strict bool   `yaml:"strict" mapstructure:"strict" jsonschema:"description=compare by identity instead of equality"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "seqq"
	}
	c.ServiceConfig.ApplyDefaults()
	if c.Query.Terminal == "" {
		c.Query.Terminal = "to_array"
	}
}

// Validate checks the service section, the query tags, then the per-step
// rules tags cannot express.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(&c.Query); err != nil {
		return fmt.Errorf("query: %w", err)
	}

	v := validation.New()
	for i, s := range c.Query.Steps {
		field := fmt.Sprintf("query.steps[%d]", i)
		v.Pattern(field+".field", s.Field, fieldPathPattern)
		switch s.Op {
		case "select":
			v.Required(field+".field", s.Field)
		case "cast", "of_type":
			v.Required(field+".kind", s.Kind).
				OneOf(field+".kind", strings.ToLower(strings.TrimSpace(s.Kind)), value.KindNames())
		}
	}
	return v.Err()
}
