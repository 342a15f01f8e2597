package transform

import (
	"os"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/call-insights/internal/model"
)

// Kind identifies a transform.
type Kind string

const (
	KindAnalysis  Kind = "analysis"
	KindInsights  Kind = "insights"
	KindCreatives Kind = "creatives"
)

// PromptSpec is the role instruction and prompt template for one kind.
type PromptSpec struct {
	System   string `yaml:"system"`
	Template string `yaml:"template"`
}

// DefaultPromptSpecs are the built-in prompts.
var DefaultPromptSpecs = map[Kind]PromptSpec{
	KindAnalysis: {
		System: "Ты — продуктовый аналитик, который анализирует обращения клиентов.",
		Template: `Проанализируй расшифровку телефонного звонка клиента.

Расшифровка:
"""
{{.Transcript}}
"""

Верни только JSON-объект без пояснений со следующими полями:
- "main_problem": главная проблема клиента одним предложением;
- "key_fear": ключевой страх или опасение клиента;
- "result_solution": какой результат клиент хочет получить;
- "original_phrases": массив дословных цитат клиента (до 5);
- "tags": массив коротких тегов темы обращения.`,
	},
	KindInsights: {
		System: "Ты — продуктовый аналитик, который анализирует клиентские обращения для улучшения продукта.",
		Template: `На основе анализа обращения клиента предложи улучшения продукта.

Проблема: {{.Analysis.MainProblem}}
Страх: {{.Analysis.KeyFear}}
Желаемый результат: {{.Analysis.ResultSolution}}
Цитаты: {{join .Analysis.OriginalPhrases}}
Теги: {{join .Analysis.Tags}}

Верни только JSON-объект без пояснений со следующими полями:
- "product_insights": массив продуктовых инсайтов;
- "feature_suggestions": массив предложений по новым функциям;
- "ux_improvements": массив улучшений пользовательского опыта;
- "priority_level": приоритет, одно из "low", "medium", "high".`,
	},
	KindCreatives: {
		System: "Ты — маркетолог, который пишет рекламные тексты на основе обращений клиентов.",
		Template: `На основе анализа обращения клиента придумай рекламные креативы.

Проблема: {{.Analysis.MainProblem}}
Страх: {{.Analysis.KeyFear}}
Желаемый результат: {{.Analysis.ResultSolution}}
Цитаты: {{join .Analysis.OriginalPhrases}}

Верни только JSON-объект без пояснений со следующими полями:
- "headlines": массив коротких рекламных заголовков (до 5);
- "ad_texts": массив рекламных текстов (до 3).`,
	},
}

// promptData is the template input for every kind.
type promptData struct {
	Transcript string
	Analysis   model.Analysis
}

var funcs = template.FuncMap{
	"join": func(items []string) string { return strings.Join(items, model.ListDelimiter) },
}

type prompt struct {
	system string
	tmpl   *template.Template
}

// Prompts holds the parsed prompt templates for every kind.
type Prompts struct {
	byKind map[Kind]prompt
}

// NewPrompts parses specs over the defaults. Kinds missing from specs, and
// empty fields within a spec, keep the built-in values.
func NewPrompts(specs map[Kind]PromptSpec) (*Prompts, error) {
	p := &Prompts{byKind: make(map[Kind]prompt, len(DefaultPromptSpecs))}
	for kind, def := range DefaultPromptSpecs {
		spec := def
		if o, ok := specs[kind]; ok {
			if strings.TrimSpace(o.System) != "" {
				spec.System = o.System
			}
			if strings.TrimSpace(o.Template) != "" {
				spec.Template = o.Template
			}
		}
		tmpl, err := template.New(string(kind)).Funcs(funcs).Option("missingkey=error").Parse(spec.Template)
		if err != nil {
			return nil, eris.Wrapf(err, "transform: parse %s prompt", kind)
		}
		p.byKind[kind] = prompt{system: spec.System, tmpl: tmpl}
	}
	for kind := range specs {
		if _, ok := DefaultPromptSpecs[kind]; !ok {
			return nil, eris.Errorf("transform: unknown prompt kind %q", kind)
		}
	}
	return p, nil
}

// DefaultPrompts returns the built-in prompts.
func DefaultPrompts() *Prompts {
	p, err := NewPrompts(nil)
	if err != nil {
		panic(err)
	}
	return p
}

// LoadPrompts reads a YAML file with a top-level "prompts" map keyed by kind.
func LoadPrompts(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "transform: read prompts %s", path)
	}

	var wrapper struct {
		Prompts map[Kind]PromptSpec `yaml:"prompts"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "transform: parse prompts")
	}
	return NewPrompts(wrapper.Prompts)
}

// Render returns the role instruction and the rendered prompt for kind.
func (p *Prompts) Render(kind Kind, data promptData) (system, text string, err error) {
	pr, ok := p.byKind[kind]
	if !ok {
		return "", "", eris.Errorf("transform: no prompt for %q", kind)
	}
	var b strings.Builder
	if err := pr.tmpl.Execute(&b, data); err != nil {
		return "", "", eris.Wrapf(err, "transform: render %s prompt", kind)
	}
	return pr.system, b.String(), nil
}
